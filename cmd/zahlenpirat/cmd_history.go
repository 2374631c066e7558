package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
)

var leaderboardLimit int

var historyCmd = &cobra.Command{
	Use:   "history <spieler>",
	Short: "Show the recorded sessions of a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd.Context(), newClient(), args[0], cmd.OutOrStdout())
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the best sessions by points",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLeaderboard(cmd.Context(), newClient(), leaderboardLimit, cmd.OutOrStdout())
	},
}

func init() {
	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "n", 10, "Number of entries")
}

func runHistory(ctx context.Context, c *client, player string, out io.Writer) error {
	var resp struct {
		Player   string                 `json:"spieler"`
		Sessions []domain.SessionRecord `json:"sessions"`
	}
	if err := c.get(ctx, "/v1/history?spieler="+url.QueryEscape(player), &resp); err != nil {
		return err
	}

	if len(resp.Sessions) == 0 {
		fmt.Fprintf(out, "Keine Sessions für %s.\n", player)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATUM\tMODUS\tSTATUS\tGELÖST\tPUNKTE")
	for _, s := range resp.Sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%d\n", s.Date, s.Mode, s.Status, s.TasksSolved, s.TasksTotal, s.Points)
	}
	return w.Flush()
}

func runLeaderboard(ctx context.Context, c *client, limit int, out io.Writer) error {
	var resp struct {
		Leaderboard []history.LeaderboardEntry `json:"leaderboard"`
	}
	if err := c.get(ctx, "/v1/leaderboard?limit="+strconv.Itoa(limit), &resp); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANG\tSPIELER\tPUNKTE\tMODUS\tDATUM")
	for _, e := range resp.Leaderboard {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", e.Rank, e.Player, e.Points, e.Mode, e.Date)
	}
	return w.Flush()
}
