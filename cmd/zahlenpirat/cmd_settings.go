package main

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the persistent standards",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the persistent standards",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettingsShow(cmd.Context(), newClient(), cmd.OutOrStdout())
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one persistent standard",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettingsSet(cmd.Context(), newClient(), args[0], args[1], cmd.OutOrStdout())
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all persistent standards",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Message string `json:"message"`
		}
		if err := newClient().post(cmd.Context(), "/v1/settings/reset", nil, &resp); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)
}

func runSettingsShow(ctx context.Context, c *client, out io.Writer) error {
	var stored domain.Settings
	if err := c.get(ctx, "/v1/settings", &stored); err != nil {
		return err
	}

	disp := settings.Defaults(stored)
	if name := stored[string(domain.KeyName)]; name != "" {
		disp[string(domain.KeyName)] = name
	} else {
		disp[string(domain.KeyName)] = settings.Placeholder
	}
	for _, k := range domain.AllKeys {
		fmt.Fprintf(out, "%-14s %s\n", string(k)+":", disp[string(k)])
	}
	return nil
}

func runSettingsSet(ctx context.Context, c *client, key, value string, out io.Writer) error {
	q := url.Values{"key": {key}, "value": {value}}

	var resp struct {
		Saved map[string]string `json:"saved"`
	}
	if err := c.post(ctx, "/v1/settings/set?"+q.Encode(), nil, &resp); err != nil {
		return err
	}
	for k, v := range resp.Saved {
		fmt.Fprintf(out, "%s = %s\n", k, v)
	}
	return nil
}
