package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/zahlenpirat/internal/tasks"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

var (
	tasksOperators string
	tasksGrade     int
	tasksCount     int
	tasksJSON      bool
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Generate practice tasks (no daemon needed)",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := tasks.BatchRequest{Grade: tasksGrade, Count: tasksCount}
		if tasksOperators != "" {
			req.Operators = strings.Split(textnorm.NormalizeOperatorValue(tasksOperators), ",")
		}
		return printTasks(cmd.OutOrStdout(), tasks.NewGenerator().Batch(req), tasksJSON)
	},
}

func init() {
	tasksCmd.Flags().StringVarP(&tasksOperators, "operator", "o", "", "Operators, e.g. '+,-' or 'x'")
	tasksCmd.Flags().IntVarP(&tasksGrade, "klasse", "k", 0, "School grade 1-4")
	tasksCmd.Flags().IntVarP(&tasksCount, "count", "n", 5, "Number of tasks")
	tasksCmd.Flags().BoolVar(&tasksJSON, "json", false, "Print JSON instead of text")
}

func printTasks(out io.Writer, list []tasks.Task, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(map[string]any{"tasks": list})
	}

	for i, t := range list {
		q := t.Question
		if plainOut {
			q = textnorm.ToPlain(q)
		}
		fmt.Fprintf(out, "%2d. %-18s [%s]\n", i+1, q, strings.Join(t.Choices, " | "))
	}
	return nil
}
