package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with Zahlenpirat in the terminal",
	Long: `Start an interactive chat against the running daemon.

Type 'exit' or press Ctrl-D to leave. Every line is sent to /v1/flow with
the same session id, so standards and task progress carry over.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session := chatSession
		if session == "" {
			session = "cli-" + uuid.NewString()[:8]
		}
		return runChat(cmd.Context(), newClient(), session, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Session id to continue (default: new session)")
}

type flowReply struct {
	Text string `json:"text"`
}

func runChat(ctx context.Context, c *client, session string, in io.Reader, out io.Writer) error {
	plain := "?plain=" + strconv.FormatBool(plainOut)

	var start flowReply
	if err := c.get(ctx, "/v1/start"+plain, &start); err != nil {
		return err
	}
	fmt.Fprintf(out, "🏴‍☠️ Session %s\n\n%s\n", session, start.Text)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		var reply flowReply
		req := map[string]string{"sessionId": session, "text": line}
		if err := c.post(ctx, "/v1/flow"+plain, req, &reply); err != nil {
			return err
		}
		fmt.Fprintln(out, reply.Text)
	}
}
