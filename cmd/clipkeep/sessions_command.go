package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipkeep/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect persisted editing sessions",
	}

	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsHealthCommand(ctx))

	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions with data at rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(mgr *session.Manager) error {
				rows, err := mgr.Registry().Sessions(cmd.Context())
				if err != nil {
					return fmt.Errorf("list sessions: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No sessions have data at rest.")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Session", "Created", "Last Saved"},
					buildSessionRows(rows, time.Now()),
				))
				return nil
			})
		},
	}
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the entities saved for one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := strings.TrimSpace(args[0])
			if sessionID == "" {
				return fmt.Errorf("session id is required")
			}
			return ctx.withManager(func(mgr *session.Manager) error {
				cmdCtx := cmd.Context()
				entities := sessionEntities{
					Media:      mgr.Media.FindBySession(cmdCtx, sessionID),
					Transcript: mgr.Transcripts.FindBySession(cmdCtx, sessionID),
					Highlights: mgr.Highlights.FindBySession(cmdCtx, sessionID),
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session %s\n", sessionID)
				for _, line := range buildSessionSummary(entities) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
}

func newSessionsHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the durable store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(mgr *session.Manager) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				health, err := mgr.Tier().CheckHealth(cmd.Context())
				fmt.Fprintf(out, "Database: %s\n", health.DBPath)

				existsKind := statusOK
				if !health.DatabaseExists {
					existsKind = statusError
				}
				fmt.Fprintln(out, renderStatusLine("exists", existsKind, "", colorize))

				readableKind := statusOK
				if !health.DatabaseReadable {
					readableKind = statusError
				}
				fmt.Fprintln(out, renderStatusLine("readable", readableKind, health.Error, colorize))

				tablesKind := statusOK
				tablesMsg := fmt.Sprintf("%d present", len(health.TablesPresent))
				if len(health.MissingTables) > 0 {
					tablesKind = statusError
					tablesMsg = "missing " + strings.Join(health.MissingTables, ", ")
				}
				fmt.Fprintln(out, renderStatusLine("tables", tablesKind, tablesMsg, colorize))

				integrityKind := statusOK
				if !health.IntegrityCheck {
					integrityKind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("integrity", integrityKind, "", colorize))

				fmt.Fprintln(out, renderStatusLine("records", statusOK,
					fmt.Sprintf("%d", health.TotalRecords), colorize))

				if err != nil {
					return fmt.Errorf("health check: %w", err)
				}
				return nil
			})
		},
	}
}
