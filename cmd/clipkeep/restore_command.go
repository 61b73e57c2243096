package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clipkeep/internal/records"
	"clipkeep/internal/session"
)

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Preview what the next application start would restore",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(mgr *session.Manager) error {
				out := cmd.OutOrStdout()

				state, err := mgr.Restore(cmd.Context())
				if errors.Is(err, session.ErrIncompleteSessionData) {
					return fmt.Errorf("session data is incomplete and cannot be restored: %w", err)
				}
				if err != nil {
					return err
				}
				if state == nil {
					fmt.Fprintln(out, "Nothing to restore.")
					return nil
				}

				fmt.Fprintf(out, "Session %s would be restored:\n", state.Media.SessionID)
				for _, line := range buildSessionSummary(sessionEntities{
					Media:      []records.Media{state.Media},
					Transcript: []records.Transcript{state.Transcript},
					Highlights: []records.HighlightSet{state.Highlights},
				}) {
					fmt.Fprintln(out, line)
				}
				if state.NeedsResupply {
					fmt.Fprintln(out, "The media file must be supplied again before playback.")
				}
				return nil
			})
		},
	}
}
