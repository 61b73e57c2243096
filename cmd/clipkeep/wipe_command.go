package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipkeep/internal/session"
)

func newWipeCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "wipe <session-id>",
		Short: "Delete all data for one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := strings.TrimSpace(args[0])
			if sessionID == "" {
				return fmt.Errorf("session id is required")
			}
			if !force {
				return fmt.Errorf("wipe deletes session %s permanently; re-run with --force", sessionID)
			}
			return ctx.withManager(func(mgr *session.Manager) error {
				if err := mgr.Wipe(cmd.Context(), sessionID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s wiped.\n", sessionID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm permanent deletion")
	return cmd
}
