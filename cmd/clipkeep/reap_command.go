package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipkeep/internal/session"
)

func newReapCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reap",
		Short: "Remove sessions older than the retention TTL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(mgr *session.Manager) error {
				cmdCtx := cmd.Context()
				before, err := mgr.Registry().Sessions(cmdCtx)
				if err != nil {
					return fmt.Errorf("list sessions: %w", err)
				}

				mgr.Reap(cmdCtx)

				after, err := mgr.Registry().Sessions(cmdCtx)
				if err != nil {
					return fmt.Errorf("list sessions: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reaped %d of %d sessions.\n",
					len(before)-len(after), len(before))
				return nil
			})
		},
	}
}
