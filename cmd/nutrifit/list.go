// Dashboard commands for the nutrifit CLI.
package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nutrifit/internal/render"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show meals, workouts and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				view := render.Snapshot(s.store)
				return a.emit(cmd, view, func(w io.Writer) error {
					return render.Dashboard(w, view)
				})
			})
		},
	}
}

func newTotalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show calories in, calories out and the net balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				totals := s.store.Totals()
				return a.emit(cmd, totals, func(w io.Writer) error {
					return render.Totals(w, totals)
				})
			})
		},
	}
}
