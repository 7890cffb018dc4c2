// Reset command for the nutrifit CLI.
package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every meal and workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return userError(errors.New("reset deletes all records; pass --yes to confirm"))
			}
			return a.withSession(func(s *session) error {
				if err := s.store.Reset(); err != nil {
					return storeError(err)
				}
				return a.emit(cmd, map[string]bool{"reset": true}, line("All records deleted"))
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
