// Workout commands for the nutrifit CLI.
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nutrifit/internal/form"
	"github.com/mesh-intelligence/nutrifit/internal/render"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

func newWorkoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Log, change and remove workouts",
	}
	cmd.AddCommand(newWorkoutAddCmd(a))
	cmd.AddCommand(newWorkoutUpdateCmd(a))
	cmd.AddCommand(newWorkoutDeleteCmd(a))
	cmd.AddCommand(newWorkoutListCmd(a))
	return cmd
}

func bindWorkoutFlags(cmd *cobra.Command, f *form.WorkoutForm) {
	cmd.Flags().StringVar(&f.Type, "type", "", "workout type, e.g. Running")
	cmd.Flags().StringVar(&f.Duration, "duration", "", "duration in minutes")
	cmd.Flags().StringVar(&f.Calories, "calories", "", "calories burned")
}

func newWorkoutAddCmd(a *app) *cobra.Command {
	var f form.WorkoutForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a workout",
		Long: `Add appends a workout to the log.

Example:
  nutrifit workout add --type Running --duration 30 --calories 300`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				res, err := form.SubmitWorkout(s.store, &f)
				if err != nil {
					return submitError(err)
				}
				return a.emit(cmd, res.Entry, line("Added workout %s: %s", res.Entry.ID, render.WorkoutLine(res.Entry)))
			})
		},
	}
	bindWorkoutFlags(cmd, &f)
	return cmd
}

func newWorkoutUpdateCmd(a *app) *cobra.Command {
	var f form.WorkoutForm
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a logged workout",
		Long: `Update loads the workout into the form, applies the given flags, and
saves it in place. Fields without a flag keep their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withSession(func(s *session) error {
				current, ok := s.store.Workout(id)
				if !ok || !s.store.BeginEdit(types.KindWorkout, id) {
					return userError(fmt.Errorf("workout %q: %w", id, types.ErrNotFound))
				}

				edit := form.WorkoutFormFrom(current)
				overlay(cmd, "type", &edit.Type, f.Type)
				overlay(cmd, "duration", &edit.Duration, f.Duration)
				overlay(cmd, "calories", &edit.Calories, f.Calories)

				res, err := form.SubmitWorkout(s.store, &edit)
				if err != nil {
					s.store.CancelEdit(types.KindWorkout)
					return submitError(err)
				}
				return a.emit(cmd, res.Entry, line("Updated workout %s: %s", res.Entry.ID, render.WorkoutLine(res.Entry)))
			})
		},
	}
	bindWorkoutFlags(cmd, &f)
	return cmd
}

func newWorkoutDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a logged workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withSession(func(s *session) error {
				workout, ok := s.store.Workout(id)
				if !ok {
					return userError(fmt.Errorf("workout %q: %w", id, types.ErrNotFound))
				}
				if err := s.store.DeleteWorkout(id); err != nil {
					return storeError(err)
				}
				return a.emit(cmd, workout, line("Deleted workout %s", id))
			})
		},
	}
}

func newWorkoutListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List logged workouts in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				workouts := s.store.Workouts()
				if workouts == nil {
					workouts = []types.WorkoutEntry{}
				}
				return a.emit(cmd, workouts, func(w io.Writer) error {
					return render.Workouts(w, workouts, "")
				})
			})
		},
	}
}
