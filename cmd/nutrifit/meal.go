// Meal commands for the nutrifit CLI.
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nutrifit/internal/form"
	"github.com/mesh-intelligence/nutrifit/internal/render"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

func newMealCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Log, change and remove meals",
	}
	cmd.AddCommand(newMealAddCmd(a))
	cmd.AddCommand(newMealUpdateCmd(a))
	cmd.AddCommand(newMealDeleteCmd(a))
	cmd.AddCommand(newMealListCmd(a))
	return cmd
}

// bindMealFlags registers the meal form fields as flags.
func bindMealFlags(cmd *cobra.Command, f *form.MealForm) {
	cmd.Flags().StringVar(&f.Name, "name", "", "meal name")
	cmd.Flags().StringVar(&f.Calories, "calories", "", "calories (non-numeric or negative counts as 0)")
	cmd.Flags().StringVar(&f.Category, "category", "", "category (breakfast, lunch, dinner, snack)")
}

func newMealAddCmd(a *app) *cobra.Command {
	var f form.MealForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a meal",
		Long: `Add appends a meal to the log.

Example:
  nutrifit meal add --name Oatmeal --calories 350 --category breakfast`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				res, err := form.SubmitMeal(s.store, &f)
				if err != nil {
					return submitError(err)
				}
				return a.emit(cmd, res.Entry, line("Added meal %s: %s", res.Entry.ID, render.MealLine(res.Entry)))
			})
		},
	}
	bindMealFlags(cmd, &f)
	return cmd
}

func newMealUpdateCmd(a *app) *cobra.Command {
	var f form.MealForm
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a logged meal",
		Long: `Update loads the meal into the form, applies the given flags, and saves
it in place. Fields without a flag keep their current value.

Example:
  nutrifit meal update 0192f3c4-... --calories 420`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withSession(func(s *session) error {
				current, ok := s.store.Meal(id)
				if !ok || !s.store.BeginEdit(types.KindMeal, id) {
					return userError(fmt.Errorf("meal %q: %w", id, types.ErrNotFound))
				}

				edit := form.MealFormFrom(current)
				overlay(cmd, "name", &edit.Name, f.Name)
				overlay(cmd, "calories", &edit.Calories, f.Calories)
				overlay(cmd, "category", &edit.Category, f.Category)

				res, err := form.SubmitMeal(s.store, &edit)
				if err != nil {
					s.store.CancelEdit(types.KindMeal)
					return submitError(err)
				}
				return a.emit(cmd, res.Entry, line("Updated meal %s: %s", res.Entry.ID, render.MealLine(res.Entry)))
			})
		},
	}
	bindMealFlags(cmd, &f)
	return cmd
}

func newMealDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a logged meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withSession(func(s *session) error {
				meal, ok := s.store.Meal(id)
				if !ok {
					return userError(fmt.Errorf("meal %q: %w", id, types.ErrNotFound))
				}
				if err := s.store.DeleteMeal(id); err != nil {
					return storeError(err)
				}
				return a.emit(cmd, meal, line("Deleted meal %s", id))
			})
		},
	}
}

func newMealListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List logged meals in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				meals := s.store.Meals()
				if meals == nil {
					meals = []types.MealEntry{}
				}
				return a.emit(cmd, meals, func(w io.Writer) error {
					return render.Meals(w, meals, "")
				})
			})
		},
	}
}

// overlay replaces *dst with value when the named flag was given.
func overlay(cmd *cobra.Command, flag string, dst *string, value string) {
	if cmd.Flags().Changed(flag) {
		*dst = value
	}
}

// submitError classifies a form submission failure.
func submitError(err error) error {
	if form.IsInvalid(err) {
		return inputError(err)
	}
	return storeError(err)
}
