// Package render draws the meal list, the workout list and the totals as
// text or JSON. It reads the store; it never changes it.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/nutrifit/internal/form"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

// Source is the read side of the record store.
type Source interface {
	Meals() []types.MealEntry
	Workouts() []types.WorkoutEntry
	Totals() types.Totals
	Editing(kind types.Kind) (string, bool)
}

// View is a snapshot of everything the dashboard shows.
type View struct {
	Meals            []types.MealEntry    `json:"meals"`
	Workouts         []types.WorkoutEntry `json:"workouts"`
	Totals           types.Totals         `json:"totals"`
	EditingMealID    string               `json:"editing_meal_id,omitempty"`
	EditingWorkoutID string               `json:"editing_workout_id,omitempty"`
}

// Snapshot captures the current state of src.
func Snapshot(src Source) View {
	v := View{
		Meals:    src.Meals(),
		Workouts: src.Workouts(),
		Totals:   src.Totals(),
	}
	if v.Meals == nil {
		v.Meals = []types.MealEntry{}
	}
	if v.Workouts == nil {
		v.Workouts = []types.WorkoutEntry{}
	}
	v.EditingMealID, _ = src.Editing(types.KindMeal)
	v.EditingWorkoutID, _ = src.Editing(types.KindWorkout)
	return v
}

// MealLine formats a meal as "Name (category) - N cal".
func MealLine(m types.MealEntry) string {
	return fmt.Sprintf("%s (%s) - %s cal", m.Name, m.Category, form.FormatNumber(m.Calories))
}

// WorkoutLine formats a workout as "Type - N min - N cal".
func WorkoutLine(w types.WorkoutEntry) string {
	return fmt.Sprintf("%s - %s min - %s cal", w.Type, form.FormatNumber(w.Duration), form.FormatNumber(w.Calories))
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Meals writes the meal table. The row being edited is marked with "*".
func Meals(w io.Writer, meals []types.MealEntry, editingID string) error {
	if len(meals) == 0 {
		_, err := fmt.Fprintln(w, "No meals logged.")
		return err
	}
	rows := make([][]string, 0, len(meals))
	for _, m := range meals {
		rows = append(rows, []string{
			marker(m.ID, editingID) + shortID(m.ID),
			truncate(m.Name, 40),
			m.Category,
			form.FormatNumber(m.Calories),
		})
	}
	if err := table(w, []string{"ID", "NAME", "CATEGORY", "CALORIES"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total: %d meal(s)\n", len(meals))
	return err
}

// Workouts writes the workout table.
func Workouts(w io.Writer, workouts []types.WorkoutEntry, editingID string) error {
	if len(workouts) == 0 {
		_, err := fmt.Fprintln(w, "No workouts logged.")
		return err
	}
	rows := make([][]string, 0, len(workouts))
	for _, wo := range workouts {
		rows = append(rows, []string{
			marker(wo.ID, editingID) + shortID(wo.ID),
			truncate(wo.Type, 40),
			form.FormatNumber(wo.Duration),
			form.FormatNumber(wo.Calories),
		})
	}
	if err := table(w, []string{"ID", "TYPE", "MINUTES", "CALORIES"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total: %d workout(s)\n", len(workouts))
	return err
}

// Totals writes the three dashboard numbers.
func Totals(w io.Writer, t types.Totals) error {
	_, err := fmt.Fprintf(w, "Calories in:  %s\nCalories out: %s\nNet:          %s\n",
		form.FormatNumber(t.MealCalories),
		form.FormatNumber(t.WorkoutCalories),
		form.FormatNumber(t.NetCalories))
	return err
}

// Dashboard writes both tables followed by the totals.
func Dashboard(w io.Writer, v View) error {
	if _, err := fmt.Fprintln(w, "Meals"); err != nil {
		return err
	}
	if err := Meals(w, v.Meals, v.EditingMealID); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\nWorkouts"); err != nil {
		return err
	}
	if err := Workouts(w, v.Workouts, v.EditingWorkoutID); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return Totals(w, v.Totals)
}

// table renders header and rows through tabwriter, trimming trailing
// padding from each line.
func table(w io.Writer, header []string, rows [][]string) error {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(header, "\t"))
	dashes := make([]string, len(header))
	for i, h := range header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func marker(id, editingID string) string {
	if id != "" && id == editingID {
		return "*"
	}
	return ""
}

// shortID keeps the last 8 characters; UUID v7 prefixes are timestamps and
// collide for records created close together.
func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

// truncate limits s to n characters, counted in runes.
func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
