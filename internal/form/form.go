// Package form is the input layer in front of the record store. It holds
// raw string fields, rejects submissions with missing required fields,
// and routes a valid submission to add or update depending on the
// store's editing marker.
package form

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

// MealStore is the part of the record store the meal form needs.
type MealStore interface {
	AddMeal(in types.MealInput) (types.MealEntry, error)
	UpdateMeal(id string, in types.MealInput) (types.MealEntry, error)
	Editing(kind types.Kind) (string, bool)
}

// WorkoutStore is the part of the record store the workout form needs.
type WorkoutStore interface {
	AddWorkout(in types.WorkoutInput) (types.WorkoutEntry, error)
	UpdateWorkout(id string, in types.WorkoutInput) (types.WorkoutEntry, error)
	Editing(kind types.Kind) (string, bool)
}

// MealForm holds meal fields exactly as typed.
type MealForm struct {
	Name     string
	Calories string
	Category string
}

// WorkoutForm holds workout fields exactly as typed.
type WorkoutForm struct {
	Type     string
	Duration string
	Calories string
}

// Validate requires a non-blank name and a category.
func (f MealForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return types.ErrNameRequired
	}
	if strings.TrimSpace(f.Category) == "" {
		return types.ErrCategoryRequired
	}
	return nil
}

// Validate requires a non-blank activity type.
func (f WorkoutForm) Validate() error {
	if strings.TrimSpace(f.Type) == "" {
		return types.ErrTypeRequired
	}
	return nil
}

// Input converts the form to store input. Numeric text is passed through
// for the store to coerce.
func (f MealForm) Input() types.MealInput {
	return types.MealInput{
		Name:     strings.TrimSpace(f.Name),
		Calories: f.Calories,
		Category: strings.TrimSpace(f.Category),
	}
}

// Input converts the form to store input.
func (f WorkoutForm) Input() types.WorkoutInput {
	return types.WorkoutInput{
		Type:     strings.TrimSpace(f.Type),
		Duration: f.Duration,
		Calories: f.Calories,
	}
}

// Reset clears every field.
func (f *MealForm) Reset() { *f = MealForm{} }

// Reset clears every field.
func (f *WorkoutForm) Reset() { *f = WorkoutForm{} }

// MealFormFrom pre-fills a form for editing an existing meal.
func MealFormFrom(m types.MealEntry) MealForm {
	return MealForm{
		Name:     m.Name,
		Calories: FormatNumber(m.Calories),
		Category: m.Category,
	}
}

// WorkoutFormFrom pre-fills a form for editing an existing workout.
func WorkoutFormFrom(w types.WorkoutEntry) WorkoutForm {
	return WorkoutForm{
		Type:     w.Type,
		Duration: FormatNumber(w.Duration),
		Calories: FormatNumber(w.Calories),
	}
}

// Result describes a successful submission.
type Result[T any] struct {
	Entry   T
	Updated bool // true when an edited record was overwritten
}

// SubmitMeal validates f and either updates the meal being edited or adds
// a new one. Invalid forms never reach the store. The form is reset after
// a successful store call.
func SubmitMeal(s MealStore, f *MealForm) (Result[types.MealEntry], error) {
	if err := f.Validate(); err != nil {
		return Result[types.MealEntry]{}, err
	}

	var (
		entry   types.MealEntry
		updated bool
		err     error
	)
	if id, ok := s.Editing(types.KindMeal); ok {
		entry, err = s.UpdateMeal(id, f.Input())
		updated = true
	} else {
		entry, err = s.AddMeal(f.Input())
	}
	if err != nil {
		return Result[types.MealEntry]{}, err
	}

	f.Reset()
	return Result[types.MealEntry]{Entry: entry, Updated: updated}, nil
}

// SubmitWorkout validates f and either updates the workout being edited
// or adds a new one.
func SubmitWorkout(s WorkoutStore, f *WorkoutForm) (Result[types.WorkoutEntry], error) {
	if err := f.Validate(); err != nil {
		return Result[types.WorkoutEntry]{}, err
	}

	var (
		entry   types.WorkoutEntry
		updated bool
		err     error
	)
	if id, ok := s.Editing(types.KindWorkout); ok {
		entry, err = s.UpdateWorkout(id, f.Input())
		updated = true
	} else {
		entry, err = s.AddWorkout(f.Input())
	}
	if err != nil {
		return Result[types.WorkoutEntry]{}, err
	}

	f.Reset()
	return Result[types.WorkoutEntry]{Entry: entry, Updated: updated}, nil
}

// Message returns the user-facing prompt for a validation error, or the
// error text for anything else.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrNameRequired):
		return "Please enter a meal name."
	case errors.Is(err, types.ErrCategoryRequired):
		return "Please choose a meal category."
	case errors.Is(err, types.ErrTypeRequired):
		return "Please enter a workout type."
	default:
		return err.Error()
	}
}

// IsInvalid reports whether err is a validation failure, as opposed to a
// store failure.
func IsInvalid(err error) bool {
	return errors.Is(err, types.ErrNameRequired) ||
		errors.Is(err, types.ErrCategoryRequired) ||
		errors.Is(err, types.ErrTypeRequired)
}

// FormatNumber prints a calorie or duration value without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
