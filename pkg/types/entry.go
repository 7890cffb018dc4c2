// Meal and workout entities managed by the record store.
package types

// Kind identifies one of the two parallel record sequences.
type Kind string

// Record kinds.
const (
	KindMeal    Kind = "meal"
	KindWorkout Kind = "workout"
)

// Kinds lists both record kinds in display order.
var Kinds = []Kind{KindMeal, KindWorkout}

// ParseKind maps a user-supplied string to a Kind.
// Returns ErrInvalidKind for anything other than "meal" or "workout".
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMeal, KindWorkout:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

// Meal categories offered by the input layer. The store accepts any string.
const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDinner    = "dinner"
	CategorySnack     = "snack"
)

// MealCategories lists the known meal categories in day order.
var MealCategories = []string{
	CategoryBreakfast,
	CategoryLunch,
	CategoryDinner,
	CategorySnack,
}

// MealEntry is a logged meal.
type MealEntry struct {
	ID       string  `json:"id"`       // UUID v7, assigned by the store.
	Name     string  `json:"name"`     // Human-readable name.
	Calories float64 `json:"calories"` // Non-negative calorie count.
	Category string  `json:"category"` // One of MealCategories in practice.
}

// WorkoutEntry is a logged workout.
type WorkoutEntry struct {
	ID       string  `json:"id"`       // UUID v7, assigned by the store.
	Type     string  `json:"type"`     // Activity type, e.g. "Running".
	Duration float64 `json:"duration"` // Minutes, non-negative.
	Calories float64 `json:"calories"` // Non-negative calories burned.
}

// MealInput carries caller-supplied meal fields. Calories may be any
// number or a numeric string; Coerce normalizes it.
type MealInput struct {
	Name     string
	Calories any
	Category string
}

// WorkoutInput carries caller-supplied workout fields. Duration and
// Calories may be any number or a numeric string.
type WorkoutInput struct {
	Type     string
	Duration any
	Calories any
}

// NewMealEntry builds a meal with the given ID, coercing numeric fields.
func NewMealEntry(id string, in MealInput) MealEntry {
	return MealEntry{
		ID:       id,
		Name:     in.Name,
		Calories: Coerce(in.Calories),
		Category: in.Category,
	}
}

// NewWorkoutEntry builds a workout with the given ID, coercing numeric fields.
func NewWorkoutEntry(id string, in WorkoutInput) WorkoutEntry {
	return WorkoutEntry{
		ID:       id,
		Type:     in.Type,
		Duration: Coerce(in.Duration),
		Calories: Coerce(in.Calories),
	}
}
