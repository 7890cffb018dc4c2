package types

// Totals holds the three derived numbers shown on the dashboard.
type Totals struct {
	MealCalories    float64 `json:"meal_calories"`
	WorkoutCalories float64 `json:"workout_calories"`
	NetCalories     float64 `json:"net_calories"`
}

// ComputeTotals sums meal calories and workout calories and returns their
// difference. Net may be negative; it is never clamped. Empty inputs give
// all-zero totals. ComputeTotals does not modify its arguments.
func ComputeTotals(meals []MealEntry, workouts []WorkoutEntry) Totals {
	var t Totals
	for _, m := range meals {
		t.MealCalories += m.Calories
	}
	for _, w := range workouts {
		t.WorkoutCalories += w.Calories
	}
	t.NetCalories = t.MealCalories - t.WorkoutCalories
	return t
}
