package tracker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nutrifit/internal/memory"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

func newTestStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()
	kv := memory.NewStore()
	s := NewStore(kv)
	require.NoError(t, s.Load())
	return s, kv
}

func addMeal(t *testing.T, s *Store, name string, calories any, category string) types.MealEntry {
	t.Helper()
	m, err := s.AddMeal(types.MealInput{Name: name, Calories: calories, Category: category})
	require.NoError(t, err)
	return m
}

func addWorkout(t *testing.T, s *Store, typ string, duration, calories any) types.WorkoutEntry {
	t.Helper()
	w, err := s.AddWorkout(types.WorkoutInput{Type: typ, Duration: duration, Calories: calories})
	require.NoError(t, err)
	return w
}

// failingKV fails every write after failAfter successful ones.
type failingKV struct {
	*memory.Store
	failAfter int
	writes    int
}

var errDiskFull = errors.New("disk full")

func (f *failingKV) Set(key, value string) error {
	f.writes++
	if f.writes > f.failAfter {
		return errDiskFull
	}
	return f.Store.Set(key, value)
}

func (f *failingKV) Get(key string) (string, bool, error) {
	if f.failAfter < 0 {
		return "", false, errDiskFull
	}
	return f.Store.Get(key)
}

func TestAddMeal(t *testing.T) {
	s, _ := newTestStore(t)

	meal := addMeal(t, s, "Breakfast", 400, types.CategoryBreakfast)
	assert.NotEmpty(t, meal.ID)
	assert.Equal(t, "Breakfast", meal.Name)
	assert.Equal(t, 400.0, meal.Calories)
	assert.Equal(t, types.CategoryBreakfast, meal.Category)

	lunch := addMeal(t, s, "Lunch", "500", types.CategoryLunch)
	assert.Equal(t, 500.0, lunch.Calories, "string calories converted to number")

	assert.Len(t, s.Meals(), 2)
	assert.Equal(t, []string{meal.ID, lunch.ID}, []string{s.Meals()[0].ID, s.Meals()[1].ID})
}

func TestAddWorkout(t *testing.T) {
	s, _ := newTestStore(t)

	run := addWorkout(t, s, "Running", 30, 300)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "Running", run.Type)
	assert.Equal(t, 30.0, run.Duration)
	assert.Equal(t, 300.0, run.Calories)

	cycle := addWorkout(t, s, "Cycling", "45", "400")
	assert.Equal(t, 45.0, cycle.Duration)
	assert.Equal(t, 400.0, cycle.Calories)

	assert.Len(t, s.Workouts(), 2)
}

func TestAddCoercesInvalidNumbersToZero(t *testing.T) {
	s, _ := newTestStore(t)

	invalid := addMeal(t, s, "Test", "invalid", types.CategoryLunch)
	explicit := addMeal(t, s, "Test", 0, types.CategoryLunch)
	assert.Equal(t, 0.0, invalid.Calories)
	assert.Equal(t, explicit.Calories, invalid.Calories)

	negative := addWorkout(t, s, "Rowing", -10, "-50")
	assert.Equal(t, 0.0, negative.Duration)
	assert.Equal(t, 0.0, negative.Calories)

	blank := addWorkout(t, s, "Yoga", "", nil)
	assert.Equal(t, 0.0, blank.Duration)
	assert.Equal(t, 0.0, blank.Calories)
}

func TestIDsUniqueAcrossLifetime(t *testing.T) {
	s, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := range 200 {
		m := addMeal(t, s, fmt.Sprintf("meal %d", i), i, types.CategorySnack)
		require.False(t, seen[m.ID], "duplicate meal id %s", m.ID)
		seen[m.ID] = true
		if i%3 == 0 {
			require.NoError(t, s.DeleteMeal(m.ID))
		}
	}
}

func TestDeletedIDsNotReused(t *testing.T) {
	ids := []string{"a", "a", "b"}
	next := 0
	s := NewStore(memory.NewStore(), WithIDGenerator(func() string {
		id := ids[next%len(ids)]
		next++
		return id
	}))

	first := addMeal(t, s, "One", 1, types.CategorySnack)
	require.NoError(t, s.DeleteMeal(first.ID))
	second := addMeal(t, s, "Two", 2, types.CategorySnack)

	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "b", second.ID)
}

func TestUpdateMeal(t *testing.T) {
	s, _ := newTestStore(t)
	breakfast := addMeal(t, s, "Breakfast", 400, types.CategoryBreakfast)
	lunch := addMeal(t, s, "Lunch", 600, types.CategoryLunch)

	updated, err := s.UpdateMeal(breakfast.ID, types.MealInput{Name: "Updated Breakfast", Calories: "450", Category: types.CategoryBreakfast})
	require.NoError(t, err)
	assert.Equal(t, breakfast.ID, updated.ID)
	assert.Equal(t, "Updated Breakfast", updated.Name)
	assert.Equal(t, 450.0, updated.Calories)

	meals := s.Meals()
	require.Len(t, meals, 2)
	assert.Equal(t, updated, meals[0], "update keeps position")
	assert.Equal(t, lunch, meals[1])
}

func TestUpdateWorkout(t *testing.T) {
	s, _ := newTestStore(t)
	run := addWorkout(t, s, "Running", 30, 300)

	updated, err := s.UpdateWorkout(run.ID, types.WorkoutInput{Type: "Updated Running", Duration: 35, Calories: "oops"})
	require.NoError(t, err)
	assert.Equal(t, types.WorkoutEntry{ID: run.ID, Type: "Updated Running", Duration: 35, Calories: 0}, updated)
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	s, kv := newTestStore(t)
	meal := addMeal(t, s, "Dinner", 700, types.CategoryDinner)
	workout := addWorkout(t, s, "Swim", 40, 350)
	mealsBefore, _, _ := kv.Get(types.MealsKey)

	_, err := s.UpdateMeal("missing", types.MealInput{Name: "x", Calories: 1})
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.UpdateWorkout("missing", types.WorkoutInput{Type: "x"})
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.Equal(t, []types.MealEntry{meal}, s.Meals())
	assert.Equal(t, []types.WorkoutEntry{workout}, s.Workouts())
	mealsAfter, _, _ := kv.Get(types.MealsKey)
	assert.Equal(t, mealsBefore, mealsAfter)
}

func TestDeleteKeepsOrder(t *testing.T) {
	s, _ := newTestStore(t)
	a := addMeal(t, s, "A", 1, types.CategorySnack)
	b := addMeal(t, s, "B", 2, types.CategorySnack)
	c := addMeal(t, s, "C", 3, types.CategorySnack)

	require.NoError(t, s.DeleteMeal(b.ID))
	assert.Equal(t, []types.MealEntry{a, c}, s.Meals())

	_, ok := s.Meal(b.ID)
	assert.False(t, ok)
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	meal := addMeal(t, s, "A", 1, types.CategorySnack)
	workout := addWorkout(t, s, "Walk", 20, 80)

	require.NoError(t, s.DeleteMeal("missing"))
	require.NoError(t, s.DeleteWorkout("missing"))
	require.NoError(t, s.Delete(types.KindMeal, "missing"))

	assert.Equal(t, []types.MealEntry{meal}, s.Meals())
	assert.Equal(t, []types.WorkoutEntry{workout}, s.Workouts())
}

func TestDeleteByKind(t *testing.T) {
	s, _ := newTestStore(t)
	meal := addMeal(t, s, "A", 1, types.CategorySnack)
	workout := addWorkout(t, s, "Walk", 20, 80)

	require.NoError(t, s.Delete(types.KindWorkout, workout.ID))
	require.NoError(t, s.Delete(types.KindMeal, meal.ID))
	assert.Empty(t, s.Meals())
	assert.Empty(t, s.Workouts())

	assert.ErrorIs(t, s.Delete("snack", "x"), types.ErrInvalidKind)
}

func TestEditingMarkers(t *testing.T) {
	s, _ := newTestStore(t)
	first := addMeal(t, s, "A", 1, types.CategorySnack)
	second := addMeal(t, s, "B", 2, types.CategorySnack)
	run := addWorkout(t, s, "Run", 10, 100)

	_, ok := s.Editing(types.KindMeal)
	assert.False(t, ok)

	assert.False(t, s.BeginEdit(types.KindMeal, "missing"), "unknown id sets no marker")
	_, ok = s.Editing(types.KindMeal)
	assert.False(t, ok)

	assert.True(t, s.BeginEdit(types.KindMeal, first.ID))
	assert.True(t, s.BeginEdit(types.KindMeal, second.ID), "new marker replaces old")
	id, ok := s.Editing(types.KindMeal)
	assert.True(t, ok)
	assert.Equal(t, second.ID, id)

	assert.False(t, s.BeginEdit(types.KindMeal, "missing"))
	id, _ = s.Editing(types.KindMeal)
	assert.Equal(t, second.ID, id, "failed begin keeps prior marker")

	assert.True(t, s.BeginEdit(types.KindWorkout, run.ID))
	s.CancelEdit(types.KindMeal)
	_, ok = s.Editing(types.KindMeal)
	assert.False(t, ok)
	id, ok = s.Editing(types.KindWorkout)
	assert.True(t, ok, "markers are per kind")
	assert.Equal(t, run.ID, id)

	assert.False(t, s.BeginEdit("other", run.ID))
}

func TestUpdateClearsEditingMarker(t *testing.T) {
	s, _ := newTestStore(t)
	meal := addMeal(t, s, "A", 1, types.CategorySnack)
	other := addMeal(t, s, "B", 2, types.CategorySnack)

	require.True(t, s.BeginEdit(types.KindMeal, meal.ID))
	_, err := s.UpdateMeal(other.ID, types.MealInput{Name: "B2", Calories: 3, Category: types.CategorySnack})
	require.NoError(t, err)
	id, ok := s.Editing(types.KindMeal)
	assert.True(t, ok, "updating another record keeps the marker")
	assert.Equal(t, meal.ID, id)

	_, err = s.UpdateMeal(meal.ID, types.MealInput{Name: "A2", Calories: 4, Category: types.CategorySnack})
	require.NoError(t, err)
	_, ok = s.Editing(types.KindMeal)
	assert.False(t, ok)
}

func TestDeleteClearsEditingMarker(t *testing.T) {
	s, _ := newTestStore(t)
	w := addWorkout(t, s, "Run", 10, 100)

	require.True(t, s.BeginEdit(types.KindWorkout, w.ID))
	require.NoError(t, s.DeleteWorkout(w.ID))
	_, ok := s.Editing(types.KindWorkout)
	assert.False(t, ok)
}

func TestEditingMarkerNotPersisted(t *testing.T) {
	s, kv := newTestStore(t)
	meal := addMeal(t, s, "A", 1, types.CategorySnack)
	require.True(t, s.BeginEdit(types.KindMeal, meal.ID))

	reloaded := NewStore(kv)
	require.NoError(t, reloaded.Load())
	_, ok := reloaded.Editing(types.KindMeal)
	assert.False(t, ok)
}

func TestTotalsScenario(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Equal(t, types.Totals{}, s.Totals())

	addMeal(t, s, "Breakfast", 400, types.CategoryBreakfast)
	addMeal(t, s, "Lunch", "500", types.CategoryLunch)
	addWorkout(t, s, "Running", 30, 300)
	addWorkout(t, s, "Cycling", "45", "400")

	assert.Equal(t, types.Totals{MealCalories: 900, WorkoutCalories: 700, NetCalories: 200}, s.Totals())

	addWorkout(t, s, "Marathon", 120, 1200)
	assert.Equal(t, types.Totals{MealCalories: 900, WorkoutCalories: 1900, NetCalories: -1000}, s.Totals())
}

func TestPersistRoundTrip(t *testing.T) {
	s, kv := newTestStore(t)
	addMeal(t, s, "Breakfast", 400, types.CategoryBreakfast)
	addMeal(t, s, "Salad", "320.5", types.CategoryLunch)
	addWorkout(t, s, "Running", 30, 300)
	addWorkout(t, s, "Cycling", "45", "400")

	reloaded := NewStore(kv)
	require.NoError(t, reloaded.Load())

	assert.Equal(t, s.Meals(), reloaded.Meals())
	assert.Equal(t, s.Workouts(), reloaded.Workouts())
	assert.Equal(t, s.Totals(), reloaded.Totals())
}

func TestMutationsPersistEachKind(t *testing.T) {
	s, kv := newTestStore(t)

	meal := addMeal(t, s, "A", 1, types.CategorySnack)
	_, ok, _ := kv.Get(types.MealsKey)
	assert.True(t, ok)
	_, ok, _ = kv.Get(types.WorkoutsKey)
	assert.False(t, ok, "adding a meal only writes the meal key")

	require.NoError(t, s.DeleteMeal(meal.ID))
	v, ok, _ := kv.Get(types.MealsKey)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestLoadMalformedState(t *testing.T) {
	tests := []struct {
		name      string
		meals     *string
		workouts  *string
		wantMeals int
		wantWorks int
	}{
		{name: "absent keys"},
		{name: "empty values", meals: ptr(""), workouts: ptr("")},
		{name: "not json", meals: ptr("{{{"), workouts: ptr("nope")},
		{name: "json object instead of array", meals: ptr(`{"id":"1"}`), workouts: ptr(`{}`)},
		{name: "json null", meals: ptr("null"), workouts: ptr("null")},
		{name: "array of scalars", meals: ptr(`[1,2,3]`), workouts: ptr(`["a"]`)},
		{name: "element without id", meals: ptr(`[{"id":"1","name":"a"},{"name":"b"}]`)},
		{name: "non-string field", meals: ptr(`[{"id":"1","name":{"x":1}}]`)},
		{
			name:     "duplicate ids",
			meals:    ptr(`[{"id":"a","name":"x","calories":100,"category":"lunch"},{"id":"a","name":"y","calories":200,"category":"lunch"}]`),
			workouts: ptr(`[{"id":"w","type":"Run"},{"id":"w","type":"Swim"}]`),
		},
		{
			name:      "one kind malformed, other valid",
			meals:     ptr(`garbage`),
			workouts:  ptr(`[{"id":"w1","type":"Run","duration":30,"calories":300}]`),
			wantWorks: 1,
		},
		{
			name:      "numeric strings recovered",
			meals:     ptr(`[{"id":"m1","name":"Lunch","calories":"500","category":"lunch"}]`),
			wantMeals: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := memory.NewStore()
			if tt.meals != nil {
				require.NoError(t, kv.Set(types.MealsKey, *tt.meals))
			}
			if tt.workouts != nil {
				require.NoError(t, kv.Set(types.WorkoutsKey, *tt.workouts))
			}

			s := NewStore(kv)
			require.NoError(t, s.Load())
			assert.Len(t, s.Meals(), tt.wantMeals)
			assert.Len(t, s.Workouts(), tt.wantWorks)
		})
	}
}

func TestLoadCoercesStoredValues(t *testing.T) {
	kv := memory.NewStore()
	require.NoError(t, kv.Set(types.MealsKey, `[{"id":"m1","name":"Lunch","calories":"500","category":"lunch","extra":true}]`))
	require.NoError(t, kv.Set(types.WorkoutsKey, `[{"id":"w1","type":"Run","duration":-5,"calories":"x"}]`))

	s := NewStore(kv)
	require.NoError(t, s.Load())

	assert.Equal(t, []types.MealEntry{{ID: "m1", Name: "Lunch", Calories: 500, Category: "lunch"}}, s.Meals())
	assert.Equal(t, []types.WorkoutEntry{{ID: "w1", Type: "Run", Duration: 0, Calories: 0}}, s.Workouts())
}

func TestLoadReplacesSequences(t *testing.T) {
	s, kv := newTestStore(t)
	addMeal(t, s, "A", 1, types.CategorySnack)
	require.NoError(t, kv.Set(types.MealsKey, `[]`))

	require.NoError(t, s.Load())
	assert.Empty(t, s.Meals())
}

func TestLoadAdapterError(t *testing.T) {
	kv := &failingKV{Store: memory.NewStore(), failAfter: -1}
	s := NewStore(kv)

	err := s.Load()
	assert.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, s.Meals())
	assert.Empty(t, s.Workouts())
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	kv := &failingKV{Store: memory.NewStore(), failAfter: 1}
	s := NewStore(kv)

	_, err := s.AddMeal(types.MealInput{Name: "A", Calories: 1})
	require.NoError(t, err)

	m, err := s.AddMeal(types.MealInput{Name: "B", Calories: 2})
	assert.ErrorIs(t, err, errDiskFull)
	assert.NotEmpty(t, m.ID)
	assert.Len(t, s.Meals(), 2)
}

func TestReset(t *testing.T) {
	s, kv := newTestStore(t)
	meal := addMeal(t, s, "A", 1, types.CategorySnack)
	addWorkout(t, s, "Run", 10, 100)
	require.True(t, s.BeginEdit(types.KindMeal, meal.ID))

	require.NoError(t, s.Reset())

	assert.Empty(t, s.Meals())
	assert.Empty(t, s.Workouts())
	_, ok := s.Editing(types.KindMeal)
	assert.False(t, ok)
	assert.Equal(t, 0, kv.Len())
	assert.Equal(t, types.Totals{}, s.Totals())
}

func TestAccessorsReturnCopies(t *testing.T) {
	s, _ := newTestStore(t)
	addMeal(t, s, "A", 1, types.CategorySnack)

	meals := s.Meals()
	meals[0].Name = "mutated"

	assert.Equal(t, "A", s.Meals()[0].Name)
}

func ptr(s string) *string { return &s }
