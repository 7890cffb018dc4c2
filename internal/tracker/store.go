// Package tracker implements the record store: two ordered sequences of
// meals and workouts, a transient editing marker per kind, and
// write-through persistence to a types.KVStore.
package tracker

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/nutrifit/internal/log"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

// Store owns the meal and workout sequences. Every mutation is applied in
// memory and then written through to the KVStore under the kind's key.
// Editing markers are never persisted.
//
// A Store has a single owner and is not safe for concurrent use.
type Store struct {
	kv    types.KVStore
	log   *log.Logger
	newID func() string

	meals    []types.MealEntry
	workouts []types.WorkoutEntry

	editingMealID    string
	editingWorkoutID string

	// issued holds every ID created or loaded by this store so deleted
	// IDs are never handed out again.
	issued map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.WithComponent(log.ComponentTracker)
		}
	}
}

// WithIDGenerator replaces the UUID v7 generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore creates an empty store over kv. Call Load to read persisted
// records.
func NewStore(kv types.KVStore, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		log:    log.Discard(),
		newID:  generateID,
		issued: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces both sequences with the persisted contents. A missing,
// empty, or malformed value leaves that sequence empty; only adapter
// failures are returned, and the affected sequence is empty in that case
// too. Editing markers are cleared.
func (s *Store) Load() error {
	s.editingMealID = ""
	s.editingWorkoutID = ""

	var firstErr error

	raw, err := s.read(types.KindMeal)
	if err != nil {
		firstErr = err
	}
	s.meals = nil
	if raw != "" {
		meals, err := decodeMeals(raw)
		if err != nil {
			s.log.Warn("discarding malformed persisted meals", "key", types.MealsKey, "error", err)
		} else {
			s.meals = meals
		}
	}

	raw, err = s.read(types.KindWorkout)
	if err != nil && firstErr == nil {
		firstErr = err
	}
	s.workouts = nil
	if raw != "" {
		workouts, err := decodeWorkouts(raw)
		if err != nil {
			s.log.Warn("discarding malformed persisted workouts", "key", types.WorkoutsKey, "error", err)
		} else {
			s.workouts = workouts
		}
	}

	for _, m := range s.meals {
		s.issued[m.ID] = struct{}{}
	}
	for _, w := range s.workouts {
		s.issued[w.ID] = struct{}{}
	}

	s.log.Debug("loaded records", "meals", len(s.meals), "workouts", len(s.workouts))
	return firstErr
}

func (s *Store) read(kind types.Kind) (string, error) {
	key, err := types.StorageKey(kind)
	if err != nil {
		return "", err
	}
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return raw, nil
}

// Meals returns a copy of the meal sequence in insertion order.
func (s *Store) Meals() []types.MealEntry {
	return slices.Clone(s.meals)
}

// Workouts returns a copy of the workout sequence in insertion order.
func (s *Store) Workouts() []types.WorkoutEntry {
	return slices.Clone(s.workouts)
}

// Meal returns the meal with the given ID.
func (s *Store) Meal(id string) (types.MealEntry, bool) {
	i := s.mealIndex(id)
	if i < 0 {
		return types.MealEntry{}, false
	}
	return s.meals[i], true
}

// Workout returns the workout with the given ID.
func (s *Store) Workout(id string) (types.WorkoutEntry, bool) {
	i := s.workoutIndex(id)
	if i < 0 {
		return types.WorkoutEntry{}, false
	}
	return s.workouts[i], true
}

// Totals computes the dashboard totals over the current sequences.
func (s *Store) Totals() types.Totals {
	return types.ComputeTotals(s.meals, s.workouts)
}

// AddMeal appends a new meal with a fresh ID and persists the meal
// sequence. Numeric input is coerced, never rejected. The returned error
// is non-nil only if persistence fails; the meal is in memory either way.
func (s *Store) AddMeal(in types.MealInput) (types.MealEntry, error) {
	meal := types.NewMealEntry(s.uniqueID(), in)
	s.meals = append(s.meals, meal)
	s.log.Debug("meal added", "id", meal.ID, "calories", meal.Calories)
	return meal, s.persistMeals()
}

// AddWorkout appends a new workout with a fresh ID and persists the
// workout sequence.
func (s *Store) AddWorkout(in types.WorkoutInput) (types.WorkoutEntry, error) {
	workout := types.NewWorkoutEntry(s.uniqueID(), in)
	s.workouts = append(s.workouts, workout)
	s.log.Debug("workout added", "id", workout.ID, "calories", workout.Calories)
	return workout, s.persistWorkouts()
}

// UpdateMeal overwrites every field of the meal with the given ID, keeping
// its ID and position, and persists. Returns types.ErrNotFound, with no
// side effect, if no such meal exists. A successful update clears the
// meal editing marker when it pointed at this meal.
func (s *Store) UpdateMeal(id string, in types.MealInput) (types.MealEntry, error) {
	i := s.mealIndex(id)
	if i < 0 {
		return types.MealEntry{}, types.ErrNotFound
	}
	s.meals[i] = types.NewMealEntry(id, in)
	if s.editingMealID == id {
		s.editingMealID = ""
	}
	s.log.Debug("meal updated", "id", id)
	return s.meals[i], s.persistMeals()
}

// UpdateWorkout overwrites every field of the workout with the given ID.
// Returns types.ErrNotFound if no such workout exists.
func (s *Store) UpdateWorkout(id string, in types.WorkoutInput) (types.WorkoutEntry, error) {
	i := s.workoutIndex(id)
	if i < 0 {
		return types.WorkoutEntry{}, types.ErrNotFound
	}
	s.workouts[i] = types.NewWorkoutEntry(id, in)
	if s.editingWorkoutID == id {
		s.editingWorkoutID = ""
	}
	s.log.Debug("workout updated", "id", id)
	return s.workouts[i], s.persistWorkouts()
}

// DeleteMeal removes the meal with the given ID and persists. Unknown IDs
// are a no-op.
func (s *Store) DeleteMeal(id string) error {
	i := s.mealIndex(id)
	if i < 0 {
		return nil
	}
	s.meals = slices.Delete(s.meals, i, i+1)
	if s.editingMealID == id {
		s.editingMealID = ""
	}
	s.log.Debug("meal deleted", "id", id)
	return s.persistMeals()
}

// DeleteWorkout removes the workout with the given ID and persists.
// Unknown IDs are a no-op.
func (s *Store) DeleteWorkout(id string) error {
	i := s.workoutIndex(id)
	if i < 0 {
		return nil
	}
	s.workouts = slices.Delete(s.workouts, i, i+1)
	if s.editingWorkoutID == id {
		s.editingWorkoutID = ""
	}
	s.log.Debug("workout deleted", "id", id)
	return s.persistWorkouts()
}

// Delete removes a record of the given kind.
func (s *Store) Delete(kind types.Kind, id string) error {
	switch kind {
	case types.KindMeal:
		return s.DeleteMeal(id)
	case types.KindWorkout:
		return s.DeleteWorkout(id)
	default:
		return types.ErrInvalidKind
	}
}

// BeginEdit marks the record with the given ID as being edited, replacing
// any previous marker for that kind. It reports false, and leaves the
// marker untouched, if no such record exists.
func (s *Store) BeginEdit(kind types.Kind, id string) bool {
	switch kind {
	case types.KindMeal:
		if !s.hasMeal(id) {
			return false
		}
		s.editingMealID = id
	case types.KindWorkout:
		if !s.hasWorkout(id) {
			return false
		}
		s.editingWorkoutID = id
	default:
		return false
	}
	return true
}

// CancelEdit clears the editing marker for kind.
func (s *Store) CancelEdit(kind types.Kind) {
	switch kind {
	case types.KindMeal:
		s.editingMealID = ""
	case types.KindWorkout:
		s.editingWorkoutID = ""
	}
}

// Editing returns the ID currently marked for editing for kind.
func (s *Store) Editing(kind types.Kind) (string, bool) {
	var id string
	switch kind {
	case types.KindMeal:
		id = s.editingMealID
	case types.KindWorkout:
		id = s.editingWorkoutID
	}
	return id, id != ""
}

// Reset clears both sequences and markers and removes both keys from the
// KVStore.
func (s *Store) Reset() error {
	s.meals = nil
	s.workouts = nil
	s.editingMealID = ""
	s.editingWorkoutID = ""

	for _, kind := range types.Kinds {
		key, err := types.StorageKey(kind)
		if err != nil {
			return err
		}
		if err := s.kv.Remove(key); err != nil {
			return fmt.Errorf("removing %s: %w", key, err)
		}
	}
	s.log.Info("all records reset")
	return nil
}

func (s *Store) persistMeals() error {
	return persistSequence(s, types.KindMeal, s.meals)
}

func (s *Store) persistWorkouts() error {
	return persistSequence(s, types.KindWorkout, s.workouts)
}

// persistSequence writes one kind's whole sequence under its storage key.
func persistSequence[T any](s *Store, kind types.Kind, records []T) error {
	key, err := types.StorageKey(kind)
	if err != nil {
		return err
	}
	v, err := encodeSequence(records)
	if err != nil {
		return fmt.Errorf("encoding %ss: %w", kind, err)
	}
	if err := s.kv.Set(key, v); err != nil {
		s.log.Error("persisting records failed", "kind", kind, "key", key, "error", err)
		return fmt.Errorf("persisting %ss: %w", kind, err)
	}
	return nil
}

// uniqueID draws IDs until one has never been issued by this store.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if _, seen := s.issued[id]; id != "" && !seen {
			s.issued[id] = struct{}{}
			return id
		}
	}
}

func (s *Store) mealIndex(id string) int {
	return slices.IndexFunc(s.meals, func(m types.MealEntry) bool { return m.ID == id })
}

func (s *Store) workoutIndex(id string) int {
	return slices.IndexFunc(s.workouts, func(w types.WorkoutEntry) bool { return w.ID == id })
}

func (s *Store) hasMeal(id string) bool    { return s.mealIndex(id) >= 0 }
func (s *Store) hasWorkout(id string) bool { return s.workoutIndex(id) >= 0 }
