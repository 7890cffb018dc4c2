package tracker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cast"

	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

// errMalformed marks a stored value that is not a well-formed sequence.
var errMalformed = errors.New("malformed sequence")

// encodeSequence serializes records as a JSON array. A nil slice encodes
// as [] rather than null.
func encodeSequence[T any](records []T) (string, error) {
	if records == nil {
		records = []T{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeObjects splits a stored value into one field map per record.
// The value must be a JSON array whose elements are objects carrying a
// non-empty string "id", with no id repeated.
func decodeObjects(raw string) ([]map[string]any, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if elems == nil {
		// The literal null.
		return nil, fmt.Errorf("%w: not an array", errMalformed)
	}

	objs := make([]map[string]any, 0, len(elems))
	seen := make(map[string]struct{}, len(elems))
	for i, elem := range elems {
		var obj map[string]any
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", errMalformed, i)
		}
		id, ok := obj["id"].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: element %d has no id", errMalformed, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: element %d repeats id %q", errMalformed, i, id)
		}
		seen[id] = struct{}{}
		objs = append(objs, obj)
	}
	return objs, nil
}

// stringField reads an optional string field. Absent or null is "".
func stringField(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: field %q: %v", errMalformed, key, err)
	}
	return s, nil
}

func decodeMeals(raw string) ([]types.MealEntry, error) {
	objs, err := decodeObjects(raw)
	if err != nil {
		return nil, err
	}
	meals := make([]types.MealEntry, 0, len(objs))
	for _, obj := range objs {
		name, err := stringField(obj, "name")
		if err != nil {
			return nil, err
		}
		category, err := stringField(obj, "category")
		if err != nil {
			return nil, err
		}
		meals = append(meals, types.NewMealEntry(obj["id"].(string), types.MealInput{
			Name:     name,
			Calories: obj["calories"],
			Category: category,
		}))
	}
	return meals, nil
}

func decodeWorkouts(raw string) ([]types.WorkoutEntry, error) {
	objs, err := decodeObjects(raw)
	if err != nil {
		return nil, err
	}
	workouts := make([]types.WorkoutEntry, 0, len(objs))
	for _, obj := range objs {
		typ, err := stringField(obj, "type")
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, types.NewWorkoutEntry(obj["id"].(string), types.WorkoutInput{
			Type:     typ,
			Duration: obj["duration"],
			Calories: obj["calories"],
		}))
	}
	return workouts, nil
}
