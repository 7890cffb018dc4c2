package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nutrifit/internal/memory"
	"github.com/mesh-intelligence/nutrifit/internal/tracker"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

func TestLines(t *testing.T) {
	assert.Equal(t, "Breakfast (breakfast) - 400 cal",
		MealLine(types.MealEntry{Name: "Breakfast", Calories: 400, Category: "breakfast"}))
	assert.Equal(t, "Running - 30 min - 300.5 cal",
		WorkoutLine(types.WorkoutEntry{Type: "Running", Duration: 30, Calories: 300.5}))
}

func TestDashboardEmpty(t *testing.T) {
	s := tracker.NewStore(memory.NewStore())
	var buf bytes.Buffer

	require.NoError(t, Dashboard(&buf, Snapshot(s)))

	out := buf.String()
	assert.Contains(t, out, "No meals logged.")
	assert.Contains(t, out, "No workouts logged.")
	assert.Contains(t, out, "Net:          0")
}

func TestDashboardMarksEditedRow(t *testing.T) {
	s := tracker.NewStore(memory.NewStore(), tracker.WithIDGenerator(sequentialIDs()))
	meal, err := s.AddMeal(types.MealInput{Name: "Breakfast", Calories: 400, Category: "breakfast"})
	require.NoError(t, err)
	_, err = s.AddWorkout(types.WorkoutInput{Type: "Running", Duration: 30, Calories: 300})
	require.NoError(t, err)
	require.True(t, s.BeginEdit(types.KindMeal, meal.ID))

	var buf bytes.Buffer
	require.NoError(t, Dashboard(&buf, Snapshot(s)))

	out := buf.String()
	assert.Contains(t, out, "*id-0001")
	assert.Contains(t, out, "id-0002")
	assert.NotContains(t, out, "*id-0002")
	assert.Contains(t, out, "Total: 1 meal(s)")
	assert.Contains(t, out, "Total: 1 workout(s)")
	assert.Contains(t, out, "Calories in:  400")
	assert.Contains(t, out, "Calories out: 300")
	assert.Contains(t, out, "Net:          100")

	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, strings.TrimRight(line, " "), line, "no trailing spaces")
	}
}

func TestJSONSnapshot(t *testing.T) {
	s := tracker.NewStore(memory.NewStore())
	var buf bytes.Buffer

	require.NoError(t, JSON(&buf, Snapshot(s)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []any{}, got["meals"], "empty lists render as [] not null")
	assert.Equal(t, []any{}, got["workouts"])
	assert.NotContains(t, got, "editing_meal_id")
}

func TestTruncateAndShortID(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 40))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))

	fits := strings.Repeat("a", 36) + "éééé"
	assert.Equal(t, fits, truncate(fits, 40))

	long := strings.Repeat("a", 36) + "é…xyz"
	got := truncate(long, 40)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 36)+"é...", got)
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "56789abc", shortID("0123456789abc"))
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%04d", n)
	}
}
