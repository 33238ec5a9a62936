package reconcile_test

import (
	"testing"
	"time"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCoerceDate(t *testing.T) {
	want := time.Date(2025, 5, 20, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want time.Time
		ok   bool
	}{
		{"rfc3339", "2025-05-20T18:30:00Z", want, true},
		{"rfc3339 with millis", "2025-05-20T18:30:00.000Z", want, true},
		{"date only", "2025-05-20", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), true},
		{"epoch millis", float64(want.UnixMilli()), want, true},
		{"time value", want, want, true},
		{"nil", nil, time.Time{}, false},
		{"empty string", "", time.Time{}, false},
		{"garbage", "not-a-date", time.Time{}, false},
		{"negative number", float64(-1), time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reconcile.CoerceDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2025, 5, 20, 18, 30, 15, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Now().UTC().Truncate(time.Second),
	}
	for _, d := range dates {
		encoded := reconcile.EncodeDate(d)
		decoded, ok := reconcile.CoerceDate(encoded)
		require.True(t, ok, "round trip failed for %v", d)
		assert.True(t, decoded.Equal(d), "got %v want %v", decoded, d)
	}
}

func TestNormalize_MalformedDatesKeepRecord(t *testing.T) {
	userID := primitive.NewObjectID()
	raws := []reconcile.Raw{
		{
			Name:          "Treino de Pernas",
			Date:          "15/05/2025", // not an accepted layout
			Completed:     true,
			ExecutionDate: "also-garbage",
			Exercises: []reconcile.RawExercise{
				{ExerciseID: "1", ExerciseName: "Agachamento", Sets: 4, Reps: 12},
			},
		},
	}

	var workouts []domain.Workout
	require.NotPanics(t, func() {
		workouts = reconcile.Normalize(userID, raws)
	})

	require.Len(t, workouts, 1)
	assert.Equal(t, "Treino de Pernas", workouts[0].Name)
	assert.True(t, workouts[0].Date.IsZero())
	assert.Nil(t, workouts[0].ExecutionDate)
	assert.True(t, workouts[0].Completed)
	require.Len(t, workouts[0].Exercises, 1)
	assert.Equal(t, 4, workouts[0].Exercises[0].Sets)
}

func TestNormalize_LegacyExecutionDateField(t *testing.T) {
	userID := primitive.NewObjectID()
	raws := []reconcile.Raw{
		{Name: "a", Completed: true, ExecutionDateLegacy: "2025-05-20T18:30:00Z"},
		{Name: "b", Completed: true, ExecutionDate: "2025-05-21T18:30:00Z"},
	}
	workouts := reconcile.Normalize(userID, raws)
	require.Len(t, workouts, 2)
	require.NotNil(t, workouts[0].ExecutionDate)
	assert.Equal(t, 20, workouts[0].ExecutionDate.Day())
	require.NotNil(t, workouts[1].ExecutionDate)
	assert.Equal(t, 21, workouts[1].ExecutionDate.Day())
}

func day(d int) time.Time {
	return time.Date(2025, 5, d, 12, 0, 0, 0, time.UTC)
}

func TestSortByBestDate(t *testing.T) {
	exec := day(25)
	workouts := []domain.Workout{
		{Name: "old", Date: day(1)},
		{Name: "completed-late", Date: day(2), Completed: true, ExecutionDate: &exec},
		{Name: "mid", Date: day(10)},
		{Name: "no-date"},
	}

	reconcile.SortByBestDate(workouts)

	names := make([]string, 0, len(workouts))
	for _, w := range workouts {
		names = append(names, w.Name)
	}
	// completed-late wins through its execution date; the zero-date record sorts last
	assert.Equal(t, []string{"completed-late", "mid", "old", "no-date"}, names)
}

func TestSortByBestDate_StableOnTies(t *testing.T) {
	same := day(10)
	workouts := []domain.Workout{
		{Name: "first", Date: same},
		{Name: "second", Date: same},
		{Name: "third", Date: same},
	}
	reconcile.SortByBestDate(workouts)
	assert.Equal(t, "first", workouts[0].Name)
	assert.Equal(t, "second", workouts[1].Name)
	assert.Equal(t, "third", workouts[2].Name)
}

func TestHistoryUpcomingPartition(t *testing.T) {
	exec := day(20)
	workouts := []domain.Workout{
		{Name: "done-1", Date: day(1), Completed: true, ExecutionDate: &exec},
		{Name: "planned-1", Date: day(30)},
		{Name: "done-2", Date: day(5), Completed: true},
		{Name: "planned-2", Date: day(28)},
	}

	history := reconcile.History(workouts)
	upcoming := reconcile.Upcoming(workouts)

	// strict partition: every record in exactly one view
	assert.Len(t, history, 2)
	assert.Len(t, upcoming, 2)
	for _, w := range history {
		assert.True(t, w.Completed)
	}
	for _, w := range upcoming {
		assert.False(t, w.Completed)
	}

	// history descending by best date, upcoming ascending by scheduled date
	assert.Equal(t, "done-1", history[0].Name)
	assert.Equal(t, "done-2", history[1].Name)
	assert.Equal(t, "planned-2", upcoming[0].Name)
	assert.Equal(t, "planned-1", upcoming[1].Name)
}
