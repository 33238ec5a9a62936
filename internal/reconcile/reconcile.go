// Package reconcile shapes heterogeneous workout records (remote rows,
// legacy client exports) into render-safe domain workouts. Its contract:
// dates come out as valid time values or stay absent, malformed input is
// logged and kept rather than dropped, and ordering is always defined.
package reconcile

import (
	"fmt"
	"sort"
	"time"

	"drelui/kangofit/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Raw is a loosely-typed workout record as found in legacy client exports:
// fields may be missing, dates may be strings in several layouts, epoch
// milliseconds, or absent. The old client wrote both "executionDate" and
// "executiondate" at different points in its history; both are accepted.
type Raw struct {
	ID                  string                  `json:"id"`
	Name                string                  `json:"name"`
	Date                any                     `json:"date"`
	Completed           bool                    `json:"completed"`
	ExecutionDate       any                     `json:"executionDate"`
	ExecutionDateLegacy any                     `json:"executiondate"`
	Notes               string                  `json:"notes"`
	Exercises           []RawExercise           `json:"exercises"`
	Feedback            *domain.WorkoutFeedback `json:"feedback"`
}

// RawExercise mirrors the legacy planned-exercise shape.
type RawExercise struct {
	ExerciseID   string   `json:"exerciseId"`
	ExerciseName string   `json:"exerciseName"`
	Sets         int      `json:"sets"`
	Reps         int      `json:"reps"`
	Weight       *float64 `json:"weight"`
}

// dateLayouts are tried in order when coercing string dates. The legacy
// client serialized JS Dates, so RFC3339 with milliseconds dominates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CoerceDate normalizes a loosely-typed date value to a time.Time.
// It accepts time.Time, the layouts above, and epoch milliseconds
// (float64 is what encoding/json hands over for numbers). The second
// return is false when the value was absent or unparseable; the caller
// keeps the record with a zero date instead of dropping it.
func CoerceDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v, true
	case string:
		if v == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case float64:
		// JS Date.getTime() epoch milliseconds.
		if v <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		if v <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(v).UTC(), true
	default:
		return time.Time{}, false
	}
}

// Normalize converts raw records into domain workouts owned by userID.
// It never panics on malformed dates: a warning is logged and the record
// is kept with a zero/absent date.
func Normalize(userID primitive.ObjectID, raws []Raw) []domain.Workout {
	workouts := make([]domain.Workout, 0, len(raws))
	for i, raw := range raws {
		w := domain.Workout{
			UserID:    userID,
			Name:      raw.Name,
			Completed: raw.Completed,
			Notes:     raw.Notes,
			Feedback:  raw.Feedback,
		}

		if date, ok := CoerceDate(raw.Date); ok {
			w.Date = date
		} else if raw.Date != nil {
			log.Warnf("reconcile: record %d (%q): unparseable date %v, keeping record with fallback date", i, raw.Name, raw.Date)
		}

		execRaw := raw.ExecutionDate
		if execRaw == nil {
			execRaw = raw.ExecutionDateLegacy
		}
		if execDate, ok := CoerceDate(execRaw); ok {
			w.ExecutionDate = &execDate
		} else if execRaw != nil {
			log.Warnf("reconcile: record %d (%q): unparseable execution date %v", i, raw.Name, execRaw)
		}

		w.Exercises = make([]domain.WorkoutExercise, 0, len(raw.Exercises))
		for _, ex := range raw.Exercises {
			w.Exercises = append(w.Exercises, domain.WorkoutExercise{
				ExerciseID:   ex.ExerciseID,
				ExerciseName: ex.ExerciseName,
				Sets:         ex.Sets,
				Reps:         ex.Reps,
				Weight:       ex.Weight,
			})
		}

		workouts = append(workouts, w)
	}
	return workouts
}

// SortByBestDate orders workouts descending by their best-available date
// (execution date when completed, scheduled date otherwise). The sort is
// stable: ties keep input order. Records with unparseable dates carry a
// zero time and therefore sort last.
func SortByBestDate(workouts []domain.Workout) {
	sort.SliceStable(workouts, func(i, j int) bool {
		return workouts[i].BestDate().After(workouts[j].BestDate())
	})
}

// History returns only completed workouts, newest execution first.
func History(workouts []domain.Workout) []domain.Workout {
	out := make([]domain.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.Completed {
			out = append(out, w)
		}
	}
	SortByBestDate(out)
	return out
}

// Upcoming returns only not-yet-completed workouts, soonest first.
func Upcoming(workouts []domain.Workout) []domain.Workout {
	out := make([]domain.Workout, 0, len(workouts))
	for _, w := range workouts {
		if !w.Completed {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// EncodeDate renders a date in the canonical wire form. Paired with
// CoerceDate it round-trips to the second.
func EncodeDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// String implements a compact debug form for a raw record.
func (r Raw) String() string {
	return fmt.Sprintf("Raw{%s completed=%t exercises=%d}", r.Name, r.Completed, len(r.Exercises))
}
