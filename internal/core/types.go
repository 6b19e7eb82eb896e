package core

import (
	"strings"
	"time"
)

// WorkoutGroup is a labeled muscle or focus category, e.g. "Chest".
// Names are unique case-insensitively.
type WorkoutGroup struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

// Exercise is a named movement filed under exactly one workout group.
type Exercise struct {
	ID             int64  `json:"id"`
	WorkoutGroupID int64  `json:"workoutGroupId"`
	Name           string `json:"name"`
	Notes          string `json:"notes"`
}

// Day is an ordered position in the program. DayOrder numbers days 1..N.
type Day struct {
	ID       int64  `json:"id"`
	DayName  string `json:"dayName"`
	DayOrder int    `json:"dayOrder"`
	Notes    string `json:"notes"`
}

// DayWorkoutGroup tags a day with a workout group.
type DayWorkoutGroup struct {
	ID             int64 `json:"id"`
	DayID          int64 `json:"dayId"`
	WorkoutGroupID int64 `json:"workoutGroupId"`
}

// WorkoutSet is one observation of an exercise on a day.
// ExerciseOrder positions the exercise within the day; SetOrder positions the
// set within its (day, exercise) pair.
type WorkoutSet struct {
	ID            int64    `json:"id"`
	DayID         int64    `json:"dayId"`
	ExerciseID    int64    `json:"exerciseId"`
	ExerciseOrder int      `json:"exerciseOrder"`
	SetOrder      int      `json:"setOrder"`
	Reps          *int     `json:"reps"`
	Weight        *float64 `json:"weight"`
	RIR           *int     `json:"rir"`
	Notes         string   `json:"notes"`
}

// SetMetrics are the user-entered values of a set.
type SetMetrics struct {
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"weight"`
	RIR    *int     `json:"rir"`
	Notes  string   `json:"notes"`
}

// NewWorkoutGroup returns a validated workout group with trimmed fields.
func NewWorkoutGroup(id int64, name, notes string) (WorkoutGroup, error) {
	g := WorkoutGroup{ID: id, Name: strings.TrimSpace(name), Notes: strings.TrimSpace(notes)}
	return g, AsError("workout_group", Required(g.Name, "name"))
}

// NewExercise returns a validated exercise with trimmed fields.
func NewExercise(id, workoutGroupID int64, name, notes string) (Exercise, error) {
	e := Exercise{ID: id, WorkoutGroupID: workoutGroupID, Name: strings.TrimSpace(name), Notes: strings.TrimSpace(notes)}
	return e, AsError("exercise",
		Required(e.Name, "name"),
		Positive(&e.WorkoutGroupID, "workout_group_id"),
	)
}

// NewDay returns a validated day with trimmed fields.
func NewDay(id int64, dayName string, dayOrder int, notes string) (Day, error) {
	d := Day{ID: id, DayName: strings.TrimSpace(dayName), DayOrder: dayOrder, Notes: strings.TrimSpace(notes)}
	return d, AsError("day",
		Required(d.DayName, "day_name"),
		Positive(&d.DayOrder, "day_order"),
		Int32(&d.DayOrder, "day_order"),
	)
}

// NewWorkoutSet returns a validated set with trimmed notes.
func NewWorkoutSet(id, dayID, exerciseID int64, exerciseOrder, setOrder int, m SetMetrics) (WorkoutSet, error) {
	s := WorkoutSet{
		ID:            id,
		DayID:         dayID,
		ExerciseID:    exerciseID,
		ExerciseOrder: exerciseOrder,
		SetOrder:      setOrder,
		Reps:          m.Reps,
		Weight:        m.Weight,
		RIR:           m.RIR,
		Notes:         strings.TrimSpace(m.Notes),
	}
	return s, AsError("workout_set",
		Positive(&s.DayID, "day_id"),
		Positive(&s.ExerciseID, "exercise_id"),
		Positive(&s.ExerciseOrder, "exercise_order"),
		Positive(&s.SetOrder, "set_order"),
		Int32(&s.ExerciseOrder, "exercise_order"),
		Int32(&s.SetOrder, "set_order"),
		Positive(s.Reps, "reps"),
		Int32(s.Reps, "reps"),
		NonNegative(s.Weight, "weight"),
		NonNegative(s.RIR, "rir"),
		Int32(s.RIR, "rir"),
	)
}

// ValidateMetrics checks the numeric domains of a set.
func ValidateMetrics(m SetMetrics) error {
	return AsError("workout_set",
		Positive(m.Reps, "reps"),
		Int32(m.Reps, "reps"),
		NonNegative(m.Weight, "weight"),
		NonNegative(m.RIR, "rir"),
		Int32(m.RIR, "rir"),
	)
}

// Metrics returns the user-entered values of the set.
func (s WorkoutSet) Metrics() SetMetrics {
	return SetMetrics{Reps: s.Reps, Weight: s.Weight, RIR: s.RIR, Notes: s.Notes}
}

// ImportCounts summarizes how many rows were loaded per section.
type ImportCounts struct {
	WorkoutGroups    int `json:"workoutGroups"`
	Exercises        int `json:"exercises"`
	Days             int `json:"days"`
	DayWorkoutGroups int `json:"dayWorkoutGroups"`
	WorkoutSets      int `json:"workoutSets"`
}

// Total returns the number of rows across all sections.
func (c ImportCounts) Total() int {
	return c.WorkoutGroups + c.Exercises + c.Days + c.DayWorkoutGroups + c.WorkoutSets
}

// ImportResult contains the final result of an import.
type ImportResult struct {
	ImportID string        `json:"importId"`
	Format   Format        `json:"format"`
	Counts   ImportCounts  `json:"counts"`
	Warnings []string      `json:"warnings,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Export is a rendered document ready for download.
type Export struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}
