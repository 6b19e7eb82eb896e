package core

import (
	"strings"
	"testing"
)

func prettyProgram() *Program {
	return &Program{
		WorkoutGroups: []WorkoutGroup{{ID: 1, Name: "Chest"}, {ID: 2, Name: "Back"}},
		Exercises: []Exercise{
			{ID: 1, WorkoutGroupID: 1, Name: "X"},
			{ID: 2, WorkoutGroupID: 2, Name: "Y"},
		},
		// Listed out of order on purpose.
		Days: []Day{
			{ID: 2, DayName: "Tue", DayOrder: 2},
			{ID: 1, DayName: "Mon", DayOrder: 1},
			{ID: 3, DayName: "Rest", DayOrder: 3},
		},
		WorkoutSets: []WorkoutSet{
			{ID: 1, DayID: 1, ExerciseID: 1, ExerciseOrder: 2, SetOrder: 1, Reps: IntPtr(10), Weight: FloatPtr(40), RIR: IntPtr(2)},
			{ID: 2, DayID: 1, ExerciseID: 1, ExerciseOrder: 2, SetOrder: 2, Reps: IntPtr(10), Weight: FloatPtr(40), RIR: IntPtr(1)},
			{ID: 4, DayID: 1, ExerciseID: 2, ExerciseOrder: 1, SetOrder: 2, Reps: IntPtr(8), Weight: FloatPtr(62.5)},
			{ID: 3, DayID: 1, ExerciseID: 2, ExerciseOrder: 1, SetOrder: 1, Reps: IntPtr(8), Weight: FloatPtr(60), Notes: "warm, then work"},
			{ID: 5, DayID: 2, ExerciseID: 2, ExerciseOrder: 1, SetOrder: 1},
		},
	}
}

func TestEncodePretty_Ordering(t *testing.T) {
	got := EncodePretty(prettyProgram())

	want := strings.Join([]string{
		"day,exercise,workout_group,set_number,reps,weight,rir,notes",
		`Mon,Y,Back,1,8,60,,"warm, then work"`,
		"Mon,Y,Back,2,8,62.5,,",
		"Mon,X,Chest,1,10,40,2,",
		"Mon,X,Chest,2,10,40,1,",
		"Tue,Y,Back,1,,,,",
		"Rest,(No exercises),,,,,,",
		"",
	}, "\n")

	if got != want {
		t.Errorf("EncodePretty() =\n%s\nwant\n%s", got, want)
	}
}

func TestEncodePretty_Empty(t *testing.T) {
	got := EncodePretty(&Program{})
	want := "day,exercise,workout_group,set_number,reps,weight,rir,notes\n"
	if got != want {
		t.Errorf("EncodePretty(empty) = %q, want %q", got, want)
	}
}
