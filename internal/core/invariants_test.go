package core

import (
	"strings"
	"testing"
)

func validProgram() *Program {
	return &Program{
		WorkoutGroups:    []WorkoutGroup{{ID: 1, Name: "Chest"}, {ID: 2, Name: "Back"}},
		Exercises:        []Exercise{{ID: 1, WorkoutGroupID: 1, Name: "Bench"}, {ID: 2, WorkoutGroupID: 2, Name: "Row"}},
		Days:             []Day{{ID: 1, DayName: "Mon", DayOrder: 2}, {ID: 2, DayName: "Tue", DayOrder: 1}},
		DayWorkoutGroups: []DayWorkoutGroup{{ID: 1, DayID: 1, WorkoutGroupID: 1}},
		WorkoutSets: []WorkoutSet{
			{ID: 1, DayID: 1, ExerciseID: 1, ExerciseOrder: 1, SetOrder: 1, Reps: IntPtr(5)},
			{ID: 2, DayID: 1, ExerciseID: 1, ExerciseOrder: 1, SetOrder: 2, RIR: IntPtr(0)},
			{ID: 3, DayID: 1, ExerciseID: 2, ExerciseOrder: 2, SetOrder: 1, Weight: FloatPtr(0)},
		},
	}
}

func TestCheckInvariants_Valid(t *testing.T) {
	if problems := CheckInvariants(validProgram()); len(problems) != 0 {
		t.Errorf("CheckInvariants(valid) = %v, want none", problems)
	}
	if problems := CheckInvariants(&Program{}); len(problems) != 0 {
		t.Errorf("CheckInvariants(empty) = %v, want none", problems)
	}
}

func TestCheckInvariants_Violations(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(p *Program)
		wantSection string
		wantText    string
	}{
		{
			name:        "gap in day orders",
			mutate:      func(p *Program) { p.Days[0].DayOrder = 3 },
			wantSection: SectionDays,
			wantText:    "not a permutation",
		},
		{
			name:        "repeated day order",
			mutate:      func(p *Program) { p.Days[0].DayOrder = 1 },
			wantSection: SectionDays,
			wantText:    "not a permutation",
		},
		{
			name:        "missing workout group",
			mutate:      func(p *Program) { p.Exercises[0].WorkoutGroupID = 9 },
			wantSection: SectionExercises,
			wantText:    "missing workout group 9",
		},
		{
			name:        "set on missing day",
			mutate:      func(p *Program) { p.WorkoutSets[2].DayID = 7 },
			wantSection: SectionWorkoutSets,
			wantText:    "missing day 7",
		},
		{
			name: "tag twice",
			mutate: func(p *Program) {
				p.DayWorkoutGroups = append(p.DayWorkoutGroups, DayWorkoutGroup{ID: 2, DayID: 1, WorkoutGroupID: 1})
			},
			wantSection: SectionDayWorkoutGroups,
			wantText:    "twice",
		},
		{
			name:        "exercise order not dense",
			mutate:      func(p *Program) { p.WorkoutSets[2].ExerciseOrder = 3 },
			wantSection: SectionWorkoutSets,
			wantText:    "exercise_order",
		},
		{
			name:        "mixed exercise order",
			mutate:      func(p *Program) { p.WorkoutSets[1].ExerciseOrder = 2 },
			wantSection: SectionWorkoutSets,
			wantText:    "exercise_order 1 and 2",
		},
		{
			name:        "set order gap",
			mutate:      func(p *Program) { p.WorkoutSets[1].SetOrder = 3 },
			wantSection: SectionWorkoutSets,
			wantText:    "set_order",
		},
		{
			name:        "zero reps",
			mutate:      func(p *Program) { p.WorkoutSets[0].Reps = IntPtr(0) },
			wantSection: SectionWorkoutSets,
			wantText:    "reps",
		},
		{
			name:        "negative rir",
			mutate:      func(p *Program) { p.WorkoutSets[1].RIR = IntPtr(-1) },
			wantSection: SectionWorkoutSets,
			wantText:    "rir",
		},
		{
			name:        "group names differ only in case",
			mutate:      func(p *Program) { p.WorkoutGroups[1].Name = "CHEST" },
			wantSection: SectionWorkoutGroups,
			wantText:    "share the name",
		},
		{
			name:        "blank day name",
			mutate:      func(p *Program) { p.Days[1].DayName = "  " },
			wantSection: SectionDays,
			wantText:    "empty day_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProgram()
			tt.mutate(p)

			problems := CheckInvariants(p)
			if len(problems) == 0 {
				t.Fatal("CheckInvariants() found no problems")
			}
			for _, pr := range problems {
				if pr.Section == tt.wantSection && strings.Contains(pr.Message, tt.wantText) {
					return
				}
			}
			t.Errorf("CheckInvariants() = %v, want a [%s] problem containing %q", problems, tt.wantSection, tt.wantText)
		})
	}
}

func TestIsPermutation(t *testing.T) {
	tests := []struct {
		values []int
		want   bool
	}{
		{nil, true},
		{[]int{1}, true},
		{[]int{2, 1, 3}, true},
		{[]int{0, 1}, false},
		{[]int{1, 1}, false},
		{[]int{1, 3}, false},
	}

	for _, tt := range tests {
		if got := isPermutation(tt.values); got != tt.want {
			t.Errorf("isPermutation(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}
