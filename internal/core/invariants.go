package core

import (
	"fmt"
	"sort"
	"strings"
)

// CheckInvariants reports every way p violates the model's invariants:
// resolving foreign keys, dense day orders, consistent and dense exercise
// orders per day, dense set orders per (day, exercise), numeric domains and
// non-empty, unique names.
func CheckInvariants(p *Program) []Problem {
	var problems []Problem
	add := func(section, format string, args ...any) {
		problems = append(problems, Problem{Section: section, Message: fmt.Sprintf(format, args...)})
	}

	groups := p.groupsByID()
	exercises := p.exercisesByID()
	days := p.daysByID()

	// Foreign keys
	for _, e := range p.Exercises {
		if _, ok := groups[e.WorkoutGroupID]; !ok {
			add(SectionExercises, "exercise %d references missing workout group %d", e.ID, e.WorkoutGroupID)
		}
	}
	pairs := make(map[[2]int64]int64)
	for _, dg := range p.DayWorkoutGroups {
		if _, ok := days[dg.DayID]; !ok {
			add(SectionDayWorkoutGroups, "row %d references missing day %d", dg.ID, dg.DayID)
		}
		if _, ok := groups[dg.WorkoutGroupID]; !ok {
			add(SectionDayWorkoutGroups, "row %d references missing workout group %d", dg.ID, dg.WorkoutGroupID)
		}
		key := [2]int64{dg.DayID, dg.WorkoutGroupID}
		if first, dup := pairs[key]; dup {
			add(SectionDayWorkoutGroups, "rows %d and %d tag day %d with workout group %d twice", first, dg.ID, dg.DayID, dg.WorkoutGroupID)
		} else {
			pairs[key] = dg.ID
		}
	}
	for _, s := range p.WorkoutSets {
		if _, ok := days[s.DayID]; !ok {
			add(SectionWorkoutSets, "set %d references missing day %d", s.ID, s.DayID)
		}
		if _, ok := exercises[s.ExerciseID]; !ok {
			add(SectionWorkoutSets, "set %d references missing exercise %d", s.ID, s.ExerciseID)
		}
	}

	// Day orders
	dayOrders := make([]int, 0, len(p.Days))
	for _, d := range p.Days {
		dayOrders = append(dayOrders, d.DayOrder)
	}
	if !isPermutation(dayOrders) {
		add(SectionDays, "day_order values %v are not a permutation of 1..%d", sortedInts(dayOrders), len(dayOrders))
	}

	// Exercise and set orders
	byDay := p.setsByDay()
	dayIDs := make([]int64, 0, len(byDay))
	for id := range byDay {
		dayIDs = append(dayIDs, id)
	}
	sort.Slice(dayIDs, func(i, j int) bool { return dayIDs[i] < dayIDs[j] })

	for _, dayID := range dayIDs {
		sets := byDay[dayID]
		exerciseOrder := make(map[int64]int)
		setOrders := make(map[int64][]int)
		var exerciseIDs []int64
		for _, s := range sets {
			if order, seen := exerciseOrder[s.ExerciseID]; !seen {
				exerciseOrder[s.ExerciseID] = s.ExerciseOrder
				exerciseIDs = append(exerciseIDs, s.ExerciseID)
			} else if order != s.ExerciseOrder {
				add(SectionWorkoutSets, "day %d uses exercise %d with exercise_order %d and %d", dayID, s.ExerciseID, order, s.ExerciseOrder)
			}
			setOrders[s.ExerciseID] = append(setOrders[s.ExerciseID], s.SetOrder)
		}

		orders := make([]int, 0, len(exerciseIDs))
		for _, id := range exerciseIDs {
			orders = append(orders, exerciseOrder[id])
		}
		if !isPermutation(orders) {
			add(SectionWorkoutSets, "day %d exercise_order values %v are not dense 1..%d", dayID, sortedInts(orders), len(orders))
		}
		for _, id := range exerciseIDs {
			if !isPermutation(setOrders[id]) {
				add(SectionWorkoutSets, "day %d exercise %d set_order values %v are not dense 1..%d", dayID, id, sortedInts(setOrders[id]), len(setOrders[id]))
			}
		}
	}

	// Numeric domains
	for _, s := range p.WorkoutSets {
		for _, err := range []error{
			Positive(s.Reps, "reps"),
			NonNegative(s.Weight, "weight"),
			NonNegative(s.RIR, "rir"),
		} {
			if err != nil {
				add(SectionWorkoutSets, "set %d %s", s.ID, err)
			}
		}
	}

	// Names
	seenNames := make(map[string]int64)
	for _, g := range p.WorkoutGroups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			add(SectionWorkoutGroups, "workout group %d has an empty name", g.ID)
			continue
		}
		key := strings.ToLower(name)
		if first, dup := seenNames[key]; dup {
			add(SectionWorkoutGroups, "workout groups %d and %d share the name %q", first, g.ID, name)
		} else {
			seenNames[key] = g.ID
		}
	}
	for _, e := range p.Exercises {
		if strings.TrimSpace(e.Name) == "" {
			add(SectionExercises, "exercise %d has an empty name", e.ID)
		}
	}
	for _, d := range p.Days {
		if strings.TrimSpace(d.DayName) == "" {
			add(SectionDays, "day %d has an empty day_name", d.ID)
		}
	}

	return problems
}

// isPermutation reports whether values are exactly 1..len(values).
func isPermutation(values []int) bool {
	seen := make([]bool, len(values)+1)
	for _, v := range values {
		if v < 1 || v > len(values) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func sortedInts(values []int) []int {
	out := append([]int(nil), values...)
	sort.Ints(out)
	return out
}
