package core

import (
	"context"
	"fmt"
	"sort"
)

// Program is an in-memory copy of the whole repository state. It is what the
// codec encodes and decodes and what the summary functions read.
type Program struct {
	WorkoutGroups    []WorkoutGroup    `json:"workoutGroups"`
	Exercises        []Exercise        `json:"exercises"`
	Days             []Day             `json:"days"`
	DayWorkoutGroups []DayWorkoutGroup `json:"dayWorkoutGroups"`
	WorkoutSets      []WorkoutSet      `json:"workoutSets"`
}

// LoadProgram reads every entity from repo in dependency order.
// Sets and day tags are read day by day through the relationship queries.
func LoadProgram(ctx context.Context, repo Repository) (*Program, error) {
	var (
		p   Program
		err error
	)

	if p.WorkoutGroups, err = repo.ListWorkoutGroups(ctx); err != nil {
		return nil, fmt.Errorf("list workout groups: %w", err)
	}
	if p.Exercises, err = repo.ListExercises(ctx); err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if p.Days, err = repo.ListDays(ctx); err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}

	for _, d := range p.Days {
		tags, err := repo.DayWorkoutGroups(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("day %d workout groups: %w", d.ID, err)
		}
		p.DayWorkoutGroups = append(p.DayWorkoutGroups, tags...)

		sets, err := repo.SetsByDay(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("day %d sets: %w", d.ID, err)
		}
		p.WorkoutSets = append(p.WorkoutSets, sets...)
	}

	p.SortByID()
	return &p, nil
}

// SortByID sorts every table by primary id.
func (p *Program) SortByID() {
	sort.Slice(p.WorkoutGroups, func(i, j int) bool { return p.WorkoutGroups[i].ID < p.WorkoutGroups[j].ID })
	sort.Slice(p.Exercises, func(i, j int) bool { return p.Exercises[i].ID < p.Exercises[j].ID })
	sort.Slice(p.Days, func(i, j int) bool { return p.Days[i].ID < p.Days[j].ID })
	sort.Slice(p.DayWorkoutGroups, func(i, j int) bool { return p.DayWorkoutGroups[i].ID < p.DayWorkoutGroups[j].ID })
	sort.Slice(p.WorkoutSets, func(i, j int) bool { return p.WorkoutSets[i].ID < p.WorkoutSets[j].ID })
}

// Counts returns the number of rows per section.
func (p *Program) Counts() ImportCounts {
	return ImportCounts{
		WorkoutGroups:    len(p.WorkoutGroups),
		Exercises:        len(p.Exercises),
		Days:             len(p.Days),
		DayWorkoutGroups: len(p.DayWorkoutGroups),
		WorkoutSets:      len(p.WorkoutSets),
	}
}

// IsEmpty reports whether the program holds no rows at all.
func (p *Program) IsEmpty() bool {
	return p.Counts().Total() == 0
}

func (p *Program) groupsByID() map[int64]WorkoutGroup {
	m := make(map[int64]WorkoutGroup, len(p.WorkoutGroups))
	for _, g := range p.WorkoutGroups {
		m[g.ID] = g
	}
	return m
}

func (p *Program) exercisesByID() map[int64]Exercise {
	m := make(map[int64]Exercise, len(p.Exercises))
	for _, e := range p.Exercises {
		m[e.ID] = e
	}
	return m
}

func (p *Program) daysByID() map[int64]Day {
	m := make(map[int64]Day, len(p.Days))
	for _, d := range p.Days {
		m[d.ID] = d
	}
	return m
}

// daysInOrder returns the days sorted by DayOrder, then id.
func (p *Program) daysInOrder() []Day {
	days := append([]Day(nil), p.Days...)
	sort.Slice(days, func(i, j int) bool {
		if days[i].DayOrder != days[j].DayOrder {
			return days[i].DayOrder < days[j].DayOrder
		}
		return days[i].ID < days[j].ID
	})
	return days
}

// setsByDay groups sets by day id, each slice sorted by exercise order,
// set order, then id.
func (p *Program) setsByDay() map[int64][]WorkoutSet {
	m := make(map[int64][]WorkoutSet)
	for _, s := range p.WorkoutSets {
		m[s.DayID] = append(m[s.DayID], s)
	}
	for _, sets := range m {
		sortSets(sets)
	}
	return m
}

func sortSets(sets []WorkoutSet) {
	sort.Slice(sets, func(i, j int) bool {
		a, b := sets[i], sets[j]
		if a.ExerciseOrder != b.ExerciseOrder {
			return a.ExerciseOrder < b.ExerciseOrder
		}
		if a.SetOrder != b.SetOrder {
			return a.SetOrder < b.SetOrder
		}
		return a.ID < b.ID
	})
}
