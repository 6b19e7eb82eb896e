package core

// service_mutations.go implements program edits.
//
// Every edit runs under the import lease and keeps the orderings dense:
// day orders are 1..N, and within each day exercise orders are 1..M and set
// orders are 1..K per exercise. Deletes compact the orders they leave gaps in.

import (
	"context"
	"fmt"
	"sort"
)

// CreateWorkoutGroup adds a workout group. Names are unique case-insensitively.
func (s *Service) CreateWorkoutGroup(ctx context.Context, name, notes string) (WorkoutGroup, error) {
	g, err := NewWorkoutGroup(0, name, notes)
	if err != nil {
		return WorkoutGroup{}, err
	}
	err = s.mutate(ctx, "workout group "+g.Name, func(ctx context.Context) error {
		g, err = s.repo.CreateWorkoutGroup(ctx, g)
		return err
	})
	return g, err
}

// UpdateWorkoutGroup renames a workout group and replaces its notes.
func (s *Service) UpdateWorkoutGroup(ctx context.Context, id int64, name, notes string) (WorkoutGroup, error) {
	g, err := NewWorkoutGroup(id, name, notes)
	if err != nil {
		return WorkoutGroup{}, err
	}
	err = s.mutate(ctx, fmt.Sprintf("workout group %d", id), func(ctx context.Context) error {
		return s.repo.UpdateWorkoutGroup(ctx, g)
	})
	return g, err
}

// DeleteWorkoutGroup removes a workout group with its exercises, their sets
// and the day tags that name it.
func (s *Service) DeleteWorkoutGroup(ctx context.Context, id int64) error {
	return s.mutate(ctx, fmt.Sprintf("workout group %d", id), func(ctx context.Context) error {
		if err := s.repo.DeleteWorkoutGroup(ctx, id); err != nil {
			return err
		}
		return s.compactAllDays(ctx)
	})
}

// CreateExercise adds an exercise to a workout group.
func (s *Service) CreateExercise(ctx context.Context, workoutGroupID int64, name, notes string) (Exercise, error) {
	e, err := NewExercise(0, workoutGroupID, name, notes)
	if err != nil {
		return Exercise{}, err
	}
	err = s.mutate(ctx, "exercise "+e.Name, func(ctx context.Context) error {
		if _, err := s.repo.GetWorkoutGroup(ctx, workoutGroupID); err != nil {
			return err
		}
		e, err = s.repo.CreateExercise(ctx, e)
		return err
	})
	return e, err
}

// UpdateExercise renames an exercise, moves it to another group and replaces
// its notes.
func (s *Service) UpdateExercise(ctx context.Context, id, workoutGroupID int64, name, notes string) (Exercise, error) {
	e, err := NewExercise(id, workoutGroupID, name, notes)
	if err != nil {
		return Exercise{}, err
	}
	err = s.mutate(ctx, fmt.Sprintf("exercise %d", id), func(ctx context.Context) error {
		if _, err := s.repo.GetWorkoutGroup(ctx, workoutGroupID); err != nil {
			return err
		}
		return s.repo.UpdateExercise(ctx, e)
	})
	return e, err
}

// DeleteExercise removes an exercise and its sets.
func (s *Service) DeleteExercise(ctx context.Context, id int64) error {
	return s.mutate(ctx, fmt.Sprintf("exercise %d", id), func(ctx context.Context) error {
		if err := s.repo.DeleteExercise(ctx, id); err != nil {
			return err
		}
		return s.compactAllDays(ctx)
	})
}

// CreateDay appends a day at the end of the program.
func (s *Service) CreateDay(ctx context.Context, name, notes string) (Day, error) {
	var d Day
	err := s.mutate(ctx, "day "+name, func(ctx context.Context) error {
		days, err := s.repo.ListDays(ctx)
		if err != nil {
			return err
		}
		d, err = NewDay(0, name, len(days)+1, notes)
		if err != nil {
			return err
		}
		d, err = s.repo.CreateDay(ctx, d)
		return err
	})
	return d, err
}

// UpdateDay renames a day and replaces its notes. The day keeps its position.
func (s *Service) UpdateDay(ctx context.Context, id int64, name, notes string) (Day, error) {
	var d Day
	err := s.mutate(ctx, fmt.Sprintf("day %d", id), func(ctx context.Context) error {
		current, err := s.repo.GetDay(ctx, id)
		if err != nil {
			return err
		}
		d, err = NewDay(id, name, current.DayOrder, notes)
		if err != nil {
			return err
		}
		return s.repo.UpdateDay(ctx, d)
	})
	return d, err
}

// DeleteDay removes a day with its tags and sets and closes the gap in the
// day order.
func (s *Service) DeleteDay(ctx context.Context, id int64) error {
	return s.mutate(ctx, fmt.Sprintf("day %d", id), func(ctx context.Context) error {
		if err := s.repo.DeleteDay(ctx, id); err != nil {
			return err
		}
		ids, err := s.dayIDsInOrder(ctx)
		if err != nil {
			return err
		}
		return s.repo.ReorderDays(ctx, ids)
	})
}

// MoveDay moves a day to position (1-based), shifting the days in between.
func (s *Service) MoveDay(ctx context.Context, id int64, position int) ([]Day, error) {
	var days []Day
	err := s.mutate(ctx, fmt.Sprintf("day %d", id), func(ctx context.Context) error {
		ids, err := s.dayIDsInOrder(ctx)
		if err != nil {
			return err
		}
		if position < 1 || position > len(ids) {
			return AsError("move_day", ValidationError{
				Field:   "position",
				Value:   fmt.Sprint(position),
				Message: fmt.Sprintf("must be between 1 and %d", len(ids)),
			})
		}

		from := -1
		for i, dayID := range ids {
			if dayID == id {
				from = i
				break
			}
		}
		if from < 0 {
			return Errorf(KindNotFound, "move_day", "day %d not found", id)
		}

		ids = append(ids[:from], ids[from+1:]...)
		ids = append(ids[:position-1], append([]int64{id}, ids[position-1:]...)...)
		if err := s.repo.ReorderDays(ctx, ids); err != nil {
			return err
		}
		days, err = s.daysInOrder(ctx)
		return err
	})
	return days, err
}

// TagDay tags a day with a workout group.
func (s *Service) TagDay(ctx context.Context, dayID, workoutGroupID int64) (DayWorkoutGroup, error) {
	var dg DayWorkoutGroup
	err := s.mutate(ctx, fmt.Sprintf("day %d", dayID), func(ctx context.Context) error {
		if _, err := s.repo.GetDay(ctx, dayID); err != nil {
			return err
		}
		if _, err := s.repo.GetWorkoutGroup(ctx, workoutGroupID); err != nil {
			return err
		}
		var err error
		dg, err = s.repo.CreateDayWorkoutGroup(ctx, DayWorkoutGroup{DayID: dayID, WorkoutGroupID: workoutGroupID})
		return err
	})
	return dg, err
}

// UntagDay removes a workout group tag from a day.
func (s *Service) UntagDay(ctx context.Context, dayID, workoutGroupID int64) error {
	return s.mutate(ctx, fmt.Sprintf("day %d", dayID), func(ctx context.Context) error {
		tags, err := s.repo.DayWorkoutGroups(ctx, dayID)
		if err != nil {
			return err
		}
		for _, dg := range tags {
			if dg.WorkoutGroupID == workoutGroupID {
				return s.repo.DeleteDayWorkoutGroup(ctx, dg.ID)
			}
		}
		return Errorf(KindNotFound, "untag_day", "day %d is not tagged with workout group %d", dayID, workoutGroupID)
	})
}

// AddSet appends a set of an exercise to a day. An exercise new to the day
// goes after the day's last exercise.
func (s *Service) AddSet(ctx context.Context, dayID, exerciseID int64, m SetMetrics) (WorkoutSet, error) {
	if err := ValidateMetrics(m); err != nil {
		return WorkoutSet{}, err
	}

	var set WorkoutSet
	err := s.mutate(ctx, fmt.Sprintf("day %d", dayID), func(ctx context.Context) error {
		if _, err := s.repo.GetDay(ctx, dayID); err != nil {
			return err
		}
		if _, err := s.repo.GetExercise(ctx, exerciseID); err != nil {
			return err
		}
		sets, err := s.repo.SetsByDay(ctx, dayID)
		if err != nil {
			return err
		}

		exerciseOrder, setOrder := 0, 1
		maxOrder := 0
		for _, existing := range sets {
			maxOrder = max(maxOrder, existing.ExerciseOrder)
			if existing.ExerciseID == exerciseID {
				exerciseOrder = existing.ExerciseOrder
				setOrder++
			}
		}
		if exerciseOrder == 0 {
			exerciseOrder = maxOrder + 1
		}

		set, err = NewWorkoutSet(0, dayID, exerciseID, exerciseOrder, setOrder, m)
		if err != nil {
			return err
		}
		set, err = s.repo.CreateWorkoutSet(ctx, set)
		return err
	})
	return set, err
}

// UpdateSet replaces the reps, weight, RIR and notes of a set.
func (s *Service) UpdateSet(ctx context.Context, id int64, m SetMetrics) (WorkoutSet, error) {
	if err := ValidateMetrics(m); err != nil {
		return WorkoutSet{}, err
	}

	var set WorkoutSet
	err := s.mutate(ctx, fmt.Sprintf("set %d", id), func(ctx context.Context) error {
		current, err := s.repo.GetWorkoutSet(ctx, id)
		if err != nil {
			return err
		}
		set, err = NewWorkoutSet(id, current.DayID, current.ExerciseID, current.ExerciseOrder, current.SetOrder, m)
		if err != nil {
			return err
		}
		return s.repo.UpdateWorkoutSet(ctx, set)
	})
	return set, err
}

// DeleteSet removes a set and compacts the orders of its day.
func (s *Service) DeleteSet(ctx context.Context, id int64) error {
	return s.mutate(ctx, fmt.Sprintf("set %d", id), func(ctx context.Context) error {
		set, err := s.repo.GetWorkoutSet(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteWorkoutSet(ctx, id); err != nil {
			return err
		}
		return s.compactDay(ctx, set.DayID)
	})
}

// MoveExercise moves an exercise to position (1-based) within a day.
func (s *Service) MoveExercise(ctx context.Context, dayID, exerciseID int64, position int) error {
	return s.mutate(ctx, fmt.Sprintf("day %d", dayID), func(ctx context.Context) error {
		sets, err := s.repo.SetsByDay(ctx, dayID)
		if err != nil {
			return err
		}
		order := exerciseSequence(sets)
		if position < 1 || position > len(order) {
			return AsError("move_exercise", ValidationError{
				Field:   "position",
				Value:   fmt.Sprint(position),
				Message: fmt.Sprintf("must be between 1 and %d", len(order)),
			})
		}

		from := -1
		for i, id := range order {
			if id == exerciseID {
				from = i
				break
			}
		}
		if from < 0 {
			return Errorf(KindNotFound, "move_exercise", "exercise %d is not on day %d", exerciseID, dayID)
		}

		order = append(order[:from], order[from+1:]...)
		order = append(order[:position-1], append([]int64{exerciseID}, order[position-1:]...)...)
		return s.applyOrders(ctx, sets, order)
	})
}

// ClearProgram deletes every day, day tag and set. Workout groups and
// exercises are kept.
func (s *Service) ClearProgram(ctx context.Context) error {
	if err := s.acquire(ctx, "program reset"); err != nil {
		return err
	}
	defer s.lease.Release()

	if err := s.repo.ClearProgramData(ctx); err != nil {
		return err
	}
	if err := s.repo.Persist(ctx); err != nil {
		return Wrap(KindInternal, "persist", err)
	}
	s.audit.Record(ctx, AuditLogParams{Action: ActionProgramReset})
	return nil
}

func (s *Service) daysInOrder(ctx context.Context) ([]Day, error) {
	days, err := s.repo.ListDays(ctx)
	if err != nil {
		return nil, err
	}
	p := Program{Days: days}
	return p.daysInOrder(), nil
}

func (s *Service) dayIDsInOrder(ctx context.Context) ([]int64, error) {
	days, err := s.daysInOrder(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(days))
	for i, d := range days {
		ids[i] = d.ID
	}
	return ids, nil
}

func (s *Service) compactAllDays(ctx context.Context) error {
	days, err := s.repo.ListDays(ctx)
	if err != nil {
		return err
	}
	for _, d := range days {
		if err := s.compactDay(ctx, d.ID); err != nil {
			return err
		}
	}
	return nil
}

// compactDay renumbers the exercise and set orders of a day to 1..N,
// keeping their relative order.
func (s *Service) compactDay(ctx context.Context, dayID int64) error {
	sets, err := s.repo.SetsByDay(ctx, dayID)
	if err != nil {
		return err
	}
	return s.applyOrders(ctx, sets, exerciseSequence(sets))
}

// exerciseSequence returns the exercises of a day's sets in exercise order.
func exerciseSequence(sets []WorkoutSet) []int64 {
	sortSets(sets)
	var order []int64
	seen := make(map[int64]bool)
	for _, set := range sets {
		if !seen[set.ExerciseID] {
			seen[set.ExerciseID] = true
			order = append(order, set.ExerciseID)
		}
	}
	return order
}

// applyOrders gives exercises the positions in order and renumbers each
// exercise's sets 1..K, updating only the sets that change.
func (s *Service) applyOrders(ctx context.Context, sets []WorkoutSet, order []int64) error {
	position := make(map[int64]int, len(order))
	for i, id := range order {
		position[id] = i + 1
	}

	sortSets(sets)
	next := make(map[int64]int)
	updated := make([]WorkoutSet, 0, len(sets))
	for _, set := range sets {
		next[set.ExerciseID]++
		exOrder, setOrder := position[set.ExerciseID], next[set.ExerciseID]
		if set.ExerciseOrder == exOrder && set.SetOrder == setOrder {
			continue
		}
		set.ExerciseOrder, set.SetOrder = exOrder, setOrder
		updated = append(updated, set)
	}

	sort.Slice(updated, func(i, j int) bool { return updated[i].ID < updated[j].ID })
	for _, set := range updated {
		if err := s.repo.UpdateWorkoutSet(ctx, set); err != nil {
			return err
		}
	}
	return nil
}
