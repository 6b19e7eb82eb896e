package core

import "context"

// Program loads the whole program.
func (s *Service) Program(ctx context.Context) (*Program, error) {
	p, err := LoadProgram(ctx, s.repo)
	if err != nil {
		return nil, Wrap(KindInternal, "load_program", err)
	}
	return p, nil
}

// ListWorkoutGroups returns every workout group, sorted by id.
func (s *Service) ListWorkoutGroups(ctx context.Context) ([]WorkoutGroup, error) {
	return s.repo.ListWorkoutGroups(ctx)
}

// GetWorkoutGroup returns one workout group.
func (s *Service) GetWorkoutGroup(ctx context.Context, id int64) (WorkoutGroup, error) {
	return s.repo.GetWorkoutGroup(ctx, id)
}

// ListExercises returns every exercise, sorted by id.
func (s *Service) ListExercises(ctx context.Context) ([]Exercise, error) {
	return s.repo.ListExercises(ctx)
}

// GetExercise returns one exercise.
func (s *Service) GetExercise(ctx context.Context, id int64) (Exercise, error) {
	return s.repo.GetExercise(ctx, id)
}

// ListDays returns every day in day order.
func (s *Service) ListDays(ctx context.Context) ([]Day, error) {
	return s.daysInOrder(ctx)
}

// GetDay returns one day.
func (s *Service) GetDay(ctx context.Context, id int64) (Day, error) {
	return s.repo.GetDay(ctx, id)
}

// DayWorkoutGroups returns the workout group tags of a day.
func (s *Service) DayWorkoutGroups(ctx context.Context, dayID int64) ([]DayWorkoutGroup, error) {
	if _, err := s.repo.GetDay(ctx, dayID); err != nil {
		return nil, err
	}
	return s.repo.DayWorkoutGroups(ctx, dayID)
}

// SetsByDay returns the sets of a day in exercise order, then set order.
func (s *Service) SetsByDay(ctx context.Context, dayID int64) ([]WorkoutSet, error) {
	if _, err := s.repo.GetDay(ctx, dayID); err != nil {
		return nil, err
	}
	sets, err := s.repo.SetsByDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	sortSets(sets)
	return sets, nil
}

// GetSet returns one set.
func (s *Service) GetSet(ctx context.Context, id int64) (WorkoutSet, error) {
	return s.repo.GetWorkoutSet(ctx, id)
}

// DaySummaries summarizes every day, in day order.
func (s *Service) DaySummaries(ctx context.Context) ([]DaySummary, error) {
	p, err := s.Program(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeDays(p), nil
}

// DaySummary summarizes one day.
func (s *Service) DaySummary(ctx context.Context, dayID int64) (DaySummary, error) {
	p, err := s.Program(ctx)
	if err != nil {
		return DaySummary{}, err
	}
	summary, ok := SummarizeDay(p, dayID)
	if !ok {
		return DaySummary{}, Errorf(KindNotFound, "day_summary", "day %d not found", dayID)
	}
	return summary, nil
}

// Aggregate computes statistics across the given days.
func (s *Service) Aggregate(ctx context.Context, dayIDs []int64) (Aggregate, error) {
	p, err := s.Program(ctx)
	if err != nil {
		return Aggregate{}, err
	}
	return AggregateDays(p, dayIDs), nil
}

// GroupBreakdown lists the exercises of the given days by workout group.
func (s *Service) GroupBreakdown(ctx context.Context, dayIDs []int64) ([]GroupExercises, error) {
	p, err := s.Program(ctx)
	if err != nil {
		return nil, err
	}
	return GroupBreakdown(p, dayIDs), nil
}

// AllDayIDs returns the ids of every day in day order.
func (s *Service) AllDayIDs(ctx context.Context) ([]int64, error) {
	return s.dayIDsInOrder(ctx)
}
