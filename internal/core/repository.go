package core

import "context"

// Repository is the storage port consumed by the codec, the aggregator and
// the service. Implementations live under internal/store.
//
// Create* assigns the next id from the entity's sequence; Insert* keeps the
// id of the given entity. List* results are sorted by id. Delete* cascades
// along the ownership spine: a workout group takes its exercises and day tags,
// an exercise takes its sets, a day takes its tags and sets.
//
// Errors are tagged: a missing id is KindNotFound, a uniqueness violation is
// KindConflict, a dangling reference is KindIntegrity and anything the
// backend reports is KindInternal.
type Repository interface {
	CreateWorkoutGroup(ctx context.Context, g WorkoutGroup) (WorkoutGroup, error)
	InsertWorkoutGroup(ctx context.Context, g WorkoutGroup) error
	GetWorkoutGroup(ctx context.Context, id int64) (WorkoutGroup, error)
	ListWorkoutGroups(ctx context.Context) ([]WorkoutGroup, error)
	UpdateWorkoutGroup(ctx context.Context, g WorkoutGroup) error
	DeleteWorkoutGroup(ctx context.Context, id int64) error

	CreateExercise(ctx context.Context, e Exercise) (Exercise, error)
	InsertExercise(ctx context.Context, e Exercise) error
	GetExercise(ctx context.Context, id int64) (Exercise, error)
	ListExercises(ctx context.Context) ([]Exercise, error)
	UpdateExercise(ctx context.Context, e Exercise) error
	DeleteExercise(ctx context.Context, id int64) error

	CreateDay(ctx context.Context, d Day) (Day, error)
	InsertDay(ctx context.Context, d Day) error
	GetDay(ctx context.Context, id int64) (Day, error)
	ListDays(ctx context.Context) ([]Day, error)
	UpdateDay(ctx context.Context, d Day) error
	DeleteDay(ctx context.Context, id int64) error
	// ReorderDays assigns day orders 1..N following ids, atomically.
	ReorderDays(ctx context.Context, ids []int64) error

	CreateDayWorkoutGroup(ctx context.Context, dg DayWorkoutGroup) (DayWorkoutGroup, error)
	InsertDayWorkoutGroup(ctx context.Context, dg DayWorkoutGroup) error
	ListDayWorkoutGroups(ctx context.Context) ([]DayWorkoutGroup, error)
	DayWorkoutGroups(ctx context.Context, dayID int64) ([]DayWorkoutGroup, error)
	DeleteDayWorkoutGroup(ctx context.Context, id int64) error

	CreateWorkoutSet(ctx context.Context, s WorkoutSet) (WorkoutSet, error)
	InsertWorkoutSet(ctx context.Context, s WorkoutSet) error
	GetWorkoutSet(ctx context.Context, id int64) (WorkoutSet, error)
	ListWorkoutSets(ctx context.Context) ([]WorkoutSet, error)
	SetsByDay(ctx context.Context, dayID int64) ([]WorkoutSet, error)
	UpdateWorkoutSet(ctx context.Context, s WorkoutSet) error
	DeleteWorkoutSet(ctx context.Context, id int64) error

	// ClearAll deletes every entity and resets id sequences.
	ClearAll(ctx context.Context) error
	// ClearProgramData deletes days, day tags and sets, keeping groups and exercises.
	ClearProgramData(ctx context.Context) error
	// Persist makes prior mutations durable.
	Persist(ctx context.Context) error
}
