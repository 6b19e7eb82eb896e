package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/liftlog/internal/core"
)

// seed builds a small program: Chest with Bench, two days, one tag, two sets.
func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.InsertWorkoutGroup(ctx, core.WorkoutGroup{ID: 1, Name: "Chest"}))
	require.NoError(t, s.InsertWorkoutGroup(ctx, core.WorkoutGroup{ID: 2, Name: "Back"}))
	require.NoError(t, s.InsertExercise(ctx, core.Exercise{ID: 1, WorkoutGroupID: 1, Name: "Bench"}))
	require.NoError(t, s.InsertExercise(ctx, core.Exercise{ID: 2, WorkoutGroupID: 2, Name: "Row"}))
	require.NoError(t, s.InsertDay(ctx, core.Day{ID: 1, DayName: "Push", DayOrder: 1}))
	require.NoError(t, s.InsertDay(ctx, core.Day{ID: 2, DayName: "Pull", DayOrder: 2}))
	require.NoError(t, s.InsertDayWorkoutGroup(ctx, core.DayWorkoutGroup{ID: 1, DayID: 1, WorkoutGroupID: 1}))
	require.NoError(t, s.InsertWorkoutSet(ctx, core.WorkoutSet{
		ID: 1, DayID: 1, ExerciseID: 1, ExerciseOrder: 1, SetOrder: 1,
		Reps: core.IntPtr(8), Weight: core.FloatPtr(100), RIR: core.IntPtr(2),
	}))
	require.NoError(t, s.InsertWorkoutSet(ctx, core.WorkoutSet{
		ID: 2, DayID: 2, ExerciseID: 2, ExerciseOrder: 1, SetOrder: 1,
	}))
}

func TestStore_CreateAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.CreateWorkoutGroup(ctx, core.WorkoutGroup{Name: "Chest"})
	require.NoError(t, err)
	b, err := s.CreateWorkoutGroup(ctx, core.WorkoutGroup{Name: "Back"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
}

func TestStore_CreateContinuesAfterInsertedIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.InsertDay(ctx, core.Day{ID: 7, DayName: "Legs", DayOrder: 1}))
	d, err := s.CreateDay(ctx, core.Day{DayName: "Arms", DayOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(8), d.ID)
}

func TestStore_Constraints(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		run      func(s *Store) error
		wantKind core.Kind
	}{
		{
			name: "duplicate group name ignores case",
			run: func(s *Store) error {
				_, err := s.CreateWorkoutGroup(ctx, core.WorkoutGroup{Name: "CHEST"})
				return err
			},
			wantKind: core.KindConflict,
		},
		{
			name:     "duplicate id on insert",
			run:      func(s *Store) error { return s.InsertExercise(ctx, core.Exercise{ID: 1, WorkoutGroupID: 1, Name: "Fly"}) },
			wantKind: core.KindConflict,
		},
		{
			name:     "non-positive id on insert",
			run:      func(s *Store) error { return s.InsertDay(ctx, core.Day{ID: 0, DayName: "Rest", DayOrder: 3}) },
			wantKind: core.KindValidation,
		},
		{
			name:     "exercise with missing group",
			run:      func(s *Store) error { return s.InsertExercise(ctx, core.Exercise{ID: 9, WorkoutGroupID: 99, Name: "Curl"}) },
			wantKind: core.KindIntegrity,
		},
		{
			name:     "day order already used",
			run:      func(s *Store) error { return s.InsertDay(ctx, core.Day{ID: 3, DayName: "Legs", DayOrder: 2}) },
			wantKind: core.KindConflict,
		},
		{
			name: "tag pair already used",
			run: func(s *Store) error {
				return s.InsertDayWorkoutGroup(ctx, core.DayWorkoutGroup{ID: 5, DayID: 1, WorkoutGroupID: 1})
			},
			wantKind: core.KindConflict,
		},
		{
			name: "set with missing exercise",
			run: func(s *Store) error {
				return s.InsertWorkoutSet(ctx, core.WorkoutSet{ID: 9, DayID: 1, ExerciseID: 42, ExerciseOrder: 1, SetOrder: 1})
			},
			wantKind: core.KindIntegrity,
		},
		{
			name:     "update missing day",
			run:      func(s *Store) error { return s.UpdateDay(ctx, core.Day{ID: 42, DayName: "Ghost", DayOrder: 9}) },
			wantKind: core.KindNotFound,
		},
		{
			name:     "delete missing set",
			run:      func(s *Store) error { return s.DeleteWorkoutSet(ctx, 42) },
			wantKind: core.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			seed(t, s)

			err := tt.run(s)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, core.KindOf(err), "error: %v", err)
		})
	}
}

func TestStore_RenameGroupKeepsOwnName(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	require.NoError(t, s.UpdateWorkoutGroup(ctx, core.WorkoutGroup{ID: 1, Name: "chest", Notes: "lower case"}))
	g, err := s.GetWorkoutGroup(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "chest", g.Name)
}

func TestStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()

	t.Run("workout group takes exercises, sets and tags", func(t *testing.T) {
		s := New()
		seed(t, s)
		require.NoError(t, s.DeleteWorkoutGroup(ctx, 1))

		exercises, _ := s.ListExercises(ctx)
		require.Len(t, exercises, 1)
		assert.Equal(t, "Row", exercises[0].Name)

		sets, _ := s.ListWorkoutSets(ctx)
		require.Len(t, sets, 1)
		assert.Equal(t, int64(2), sets[0].ID)

		tags, _ := s.ListDayWorkoutGroups(ctx)
		assert.Empty(t, tags)
	})

	t.Run("day takes tags and sets", func(t *testing.T) {
		s := New()
		seed(t, s)
		require.NoError(t, s.DeleteDay(ctx, 1))

		tags, _ := s.DayWorkoutGroups(ctx, 1)
		assert.Empty(t, tags)
		sets, _ := s.SetsByDay(ctx, 1)
		assert.Empty(t, sets)

		exercises, _ := s.ListExercises(ctx)
		assert.Len(t, exercises, 2)
	})

	t.Run("exercise takes its sets", func(t *testing.T) {
		s := New()
		seed(t, s)
		require.NoError(t, s.DeleteExercise(ctx, 2))

		sets, _ := s.SetsByDay(ctx, 2)
		assert.Empty(t, sets)
	})
}

func TestStore_ReorderDays(t *testing.T) {
	ctx := context.Background()

	t.Run("swaps orders", func(t *testing.T) {
		s := New()
		seed(t, s)
		require.NoError(t, s.ReorderDays(ctx, []int64{2, 1}))

		d1, _ := s.GetDay(ctx, 1)
		d2, _ := s.GetDay(ctx, 2)
		assert.Equal(t, 2, d1.DayOrder)
		assert.Equal(t, 1, d2.DayOrder)
	})

	t.Run("incomplete list changes nothing", func(t *testing.T) {
		s := New()
		seed(t, s)
		err := s.ReorderDays(ctx, []int64{2})
		require.Error(t, err)
		assert.Equal(t, core.KindValidation, core.KindOf(err))

		d1, _ := s.GetDay(ctx, 1)
		assert.Equal(t, 1, d1.DayOrder)
	})

	t.Run("unknown day", func(t *testing.T) {
		s := New()
		seed(t, s)
		err := s.ReorderDays(ctx, []int64{2, 9})
		assert.True(t, core.IsNotFound(err))
	})
}

func TestStore_ClearAllResetsSequences(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	require.NoError(t, s.ClearAll(ctx))
	assert.Equal(t, Sequences{}, s.Sequences())

	g, err := s.CreateWorkoutGroup(ctx, core.WorkoutGroup{Name: "Chest"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.ID)
}

func TestStore_ClearProgramDataKeepsCatalog(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	require.NoError(t, s.ClearProgramData(ctx))

	groups, _ := s.ListWorkoutGroups(ctx)
	exercises, _ := s.ListExercises(ctx)
	days, _ := s.ListDays(ctx)
	sets, _ := s.ListWorkoutSets(ctx)
	assert.Len(t, groups, 2)
	assert.Len(t, exercises, 2)
	assert.Empty(t, days)
	assert.Empty(t, sets)

	d, err := s.CreateDay(ctx, core.Day{DayName: "Full body", DayOrder: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ID)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	set, err := s.GetWorkoutSet(ctx, 1)
	require.NoError(t, err)
	*set.Reps = 99

	again, _ := s.GetWorkoutSet(ctx, 1)
	assert.Equal(t, 8, *again.Reps)
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "program.json")

	s, err := Open(path)
	require.NoError(t, err)
	seed(t, s)
	require.NoError(t, s.DeleteWorkoutSet(ctx, 2))
	require.NoError(t, s.Persist(ctx))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())

	// The deleted set id is not reused.
	set, err := reopened.CreateWorkoutSet(ctx, core.WorkoutSet{DayID: 1, ExerciseID: 1, ExerciseOrder: 1, SetOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), set.ID)
}

func TestOpen_RejectsBrokenSnapshot(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{"},
		{name: "wrong version", content: `{"version": 99}`},
		{
			name:    "dangling reference",
			content: `{"version": 1, "program": {"exercises": [{"id": 1, "workoutGroupId": 5, "name": "Curl"}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Open(path)
			assert.Error(t, err)
		})
	}
}

func TestNew_PersistIsNoop(t *testing.T) {
	s := New()
	assert.Equal(t, "", s.Path())
	assert.NoError(t, s.Persist(context.Background()))
}
