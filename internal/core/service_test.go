package core_test

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/liftlog/internal/core"
	"github.com/JonMunkholm/liftlog/internal/store/memory"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)

func newService(t *testing.T, opts core.Options) (*core.Service, *memory.Store) {
	t.Helper()
	repo := memory.New()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return core.NewService(repo, opts), repo
}

// fakeBackups is an in-memory BackupStore.
type fakeBackups struct {
	mu      sync.Mutex
	objects map[string][]byte
	times   map[string]time.Time
	failPut bool
}

func newFakeBackups() *fakeBackups {
	return &fakeBackups{objects: map[string][]byte{}, times: map[string]time.Time{}}
}

func (f *fakeBackups) Put(ctx context.Context, key string, body []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return errors.New("bucket unavailable")
	}
	f.objects[key] = append([]byte(nil), body...)
	f.times[key] = fixedNow.Add(time.Duration(len(f.objects)) * time.Minute)
	return nil
}

func (f *fakeBackups) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[key]
	if !ok {
		return nil, core.Errorf(core.KindNotFound, "backup.get", "backup %q not found", key)
	}
	return body, nil
}

func (f *fakeBackups) List(ctx context.Context, prefix string) ([]core.BackupObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.BackupObject
	for key, body := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, core.BackupObject{Key: key, Size: int64(len(body)), LastModified: f.times[key]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// blockingRepo holds an import inside ClearAll until release is closed.
type blockingRepo struct {
	*memory.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (r *blockingRepo) ClearAll(ctx context.Context) error {
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return r.Store.ClearAll(ctx)
}

// ----------------------------------------------------------------------------
// Import / Export Tests
// ----------------------------------------------------------------------------

func TestService_ImportThenExport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, core.Options{})

	res, err := svc.ImportDocument(ctx, fullDoc)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ImportID)
	assert.Equal(t, 13, res.Counts.Total())

	export, err := svc.ExportDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, fullDoc, export.Content)
	assert.Equal(t, "workout-complete-2026-10-18.csv", export.FileName)
	assert.Equal(t, core.ContentTypeCSV, export.ContentType)

	pretty, err := svc.ExportPrettyPrint(ctx)
	require.NoError(t, err)
	assert.Equal(t, "workout-program-2026-10-18.csv", pretty.FileName)
	assert.True(t, strings.HasPrefix(pretty.Content, "day,exercise,workout_group"))

	entries := svc.AuditEntries(core.AuditLogFilter{})
	require.Len(t, entries, 3)
	assert.Equal(t, core.ActionPrettyExport, entries[0].Action)
	assert.Equal(t, core.ActionExport, entries[1].Action)
	assert.Equal(t, core.ActionImport, entries[2].Action)
	assert.Equal(t, res.ImportID, entries[2].ImportID)
	assert.Equal(t, 13, entries[2].RowsAffected)
}

func TestService_ImportReader(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the document", func(t *testing.T) {
		svc, _ := newService(t, core.Options{})
		res, err := svc.ImportReader(ctx, strings.NewReader(singleSetDoc))
		require.NoError(t, err)
		assert.Equal(t, 4, res.Counts.Total())
	})

	t.Run("rejects oversized documents", func(t *testing.T) {
		svc, _ := newService(t, core.Options{MaxDocumentSize: 16})
		_, err := svc.ImportReader(ctx, strings.NewReader(singleSetDoc))
		require.Error(t, err)
		assert.Equal(t, core.KindValidation, core.KindOf(err))
		assert.ErrorIs(t, err, core.ErrDocumentTooLarge)
	})
}

func TestService_FailedImportAudit(t *testing.T) {
	ctx := context.Background()

	t.Run("rollback after clearing", func(t *testing.T) {
		svc, _ := newService(t, core.Options{})
		_, err := svc.ImportDocument(ctx, "[DAYS]\nid,day_name,day_order\n1,Mon,1\n2,Wed,3\n")
		require.Error(t, err)

		entries := svc.AuditEntries(core.AuditLogFilter{})
		require.Len(t, entries, 1)
		assert.Equal(t, core.ActionImportRollback, entries[0].Action)
		assert.Equal(t, core.SeverityCritical, entries[0].Severity)
		assert.NotEmpty(t, entries[0].Reason)
	})

	t.Run("rejected before clearing", func(t *testing.T) {
		svc, _ := newService(t, core.Options{})
		_, err := svc.ImportDocument(ctx, "[DAY_EXERCISES]\n\n[SETS]\n")
		require.Error(t, err)
		assert.Empty(t, svc.AuditEntries(core.AuditLogFilter{}))
	})
}

func TestService_ImportMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	svc, _ := newService(t, core.Options{Metrics: core.NewMetrics(reg)})

	_, err := svc.ImportDocument(ctx, fullDoc)
	require.NoError(t, err)
	_, err = svc.ImportDocument(ctx, "nonsense")
	require.Error(t, err)

	n, err := testutil.GatherAndCount(reg, "liftlog_imports_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series for ok and one for FORMAT_UNSUPPORTED")

	n, err = testutil.GatherAndCount(reg, "liftlog_imported_rows_total")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestService_LeaseConflict(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{
		Store:   memory.New(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := core.NewService(repo, core.Options{LeaseWait: 20 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := svc.ImportDocument(ctx, singleSetDoc)
		done <- err
	}()
	<-repo.entered

	status := svc.LeaseStatus()
	assert.True(t, status.Held)
	assert.Contains(t, status.Holder, "import")

	_, err := svc.CreateWorkoutGroup(ctx, "Legs", "")
	require.Error(t, err)
	assert.Equal(t, core.KindConflict, core.KindOf(err))
	assert.ErrorIs(t, err, core.ErrImportInProgress)
	assert.Equal(t, "BUSY001", core.MapError(err).Code)

	close(repo.release)
	require.NoError(t, <-done)
	require.NoError(t, svc.WaitForDrain(ctx))

	_, err = svc.CreateWorkoutGroup(ctx, "Legs", "")
	assert.NoError(t, err)
}

// ----------------------------------------------------------------------------
// Mutation Tests
// ----------------------------------------------------------------------------

func TestService_MutationsKeepOrdersDense(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, core.Options{})

	chest, err := svc.CreateWorkoutGroup(ctx, "Chest", "")
	require.NoError(t, err)
	back, err := svc.CreateWorkoutGroup(ctx, "Back", "")
	require.NoError(t, err)

	bench, err := svc.CreateExercise(ctx, chest.ID, "Bench", "")
	require.NoError(t, err)
	row, err := svc.CreateExercise(ctx, back.ID, "Row", "")
	require.NoError(t, err)
	fly, err := svc.CreateExercise(ctx, chest.ID, "Fly", "")
	require.NoError(t, err)

	push, err := svc.CreateDay(ctx, "Push", "")
	require.NoError(t, err)
	pull, err := svc.CreateDay(ctx, "Pull", "")
	require.NoError(t, err)
	legs, err := svc.CreateDay(ctx, "Legs", "")
	require.NoError(t, err)
	assert.Equal(t, 3, legs.DayOrder)

	_, err = svc.TagDay(ctx, push.ID, chest.ID)
	require.NoError(t, err)

	first, err := svc.AddSet(ctx, push.ID, bench.ID, core.SetMetrics{Reps: core.IntPtr(5), Weight: core.FloatPtr(100)})
	require.NoError(t, err)
	second, err := svc.AddSet(ctx, push.ID, bench.ID, core.SetMetrics{Reps: core.IntPtr(5), Weight: core.FloatPtr(105)})
	require.NoError(t, err)
	assert.Equal(t, 1, second.ExerciseOrder)
	assert.Equal(t, 2, second.SetOrder)

	flySet, err := svc.AddSet(ctx, push.ID, fly.ID, core.SetMetrics{Reps: core.IntPtr(12)})
	require.NoError(t, err)
	assert.Equal(t, 2, flySet.ExerciseOrder)
	rowSet, err := svc.AddSet(ctx, push.ID, row.ID, core.SetMetrics{RIR: core.IntPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 3, rowSet.ExerciseOrder)

	// Deleting the first bench set renumbers the second.
	require.NoError(t, svc.DeleteSet(ctx, first.ID))
	got, err := svc.GetSet(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SetOrder)

	// Row moves to the front.
	require.NoError(t, svc.MoveExercise(ctx, push.ID, row.ID, 1))

	// Deleting bench removes its set and closes the gap it leaves.
	require.NoError(t, svc.DeleteExercise(ctx, bench.ID))
	sets, err := svc.SetsByDay(ctx, push.ID)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, row.ID, sets[0].ExerciseID)
	assert.Equal(t, 1, sets[0].ExerciseOrder)
	assert.Equal(t, fly.ID, sets[1].ExerciseID)
	assert.Equal(t, 2, sets[1].ExerciseOrder)

	// Deleting the middle day closes the day order gap.
	require.NoError(t, svc.DeleteDay(ctx, pull.ID))
	days, err := svc.MoveDay(ctx, legs.ID, 1)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "Legs", days[0].DayName)
	assert.Equal(t, 1, days[0].DayOrder)
	assert.Equal(t, "Push", days[1].DayName)
	assert.Equal(t, 2, days[1].DayOrder)

	p, err := svc.Program(ctx)
	require.NoError(t, err)
	assert.Empty(t, core.CheckInvariants(p))

	// The edited program still round-trips through the codec.
	doc := core.Encode(p)
	other, _ := newService(t, core.Options{})
	_, err = other.ImportDocument(ctx, doc)
	require.NoError(t, err)
}

func TestService_MutationErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, core.Options{})
	_, err := svc.ImportDocument(ctx, fullDoc)
	require.NoError(t, err)

	tests := []struct {
		name     string
		run      func() error
		wantKind core.Kind
	}{
		{
			name: "blank group name",
			run: func() error {
				_, err := svc.CreateWorkoutGroup(ctx, "  ", "")
				return err
			},
			wantKind: core.KindValidation,
		},
		{
			name: "group name taken ignoring case",
			run: func() error {
				_, err := svc.CreateWorkoutGroup(ctx, "chest", "")
				return err
			},
			wantKind: core.KindConflict,
		},
		{
			name: "exercise in missing group",
			run: func() error {
				_, err := svc.CreateExercise(ctx, 99, "Curl", "")
				return err
			},
			wantKind: core.KindNotFound,
		},
		{
			name: "zero reps",
			run: func() error {
				_, err := svc.AddSet(ctx, 1, 1, core.SetMetrics{Reps: core.IntPtr(0)})
				return err
			},
			wantKind: core.KindValidation,
		},
		{
			name: "rir beyond int32 on update",
			run: func() error {
				_, err := svc.UpdateSet(ctx, 1, core.SetMetrics{RIR: core.IntPtr(math.MaxInt32 + 1)})
				return err
			},
			wantKind: core.KindValidation,
		},
		{
			name: "negative weight on update",
			run: func() error {
				_, err := svc.UpdateSet(ctx, 1, core.SetMetrics{Weight: core.FloatPtr(-1)})
				return err
			},
			wantKind: core.KindValidation,
		},
		{
			name: "set on missing day",
			run: func() error {
				_, err := svc.AddSet(ctx, 42, 1, core.SetMetrics{})
				return err
			},
			wantKind: core.KindNotFound,
		},
		{
			name: "move day out of range",
			run: func() error {
				_, err := svc.MoveDay(ctx, 1, 3)
				return err
			},
			wantKind: core.KindValidation,
		},
		{
			name:     "move exercise not on day",
			run:      func() error { return svc.MoveExercise(ctx, 2, 1, 1) },
			wantKind: core.KindNotFound,
		},
		{
			name:     "untag missing tag",
			run:      func() error { return svc.UntagDay(ctx, 1, 2) },
			wantKind: core.KindNotFound,
		},
		{
			name: "tag twice",
			run: func() error {
				_, err := svc.TagDay(ctx, 1, 1)
				return err
			},
			wantKind: core.KindConflict,
		},
		{
			name: "summary of missing day",
			run: func() error {
				_, err := svc.DaySummary(ctx, 42)
				return err
			},
			wantKind: core.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, core.KindOf(err), "error: %v", err)
		})
	}

	// None of the failures changed the program.
	export, err := svc.ExportDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, fullDoc, export.Content)
}

func TestService_UpdateKeepsPositions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, core.Options{})
	_, err := svc.ImportDocument(ctx, fullDoc)
	require.NoError(t, err)

	d, err := svc.UpdateDay(ctx, 2, "Pull (heavy)", "")
	require.NoError(t, err)
	assert.Equal(t, 2, d.DayOrder)

	set, err := svc.UpdateSet(ctx, 2, core.SetMetrics{Reps: core.IntPtr(6), Notes: " top set "})
	require.NoError(t, err)
	assert.Equal(t, 1, set.ExerciseOrder)
	assert.Equal(t, 2, set.SetOrder)
	assert.Equal(t, "top set", set.Notes)
	assert.Nil(t, set.Weight)

	entries := svc.AuditEntries(core.AuditLogFilter{Action: core.ActionEdit})
	require.Len(t, entries, 2)
	assert.Equal(t, "set 2", entries[0].Target)
}

func TestService_ClearProgram(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, core.Options{})
	_, err := svc.ImportDocument(ctx, fullDoc)
	require.NoError(t, err)

	require.NoError(t, svc.ClearProgram(ctx))

	days, err := svc.ListDays(ctx)
	require.NoError(t, err)
	assert.Empty(t, days)
	groups, err := svc.ListWorkoutGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
	exercises, err := svc.ListExercises(ctx)
	require.NoError(t, err)
	assert.Len(t, exercises, 3)

	entries := svc.AuditEntries(core.AuditLogFilter{Limit: 1})
	require.Len(t, entries, 1)
	assert.Equal(t, core.ActionProgramReset, entries[0].Action)
}

// ----------------------------------------------------------------------------
// Backup Tests
// ----------------------------------------------------------------------------

func TestService_BackupAndRestore(t *testing.T) {
	ctx := context.Background()
	backups := newFakeBackups()
	svc, _ := newService(t, core.Options{Backups: backups, BackupPrefix: "backups/"})
	require.True(t, svc.BackupsEnabled())

	_, err := svc.ImportDocument(ctx, fullDoc)
	require.NoError(t, err)

	obj, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.BackupKey("backups/", fixedNow), obj.Key)
	assert.Equal(t, int64(len(fullDoc)), obj.Size)

	require.NoError(t, svc.ClearProgram(ctx))

	res, err := svc.Restore(ctx, obj.Key)
	require.NoError(t, err)
	assert.Equal(t, 13, res.Counts.Total())

	export, err := svc.ExportDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, fullDoc, export.Content)

	entries := svc.AuditEntries(core.AuditLogFilter{Action: core.ActionRestore})
	require.Len(t, entries, 1)
	assert.Equal(t, obj.Key, entries[0].Target)
}

func TestService_ListBackupsNewestFirst(t *testing.T) {
	ctx := context.Background()
	backups := newFakeBackups()
	svc, _ := newService(t, core.Options{Backups: backups, BackupPrefix: "b/"})

	require.NoError(t, backups.Put(ctx, "b/one.csv", []byte("1"), core.ContentTypeCSV))
	require.NoError(t, backups.Put(ctx, "b/two.csv", []byte("2"), core.ContentTypeCSV))
	require.NoError(t, backups.Put(ctx, "other/three.csv", []byte("3"), core.ContentTypeCSV))

	list, err := svc.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b/two.csv", list[0].Key)
	assert.Equal(t, "b/one.csv", list[1].Key)
}

func TestService_BackupErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		svc, _ := newService(t, core.Options{})
		assert.False(t, svc.BackupsEnabled())

		_, err := svc.Backup(ctx)
		assert.Equal(t, core.KindValidation, core.KindOf(err))
		_, err = svc.ListBackups(ctx)
		assert.Equal(t, core.KindValidation, core.KindOf(err))
		_, err = svc.Restore(ctx, "x")
		assert.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("missing key", func(t *testing.T) {
		svc, _ := newService(t, core.Options{Backups: newFakeBackups()})
		_, err := svc.Restore(ctx, "nope.csv")
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		backups := newFakeBackups()
		backups.failPut = true
		svc, _ := newService(t, core.Options{Backups: backups})

		_, err := svc.Backup(ctx)
		require.Error(t, err)
		assert.Equal(t, core.KindInternal, core.KindOf(err))
	})
}

func TestService_BackupScheduler(t *testing.T) {
	backups := newFakeBackups()
	svc, _ := newService(t, core.Options{Backups: backups})
	_, err := svc.ImportDocument(context.Background(), singleSetDoc)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartBackupScheduler(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		list, _ := backups.List(context.Background(), "")
		return len(list) == 1
	}, time.Second, 5*time.Millisecond)

	// Unchanged program: later ticks store nothing new.
	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	list, err := backups.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestService_BackupSchedulerStoresEmptyProgram(t *testing.T) {
	backups := newFakeBackups()
	svc, _ := newService(t, core.Options{Backups: backups})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartBackupScheduler(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		list, _ := backups.List(context.Background(), "")
		return len(list) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	list, err := backups.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Zero(t, list[0].Size)

	entries := svc.AuditEntries(core.AuditLogFilter{Action: core.ActionBackup})
	require.Len(t, entries, 1)
	assert.Equal(t, core.ChannelScheduler, entries[0].Channel)
}
