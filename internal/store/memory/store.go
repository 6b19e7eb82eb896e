// Package memory provides an in-memory implementation of core.Repository
// with an optional JSON snapshot on disk.
//
// The store enforces the same constraints as the postgres schema: primary
// keys, foreign keys, case-insensitive workout group names, unique day orders
// and one tag per (day, workout group) pair. Deletes cascade along the
// ownership spine.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/liftlog/internal/core"
)

// Sequences holds the last id handed out per entity.
type Sequences struct {
	WorkoutGroups    int64 `json:"workoutGroups"`
	Exercises        int64 `json:"exercises"`
	Days             int64 `json:"days"`
	DayWorkoutGroups int64 `json:"dayWorkoutGroups"`
	WorkoutSets      int64 `json:"workoutSets"`
}

type state struct {
	groups    map[int64]core.WorkoutGroup
	exercises map[int64]core.Exercise
	days      map[int64]core.Day
	dayGroups map[int64]core.DayWorkoutGroup
	sets      map[int64]core.WorkoutSet
	seq       Sequences
}

func newState() state {
	return state{
		groups:    map[int64]core.WorkoutGroup{},
		exercises: map[int64]core.Exercise{},
		days:      map[int64]core.Day{},
		dayGroups: map[int64]core.DayWorkoutGroup{},
		sets:      map[int64]core.WorkoutSet{},
	}
}

// Store is a concurrency-safe in-memory repository.
type Store struct {
	mu   sync.RWMutex
	st   state
	path string // Snapshot file; empty keeps the store purely in memory
}

var _ core.Repository = (*Store)(nil)

// New returns an empty store that never touches disk.
func New() *Store {
	return &Store{st: newState()}
}

// ----------------------------------------------------------------------------
// Workout groups
// ----------------------------------------------------------------------------

func (s *Store) CreateWorkoutGroup(ctx context.Context, g core.WorkoutGroup) (core.WorkoutGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.st.seq.WorkoutGroups + 1
	if err := s.putWorkoutGroup(g, "memory.create_workout_group"); err != nil {
		return core.WorkoutGroup{}, err
	}
	return g, nil
}

func (s *Store) InsertWorkoutGroup(ctx context.Context, g core.WorkoutGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.insert_workout_group"
	if err := checkNewID(op, g.ID); err != nil {
		return err
	}
	if _, ok := s.st.groups[g.ID]; ok {
		return duplicateID(op, "workout group", g.ID)
	}
	return s.putWorkoutGroup(g, op)
}

func (s *Store) putWorkoutGroup(g core.WorkoutGroup, op string) error {
	if err := s.checkGroupName(op, g.ID, g.Name); err != nil {
		return err
	}
	s.st.groups[g.ID] = g
	s.st.seq.WorkoutGroups = max(s.st.seq.WorkoutGroups, g.ID)
	return nil
}

func (s *Store) GetWorkoutGroup(ctx context.Context, id int64) (core.WorkoutGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.st.groups[id]
	if !ok {
		return core.WorkoutGroup{}, notFound("memory.get_workout_group", "workout group", id)
	}
	return g, nil
}

func (s *Store) ListWorkoutGroups(ctx context.Context) ([]core.WorkoutGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.st.groups, func(g core.WorkoutGroup) int64 { return g.ID }), nil
}

func (s *Store) UpdateWorkoutGroup(ctx context.Context, g core.WorkoutGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.update_workout_group"
	if _, ok := s.st.groups[g.ID]; !ok {
		return notFound(op, "workout group", g.ID)
	}
	if err := s.checkGroupName(op, g.ID, g.Name); err != nil {
		return err
	}
	s.st.groups[g.ID] = g
	return nil
}

func (s *Store) DeleteWorkoutGroup(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.groups[id]; !ok {
		return notFound("memory.delete_workout_group", "workout group", id)
	}
	for eid, e := range s.st.exercises {
		if e.WorkoutGroupID == id {
			s.deleteExercise(eid)
		}
	}
	for tid, dg := range s.st.dayGroups {
		if dg.WorkoutGroupID == id {
			delete(s.st.dayGroups, tid)
		}
	}
	delete(s.st.groups, id)
	return nil
}

func (s *Store) checkGroupName(op string, id int64, name string) error {
	for _, other := range s.st.groups {
		if other.ID != id && strings.EqualFold(other.Name, name) {
			return core.Errorf(core.KindConflict, op, "workout group name %q already exists", name)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Exercises
// ----------------------------------------------------------------------------

func (s *Store) CreateExercise(ctx context.Context, e core.Exercise) (core.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.st.seq.Exercises + 1
	if err := s.putExercise(e, "memory.create_exercise"); err != nil {
		return core.Exercise{}, err
	}
	return e, nil
}

func (s *Store) InsertExercise(ctx context.Context, e core.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.insert_exercise"
	if err := checkNewID(op, e.ID); err != nil {
		return err
	}
	if _, ok := s.st.exercises[e.ID]; ok {
		return duplicateID(op, "exercise", e.ID)
	}
	return s.putExercise(e, op)
}

func (s *Store) putExercise(e core.Exercise, op string) error {
	if _, ok := s.st.groups[e.WorkoutGroupID]; !ok {
		return missingRef(op, "workout group", e.WorkoutGroupID)
	}
	s.st.exercises[e.ID] = e
	s.st.seq.Exercises = max(s.st.seq.Exercises, e.ID)
	return nil
}

func (s *Store) GetExercise(ctx context.Context, id int64) (core.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.st.exercises[id]
	if !ok {
		return core.Exercise{}, notFound("memory.get_exercise", "exercise", id)
	}
	return e, nil
}

func (s *Store) ListExercises(ctx context.Context) ([]core.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.st.exercises, func(e core.Exercise) int64 { return e.ID }), nil
}

func (s *Store) UpdateExercise(ctx context.Context, e core.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.update_exercise"
	if _, ok := s.st.exercises[e.ID]; !ok {
		return notFound(op, "exercise", e.ID)
	}
	if _, ok := s.st.groups[e.WorkoutGroupID]; !ok {
		return missingRef(op, "workout group", e.WorkoutGroupID)
	}
	s.st.exercises[e.ID] = e
	return nil
}

func (s *Store) DeleteExercise(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.exercises[id]; !ok {
		return notFound("memory.delete_exercise", "exercise", id)
	}
	s.deleteExercise(id)
	return nil
}

func (s *Store) deleteExercise(id int64) {
	for sid, set := range s.st.sets {
		if set.ExerciseID == id {
			delete(s.st.sets, sid)
		}
	}
	delete(s.st.exercises, id)
}

// ----------------------------------------------------------------------------
// Days
// ----------------------------------------------------------------------------

func (s *Store) CreateDay(ctx context.Context, d core.Day) (core.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = s.st.seq.Days + 1
	if err := s.putDay(d, "memory.create_day"); err != nil {
		return core.Day{}, err
	}
	return d, nil
}

func (s *Store) InsertDay(ctx context.Context, d core.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.insert_day"
	if err := checkNewID(op, d.ID); err != nil {
		return err
	}
	if _, ok := s.st.days[d.ID]; ok {
		return duplicateID(op, "day", d.ID)
	}
	return s.putDay(d, op)
}

func (s *Store) putDay(d core.Day, op string) error {
	if err := s.checkDayOrder(op, d.ID, d.DayOrder); err != nil {
		return err
	}
	s.st.days[d.ID] = d
	s.st.seq.Days = max(s.st.seq.Days, d.ID)
	return nil
}

func (s *Store) GetDay(ctx context.Context, id int64) (core.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.st.days[id]
	if !ok {
		return core.Day{}, notFound("memory.get_day", "day", id)
	}
	return d, nil
}

func (s *Store) ListDays(ctx context.Context) ([]core.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.st.days, func(d core.Day) int64 { return d.ID }), nil
}

func (s *Store) UpdateDay(ctx context.Context, d core.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.update_day"
	if _, ok := s.st.days[d.ID]; !ok {
		return notFound(op, "day", d.ID)
	}
	if err := s.checkDayOrder(op, d.ID, d.DayOrder); err != nil {
		return err
	}
	s.st.days[d.ID] = d
	return nil
}

func (s *Store) DeleteDay(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.days[id]; !ok {
		return notFound("memory.delete_day", "day", id)
	}
	for tid, dg := range s.st.dayGroups {
		if dg.DayID == id {
			delete(s.st.dayGroups, tid)
		}
	}
	for sid, set := range s.st.sets {
		if set.DayID == id {
			delete(s.st.sets, sid)
		}
	}
	delete(s.st.days, id)
	return nil
}

// ReorderDays assigns day orders 1..N following ids. ids must name every day
// exactly once; otherwise nothing changes.
func (s *Store) ReorderDays(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.reorder_days"
	if len(ids) != len(s.st.days) {
		return core.Errorf(core.KindValidation, op, "reorder lists %d days, program has %d", len(ids), len(s.st.days))
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.st.days[id]; !ok {
			return notFound(op, "day", id)
		}
		if seen[id] {
			return core.Errorf(core.KindValidation, op, "day %d listed twice", id)
		}
		seen[id] = true
	}

	for i, id := range ids {
		d := s.st.days[id]
		d.DayOrder = i + 1
		s.st.days[id] = d
	}
	return nil
}

func (s *Store) checkDayOrder(op string, id int64, order int) error {
	for _, other := range s.st.days {
		if other.ID != id && other.DayOrder == order {
			return core.Errorf(core.KindConflict, op, "day_order %d is already used by day %d", order, other.ID)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Day workout groups
// ----------------------------------------------------------------------------

func (s *Store) CreateDayWorkoutGroup(ctx context.Context, dg core.DayWorkoutGroup) (core.DayWorkoutGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dg.ID = s.st.seq.DayWorkoutGroups + 1
	if err := s.putDayWorkoutGroup(dg, "memory.create_day_workout_group"); err != nil {
		return core.DayWorkoutGroup{}, err
	}
	return dg, nil
}

func (s *Store) InsertDayWorkoutGroup(ctx context.Context, dg core.DayWorkoutGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.insert_day_workout_group"
	if err := checkNewID(op, dg.ID); err != nil {
		return err
	}
	if _, ok := s.st.dayGroups[dg.ID]; ok {
		return duplicateID(op, "day workout group", dg.ID)
	}
	return s.putDayWorkoutGroup(dg, op)
}

func (s *Store) putDayWorkoutGroup(dg core.DayWorkoutGroup, op string) error {
	if _, ok := s.st.days[dg.DayID]; !ok {
		return missingRef(op, "day", dg.DayID)
	}
	if _, ok := s.st.groups[dg.WorkoutGroupID]; !ok {
		return missingRef(op, "workout group", dg.WorkoutGroupID)
	}
	for _, other := range s.st.dayGroups {
		if other.DayID == dg.DayID && other.WorkoutGroupID == dg.WorkoutGroupID {
			return core.Errorf(core.KindConflict, op, "day %d is already tagged with workout group %d", dg.DayID, dg.WorkoutGroupID)
		}
	}
	s.st.dayGroups[dg.ID] = dg
	s.st.seq.DayWorkoutGroups = max(s.st.seq.DayWorkoutGroups, dg.ID)
	return nil
}

func (s *Store) ListDayWorkoutGroups(ctx context.Context) ([]core.DayWorkoutGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.st.dayGroups, func(dg core.DayWorkoutGroup) int64 { return dg.ID }), nil
}

func (s *Store) DayWorkoutGroups(ctx context.Context, dayID int64) ([]core.DayWorkoutGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.DayWorkoutGroup
	for _, dg := range s.st.dayGroups {
		if dg.DayID == dayID {
			out = append(out, dg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteDayWorkoutGroup(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.dayGroups[id]; !ok {
		return notFound("memory.delete_day_workout_group", "day workout group", id)
	}
	delete(s.st.dayGroups, id)
	return nil
}

// ----------------------------------------------------------------------------
// Workout sets
// ----------------------------------------------------------------------------

func (s *Store) CreateWorkoutSet(ctx context.Context, set core.WorkoutSet) (core.WorkoutSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set.ID = s.st.seq.WorkoutSets + 1
	if err := s.putWorkoutSet(set, "memory.create_workout_set"); err != nil {
		return core.WorkoutSet{}, err
	}
	return cloneSet(set), nil
}

func (s *Store) InsertWorkoutSet(ctx context.Context, set core.WorkoutSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.insert_workout_set"
	if err := checkNewID(op, set.ID); err != nil {
		return err
	}
	if _, ok := s.st.sets[set.ID]; ok {
		return duplicateID(op, "workout set", set.ID)
	}
	return s.putWorkoutSet(set, op)
}

func (s *Store) putWorkoutSet(set core.WorkoutSet, op string) error {
	if err := s.checkSetRefs(op, set); err != nil {
		return err
	}
	s.st.sets[set.ID] = cloneSet(set)
	s.st.seq.WorkoutSets = max(s.st.seq.WorkoutSets, set.ID)
	return nil
}

func (s *Store) GetWorkoutSet(ctx context.Context, id int64) (core.WorkoutSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.st.sets[id]
	if !ok {
		return core.WorkoutSet{}, notFound("memory.get_workout_set", "workout set", id)
	}
	return cloneSet(set), nil
}

func (s *Store) ListWorkoutSets(ctx context.Context) ([]core.WorkoutSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := sortedValues(s.st.sets, func(set core.WorkoutSet) int64 { return set.ID })
	for i := range out {
		out[i] = cloneSet(out[i])
	}
	return out, nil
}

func (s *Store) SetsByDay(ctx context.Context, dayID int64) ([]core.WorkoutSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.WorkoutSet
	for _, set := range s.st.sets {
		if set.DayID == dayID {
			out = append(out, cloneSet(set))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateWorkoutSet(ctx context.Context, set core.WorkoutSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "memory.update_workout_set"
	if _, ok := s.st.sets[set.ID]; !ok {
		return notFound(op, "workout set", set.ID)
	}
	if err := s.checkSetRefs(op, set); err != nil {
		return err
	}
	s.st.sets[set.ID] = cloneSet(set)
	return nil
}

func (s *Store) DeleteWorkoutSet(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.sets[id]; !ok {
		return notFound("memory.delete_workout_set", "workout set", id)
	}
	delete(s.st.sets, id)
	return nil
}

func (s *Store) checkSetRefs(op string, set core.WorkoutSet) error {
	if _, ok := s.st.days[set.DayID]; !ok {
		return missingRef(op, "day", set.DayID)
	}
	if _, ok := s.st.exercises[set.ExerciseID]; !ok {
		return missingRef(op, "exercise", set.ExerciseID)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Bulk operations
// ----------------------------------------------------------------------------

// ClearAll deletes every entity and resets every id sequence.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st = newState()
	return nil
}

// ClearProgramData deletes days, day tags and sets and resets their
// sequences. Workout groups and exercises stay.
func (s *Store) ClearProgramData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.days = map[int64]core.Day{}
	s.st.dayGroups = map[int64]core.DayWorkoutGroup{}
	s.st.sets = map[int64]core.WorkoutSet{}
	s.st.seq.Days = 0
	s.st.seq.DayWorkoutGroups = 0
	s.st.seq.WorkoutSets = 0
	return nil
}

// Sequences reports the last id handed out per entity.
func (s *Store) Sequences() Sequences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.seq
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func sortedValues[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

func cloneSet(set core.WorkoutSet) core.WorkoutSet {
	if set.Reps != nil {
		set.Reps = core.IntPtr(*set.Reps)
	}
	if set.Weight != nil {
		set.Weight = core.FloatPtr(*set.Weight)
	}
	if set.RIR != nil {
		set.RIR = core.IntPtr(*set.RIR)
	}
	return set
}

func checkNewID(op string, id int64) error {
	if id <= 0 {
		return core.Errorf(core.KindValidation, op, "id must be positive, got %d", id)
	}
	return nil
}

func notFound(op, entity string, id int64) error {
	return core.Errorf(core.KindNotFound, op, "%s %d not found", entity, id)
}

func duplicateID(op, entity string, id int64) error {
	return core.Errorf(core.KindConflict, op, "%s id %d already exists", entity, id)
}

func missingRef(op, entity string, id int64) error {
	return core.Errorf(core.KindIntegrity, op, "%s %d does not exist", entity, id)
}
