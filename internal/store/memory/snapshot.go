package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/liftlog/internal/core"
)

// snapshotVersion is bumped when the file layout changes.
const snapshotVersion = 1

// Snapshot is the serialisable representation of the store.
type Snapshot struct {
	Version   int          `json:"version"`
	Sequences Sequences    `json:"sequences"`
	Program   core.Program `json:"program"`
}

// Open returns a store backed by the snapshot at path. A missing file yields
// an empty store; the file is created on the first Persist.
func Open(path string) (*Store, error) {
	s := New()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot %s has version %d, want %d", path, snap.Version, snapshotVersion)
	}
	if err := s.restore(snap); err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", path, err)
	}
	return s, nil
}

// Path returns the snapshot file, or "" for a purely in-memory store.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Version:   snapshotVersion,
		Sequences: s.st.seq,
		Program: core.Program{
			WorkoutGroups:    sortedValues(s.st.groups, func(g core.WorkoutGroup) int64 { return g.ID }),
			Exercises:        sortedValues(s.st.exercises, func(e core.Exercise) int64 { return e.ID }),
			Days:             sortedValues(s.st.days, func(d core.Day) int64 { return d.ID }),
			DayWorkoutGroups: sortedValues(s.st.dayGroups, func(dg core.DayWorkoutGroup) int64 { return dg.ID }),
			WorkoutSets:      sortedValues(s.st.sets, func(set core.WorkoutSet) int64 { return set.ID }),
		},
	}
	for i := range snap.Program.WorkoutSets {
		snap.Program.WorkoutSets[i] = cloneSet(snap.Program.WorkoutSets[i])
	}
	return snap
}

// Persist writes the snapshot atomically. It is a no-op for a store opened
// with New.
func (s *Store) Persist(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	// Write atomically
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// restore loads snap through the constraint checks, so a hand-edited file
// cannot smuggle in dangling references.
func (s *Store) restore(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st = newState()
	p := snap.Program
	for _, g := range p.WorkoutGroups {
		if err := s.putWorkoutGroup(g, "memory.restore"); err != nil {
			return err
		}
	}
	for _, e := range p.Exercises {
		if err := s.putExercise(e, "memory.restore"); err != nil {
			return err
		}
	}
	for _, d := range p.Days {
		if err := s.putDay(d, "memory.restore"); err != nil {
			return err
		}
	}
	for _, dg := range p.DayWorkoutGroups {
		if err := s.putDayWorkoutGroup(dg, "memory.restore"); err != nil {
			return err
		}
	}
	for _, set := range p.WorkoutSets {
		if err := s.putWorkoutSet(set, "memory.restore"); err != nil {
			return err
		}
	}

	// Sequences may run ahead of the surviving rows after deletes.
	s.st.seq.WorkoutGroups = max(s.st.seq.WorkoutGroups, snap.Sequences.WorkoutGroups)
	s.st.seq.Exercises = max(s.st.seq.Exercises, snap.Sequences.Exercises)
	s.st.seq.Days = max(s.st.seq.Days, snap.Sequences.Days)
	s.st.seq.DayWorkoutGroups = max(s.st.seq.DayWorkoutGroups, snap.Sequences.DayWorkoutGroups)
	s.st.seq.WorkoutSets = max(s.st.seq.WorkoutSets, snap.Sequences.WorkoutSets)
	return nil
}
