package core

// decode.go restores a program from a sectioned CSV document.
//
// Decoding is a destructive replace that runs through fixed states:
//
//	Idle → Parsing → PreValidating → Clearing → Inserting(section) → PostValidating → Done
//
// Any error moves to Failed. Parsing and pre-validation never touch the
// repository. Once the repository is cleared, a failed insert or a violated
// invariant clears it again, so the caller never sees half a document.
// Cancellation is honored between sections only; a cancelled decode keeps
// the sections inserted so far.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DecodeState is a step of the decode state machine.
type DecodeState int

const (
	StateIdle DecodeState = iota
	StateParsing
	StatePreValidating
	StateClearing
	StateInserting
	StatePostValidating
	StateDone
	StateFailed
)

func (s DecodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StatePreValidating:
		return "pre_validating"
	case StateClearing:
		return "clearing"
	case StateInserting:
		return "inserting"
	case StatePostValidating:
		return "post_validating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Decoder imports documents into a repository.
type Decoder struct {
	repo   Repository
	logger *slog.Logger

	// OnState, if set, is called on every state transition. section is the
	// section being inserted for StateInserting and empty otherwise.
	OnState func(state DecodeState, section string)
}

// NewDecoder creates a decoder that writes to repo.
func NewDecoder(repo Repository, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{repo: repo, logger: logger}
}

func (dec *Decoder) enter(state DecodeState, section string) {
	if section != "" {
		dec.logger.Debug("decode state", "state", state.String(), "section", section)
	} else {
		dec.logger.Debug("decode state", "state", state.String())
	}
	if dec.OnState != nil {
		dec.OnState(state, section)
	}
}

// Decode replaces the repository contents with the program in doc.
// Ids in the document are preserved.
func (dec *Decoder) Decode(ctx context.Context, doc string) (res ImportResult, err error) {
	defer func() {
		if err != nil {
			dec.enter(StateFailed, "")
		}
	}()

	dec.enter(StateParsing, "")
	if res.Format, err = checkFormat(doc); err != nil {
		return res, err
	}
	parsed, err := ParseDocument(doc)
	if err != nil {
		return res, err
	}
	res.Warnings = parsed.Warnings

	dec.enter(StatePreValidating, "")
	if err := PreValidate(parsed); err != nil {
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	dec.enter(StateClearing, "")
	// A started batch runs to completion; ctx is checked between sections.
	batchCtx := context.WithoutCancel(ctx)
	if err := dec.repo.ClearAll(batchCtx); err != nil {
		return res, Wrap(KindOf(err), "decode.clear", err)
	}

	for _, def := range Sections() {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		n := def.Len(&parsed.Program)
		dec.enter(StateInserting, def.Name)
		for i := 0; i < n; i++ {
			if err := def.Insert(batchCtx, dec.repo, &parsed.Program, i); err != nil {
				return res, dec.insertFailed(batchCtx, parsed, def.Name, i, err)
			}
		}
		if n == 0 {
			continue
		}
		if err := dec.repo.Persist(batchCtx); err != nil {
			return res, dec.rollback(batchCtx, Wrap(KindInternal, "decode.persist", err))
		}
	}

	dec.enter(StatePostValidating, "")
	if err := dec.postValidate(batchCtx); err != nil {
		return res, dec.rollback(batchCtx, err)
	}
	if err := dec.repo.Persist(batchCtx); err != nil {
		return res, dec.rollback(batchCtx, Wrap(KindInternal, "decode.persist", err))
	}

	res.Counts = parsed.Counts()
	dec.enter(StateDone, "")
	return res, nil
}

// insertFailed rolls back after a failed insert. Backend failures are
// returned as they are; anything the store rejected becomes INTEGRITY.
func (dec *Decoder) insertFailed(ctx context.Context, d *Document, section string, i int, cause error) error {
	if isCancellation(cause) {
		return cause
	}
	if KindOf(cause) == KindInternal {
		return dec.rollback(ctx, cause)
	}
	return dec.rollback(ctx, &Error{
		Kind:    KindIntegrity,
		Op:      "decode.insert",
		Message: fmt.Sprintf("[%s] row %d rejected", section, i+1),
		Problems: []Problem{{
			Section: section,
			Line:    d.line(section, i),
			Message: cause.Error(),
		}},
		Err: cause,
	})
}

// rollback clears the repository after a failure and returns cause.
func (dec *Decoder) rollback(ctx context.Context, cause error) error {
	dec.logger.Warn("decode rolled back", "error", cause)
	if err := dec.repo.ClearAll(ctx); err != nil {
		return Wrap(KindInternal, "decode.rollback", errors.Join(cause, err))
	}
	if err := dec.repo.Persist(ctx); err != nil {
		return Wrap(KindInternal, "decode.rollback", errors.Join(cause, err))
	}
	return cause
}

// postValidate checks the model invariants against what the repository holds.
func (dec *Decoder) postValidate(ctx context.Context) error {
	p, err := readAll(ctx, dec.repo)
	if err != nil {
		return Wrap(KindInternal, "decode.postvalidate", err)
	}
	if problems := CheckInvariants(p); len(problems) > 0 {
		return &Error{
			Kind:     KindIntegrity,
			Op:       "decode.postvalidate",
			Message:  problems[0].String(),
			Problems: problems,
		}
	}
	return nil
}

// readAll lists every table directly, so rows that no relationship query
// would reach are still checked.
func readAll(ctx context.Context, repo Repository) (*Program, error) {
	var (
		p   Program
		err error
	)
	if p.WorkoutGroups, err = repo.ListWorkoutGroups(ctx); err != nil {
		return nil, err
	}
	if p.Exercises, err = repo.ListExercises(ctx); err != nil {
		return nil, err
	}
	if p.Days, err = repo.ListDays(ctx); err != nil {
		return nil, err
	}
	if p.DayWorkoutGroups, err = repo.ListDayWorkoutGroups(ctx); err != nil {
		return nil, err
	}
	if p.WorkoutSets, err = repo.ListWorkoutSets(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

// PreValidate checks a parsed document before anything is written.
// Out-of-range and empty required values are VALIDATION; duplicate ids and
// references that the document itself cannot satisfy are INTEGRITY.
func PreValidate(d *Document) error {
	if len(d.problems) > 0 {
		return &Error{
			Kind:     KindValidation,
			Op:       "decode.prevalidate",
			Message:  d.problems[0].String(),
			Problems: d.problems,
		}
	}

	var problems []Problem
	add := func(section string, i int, format string, args ...any) {
		problems = append(problems, Problem{
			Section: section,
			Line:    d.line(section, i),
			Message: fmt.Sprintf(format, args...),
		})
	}

	p := &d.Program

	groups := make(map[int64]bool)
	for i, g := range p.WorkoutGroups {
		if groups[g.ID] {
			add(SectionWorkoutGroups, i, "duplicate id %d", g.ID)
		}
		groups[g.ID] = true
	}
	exercises := make(map[int64]bool)
	for i, e := range p.Exercises {
		if exercises[e.ID] {
			add(SectionExercises, i, "duplicate id %d", e.ID)
		}
		exercises[e.ID] = true
		if !groups[e.WorkoutGroupID] {
			add(SectionExercises, i, "workout_group_id %d not found in [%s]", e.WorkoutGroupID, SectionWorkoutGroups)
		}
	}
	days := make(map[int64]bool)
	for i, day := range p.Days {
		if days[day.ID] {
			add(SectionDays, i, "duplicate id %d", day.ID)
		}
		days[day.ID] = true
	}
	tags := make(map[int64]bool)
	for i, dg := range p.DayWorkoutGroups {
		if tags[dg.ID] {
			add(SectionDayWorkoutGroups, i, "duplicate id %d", dg.ID)
		}
		tags[dg.ID] = true
		if !days[dg.DayID] {
			add(SectionDayWorkoutGroups, i, "day_id %d not found in [%s]", dg.DayID, SectionDays)
		}
		if !groups[dg.WorkoutGroupID] {
			add(SectionDayWorkoutGroups, i, "workout_group_id %d not found in [%s]", dg.WorkoutGroupID, SectionWorkoutGroups)
		}
	}

	sets := make(map[int64]bool)
	exerciseOrder := make(map[[2]int64]int)
	for i, s := range p.WorkoutSets {
		if sets[s.ID] {
			add(SectionWorkoutSets, i, "duplicate id %d", s.ID)
		}
		sets[s.ID] = true
		if !days[s.DayID] {
			add(SectionWorkoutSets, i, "day_id %d not found in [%s]", s.DayID, SectionDays)
		}
		if !exercises[s.ExerciseID] {
			add(SectionWorkoutSets, i, "exercise_id %d not found in [%s]", s.ExerciseID, SectionExercises)
		}
		key := [2]int64{s.DayID, s.ExerciseID}
		if order, seen := exerciseOrder[key]; !seen {
			exerciseOrder[key] = s.ExerciseOrder
		} else if order != s.ExerciseOrder {
			add(SectionWorkoutSets, i, "exercise %d on day %d has exercise_order %d, earlier rows use %d",
				s.ExerciseID, s.DayID, s.ExerciseOrder, order)
		}
	}

	if len(problems) > 0 {
		return &Error{
			Kind:     KindIntegrity,
			Op:       "decode.prevalidate",
			Message:  problems[0].String(),
			Problems: problems,
		}
	}
	return nil
}
