package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/liftlog/internal/core"
	"github.com/JonMunkholm/liftlog/internal/store/memory"
)

// singleSetDoc is the encoding of one group, one exercise, one day and one set.
const singleSetDoc = `[WORKOUT_GROUPS]
id,name,notes
1,Chest,

[EXERCISES]
id,workout_group_id,name,notes
1,1,Bench,

[DAYS]
id,day_name,day_order
1,Monday,1

[WORKOUT_SETS]
id,day_id,exercise_id,exercise_order,set_order,reps,weight,rir,notes
1,1,1,1,1,8,135,2,

`

// fullDoc exercises every section, nullable cells and quoted notes.
const fullDoc = `[WORKOUT_GROUPS]
id,name,notes
1,Chest,
2,Back,"wide, then narrow"

[EXERCISES]
id,workout_group_id,name,notes
1,1,Bench,
2,2,Row,
3,1,Fly,"say ""squeeze"""

[DAYS]
id,day_name,day_order,notes
1,Push,1,
2,Pull,2,"deload week
keep it light"

[DAY_WORKOUT_GROUPS]
id,day_id,workout_group_id
1,1,1
2,2,2

[WORKOUT_SETS]
id,day_id,exercise_id,exercise_order,set_order,reps,weight,rir,notes
1,1,1,1,1,8,100,2,
2,1,1,1,2,8,102.5,1,
3,1,3,2,1,12,,,
4,2,2,1,1,,60,3,paused

`

func newRepo(t *testing.T) *memory.Store {
	t.Helper()
	return memory.New()
}

func decode(t *testing.T, repo core.Repository, doc string) (core.ImportResult, error) {
	t.Helper()
	return core.NewDecoder(repo, nil).Decode(context.Background(), doc)
}

func mustDecode(t *testing.T, repo core.Repository, doc string) core.ImportResult {
	t.Helper()
	res, err := decode(t, repo, doc)
	require.NoError(t, err)
	return res
}

func encodeRepo(t *testing.T, repo core.Repository) string {
	t.Helper()
	out, err := core.EncodeRepository(context.Background(), repo)
	require.NoError(t, err)
	return out
}

func seedSingleSet(t *testing.T, repo core.Repository) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.InsertWorkoutGroup(ctx, core.WorkoutGroup{ID: 1, Name: "Chest"}))
	require.NoError(t, repo.InsertExercise(ctx, core.Exercise{ID: 1, WorkoutGroupID: 1, Name: "Bench"}))
	require.NoError(t, repo.InsertDay(ctx, core.Day{ID: 1, DayName: "Monday", DayOrder: 1}))
	require.NoError(t, repo.InsertWorkoutSet(ctx, core.WorkoutSet{
		ID: 1, DayID: 1, ExerciseID: 1, ExerciseOrder: 1, SetOrder: 1,
		Reps: core.IntPtr(8), Weight: core.FloatPtr(135.0), RIR: core.IntPtr(2),
	}))
}

// ----------------------------------------------------------------------------
// Encode Tests
// ----------------------------------------------------------------------------

func TestEncode_EmptyRepository(t *testing.T) {
	repo := newRepo(t)
	assert.Equal(t, "", encodeRepo(t, repo))
	assert.Equal(t, "", core.Encode(&core.Program{}))
}

func TestEncode_SingleSet(t *testing.T) {
	repo := newRepo(t)
	seedSingleSet(t, repo)

	assert.Equal(t, singleSetDoc, encodeRepo(t, repo))
}

func TestEncode_SortsRowsByID(t *testing.T) {
	p := &core.Program{
		WorkoutGroups: []core.WorkoutGroup{{ID: 3, Name: "Legs"}, {ID: 1, Name: "Chest"}, {ID: 2, Name: "Back"}},
	}
	want := "[WORKOUT_GROUPS]\nid,name,notes\n1,Chest,\n2,Back,\n3,Legs,\n\n"

	assert.Equal(t, want, core.Encode(p))
	assert.Equal(t, int64(3), p.WorkoutGroups[0].ID, "Encode must not reorder its input")
}

func TestEncode_DayNotesColumnOnlyWhenUsed(t *testing.T) {
	p := &core.Program{Days: []core.Day{{ID: 1, DayName: "Push", DayOrder: 1}}}
	assert.Contains(t, core.Encode(p), "id,day_name,day_order\n")

	p.Days[0].Notes = "heavy"
	assert.Contains(t, core.Encode(p), "id,day_name,day_order,notes\n1,Push,1,heavy\n")
}

// ----------------------------------------------------------------------------
// Round-trip Tests
// ----------------------------------------------------------------------------

func TestDecode_RoundTripSingleSet(t *testing.T) {
	src := newRepo(t)
	seedSingleSet(t, src)
	doc := encodeRepo(t, src)

	dst := newRepo(t)
	res := mustDecode(t, dst, doc)

	assert.Equal(t, core.FormatCurrent, res.Format)
	assert.Equal(t, core.ImportCounts{WorkoutGroups: 1, Exercises: 1, Days: 1, WorkoutSets: 1}, res.Counts)

	want, err := core.LoadProgram(context.Background(), src)
	require.NoError(t, err)
	got, err := core.LoadProgram(context.Background(), dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecode_RoundTripFullDocument(t *testing.T) {
	repo := newRepo(t)
	res := mustDecode(t, repo, fullDoc)

	assert.Equal(t, 13, res.Counts.Total())
	assert.Equal(t, fullDoc, encodeRepo(t, repo))

	set, err := repo.GetWorkoutSet(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, set.Weight)
	assert.Nil(t, set.RIR)

	day, err := repo.GetDay(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "deload week\nkeep it light", day.Notes)
}

func TestDecode_Idempotent(t *testing.T) {
	repo := newRepo(t)
	mustDecode(t, repo, fullDoc)
	first := encodeRepo(t, repo)

	mustDecode(t, repo, first)
	assert.Equal(t, first, encodeRepo(t, repo))
}

func TestDecode_EmptyDocumentClears(t *testing.T) {
	repo := newRepo(t)
	seedSingleSet(t, repo)

	res := mustDecode(t, repo, "")

	assert.Equal(t, core.FormatEmpty, res.Format)
	assert.Equal(t, core.ImportCounts{}, res.Counts)
	assert.Equal(t, "", encodeRepo(t, repo))
}

func TestDecode_LowercaseMarkers(t *testing.T) {
	doc := strings.NewReplacer(
		"[WORKOUT_GROUPS]", "[workout_groups]",
		"[EXERCISES]", "[Exercises]",
		"[DAYS]", "[days]",
		"[WORKOUT_SETS]", "[workout_sets]",
	).Replace(singleSetDoc)

	repo := newRepo(t)
	res := mustDecode(t, repo, doc)

	assert.Equal(t, core.FormatCurrent, res.Format)
	assert.Equal(t, 1, res.Counts.WorkoutSets)
	assert.Equal(t, singleSetDoc, encodeRepo(t, repo))
}

func TestDecode_ReplacesExistingData(t *testing.T) {
	repo := newRepo(t)
	mustDecode(t, repo, fullDoc)
	mustDecode(t, repo, singleSetDoc)

	assert.Equal(t, singleSetDoc, encodeRepo(t, repo))
}

func TestDecode_SectionOrderDoesNotMatter(t *testing.T) {
	sections := strings.SplitAfter(fullDoc, "\n\n")
	sections = sections[:len(sections)-1] // trailing empty split
	require.Len(t, sections, 5)

	reversed := ""
	for i := len(sections) - 1; i >= 0; i-- {
		reversed += sections[i]
	}

	repo := newRepo(t)
	mustDecode(t, repo, reversed)
	assert.Equal(t, fullDoc, encodeRepo(t, repo))
}

func TestDecode_InsertsInDependencyOrder(t *testing.T) {
	sections := strings.SplitAfter(fullDoc, "\n\n")
	shuffled := sections[4] + sections[2] + sections[0] + sections[3] + sections[1]

	var inserted []string
	var states []core.DecodeState
	dec := core.NewDecoder(newRepo(t), nil)
	dec.OnState = func(state core.DecodeState, section string) {
		states = append(states, state)
		if state == core.StateInserting {
			inserted = append(inserted, section)
		}
	}

	_, err := dec.Decode(context.Background(), shuffled)
	require.NoError(t, err)

	assert.Equal(t, []string{
		core.SectionWorkoutGroups,
		core.SectionExercises,
		core.SectionDays,
		core.SectionDayWorkoutGroups,
		core.SectionWorkoutSets,
	}, inserted)
	assert.Equal(t, core.StateParsing, states[0])
	assert.Equal(t, core.StateDone, states[len(states)-1])
}

func TestDecode_SpreadsheetArtifacts(t *testing.T) {
	doc := "\ufeff[WORKOUT_GROUPS],,\r\n" +
		"id,name,notes\r\n" +
		"\"=\"\"1\"\"\",Chest,\r\n" +
		",,\r\n" +
		"[EXERCISES],,,\r\n" +
		"ID,Workout_Group_ID,Name,Notes\r\n" +
		" 1 , 1 ,Bench,\r\n"

	repo := newRepo(t)
	res := mustDecode(t, repo, doc)
	assert.Equal(t, 2, res.Counts.Total())

	ex, err := repo.GetExercise(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bench", ex.Name)
}

// ----------------------------------------------------------------------------
// Rejection Tests
// ----------------------------------------------------------------------------

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantKind core.Kind
		wantOp   string
	}{
		{
			name:     "legacy document",
			doc:      "[DAYS]\nid,day_name,day_order\n1,Mon,1\n\n[DAY_EXERCISES]\nid,day_id,exercise_id\n1,1,1\n\n[SETS]\nid,day_exercise_id,reps\n1,1,8\n",
			wantKind: core.KindFormatUnsupported,
			wantOp:   "decode.detect",
		},
		{
			name:     "no known sections",
			doc:      "name,reps\nBench,8\n",
			wantKind: core.KindFormatUnsupported,
			wantOp:   "decode.detect",
		},
		{
			name:     "dangling workout group reference",
			doc:      "[WORKOUT_GROUPS]\nid,name,notes\n1,Chest,\n\n[EXERCISES]\nid,workout_group_id,name,notes\n1,9,Bench,\n",
			wantKind: core.KindIntegrity,
			wantOp:   "decode.prevalidate",
		},
		{
			name:     "duplicate id",
			doc:      "[WORKOUT_GROUPS]\nid,name,notes\n1,Chest,\n1,Back,\n",
			wantKind: core.KindIntegrity,
			wantOp:   "decode.prevalidate",
		},
		{
			name:     "conflicting exercise order",
			doc:      strings.Replace(fullDoc, "2,1,1,1,2,8,102.5,1,", "2,1,1,3,2,8,102.5,1,", 1),
			wantKind: core.KindIntegrity,
			wantOp:   "decode.prevalidate",
		},
		{
			name:     "unexpected set column",
			doc:      strings.Replace(singleSetDoc, "rir,notes", "rir,notes,set_type", 1),
			wantKind: core.KindParse,
			wantOp:   "decode.parse",
		},
		{
			name: "repeated set column",
			doc: strings.Replace(
				strings.Replace(singleSetDoc, "rir,notes", "rir,notes,rir", 1),
				"1,1,1,1,1,8,135,2,", "1,1,1,1,1,8,135,2,,7", 1),
			wantKind: core.KindParse,
			wantOp:   "decode.parse",
		},
		{
			name:     "reps beyond int32",
			doc:      strings.Replace(singleSetDoc, "1,1,1,1,1,8,135,2,", "1,1,1,1,1,4294967304,135,2,", 1),
			wantKind: core.KindParse,
			wantOp:   "decode.parse",
		},
		{
			name:     "non-numeric reps",
			doc:      strings.Replace(singleSetDoc, "1,1,1,1,1,8,135,2,", "1,1,1,1,1,eight,135,2,", 1),
			wantKind: core.KindParse,
			wantOp:   "decode.parse",
		},
		{
			name:     "unterminated quote",
			doc:      strings.Replace(singleSetDoc, "1,Chest,", "1,\"Chest,", 1),
			wantKind: core.KindParse,
			wantOp:   "decode.parse",
		},
		{
			name:     "duplicate section",
			doc:      singleSetDoc + "[DAYS]\nid,day_name,day_order\n2,Tuesday,2\n",
			wantKind: core.KindParse,
			wantOp:   "decode.parse",
		},
		{
			name:     "data before first section",
			doc:      "exported by hand\n" + singleSetDoc,
			wantKind: core.KindParse,
			wantOp:   "decode.parse",
		},
		{
			name:     "missing required column",
			doc:      "[DAYS]\nid,day_name\n1,Monday\n",
			wantKind: core.KindParse,
			wantOp:   "decode.parse",
		},
		{
			name:     "short row",
			doc:      "[WORKOUT_GROUPS]\nid,name,notes\n1\n",
			wantKind: core.KindParse,
			wantOp:   "decode.parse",
		},
		{
			name:     "zero reps",
			doc:      strings.Replace(singleSetDoc, "1,1,1,1,1,8,135,2,", "1,1,1,1,1,0,135,2,", 1),
			wantKind: core.KindValidation,
			wantOp:   "decode.prevalidate",
		},
		{
			name:     "negative weight",
			doc:      strings.Replace(singleSetDoc, "1,1,1,1,1,8,135,2,", "1,1,1,1,1,8,-5,2,", 1),
			wantKind: core.KindValidation,
			wantOp:   "decode.prevalidate",
		},
		{
			name:     "empty exercise name",
			doc:      strings.Replace(singleSetDoc, "1,1,Bench,", "1,1,,", 1),
			wantKind: core.KindValidation,
			wantOp:   "decode.prevalidate",
		},
		{
			name:     "empty day order",
			doc:      strings.Replace(singleSetDoc, "1,Monday,1", "1,Monday,", 1),
			wantKind: core.KindValidation,
			wantOp:   "decode.prevalidate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo(t)
			mustDecode(t, repo, fullDoc)

			_, err := decode(t, repo, tt.doc)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, core.KindOf(err), "error: %v", err)

			var cerr *core.Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.wantOp, cerr.Op)

			// Nothing was written before the rejection.
			assert.Equal(t, fullDoc, encodeRepo(t, repo))
		})
	}
}

func TestDecode_ProblemsCarryLines(t *testing.T) {
	doc := "[WORKOUT_GROUPS]\nid,name,notes\n1,Chest,\nx,Back,\ny,Legs,\n"

	_, err := decode(t, newRepo(t), doc)
	require.Error(t, err)

	problems := core.ProblemsOf(err)
	require.Len(t, problems, 2)
	assert.Equal(t, core.SectionWorkoutGroups, problems[0].Section)
	assert.Equal(t, 4, problems[0].Line)
	assert.Equal(t, "id", problems[0].Field)
	assert.Equal(t, 5, problems[1].Line)
}

func TestDecode_WarnsOnIgnoredContent(t *testing.T) {
	doc := "[WORKOUT_GROUPS]\nid,name,notes,color\n1,Chest,,red\n\n[PHOTOS]\nid,url\n1,x\n"

	res := mustDecode(t, newRepo(t), doc)

	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "color")
	assert.Contains(t, res.Warnings[1], "PHOTOS")
	assert.Equal(t, 1, res.Counts.WorkoutGroups)
}

func TestDecode_RepeatedColumnWarnsOutsideSets(t *testing.T) {
	doc := "[WORKOUT_GROUPS]\nid,name,notes,name\n1,Chest,,Back\n"
	repo := newRepo(t)

	res := mustDecode(t, repo, doc)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `"name"`)
	assert.Contains(t, res.Warnings[0], "WORKOUT_GROUPS")
	assert.Equal(t, 1, res.Counts.WorkoutGroups)
	assert.Contains(t, encodeRepo(t, repo), "1,Chest,")
}

// ----------------------------------------------------------------------------
// Rollback Tests
// ----------------------------------------------------------------------------

func TestDecode_PostValidationFailureClears(t *testing.T) {
	doc := "[DAYS]\nid,day_name,day_order\n1,Monday,1\n2,Wednesday,3\n"

	repo := newRepo(t)
	mustDecode(t, repo, fullDoc)

	var states []core.DecodeState
	dec := core.NewDecoder(repo, nil)
	dec.OnState = func(state core.DecodeState, _ string) { states = append(states, state) }

	_, err := dec.Decode(context.Background(), doc)
	require.Error(t, err)
	assert.Equal(t, core.KindIntegrity, core.KindOf(err))
	assert.Contains(t, err.Error(), "day_order")

	assert.Equal(t, "", encodeRepo(t, repo), "failed import must leave the repository empty")
	assert.Contains(t, states, core.StatePostValidating)
	assert.Equal(t, core.StateFailed, states[len(states)-1])
}

func TestDecode_StoreRejectionClears(t *testing.T) {
	// Group names are unique regardless of case; only the store knows.
	doc := "[WORKOUT_GROUPS]\nid,name,notes\n1,Chest,\n2,chest,\n"

	repo := newRepo(t)
	mustDecode(t, repo, fullDoc)

	_, err := decode(t, repo, doc)
	require.Error(t, err)
	assert.Equal(t, core.KindIntegrity, core.KindOf(err))

	var cerr *core.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "decode.insert", cerr.Op)
	require.Len(t, cerr.Problems, 1)
	assert.Equal(t, 4, cerr.Problems[0].Line)

	assert.Equal(t, "", encodeRepo(t, repo))
}

func TestDecode_CancellationBetweenSections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newRepo(t)
	dec := core.NewDecoder(repo, nil)
	dec.OnState = func(state core.DecodeState, section string) {
		if state == core.StateInserting && section == core.SectionWorkoutGroups {
			cancel()
		}
	}

	_, err := dec.Decode(ctx, fullDoc)
	require.ErrorIs(t, err, context.Canceled)

	// The section that was running completed; nothing after it started.
	groups, _ := repo.ListWorkoutGroups(context.Background())
	exercises, _ := repo.ListExercises(context.Background())
	assert.Len(t, groups, 2)
	assert.Empty(t, exercises)
}

func TestDecode_CancelledBeforeClearing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := newRepo(t)
	mustDecode(t, repo, singleSetDoc)

	_, err := core.NewDecoder(repo, nil).Decode(ctx, fullDoc)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, singleSetDoc, encodeRepo(t, repo))
}
