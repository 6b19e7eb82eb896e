package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setsOf(dayID, exerciseID int64, exerciseOrder int, firstID int64, rirs ...*int) []WorkoutSet {
	out := make([]WorkoutSet, len(rirs))
	for i, rir := range rirs {
		out[i] = WorkoutSet{
			ID:            firstID + int64(i),
			DayID:         dayID,
			ExerciseID:    exerciseID,
			ExerciseOrder: exerciseOrder,
			SetOrder:      i + 1,
			Reps:          IntPtr(8),
			RIR:           rir,
		}
	}
	return out
}

// summaryProgram has exercise E on days A and B: three sets at rir 2 on A and
// two sets at rir 4 on B. Day A also has F with one unrated set.
func summaryProgram() *Program {
	p := &Program{
		WorkoutGroups: []WorkoutGroup{{ID: 1, Name: "legs"}, {ID: 2, Name: "Chest"}},
		Exercises: []Exercise{
			{ID: 1, WorkoutGroupID: 1, Name: "E"},
			{ID: 2, WorkoutGroupID: 2, Name: "F"},
		},
		Days: []Day{
			{ID: 1, DayName: "A", DayOrder: 1},
			{ID: 2, DayName: "B", DayOrder: 2},
			{ID: 3, DayName: "C", DayOrder: 3},
		},
		DayWorkoutGroups: []DayWorkoutGroup{
			{ID: 1, DayID: 1, WorkoutGroupID: 1},
			{ID: 2, DayID: 1, WorkoutGroupID: 2},
		},
	}
	p.WorkoutSets = append(p.WorkoutSets, setsOf(1, 1, 1, 1, IntPtr(2), IntPtr(2), IntPtr(2))...)
	p.WorkoutSets = append(p.WorkoutSets, setsOf(2, 1, 1, 4, IntPtr(4), IntPtr(4))...)
	p.WorkoutSets = append(p.WorkoutSets, setsOf(1, 2, 2, 6, nil)...)
	return p
}

func TestAggregateDays_CrossDay(t *testing.T) {
	p := summaryProgram()
	p.WorkoutSets = p.WorkoutSets[:5] // only E

	agg := AggregateDays(p, []int64{1, 2})

	assert.Equal(t, 2, agg.TotalDays)
	assert.Equal(t, 5, agg.TotalSets)
	assert.Equal(t, 1, agg.TotalExercises)
	require.NotNil(t, agg.AvgRIR)
	assert.InDelta(t, 2.8, *agg.AvgRIR, 1e-9)

	require.Len(t, agg.ExerciseAggregates, 1)
	e := agg.ExerciseAggregates[0]
	assert.Equal(t, 5, e.TotalSets)
	require.NotNil(t, e.AvgRIR)
	assert.InDelta(t, 2.8, *e.AvgRIR, 1e-9)

	require.Len(t, e.Days, 2)
	assert.Equal(t, "A", e.Days[0].DayName)
	assert.Equal(t, 3, e.Days[0].SetCount)
	assert.InDelta(t, 2.0, *e.Days[0].AvgRIR, 1e-9)
	assert.Equal(t, "B", e.Days[1].DayName)
	assert.InDelta(t, 4.0, *e.Days[1].AvgRIR, 1e-9)
}

func TestAggregateDays_Selection(t *testing.T) {
	p := summaryProgram()

	t.Run("unknown and repeated ids", func(t *testing.T) {
		agg := AggregateDays(p, []int64{2, 2, 99})
		assert.Equal(t, 1, agg.TotalDays)
		assert.Equal(t, 2, agg.TotalSets)
	})

	t.Run("empty selection", func(t *testing.T) {
		agg := AggregateDays(p, nil)
		assert.Equal(t, 0, agg.TotalDays)
		assert.Equal(t, 0, agg.TotalSets)
		assert.Nil(t, agg.AvgRIR)
		assert.Empty(t, agg.ExerciseAggregates)
	})

	t.Run("day without sets", func(t *testing.T) {
		agg := AggregateDays(p, []int64{3})
		assert.Equal(t, 1, agg.TotalDays)
		assert.Equal(t, 0, agg.TotalExercises)
		assert.Nil(t, agg.AvgRIR)
	})

	t.Run("sorted by total sets", func(t *testing.T) {
		agg := AggregateDays(p, []int64{1, 2})
		require.Len(t, agg.ExerciseAggregates, 2)
		assert.Equal(t, "E", agg.ExerciseAggregates[0].ExerciseName)
		assert.Equal(t, "F", agg.ExerciseAggregates[1].ExerciseName)
		assert.Nil(t, agg.ExerciseAggregates[1].AvgRIR, "an exercise with no rated sets has no average")
		assert.Equal(t, 6, agg.TotalSets)
	})
}

func TestAggregateDays_WeightsBySetCount(t *testing.T) {
	p := summaryProgram()
	// Day A: E has rir 2, 2 and one unrated set; day B: E has one set at 4.
	p.WorkoutSets = append(setsOf(1, 1, 1, 1, IntPtr(2), IntPtr(2), nil), setsOf(2, 1, 1, 4, IntPtr(4))...)

	agg := AggregateDays(p, []int64{1, 2})

	// (2·3 + 4·1) / 4
	require.NotNil(t, agg.AvgRIR)
	assert.InDelta(t, 2.5, *agg.AvgRIR, 1e-9)
}

func TestAggregateDays_RoundsOnce(t *testing.T) {
	p := summaryProgram()
	p.WorkoutSets = append(
		setsOf(1, 1, 1, 1, IntPtr(0), IntPtr(0), IntPtr(0), IntPtr(1)),
		setsOf(2, 1, 1, 10, IntPtr(0), IntPtr(0), IntPtr(0), IntPtr(0))...,
	)

	agg := AggregateDays(p, []int64{1, 2})

	// (0.25·4 + 0·4) / 8 = 0.125. Rounding each day first would give 0.2.
	require.NotNil(t, agg.AvgRIR)
	assert.InDelta(t, 0.1, *agg.AvgRIR, 1e-9)
}

func TestSummarizeDays(t *testing.T) {
	p := summaryProgram()
	summaries := SummarizeDays(p)

	require.Len(t, summaries, 3)
	a := summaries[0]
	assert.Equal(t, "A", a.DayName)
	assert.Equal(t, []string{"Chest", "legs"}, a.WorkoutGroups, "groups sort case-insensitively")
	assert.Equal(t, 4, a.TotalSets)
	assert.Equal(t, 2, a.TotalExercises)
	require.NotNil(t, a.AvgRIR)
	assert.InDelta(t, 2.0, *a.AvgRIR, 1e-9, "unrated sets do not count toward the mean")

	require.Len(t, a.ExerciseBreakdown, 2)
	assert.Equal(t, "E", a.ExerciseBreakdown[0].ExerciseName)
	assert.Equal(t, "legs", a.ExerciseBreakdown[0].WorkoutGroupName)
	assert.Equal(t, 3, a.ExerciseBreakdown[0].SetCount)
	assert.Nil(t, a.ExerciseBreakdown[1].AvgRIR)

	c := summaries[2]
	assert.Equal(t, 0, c.TotalSets)
	assert.Nil(t, c.AvgRIR)
	assert.Empty(t, c.WorkoutGroups)
	assert.NotNil(t, c.ExerciseBreakdown)
}

func TestSummarizeDay_NotFound(t *testing.T) {
	_, ok := SummarizeDay(summaryProgram(), 42)
	assert.False(t, ok)

	s, ok := SummarizeDay(summaryProgram(), 2)
	require.True(t, ok)
	assert.Equal(t, "B", s.DayName)
	assert.InDelta(t, 4.0, *s.AvgRIR, 1e-9)
}

func TestGroupBreakdown(t *testing.T) {
	groups := GroupBreakdown(summaryProgram(), []int64{1, 2, 3})

	require.Len(t, groups, 2)
	assert.Equal(t, "Chest", groups[0].GroupName)
	assert.Equal(t, "F", groups[0].Exercises[0].ExerciseName)
	assert.Equal(t, "legs", groups[1].GroupName)
	assert.Equal(t, 5, groups[1].Exercises[0].TotalSets)
}
