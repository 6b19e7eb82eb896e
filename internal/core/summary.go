package core

// summary.go derives statistics from a program snapshot.
//
// RIR averages are kept unrounded until the value is reported. Cross-day
// averages weight each (day, exercise) average by that pair's set count,
// then round once.

import (
	"math"
	"sort"
	"strings"
)

// ExerciseStat is one exercise's statistics on a single day.
type ExerciseStat struct {
	ExerciseID       int64    `json:"exerciseId"`
	ExerciseName     string   `json:"exerciseName"`
	WorkoutGroupName string   `json:"workoutGroupName"`
	SetCount         int      `json:"setCount"`
	AvgRIR           *float64 `json:"avgRir"`
}

// DaySummary holds the statistics of one day.
type DaySummary struct {
	DayID             int64          `json:"dayId"`
	DayName           string         `json:"dayName"`
	DayOrder          int            `json:"dayOrder"`
	WorkoutGroups     []string       `json:"workoutGroups"`
	TotalSets         int            `json:"totalSets"`
	TotalExercises    int            `json:"totalExercises"`
	AvgRIR            *float64       `json:"avgRir"`
	ExerciseBreakdown []ExerciseStat `json:"exerciseBreakdown"`
}

// DayAppearance is an exercise's statistics on one of the selected days.
type DayAppearance struct {
	DayID    int64    `json:"dayId"`
	DayName  string   `json:"dayName"`
	SetCount int      `json:"setCount"`
	AvgRIR   *float64 `json:"avgRir"`
}

// ExerciseAggregate is an exercise's statistics across the selected days.
type ExerciseAggregate struct {
	ExerciseID       int64           `json:"exerciseId"`
	ExerciseName     string          `json:"exerciseName"`
	WorkoutGroupName string          `json:"workoutGroupName"`
	TotalSets        int             `json:"totalSets"`
	AvgRIR           *float64        `json:"avgRir"`
	Days             []DayAppearance `json:"days"`
}

// Aggregate holds the statistics across a selection of days.
type Aggregate struct {
	TotalDays          int                 `json:"totalDays"`
	TotalSets          int                 `json:"totalSets"`
	TotalExercises     int                 `json:"totalExercises"`
	AvgRIR             *float64            `json:"avgRir"`
	ExerciseAggregates []ExerciseAggregate `json:"exerciseAggregates"`
}

// GroupExercises lists the selected exercises of one workout group.
type GroupExercises struct {
	GroupName string              `json:"groupName"`
	Exercises []ExerciseAggregate `json:"exercises"`
}

// rirMean accumulates RIR samples of a set of rows.
type rirMean struct {
	sets int
	sum  float64
	n    int
}

func (m *rirMean) add(s WorkoutSet) {
	m.sets++
	if s.RIR != nil {
		m.sum += float64(*s.RIR)
		m.n++
	}
}

// mean returns the unrounded mean, or false when there are no samples.
func (m rirMean) mean() (float64, bool) {
	if m.n == 0 {
		return 0, false
	}
	return m.sum / float64(m.n), true
}

// weightedMean accumulates per-pair averages weighted by set count.
type weightedMean struct {
	sum    float64
	weight int
}

func (w *weightedMean) add(pair rirMean) {
	if avg, ok := pair.mean(); ok {
		w.sum += avg * float64(pair.sets)
		w.weight += pair.sets
	}
}

func (w weightedMean) rounded() *float64 {
	if w.weight == 0 {
		return nil
	}
	return round1(w.sum / float64(w.weight))
}

func roundedMean(m rirMean) *float64 {
	avg, ok := m.mean()
	if !ok {
		return nil
	}
	return round1(avg)
}

func round1(v float64) *float64 {
	r := math.Round(v*10) / 10
	return &r
}

// SummarizeDays returns a summary for every day, in day order.
func SummarizeDays(p *Program) []DaySummary {
	days := p.daysInOrder()
	out := make([]DaySummary, 0, len(days))
	for _, d := range days {
		out = append(out, summarizeDay(p, d))
	}
	return out
}

// SummarizeDay returns the summary of one day. ok is false if the day does
// not exist.
func SummarizeDay(p *Program, dayID int64) (summary DaySummary, ok bool) {
	d, ok := p.daysByID()[dayID]
	if !ok {
		return DaySummary{}, false
	}
	return summarizeDay(p, d), true
}

func summarizeDay(p *Program, d Day) DaySummary {
	groups := p.groupsByID()
	exercises := p.exercisesByID()

	summary := DaySummary{
		DayID:             d.ID,
		DayName:           d.DayName,
		DayOrder:          d.DayOrder,
		WorkoutGroups:     []string{},
		ExerciseBreakdown: []ExerciseStat{},
	}

	for _, dg := range p.DayWorkoutGroups {
		if dg.DayID == d.ID {
			summary.WorkoutGroups = append(summary.WorkoutGroups, groups[dg.WorkoutGroupID].Name)
		}
	}
	sort.Slice(summary.WorkoutGroups, func(i, j int) bool {
		return strings.ToLower(summary.WorkoutGroups[i]) < strings.ToLower(summary.WorkoutGroups[j])
	})

	var day rirMean
	perExercise := make(map[int64]*rirMean)
	var order []int64
	for _, s := range p.WorkoutSets {
		if s.DayID != d.ID {
			continue
		}
		day.add(s)
		m, ok := perExercise[s.ExerciseID]
		if !ok {
			m = &rirMean{}
			perExercise[s.ExerciseID] = m
			order = append(order, s.ExerciseID)
		}
		m.add(s)
	}

	summary.TotalSets = day.sets
	summary.TotalExercises = len(perExercise)
	summary.AvgRIR = roundedMean(day)

	for _, id := range order {
		ex := exercises[id]
		summary.ExerciseBreakdown = append(summary.ExerciseBreakdown, ExerciseStat{
			ExerciseID:       id,
			ExerciseName:     ex.Name,
			WorkoutGroupName: groups[ex.WorkoutGroupID].Name,
			SetCount:         perExercise[id].sets,
			AvgRIR:           roundedMean(*perExercise[id]),
		})
	}
	sort.Slice(summary.ExerciseBreakdown, func(i, j int) bool {
		a, b := summary.ExerciseBreakdown[i], summary.ExerciseBreakdown[j]
		if la, lb := strings.ToLower(a.ExerciseName), strings.ToLower(b.ExerciseName); la != lb {
			return la < lb
		}
		return a.ExerciseID < b.ExerciseID
	})

	return summary
}

// selectDays resolves dayIDs against p, dropping unknown and repeated ids.
func selectDays(p *Program, dayIDs []int64) map[int64]Day {
	all := p.daysByID()
	selected := make(map[int64]Day, len(dayIDs))
	for _, id := range dayIDs {
		if d, ok := all[id]; ok {
			selected[id] = d
		}
	}
	return selected
}

// exerciseTotals collects per-exercise statistics over the selected days.
type exerciseTotals struct {
	agg    ExerciseAggregate
	perDay map[int64]*rirMean
}

func aggregateExercises(p *Program, selected map[int64]Day) (map[int64]*exerciseTotals, weightedMean) {
	groups := p.groupsByID()
	exercises := p.exercisesByID()

	totals := make(map[int64]*exerciseTotals)
	for _, s := range p.WorkoutSets {
		if _, ok := selected[s.DayID]; !ok {
			continue
		}
		t, ok := totals[s.ExerciseID]
		if !ok {
			ex := exercises[s.ExerciseID]
			t = &exerciseTotals{
				agg: ExerciseAggregate{
					ExerciseID:       s.ExerciseID,
					ExerciseName:     ex.Name,
					WorkoutGroupName: groups[ex.WorkoutGroupID].Name,
				},
				perDay: make(map[int64]*rirMean),
			}
			totals[s.ExerciseID] = t
		}
		m, ok := t.perDay[s.DayID]
		if !ok {
			m = &rirMean{}
			t.perDay[s.DayID] = m
		}
		m.add(s)
	}

	var overall weightedMean
	for _, t := range totals {
		var w weightedMean
		t.agg.Days = make([]DayAppearance, 0, len(t.perDay))
		for dayID, m := range t.perDay {
			w.add(*m)
			overall.add(*m)
			t.agg.TotalSets += m.sets
			t.agg.Days = append(t.agg.Days, DayAppearance{
				DayID:    dayID,
				DayName:  selected[dayID].DayName,
				SetCount: m.sets,
				AvgRIR:   roundedMean(*m),
			})
		}
		t.agg.AvgRIR = w.rounded()
		sort.Slice(t.agg.Days, func(i, j int) bool {
			a, b := t.agg.Days[i], t.agg.Days[j]
			if la, lb := strings.ToLower(a.DayName), strings.ToLower(b.DayName); la != lb {
				return la < lb
			}
			return a.DayID < b.DayID
		})
	}

	return totals, overall
}

// AggregateDays computes statistics across the given days. Unknown ids are
// ignored and repeated ids count once. An empty selection yields zero values.
func AggregateDays(p *Program, dayIDs []int64) Aggregate {
	selected := selectDays(p, dayIDs)
	totals, overall := aggregateExercises(p, selected)

	agg := Aggregate{
		TotalDays:          len(selected),
		TotalExercises:     len(totals),
		AvgRIR:             overall.rounded(),
		ExerciseAggregates: make([]ExerciseAggregate, 0, len(totals)),
	}
	for _, t := range totals {
		agg.TotalSets += t.agg.TotalSets
		agg.ExerciseAggregates = append(agg.ExerciseAggregates, t.agg)
	}
	sort.Slice(agg.ExerciseAggregates, func(i, j int) bool {
		a, b := agg.ExerciseAggregates[i], agg.ExerciseAggregates[j]
		if a.TotalSets != b.TotalSets {
			return a.TotalSets > b.TotalSets
		}
		if la, lb := strings.ToLower(a.ExerciseName), strings.ToLower(b.ExerciseName); la != lb {
			return la < lb
		}
		return a.ExerciseID < b.ExerciseID
	})
	return agg
}

// GroupBreakdown re-keys the selected exercise statistics by workout group.
// Groups and the exercises within them are sorted by name.
func GroupBreakdown(p *Program, dayIDs []int64) []GroupExercises {
	totals, _ := aggregateExercises(p, selectDays(p, dayIDs))

	byGroup := make(map[string][]ExerciseAggregate)
	for _, t := range totals {
		byGroup[t.agg.WorkoutGroupName] = append(byGroup[t.agg.WorkoutGroupName], t.agg)
	}

	out := make([]GroupExercises, 0, len(byGroup))
	for name, list := range byGroup {
		sort.Slice(list, func(i, j int) bool {
			if la, lb := strings.ToLower(list[i].ExerciseName), strings.ToLower(list[j].ExerciseName); la != lb {
				return la < lb
			}
			return list[i].ExerciseID < list[j].ExerciseID
		})
		out = append(out, GroupExercises{GroupName: name, Exercises: list})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].GroupName) < strings.ToLower(out[j].GroupName)
	})
	return out
}
