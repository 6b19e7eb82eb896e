package core

import (
	"context"
	"encoding/csv"
	"strconv"
	"strings"
)

// NoExercisesLabel fills the exercise column for days without sets.
const NoExercisesLabel = "(No exercises)"

var prettyColumns = []string{"day", "exercise", "workout_group", "set_number", "reps", "weight", "rir", "notes"}

// EncodePretty renders p as a flat sheet for reading, one row per set.
// Rows follow day order, then exercise order within the day, then set order.
// The output is not meant to be imported.
func EncodePretty(p *Program) string {
	groups := p.groupsByID()
	exercises := p.exercisesByID()
	byDay := p.setsByDay()

	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write(prettyColumns)

	for _, day := range p.daysInOrder() {
		sets := byDay[day.ID]
		if len(sets) == 0 {
			w.Write([]string{day.DayName, NoExercisesLabel, "", "", "", "", "", ""})
			continue
		}
		for _, s := range sets {
			ex := exercises[s.ExerciseID]
			w.Write([]string{
				day.DayName,
				ex.Name,
				groups[ex.WorkoutGroupID].Name,
				strconv.Itoa(s.SetOrder),
				FormatOptionalInt(s.Reps),
				FormatOptionalFloat(s.Weight),
				FormatOptionalInt(s.RIR),
				s.Notes,
			})
		}
	}

	w.Flush()
	return b.String()
}

// EncodePrettyRepository loads the program from repo and renders it with
// EncodePretty.
func EncodePrettyRepository(ctx context.Context, repo Repository) (string, error) {
	p, err := LoadProgram(ctx, repo)
	if err != nil {
		return "", Wrap(KindInternal, "encode.pretty", err)
	}
	return EncodePretty(p), nil
}
