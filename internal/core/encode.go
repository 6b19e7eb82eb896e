package core

import (
	"context"
	"encoding/csv"
	"strings"
)

// Encode renders p as a sectioned CSV document.
//
// Sections are written in dependency order, rows sorted by id. Sections with
// no rows are omitted. Every section ends with a blank line and lines end in
// "\n", so encoding the same program twice yields identical text.
func Encode(p *Program) string {
	sorted := *p
	sorted.WorkoutGroups = append([]WorkoutGroup(nil), p.WorkoutGroups...)
	sorted.Exercises = append([]Exercise(nil), p.Exercises...)
	sorted.Days = append([]Day(nil), p.Days...)
	sorted.DayWorkoutGroups = append([]DayWorkoutGroup(nil), p.DayWorkoutGroups...)
	sorted.WorkoutSets = append([]WorkoutSet(nil), p.WorkoutSets...)
	sorted.SortByID()

	var b strings.Builder
	for _, def := range Sections() {
		n := def.Len(&sorted)
		if n == 0 {
			continue
		}
		encodeSection(&b, def, &sorted, n)
	}
	return b.String()
}

// EncodeRepository loads the program from repo and encodes it.
func EncodeRepository(ctx context.Context, repo Repository) (string, error) {
	p, err := LoadProgram(ctx, repo)
	if err != nil {
		return "", Wrap(KindInternal, "encode", err)
	}
	return Encode(p), nil
}

func encodeSection(b *strings.Builder, def SectionDefinition, p *Program, n int) {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = def.EncodeRow(p, i)
	}

	keep := emittedColumns(def, rows)

	b.WriteString(marker(def.Name))
	b.WriteString("\n")

	w := csv.NewWriter(b)
	w.Write(project(def.ColumnNames(), keep))
	for _, row := range rows {
		w.Write(project(row, keep))
	}
	w.Flush()

	b.WriteString("\n")
}

// emittedColumns reports which columns to write. Optional columns are dropped
// when every row leaves them empty.
func emittedColumns(def SectionDefinition, rows [][]string) []bool {
	keep := make([]bool, len(def.Columns))
	for i, col := range def.Columns {
		if !col.Optional {
			keep[i] = true
			continue
		}
		for _, row := range rows {
			if row[i] != "" {
				keep[i] = true
				break
			}
		}
	}
	return keep
}

func project(row []string, keep []bool) []string {
	out := make([]string, 0, len(row))
	for i, v := range row {
		if keep[i] {
			out = append(out, v)
		}
	}
	return out
}
