package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Section names of the current document format.
const (
	SectionWorkoutGroups    = "WORKOUT_GROUPS"
	SectionExercises        = "EXERCISES"
	SectionDays             = "DAYS"
	SectionDayWorkoutGroups = "DAY_WORKOUT_GROUPS"
	SectionWorkoutSets      = "WORKOUT_SETS"
)

// FieldType represents the expected data type for a CSV column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldID
	FieldInt
	FieldFloat
)

// Domain restricts the range of a numeric column.
type Domain int

const (
	DomainAny Domain = iota
	DomainPositive
	DomainNonNegative
)

// ColumnSpec defines validation rules for a single section column.
type ColumnSpec struct {
	Name       string    // Column header name (matched case-insensitively)
	Type       FieldType // Expected data type
	Required   bool      // Column must exist in the section header
	AllowEmpty bool      // If true, empty values are allowed even when Required
	Domain     Domain    // Range check for numeric columns
	Optional   bool      // Emitted on encode only when some row has a value
}

// SectionDefinition contains everything needed to encode, decode and insert
// one section of the document.
type SectionDefinition struct {
	Name    string
	Rank    int // Dependency order; lower ranks are inserted first
	Columns []ColumnSpec

	// StrictColumns rejects header columns that are not in Columns.
	// Other sections ignore them with a warning.
	StrictColumns bool

	// DecodeRow appends the typed row to p.
	DecodeRow func(p *Program, row []string, idx HeaderIndex) error

	// Len returns how many rows of this section p holds.
	Len func(p *Program) int

	// EncodeRow renders row i of p in Columns order.
	EncodeRow func(p *Program, i int) []string

	// Insert writes row i of p to the repository, keeping its id.
	Insert func(ctx context.Context, repo Repository, p *Program, i int) error
}

var (
	sectionRegistry   = make(map[string]SectionDefinition)
	sectionRegistryMu sync.RWMutex
)

// RegisterSection adds a section definition to the registry.
// Panics if a section with the same name is already registered.
func RegisterSection(def SectionDefinition) {
	sectionRegistryMu.Lock()
	defer sectionRegistryMu.Unlock()

	if _, exists := sectionRegistry[def.Name]; exists {
		panic(fmt.Sprintf("section already registered: %s", def.Name))
	}
	sectionRegistry[def.Name] = def
}

// Section returns a section definition by name.
func Section(name string) (SectionDefinition, bool) {
	sectionRegistryMu.RLock()
	defer sectionRegistryMu.RUnlock()

	def, ok := sectionRegistry[name]
	return def, ok
}

// Sections returns all registered sections in dependency order.
func Sections() []SectionDefinition {
	sectionRegistryMu.RLock()
	defer sectionRegistryMu.RUnlock()

	result := make([]SectionDefinition, 0, len(sectionRegistry))
	for _, def := range sectionRegistry {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Rank < result[j].Rank
	})
	return result
}

// ColumnNames returns the header names of the columns, in order.
func (d SectionDefinition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

func init() {
	RegisterSection(workoutGroupsSection())
	RegisterSection(exercisesSection())
	RegisterSection(daysSection())
	RegisterSection(dayWorkoutGroupsSection())
	RegisterSection(workoutSetsSection())
}

func idColumn(name string) ColumnSpec {
	return ColumnSpec{Name: name, Type: FieldID, Required: true}
}

func notesColumn() ColumnSpec {
	return ColumnSpec{Name: "notes", Type: FieldText, AllowEmpty: true}
}

func workoutGroupsSection() SectionDefinition {
	return SectionDefinition{
		Name: SectionWorkoutGroups,
		Rank: 1,
		Columns: []ColumnSpec{
			idColumn("id"),
			{Name: "name", Type: FieldText, Required: true},
			notesColumn(),
		},
		DecodeRow: func(p *Program, row []string, idx HeaderIndex) error {
			id, err := ParseID(idx.Text(row, "id"))
			if err != nil {
				return err
			}
			p.WorkoutGroups = append(p.WorkoutGroups, WorkoutGroup{
				ID:    id,
				Name:  idx.Text(row, "name"),
				Notes: idx.Text(row, "notes"),
			})
			return nil
		},
		Len: func(p *Program) int { return len(p.WorkoutGroups) },
		EncodeRow: func(p *Program, i int) []string {
			g := p.WorkoutGroups[i]
			return []string{FormatID(g.ID), g.Name, g.Notes}
		},
		Insert: func(ctx context.Context, repo Repository, p *Program, i int) error {
			return repo.InsertWorkoutGroup(ctx, p.WorkoutGroups[i])
		},
	}
}

func exercisesSection() SectionDefinition {
	return SectionDefinition{
		Name: SectionExercises,
		Rank: 2,
		Columns: []ColumnSpec{
			idColumn("id"),
			idColumn("workout_group_id"),
			{Name: "name", Type: FieldText, Required: true},
			notesColumn(),
		},
		DecodeRow: func(p *Program, row []string, idx HeaderIndex) error {
			id, err := ParseID(idx.Text(row, "id"))
			if err != nil {
				return err
			}
			groupID, err := ParseID(idx.Text(row, "workout_group_id"))
			if err != nil {
				return err
			}
			p.Exercises = append(p.Exercises, Exercise{
				ID:             id,
				WorkoutGroupID: groupID,
				Name:           idx.Text(row, "name"),
				Notes:          idx.Text(row, "notes"),
			})
			return nil
		},
		Len: func(p *Program) int { return len(p.Exercises) },
		EncodeRow: func(p *Program, i int) []string {
			e := p.Exercises[i]
			return []string{FormatID(e.ID), FormatID(e.WorkoutGroupID), e.Name, e.Notes}
		},
		Insert: func(ctx context.Context, repo Repository, p *Program, i int) error {
			return repo.InsertExercise(ctx, p.Exercises[i])
		},
	}
}

func daysSection() SectionDefinition {
	return SectionDefinition{
		Name: SectionDays,
		Rank: 3,
		Columns: []ColumnSpec{
			idColumn("id"),
			{Name: "day_name", Type: FieldText, Required: true},
			{Name: "day_order", Type: FieldInt, Required: true, Domain: DomainPositive},
			{Name: "notes", Type: FieldText, AllowEmpty: true, Optional: true},
		},
		DecodeRow: func(p *Program, row []string, idx HeaderIndex) error {
			id, err := ParseID(idx.Text(row, "id"))
			if err != nil {
				return err
			}
			order, err := ParseInt(idx.Text(row, "day_order"))
			if err != nil {
				return err
			}
			p.Days = append(p.Days, Day{
				ID:       id,
				DayName:  idx.Text(row, "day_name"),
				DayOrder: order,
				Notes:    idx.Text(row, "notes"),
			})
			return nil
		},
		Len: func(p *Program) int { return len(p.Days) },
		EncodeRow: func(p *Program, i int) []string {
			d := p.Days[i]
			return []string{FormatID(d.ID), d.DayName, fmt.Sprint(d.DayOrder), d.Notes}
		},
		Insert: func(ctx context.Context, repo Repository, p *Program, i int) error {
			return repo.InsertDay(ctx, p.Days[i])
		},
	}
}

func dayWorkoutGroupsSection() SectionDefinition {
	return SectionDefinition{
		Name: SectionDayWorkoutGroups,
		Rank: 4,
		Columns: []ColumnSpec{
			idColumn("id"),
			idColumn("day_id"),
			idColumn("workout_group_id"),
		},
		DecodeRow: func(p *Program, row []string, idx HeaderIndex) error {
			id, err := ParseID(idx.Text(row, "id"))
			if err != nil {
				return err
			}
			dayID, err := ParseID(idx.Text(row, "day_id"))
			if err != nil {
				return err
			}
			groupID, err := ParseID(idx.Text(row, "workout_group_id"))
			if err != nil {
				return err
			}
			p.DayWorkoutGroups = append(p.DayWorkoutGroups, DayWorkoutGroup{
				ID:             id,
				DayID:          dayID,
				WorkoutGroupID: groupID,
			})
			return nil
		},
		Len: func(p *Program) int { return len(p.DayWorkoutGroups) },
		EncodeRow: func(p *Program, i int) []string {
			dg := p.DayWorkoutGroups[i]
			return []string{FormatID(dg.ID), FormatID(dg.DayID), FormatID(dg.WorkoutGroupID)}
		},
		Insert: func(ctx context.Context, repo Repository, p *Program, i int) error {
			return repo.InsertDayWorkoutGroup(ctx, p.DayWorkoutGroups[i])
		},
	}
}

func workoutSetsSection() SectionDefinition {
	return SectionDefinition{
		Name: SectionWorkoutSets,
		Rank: 5,
		Columns: []ColumnSpec{
			idColumn("id"),
			idColumn("day_id"),
			idColumn("exercise_id"),
			{Name: "exercise_order", Type: FieldInt, Required: true, Domain: DomainPositive},
			{Name: "set_order", Type: FieldInt, Required: true, Domain: DomainPositive},
			{Name: "reps", Type: FieldInt, Required: true, AllowEmpty: true, Domain: DomainPositive},
			{Name: "weight", Type: FieldFloat, Required: true, AllowEmpty: true, Domain: DomainNonNegative},
			{Name: "rir", Type: FieldInt, Required: true, AllowEmpty: true, Domain: DomainNonNegative},
			notesColumn(),
		},
		StrictColumns: true,
		DecodeRow: func(p *Program, row []string, idx HeaderIndex) error {
			var (
				s   WorkoutSet
				err error
			)
			if s.ID, err = ParseID(idx.Text(row, "id")); err != nil {
				return err
			}
			if s.DayID, err = ParseID(idx.Text(row, "day_id")); err != nil {
				return err
			}
			if s.ExerciseID, err = ParseID(idx.Text(row, "exercise_id")); err != nil {
				return err
			}
			if s.ExerciseOrder, err = ParseInt(idx.Text(row, "exercise_order")); err != nil {
				return err
			}
			if s.SetOrder, err = ParseInt(idx.Text(row, "set_order")); err != nil {
				return err
			}
			if s.Reps, err = ParseOptionalInt(idx.Text(row, "reps")); err != nil {
				return err
			}
			if s.Weight, err = ParseOptionalFloat(idx.Text(row, "weight")); err != nil {
				return err
			}
			if s.RIR, err = ParseOptionalInt(idx.Text(row, "rir")); err != nil {
				return err
			}
			s.Notes = idx.Text(row, "notes")
			p.WorkoutSets = append(p.WorkoutSets, s)
			return nil
		},
		Len: func(p *Program) int { return len(p.WorkoutSets) },
		EncodeRow: func(p *Program, i int) []string {
			s := p.WorkoutSets[i]
			return []string{
				FormatID(s.ID),
				FormatID(s.DayID),
				FormatID(s.ExerciseID),
				fmt.Sprint(s.ExerciseOrder),
				fmt.Sprint(s.SetOrder),
				FormatOptionalInt(s.Reps),
				FormatOptionalFloat(s.Weight),
				FormatOptionalInt(s.RIR),
				s.Notes,
			}
		},
		Insert: func(ctx context.Context, repo Repository, p *Program, i int) error {
			return repo.InsertWorkoutSet(ctx, p.WorkoutSets[i])
		},
	}
}
