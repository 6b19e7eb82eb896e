package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/liftlog/internal/core"
)

func newSummaryCmd(c *cli) *cobra.Command {
	var (
		days   []int64
		groups bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize days, or aggregate a selection of days",
		Long: `Without --day, print a summary line for every day followed by the
aggregate across all days. With --day, aggregate only the given days.

Examples:
  liftctl summary
  liftctl summary --day 1 --day 3 --groups
  liftctl summary --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := c.service()

			ids := days
			if len(ids) == 0 {
				all, err := svc.AllDayIDs(ctx)
				if err != nil {
					return err
				}
				ids = all
			}

			var summaries []core.DaySummary
			if len(days) == 0 {
				var err error
				if summaries, err = svc.DaySummaries(ctx); err != nil {
					return err
				}
			}
			agg, err := svc.Aggregate(ctx, ids)
			if err != nil {
				return err
			}
			var breakdown []core.GroupExercises
			if groups {
				if breakdown, err = svc.GroupBreakdown(ctx, ids); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summaryOutput{Days: summaries, Aggregate: agg, Groups: breakdown})
			}
			writeDaySummaries(out, summaries)
			writeAggregate(out, agg)
			writeGroups(out, breakdown)
			return nil
		},
	}
	cmd.Flags().Int64SliceVar(&days, "day", nil, "day id to include (repeatable)")
	cmd.Flags().BoolVar(&groups, "groups", false, "list exercises by workout group")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

type summaryOutput struct {
	Days      []core.DaySummary     `json:"days,omitempty"`
	Aggregate core.Aggregate        `json:"aggregate"`
	Groups    []core.GroupExercises `json:"groups,omitempty"`
}

func writeDaySummaries(w io.Writer, days []core.DaySummary) {
	if len(days) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDAY\tGROUPS\tEXERCISES\tSETS\tAVG RIR")
	for _, d := range days {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
			d.DayOrder, d.DayName, strings.Join(d.WorkoutGroups, ", "),
			d.TotalExercises, d.TotalSets, formatRIR(d.AvgRIR))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func writeAggregate(w io.Writer, agg core.Aggregate) {
	fmt.Fprintf(w, "%d days, %d exercises, %d sets, avg RIR %s\n",
		agg.TotalDays, agg.TotalExercises, agg.TotalSets, formatRIR(agg.AvgRIR))
	if len(agg.ExerciseAggregates) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EXERCISE\tGROUP\tSETS\tAVG RIR\tDAYS")
	for _, e := range agg.ExerciseAggregates {
		names := make([]string, 0, len(e.Days))
		for _, d := range e.Days {
			names = append(names, d.DayName)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			e.ExerciseName, e.WorkoutGroupName, e.TotalSets, formatRIR(e.AvgRIR), strings.Join(names, ", "))
	}
	tw.Flush()
}

func writeGroups(w io.Writer, groups []core.GroupExercises) {
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s\n", g.GroupName)
		for _, e := range g.Exercises {
			fmt.Fprintf(w, "  %s (%d sets)\n", e.ExerciseName, e.TotalSets)
		}
	}
}

func formatRIR(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
