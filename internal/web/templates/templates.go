// Package templates renders the HTML pages of the web server as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/liftlog/internal/core"
)

// htmlWriter writes markup and escaped text, keeping the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

const styles = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;margin:.5rem 0 1.5rem}
th,td{border:1px solid #d1d5db;padding:.25rem .6rem;text-align:left}
th{background:#f3f4f6}
.muted{color:#6b7280}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem;border-radius:.25rem}
nav a{margin-right:.75rem}`

// layout wraps body in the page shell.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style></head><body>`)
		h.raw(`<nav><a href="/summary">Summary</a><a href="/api/export">Export</a><a href="/api/export/pretty">Printable</a></nav>`)
		h.render(ctx, body)
		h.raw(`</body></html>`)
		return h.err
	})
}

// ErrorPage renders a user-facing error.
func ErrorPage(message, action, code string) templ.Component {
	return layout("Error", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><p><strong>`)
		h.text(message)
		h.raw(`</strong></p>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<p class="muted">Code: `)
			h.text(code)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
		return h.err
	}))
}

// SummaryPageParams holds the data of the summary page.
type SummaryPageParams struct {
	Days      []core.DaySummary
	Aggregate core.Aggregate
	Groups    []core.GroupExercises
}

// SummaryPage renders per-day summaries and the aggregate of the selected days.
func SummaryPage(p SummaryPageParams) templ.Component {
	return layout("Program summary", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Program summary</h1>`)

		if len(p.Days) == 0 {
			h.raw(`<p class="muted">No days yet. Import a program to get started.</p>`)
			return h.err
		}

		h.raw(`<h2>Days</h2><table><thead><tr><th>#</th><th>Day</th><th>Workout groups</th><th>Exercises</th><th>Sets</th><th>Avg RIR</th></tr></thead><tbody>`)
		for _, d := range p.Days {
			h.raw(`<tr><td>`)
			h.text(strconv.Itoa(d.DayOrder))
			h.raw(`</td><td><a href="`)
			h.text(dayLink(d.DayID))
			h.raw(`">`)
			h.text(d.DayName)
			h.raw(`</a></td><td>`)
			h.text(strings.Join(d.WorkoutGroups, ", "))
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(d.TotalExercises))
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(d.TotalSets))
			h.raw(`</td><td>`)
			h.text(FormatRIR(d.AvgRIR))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)

		h.raw(`<h2>Across `)
		h.text(selectionLabel(p.Aggregate.TotalDays, len(p.Days)))
		h.raw(`</h2><p>`)
		h.text(fmt.Sprintf("%d sets of %d exercises, average RIR %s",
			p.Aggregate.TotalSets, p.Aggregate.TotalExercises, FormatRIR(p.Aggregate.AvgRIR)))
		h.raw(`</p>`)

		for _, g := range p.Groups {
			h.raw(`<h3>`)
			h.text(g.GroupName)
			h.raw(`</h3><table><thead><tr><th>Exercise</th><th>Sets</th><th>Avg RIR</th><th>Days</th></tr></thead><tbody>`)
			for _, e := range g.Exercises {
				h.raw(`<tr><td>`)
				h.text(e.ExerciseName)
				h.raw(`</td><td>`)
				h.text(strconv.Itoa(e.TotalSets))
				h.raw(`</td><td>`)
				h.text(FormatRIR(e.AvgRIR))
				h.raw(`</td><td>`)
				names := make([]string, 0, len(e.Days))
				for _, d := range e.Days {
					names = append(names, d.DayName)
				}
				h.text(strings.Join(names, ", "))
				h.raw(`</td></tr>`)
			}
			h.raw(`</tbody></table>`)
		}
		return h.err
	}))
}

// FormatRIR renders an optional mean with one decimal, or a dash.
func FormatRIR(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func dayLink(id int64) string {
	return "/summary?" + url.Values{"day": {strconv.FormatInt(id, 10)}}.Encode()
}

func selectionLabel(selected, total int) string {
	if selected == total {
		return "all days"
	}
	if selected == 1 {
		return "1 day"
	}
	return strconv.Itoa(selected) + " days"
}
