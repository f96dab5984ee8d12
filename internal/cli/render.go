package cli

import (
	"fmt"
	"time"

	"github.com/idilsaglam/sqltodo/internal/model"
	"github.com/idilsaglam/sqltodo/internal/ui"
)

func header(done, pending int) string {
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(ui.Current().Title, "Todos"),
		ui.C(ui.Current().Success, ui.Current().SymDone), done,
		ui.C(ui.Current().Pending, ui.Current().SymUnchecked), pending,
		ui.C(ui.Current().Accent, "Total"), done+pending,
	)
}

func localTime(t time.Time) string { return t.Local().Format("2006-01-02 15:04") }

func flatLines(items []model.Todo) []string {
	if len(items) == 0 {
		return []string{ui.C(ui.Current().Muted, "no todos")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		id := fmt.Sprintf("%3s", fmt.Sprintf("#%d", it.ID))
		box := ui.Current().BoxUnchecked
		color := ui.Current().Muted
		if it.Done {
			box, color = ui.Current().BoxChecked, ui.Current().Success
		}
		line := fmt.Sprintf("%s %s %s", ui.Faint(id), ui.C(color, box), ui.Truncate(it.Text, 80))
		if it.FinishedAt != nil {
			line += ui.Faint(" · " + localTime(*it.FinishedAt))
		}
		out = append(out, line)
	}
	return out
}

func groupLines(items []model.Todo) []string {
	var pend, done []model.Todo
	for _, it := range items {
		if it.Done {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, ui.C(ui.Current().Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
