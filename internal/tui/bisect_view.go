package tui

import (
	"fmt"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/vbisect/internal/core/bisect"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/core/version"
)

// maxHistoryRows bounds the verdict list in the handler view.
const maxHistoryRows = 8

// sessionView is a copy of the session state taken on the update loop
// while no verdict is in flight.
type sessionView struct {
	Good      version.Version
	Bad       version.Version
	Pivot     version.Version
	Size      int
	Remaining int
	History   []bisect.Verdict
	Done      bool
	Result    bisect.Result
}

func viewOf(b *bisect.Bisector) sessionView {
	if b == nil {
		return sessionView{}
	}
	good, bad := b.Range()
	return sessionView{
		Good:      good,
		Bad:       bad,
		Pivot:     b.Current(),
		Size:      b.Len(),
		Remaining: b.StepsRemaining(),
		History:   b.History(),
		Done:      b.Done(),
		Result:    b.Result(),
	}
}

// renderBisect renders the handler view for a running session.
func renderBisect(s sessionView, busy bool) string {
	header := styles.CommandHeaderStyle.Render(styles.IconBisect + " Bisecting")

	rangeLine := fmt.Sprintf("%s %s  ..  %s %s   %d versions",
		styles.IconGood, styles.GoodStyle.Render(s.Good.Version),
		styles.IconBad, styles.BadStyle.Render(s.Bad.Version),
		s.Size,
	)

	pivot := fmt.Sprintf("%s testing %s", styles.IconPivot, styles.PivotStyle.Render(s.Pivot.Version))
	if busy {
		pivot += styles.ItemMetaStyle.Render("  activating...")
	}

	remaining := styles.ItemMetaStyle.Render(fmt.Sprintf("about %d steps left", s.Remaining))

	lines := []string{header, "", rangeLine, "", pivot, remaining}
	if h := renderHistory(s.History); h != "" {
		lines = append(lines, "", h)
	}
	lines = append(lines, "", styles.FormHelpStyle.Render("Is "+s.Pivot.Version+" good or bad?"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderHistory(history []bisect.Verdict) string {
	if len(history) == 0 {
		return ""
	}
	start := max(len(history)-maxHistoryRows, 0)

	var sb strings.Builder
	sb.WriteString(styles.DividerStyle.Render("verdicts"))
	for _, v := range history[start:] {
		sb.WriteString("\n")
		if v.Good {
			sb.WriteString(styles.IconGood + " " + styles.GoodStyle.Render("good") + "  " + v.Version.Version)
		} else {
			sb.WriteString(styles.IconBad + " " + styles.BadStyle.Render("bad ") + "  " + v.Version.Version)
		}
	}
	return sb.String()
}

// renderResult renders a finished session with its compare link.
func renderResult(res bisect.Result, compareURL string) string {
	if res.Inconclusive {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.CommandHeaderStyle.Render(styles.IconWarning+" Inconclusive"),
			"",
			fmt.Sprintf("%s is already bad; the regression is older than the selected range.",
				styles.BadStyle.Render(res.Bad.Version)),
		)
	}

	lines := []string{
		styles.CommandHeaderStyle.Render(styles.IconBisect + " Regression found"),
		"",
		fmt.Sprintf("%s last good   %s", styles.IconGood, styles.GoodStyle.Render(res.Good.Version)),
		fmt.Sprintf("%s first bad   %s", styles.IconBad, styles.BadStyle.Render(res.Bad.Version)),
	}
	if compareURL != "" {
		lines = append(lines, "", styles.ItemMetaStyle.Render(compareURL))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
