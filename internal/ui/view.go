package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/offerwatch/internal/offerapi"
	"github.com/five82/offerwatch/internal/push"
	"github.com/five82/offerwatch/internal/unread"
)

// View renders header, filter bar, body and footer.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	body := m.renderBody()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderFilterBar(),
		lipgloss.NewStyle().Width(m.width).Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	styles := m.styles.WithBackground(m.theme.Surface)
	sess := m.view.Session

	parts := []string{styles.Logo.Render("offerwatch")}
	if !sess.Authenticated {
		parts = append(parts, styles.WarningText.Render("signed out"))
	} else {
		parts = append(parts,
			styles.Text.Render(sess.Identity.DisplayName)+styles.MutedText.Render(" · "+sess.Identity.Role.String()))
		if !sess.IsAdmin() {
			badge := unread.BadgeLabel(m.view.Unread)
			parts = append(parts, ternaryStyle(m.view.Unread > 0, styles.WarningText, styles.MutedText).Render(badge))
		}
		parts = append(parts, m.renderPush(styles))
	}

	snap := m.view.Snapshot
	switch {
	case snap.IsOffline():
		parts = append(parts, styles.DangerText.Render("OFFLINE"))
	case !snap.LastUpdated.IsZero():
		parts = append(parts, styles.MutedText.Render("updated "+since(snap.LastUpdated)))
	}
	if m.logPath != "" && m.width >= 110 {
		parts = append(parts, styles.FaintText.Render("log "+truncateMiddle(m.logPath, 40)))
	}

	sep := styles.Text.Render("  ")
	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func (m Model) renderPush(styles Styles) string {
	switch m.view.Push {
	case push.StateConnected:
		return styles.SuccessText.Render("● live")
	case push.StateConnecting:
		return styles.WarningText.Render("◌ connecting")
	default:
		return styles.MutedText.Render("○ polling")
	}
}

func (m Model) renderFilterBar() string {
	styles := m.styles.WithBackground(m.theme.SurfaceAlt)
	f := m.view.Snapshot.Filter
	item := func(label, value string, active bool) string {
		valueStyle := styles.MutedText
		if active {
			valueStyle = styles.AccentText
		}
		return styles.FaintText.Render(label+" ") + valueStyle.Render(value)
	}
	parts := []string{
		item("status", statusLabel(f.Status), f.Status != ""),
		item("read", readLabel(f.Read), f.Read != nil),
		item("keyword", keywordLabel(f.Keyword), strings.TrimSpace(f.Keyword) != ""),
		item("offers", fmt.Sprintf("%d", len(m.view.Snapshot.Offers)), false),
	}
	return styles.SurfaceAlt.Width(m.width).Padding(0, 1).Render(strings.Join(parts, styles.Text.Render("   ")))
}

func (m Model) renderBody() string {
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	switch m.mode {
	case modeLogs:
		return m.styles.AccentText.Render("Client log") + "\n" + m.logs.View()
	case modeDetail:
		return m.renderDetail()
	default:
		return m.renderList()
	}
}

func (m Model) renderList() string {
	if !m.view.Session.Authenticated {
		return m.styles.MutedText.Render(
			"Not signed in. Store a session cookie with `offerwatch login --cookie VALUE`, then press S.")
	}
	snap := m.view.Snapshot
	if !snap.Loaded {
		if snap.LastError != nil {
			return m.styles.DangerText.Render("Could not load offers: ") + m.styles.MutedText.Render(snap.LastError.Error())
		}
		return m.spinner.View() + " " + m.styles.MutedText.Render("Loading offers…")
	}
	if len(snap.Offers) == 0 {
		return m.styles.MutedText.Render("No offers match the filter.")
	}

	const (
		idW      = 6
		statusW  = 12
		readW    = 5
		createdW = 10
		gaps     = 6
	)
	rest := max(m.width-idW-statusW-readW-createdW-gaps*2, 20)
	companyW := rest * 45 / 100
	positionW := rest - companyW

	header := strings.Join([]string{
		fit("ID", idW), fit("COMPANY", companyW), fit("POSITION", positionW),
		fit("STATUS", statusW), fit("READ", readW), fit("CREATED", createdW),
	}, "  ")
	lines := []string{m.styles.FaintText.Render(" " + header)}

	rows := max(m.bodyHeight()-1, 1)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(snap.Offers))
	admin := m.view.Session.IsAdmin()

	for i := start; i < end; i++ {
		o := snap.Offers[i]
		read := ternary(readFlag(o, admin), "✓", "●")
		created := ""
		if t := o.ParsedCreatedAt(); !t.IsZero() {
			created = t.Format("2006-01-02")
		}
		status := m.styles.StatusStyle(string(o.Status)).Render(truncate(o.Status.Label(), statusW-2))
		statusCell := status + strings.Repeat(" ", max(statusW-lipgloss.Width(status), 0))

		cells := []string{
			fit(fmt.Sprintf("%d", o.ID), idW),
			fit(o.CompanyName, companyW),
			fit(o.PositionTitle, positionW),
		}
		row := " " + strings.Join(cells, "  ") + "  " + statusCell + "  " + fit(read, readW) + "  " + fit(created, createdW)
		if i == m.cursor {
			row = m.styles.Selected.Width(m.width).Render(row)
		} else if !readFlag(o, admin) {
			row = m.styles.Text.Bold(true).Render(row)
		} else {
			row = m.styles.Text.Render(row)
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetail() string {
	o, ok := m.detailOffer()
	if !ok {
		return m.styles.MutedText.Render("Offer is no longer in the list. Press esc.")
	}
	admin := m.view.Session.IsAdmin()
	label := func(s string) string { return m.styles.FaintText.Render(fit(s, 12)) }
	value := func(s string) string { return m.styles.Text.Render(s) }
	optional := func(p *string, format func(string) string) string {
		if p == nil || strings.TrimSpace(*p) == "" {
			return m.styles.MutedText.Render("-")
		}
		return value(format(*p))
	}
	identity := func(s string) string { return s }

	readText := ternary(o.AdminRead, "검토 완료", "검토 전")
	if admin {
		readText = ternary(o.Read, "제출자 확인", "제출자 미확인")
	}

	lines := []string{
		m.styles.AccentText.Bold(true).Render(fmt.Sprintf("#%d  %s", o.ID, o.CompanyName)),
		"",
		label("포지션") + value(o.PositionTitle),
		label("상태") + m.styles.StatusStyle(string(o.Status)).Render(o.Status.Label()),
		label("확인") + value(readText),
		label("고용형태") + value(o.EmploymentType.Label()),
		label("근무형태") + value(o.WorkType.Label()),
		label("최소 연봉") + value(o.SalaryLabel()),
		label("이메일") + optional(o.ContactEmail, identity),
		label("전화") + optional(o.ContactPhone, offerapi.FormatPhone),
		label("제출자") + value(o.RecruiterEmail),
	}
	if t := o.ParsedCreatedAt(); !t.IsZero() {
		lines = append(lines, label("등록일")+value(t.Format("2006-01-02 15:04")))
	}
	if msg := strings.TrimSpace(o.Message); msg != "" {
		lines = append(lines, "", m.styles.Text.Width(max(m.width-4, 20)).Render(msg))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	styles := m.styles.WithBackground(m.theme.Surface)
	if m.searching {
		return styles.Footer.Width(m.width).Render(m.search.View())
	}
	if m.view.HasNotice {
		return styles.Footer.Width(m.width).Render(m.styles.Notice.Render(m.view.Notice.Message))
	}
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func since(t time.Time) string {
	d := time.Since(t)
	if d < time.Second {
		return "now"
	}
	return humanizeDuration(d) + " ago"
}

func ternaryStyle(cond bool, a, b lipgloss.Style) lipgloss.Style {
	if cond {
		return a
	}
	return b
}
