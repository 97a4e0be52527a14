package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/astrokit/nightlog/internal/session"
)

// render assembles the full screen for the active file and page.
func (m Model) render() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderTabs())

	cur := m.current()
	switch {
	case cur.Err != nil:
		sections = append(sections, errStyle.Render(fmt.Sprintf("analysis failed: %v", cur.Err)))
	case cur.Result == nil:
		sections = append(sections, errStyle.Render("no result"))
	default:
		switch m.page {
		case PageSummary:
			sections = append(sections, m.renderSummary(cur.Result))
		case PageSegments:
			sections = append(sections, m.renderSegments(cur.Result))
		case PageRMS:
			sections = append(sections, m.renderRMS(cur.Result))
		}
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	header := fmt.Sprintf(
		" nightlog │ %s │ file %d/%d ",
		m.current().Path,
		m.file+1,
		len(m.results),
	)
	return headerStyle.Width(m.width).Render(header)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, int(pageCount))
	for p := Page(0); p < pageCount; p++ {
		name := p.String()
		if p == m.page {
			tabs = append(tabs, subtitleStyle.Render("["+name+"]"))
		} else {
			tabs = append(tabs, dimStyle.Render(" "+name+" "))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, tabs...)
}

func (m Model) renderFooter() string {
	return footerStyle.Render(" q quit │ tab page │ n/p file │ j/k scroll ")
}

// renderSummary shows totals and the productive/idle split.
func (m Model) renderSummary(res *session.Result) string {
	var rows []string

	rows = append(rows, sectionHeaderStyle.Render("Time by Activity"))

	labels := make([]string, 0, len(res.TotalsSeconds))
	for label := range res.TotalsSeconds {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		rows = append(rows, RenderKeyValue(label, formatSeconds(res.TotalsSeconds[label])))
	}
	if len(labels) == 0 {
		rows = append(rows, dimStyle.Render("  no activity detected"))
	}

	rows = append(rows, sectionHeaderStyle.Render("Efficiency"))
	rows = append(rows, RenderKeyValue("productive", formatSeconds(res.ProductiveSeconds)))
	rows = append(rows, RenderKeyValue("idle", formatSeconds(res.IdleSeconds)))

	total := res.ProductiveSeconds + res.IdleSeconds
	if total > 0 {
		barWidth := m.width - 30
		rows = append(rows, RenderProgressBar(res.ProductiveSeconds/total, barWidth))
	}

	rows = append(rows, sectionHeaderStyle.Render("Parsing"))
	rows = append(rows, RenderKeyValue("lines total", fmt.Sprintf("%d", res.LinesTotal)))
	rows = append(rows, RenderKeyValue("lines matched", fmt.Sprintf("%d", res.LinesMatched)))
	rows = append(rows, RenderKeyValue("lines skipped", fmt.Sprintf("%d", res.LinesSkippedTS)))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderSegments shows the timeline table with scroll.
func (m Model) renderSegments(res *session.Result) string {
	rows := []string{
		sectionHeaderStyle.Render(fmt.Sprintf("Timeline (%d segments)", len(res.Segments))),
		tableHeaderStyle.Render(fmt.Sprintf("%-26s %-20s %10s  %s", "START", "LABEL", "DURATION", "META")),
	}

	visible := m.visibleRows()
	for i := m.scroll; i < len(res.Segments) && i < m.scroll+visible; i++ {
		seg := res.Segments[i]
		style := tableRowEvenStyle
		if i%2 == 1 {
			style = tableRowOddStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%-26s %-20s %9.1fs  %s",
			seg.Start, seg.Label, seg.DurationSeconds, renderMeta(seg.Meta))))
	}
	if len(res.Segments) == 0 {
		rows = append(rows, dimStyle.Render("  no segments"))
	}
	rows = append(rows, m.renderScrollHint(len(res.Segments)))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderRMS shows bursts, correlation, and settings changes.
func (m Model) renderRMS(res *session.Result) string {
	rms := res.RMSAnalysis

	rows := []string{
		sectionHeaderStyle.Render("Guiding RMS"),
		RenderKeyValue("events", fmt.Sprintf("%d", rms.TotalEventCount)),
		RenderKeyValue("bursts", fmt.Sprintf("%d", rms.TotalBurstCount)),
		RenderKeyValue("max peak RMS", fmt.Sprintf("%.2f", rms.MaxPeakRMS)),
		RenderKeyValue("worst hour (events)", orDash(rms.WorstHourByEvents)),
		RenderKeyValue("near dither", fmt.Sprintf("%.1f%%", rms.Correlation.NearDitherPct)),
		RenderKeyValue("near autofocus", fmt.Sprintf("%.1f%%", rms.Correlation.NearAutofocusPct)),
	}

	if len(rms.Bursts) > 0 {
		rows = append(rows, sectionHeaderStyle.Render("Bursts"))
		rows = append(rows, tableHeaderStyle.Render(
			fmt.Sprintf("%-26s %10s %7s %7s  %s", "START", "DURATION", "EVENTS", "PEAK", "TAGS")))
		visible := m.visibleRows()
		for i := m.scroll; i < len(rms.Bursts) && i < m.scroll+visible; i++ {
			b := rms.Bursts[i]
			style := tableRowEvenStyle
			if i%2 == 1 {
				style = tableRowOddStyle
			}
			rows = append(rows, style.Render(fmt.Sprintf("%-26s %9.1fs %7d %7.2f  %s",
				b.StartTS, b.DurationSec, b.EventCount, b.PeakRMS, strings.Join(b.Tags, " "))))
		}
	}

	if len(rms.SettingsChanges) > 0 {
		rows = append(rows, sectionHeaderStyle.Render("Settings Changes"))
		for _, sc := range rms.SettingsChanges {
			rows = append(rows, tableRowEvenStyle.Render(fmt.Sprintf("%-26s %-20s %-10g %s",
				sc.TS, sc.SettingType, sc.Value, sc.Note)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderScrollHint(total int) string {
	if total <= m.visibleRows() {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf("  showing %d-%d of %d",
		m.scroll+1, min(m.scroll+m.visibleRows(), total), total))
}

func renderMeta(meta map[string]string) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+meta[k])
	}
	return strings.Join(parts, " ")
}

func formatSeconds(s float64) string {
	if s >= 3600 {
		return fmt.Sprintf("%.1fh (%.0fs)", s/3600, s)
	}
	if s >= 60 {
		return fmt.Sprintf("%.1fm (%.0fs)", s/60, s)
	}
	return fmt.Sprintf("%.1fs", s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
