package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/animeshelf/internal/model"
	"github.com/existflow/animeshelf/internal/suggest"
)

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var main string
	switch m.mode {
	case ModeHelp:
		main = m.renderHelp()
	case ModeLogin:
		main = m.place(m.renderLogin())
	case ModeDetail:
		main = m.place(m.renderDetail())
	default:
		main = lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.renderSearch(),
			m.renderShelves(),
		)
	}

	main = clipLines(main, m.height-statusHeight)
	main = lipgloss.NewStyle().Height(m.height - statusHeight).Render(main)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m *Model) place(modal string) string {
	return lipgloss.Place(
		m.width, m.height-statusHeight,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m *Model) renderHeader() string {
	title := HeaderStyle.Render("AnimeShelf")

	var badge string
	if s := m.session.Current(); s.LoggedIn {
		left := s.ExpiresAt().Sub(m.sched.Now()).Truncate(time.Hour)
		badge = BadgeStyle.Render("● user "+s.UserID) + HelpStyle.Render(" (session "+humanDuration(left)+" left)")
	} else {
		badge = HelpStyle.Render("○ guest · L to log in")
	}

	gap := max(1, m.width-lipgloss.Width(title)-lipgloss.Width(badge)-padX)
	return title + strings.Repeat(" ", gap) + badge
}

func (m *Model) renderSearch() string {
	style := SearchStyle
	if m.focus == nil {
		style = SearchFocusedStyle
	}

	box := m.search.View()
	if m.fetcher.Snapshot().Phase == suggest.Fetching {
		box += HelpStyle.Render("  …")
	}
	box = style.Width(max(10, m.width-2*padX-2)).Render(box)
	box = lipgloss.NewStyle().PaddingLeft(padX).Render(box)

	sugg := m.fetcher.Snapshot().Suggestions
	if len(sugg) == 0 {
		return box
	}

	lines := make([]string, 0, len(sugg))
	for i, s := range sugg {
		st := SuggestionStyle
		if i == m.suggCursor {
			st = SuggestionSelectedStyle
		}
		line := truncate(s.Title, m.width-12) + HelpStyle.Render("  #"+strconv.Itoa(s.ID))
		lines = append(lines, st.Render(line))
	}
	return box + "\n" + strings.Join(lines, "\n")
}

func (m *Model) renderShelves() string {
	rows := m.visibleShelves()
	fit := m.rowsFit()
	end := min(len(rows), m.shelfTop+fit)

	parts := make([]string, 0, fit)
	for _, sh := range rows[min(m.shelfTop, end):end] {
		parts = append(parts, m.renderShelf(sh))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderShelf(sh *shelf) string {
	focused := m.focus == sh
	pad := strings.Repeat(" ", padX)

	titleStyle := ShelfTitleStyle
	marker := "  "
	if focused {
		titleStyle = ShelfTitleFocusedStyle
		marker = "❯ "
	}
	header := marker + titleStyle.Render(m.shelfTitle(sh))
	if sh.limited {
		header += HelpStyle.Render(fmt.Sprintf("  limit %d", sh.limit))
	}
	header += "  " + m.renderPager(sh)

	body := m.renderCards(sh, focused)
	body = lipgloss.NewStyle().Height(cardHeight).Render(body)
	body = pad + strings.ReplaceAll(body, "\n", "\n"+pad)

	return header + "\n" + body + "\n"
}

func (m *Model) shelfTitle(sh *shelf) string {
	switch sh.kind {
	case shelfSearch:
		return fmt.Sprintf("%s for %q", sh.title, m.query)
	case shelfGenre:
		if m.genre == "" {
			return sh.title
		}
		return sh.title + ": " + m.genre
	}
	return sh.title
}

func (m *Model) renderPager(sh *shelf) string {
	if sh.engine == nil {
		return ""
	}
	st := sh.engine.State()
	if !st.IsOverflowing {
		return ""
	}

	back := ArrowDisabledStyle.Render("‹")
	if st.CanStepBack {
		back = ArrowStyle.Render("‹")
	}
	fwd := ArrowDisabledStyle.Render("›")
	if st.CanStepForward {
		fwd = ArrowStyle.Render("›")
	}
	cur, total := sh.page()
	return fmt.Sprintf("%s %s %s", back, HelpStyle.Render(fmt.Sprintf("%d/%d", cur, total)), fwd)
}

func (m *Model) renderCards(sh *shelf, focused bool) string {
	switch {
	case sh.err != nil:
		return ErrorStyle.Render("Failed to load: " + errorText(sh.err))
	case sh.loading && len(sh.items) == 0:
		return HelpStyle.Render("Loading...")
	case sh.kind == shelfGenre && m.genre == "":
		return HelpStyle.Render("Press g to pick a genre.")
	case len(sh.items) == 0:
		return HelpStyle.Render("No animes found.")
	}

	first, last := sh.visibleRange()
	cards := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		cards = append(cards, renderCard(sh.items[i], focused && i == sh.cursor))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	skip := min(sh.surface.left, sh.surface.maxLeft()) - first*sh.surface.itemWidth
	return cutLines(row, skip, sh.surface.width)
}

func renderCard(a model.Anime, selected bool) string {
	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}
	inner := cardWidth - 4
	return style.Render(truncate(a.Title, inner) + "\n" + HelpStyle.Render("#"+strconv.Itoa(a.ID)))
}

func (m *Model) renderStatusBar() string {
	help := "tab:row  ←/→:page  h/l:card  enter:details  /:search  +/-:limit  g:genre  L:account  ?:help  q:quit"
	if m.focus == nil && m.mode == ModeBrowse {
		help = "type to search  ↑/↓:suggestions  enter:search  esc:close  tab:rows"
	}
	if m.message != "" {
		help = m.message
	}
	return StatusBarStyle.Width(m.width).Render(truncate(help, m.width-2))
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Log in") + "\n\n")
	b.WriteString(m.username.View() + "\n")
	b.WriteString(m.password.View() + "\n\n")
	b.WriteString(HelpStyle.Render("enter: next/submit · tab: switch field · esc: cancel"))
	return ModalStyle.Width(min(60, m.width-4)).Render(b.String())
}

func (m *Model) renderDetail() string {
	d := m.detail
	if d == nil {
		return ""
	}
	width := min(90, m.width-4)

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(d.Title))
	if d.TitleJapanese != "" {
		b.WriteString(HelpStyle.Render("  " + d.TitleJapanese))
	}
	b.WriteString("\n\n")

	facts := []string{}
	if d.Score > 0 {
		facts = append(facts, fmt.Sprintf("★ %.2f", d.Score))
	}
	if d.Rank > 0 {
		facts = append(facts, fmt.Sprintf("rank #%d", d.Rank))
	}
	if aired := d.Aired(); aired != "" {
		facts = append(facts, aired)
	}
	if d.Episodes > 0 {
		facts = append(facts, fmt.Sprintf("%d episodes", d.Episodes))
	}
	if d.Status != "" {
		facts = append(facts, d.Status)
	}
	b.WriteString(strings.Join(facts, " · ") + "\n")
	if len(d.Genres) > 0 {
		b.WriteString(HelpStyle.Render("Genres: ") + strings.Join(d.Genres, ", ") + "\n")
	}
	if len(d.Studios) > 0 {
		b.WriteString(HelpStyle.Render("Studios: ") + strings.Join(d.Studios, ", ") + "\n")
	}
	if d.Synopsis != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Width(width-6).Render(d.Synopsis) + "\n")
	}
	if len(d.Streaming) > 0 {
		names := make([]string, 0, len(d.Streaming))
		for _, s := range d.Streaming {
			names = append(names, s.Name)
		}
		b.WriteString("\n" + HelpStyle.Render("Streaming: ") + strings.Join(names, ", ") + "\n")
	}
	if len(d.Characters) > 0 {
		names := make([]string, 0, len(d.Characters))
		for _, c := range d.Characters {
			names = append(names, c.Name)
		}
		b.WriteString(HelpStyle.Render("Characters: ") + truncate(strings.Join(names, "; "), width-18) + "\n")
	}

	b.WriteString("\n")
	if m.session.LoggedIn() {
		b.WriteString(HelpStyle.Render("1-9, 0=10: rate · esc: close"))
	} else {
		b.WriteString(HelpStyle.Render("L on the home screen to log in and rate · esc: close"))
	}
	return ModalStyle.Width(width).Render(b.String())
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Keys") + "\n\n")
	for _, k := range keys.helpBindings() {
		h := k.Help()
		b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, HelpStyle.Render(h.Desc)))
	}
	b.WriteString("\n" + HelpStyle.Render("Press any key to return"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// humanDuration renders a coarse "6d 23h" style duration
func humanDuration(d time.Duration) string {
	if d <= 0 {
		return "0h"
	}
	days := int(d / (24 * time.Hour))
	hours := int((d % (24 * time.Hour)) / time.Hour)
	if days == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd %dh", days, hours)
}
