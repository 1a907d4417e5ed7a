package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/animeshelf/internal/catalog"
	"github.com/existflow/animeshelf/internal/event"
	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/model"
	"github.com/existflow/animeshelf/internal/suggest"
)

// runMsg carries a scheduler callback onto the update loop
type runMsg func()

type shelfLoadedMsg struct {
	kind  shelfKind
	seq   int
	items []model.Anime
	err   error
}

type genresLoadedMsg struct {
	genres []model.Genre
	err    error
}

type loginMsg struct {
	result *model.LoginResult
	err    error
}

type detailMsg struct {
	details *model.AnimeDetails
	err     error
}

type ratedMsg struct {
	title  string
	rating int
	err    error
}

// Init loads the genre list and every visible row
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadGenres()}
	for _, sh := range m.visibleShelves() {
		cmds = append(cmds, m.load(sh))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg()

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		m.later(m.handleKey(msg))

	case shelfLoadedMsg:
		m.shelfLoaded(msg)

	case genresLoadedMsg:
		if msg.err != nil {
			m.log.Warn("Failed to load genres", logger.F("error", msg.err))
			break
		}
		m.genres = msg.genres

	case loginMsg:
		m.loggedIn(msg)

	case detailMsg:
		if msg.err != nil {
			m.message = "Failed to load details: " + errorText(msg.err)
			break
		}
		m.detail = msg.details
		m.mode = ModeDetail

	case ratedMsg:
		if msg.err != nil {
			m.message = "Rating failed: " + errorText(msg.err)
			break
		}
		m.message = fmt.Sprintf("Rated %s %d/10", msg.title, msg.rating)
		if sh := m.shelf(shelfRecommended); m.visible(sh) {
			m.later(m.load(sh))
		}
	}

	return m, m.flush()
}

// later queues a command to return from the current Update
func (m *Model) later(cmd tea.Cmd) {
	if cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

func (m *Model) flush() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = max(10, width-2*padX-8)
	for _, sh := range m.shelves {
		sh.surface.width = m.viewportWidth()
	}
	m.window.resize.Emit(event.Size{Width: width, Height: height})
	m.scrollToFocus()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.ForceQuit) {
		return tea.Quit
	}

	switch m.mode {
	case ModeHelp:
		m.mode = ModeBrowse
		return nil
	case ModeLogin:
		return m.handleLoginKeys(msg)
	case ModeDetail:
		return m.handleDetailKeys(msg)
	}

	switch {
	case key.Matches(msg, keys.Tab):
		m.focusNext(1)
		return nil
	case key.Matches(msg, keys.ShiftTab):
		m.focusNext(-1)
		return nil
	}

	if m.focus == nil {
		return m.handleSearchKeys(msg)
	}
	return m.handleShelfKeys(msg)
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	sugg := m.fetcher.Snapshot().Suggestions

	switch {
	case key.Matches(msg, keys.Escape):
		snap := m.fetcher.Snapshot()
		if snap.Phase != suggest.Idle || len(snap.Suggestions) > 0 {
			m.fetcher.Dismiss()
			return nil
		}
		m.focusNext(1)
		return nil

	case msg.Type == tea.KeyUp:
		if m.suggCursor >= 0 {
			m.suggCursor--
		}
		return nil

	case msg.Type == tea.KeyDown:
		if len(sugg) == 0 {
			m.focusNext(1)
			return nil
		}
		m.suggCursor = min(m.suggCursor+1, len(sugg)-1)
		return nil

	case key.Matches(msg, keys.Enter):
		if m.suggCursor >= 0 && m.suggCursor < len(sugg) {
			m.fetcher.Select(sugg[m.suggCursor])
		} else {
			m.fetcher.Submit()
		}
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		m.fetcher.Input(v)
	}
	return cmd
}

func (m *Model) handleShelfKeys(msg tea.KeyMsg) tea.Cmd {
	sh := m.focus

	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit

	case key.Matches(msg, keys.PrevPage), key.Matches(msg, keys.NextPage):
		if sh.engine != nil && sh.engine.HandleKey(msg.String(), true) {
			sh.cursor = sh.firstFullAt(sh.surface.target)
		}

	case key.Matches(msg, keys.PrevItem):
		sh.moveCursor(-1)

	case key.Matches(msg, keys.NextItem):
		sh.moveCursor(1)

	case key.Matches(msg, keys.Up):
		m.focusNext(-1)

	case key.Matches(msg, keys.Down):
		rows := m.visibleShelves()
		if len(rows) > 0 && rows[len(rows)-1] != sh {
			m.focusNext(1)
		}

	case key.Matches(msg, keys.Search):
		m.setFocus(nil)
		return textinput.Blink

	case key.Matches(msg, keys.Enter):
		if a, ok := sh.current(); ok {
			m.message = "Loading " + a.Title + "..."
			return m.loadDetail(a.ID)
		}

	case key.Matches(msg, keys.More):
		return m.stepLimit(sh, 1)

	case key.Matches(msg, keys.Less):
		return m.stepLimit(sh, -1)

	case key.Matches(msg, keys.NextGenre):
		return m.cycleGenre(1)

	case key.Matches(msg, keys.PrevGenre):
		return m.cycleGenre(-1)

	case key.Matches(msg, keys.Account):
		return m.toggleAccount()

	case key.Matches(msg, keys.Reload):
		return m.load(sh)

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}
	return nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Escape):
		m.closeLogin()
		return nil

	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.ShiftTab), msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		m.focusLoginField(1 - m.loginField)
		return textinput.Blink

	case key.Matches(msg, keys.Enter):
		if m.loginField == 0 {
			m.focusLoginField(1)
			return textinput.Blink
		}
		creds := model.Credentials{
			Username: strings.TrimSpace(m.username.Value()),
			Password: m.password.Value(),
		}
		if creds.Username == "" || creds.Password == "" {
			m.message = "Username and password required"
			return nil
		}
		m.message = "Logging in..."
		return m.login(creds)
	}

	var cmd tea.Cmd
	if m.loginField == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) tea.Cmd {
	s := msg.String()
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		rating := int(s[0] - '0')
		if rating == 0 {
			rating = model.MaxRating
		}
		if !m.session.LoggedIn() {
			m.message = "Log in (L) to rate"
			return nil
		}
		return m.rate(m.detail, rating)
	}

	if key.Matches(msg, keys.Escape, keys.Quit, keys.Enter) {
		m.mode = ModeBrowse
		m.detail = nil
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}

	switch msg.Button {
	case tea.MouseButtonLeft:
		m.document.pointer.Emit(event.Pointer{X: msg.X, Y: msg.Y})
		if m.mode != ModeBrowse {
			return
		}
		m.clickAt(msg.X, msg.Y)

	case tea.MouseButtonWheelUp, tea.MouseButtonWheelLeft:
		m.wheel(msg.Y, -1)

	case tea.MouseButtonWheelDown, tea.MouseButtonWheelRight:
		m.wheel(msg.Y, 1)
	}
}

func (m *Model) clickAt(x, y int) {
	if m.inSearchBox(event.Pointer{X: x, Y: y}) {
		if row := y - headerHeight - searchHeight; row >= 0 {
			if sugg := m.fetcher.Snapshot().Suggestions; row < len(sugg) {
				m.fetcher.Select(sugg[row])
				return
			}
		}
		m.setFocus(nil)
		return
	}

	sh := m.rowAt(y)
	if sh == nil {
		return
	}
	if m.focus != sh {
		m.setFocus(sh)
	}
	if x >= padX && len(sh.items) > 0 {
		idx := (sh.surface.left + x - padX) / sh.surface.itemWidth
		if idx < len(sh.items) {
			sh.cursor = idx
		}
	}
}

// wheel scrolls the row under the pointer by one card
func (m *Model) wheel(y, dir int) {
	sh := m.rowAt(y)
	if sh == nil || sh.engine == nil {
		return
	}
	sh.surface.ScrollTo(sh.surface.target+dir*sh.surface.itemWidth, false)
}

// submitSearch runs when the fetcher submits a query
func (m *Model) submitSearch(query string) {
	query = strings.TrimSpace(query)
	m.search.SetValue(query)
	m.search.CursorEnd()
	m.suggCursor = -1

	if err := m.prefs.SetLastSearch(m.ctx, query); err != nil {
		m.log.Warn("Failed to save search", logger.F("error", err))
	}

	sh := m.shelf(shelfSearch)
	if query == "" {
		m.query = ""
		m.hide(sh)
		return
	}

	changed := query != m.query
	m.query = query
	if changed {
		sh.surface.ScrollTo(0, false)
		sh.cursor = 0
	}
	m.setFocus(sh)
	m.later(m.load(sh))
}

// suggestionsChanged keeps the dropdown highlight inside the list
func (m *Model) suggestionsChanged(s suggest.Snapshot) {
	if m.suggCursor >= len(s.Suggestions) {
		m.suggCursor = -1
	}
	m.scrollToFocus()
}

func (m *Model) shelfLoaded(msg shelfLoadedMsg) {
	sh := m.shelf(msg.kind)
	if sh == nil || msg.seq != sh.seq {
		return
	}
	sh.loading = false
	if msg.err != nil {
		sh.err = msg.err
		m.log.Warn("Failed to load row", logger.F("row", sh.key), logger.F("error", msg.err))
		return
	}
	sh.err = nil
	m.setItems(sh, msg.items)
}

func (m *Model) stepLimit(sh *shelf, delta int) tea.Cmd {
	if !sh.limited {
		m.message = sh.title + " has a fixed size"
		return nil
	}
	n, err := m.prefs.StepLimit(m.ctx, sh.list, delta)
	if err != nil {
		m.message = "Failed to save limit: " + err.Error()
		return nil
	}
	m.message = fmt.Sprintf("%s limit: %d", sh.title, n)
	return m.load(sh)
}

func (m *Model) cycleGenre(delta int) tea.Cmd {
	if len(m.genres) == 0 {
		m.message = "No genres loaded yet"
		return m.loadGenres()
	}

	idx := -1
	for i, g := range m.genres {
		if strings.EqualFold(g.Name, m.genre) {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && delta < 0:
		idx = len(m.genres) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + delta + len(m.genres)) % len(m.genres)
	}

	name := m.genres[idx].Name
	if err := m.prefs.SetSelectedGenre(m.ctx, name); err != nil {
		m.message = "Failed to save genre: " + err.Error()
		return nil
	}
	m.genre = name
	m.message = "Genre: " + name

	sh := m.shelf(shelfGenre)
	sh.surface.ScrollTo(0, false)
	sh.cursor = 0
	return m.load(sh)
}

func (m *Model) toggleAccount() tea.Cmd {
	if !m.session.LoggedIn() {
		m.mode = ModeLogin
		m.username.SetValue("")
		m.password.SetValue("")
		m.focusLoginField(0)
		return textinput.Blink
	}

	err := m.session.Logout(m.ctx)
	m.hide(m.shelf(shelfRecommended))
	if err != nil {
		m.message = "Logged out (storage error: " + err.Error() + ")"
		return nil
	}
	m.message = "Logged out"
	return nil
}

func (m *Model) focusLoginField(i int) {
	m.loginField = i
	if i == 0 {
		m.username.Focus()
		m.password.Blur()
		return
	}
	m.username.Blur()
	m.password.Focus()
}

func (m *Model) closeLogin() {
	m.mode = ModeBrowse
	m.username.Blur()
	m.password.Blur()
	m.password.SetValue("")
}

func (m *Model) loggedIn(msg loginMsg) {
	if msg.err != nil {
		m.message = "Login failed: " + errorText(msg.err)
		return
	}
	if err := m.session.Login(m.ctx, msg.result.UserID.String()); err != nil {
		m.message = "Login failed: " + err.Error()
		return
	}
	m.closeLogin()
	m.message = "Logged in as user " + msg.result.UserID.String()
	m.log.Info("User logged in", logger.F("user_id", msg.result.UserID.String()))
	m.later(m.load(m.shelf(shelfRecommended)))
}

// Commands

func (m *Model) load(sh *shelf) tea.Cmd {
	if !m.visible(sh) {
		return nil
	}
	sh.seq++
	seq, kind := sh.seq, sh.kind

	if kind == shelfGenre && m.genre == "" {
		sh.loading = false
		m.setItems(sh, nil)
		return nil
	}
	sh.loading = true

	limit := 0
	if sh.limited {
		limit = m.prefs.Limit(m.ctx, sh.list)
		sh.limit = limit
	}
	ctx, api := m.ctx, m.api
	query, genre, user := m.query, m.genre, m.session.UserID()

	return func() tea.Msg {
		var items []model.Anime
		var err error
		switch kind {
		case shelfSearch:
			items, err = api.Search(ctx, query, limit)
		case shelfTop:
			items, err = api.Top(ctx, limit)
		case shelfPopular:
			items, err = api.Popular(ctx, 0)
		case shelfGenre:
			items, err = api.ByGenre(ctx, genre, limit)
		case shelfRecommended:
			items, err = api.Recommendations(ctx, user)
		}
		return shelfLoadedMsg{kind: kind, seq: seq, items: items, err: err}
	}
}

func (m *Model) loadGenres() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		genres, err := api.Genres(ctx)
		return genresLoadedMsg{genres: genres, err: err}
	}
}

func (m *Model) loadDetail(id int) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		d, err := api.Anime(ctx, id)
		return detailMsg{details: d, err: err}
	}
}

func (m *Model) login(creds model.Credentials) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		res, err := api.Login(ctx, creds)
		return loginMsg{result: res, err: err}
	}
}

func (m *Model) rate(d *model.AnimeDetails, rating int) tea.Cmd {
	if d == nil {
		return nil
	}
	ctx, api := m.ctx, m.api
	r := model.Rating{UserID: model.UserID(m.session.UserID()), AnimeID: d.ID, Rating: rating}
	title := d.Title
	return func() tea.Msg {
		_, err := api.RateAnime(ctx, r)
		return ratedMsg{title: title, rating: rating, err: err}
	}
}

// errorText prefers the server's message over the transport wrapping
func errorText(err error) string {
	var apiErr *catalog.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}
