package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/trace"

	"github.com/existflow/animeshelf/internal/carousel"
	"github.com/existflow/animeshelf/internal/event"
	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/model"
	"github.com/existflow/animeshelf/internal/prefs"
	"github.com/existflow/animeshelf/internal/sched"
	"github.com/existflow/animeshelf/internal/session"
	"github.com/existflow/animeshelf/internal/storage"
	"github.com/existflow/animeshelf/internal/suggest"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeBrowse Mode = iota
	ModeLogin
	ModeDetail
	ModeHelp
)

// Catalog is the part of the catalog API the home screen uses
type Catalog interface {
	suggest.Source
	Search(ctx context.Context, q string, limit int) ([]model.Anime, error)
	Top(ctx context.Context, limit int) ([]model.Anime, error)
	Popular(ctx context.Context, limit int) ([]model.Anime, error)
	ByGenre(ctx context.Context, genre string, limit int) ([]model.Anime, error)
	Genres(ctx context.Context) ([]model.Genre, error)
	Anime(ctx context.Context, id int) (*model.AnimeDetails, error)
	Recommendations(ctx context.Context, userID string) ([]model.Anime, error)
	Login(ctx context.Context, creds model.Credentials) (*model.LoginResult, error)
	RateAnime(ctx context.Context, r model.Rating) (string, error)
}

// Deps wires the home screen to its collaborators
type Deps struct {
	Catalog   Catalog
	Store     storage.Store
	Session   *session.Store
	Prefs     *prefs.Prefs
	Scheduler sched.Scheduler
	Logger    *logger.Logger
	Tracer    trace.Tracer
}

// Model is the home screen. Engines keep pointers into it, so it is always
// used by pointer.
type Model struct {
	ctx     context.Context
	api     Catalog
	store   storage.Store
	session *session.Store
	prefs   *prefs.Prefs
	sched   sched.Scheduler
	log     *logger.Logger

	window   window
	document document

	// Search box
	search     textinput.Model
	fetcher    *suggest.Fetcher
	suggCursor int
	query      string // last submitted search

	// Rows
	shelves  []*shelf
	focus    *shelf // nil while the search box has focus
	shelfTop int    // first rendered row when they do not all fit
	genres   []model.Genre
	genre    string

	// Modals
	mode       Mode
	username   textinput.Model
	password   textinput.Model
	loginField int
	detail     *model.AnimeDetails

	width   int
	height  int
	message string
	pending []tea.Cmd
	closed  bool
}

// NewModel creates the home screen and restores the persisted filters
func NewModel(ctx context.Context, deps Deps) *Model {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	log = log.WithFields(logger.F("component", "tui"))
	log.Info("Initializing TUI model")

	si := textinput.New()
	si.Placeholder = "Search anime..."
	si.Prompt = "/ "
	si.CharLimit = 128

	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	m := &Model{
		ctx:        ctx,
		api:        deps.Catalog,
		store:      deps.Store,
		session:    deps.Session,
		prefs:      deps.Prefs,
		sched:      deps.Scheduler,
		log:        log,
		search:     si,
		suggCursor: -1,
		username:   user,
		password:   pass,
	}
	m.shelves = newShelves(deps.Scheduler)
	m.focus = m.shelf(shelfTop)

	m.fetcher = suggest.New(suggest.Options{
		Source:    deps.Catalog,
		Scheduler: deps.Scheduler,
		Document:  &m.document,
		Bounds:    m.inSearchBox,
		OnSubmit:  m.submitSearch,
		OnChange:  m.suggestionsChanged,
		Logger:    log,
		Tracer:    deps.Tracer,
	})

	m.genre = m.prefs.SelectedGenre(ctx)
	if q := m.prefs.LastSearch(ctx); q != "" {
		m.query = q
		m.search.SetValue(q)
	}

	log.Debug("TUI model initialized",
		logger.F("genre", m.genre),
		logger.F("query", m.query),
		logger.F("logged_in", m.session.LoggedIn()))
	return m
}

// Close unmounts every carousel, flushing pending offset saves, and stops
// the suggestion fetcher. Safe to call more than once.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for _, sh := range m.shelves {
		m.unmount(sh)
	}
	m.fetcher.Close()
}

func (m *Model) shelf(kind shelfKind) *shelf {
	for _, sh := range m.shelves {
		if sh.kind == kind {
			return sh
		}
	}
	return nil
}

// visible reports whether a row is part of the current screen
func (m *Model) visible(sh *shelf) bool {
	switch sh.kind {
	case shelfSearch:
		return m.query != ""
	case shelfRecommended:
		return m.session.LoggedIn()
	}
	return true
}

func (m *Model) visibleShelves() []*shelf {
	out := make([]*shelf, 0, len(m.shelves))
	for _, sh := range m.shelves {
		if m.visible(sh) {
			out = append(out, sh)
		}
	}
	return out
}

// setItems hands a loaded list to its row. A row gets a carousel engine
// when its list becomes non-empty and loses it when the list empties.
func (m *Model) setItems(sh *shelf, items []model.Anime) {
	sh.items = items
	sh.surface.setCount(len(items))
	sh.cursor = min(sh.cursor, max(0, len(items)-1))

	if len(items) == 0 || !m.visible(sh) {
		m.unmount(sh)
		return
	}
	if sh.engine == nil {
		sh.engine = carousel.New(carousel.Options{
			Key:       sh.key,
			Items:     items,
			Store:     m.store,
			Scheduler: m.sched,
			Logger:    m.log,
		})
		sh.engine.Mount(sh.surface, &m.window)
		sh.cursor = sh.firstFullAt(sh.surface.target)
		return
	}
	sh.engine.SetItems(items)
}

func (m *Model) unmount(sh *shelf) {
	if sh.engine == nil {
		return
	}
	sh.engine.Unmount()
	sh.engine = nil
}

// hide drops a row that is no longer visible and moves focus off it
func (m *Model) hide(sh *shelf) {
	m.unmount(sh)
	sh.items = nil
	sh.surface.setCount(0)
	sh.err = nil
	if m.focus == sh {
		m.focusNext(1)
	}
}

// setFocus moves focus to sh, or to the search box when sh is nil
func (m *Model) setFocus(sh *shelf) {
	m.focus = sh
	if sh == nil {
		m.search.Focus()
		return
	}
	m.search.Blur()
	m.fetcher.Dismiss()
	m.scrollToFocus()
}

// focusNext cycles focus through the search box and the visible rows
func (m *Model) focusNext(delta int) {
	rows := m.visibleShelves()
	order := append([]*shelf{nil}, rows...)

	idx := 0
	for i, sh := range order {
		if sh == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(order)) % len(order)
	m.setFocus(order[idx])
}

// scrollToFocus keeps the focused row inside the rendered window
func (m *Model) scrollToFocus() {
	rows := m.visibleShelves()
	fit := m.rowsFit()
	idx := -1
	for i, sh := range rows {
		if sh == m.focus {
			idx = i
		}
	}
	if idx < 0 {
		m.shelfTop = min(m.shelfTop, max(0, len(rows)-fit))
		return
	}
	if idx < m.shelfTop {
		m.shelfTop = idx
	}
	if idx >= m.shelfTop+fit {
		m.shelfTop = idx - fit + 1
	}
}

// Geometry shared by the renderer and the mouse handler

func (m *Model) dropdownHeight() int {
	return len(m.fetcher.Snapshot().Suggestions)
}

func (m *Model) rowsTop() int {
	return headerHeight + searchHeight + m.dropdownHeight()
}

func (m *Model) rowsFit() int {
	return max(1, (m.height-m.rowsTop()-statusHeight)/shelfHeight)
}

func (m *Model) inSearchBox(p event.Pointer) bool {
	return p.Y >= headerHeight && p.Y < m.rowsTop()
}

// rowAt returns the rendered row under screen line y
func (m *Model) rowAt(y int) *shelf {
	top := m.rowsTop()
	if y < top {
		return nil
	}
	rows := m.visibleShelves()
	idx := m.shelfTop + (y-top)/shelfHeight
	if idx >= len(rows) || idx >= m.shelfTop+m.rowsFit() {
		return nil
	}
	return rows[idx]
}

// viewportWidth is the number of cells a row shows
func (m *Model) viewportWidth() int {
	return max(0, m.width-2*padX)
}
