package tui

import (
	"github.com/existflow/animeshelf/internal/carousel"
	"github.com/existflow/animeshelf/internal/model"
	"github.com/existflow/animeshelf/internal/prefs"
	"github.com/existflow/animeshelf/internal/sched"
)

// Layout in terminal cells
const (
	cardWidth    = 24
	cardHeight   = 4
	shelfHeight  = cardHeight + 2 // title line, cards, spacer
	headerHeight = 1
	searchHeight = 3
	statusHeight = 2
	padX         = 1
)

type shelfKind int

const (
	shelfSearch shelfKind = iota
	shelfTop
	shelfPopular
	shelfGenre
	shelfRecommended
)

// shelf is one carousel row on the home screen
type shelf struct {
	kind    shelfKind
	key     string // carousel persistence key
	title   string
	limited bool
	list    prefs.List
	limit   int

	surface *surface
	engine  *carousel.Engine
	items   []model.Anime
	loading bool
	seq     int
	err     error
	cursor  int
}

func newShelves(s sched.Scheduler) []*shelf {
	return []*shelf{
		{kind: shelfSearch, key: "search", title: "Search results", limited: true, list: prefs.Search, surface: newSurface(s, cardWidth)},
		{kind: shelfTop, key: "top", title: "Best ratings", limited: true, list: prefs.Top, surface: newSurface(s, cardWidth)},
		{kind: shelfPopular, key: "popular", title: "Most popular", surface: newSurface(s, cardWidth)},
		{kind: shelfGenre, key: "genre", title: "Genre", limited: true, list: prefs.Genre, surface: newSurface(s, cardWidth)},
		{kind: shelfRecommended, key: "recommendations", title: "Recommended for you", surface: newSurface(s, cardWidth)},
	}
}

// current returns the highlighted anime
func (sh *shelf) current() (model.Anime, bool) {
	if sh.cursor < 0 || sh.cursor >= len(sh.items) {
		return model.Anime{}, false
	}
	return sh.items[sh.cursor], true
}

// visibleRange returns the half-open range of cards intersecting the viewport
func (sh *shelf) visibleRange() (first, last int) {
	s := sh.surface
	left := min(s.left, s.maxLeft())
	first = left / s.itemWidth
	last = min(len(sh.items), ceilDiv(left+s.width, s.itemWidth))
	return first, last
}

// firstFullAt is the first card fully visible at offset left
func (sh *shelf) firstFullAt(left int) int {
	return min(ceilDiv(left, sh.surface.itemWidth), max(0, len(sh.items)-1))
}

// moveCursor shifts the highlight by delta cards and scrolls it into view
func (sh *shelf) moveCursor(delta int) {
	if len(sh.items) == 0 {
		return
	}
	sh.cursor = min(max(sh.cursor+delta, 0), len(sh.items)-1)

	s := sh.surface
	start := sh.cursor * s.itemWidth
	end := start + s.itemWidth
	switch {
	case start < s.target:
		s.ScrollTo(start, true)
	case end > s.target+s.width:
		s.ScrollTo(end-s.width, true)
	}
}

// page returns the current page and page count for the row header
func (sh *shelf) page() (cur, total int) {
	if sh.engine == nil {
		return 0, 0
	}
	st := sh.engine.State()
	if !st.Ready || st.PageStepWidth <= 0 {
		return 0, 0
	}
	total = ceilDiv(sh.surface.maxLeft(), st.PageStepWidth) + 1
	cur = ceilDiv(st.ScrollOffset, st.PageStepWidth) + 1
	return min(cur, total), total
}
