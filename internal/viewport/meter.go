// Package viewport measures a horizontally scrollable viewport and the track
// it contains. Measurement is pure: callers pass the current layout and get
// derived paging state back.
package viewport

// DefaultItemWidth is used when the track has no measurable first item
const DefaultItemWidth = 180

// edgeTolerance absorbs sub-unit rounding at the track edges
const edgeTolerance = 1

// Viewport is the fixed-size scroll container
type Viewport interface {
	ClientWidth() int
	ScrollLeft() int
}

// Track is the content laid out inside the viewport
type Track interface {
	ScrollWidth() int
	// FirstItemWidth reports the rendered width of the first child
	FirstItemWidth() (int, bool)
}

// Dimensions is a snapshot of the layout inputs
type Dimensions struct {
	ViewportWidth  int
	ScrollLeft     int
	TrackWidth     int
	FirstItemWidth int // zero or negative means unknown
}

// Metrics is the state derived from one measurement
type Metrics struct {
	Ready          bool // false until both viewport and track have width
	IsOverflowing  bool
	CanStepBack    bool
	CanStepForward bool
	ItemWidth      int
	ItemsPerPage   int
	PageStepWidth  int
	MaxScrollLeft  int
}

// Measure reads the layout from vp and tr and computes Metrics
func Measure(vp Viewport, tr Track) Metrics {
	if vp == nil || tr == nil {
		return Compute(Dimensions{})
	}
	d := Dimensions{
		ViewportWidth: vp.ClientWidth(),
		ScrollLeft:    vp.ScrollLeft(),
		TrackWidth:    tr.ScrollWidth(),
	}
	if w, ok := tr.FirstItemWidth(); ok {
		d.FirstItemWidth = w
	}
	return Compute(d)
}

// Compute derives Metrics from d. Unmeasured layouts (zero widths) yield
// conservative metrics with both steps disabled.
func Compute(d Dimensions) Metrics {
	item := d.FirstItemWidth
	if item <= 0 {
		item = DefaultItemWidth
	}

	m := Metrics{
		ItemWidth:     item,
		ItemsPerPage:  1,
		PageStepWidth: item,
	}
	if d.ViewportWidth <= 0 || d.TrackWidth <= 0 {
		return m
	}

	m.Ready = true
	m.ItemsPerPage = max(1, d.ViewportWidth/item)
	m.PageStepWidth = m.ItemsPerPage * item
	m.MaxScrollLeft = max(0, d.TrackWidth-d.ViewportWidth)

	m.IsOverflowing = d.TrackWidth > d.ViewportWidth+edgeTolerance
	m.CanStepBack = d.ScrollLeft > 0
	m.CanStepForward = d.ScrollLeft+d.ViewportWidth < d.TrackWidth-edgeTolerance
	return m
}
