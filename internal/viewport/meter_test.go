package viewport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLayout struct {
	client, scroll, track, first int
	hasFirst                     bool
}

func (f fakeLayout) ClientWidth() int { return f.client }
func (f fakeLayout) ScrollLeft() int { return f.scroll }
func (f fakeLayout) ScrollWidth() int { return f.track }
func (f fakeLayout) FirstItemWidth() (int, bool) { return f.first, f.hasFirst }

func TestCompute_QuantizesPageStep(t *testing.T) {
	tests := []struct {
		name      string
		viewport  int
		item      int
		wantItems int
		wantStep  int
	}{
		{"exact fit", 900, 180, 5, 900},
		{"partial item dropped", 1000, 180, 5, 900},
		{"narrower than one item", 100, 180, 1, 180},
		{"one item", 180, 180, 1, 180},
		{"small items", 1000, 7, 142, 994},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(Dimensions{ViewportWidth: tt.viewport, TrackWidth: 10000, FirstItemWidth: tt.item})
			require.Equal(t, tt.wantItems, m.ItemsPerPage)
			require.Equal(t, tt.wantStep, m.PageStepWidth)
			require.GreaterOrEqual(t, m.PageStepWidth, tt.item)
		})
	}
}

func TestCompute_EdgeConsistencyForAllOffsets(t *testing.T) {
	const viewportW, trackW = 1000, 3600
	for offset := 0; offset <= trackW-viewportW; offset += 7 {
		m := Compute(Dimensions{ViewportWidth: viewportW, ScrollLeft: offset, TrackWidth: trackW, FirstItemWidth: 180})
		require.Equal(t, offset > 0, m.CanStepBack, "offset %d", offset)
		require.Equal(t, offset+viewportW < trackW-1, m.CanStepForward, "offset %d", offset)
	}
}

func TestCompute_ToleratesSubUnitRounding(t *testing.T) {
	m := Compute(Dimensions{ViewportWidth: 1000, ScrollLeft: 2599, TrackWidth: 3600, FirstItemWidth: 180})
	require.False(t, m.CanStepForward)

	m = Compute(Dimensions{ViewportWidth: 1000, TrackWidth: 1001, FirstItemWidth: 180})
	require.False(t, m.IsOverflowing)
}

func TestCompute_UnmeasuredLayoutIsConservative(t *testing.T) {
	for _, d := range []Dimensions{
		{},
		{ViewportWidth: 1000},
		{TrackWidth: 3600},
		{ViewportWidth: -5, TrackWidth: -5},
	} {
		m := Compute(d)
		require.False(t, m.Ready)
		require.False(t, m.IsOverflowing)
		require.False(t, m.CanStepBack)
		require.False(t, m.CanStepForward)
		require.Equal(t, DefaultItemWidth, m.PageStepWidth)
	}
}

func TestMeasure_FallsBackWhenNoFirstItem(t *testing.T) {
	m := Measure(fakeLayout{client: 1000, track: 3600}, fakeLayout{client: 1000, track: 3600})
	require.Equal(t, DefaultItemWidth, m.ItemWidth)
	require.Equal(t, 900, m.PageStepWidth)

	m = Measure(nil, nil)
	require.False(t, m.Ready)
}

func TestMeasure_Scenario(t *testing.T) {
	layout := fakeLayout{client: 1000, track: 20 * 180, first: 180, hasFirst: true}
	m := Measure(layout, layout)

	require.True(t, m.Ready)
	require.True(t, m.IsOverflowing)
	require.Equal(t, 5, m.ItemsPerPage)
	require.Equal(t, 900, m.PageStepWidth)
	require.False(t, m.CanStepBack)
	require.True(t, m.CanStepForward)
	require.Equal(t, 2600, m.MaxScrollLeft)
}
