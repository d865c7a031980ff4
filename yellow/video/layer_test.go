package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-yellow/yellow/text"
)

func TestLayerStackLIFO(t *testing.T) {
	var s LayerStack
	h1 := s.Push()
	h2 := s.Push()
	require.NotEqual(t, h1, h2)
	assert.Equal(t, 2, s.Len())

	err := s.Pop(h1)
	assert.ErrorIs(t, err, ErrNotTopLayer)
	assert.Equal(t, 2, s.Len(), "rejected pop leaves the stack intact")

	require.NoError(t, s.Pop(h2))
	assert.Nil(t, s.Layer(h2))
	assert.ErrorIs(t, s.Pop(h2), ErrUnknownLayer)

	require.NoError(t, s.Pop(h1))
	assert.Zero(t, s.Len())

	h3 := s.Push()
	assert.NotEqual(t, h1, h3, "handles are not reused")
}

func TestLayerGrid(t *testing.T) {
	var l Layer
	l.Set(LayerCols, 0, Fill(ShadeBlack))
	l.Set(-1, 3, Fill(ShadeBlack))
	assert.Equal(t, Transparent, l.Cell(LayerCols, 0))

	l.SetBackground(19, 17, 0xED)
	assert.Equal(t, Glyph(0xED), l.Cell(19, 17))

	l.Clear()
	assert.Equal(t, Transparent, l.Cell(19, 17))
}

func TestPlaceString(t *testing.T) {
	var l Layer
	l.PlaceString(2, 4, "NEW GAME")
	want := text.Encode("NEW GAME")
	for i, code := range want {
		assert.Equal(t, Glyph(code), l.Cell(2+i, 4))
	}
	assert.Equal(t, Transparent, l.Cell(2+len(want), 4))

	// clipped at the right edge
	l.PlaceString(18, 0, "ABC")
	assert.Equal(t, Glyph(0x81), l.Cell(19, 0))
}

func TestTextBoxBorder(t *testing.T) {
	var l Layer
	l.TextBoxBorder(0, 0, 3, 2)

	rows := [][]uint8{
		{0x79, 0x7A, 0x7A, 0x7A, 0x7B},
		{0x7C, 0x7F, 0x7F, 0x7F, 0x7C},
		{0x7C, 0x7F, 0x7F, 0x7F, 0x7C},
		{0x7D, 0x7A, 0x7A, 0x7A, 0x7E},
	}
	for y, row := range rows {
		for x, code := range row {
			assert.Equal(t, Glyph(code), l.Cell(x, y), "cell %d,%d", x, y)
		}
	}
	assert.Equal(t, Transparent, l.Cell(5, 0))
	assert.Equal(t, Transparent, l.Cell(0, 4))
}

func cellsOf(l *Layer) map[Point]bool {
	out := map[Point]bool{}
	for y := range LayerRows {
		for x := range LayerCols {
			if l.Cell(x, y) != Transparent {
				out[Point{x, y}] = true
			}
		}
	}
	return out
}

func TestDrawShapes(t *testing.T) {
	ink := Fill(ShadeDark)
	tests := []struct {
		name  string
		shape Shape
		want  []Point
		count int
	}{
		{"point", Point{3, 4}, []Point{{3, 4}}, 1},
		{"horizontal line", Line{Point{1, 1}, Point{4, 1}}, []Point{{1, 1}, {2, 1}, {3, 1}, {4, 1}}, 4},
		{"diagonal line", Line{Point{3, 3}, Point{0, 0}}, []Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, 4},
		{"rect outline", Rect{X: 1, Y: 1, W: 3, H: 3}, []Point{{1, 1}, {3, 3}, {2, 1}, {1, 2}}, 8},
		{"filled rect", Rect{X: 0, Y: 0, W: 2, H: 3, Filled: true}, []Point{{1, 2}}, 6},
		{"empty rect", Rect{X: 0, Y: 0, W: 0, H: 3}, nil, 0},
		{"circle", Circle{Center: Point{5, 5}, Radius: 2}, []Point{{7, 5}, {3, 5}, {5, 7}, {5, 3}}, 12},
		{"filled circle", Circle{Center: Point{5, 5}, Radius: 1, Filled: true}, []Point{{5, 5}, {4, 5}, {6, 5}, {5, 4}, {5, 6}}, 5},
		{"triangle", Polygon{[]Point{{0, 0}, {4, 0}, {0, 4}}}, []Point{{2, 0}, {2, 2}, {0, 2}}, 12},
		{"background", Background{}, []Point{{0, 0}, {19, 17}}, LayerCols * LayerRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Layer
			l.Draw(tt.shape, ink)
			got := cellsOf(&l)
			for _, p := range tt.want {
				assert.True(t, got[p], "missing %v", p)
				assert.Equal(t, ink, l.Cell(p.X, p.Y))
			}
			assert.Len(t, got, tt.count)
		})
	}
}

type unknownShape struct{}

func (unknownShape) shape() {}

func TestDrawUnknownShapePanics(t *testing.T) {
	var l Layer
	assert.Panics(t, func() { l.Draw(unknownShape{}, Fill(ShadeBlack)) })
}
