package video

import "fmt"

// Shape is one of the drawable primitives. The set is closed; Draw handles
// every variant.
type Shape interface {
	shape()
}

// Point is a single cell.
type Point struct{ X, Y int }

// Line runs between two cells inclusive.
type Line struct{ From, To Point }

// Rect has its top left corner at X, Y.
type Rect struct {
	X, Y, W, H int
	Filled     bool
}

type Circle struct {
	Center Point
	Radius int
	Filled bool
}

// Polygon is a closed outline through Points.
type Polygon struct{ Points []Point }

// Background covers the whole grid.
type Background struct{}

func (Point) shape()      {}
func (Line) shape()       {}
func (Rect) shape()       {}
func (Circle) shape()     {}
func (Polygon) shape()    {}
func (Background) shape() {}

// Draw paints every cell covered by s with c.
func (l *Layer) Draw(s Shape, c Cell) {
	switch s := s.(type) {
	case Point:
		l.Set(s.X, s.Y, c)
	case Line:
		l.line(s.From, s.To, c)
	case Rect:
		l.rect(s, c)
	case Circle:
		l.circle(s, c)
	case Polygon:
		for i, p := range s.Points {
			l.line(p, s.Points[(i+1)%len(s.Points)], c)
		}
	case Background:
		for y := range LayerRows {
			for x := range LayerCols {
				l.cells[y][x] = c
			}
		}
	default:
		panic(fmt.Sprintf("video: unknown shape %T", s))
	}
}

// line is Bresenham's algorithm over all octants.
func (l *Layer) line(from, to Point, c Cell) {
	dx, sx := abs(to.X-from.X), sign(to.X-from.X)
	dy, sy := -abs(to.Y-from.Y), sign(to.Y-from.Y)
	err := dx + dy

	x, y := from.X, from.Y
	for {
		l.Set(x, y, c)
		if x == to.X && y == to.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func (l *Layer) rect(r Rect, c Cell) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	right, bottom := r.X+r.W-1, r.Y+r.H-1
	for y := r.Y; y <= bottom; y++ {
		for x := r.X; x <= right; x++ {
			if r.Filled || y == r.Y || y == bottom || x == r.X || x == right {
				l.Set(x, y, c)
			}
		}
	}
}

// circle uses the midpoint algorithm. Filled circles are drawn as horizontal spans.
func (l *Layer) circle(ci Circle, c Cell) {
	if ci.Radius < 0 {
		return
	}
	cx, cy := ci.Center.X, ci.Center.Y
	x, y := ci.Radius, 0
	err := 1 - x

	for x >= y {
		if ci.Filled {
			l.span(cx-x, cx+x, cy+y, c)
			l.span(cx-x, cx+x, cy-y, c)
			l.span(cx-y, cx+y, cy+x, c)
			l.span(cx-y, cx+y, cy-x, c)
		} else {
			for _, p := range [8]Point{
				{cx + x, cy + y}, {cx - x, cy + y}, {cx + x, cy - y}, {cx - x, cy - y},
				{cx + y, cy + x}, {cx - y, cy + x}, {cx + y, cy - x}, {cx - y, cy - x},
			} {
				l.Set(p.X, p.Y, c)
			}
		}

		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func (l *Layer) span(x0, x1, y int, c Cell) {
	for x := x0; x <= x1; x++ {
		l.Set(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
