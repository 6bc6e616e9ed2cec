package diagram

import (
	"fmt"
	"math"
)

// Layout constants for the full (non-compact) table rendering.
const (
	CharWidth    = 8.0
	CellPadding  = 48.0
	MinWidth     = 200.0
	HeaderHeight = 40.0
	BaseHeight   = 48.0
	RowHeight    = 36.0

	// CurveOffset is the horizontal pull of each bezier control point.
	CurveOffset = 50.0
)

type Point struct {
	X float64
	Y float64
}

// RequiredWidth is the box width needed to show the widest name and the
// widest type side by side.
func RequiredWidth(fields []Field) float64 {
	maxName, maxType := 0, 0
	for _, f := range fields {
		if n := len([]rune(f.Name)); n > maxName {
			maxName = n
		}
		if n := len([]rune(string(f.Type))); n > maxType {
			maxType = n
		}
	}
	return math.Max(MinWidth, float64(maxName)*CharWidth+float64(maxType)*CharWidth+CellPadding)
}

func RequiredHeight(fieldCount int) float64 {
	return BaseHeight + float64(fieldCount)*RowHeight
}

// Resize recomputes the element's width and height from its field list.
func Resize(el *Element) {
	el.Width = RequiredWidth(el.Fields)
	el.Height = RequiredHeight(len(el.Fields))
}

// fieldRowY returns the vertical center of the i-th field row.
func fieldRowY(el Element, i int) float64 {
	return el.Y + HeaderHeight + float64(i)*RowHeight + RowHeight/2
}

// ConnectionEndpoints returns where a connection leaves from (right edge)
// and enters to (left edge). When both field ids resolve, the points sit on
// the matching field rows; otherwise on the vertical centers.
func ConnectionEndpoints(from, to Element, fromFieldID, toFieldID string) (Point, Point) {
	start := Point{X: from.X + from.Width, Y: from.Y + from.Height/2}
	end := Point{X: to.X, Y: to.Y + to.Height/2}

	if fromFieldID == "" || toFieldID == "" {
		return start, end
	}
	fi, ti := from.FieldIndex(fromFieldID), to.FieldIndex(toFieldID)
	if fi < 0 || ti < 0 {
		return start, end
	}
	start.Y = fieldRowY(from, fi)
	end.Y = fieldRowY(to, ti)
	return start, end
}

// CurvePath renders the cubic bezier between two endpoints as an SVG path.
func CurvePath(p, q Point) string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		p.X, p.Y,
		p.X+CurveOffset, p.Y,
		q.X-CurveOffset, q.Y,
		q.X, q.Y)
}

// Bounds returns the smallest rectangle covering every element. ok is false
// for an empty slice.
func Bounds(elements []Element) (lo, hi Point, ok bool) {
	if len(elements) == 0 {
		return Point{}, Point{}, false
	}
	lo = Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, el := range elements {
		lo.X = math.Min(lo.X, el.X)
		lo.Y = math.Min(lo.Y, el.Y)
		hi.X = math.Max(hi.X, el.X+el.Width)
		hi.Y = math.Max(hi.Y, el.Y+el.Height)
	}
	return lo, hi, true
}
