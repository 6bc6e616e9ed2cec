package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredWidthFloor(t *testing.T) {
	assert.Equal(t, MinWidth, RequiredWidth(nil))
	assert.Equal(t, MinWidth, RequiredWidth([]Field{{Name: "id", Type: FieldInteger}}))
}

func TestRequiredWidthUsesWidestNameAndType(t *testing.T) {
	fields := []Field{
		{Name: "a_fairly_long_name", Type: FieldInteger},
		{Name: "x", Type: FieldTimestamp},
	}
	// 18 name chars and 9 type chars.
	assert.Equal(t, 18*CharWidth+9*CharWidth+CellPadding, RequiredWidth(fields))
}

func TestRequiredHeight(t *testing.T) {
	assert.Equal(t, BaseHeight, RequiredHeight(0))
	assert.Equal(t, 120.0, RequiredHeight(2))
}

func TestConnectionEndpointsCenters(t *testing.T) {
	from := Element{X: 0, Y: 0, Width: 200, Height: 120}
	to := Element{X: 400, Y: 100, Width: 200, Height: 84}

	p, q := ConnectionEndpoints(from, to, "", "")
	assert.Equal(t, Point{X: 200, Y: 60}, p)
	assert.Equal(t, Point{X: 400, Y: 142}, q)
}

func TestConnectionEndpointsFieldRows(t *testing.T) {
	from := Element{X: 0, Y: 0, Width: 200, Height: 120, Fields: []Field{{ID: "a"}, {ID: "b"}}}
	to := Element{X: 400, Y: 100, Width: 200, Height: 120, Fields: []Field{{ID: "c"}, {ID: "d"}}}

	p, q := ConnectionEndpoints(from, to, "b", "c")
	assert.Equal(t, Point{X: 200, Y: HeaderHeight + RowHeight + RowHeight/2}, p)
	assert.Equal(t, Point{X: 400, Y: 100 + HeaderHeight + RowHeight/2}, q)
}

func TestConnectionEndpointsOneFieldFallsBackToCenter(t *testing.T) {
	from := Element{Width: 200, Height: 120, Fields: []Field{{ID: "a"}}}
	to := Element{X: 300, Width: 200, Height: 120, Fields: []Field{{ID: "c"}}}

	p, q := ConnectionEndpoints(from, to, "a", "")
	assert.Equal(t, 60.0, p.Y)
	assert.Equal(t, 60.0, q.Y)
}

func TestConnectionEndpointsFollowMoves(t *testing.T) {
	s := NewStore()
	a := s.AddElement(KindTable)
	b := s.AddElement(KindTable)
	s.UpdateElementPosition(b.ID, 500, 300)

	from, _ := s.Element(a.ID)
	to, _ := s.Element(b.ID)
	_, q := ConnectionEndpoints(from, to, "", "")
	assert.Equal(t, Point{X: 500, Y: 360}, q)
}

func TestCurvePath(t *testing.T) {
	assert.Equal(t, "M 200 60 C 250 60, 350 142, 400 142",
		CurvePath(Point{X: 200, Y: 60}, Point{X: 400, Y: 142}))
}

func TestBounds(t *testing.T) {
	_, _, ok := Bounds(nil)
	assert.False(t, ok)

	lo, hi, ok := Bounds([]Element{
		{X: 100, Y: 50, Width: 200, Height: 120},
		{X: -20, Y: 300, Width: 200, Height: 84},
	})
	assert.True(t, ok)
	assert.Equal(t, Point{X: -20, Y: 50}, lo)
	assert.Equal(t, Point{X: 300, Y: 384}, hi)
}
