package diagram

const (
	MinZoom     = 50
	MaxZoom     = 200
	ZoomStep    = 10
	DefaultZoom = 100
)

// Viewport is the pan offset and zoom percentage of the canvas.
type Viewport struct {
	OffsetX float64
	OffsetY float64
	Zoom    int
}

func NewViewport() Viewport {
	return Viewport{Zoom: DefaultZoom}
}

func (v Viewport) Scale() float64 {
	return float64(v.Zoom) / 100
}

// ToCanvas maps a screen point into canvas coordinates.
func (v Viewport) ToCanvas(p Point) Point {
	s := v.Scale()
	return Point{X: (p.X - v.OffsetX) / s, Y: (p.Y - v.OffsetY) / s}
}

func clampZoom(z int) int {
	switch {
	case z < MinZoom:
		return MinZoom
	case z > MaxZoom:
		return MaxZoom
	}
	return z
}
