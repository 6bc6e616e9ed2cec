package diagram

import "math"

// GridSize is the snapping step for dragged elements.
const GridSize = 20.0

type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// PointerEvent is a mouse or touch event already resolved to a target.
// Target is the element under the pointer, empty for bare canvas. Touches is
// the number of active fingers, zero for mouse input.
type PointerEvent struct {
	X       float64
	Y       float64
	Button  Button
	Touches int
	Target  string
}

type DragMode int

const (
	DragIdle DragMode = iota
	DragElement
	DragPan
)

type dragState struct {
	mode      DragMode
	elementID string
	start     Point
	origin    Point
	current   Point
}

type connectState struct {
	awaiting  bool
	elementID string
	fieldID   string
}

// Controller turns pointer gestures into store mutations. It is driven by a
// single UI loop and is not safe for concurrent use.
type Controller struct {
	store   *Store
	view    Viewport
	drag    dragState
	connect connectState
}

func NewController(store *Store) *Controller {
	return &Controller{store: store, view: NewViewport()}
}

func (c *Controller) Viewport() Viewport { return c.view }

func (c *Controller) DragMode() DragMode { return c.drag.mode }

// DragPreview returns the snapped position of the element being dragged.
func (c *Controller) DragPreview() (string, Point, bool) {
	if c.drag.mode != DragElement {
		return "", Point{}, false
	}
	return c.drag.elementID, c.drag.current, true
}

func snap(v float64) float64 {
	return math.Round(v/GridSize) * GridSize
}

// PointerDown is the only point where a running gesture can be replaced.
// An unfinished element drag is committed before the new gesture starts.
func (c *Controller) PointerDown(ev PointerEvent) {
	if c.drag.mode != DragIdle {
		c.finishDrag()
	}

	touch := ev.Touches > 0
	if touch && ev.Touches != 1 {
		return
	}
	secondary := !touch && ev.Button == ButtonSecondary
	primary := touch || ev.Button == ButtonPrimary

	if ev.Target == "" && primary {
		c.CancelConnection()
	}

	switch {
	case primary && ev.Target != "":
		el, ok := c.store.Element(ev.Target)
		if !ok {
			return
		}
		origin := Point{X: el.X, Y: el.Y}
		c.drag = dragState{
			mode:      DragElement,
			elementID: el.ID,
			start:     Point{X: ev.X, Y: ev.Y},
			origin:    origin,
			current:   origin,
		}
	case secondary || (primary && ev.Target == ""):
		origin := Point{X: c.view.OffsetX, Y: c.view.OffsetY}
		c.drag = dragState{
			mode:    DragPan,
			start:   Point{X: ev.X, Y: ev.Y},
			origin:  origin,
			current: origin,
		}
	}
}

func (c *Controller) PointerMove(ev PointerEvent) {
	dx, dy := ev.X-c.drag.start.X, ev.Y-c.drag.start.Y

	switch c.drag.mode {
	case DragElement:
		s := c.view.Scale()
		c.drag.current = Point{
			X: snap(c.drag.origin.X + dx/s),
			Y: snap(c.drag.origin.Y + dy/s),
		}
	case DragPan:
		c.drag.current = Point{X: c.drag.origin.X + dx, Y: c.drag.origin.Y + dy}
		c.view.OffsetX, c.view.OffsetY = c.drag.current.X, c.drag.current.Y
	}
}

// PointerUp ends the gesture and commits the final position.
func (c *Controller) PointerUp(ev PointerEvent) {
	if c.drag.mode == DragIdle {
		return
	}
	c.PointerMove(ev)
	c.finishDrag()
}

func (c *Controller) finishDrag() {
	if c.drag.mode == DragElement {
		c.store.UpdateElementPosition(c.drag.elementID, c.drag.current.X, c.drag.current.Y)
	}
	c.drag = dragState{}
}

func (c *Controller) AwaitingTarget() bool { return c.connect.awaiting }

// StartConnection records the source of a new connection, replacing any
// pending one.
func (c *Controller) StartConnection(elementID, fieldID string) {
	c.connect = connectState{awaiting: true, elementID: elementID, fieldID: fieldID}
}

// CompleteConnection commits a connection from the pending source to the
// given target. Completing on the source element commits nothing. The
// controller returns to idle either way.
func (c *Controller) CompleteConnection(elementID, fieldID string) (string, bool) {
	pending := c.connect
	c.connect = connectState{}

	if !pending.awaiting || pending.elementID == elementID {
		return "", false
	}
	return c.store.AddConnection(pending.elementID, pending.fieldID, elementID, fieldID)
}

func (c *Controller) CancelConnection() {
	c.connect = connectState{}
}

func (c *Controller) ZoomIn() int {
	return c.SetZoom(c.view.Zoom + ZoomStep)
}

func (c *Controller) ZoomOut() int {
	return c.SetZoom(c.view.Zoom - ZoomStep)
}

func (c *Controller) SetZoom(percent int) int {
	c.view.Zoom = clampZoom(percent)
	return c.view.Zoom
}
