package diagram

import (
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Default placement for freshly added elements.
const (
	DefaultX = 100.0
	DefaultY = 100.0
)

const historyLimit = 100

// Limits accepted by the project API. Longer text is cut at the store
// boundary so every reachable state can be saved.
const (
	MaxNameLength  = 128
	MaxColorLength = 32
	MaxStrokeWidth = 32.0
)

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}

// FieldPatch carries the optional changes applied by UpdateField.
type FieldPatch struct {
	Name      *string
	Type      *FieldType
	IsPrimary *bool
}

// ConnectionStyle is the display metadata of a connection.
type ConnectionStyle struct {
	Color       string
	StrokeWidth float64
	Label       string
}

// Store holds the elements and connections of one open project. Unknown ids
// are ignored by every mutation. All methods are safe for concurrent use so
// an autosave goroutine can snapshot while the editor mutates.
type Store struct {
	mu          sync.RWMutex
	elements    []Element
	connections []Connection
	newID       func() string

	undo []Snapshot
	redo []Snapshot
}

type StoreOption func(*Store)

// WithIDGenerator overrides the id source used for new elements, fields and
// connections.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutate runs fn under the write lock and records an undo step when fn
// reports a change.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.snapshotLocked()
	if !fn() {
		return false
	}
	s.undo = append(s.undo, before)
	if len(s.undo) > historyLimit {
		s.undo = s.undo[len(s.undo)-historyLimit:]
	}
	s.redo = nil
	return true
}

func (s *Store) elementIndex(id string) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) connectionIndex(id string) int {
	for i := range s.connections {
		if s.connections[i].ID == id {
			return i
		}
	}
	return -1
}

// AddElement appends a table with the default id and created_at columns.
// Tables are the only kind the API stores, so kind is always KindTable.
func (s *Store) AddElement(kind string) Element {
	kind = KindTable
	var created Element
	s.mutate(func() bool {
		el := Element{
			ID:   s.newID(),
			Kind: kind,
			Name: "New " + kind,
			X:    DefaultX,
			Y:    DefaultY,
			Fields: []Field{
				{ID: s.newID(), Name: "id", Type: FieldInteger, IsPrimary: true},
				{ID: s.newID(), Name: "created_at", Type: FieldTimestamp},
			},
		}
		Resize(&el)
		s.elements = append(s.elements, el)
		created = el.clone()
		return true
	})
	return created
}

func (s *Store) UpdateElementPosition(id string, x, y float64) {
	s.mutate(func() bool {
		i := s.elementIndex(id)
		if i < 0 {
			return false
		}
		if s.elements[i].X == x && s.elements[i].Y == y {
			return false
		}
		s.elements[i].X, s.elements[i].Y = x, y
		return true
	})
}

func (s *Store) RenameElement(id, name string) {
	s.mutate(func() bool {
		i := s.elementIndex(id)
		if i < 0 {
			return false
		}
		name = truncate(name, MaxNameLength)
		if s.elements[i].Name == name {
			return false
		}
		s.elements[i].Name = name
		return true
	})
}

// AddField appends a column and returns its id. An unknown element or an
// unsupported type leaves the store untouched.
func (s *Store) AddField(id, name string, typ FieldType) (string, bool) {
	var fieldID string
	ok := s.mutate(func() bool {
		i := s.elementIndex(id)
		if i < 0 || !typ.Valid() {
			return false
		}
		fieldID = s.newID()
		el := &s.elements[i]
		el.Fields = append(el.Fields, Field{ID: fieldID, Name: truncate(name, MaxNameLength), Type: typ})
		Resize(el)
		return true
	})
	return fieldID, ok
}

// RemoveField drops a column. Connections anchored on it stay and fall back
// to anchoring on the element itself.
func (s *Store) RemoveField(id, fieldID string) {
	s.mutate(func() bool {
		i := s.elementIndex(id)
		if i < 0 {
			return false
		}
		el := &s.elements[i]
		fi := el.FieldIndex(fieldID)
		if fi < 0 {
			return false
		}
		el.Fields = append(el.Fields[:fi:fi], el.Fields[fi+1:]...)
		Resize(el)

		for j := range s.connections {
			c := &s.connections[j]
			if c.From == id && c.FromField == fieldID {
				c.FromField = ""
			}
			if c.To == id && c.ToField == fieldID {
				c.ToField = ""
			}
		}
		return true
	})
}

// UpdateField applies the non-nil parts of patch. Setting IsPrimary keeps the
// single-primary rule by clearing every other field of the element.
func (s *Store) UpdateField(id, fieldID string, patch FieldPatch) {
	s.mutate(func() bool {
		i := s.elementIndex(id)
		if i < 0 {
			return false
		}
		el := &s.elements[i]
		fi := el.FieldIndex(fieldID)
		if fi < 0 {
			return false
		}
		changed := false
		if patch.Name != nil {
			el.Fields[fi].Name = truncate(*patch.Name, MaxNameLength)
			changed = true
		}
		if patch.Type != nil && patch.Type.Valid() {
			el.Fields[fi].Type = *patch.Type
			changed = true
		}
		if patch.IsPrimary != nil {
			if *patch.IsPrimary {
				setPrimary(el, fi)
			} else {
				el.Fields[fi].IsPrimary = false
			}
			changed = true
		}
		if changed {
			Resize(el)
		}
		return changed
	})
}

// TogglePrimary makes fieldID the sole primary key of the element, or clears
// it when it already is.
func (s *Store) TogglePrimary(id, fieldID string) {
	s.mutate(func() bool {
		i := s.elementIndex(id)
		if i < 0 {
			return false
		}
		el := &s.elements[i]
		fi := el.FieldIndex(fieldID)
		if fi < 0 {
			return false
		}
		if el.Fields[fi].IsPrimary {
			el.Fields[fi].IsPrimary = false
		} else {
			setPrimary(el, fi)
		}
		Resize(el)
		return true
	})
}

func setPrimary(el *Element, fi int) {
	for j := range el.Fields {
		el.Fields[j].IsPrimary = false
	}
	el.Fields[fi].IsPrimary = true
}

// DeleteElement removes the element and every connection touching it.
func (s *Store) DeleteElement(id string) {
	s.mutate(func() bool {
		i := s.elementIndex(id)
		if i < 0 {
			return false
		}
		s.elements = append(s.elements[:i:i], s.elements[i+1:]...)

		kept := s.connections[:0:0]
		for _, c := range s.connections {
			if c.From != id && c.To != id {
				kept = append(kept, c)
			}
		}
		s.connections = kept
		return true
	})
}

// AddConnection links two distinct, existing elements with a one-to-many
// relation. Self-loops and unknown endpoints are rejected. A field id that
// is not on its element is dropped and the end anchors on the element.
func (s *Store) AddConnection(fromID, fromFieldID, toID, toFieldID string) (string, bool) {
	var connID string
	ok := s.mutate(func() bool {
		fi, ti := s.elementIndex(fromID), s.elementIndex(toID)
		if fromID == toID || fi < 0 || ti < 0 {
			return false
		}
		if s.elements[fi].FieldIndex(fromFieldID) < 0 {
			fromFieldID = ""
		}
		if s.elements[ti].FieldIndex(toFieldID) < 0 {
			toFieldID = ""
		}
		connID = s.newID()
		s.connections = append(s.connections, Connection{
			ID:        connID,
			From:      fromID,
			To:        toID,
			FromField: fromFieldID,
			ToField:   toFieldID,
			Kind:      OneToMany,
		})
		return true
	})
	return connID, ok
}

func (s *Store) DeleteConnection(id string) {
	s.mutate(func() bool {
		i := s.connectionIndex(id)
		if i < 0 {
			return false
		}
		s.connections = append(s.connections[:i:i], s.connections[i+1:]...)
		return true
	})
}

func (s *Store) SetConnectionKind(id string, kind RelationKind) {
	s.mutate(func() bool {
		i := s.connectionIndex(id)
		if i < 0 || !kind.Valid() {
			return false
		}
		s.connections[i].Kind = kind
		return true
	})
}

func (s *Store) StyleConnection(id string, style ConnectionStyle) {
	s.mutate(func() bool {
		i := s.connectionIndex(id)
		if i < 0 {
			return false
		}
		c := &s.connections[i]
		c.Color = truncate(style.Color, MaxColorLength)
		c.StrokeWidth = min(max(style.StrokeWidth, 0), MaxStrokeWidth)
		c.Label = truncate(style.Label, MaxNameLength)
		return true
	})
}

// Element returns a copy of the element with the given id.
func (s *Store) Element(id string) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.elementIndex(id)
	if i < 0 {
		return Element{}, false
	}
	return s.elements[i].clone(), true
}

func (s *Store) Elements() []Element {
	return s.Snapshot().Elements
}

func (s *Store) Connections() []Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Connection(nil), s.connections...)
}

// Snapshot returns a deep copy that later mutations cannot reach.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Elements: s.elements, Connections: s.connections}.clone()
}

// Replace swaps in a loaded snapshot, recomputing geometry and dropping the
// undo history.
func (s *Store) Replace(snap Snapshot) {
	snap = snap.clone()
	for i := range snap.Elements {
		Resize(&snap.Elements[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = snap.Elements
	s.connections = snap.Connections
	s.undo, s.redo = nil, nil
}

// Undo restores the state before the last mutation.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return false
	}
	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.snapshotLocked())
	s.elements, s.connections = last.Elements, last.Connections
	return true
}

func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.snapshotLocked())
	s.elements, s.connections = next.Elements, next.Connections
	return true
}
