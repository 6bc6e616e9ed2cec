// Package diagram holds the client-side editor core: the element and
// connection model of one open project, the layout geometry derived from it
// and the pointer-driven interaction controller that mutates it.
package diagram

type FieldType string

const (
	FieldInteger   FieldType = "integer"
	FieldText      FieldType = "text"
	FieldVarchar   FieldType = "varchar"
	FieldBoolean   FieldType = "boolean"
	FieldTimestamp FieldType = "timestamp"
	FieldDate      FieldType = "date"
	FieldFloat     FieldType = "float"
	FieldJSON      FieldType = "json"
)

var fieldTypes = map[FieldType]bool{
	FieldInteger:   true,
	FieldText:      true,
	FieldVarchar:   true,
	FieldBoolean:   true,
	FieldTimestamp: true,
	FieldDate:      true,
	FieldFloat:     true,
	FieldJSON:      true,
}

// Valid reports whether t is one of the supported column types.
func (t FieldType) Valid() bool {
	return fieldTypes[t]
}

type RelationKind string

const (
	OneToOne   RelationKind = "one-to-one"
	OneToMany  RelationKind = "one-to-many"
	ManyToMany RelationKind = "many-to-many"
)

func (k RelationKind) Valid() bool {
	switch k {
	case OneToOne, OneToMany, ManyToMany:
		return true
	}
	return false
}

// KindTable is the only element kind the editor produces.
const KindTable = "table"

type Field struct {
	ID        string
	Name      string
	Type      FieldType
	IsPrimary bool
}

type Element struct {
	ID     string
	Kind   string
	Name   string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Fields []Field
}

// FieldIndex returns the position of the field with the given id, or -1.
func (e *Element) FieldIndex(fieldID string) int {
	for i := range e.Fields {
		if e.Fields[i].ID == fieldID {
			return i
		}
	}
	return -1
}

func (e Element) clone() Element {
	out := e
	out.Fields = append([]Field(nil), e.Fields...)
	return out
}

type Connection struct {
	ID          string
	From        string
	To          string
	FromField   string
	ToField     string
	Kind        RelationKind
	Color       string
	StrokeWidth float64
	Label       string
}

// Snapshot is a detached copy of every element and connection in a store.
type Snapshot struct {
	Elements    []Element
	Connections []Connection
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Elements:    make([]Element, len(s.Elements)),
		Connections: append([]Connection(nil), s.Connections...),
	}
	for i, el := range s.Elements {
		out.Elements[i] = el.clone()
	}
	return out
}
