package models

// Column, Table and Relationship are the entity-relationship view of a
// project used by the exporters. Key flags live on the column because
// column names within a table need not be unique.
type Column struct {
	Name       string
	DataType   string
	PrimaryKey bool
	ForeignKey bool
}

// ForeignKey marks a column that an incoming connection points at.
type ForeignKey struct {
	FromColumn string
	ToTable    string
	ToColumn   string
}

type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

type Relationship struct {
	FromTable string
	ToTable   string
	Type      string // "||--o{", "||--||", etc.
	Label     string
}
