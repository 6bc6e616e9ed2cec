package services

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/diagram"
	"datadesigner/internal/models"
)

const (
	exportPadding  = 40.0
	maxExportPixel = 8192
)

// ExportService renders stored projects as Mermaid ER diagrams or PNG
// images.
type ExportService struct {
	projects *ProjectService
}

func NewExportService(projects *ProjectService) *ExportService {
	return &ExportService{projects: projects}
}

func (s *ExportService) Mermaid(ctx context.Context, userID, projectID uuid.UUID) (string, error) {
	d, err := s.projects.Load(ctx, userID, projectID)
	if err != nil {
		return "", err
	}
	tables, relationships := schemaOf(d.Elements, d.Connections)
	return generateMermaid(tables, relationships), nil
}

// schemaOf derives the entity-relationship view of a diagram. A connection
// that targets a field marks that field as a foreign key on its table.
func schemaOf(elements []models.Element, connections []models.Connection) ([]models.Table, []models.Relationship) {
	byID := make(map[string]models.Element, len(elements))
	for _, el := range elements {
		byID[el.ID] = el
	}

	fieldName := func(el models.Element, fieldID string) string {
		for _, f := range el.Fields {
			if f.ID == fieldID {
				return f.Name
			}
		}
		return ""
	}

	foreignKeys := make(map[string][]models.ForeignKey)
	fkFields := make(map[string]map[string]bool)
	relationships := make([]models.Relationship, 0, len(connections))
	for _, c := range connections {
		from, okFrom := byID[c.SourceID]
		to, okTo := byID[c.TargetID]
		if !okFrom || !okTo {
			continue
		}
		relationships = append(relationships, models.Relationship{
			FromTable: entityName(from),
			ToTable:   entityName(to),
			Type:      mermaidCardinality(c.Kind),
			Label:     c.Label,
		})
		if col := fieldName(to, c.TargetField); col != "" {
			if fkFields[to.ID] == nil {
				fkFields[to.ID] = make(map[string]bool)
			}
			fkFields[to.ID][c.TargetField] = true
			foreignKeys[to.ID] = append(foreignKeys[to.ID], models.ForeignKey{
				FromColumn: col,
				ToTable:    entityName(from),
				ToColumn:   fieldName(from, c.SourceField),
			})
		}
	}

	tables := make([]models.Table, 0, len(elements))
	for _, el := range elements {
		t := models.Table{Name: entityName(el), ForeignKeys: foreignKeys[el.ID]}
		for _, f := range el.Fields {
			t.Columns = append(t.Columns, models.Column{
				Name:       f.Name,
				DataType:   f.Type,
				PrimaryKey: f.IsPrimary,
				ForeignKey: fkFields[el.ID][f.ID],
			})
		}
		tables = append(tables, t)
	}
	return tables, relationships
}

// entityName turns an element name into a Mermaid identifier.
func entityName(el models.Element) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(el.Name))
	if name == "" {
		name = "element_" + el.ID
	}
	return name
}

func mermaidCardinality(kind string) string {
	switch diagram.RelationKind(kind) {
	case diagram.OneToOne:
		return "||--||"
	case diagram.ManyToMany:
		return "}o--o{"
	default:
		return "||--o{"
	}
}

func generateMermaid(tables []models.Table, relationships []models.Relationship) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	if len(relationships) > 0 {
		seen := make(map[string]bool)
		for _, rel := range relationships {
			key := fmt.Sprintf("%s:%s:%s:%s", rel.FromTable, rel.Type, rel.ToTable, rel.Label)
			if seen[key] {
				continue
			}
			seen[key] = true

			// Mermaid requires a label, an empty one renders as nothing.
			sb.WriteString(fmt.Sprintf("    %s %s %s : %q\n",
				strings.ToUpper(rel.FromTable),
				rel.Type,
				strings.ToUpper(rel.ToTable),
				rel.Label))
		}
		sb.WriteString("\n")
	}

	for _, table := range tables {
		sb.WriteString(fmt.Sprintf("    %s {\n", strings.ToUpper(table.Name)))

		for _, col := range table.Columns {
			annotations := ""
			if col.PrimaryKey {
				annotations = " PK"
			}
			if col.ForeignKey {
				if annotations == "" {
					annotations = " FK"
				} else {
					annotations += ", FK"
				}
			}

			sb.WriteString(fmt.Sprintf("        %s %s%s\n",
				simplifyDataType(col.DataType),
				columnName(col.Name),
				annotations))
		}

		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

func columnName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strings.ReplaceAll(name, " ", "_")
}

func simplifyDataType(dataType string) string {
	switch diagram.FieldType(strings.ToLower(dataType)) {
	case diagram.FieldInteger:
		return "int"
	case diagram.FieldTimestamp:
		return "timestamp"
	case diagram.FieldFloat:
		return "float"
	case diagram.FieldBoolean:
		return "boolean"
	case "":
		return "unknown"
	}
	return strings.ToLower(dataType)
}

// PNG draws the project the way the canvas shows it: connections as bezier
// curves underneath, tables on top.
func (s *ExportService) PNG(ctx context.Context, userID, projectID uuid.UUID, w io.Writer) error {
	d, err := s.projects.Load(ctx, userID, projectID)
	if err != nil {
		return err
	}
	return renderPNG(toCanvas(d.Elements), d.Connections, w)
}

func toCanvas(elements []models.Element) []diagram.Element {
	out := make([]diagram.Element, len(elements))
	for i, m := range elements {
		el := diagram.Element{ID: m.ID, Kind: m.Kind, Name: m.Name, Width: m.Width, Height: m.Height}
		if m.X != nil {
			el.X = *m.X
		}
		if m.Y != nil {
			el.Y = *m.Y
		}
		for _, f := range m.Fields {
			el.Fields = append(el.Fields, diagram.Field{ID: f.ID, Name: f.Name, Type: diagram.FieldType(f.Type), IsPrimary: f.IsPrimary})
		}
		if el.Width <= 0 || el.Height <= 0 {
			diagram.Resize(&el)
		}
		out[i] = el
	}
	return out
}

func renderPNG(elements []diagram.Element, connections []models.Connection, w io.Writer) error {
	lo, hi, ok := diagram.Bounds(elements)
	if !ok {
		return apperrors.Validation("nothing to export")
	}
	lo.X -= exportPadding
	lo.Y -= exportPadding
	hi.X += exportPadding
	hi.Y += exportPadding

	width, height := int(hi.X-lo.X), int(hi.Y-lo.Y)
	if width > maxExportPixel || height > maxExportPixel {
		return apperrors.Validation("diagram is too large to export")
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Translate(-lo.X, -lo.Y)

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	byID := make(map[string]diagram.Element, len(elements))
	for _, el := range elements {
		byID[el.ID] = el
	}
	for _, c := range connections {
		from, okFrom := byID[c.SourceID]
		to, okTo := byID[c.TargetID]
		if !okFrom || !okTo {
			continue
		}
		drawConnection(dc, from, to, c)
	}

	for _, el := range elements {
		drawTable(dc, el)
	}

	return dc.EncodePNG(w)
}

func drawConnection(dc *gg.Context, from, to diagram.Element, c models.Connection) {
	p, q := diagram.ConnectionEndpoints(from, to, c.SourceField, c.TargetField)

	lineWidth := c.StrokeWidth
	if lineWidth <= 0 {
		lineWidth = 1.5
	}
	dc.SetLineWidth(lineWidth)
	if strings.HasPrefix(c.Color, "#") {
		dc.SetHexColor(c.Color)
	} else {
		dc.SetColor(color.Black)
	}

	dc.MoveTo(p.X, p.Y)
	dc.CubicTo(p.X+diagram.CurveOffset, p.Y, q.X-diagram.CurveOffset, q.Y, q.X, q.Y)
	dc.Stroke()

	if c.Label != "" {
		dc.DrawStringAnchored(c.Label, (p.X+q.X)/2, (p.Y+q.Y)/2-6, 0.5, 0)
	}
}

func drawTable(dc *gg.Context, el diagram.Element) {
	dc.SetColor(color.White)
	dc.DrawRectangle(el.X, el.Y, el.Width, el.Height)
	dc.Fill()

	dc.SetLineWidth(1)
	dc.SetColor(color.Black)
	dc.DrawRectangle(el.X, el.Y, el.Width, el.Height)
	dc.Stroke()
	dc.DrawLine(el.X, el.Y+diagram.HeaderHeight, el.X+el.Width, el.Y+diagram.HeaderHeight)
	dc.Stroke()

	dc.DrawStringAnchored(el.Name, el.X+el.Width/2, el.Y+diagram.HeaderHeight/2, 0.5, 0.5)

	pad := diagram.CellPadding / 3
	for i, f := range el.Fields {
		rowY := el.Y + diagram.HeaderHeight + float64(i)*diagram.RowHeight + diagram.RowHeight/2
		name := f.Name
		if f.IsPrimary {
			name = "* " + name
		}
		dc.DrawStringAnchored(name, el.X+pad, rowY, 0, 0.5)
		dc.DrawStringAnchored(string(f.Type), el.X+el.Width-pad, rowY, 1, 0.5)
	}
}
