package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"datadesigner/internal/diagram"
)

const tablesPerRow = 3

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	typeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			MarginRight(1)
)

func renderTable(el diagram.Element) string {
	lines := make([]string, 0, len(el.Fields)+1)
	lines = append(lines, titleStyle.Render(el.Name))
	for _, f := range el.Fields {
		marker := "  "
		if f.IsPrimary {
			marker = keyStyle.Render("PK")
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", marker, f.Name, typeStyle.Render(string(f.Type))))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderDiagram lays tables out top to bottom, left to right, in the order
// they sit on the canvas, followed by one line per relationship.
func renderDiagram(name string, elements []diagram.Element, connections []diagram.Connection) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(name))
	sb.WriteString("\n\n")

	if len(elements) == 0 {
		sb.WriteString("(empty)\n")
		return sb.String()
	}

	ordered := append([]diagram.Element(nil), elements...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y < ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	for start := 0; start < len(ordered); start += tablesPerRow {
		end := min(start+tablesPerRow, len(ordered))
		boxes := make([]string, 0, end-start)
		for _, el := range ordered[start:end] {
			boxes = append(boxes, renderTable(el))
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
		sb.WriteByte('\n')
	}

	if len(connections) > 0 {
		byID := make(map[string]diagram.Element, len(elements))
		for _, el := range elements {
			byID[el.ID] = el
		}
		sb.WriteByte('\n')
		for _, c := range connections {
			sb.WriteString(describeConnection(c, byID))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func describeConnection(c diagram.Connection, byID map[string]diagram.Element) string {
	arrow := "──<"
	switch c.Kind {
	case diagram.OneToOne:
		arrow = "───"
	case diagram.ManyToMany:
		arrow = ">─<"
	}
	line := fmt.Sprintf("%s %s %s (%s)", endpoint(byID[c.From], c.FromField), arrow, endpoint(byID[c.To], c.ToField), c.Kind)
	if c.Label != "" {
		line += " " + c.Label
	}
	return line
}

func endpoint(el diagram.Element, fieldID string) string {
	if i := el.FieldIndex(fieldID); i >= 0 {
		return el.Name + "." + el.Fields[i].Name
	}
	return el.Name
}
