package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"datadesigner/internal/diagram"
	"datadesigner/internal/dto"
)

func (a *app) projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List your projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.client().UserData(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderProjects(data.Projects))
			return nil
		},
	}
}

func (a *app) newProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new-project NAME",
		Short: "Create an empty project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.client().CreateProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename PROJECT NAME",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client().RenameProject(cmd.Context(), args[0], args[1])
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PROJECT",
		Short: "Delete a project and its diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client().DeleteProject(cmd.Context(), args[0])
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT",
		Short: "Print the tables and relationships of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := diagram.NewStore()
			project, err := a.client().Load(cmd.Context(), args[0], store)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDiagram(project.Name, store.Elements(), store.Connections()))
			return nil
		},
	}
}

func (a *app) addTableCmd() *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "add-table PROJECT NAME [COLUMN:TYPE ...]",
		Short: "Add a table with the default id and created_at columns",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, err := parseColumns(args[2:])
			if err != nil {
				return err
			}

			c := a.client()
			store := diagram.NewStore()
			if _, err := c.Load(cmd.Context(), args[0], store); err != nil {
				return err
			}
			if _, ok := findElement(store, args[1]); ok {
				return fmt.Errorf("table %q already exists", args[1])
			}

			el := store.AddElement(diagram.KindTable)
			store.RenameElement(el.ID, args[1])
			for _, col := range columns {
				store.AddField(el.ID, col.name, col.typ)
			}
			if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
				store.UpdateElementPosition(el.ID, x, y)
			}

			if _, err := c.Save(cmd.Context(), args[0], store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), el.ID)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", diagram.DefaultX, "canvas x position")
	cmd.Flags().Float64Var(&y, "y", diagram.DefaultY, "canvas y position")
	return cmd
}

func (a *app) dropTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop-table PROJECT TABLE",
		Short: "Remove a table and every relationship touching it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			store := diagram.NewStore()
			if _, err := c.Load(cmd.Context(), args[0], store); err != nil {
				return err
			}
			el, ok := findElement(store, args[1])
			if !ok {
				return fmt.Errorf("no table %q", args[1])
			}
			store.DeleteElement(el.ID)
			_, err := c.Save(cmd.Context(), args[0], store)
			return err
		},
	}
}

func (a *app) connectCmd() *cobra.Command {
	var fromCol, toCol, kind, label string
	cmd := &cobra.Command{
		Use:   "connect PROJECT FROM TO",
		Short: "Draw a relationship between two tables",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel := diagram.RelationKind(kind)
			if !rel.Valid() {
				return fmt.Errorf("unknown relationship %q", kind)
			}

			c := a.client()
			store := diagram.NewStore()
			if _, err := c.Load(cmd.Context(), args[0], store); err != nil {
				return err
			}
			from, ok := findElement(store, args[1])
			if !ok {
				return fmt.Errorf("no table %q", args[1])
			}
			to, ok := findElement(store, args[2])
			if !ok {
				return fmt.Errorf("no table %q", args[2])
			}
			fromField, err := fieldID(from, fromCol)
			if err != nil {
				return err
			}
			toField, err := fieldID(to, toCol)
			if err != nil {
				return err
			}

			ctrl := diagram.NewController(store)
			ctrl.StartConnection(from.ID, fromField)
			id, ok := ctrl.CompleteConnection(to.ID, toField)
			if !ok {
				return fmt.Errorf("a table cannot be connected to itself")
			}
			store.SetConnectionKind(id, rel)
			if label != "" {
				store.StyleConnection(id, diagram.ConnectionStyle{Label: label})
			}

			if _, err := c.Save(cmd.Context(), args[0], store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&fromCol, "from-column", "", "column on the source table")
	cmd.Flags().StringVar(&toCol, "to-column", "", "column on the target table")
	cmd.Flags().StringVar(&kind, "kind", string(diagram.OneToMany), "one-to-one, one-to-many or many-to-many")
	cmd.Flags().StringVar(&label, "label", "", "relationship label")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export PROJECT",
		Short: "Export a project as a Mermaid ER diagram or a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			switch format {
			case "mermaid":
				text, err := c.ExportMermaid(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == "" {
					fmt.Fprint(cmd.OutOrStdout(), text)
					return nil
				}
				return os.WriteFile(output, []byte(text), 0o644)
			case "png":
				if output == "" {
					return fmt.Errorf("png export needs --output")
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := c.ExportPNG(cmd.Context(), args[0], f); err != nil {
					f.Close()
					os.Remove(output)
					return err
				}
				return f.Close()
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "mermaid or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

type column struct {
	name string
	typ  diagram.FieldType
}

func parseColumns(args []string) ([]column, error) {
	cols := make([]column, 0, len(args))
	for _, arg := range args {
		name, typ, ok := strings.Cut(arg, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("column %q must look like name:type", arg)
		}
		ft := diagram.FieldType(strings.ToLower(typ))
		if !ft.Valid() {
			return nil, fmt.Errorf("column %q has unsupported type %q", name, typ)
		}
		cols = append(cols, column{name: name, typ: ft})
	}
	return cols, nil
}

// findElement matches by id first, then by name.
func findElement(store *diagram.Store, ref string) (diagram.Element, bool) {
	if el, ok := store.Element(ref); ok {
		return el, true
	}
	for _, el := range store.Elements() {
		if el.Name == ref {
			return el, true
		}
	}
	return diagram.Element{}, false
}

// fieldID resolves a column name on el. An empty name anchors the
// relationship to the table itself.
func fieldID(el diagram.Element, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	for _, f := range el.Fields {
		if f.Name == name {
			return f.ID, nil
		}
	}
	return "", fmt.Errorf("table %q has no column %q", el.Name, name)
}

func renderProjects(projects []dto.ProjectSummary) string {
	if len(projects) == 0 {
		return "no projects\n"
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-36s  %-24s  %s", "ID", "NAME", "UPDATED")))
	sb.WriteByte('\n')
	for _, p := range projects {
		fmt.Fprintf(&sb, "%-36s  %-24s  %s\n", p.ID, p.Name, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return sb.String()
}
