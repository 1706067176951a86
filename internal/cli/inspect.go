package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/io"
)

var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	detailKey     = lipgloss.NewStyle().Foreground(colorGray).Width(18)
	detailBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	filterPrompt  = lipgloss.NewStyle().Foreground(colorCyan)
	selectedStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags collectFlags

	cmd := &cobra.Command{
		Use:   "inspect <metadata.json|->",
		Short: "Browse the catalog interactively",
		Long: `Browse the catalog interactively.

  ↑/↓ or j/k   move
  enter        show or hide details
  /            filter by package name
  q            quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == stdinArg {
				return fmt.Errorf("inspect needs a file; stdin is used by the terminal")
			}
			opts, err := flags.options(cmd, c.Config)
			if err != nil {
				return err
			}
			result, err := c.runCollect(cmd.Context(), cmd.InOrStdin(), args[0], opts, flags.noCache)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newInspectModel(result.Catalog), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// inspectModel - Interactive catalog browser
// =============================================================================

type inspectModel struct {
	catalog []*deps.Dependency
	visible []int // indexes into catalog matching filter

	cursor   int // index into visible
	offset   int
	height   int
	expanded bool

	filtering bool
	filter    string
}

func newInspectModel(catalog []*deps.Dependency) inspectModel {
	m := inspectModel{catalog: catalog, height: 15}
	m.applyFilter()
	return m
}

func (m *inspectModel) applyFilter() {
	m.visible = nil
	needle := strings.ToLower(m.filter)
	for i, d := range m.catalog {
		if strings.Contains(strings.ToLower(d.PackageName), needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor, m.offset = 0, 0
}

// selected returns the entry under the cursor, or nil.
func (m inspectModel) selected() *deps.Dependency {
	if m.cursor >= len(m.visible) {
		return nil
	}
	return m.catalog[m.visible[m.cursor]]
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.expanded = !m.expanded
		case "/":
			m.filtering = true
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m inspectModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
		m.applyFilter()
	case tea.KeyBackspace:
		if m.filter != "" {
			r := []rune(m.filter)
			m.filter = string(r[:len(r)-1])
			m.applyFilter()
		}
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
		m.applyFilter()
	}
	return m, nil
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dependency Catalog"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  / filter  q quit"))
	b.WriteString("\n")
	if m.filtering || m.filter != "" {
		b.WriteString(filterPrompt.Render("/") + m.filter)
		if m.filtering {
			b.WriteString("█")
		}
	}
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.visible))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, io.Row(m.catalog[m.visible[i]])...))
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(append([]string{""}, io.TableHeaders...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case m.offset+row == m.cursor:
				return selectedStyle
			case col == 2 || col == 5:
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.cursor+1, len(m.visible)), len(m.visible))))

	if d := m.selected(); m.expanded && d != nil {
		b.WriteString("\n")
		b.WriteString(detailBox.Render(details(d)))
	}
	return b.String()
}

// details renders everything the catalog records about d.
func details(d *deps.Dependency) string {
	var lines []string
	add := func(k, v string) {
		lines = append(lines, detailKey.Render(k)+StyleValue.Render(v))
	}

	add("package", d.Key().String())
	add("version", d.Version)
	if d.Local {
		add("source", "local")
	}
	if d.ManifestPath != "" {
		add("manifest", d.ManifestPath)
	}
	if len(d.Features) > 0 {
		add("declares", strings.Join(d.Features, " "))
	}
	for _, k := range d.Kinds() {
		info := d.Kind(k)
		features := strings.Join(info.Features, " ")
		if features == "" {
			features = "-"
		}
		add(k.String()+" features", features)
		if info.Platforms != nil {
			add(k.String()+" targets", strings.Join(info.Platforms, ", "))
		}
	}
	for _, k := range deps.AllKinds {
		keys := d.Dependencies[k]
		if len(keys) == 0 {
			continue
		}
		names := make([]string, len(keys))
		for i, key := range keys {
			names[i] = key.String()
		}
		add(k.String()+" deps", strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}
