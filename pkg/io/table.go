package io

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cratecat/pkg/deps"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = cellStyle.Foreground(lipgloss.Color("240"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TableHeaders are the column titles of [Table].
var TableHeaders = []string{"Package", "Epoch", "Version", "Kinds", "Features"}

// Table renders a catalog as a terminal table. Features are the union across
// kinds; platform-conditional kinds are marked with "*".
func Table(catalog []*deps.Dependency) string {
	rows := make([][]string, len(catalog))
	for i, d := range catalog {
		rows[i] = Row(d)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(TableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1 || col == 4:
				return dimStyle
			default:
				return cellStyle
			}
		}).
		String()
}

// Row returns the table cells for one dependency.
func Row(d *deps.Dependency) []string {
	var kinds []string
	features := make([]deps.FeatureSet, 0, len(d.DependencyKinds))
	for _, k := range d.Kinds() {
		info := d.Kind(k)
		name := k.String()
		if info.Platforms != nil {
			name += "*"
		}
		kinds = append(kinds, name)
		features = append(features, deps.NewFeatureSet(info.Features...))
	}
	version := d.Version
	if d.Local {
		version += " (local)"
	}
	return []string{
		d.PackageName,
		d.Epoch.String(),
		version,
		strings.Join(kinds, ","),
		strings.Join(deps.UnionAll(features...).Sorted(), " "),
	}
}
