package tui

import (
	"github.com/charmbracelet/lipgloss"

	"baymap/internal/editor"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	errorFg   = lipgloss.Color("#F87171")
	borderCol = lipgloss.Color("#243141")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	errStyle   = lipgloss.NewStyle().Foreground(errorFg)
	modeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0B0F14")).Background(accentFg).Padding(0, 1)
)

// roleBase draws the reference base map under the overlays.
const roleBase = "base"

// theme is a map style: one foreground per overlay role.
type theme struct {
	name  string
	roles map[string]lipgloss.Style
}

var themeNames = []string{"dark", "light", "contrast"}

var themes = map[string]theme{
	"dark": {name: "dark", roles: map[string]lipgloss.Style{
		roleBase:            lipgloss.NewStyle().Foreground(lipgloss.Color("#3B4756")),
		editor.RoleBay:      lipgloss.NewStyle().Foreground(lipgloss.Color("#38BDF8")),
		editor.RoleSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FACC15")),
		editor.RoleDraft:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4ADE80")),
		editor.RoleHandle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true),
	}},
	"light": {name: "light", roles: map[string]lipgloss.Style{
		roleBase:            lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		editor.RoleBay:      lipgloss.NewStyle().Foreground(lipgloss.Color("#1D4ED8")),
		editor.RoleSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("#B45309")),
		editor.RoleDraft:    lipgloss.NewStyle().Foreground(lipgloss.Color("#15803D")),
		editor.RoleHandle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true),
	}},
	"contrast": {name: "contrast", roles: map[string]lipgloss.Style{
		roleBase:            lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Faint(true),
		editor.RoleBay:      lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")),
		editor.RoleSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true),
		editor.RoleDraft:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true),
		editor.RoleHandle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF00FF")).Bold(true),
	}},
}

// style returns the style for a role; unknown roles render unstyled.
func (t theme) style(role string) lipgloss.Style {
	if s, ok := t.roles[role]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// nextTheme cycles through themeNames.
func nextTheme(name string) string {
	for i, n := range themeNames {
		if n == name {
			return themeNames[(i+1)%len(themeNames)]
		}
	}
	return themeNames[0]
}
