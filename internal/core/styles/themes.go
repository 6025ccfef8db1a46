package styles

import (
	"fmt"
	"image/color"
	"maps"
	"slices"
	"strings"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    color.Color
	Secondary  color.Color
	Foreground color.Color
	Muted      color.Color
	Background color.Color
	Surface    color.Color
	Success    color.Color
	Warning    color.Color
	Error      color.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// Roles are the palette keys accepted by tui.colors, in Palette field order.
var Roles = []string{
	"primary", "secondary", "foreground", "muted", "background",
	"surface", "success", "warning", "error",
}

// themeHex lists hex colors in Roles order.
type themeHex [9]string

var themes = map[string]themeHex{
	"tokyo-night": {"#7aa2f7", "#7dcfff", "#c0caf5", "#565f89", "#1a1b26", "#3b4261", "#9ece6a", "#e0af68", "#f7768e"},
	"gruvbox":     {"#83a598", "#8ec07c", "#ebdbb2", "#665c54", "#282828", "#3c3836", "#b8bb26", "#fabd2f", "#fb4934"},
	// Catppuccin mocha: blue, teal, text, overlay0, base, surface0, green, yellow, red.
	"catppuccin": {"#89b4fa", "#94e2d5", "#cdd6f4", "#6c7086", "#1e1e2e", "#313244", "#a6e3a1", "#f9e2af", "#f38ba8"},
	"onedark":    {"#61afef", "#56b6c2", "#abb2bf", "#5c6370", "#282c34", "#3e4452", "#98c379", "#e5c07b", "#e06c75"},
	// High contrast for light terminals.
	"paper": {"#1d4ed8", "#0e7490", "#1f2937", "#6b7280", "#fafaf9", "#e7e5e4", "#15803d", "#b45309", "#b91c1c"},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	return slices.Sorted(maps.Keys(themes))
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	hexes, ok := themes[name]
	if !ok {
		return Palette{}, false
	}

	var p Palette
	for i, role := range Roles {
		c, _ := colorful.Hex(hexes[i])
		*p.slot(role) = c
	}
	return p, true
}

// ResolvePalette looks up a theme and applies per-role hex overrides to it.
func ResolvePalette(name string, overrides map[string]string) (Palette, error) {
	p, ok := GetPalette(name)
	if !ok {
		return Palette{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}

	for role, hex := range overrides {
		slot := p.slot(strings.ToLower(role))
		if slot == nil {
			return Palette{}, fmt.Errorf("unknown color role %q (available: %s)", role, strings.Join(Roles, ", "))
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return Palette{}, fmt.Errorf("color %s: %q is not a #rrggbb value", role, hex)
		}
		*slot = c
	}
	return p, nil
}

func (p *Palette) slot(role string) *color.Color {
	switch role {
	case "primary":
		return &p.Primary
	case "secondary":
		return &p.Secondary
	case "foreground":
		return &p.Foreground
	case "muted":
		return &p.Muted
	case "background":
		return &p.Background
	case "surface":
		return &p.Surface
	case "success":
		return &p.Success
	case "warning":
		return &p.Warning
	case "error":
		return &p.Error
	}
	return nil
}

func hexOf(c color.Color) *string {
	if c == nil {
		return nil
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a Glamour style config derived from the active theme.
// The help overlay renders key bindings as list items with bold keys.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	p := CurrentPalette
	fg := hexOf(p.Foreground)
	primary := hexOf(p.Primary)
	accent := hexOf(p.Secondary)
	muted := hexOf(p.Muted)

	for _, field := range []**string{&cfg.Document.Color, &cfg.Paragraph.Color, &cfg.Item.Color, &cfg.Table.Color, &cfg.H1.Color} {
		*field = fg
	}
	for _, field := range []**string{&cfg.Heading.Color, &cfg.H2.Color, &cfg.H3.Color, &cfg.H4.Color, &cfg.H5.Color, &cfg.H6.Color} {
		*field = primary
	}
	cfg.H1.BackgroundColor = hexOf(p.Surface)

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted
	cfg.CodeBlock.Color = muted

	cfg.Link.Color = accent
	cfg.LinkText.Color = accent
	cfg.Code.Color = accent

	cfg.Strong.Color = primary

	return cfg
}
