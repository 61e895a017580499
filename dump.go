package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
	"golang.org/x/term"
)

// DumpConfig configures the console output of Dump.
type DumpConfig struct {
	LineWidth int            // in fixed width positions
	Context   *uax11.Context // for the display width of labels
	Indent    int            // positions per depth level
	Palette   *Palette       // nil for uncolored output
}

// Palette maps parts of a row to colors.
type Palette struct {
	Expanded  *color.Color
	Collapsed *color.Color
	Leaf      *color.Color
	Count     *color.Color
}

// DefaultPalette is the palette used by ConfigFromTerminal.
func DefaultPalette() *Palette {
	return &Palette{
		Expanded:  color.New(color.FgGreen),
		Collapsed: color.New(color.FgBlue),
		Leaf:      color.New(color.Faint),
		Count:     color.New(color.FgRed),
	}
}

// ConfigFromTerminal is a simple helper for creating a DumpConfig.
// It checks wether stdout is a terminal, and if so it reads the terminal's
// width and sets the LineWidth parameter accordingly.
func ConfigFromTerminal() *DumpConfig {
	config := &DumpConfig{Indent: 2, Palette: DefaultPalette()}
	config.LineWidth = 80
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			config.LineWidth = w
		}
	}
	config.Context = uax11.ContextFromEnvironment()
	tracer().P("dump", "console").Infof("setting line length to %d en", config.LineWidth)
	return config
}

var setupGraphemes sync.Once

// Dump outputs the flattened view of a model, one row per line (for
// debugging purposes). Every row is indented by its depth and shows an
// expansion marker, its item and, for expanded nodes, the count of visible
// descendants. Labels are truncated to fit the line width.
//
// If config is nil, a configuration is created from the properties of the
// terminal.
func Dump[T comparable](m *Model[T], w io.Writer, config *DumpConfig) error {
	if config == nil {
		config = ConfigFromTerminal()
	}
	if config.Context == nil {
		config.Context = uax11.LatinContext
	}
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	var b strings.Builder
	for _, n := range m.index.nodes() {
		indent := n.depth * config.Indent
		b.WriteString(strings.Repeat(" ", indent))
		marker, c := "•", paletteColor(config.Palette, func(p *Palette) *color.Color { return p.Leaf })
		if n.expanded {
			marker, c = "▼", paletteColor(config.Palette, func(p *Palette) *color.Color { return p.Expanded })
		} else if !n.IsLeaf() {
			marker, c = "▶", paletteColor(config.Palette, func(p *Palette) *color.Color { return p.Collapsed })
		}
		styledText(&b, marker, c)
		b.WriteByte(' ')
		count := ""
		if n.expanded && n.visibleDesc > 0 {
			count = fmt.Sprintf("+%d", n.visibleDesc)
		}
		avail := config.LineWidth - indent - 2
		if count != "" {
			avail -= len(count) + 1
		}
		label, width := truncate(fmt.Sprint(n.item), avail, config.Context)
		b.WriteString(label)
		if count != "" {
			if pad := avail - width; pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
			b.WriteByte(' ')
			styledText(&b, count, paletteColor(config.Palette, func(p *Palette) *color.Color { return p.Count }))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func paletteColor(p *Palette, sel func(*Palette) *color.Color) *color.Color {
	if p == nil {
		return nil
	}
	return sel(p)
}

func styledText(w io.Writer, s string, c *color.Color) {
	if c != nil {
		c.Fprint(w, s)
		return
	}
	io.WriteString(w, s)
}

// truncate shortens s to at most width display positions, marking the cut
// with an ellipsis. It returns the result and its display width.
func truncate(s string, width int, context *uax11.Context) (string, int) {
	if width <= 0 {
		return "", 0
	}
	w := displayWidth(s, context)
	if w <= width {
		return s, w
	}
	runes := []rune(s)
	// longest prefix which leaves room for the ellipsis
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if displayWidth(string(runes[:mid]), context)+1 <= width {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	out := string(runes[:lo]) + "…"
	return out, displayWidth(string(runes[:lo]), context) + 1
}

func displayWidth(s string, context *uax11.Context) int {
	if s == "" {
		return 0
	}
	return uax11.StringWidth(grapheme.StringFromString(s), context)
}
