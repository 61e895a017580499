package textfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/npillmayer/flattree"
)

// TabWidth is the number of indentation positions a tab counts for.
const TabWidth = 4

// ErrNotRegular is returned by Load for paths which are not regular files.
var ErrNotRegular = errors.New("textfile: not a regular file")

// Entry is a line of an outline.
type Entry struct {
	Text     string                 // line content without indentation
	Line     int                    // 1-based line number, 0 for created entries
	Children *flattree.List[*Entry] // never nil
}

// NewEntry creates an entry with children.
func NewEntry(text string, children ...*Entry) *Entry {
	return &Entry{Text: text, Children: flattree.NewList(children...)}
}

func (e *Entry) String() string {
	return e.Text
}

// Outline is the list of top-level entries of an outline.
type Outline = flattree.List[*Entry]

// Parse reads an outline. Blank lines are skipped.
func Parse(r io.Reader) (*Outline, error) {
	roots := flattree.NewList[*Entry]()
	type level struct {
		indent int
		list   *flattree.List[*Entry]
	}
	stack := []level{{indent: -1, list: roots}}
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		indent, text := splitIndent(line)
		for len(stack) > 1 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		e := &Entry{Text: text, Line: lineno, Children: flattree.NewList[*Entry]()}
		stack[len(stack)-1].list.Append(e)
		stack = append(stack, level{indent: indent, list: e.Children})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("textfile: reading outline, line %d: %w", lineno, err)
	}
	tracer().Debugf("parsed outline with %d lines, %d top-level entries", lineno, roots.Len())
	return roots, nil
}

// Load reads an outline from a file.
func Load(name string) (*Outline, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	} else if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Write outputs an outline, indenting every level by indent spaces.
func Write(w io.Writer, outline *Outline, indent int) error {
	bw := bufio.NewWriter(w)
	var write func(list *flattree.List[*Entry], depth int)
	write = func(list *flattree.List[*Entry], depth int) {
		for _, e := range list.All() {
			bw.WriteString(strings.Repeat(" ", depth*indent))
			bw.WriteString(e.Text)
			bw.WriteByte('\n')
			write(e.Children, depth+1)
		}
	}
	write(outline, 0)
	return bw.Flush()
}

func splitIndent(line string) (int, string) {
	indent := 0
	for i, r := range line {
		switch r {
		case ' ':
			indent++
		case '\t':
			indent += TabWidth - indent%TabWidth
		default:
			return indent, line[i:]
		}
	}
	return indent, ""
}

// Children is the children selector for entries.
func Children(e *Entry) flattree.Children[*Entry] {
	return e.Children
}

// Options returns model options for outlines, using settings for the
// scalar part.
func Options(settings flattree.Settings) flattree.Options[*Entry] {
	return flattree.Options[*Entry]{
		Children: Children,
		Settings: settings,
	}
}

// NewModel creates a model showing an outline. The model follows edits of
// the outline, including edits of its top-level list.
func NewModel(outline *Outline, settings flattree.Settings) (*flattree.Model[*Entry], error) {
	m, err := flattree.New(Options(settings))
	if err != nil {
		return nil, err
	}
	if err := m.SetRootSource(outline); err != nil {
		return nil, err
	}
	return m, nil
}
