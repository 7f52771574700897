package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/foomo/menuserver/menu"
	"github.com/mattn/go-isatty"
)

type (
	// Styles of the tree printer
	Styles struct {
		Branch   lipgloss.Style
		Text     lipgloss.Style
		URL      lipgloss.Style
		Fragment lipgloss.Style
		Summary  lipgloss.Style
	}
	treePrinter struct {
		styles   Styles
		urls     bool
		maxDepth int
	}
	Option func(*treePrinter)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithStyles(v Styles) Option {
	return func(o *treePrinter) {
		o.styles = v
	}
}

func WithURLs(v bool) Option {
	return func(o *treePrinter) {
		o.urls = v
	}
}

// WithMaxDepth number of levels to print, 0 for all of them
func WithMaxDepth(v int) Option {
	return func(o *treePrinter) {
		o.maxDepth = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// PlainStyles renders without escape sequences
func PlainStyles() Styles {
	return Styles{
		Branch:   lipgloss.NewStyle(),
		Text:     lipgloss.NewStyle(),
		URL:      lipgloss.NewStyle(),
		Fragment: lipgloss.NewStyle(),
		Summary:  lipgloss.NewStyle(),
	}
}

// ColorStyles for terminals
func ColorStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Branch:   r.NewStyle().Faint(true),
		Text:     r.NewStyle().Bold(true),
		URL:      r.NewStyle().Foreground(lipgloss.Color("6")),
		Fragment: r.NewStyle().Foreground(lipgloss.Color("5")),
		Summary:  r.NewStyle().Faint(true).Italic(true),
	}
}

// StylesFor picks color styles when w is a terminal
func StylesFor(w io.Writer) Styles {
	if IsTerminal(w) {
		return ColorStyles(w)
	}
	return PlainStyles()
}

// IsTerminal whether w writes to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Tree prints the menu as an indented tree followed by a summary line
func Tree(w io.Writer, m *menu.Menu, opts ...Option) error {
	p := &treePrinter{
		styles: PlainStyles(),
		urls:   true,
	}
	for _, opt := range opts {
		opt(p)
	}

	t := tree.New().
		EnumeratorStyle(p.styles.Branch.PaddingRight(1)).
		ItemStyle(lipgloss.NewStyle())
	for _, n := range m.Children {
		t.Child(p.node(n, 1))
	}

	var sb strings.Builder
	if out := t.String(); out != "" {
		sb.WriteString(out)
		sb.WriteString("\n")
	}
	sb.WriteString(p.styles.Summary.Render(fmt.Sprintf("%d nodes, %d levels", m.Count(), levels(m))))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// node returns a plain label for leaves and for the last printed level
func (p *treePrinter) node(n *menu.Node, depth int) any {
	label := p.label(n)
	if len(n.Children) == 0 || (p.maxDepth > 0 && depth >= p.maxDepth) {
		return label
	}
	t := tree.Root(label)
	for _, c := range n.Children {
		t.Child(p.node(c, depth+1))
	}
	return t
}

func (p *treePrinter) label(n *menu.Node) string {
	ret := p.styles.Text.Render(n.Text)
	if p.urls {
		ret += "  " + p.url(n)
	}
	return ret
}

func (p *treePrinter) url(n *menu.Node) string {
	loc, err := n.Locator()
	if err != nil {
		return p.styles.URL.Render(n.URL)
	}
	ret := p.styles.URL.Render(loc.Page)
	if loc.HasFragment() {
		ret += p.styles.Fragment.Render(menu.FragmentSeparator + loc.Fragment)
	}
	return ret
}

func levels(m *menu.Menu) int {
	ret := 0
	_ = m.Walk(func(_ *menu.Node, _ []*menu.Node, depth int) error {
		if depth+1 > ret {
			ret = depth + 1
		}
		return nil
	})
	return ret
}
