package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"labserve/config"
)

// nameWidth is the column the lab name is padded to on a started line.
const nameWidth = 20

// Reporter receives the launcher's progress. Implementations must be safe for
// concurrent use: labs start in parallel.
type Reporter interface {
	Banner()
	Skipped(lab config.LabEntry, path string)
	Started(lab config.LabEntry, url string)
	Failed(lab config.LabEntry, err error)
	Serving(started, total int)
	ShuttingDown()
}

// Console writes the launcher's progress as plain lines, colored when the
// output is a terminal.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	titleStyle lipgloss.Style
	skipStyle  lipgloss.Style
	nameStyle  lipgloss.Style
	urlStyle   lipgloss.Style
	failStyle  lipgloss.Style
	dimStyle   lipgloss.Style
}

var _ Reporter = (*Console)(nil)

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	renderer := lipgloss.NewRenderer(out)
	if !isTerminal(out) {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &Console{
		out:        out,
		titleStyle: renderer.NewStyle().Bold(true),
		skipStyle:  renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B58900", Dark: "#FFD75F"}),
		nameStyle:  renderer.NewStyle().Foreground(lipgloss.Color("205")),
		urlStyle:   renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#00FF00"}),
		failStyle:  renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF0000"}),
		dimStyle:   renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#7A7474", Dark: "#9C9494"}),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *Console) println(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) Banner() {
	c.println("%s", c.titleStyle.Render("Starting test lab servers..."))
}

func (c *Console) Skipped(lab config.LabEntry, path string) {
	c.println("  %s %s: %s not found", c.skipStyle.Render("SKIP"), lab.Name, path)
}

func (c *Console) Started(lab config.LabEntry, url string) {
	name := c.nameStyle.Render(runewidth.FillRight(lab.Name, nameWidth))
	c.println("  %s -> %s  %s", name, c.urlStyle.Render(url), c.dimStyle.Render("("+lab.Dir+")"))
}

func (c *Console) Failed(lab config.LabEntry, err error) {
	c.println("  %s %s: %v", c.failStyle.Render("FAIL"), lab.Name, err)
}

func (c *Console) Serving(started, total int) {
	c.println("\n  %d of %d labs serving. Press Ctrl+C to stop.\n", started, total)
}

func (c *Console) ShuttingDown() {
	c.println("\nShutting down...")
}
