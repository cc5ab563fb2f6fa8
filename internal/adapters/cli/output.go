package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	grayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

type Output struct {
	out          io.Writer
	errOut       io.Writer
	enableColors bool
}

func NewOutput() *Output {
	return &Output{
		out:          os.Stdout,
		errOut:       os.Stderr,
		enableColors: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewWriterOutput writes both streams to w without colors.
func NewWriterOutput(w io.Writer) *Output {
	return &Output{out: w, errOut: w}
}

func (o *Output) DisableColors() {
	o.enableColors = false
}

func (o *Output) render(style lipgloss.Style, text string) string {
	if !o.enableColors {
		return text
	}
	return style.Render(text)
}

func (o *Output) Green(text string) string  { return o.render(greenStyle, text) }
func (o *Output) Yellow(text string) string { return o.render(yellowStyle, text) }
func (o *Output) Red(text string) string    { return o.render(redStyle, text) }
func (o *Output) Gray(text string) string   { return o.render(grayStyle, text) }

func (o *Output) PrintHeader(msg string) {
	fmt.Fprintln(o.out, o.render(boldStyle, msg))
	fmt.Fprintln(o.out)
}

func (o *Output) PrintStep(msg string, args ...any) {
	fmt.Fprintf(o.out, "  "+msg+"\n", args...)
}

func (o *Output) PrintSuccess(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	fmt.Fprintf(o.out, "  "+o.Green("✓ ")+"%s\n", formatted)
}

func (o *Output) PrintWarning(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	fmt.Fprintf(o.out, "  "+o.Yellow("⚠ ")+"%s\n", formatted)
}

func (o *Output) PrintError(msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	fmt.Fprintf(o.errOut, "  "+o.Red("✗ ")+"%s\n", formatted)
}

func (o *Output) PrintFile(path string) {
	fmt.Fprintf(o.out, "    %s\n", o.Gray(path))
}

func (o *Output) PrintDone(msg string) {
	fmt.Fprintln(o.out, msg)
}

func (o *Output) Writer() io.Writer    { return o.out }
func (o *Output) ErrWriter() io.Writer { return o.errOut }
