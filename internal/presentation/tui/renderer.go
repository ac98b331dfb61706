// Package tui renders the interactive wizard in the terminal: section
// headers, the progress bar, and validation feedback.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/veladahq/velada/pkg/domain"
)

// Renderer writes styled wizard output to a terminal.
type Renderer struct {
	out     io.Writer
	profile termenv.Profile
	width   int
}

// NewRenderer creates a renderer for the given writer. Terminal width is
// probed from stdout and falls back to 80 columns when not a tty.
func NewRenderer(out io.Writer) *Renderer {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	return &Renderer{
		out:     out,
		profile: termenv.ColorProfile(),
		width:   width,
	}
}

// SectionHeader prints the section title with its position in the flow.
func (r *Renderer) SectionHeader(section domain.Section, progress domain.Progress) {
	title := termenv.String(section.Name).Foreground(r.profile.Color("#fb923c")).Bold()
	position := termenv.String(fmt.Sprintf("(%d/%d)", progress.Current, progress.Total)).
		Foreground(r.profile.Color("244"))

	fmt.Fprintf(r.out, "\n%s %s\n", title, position)
	fmt.Fprintln(r.out, r.progressBar(progress))
}

// progressBar renders a filled bar proportional to the flow progress.
func (r *Renderer) progressBar(progress domain.Progress) string {
	barWidth := r.width - 10
	if barWidth > 40 {
		barWidth = 40
	}
	if barWidth < 10 {
		barWidth = 10
	}

	filled := 0
	if progress.Total > 0 {
		filled = barWidth * progress.Current / progress.Total
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	styled := termenv.String(bar).Foreground(r.profile.Color("#f472b6"))
	return fmt.Sprintf("%s %3d%%", styled, progress.Percentage)
}

// Prompt prints a field prompt, marking required fields.
func (r *Renderer) Prompt(label string, required bool) {
	marker := ""
	if required {
		marker = termenv.String(" *").Foreground(r.profile.Color("#f87171")).String()
	}
	fmt.Fprintf(r.out, "%s%s: ", label, marker)
}

// Errors prints a validation error map, one field per line.
func (r *Renderer) Errors(errs domain.ErrorMap) {
	if errs.Valid() {
		return
	}
	fmt.Fprintln(r.out)
	for _, field := range errs.Fields() {
		cross := termenv.String("✗").Foreground(r.profile.Color("#f87171"))
		fmt.Fprintf(r.out, "  %s %s: %s\n", cross, field, errs[field])
	}
	fmt.Fprintln(r.out)
}

// Info prints a dimmed informational line.
func (r *Renderer) Info(msg string) {
	fmt.Fprintln(r.out, termenv.String(msg).Foreground(r.profile.Color("244")))
}

// Success prints the submission result.
func (r *Renderer) Success(result *domain.SubmitResult) {
	check := termenv.String("✓").Foreground(r.profile.Color("#34d399")).Bold()
	fmt.Fprintf(r.out, "\n%s Evento creado (id %d)\n", check, result.EventID)
	if result.TypeOfEventID != 0 {
		r.Info(fmt.Sprintf("  tipo de evento: %d", result.TypeOfEventID))
	}
	if result.LocationID != 0 {
		r.Info(fmt.Sprintf("  ubicación: %d", result.LocationID))
	}
}

// Failure prints a submission failure message.
func (r *Renderer) Failure(err error) {
	cross := termenv.String("✗").Foreground(r.profile.Color("#f87171")).Bold()
	fmt.Fprintf(r.out, "\n%s %v\n", cross, err)
}
