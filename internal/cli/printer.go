package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/egorlepa/mullctl/internal/verify"
)

// Printer renders messages and reports with colour. Colour is dropped
// automatically when w is not a terminal.
type Printer struct {
	w      io.Writer
	green  lipgloss.Style
	red    lipgloss.Style
	yellow lipgloss.Style
	bold   lipgloss.Style
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		green:  r.NewStyle().Foreground(lipgloss.Color("10")),
		red:    r.NewStyle().Foreground(lipgloss.Color("9")),
		yellow: r.NewStyle().Foreground(lipgloss.Color("11")),
		bold:   r.NewStyle().Bold(true),
	}
}

// Success prints a green line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.green.Render(fmt.Sprintf(format, args...)))
}

// Alert prints a red line.
func (p *Printer) Alert(format string, args ...any) {
	fmt.Fprintln(p.w, p.red.Render(fmt.Sprintf(format, args...)))
}

// Notice prints a yellow line.
func (p *Printer) Notice(format string, args ...any) {
	fmt.Fprintln(p.w, p.yellow.Render(fmt.Sprintf(format, args...)))
}

// Println prints an unstyled line.
func (p *Printer) Println(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Highlight returns s in yellow, for use inside a line.
func (p *Printer) Highlight(s string) string {
	return p.yellow.Render(s)
}

// Report prints the verification verdict followed by the exit-node details.
func (p *Printer) Report(res *verify.Result) {
	target := ""
	if res.Target != "" {
		target = " to " + res.Target
	}
	if res.MatchesTarget {
		p.Success("Connection verified%s.", target)
	} else {
		p.Alert("Unable to verify connection%s.", target)
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.bold.Render("VPN Connection Status"))
	fmt.Fprintln(p.w, "---------------------")
	fmt.Fprintf(p.w, "IP Address: %s\n", res.IP)
	fmt.Fprintf(p.w, "Country: %s\n", res.Country)
	fmt.Fprintf(p.w, "City: %s\n", res.City)
	fmt.Fprintf(p.w, "Longitude: %v\n", res.Longitude)
	fmt.Fprintf(p.w, "Latitude: %v\n", res.Latitude)
	fmt.Fprintf(p.w, "VPN Server Type: %s\n", res.ServerType)
	fmt.Fprintf(p.w, "Blacklisted: %t\n", res.Blacklisted)
	fmt.Fprintf(p.w, "Exit Status (IP): %s\n", res.ExitIP)
	fmt.Fprintf(p.w, "Exit Status (Hostname): %s\n", res.ExitHostname)
}
