package ui

import (
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects how deploy and status results are presented
type Format string

const (
	// FormatAuto picks terminal or text depending on where output goes
	FormatAuto Format = "auto"
	// FormatTerminal draws boxed, colored reports
	FormatTerminal Format = "terminal"
	// FormatText prints the same sections without styling
	FormatText Format = "text"
	// FormatJSON and FormatYAML emit one document per result
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var formatAliases = map[string]Format{
	"":      FormatAuto,
	"term":  FormatTerminal,
	"plain": FormatText,
	"yml":   FormatYAML,
}

// Formats lists the canonical format names
func Formats() []Format {
	return []Format{FormatAuto, FormatText, FormatTerminal, FormatJSON, FormatYAML}
}

// String returns the canonical name
func (f Format) String() string {
	return string(f)
}

// Structured reports whether the format is meant for other programs.
// Structured output goes to stdout even for failures.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}

// ParseFormat accepts a canonical name or one of its aliases, in any case
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	for _, f := range Formats() {
		if string(f) == name {
			return f, nil
		}
	}

	known := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		known = append(known, f.String())
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown output format %q", s).
		WithDetail("known", strings.Join(known, ", "))
}

// Resolve replaces FormatAuto with the format suited to w. Only a color
// capable terminal gets FormatTerminal. NO_COLOR, pipes, files and
// in-memory writers get FormatText.
func (f Format) Resolve(w io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	file, ok := w.(*os.File)
	if !ok || (!isatty.IsTerminal(file.Fd()) && !isatty.IsCygwinTerminal(file.Fd())) {
		return FormatText
	}
	if termenv.NewOutput(file).ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
