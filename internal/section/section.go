// Package section implements the line classifier shared by the text decoders.
//
// A Machine tracks the current `[Section]` and which sections are still enabled,
// strips comments and dispatches data lines to a Handler. Handler errors skip the
// line unless they are wrapped with Fatal.
package section

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Section names a bracketed section of a text file.
type Section string

const (
	None         Section = ""
	General      Section = "General"
	Editor       Section = "Editor"
	Metadata     Section = "Metadata"
	Difficulty   Section = "Difficulty"
	Events       Section = "Events"
	TimingPoints Section = "TimingPoints"
	Colours      Section = "Colours"
	HitObjects   Section = "HitObjects"
	Variables    Section = "Variables"
	Fonts        Section = "Fonts"
	CatchTheBeat Section = "CatchTheBeat"
	Mania        Section = "Mania"
)

var known = map[Section]bool{
	General: true, Editor: true, Metadata: true, Difficulty: true, Events: true,
	TimingPoints: true, Colours: true, HitObjects: true, Variables: true,
	Fonts: true, CatchTheBeat: true, Mania: true,
}

// Known reports whether name is a recognised section.
func Known(name string) (Section, bool) {
	s := Section(name)
	return s, known[s]
}

// LineType is the classification of a processed line.
type LineType int

const (
	LineEmpty LineType = iota
	LineFileFormat
	LineSection
	LineData
	LineBreak
)

// FileFormatMarker identifies the header line.
const FileFormatMarker = "osu file format v"

// Map holds the enabled flag of every registered section.
// Sections that were never registered are disabled.
type Map struct {
	enabled map[Section]bool
	order   []Section
	current Section
	// implicit is set while current was chosen by Begin rather than by a header
	implicit bool
}

// NewMap returns an empty map with no current section.
func NewMap() *Map {
	return &Map{enabled: make(map[Section]bool)}
}

// Set registers a section with the given state.
func (m *Map) Set(s Section, enabled bool) {
	if _, ok := m.enabled[s]; !ok {
		m.order = append(m.order, s)
	}
	m.enabled[s] = enabled
}

// Enabled reports whether s is registered and enabled.
func (m *Map) Enabled(s Section) bool {
	return m.enabled[s]
}

// HasEnabled reports whether at least one section is still enabled.
func (m *Map) HasEnabled() bool {
	for _, s := range m.order {
		if m.enabled[s] {
			return true
		}
	}
	return false
}

// Current returns the section lines are dispatched to.
func (m *Map) Current() Section { return m.current }

// SetCurrent moves the cursor without closing the previous section.
func (m *Map) SetCurrent(s Section) { m.current = s }

// Begin selects the section of the lines preceding the first header. The
// first header leaves it enabled, so a later explicit header can reopen it.
func (m *Map) Begin(s Section) {
	m.current = s
	m.implicit = true
}

// Handler receives the lines of a decode pass.
type Handler interface {
	// FileFormat receives every line containing the file format marker.
	FileFormat(line string) error
	// Line receives a preprocessed data line of an enabled section.
	Line(s Section, line string) error
}

// Machine drives a Handler over the lines of one decode pass. It is not safe
// for concurrent use; decoders create one per call.
type Machine struct {
	Sections *Map
	// Preprocess runs before comment stripping, e.g. for variable substitution.
	Preprocess func(line string) string

	logger  *slog.Logger
	skipped int
}

// NewMachine returns a machine over sections. A nil logger falls back to
// slog.Default.
func NewMachine(sections *Map, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{Sections: sections, logger: logger}
}

// Skipped is the number of data lines dropped by recoverable errors.
func (m *Machine) Skipped() int { return m.skipped }

// Run feeds lines to h until the input ends or no enabled section remains.
// Only fatal errors are returned, annotated with the 1-based line number.
func (m *Machine) Run(lines []string, h Handler) error {
	for i, line := range lines {
		lt, err := m.parseLine(line, h)
		if err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		if lt == LineBreak {
			break
		}
	}
	return nil
}

func (m *Machine) parseLine(line string, h Handler) (LineType, error) {
	if strings.Contains(line, FileFormatMarker) {
		if err := h.FileFormat(line); err != nil {
			return LineEmpty, Fatal(err)
		}
		return LineFileFormat, nil
	}

	if line == "" || strings.HasPrefix(line, "//") {
		return LineEmpty, nil
	}

	if m.Preprocess != nil {
		line = m.Preprocess(line)
	}
	if m.Sections.current != Metadata {
		line = StripComments(line)
	}
	line = strings.TrimRight(line, " \t\r\n\v\f")

	if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
		if m.Sections.current != None && !m.Sections.implicit {
			m.Sections.Set(m.Sections.current, false)
		}
		m.Sections.current = None
		m.Sections.implicit = false
		if !m.Sections.HasEnabled() {
			return LineBreak, nil
		}
		if s, ok := Known(line[1 : len(line)-1]); ok {
			m.Sections.current = s
		}
		return LineSection, nil
	}

	if !m.Sections.Enabled(m.Sections.current) {
		return LineEmpty, nil
	}

	if err := h.Line(m.Sections.current, line); err != nil {
		if IsFatal(err) {
			return LineEmpty, err
		}
		m.skipped++
		m.logger.Debug("Skipping line", "section", string(m.Sections.current), "line", line, "error", err)
		return LineEmpty, nil
	}
	return LineData, nil
}

// StripComments removes a trailing `//` comment. A comment at the start of the
// line is left alone; such lines are skipped before preprocessing.
func StripComments(line string) string {
	if i := strings.Index(line, "//"); i > 0 {
		return line[:i]
	}
	return line
}

// SplitLines splits text on LF or CRLF and drops a leading byte order mark.
func SplitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks err as aborting the whole decode.
func Fatal(err error) error {
	if err == nil || IsFatal(err) {
		return err
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err was marked with Fatal.
func IsFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}
