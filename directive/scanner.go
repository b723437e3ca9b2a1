package directive

import (
	"fmt"
	"strings"
)

// Kind indicates whether a span of lines may be rewritten or must be emitted
// unchanged.
type Kind int

const (
	Formattable Kind = iota
	Preserved
)

func (k Kind) String() string {
	if k == Preserved {
		return "preserved"
	}

	return "formattable"
}

// Span is a contiguous range of physical lines, 1-indexed and inclusive at
// both ends.
type Span struct {
	Start int
	End   int
	Kind  Kind
}

func (s Span) String() string {
	return fmt.Sprintf("%s[%d,%d]", s.Kind, s.Start, s.End)
}

// Result is the outcome of scanning one file. Spans partition every line of
// the input exactly once, in order. Diagnostics carry non-fatal anomalies
// such as an unterminated `# fmt: off`.
type Result struct {
	Spans       []Span
	Diagnostics []string
}

// Formattable returns only the spans eligible for rewriting.
func (r Result) Formattable() []Span {
	var spans []Span

	for _, s := range r.Spans {
		if s.Kind == Formattable {
			spans = append(spans, s)
		}
	}

	return spans
}

const (
	markerOff  = "off"
	markerOn   = "on"
	markerSkip = "skip"
)

// directiveOf normalises a trailing comment and reports which formatting
// directive it carries, if any. Both `# fmt: off` and `# fmt:off` spellings
// are recognised.
func directiveOf(comment string) string {
	s := strings.TrimSpace(comment)
	if !strings.HasPrefix(s, "#") {
		return ""
	}

	s = strings.TrimSpace(strings.TrimPrefix(s, "#"))

	switch s {
	case "fmt: off", "fmt:off":
		return markerOff
	case "fmt: on", "fmt:on":
		return markerOn
	case "fmt: skip", "fmt:skip":
		return markerSkip
	}

	return ""
}

// lexLine splits a physical line into its code and trailing comment parts and
// reports the net bracket depth change contributed by the code. Brackets and
// hash characters inside string literals are ignored.
func lexLine(line string) (code string, comment string, depth int) {
	var (
		quote   byte
		escaped bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]

		if escaped {
			escaped = false

			continue
		}

		if c == '\\' {
			escaped = true

			continue
		}

		if quote != 0 {
			if c == quote {
				quote = 0
			}

			continue
		}

		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '#':
			return line[:i], line[i:], depth
		}
	}

	return line, "", depth
}

// splitLines breaks src into physical lines without the trailing newline of
// the final line producing a phantom empty line.
func splitLines(src string) []string {
	if src == "" {
		return nil
	}

	lines := strings.Split(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

type scanner struct {
	spans []Span
	diags []string

	// paused is true between an off marker and its matching on marker.
	paused  bool
	offLine int

	// spanStart is the first line of the span currently being accumulated.
	spanStart int

	// stmtStart is the first physical line of the logical statement currently
	// being read, tracked via bracket depth and backslash continuations.
	stmtStart int
	depth     int
	continued bool
}

func (s *scanner) emit(start, end int, kind Kind) {
	if start > end {
		return
	}

	s.spans = append(s.spans, Span{Start: start, End: end, Kind: kind})
}

// Scan walks the source text line by line and partitions it into formattable
// and preserved spans according to the inline directives it finds. Every line
// of the input is assigned to exactly one span.
func Scan(src string) Result {
	lines := splitLines(src)

	s := scanner{spanStart: 1, stmtStart: 1}

	for i, line := range lines {
		num := i + 1

		// a new logical statement begins when we are not inside brackets and
		// the previous line did not end with a continuation
		if s.depth <= 0 && !s.continued {
			s.stmtStart = num
		}

		code, comment, depth := lexLine(line)
		blank := strings.TrimSpace(code) == ""

		switch directiveOf(comment) {
		case markerOff:
			// a second off while already paused has no additional effect
			if blank && !s.paused {
				s.emit(s.spanStart, num-1, Formattable)
				s.paused = true
				s.offLine = num
				s.spanStart = num
			}
		case markerOn:
			// an on with no matching off has no effect
			if blank && s.paused {
				s.emit(s.spanStart, num, Preserved)
				s.paused = false
				s.spanStart = num + 1
			}
		case markerSkip:
			// the marker only attaches if this line carries the statement's
			// terminating token; inside a paused block it is redundant
			terminated := s.depth+depth <= 0 && !lineContinues(line, comment)
			if !s.paused && !blank && terminated {
				start := max(s.stmtStart, s.spanStart)
				s.emit(s.spanStart, start-1, Formattable)
				s.emit(start, num, Preserved)
				s.spanStart = num + 1
			}
		}

		s.depth += depth
		if s.depth < 0 {
			s.depth = 0
		}

		s.continued = lineContinues(line, comment)
	}

	n := len(lines)

	if s.paused {
		s.emit(s.spanStart, n, Preserved)
		s.diags = append(s.diags, fmt.Sprintf(
			"unterminated `# fmt: off` on line %d, preserving through end of file", s.offLine,
		))
	} else {
		s.emit(s.spanStart, n, Formattable)
	}

	return Result{Spans: s.spans, Diagnostics: s.diags}
}

// lineContinues reports whether the physical line ends with a backslash
// continuation. A line carrying a comment cannot continue.
func lineContinues(line, comment string) bool {
	if comment != "" {
		return false
	}

	return strings.HasSuffix(strings.TrimRight(line, " \t"), "\\")
}
