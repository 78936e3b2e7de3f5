package catalog

import (
	"fmt"
	"strings"
)

// ParseErrorKind is the class of a catalog parsing failure.
type ParseErrorKind int

const (
	// ParseErrorKindUndefined is an invalid value of ParseErrorKind.
	ParseErrorKindUndefined = ParseErrorKind(iota)

	// ParseErrorKindMalformedLine means a line has a keyword, but no value.
	ParseErrorKindMalformedLine

	// ParseErrorKindOutOfSequence means a keyword is used in a place where it
	// is not permitted (for example "file1" without a preceding "firmware").
	ParseErrorKindOutOfSequence

	// ParseErrorKindUnknownKeyword means the keyword is not supported.
	ParseErrorKindUnknownKeyword

	// ParseErrorKindMissingFile1 means a "firmware" entry has no "file1".
	ParseErrorKindMissingFile1

	// ParseErrorKindRead means the catalog source could not be read.
	ParseErrorKindRead
)

// String implements fmt.Stringer.
func (kind ParseErrorKind) String() string {
	switch kind {
	case ParseErrorKindUndefined:
		return "undefined"
	case ParseErrorKindMalformedLine:
		return "malformed_line"
	case ParseErrorKindOutOfSequence:
		return "out_of_sequence"
	case ParseErrorKindUnknownKeyword:
		return "unknown_keyword"
	case ParseErrorKindMissingFile1:
		return "missing_file1"
	case ParseErrorKindRead:
		return "read"
	}
	return fmt.Sprintf("unknown_parse_error_kind_%d", int(kind))
}

// ParseError is returned when the catalog could not be parsed. The whole
// catalog is rejected in this case.
type ParseError struct {
	Kind ParseErrorKind

	// Line is the 1-based number of the offending line (0 if not applicable).
	Line int

	// Keyword is the keyword of the offending line as written.
	Keyword string

	// ExpectedPredecessors lists the keywords (or conditions) which are
	// required to precede Keyword. Set only for ParseErrorKindOutOfSequence.
	ExpectedPredecessors []string

	// Err is the underlying error, set only for ParseErrorKindRead.
	Err error
}

func (err ParseError) Error() string {
	switch err.Kind {
	case ParseErrorKindMalformedLine:
		return fmt.Sprintf("line %d: keyword '%s' has no value", err.Line, err.Keyword)
	case ParseErrorKindOutOfSequence:
		return fmt.Sprintf("line %d: keyword '%s' must follow %s",
			err.Line, err.Keyword, strings.Join(err.ExpectedPredecessors, " or "))
	case ParseErrorKindUnknownKeyword:
		return fmt.Sprintf("line %d: unknown keyword '%s'", err.Line, err.Keyword)
	case ParseErrorKindMissingFile1:
		return fmt.Sprintf("line %d: firmware entry has no 'file1'", err.Line)
	case ParseErrorKindRead:
		return fmt.Sprintf("unable to read the catalog (after line %d): %v", err.Line, err.Err)
	}
	return fmt.Sprintf("line %d: parse error %s", err.Line, err.Kind)
}

func (err ParseError) Unwrap() error {
	return err.Err
}
