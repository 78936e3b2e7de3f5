package catalog

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode"
)

const maxLineLength = 1 << 20

// parserState is the position of the parser within a model description,
// it defines which keywords are permitted on the next line.
type parserState int

const (
	// stateStart: nothing was parsed yet, or the previous keyword
	// does not open any sequence (e.g. "urlbase").
	stateStart = parserState(iota)

	// stateModel: the previous keyword was "model" or "want".
	stateModel

	// stateFirmware: the previous keyword was "firmware".
	stateFirmware

	// stateFile1: the previous keyword was "file1".
	stateFile1

	// stateFile: the previous keyword was "file", the single-binary
	// alias of "file1" (it cannot be followed by "file2").
	stateFile

	// stateFile2: the previous keyword was "file2".
	stateFile2

	// stateLog: the previous keyword was "log".
	stateLog
)

// sequenceRule defines which states are permitted right before a keyword.
type sequenceRule struct {
	after    []parserState
	expected []string
}

var sequenceRules = map[string]sequenceRule{
	"file":  {after: []parserState{stateFirmware}, expected: []string{"firmware"}},
	"file1": {after: []parserState{stateFirmware}, expected: []string{"firmware"}},
	"file2": {after: []parserState{stateFile1}, expected: []string{"file1"}},
	"log":   {after: []parserState{stateFile1, stateFile2, stateFile}, expected: []string{"file1", "file2", "file"}},
}

func (rule sequenceRule) permits(state parserState) bool {
	for _, s := range rule.after {
		if s == state {
			return true
		}
	}
	return false
}

// wantForDeviceRegexp matches "<version> for <device ID>"; "for" is
// case-sensitive, "V1 FOR x" is a model-wide override to version "V1 FOR x".
var wantForDeviceRegexp = regexp.MustCompile(`^(\S+)\s+for\s+(\S.*)$`)

// Parse reads a catalog.
//
// Any error aborts parsing, a partially parsed catalog is never returned.
// The returned error is always a ParseError.
func Parse(r io.Reader) (*Catalog, error) {
	p := newParser()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := p.parseLine(lineNum, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, ParseError{Kind: ParseErrorKindRead, Line: lineNum, Err: err}
	}

	return p.finish()
}

// ParseLines is the same as Parse, but takes the catalog as a slice of lines.
func ParseLines(lines []string) (*Catalog, error) {
	p := newParser()
	for idx, line := range lines {
		if err := p.parseLine(idx+1, line); err != nil {
			return nil, err
		}
	}
	return p.finish()
}

type parser struct {
	catalog *Catalog
	state   parserState

	model *ModelEntry

	// record is the firmware record being filled in, nil if none.
	record *FirmwareRecord
	// recordLine is the line of the "firmware" keyword of record.
	recordLine int
	// recordCommitted is true if record was already put into model.
	recordCommitted bool
}

func newParser() *parser {
	return &parser{
		catalog: New(),
		state:   stateStart,
	}
}

func (p *parser) parseLine(lineNum int, line string) error {
	line = strings.TrimSpace(stripComment(line))
	if line == "" {
		return nil
	}

	keyword, value, ok := splitKeywordValue(line)
	if !ok {
		return ParseError{Kind: ParseErrorKindMalformedLine, Line: lineNum, Keyword: keyword}
	}
	normKeyword := strings.ToLower(keyword)

	if rule, ok := sequenceRules[normKeyword]; ok && !rule.permits(p.state) {
		return ParseError{
			Kind:                 ParseErrorKindOutOfSequence,
			Line:                 lineNum,
			Keyword:              keyword,
			ExpectedPredecessors: rule.expected,
		}
	}

	switch normKeyword {
	case "urlbase":
		p.catalog.URLBase = value
		p.state = stateStart

	case "model":
		if err := p.closeRecord(); err != nil {
			return err
		}
		p.model = p.catalog.OpenModel(value)
		p.state = stateModel

	case "firmware":
		if p.model == nil {
			return p.errNoModel(lineNum, keyword)
		}
		if err := p.closeRecord(); err != nil {
			return err
		}
		p.record = &FirmwareRecord{Version: value}
		p.recordLine = lineNum
		p.recordCommitted = false
		p.state = stateFirmware

	case "file", "file1":
		p.record.File1 = value
		p.commit()
		p.state = stateFile1
		if normKeyword == "file" {
			p.state = stateFile
		}

	case "file2":
		p.record.File2 = value
		p.commit()
		p.state = stateFile2

	case "log":
		p.record.Changelog = value
		p.commit()
		p.state = stateLog

	case "want":
		if p.model == nil {
			return p.errNoModel(lineNum, keyword)
		}
		if m := wantForDeviceRegexp.FindStringSubmatch(value); m != nil {
			deviceID := strings.ToLower(strings.TrimSpace(m[2]))
			p.model.Overrides[deviceID] = m[1]
		} else {
			p.model.Overrides[DefaultOverrideKey] = value
		}
		p.state = stateModel

	default:
		return ParseError{Kind: ParseErrorKindUnknownKeyword, Line: lineNum, Keyword: keyword}
	}

	return nil
}

func (p *parser) errNoModel(lineNum int, keyword string) error {
	return ParseError{
		Kind:                 ParseErrorKindOutOfSequence,
		Line:                 lineNum,
		Keyword:              keyword,
		ExpectedPredecessors: []string{"model"},
	}
}

func (p *parser) commit() {
	p.model.Put(*p.record)
	p.recordCommitted = true
}

// closeRecord finalizes the record in progress (if any).
func (p *parser) closeRecord() error {
	if p.record != nil && !p.recordCommitted {
		return ParseError{Kind: ParseErrorKindMissingFile1, Line: p.recordLine, Keyword: "firmware"}
	}
	p.record = nil
	return nil
}

func (p *parser) finish() (*Catalog, error) {
	if err := p.closeRecord(); err != nil {
		return nil, err
	}
	return p.catalog, nil
}

// stripComment removes everything starting with the first "#" which
// is not escaped as `\#`. Escaped hashes are unescaped.
func stripComment(line string) string {
	if !strings.Contains(line, "#") {
		return line
	}

	var result strings.Builder
	for idx := 0; idx < len(line); idx++ {
		c := line[idx]
		if c == '\\' && idx+1 < len(line) && line[idx+1] == '#' {
			result.WriteByte('#')
			idx++
			continue
		}
		if c == '#' {
			break
		}
		result.WriteByte(c)
	}
	return result.String()
}

// splitKeywordValue splits a trimmed non-empty line on the first run
// of whitespace.
func splitKeywordValue(line string) (keyword, value string, ok bool) {
	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return line, "", false
	}
	keyword = line[:idx]
	value = strings.TrimSpace(line[idx:])
	return keyword, value, value != ""
}
