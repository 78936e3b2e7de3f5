package formatter

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logLevelSymbol = func() []byte {
	result := make([]byte, len(logrus.AllLevels)+1)
	for _, level := range logrus.AllLevels {
		result[level] = strings.ToUpper(level.String()[:1])[0]
	}
	return result
}()

// CompactText is a logrus formatter which prints laconic lines, like
//
//	[2024-06-28T09:17:20Z W main.go:56] my message	key=value	other="with spaces"
type CompactText struct {
	TimestampFormat string

	// FieldAllowList, if not nil, limits the printed fields.
	FieldAllowList []string
}

// Format implements logrus.Formatter.
func (f *CompactText) Format(entry *logrus.Entry) ([]byte, error) {
	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = time.RFC3339
	}

	var buf strings.Builder
	buf.WriteByte('[')
	buf.WriteString(entry.Time.Format(timestampFormat))
	buf.WriteByte(' ')
	buf.WriteByte(logLevelSymbol[entry.Level])
	if entry.Caller != nil {
		buf.WriteByte(' ')
		buf.WriteString(filepath.Base(entry.Caller.File))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(entry.Caller.Line))
	}
	buf.WriteString("] ")
	buf.WriteString(entry.Message)

	for _, key := range f.keys(entry.Data) {
		buf.WriteByte('\t')
		buf.WriteString(key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(entry.Data[key]))
	}

	buf.WriteByte('\n')
	return []byte(buf.String()), nil
}

func (f *CompactText) keys(data logrus.Fields) []string {
	result := make([]string, 0, len(data))
	for key := range data {
		if f.FieldAllowList != nil && !contains(f.FieldAllowList, key) {
			continue
		}
		result = append(result, key)
	}
	sort.Strings(result)
	return result
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// formatValue quotes values which would break the line layout.
func formatValue(value any) string {
	var s string
	switch value := value.(type) {
	case string:
		s = value
	case fmt.Stringer:
		s = value.String()
	case error:
		s = value.Error()
	default:
		s = fmt.Sprintf("%v", value)
	}
	if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
