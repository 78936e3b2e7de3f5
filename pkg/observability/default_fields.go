package observability

import (
	"os"

	"github.com/facebookincubator/go-belt/pkg/field"
)

// FieldPID is the field value type for process ID
type FieldPID int

// FieldHostname is the field value type for hostname
type FieldHostname string

// DefaultFields returns the fields attached to every log entry of the process.
func DefaultFields() field.Fields {
	result := field.Fields{{
		Key:   "pid",
		Value: FieldPID(os.Getpid()),
	}}
	if hostname, err := os.Hostname(); err == nil {
		result = append(result, field.Field{
			Key:   "hostname",
			Value: FieldHostname(hostname),
		})
	}
	return result
}
