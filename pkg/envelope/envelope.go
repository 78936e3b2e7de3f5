// Package envelope builds the JSON responses of the firmware version check
// endpoint in the exact format expected by weather gateways:
//
//	{"code":0,"msg":"Success","time":1715668969,"data":{"id":399,"name":"V3.1.2","content":"- Fix the memory leaks.\r\n- Fixed a bug.","attach1file":"https:\/\/ota.example.net\/fw.bin","attach2file":"","queryintval":86400}}
//
// On errors "data" is an empty JSON array ("[]"), not an object.
package envelope

import (
	"encoding/binary"
	"errors"
	"strings"
	"time"

	"lukechampine.com/blake3"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
	"github.com/immune-gmbh/gwcloud/pkg/otarequest"
	"github.com/immune-gmbh/gwcloud/pkg/resolver"
)

// Response codes used by the vendor protocol.
const (
	CodeSuccess       = 0
	CodeFailure       = -1
	CodeInvalidModel  = 40013
	CodeInvalidParams = 41000
)

// Response messages used by the vendor protocol.
const (
	MsgSuccess             = "Success"
	MsgUpToDate            = "The firmware is up to date"
	MsgInternalConfigError = "internal configuration error"
	MsgInvalidModel        = "invalid model"
)

// QueryInterval is how often (in seconds) the device should check for updates.
const QueryInterval = 86400

// Data is the payload of a response about a firmware.
type Data struct {
	ID            int64
	Name          string
	Content       string
	Attach1File   string
	Attach2File   string
	QueryInterval int
}

// Envelope is a complete response.
type Envelope struct {
	Code int
	Msg  string
	Time int64

	// Data is nil for error responses.
	Data *Data
}

// IsError returns true if the Envelope carries no firmware data.
func (e Envelope) IsError() bool {
	return e.Data == nil
}

// ForResult builds the response for a resolved firmware.
//
// The code is CodeFailure with MsgUpToDate if the device already runs the
// resolved version (compared case-insensitively), otherwise it is CodeSuccess.
func ForResult(
	c *catalog.Catalog,
	result resolver.Result,
	currentVersion string,
	now time.Time,
) Envelope {
	record := result.Record
	data := &Data{
		ID:            RecordID(result.Model, record.Version),
		Name:          record.Version,
		Content:       record.Changelog,
		Attach1File:   c.FileURL(record.File1),
		QueryInterval: QueryInterval,
	}
	if record.HasFile2() {
		data.Attach2File = c.FileURL(record.File2)
	}

	e := Envelope{
		Code: CodeSuccess,
		Msg:  MsgSuccess,
		Time: now.Unix(),
		Data: data,
	}
	if strings.EqualFold(currentVersion, record.Version) {
		e.Code = CodeFailure
		e.Msg = MsgUpToDate
	}
	return e
}

// ForError builds the response for a failed request.
//
// Errors are mapped as follows:
//   - otarequest.ErrMissingField: CodeInvalidParams, "<field> require";
//   - resolver.Error of kind ErrorKindUnknownModel: CodeInvalidModel;
//   - anything else (catalog.ParseError, other resolver.Error kinds,
//     I/O errors): CodeFailure, MsgInternalConfigError.
func ForError(err error, now time.Time) Envelope {
	e := Envelope{
		Code: CodeFailure,
		Msg:  MsgInternalConfigError,
		Time: now.Unix(),
	}

	var (
		errMissingField otarequest.ErrMissingField
		errResolve      resolver.Error
	)
	switch {
	case errors.As(err, &errMissingField):
		e.Code = CodeInvalidParams
		e.Msg = errMissingField.Name + " require"
	case errors.As(err, &errResolve) && errResolve.Kind == resolver.ErrorKindUnknownModel:
		e.Code = CodeInvalidModel
		e.Msg = MsgInvalidModel
	}
	return e
}

// RecordID returns a stable identifier of a firmware record of a model,
// it is used as "data.id" in responses.
func RecordID(model, version string) int64 {
	sum := blake3.Sum256([]byte(model + "\x00" + version))
	return int64(binary.BigEndian.Uint32(sum[:4]) & 0x7fffffff)
}
