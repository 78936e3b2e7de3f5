package envelope

import (
	"io"

	"github.com/immune-gmbh/gwcloud/pkg/xjson"
)

type wireData struct {
	ID            int64            `json:"id"`
	Name          xjson.String     `json:"name"`
	Content       xjson.PreEscaped `json:"content"`
	Attach1File   xjson.String     `json:"attach1file"`
	Attach2File   xjson.String     `json:"attach2file"`
	QueryInterval int              `json:"queryintval"`
}

type wireEnvelope struct {
	Code int          `json:"code"`
	Msg  xjson.String `json:"msg"`
	Time int64        `json:"time"`
	Data any          `json:"data"`
}

func (e Envelope) wire() wireEnvelope {
	result := wireEnvelope{
		Code: e.Code,
		Msg:  xjson.String(e.Msg),
		Time: e.Time,
		Data: []struct{}{},
	}
	if e.Data != nil {
		result.Data = wireData{
			ID:            e.Data.ID,
			Name:          xjson.String(e.Data.Name),
			Content:       xjson.PreEscaped(e.Data.Content),
			Attach1File:   xjson.String(e.Data.Attach1File),
			Attach2File:   xjson.String(e.Data.Attach2File),
			QueryInterval: e.Data.QueryInterval,
		}
	}
	return result
}

// Encode writes the envelope as a single line of JSON terminated by "\n".
func (e Envelope) Encode(w io.Writer) error {
	return xjson.Encode(w, e.wire())
}
