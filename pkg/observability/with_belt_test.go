package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/stretchr/testify/require"
)

func TestWithBelt(t *testing.T) {
	ctx := WithBelt(context.Background(), logger.LevelWarning, "GWCLOUD", false)
	require.Equal(t, logger.LevelWarning, logger.FromCtx(ctx).Level())

	traceIDs := beltctx.TraceIDs(ctx)
	require.Len(t, traceIDs, 1)
	require.True(t, strings.HasPrefix(string(traceIDs[0]), "GWCLOUD:"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf).WithLevel(logger.LevelInfo)
	l.WithField("model", "GW1100").Infof("hello %s", "world")
	l.Debugf("must not be printed")

	out := buf.String()
	require.Contains(t, out, "] hello world")
	require.Contains(t, out, "\tmodel=GW1100")
	require.NotContains(t, out, "must not be printed")
}

func TestDefaultFields(t *testing.T) {
	fields := DefaultFields()
	require.NotEmpty(t, fields)
	require.Equal(t, "pid", string(fields[0].Key))
}
