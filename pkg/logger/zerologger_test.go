package logger

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestZeroLogger_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("development", buf)

	log.Info("search completed", Field{Key: "route_id", Value: int64(12)})

	output := buf.String()
	assert.Contains(t, output, "search completed")
	assert.Contains(t, output, `"route_id":12`)
	assert.Contains(t, output, `"level":"info"`)
	assert.Contains(t, output, `"env":"development"`)
}

func TestZeroLogger_DebugShownInDev(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("development", buf)

	log.Debug("debug-test")

	assert.Contains(t, buf.String(), "debug-test")
}

func TestZeroLogger_DebugHiddenInProduction(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("production", buf)

	log.Debug("debug-hidden")

	assert.Empty(t, buf.String())
}

func TestZeroLogger_Warn(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("development", buf)

	log.Warn("tariff rule skipped", Field{Key: "rule_type", Value: "TIME_OF_DAY"})

	output := buf.String()
	assert.Contains(t, output, `"level":"warn"`)
	assert.Contains(t, output, `"rule_type":"TIME_OF_DAY"`)
}

func TestZeroLogger_ErrorField(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter("development", buf)

	log.Error("catalog query failed",
		Field{Key: "err", Value: errors.New("connection refused")},
		Field{Key: "elapsed", Value: 150 * time.Millisecond},
	)

	output := buf.String()
	assert.Contains(t, output, `"level":"error"`)
	assert.Contains(t, output, `"err":"connection refused"`)
	assert.Contains(t, output, `"elapsed":150`)
}
