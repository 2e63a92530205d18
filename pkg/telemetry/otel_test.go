package telemetry

import (
	"bytes"
	"context"
	"testing"

	"transfer/cfg"
	"transfer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("development", &buf)

	shutdown, err := Init(context.Background(), &cfg.ObservabilityConfig{ServiceName: "transfer-search"}, log)

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "export disabled")
}
