package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	p, err := Init(&Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInitNilConfig(t *testing.T) {
	p, err := Init(nil)
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInitEnabled(t *testing.T) {
	p, err := Init(&Config{
		ServiceName:    "causewayd-test",
		ServiceVersion: "0.0.0",
		Enabled:        true,
	})
	require.NoError(t, err)
	require.NotNil(t, p.meterProvider)
	assert.NoError(t, p.Shutdown(context.Background()))
}
