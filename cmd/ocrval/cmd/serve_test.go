package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand(t *testing.T) {
	assert.NotNil(t, serveCmd)
	assert.Equal(t, "serve", serveCmd.Use)
	assert.NotEmpty(t, serveCmd.Short)
	assert.NotEmpty(t, serveCmd.Long)
}

func TestServeCommandFlags(t *testing.T) {
	flags := serveCmd.Flags()

	for _, name := range []string{"host", "port", "cors-origin", "timeout", "shutdown-timeout", "websocket"} {
		assert.NotNil(t, flags.Lookup(name), "Expected flag '%s' not found", name)
	}
}

func TestServeCommandInvalidPort(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"serve", "--port", "99999"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port number")
}
