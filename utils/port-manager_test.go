package utils

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAddrAvailable(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		expected bool
	}{
		{"IPv4 loopback", "127.0.0.1:0", true},
		{"localhost", "localhost:0", true},
		{"all interfaces", ":0", true},
		{"missing port", "127.0.0.1", false},
		{"port too high", "127.0.0.1:65536", false},
		{"negative port", "127.0.0.1:-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAddrAvailable(tt.addr))
		})
	}
}

func TestIsAddrAvailable_PortInUse(t *testing.T) {
	// Create a listener to occupy a port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "Failed to create test listener")
	defer listener.Close()

	assert.False(t, IsAddrAvailable(listener.Addr().String()), "%s should be unavailable (in use)", listener.Addr())
}
