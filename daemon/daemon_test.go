package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ruapotato/Flick-sub004/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"12000", "http://localhost:12000"},
		{":12000", "http://localhost:12000"},
		{"localhost:12000", "http://localhost:12000"},
		{"10.0.0.2:9000", "http://10.0.0.2:9000"},
		{"http://phone.local:12000/", "http://phone.local:12000"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseURL(tt.addr))
		})
	}
}

func TestCall(t *testing.T) {
	var got server.JSONRPCRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rpc", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		if got.Method == "shell_go_to_view" {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params","data":"'view' is required"},"id":1}`))
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":{"view":"home"},"id":1}`))
	}))
	defer srv.Close()

	result, err := Call(srv.URL, "shell_state", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"view":"home"}`, string(result))
	assert.Equal(t, "2.0", got.JSONRPC)
	assert.Empty(t, got.Params)

	_, err = Call(srv.URL, "shell_go_to_view", map[string]string{})
	require.Error(t, err)
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32602, rpcErr.Code)
	assert.Contains(t, err.Error(), "'view' is required")
	assert.JSONEq(t, `{}`, string(got.Params))
}

func TestCall_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := Call(srv.URL, "shell_state", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestIsChild(t *testing.T) {
	t.Setenv(DaemonEnvVar, "")
	assert.False(t, IsChild())

	t.Setenv(DaemonEnvVar, "1")
	assert.True(t, IsChild())
}
