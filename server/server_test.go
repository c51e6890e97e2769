package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestLoop runs a compositor for the handlers to talk to
func startTestLoop(t *testing.T) {
	t.Helper()

	l := logrus.New()
	l.SetOutput(io.Discard)

	c, err := compositor.New(
		compositor.Output{Name: "TEST-1", Width: 1000, Height: 2000, RefreshHz: 60},
		compositor.WithLogger(l),
	)
	require.NoError(t, err)

	loop := compositor.NewEventLoop(c)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	<-loop.Ready()
	commands.SetEventLoop(loop)

	t.Cleanup(func() {
		cancel()
		<-loop.Done()
		commands.SetEventLoop(nil)
	})
}

func postRPC(t *testing.T, url string, body string) map[string]interface{} {
	t.Helper()

	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func rpcErrorCode(t *testing.T, result map[string]interface{}) int {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	require.True(t, ok, "expected an error object, got %v", result)
	return int(errObj["code"].(float64))
}

func TestJSONRPC_Errors(t *testing.T) {
	srv := httptest.NewServer(NewHandler(false))
	defer srv.Close()

	tests := []struct {
		name string
		body string
		code int
	}{
		{"parse error", `{not json`, ErrCodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"shell_state","id":1}`, ErrCodeInvalidRequest},
		{"missing id", `{"jsonrpc":"2.0","method":"shell_state"}`, ErrCodeInvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, ErrCodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","method":"io_pinch","id":1}`, ErrCodeMethodNotFound},
		{"subscribe over http", `{"jsonrpc":"2.0","method":"subscribe","id":1}`, ErrCodeMethodNotFound},
		{"missing params", `{"jsonrpc":"2.0","method":"io_tap","id":1}`, ErrCodeInvalidParams},
		{"missing field", `{"jsonrpc":"2.0","method":"io_tap","params":{"x":1},"id":1}`, ErrCodeInvalidParams},
		{"bad field type", `{"jsonrpc":"2.0","method":"shell_go_to_view","params":{"view":7},"id":1}`, ErrCodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := postRPC(t, srv.URL, tt.body)
			assert.Equal(t, "2.0", result["jsonrpc"])
			assert.Equal(t, tt.code, rpcErrorCode(t, result))
		})
	}
}

func TestJSONRPC_MethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(NewHandler(false))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/rpc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestJSONRPC_Banner(t *testing.T) {
	srv := httptest.NewServer(NewHandler(false))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestJSONRPC_WithoutCompositor(t *testing.T) {
	commands.SetEventLoop(nil)
	srv := httptest.NewServer(NewHandler(false))
	defer srv.Close()

	result := postRPC(t, srv.URL, `{"jsonrpc":"2.0","method":"shell_state","id":1}`)
	assert.Equal(t, ErrCodeServerError, rpcErrorCode(t, result))
}

func TestJSONRPC_TapAndState(t *testing.T) {
	startTestLoop(t)
	srv := httptest.NewServer(NewHandler(false))
	defer srv.Close()

	result := postRPC(t, srv.URL, `{"jsonrpc":"2.0","method":"io_tap","params":{"x":500,"y":500},"id":"a"}`)
	require.Nil(t, result["error"])
	assert.Equal(t, "a", result["id"])

	dispatch := result["result"].(map[string]interface{})
	assert.Equal(t, "tap", dispatch["event"].(map[string]interface{})["type"])
	assert.Equal(t, "tap", dispatch["action"])

	result = postRPC(t, srv.URL, `{"jsonrpc":"2.0","method":"shell_go_to_view","params":{"view":"app_switcher"},"id":2}`)
	require.Nil(t, result["error"])
	assert.Equal(t, true, result["result"].(map[string]interface{})["changed"])

	result = postRPC(t, srv.URL, `{"jsonrpc":"2.0","method":"shell_state","id":3}`)
	require.Nil(t, result["error"])
	assert.Equal(t, "app_switcher", result["result"].(map[string]interface{})["view"])
}

func TestJSONRPC_OutputSetSize(t *testing.T) {
	startTestLoop(t)
	srv := httptest.NewServer(NewHandler(false))
	defer srv.Close()

	result := postRPC(t, srv.URL, `{"jsonrpc":"2.0","method":"output_set_size","params":{"width":200,"height":400},"id":1}`)
	require.Nil(t, result["error"])

	info := result["result"].(map[string]interface{})
	size := info["size"].(map[string]interface{})
	assert.Equal(t, float64(200), size["width"])
	assert.Equal(t, float64(400), size["height"])

	result = postRPC(t, srv.URL, `{"jsonrpc":"2.0","method":"output_set_size","params":{"width":0,"height":400},"id":2}`)
	assert.Equal(t, ErrCodeServerError, rpcErrorCode(t, result))
}

func TestJSONRPC_GestureReplay(t *testing.T) {
	srv := httptest.NewServer(NewHandler(false))
	defer srv.Close()

	body := `{"jsonrpc":"2.0","method":"gesture_replay","id":1,"params":{"script":{
		"screen":{"width":1000,"height":2000},
		"steps":[
			{"kind":"down","id":1,"x":500,"y":500},
			{"kind":"up","id":1,"at":50}
		]}}}`
	result := postRPC(t, srv.URL, body)
	require.Nil(t, result["error"], "%v", result["error"])

	replay := result["result"].(map[string]interface{})
	require.Len(t, replay["dispatches"], 1)
	assert.Equal(t, "tap", replay["dispatches"].([]interface{})[0].(map[string]interface{})["action"])
	assert.Equal(t, float64(50), replay["durationMs"])

	result = postRPC(t, srv.URL, `{"jsonrpc":"2.0","method":"gesture_replay","params":{},"id":2}`)
	assert.Equal(t, ErrCodeInvalidParams, rpcErrorCode(t, result))

	result = postRPC(t, srv.URL, `{"jsonrpc":"2.0","method":"gesture_replay","id":3,"params":{"script":{
		"screen":{"width":1000,"height":2000},"steps":[{"kind":"wiggle"}]}}}`)
	assert.Equal(t, ErrCodeInvalidParams, rpcErrorCode(t, result))
}

func TestJSONRPC_ShutdownWhenNotRunning(t *testing.T) {
	srv := httptest.NewServer(NewHandler(false))
	defer srv.Close()

	result := postRPC(t, srv.URL, `{"jsonrpc":"2.0","method":"server.shutdown","id":1}`)
	assert.Equal(t, ErrCodeServerError, rpcErrorCode(t, result))
}

func TestRequestShutdown(t *testing.T) {
	assert.False(t, requestShutdown())

	ctx, cancel := context.WithCancel(context.Background())
	setShutdown(cancel)
	defer setShutdown(nil)

	assert.True(t, requestShutdown())
	assert.Error(t, ctx.Err())
}

func TestCORSMiddleware(t *testing.T) {
	srv := httptest.NewServer(NewHandler(true))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/rpc", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNormalizeAddr(t *testing.T) {
	addr, err := NormalizeAddr("12000")
	require.NoError(t, err)
	assert.Equal(t, ":12000", addr)

	addr, err = NormalizeAddr("localhost:12000")
	require.NoError(t, err)
	assert.Equal(t, "localhost:12000", addr)

	_, err = NormalizeAddr("port")
	assert.Error(t, err)
}
