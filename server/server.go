package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/config"
	"github.com/ruapotato/Flick-sub004/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

const (
	errTitleParseError     = "Parse error"
	errTitleInvalidReq     = "Invalid Request"
	errTitleMethodNotFnd   = "Method not found"
	errTitleServerError    = "Server error"
	errMsgParseError       = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC   = "'jsonrpc' must be '2.0'"
	errMsgIDRequired       = "'id' field is required"
	errMsgMethodRequired   = "'method' is required"
	errMsgTextOnly         = "only text messages accepted for requests"
	errMsgSubscribeHTTP    = "subscriptions are only available over WebSocket, use the /ws endpoint"
	errMsgServerNotRunning = "server is not running"
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

var (
	shutdownMu sync.Mutex
	shutdownFn context.CancelFunc
)

func setShutdown(fn context.CancelFunc) {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	shutdownFn = fn
}

// requestShutdown stops the running server, if any
func requestShutdown() bool {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdownFn == nil {
		return false
	}
	shutdownFn()
	return true
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewHandler returns the HTTP handler serving the banner, /rpc and /ws
func NewHandler(enableCORS bool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", sendBanner)
	mux.HandleFunc("/rpc", handleJSONRPC)
	mux.Handle("/ws", NewWebSocketHandler(enableCORS))

	if enableCORS {
		return corsMiddleware(mux)
	}
	return mux
}

// NormalizeAddr turns a bare port into ":port"
func NormalizeAddr(addr string) (string, error) {
	// if host is missing, default to all interfaces
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		addr = fmt.Sprintf(":%d", port)
	}
	return addr, nil
}

func checkPortAvailable(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address %s: %w", addr, err)
	}
	if !utils.IsAddrAvailable(addr) {
		return fmt.Errorf("address %s is already in use, is another flick server running?", addr)
	}
	return nil
}

// StartServer runs the compositor, attaches input devices and serves
// JSON-RPC until server.shutdown is called or the process shutdown hook runs
func StartServer(cfg *config.Config) error {
	addr, err := NormalizeAddr(cfg.Server.Listen)
	if err != nil {
		return err
	}
	if err := checkPortAvailable(addr); err != nil {
		return err
	}

	opts, err := cfg.CompositorOptions()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c, err := compositor.New(cfg.OutputConfig(), append(opts, compositor.WithLogger(utils.Logger()))...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setShutdown(cancel)
	defer setShutdown(nil)

	if hook := commands.GetShutdownHook(); hook != nil {
		hook.Register("server", func() error {
			cancel()
			return nil
		})
	}

	loop := compositor.NewEventLoop(c)
	go func() {
		_ = loop.Run(ctx)
	}()
	<-loop.Ready()

	commands.SetEventLoop(loop)
	defer commands.SetEventLoop(nil)

	if cfg.History.Database != "" {
		stopLog, err := startEventLog(cfg, loop)
		if err != nil {
			utils.Warn("Event log disabled: %v", err)
		} else {
			defer stopLog()
		}
	}

	if cfg.Input.Enabled {
		stopInput, err := startInput(ctx, cfg, loop)
		if err != nil {
			// the server is still useful for injected input and the preview
			utils.Warn("Touch input disabled: %v", err)
		} else {
			defer stopInput()
		}
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      NewHandler(cfg.Server.CORS),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("Starting server on http://%s...", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		cancel()
		<-loop.Done()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	utils.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-loop.Done()
	return nil
}

func handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if req.JSONRPC != "2.0" {
		sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC)
		return
	}

	if req.ID == nil {
		sendJSONRPCError(w, nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
		return
	}

	if req.Method == "" {
		sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired)
		return
	}

	if req.Method == methodSubscribe || req.Method == methodUnsubscribe {
		sendJSONRPCError(w, req.ID, ErrCodeMethodNotFound, errTitleMethodNotFnd, errMsgSubscribeHTTP)
		return
	}

	utils.Verbose("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	handler, exists := GetMethodRegistry()[req.Method]
	if !exists {
		sendJSONRPCError(w, req.ID, ErrCodeMethodNotFound, errTitleMethodNotFnd, fmt.Sprintf("Method '%s' not found", req.Method))
		return
	}

	result, err := handler(req.Params)
	if err != nil {
		utils.Verbose("Error executing method %s: %v", req.Method, err)
		var paramsErr *invalidParamsError
		if errors.As(err, &paramsErr) {
			sendJSONRPCError(w, req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
			return
		}
		sendJSONRPCError(w, req.ID, ErrCodeServerError, errTitleServerError, err.Error())
		return
	}

	sendJSONRPCResponse(w, req.ID, result)
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}
