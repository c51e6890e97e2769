package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/utils"
)

const (
	methodSubscribe   = "subscribe"
	methodUnsubscribe = "unsubscribe"
	methodEvent       = "event"

	wsWriteTimeout = 5 * time.Second

	// eventQueueSize bounds the notifications waiting for a slow client;
	// beyond it notifications are dropped rather than stalling the compositor
	eventQueueSize = 256
)

type SubscribeParams struct {
	// Kinds filters notifications; empty means all
	Kinds []compositor.NotificationKind `json:"kinds,omitempty"`
}

type UnsubscribeParams struct {
	Subscription string `json:"subscription"`
}

// EventParams is the payload of an "event" notification
type EventParams struct {
	Subscription string                  `json:"subscription"`
	Event        compositor.Notification `json:"event"`
}

type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type wsConnection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	subs    map[string]func()
	events  chan EventParams
	done    chan struct{}
	dropped int
	writer  sync.Once
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

// NewWebSocketHandler serves JSON-RPC over a websocket, plus subscriptions
// to compositor notifications
func NewWebSocketHandler(enableCORS bool) http.Handler {
	upgrader := newUpgrader(enableCORS)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, upgrader)
	})
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Verbose("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	wsConn := &wsConnection{
		conn:   conn,
		subs:   make(map[string]func()),
		events: make(chan EventParams, eventQueueSize),
		done:   make(chan struct{}),
	}
	defer wsConn.close()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// connection closed or error
			utils.Verbose("WebSocket connection closed: %v", err)
			break
		}

		if messageType != websocket.TextMessage {
			wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgTextOnly)
			continue
		}

		handleWSMessage(wsConn, message)
	}
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

func handleWSMessage(wsConn *wsConnection, message []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		wsConn.sendError(nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if req.JSONRPC != "2.0" {
		wsConn.sendError(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC)
		return
	}

	if req.ID == nil {
		wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
		return
	}

	if req.Method == "" {
		wsConn.sendError(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired)
		return
	}

	utils.Verbose("WebSocket Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	switch req.Method {
	case methodSubscribe:
		wsConn.handleSubscribe(req)
	case methodUnsubscribe:
		wsConn.handleUnsubscribe(req)
	default:
		handleWSMethodCall(wsConn, req)
	}
}

func handleWSMethodCall(wsConn *wsConnection, req JSONRPCRequest) {
	registry := GetMethodRegistry()
	handler, exists := registry[req.Method]
	if !exists {
		wsConn.sendError(req.ID, ErrCodeMethodNotFound, errTitleMethodNotFnd, req.Method+" not found")
		return
	}

	result, err := handler(req.Params)
	if err != nil {
		utils.Verbose("Error executing method %s: %v", req.Method, err)
		if _, ok := err.(*invalidParamsError); ok {
			wsConn.sendError(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
			return
		}
		wsConn.sendError(req.ID, ErrCodeServerError, errTitleServerError, err.Error())
		return
	}

	wsConn.sendResponse(req.ID, result)
}

func (wsc *wsConnection) handleSubscribe(req JSONRPCRequest) {
	var params SubscribeParams
	if err := decodeParams(req.Params, &params); err != nil {
		wsc.sendError(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
		return
	}

	loop := commands.GetEventLoop()
	if loop == nil {
		wsc.sendError(req.ID, ErrCodeServerError, errTitleServerError, "compositor is not running")
		return
	}

	kinds := make(map[compositor.NotificationKind]bool, len(params.Kinds))
	for _, k := range params.Kinds {
		kinds[k] = true
	}

	id := uuid.NewString()
	var cancel func()
	err := loop.Call(func(c *compositor.Compositor) {
		cancel = c.Subscribe(func(n compositor.Notification) {
			if len(kinds) > 0 && !kinds[n.Kind] {
				return
			}
			wsc.enqueue(EventParams{Subscription: id, Event: n})
		})
	})
	if err != nil {
		wsc.sendError(req.ID, ErrCodeServerError, errTitleServerError, err.Error())
		return
	}

	wsc.mu.Lock()
	wsc.subs[id] = cancel
	wsc.mu.Unlock()

	wsc.writer.Do(func() { go wsc.writeEvents() })
	utils.Verbose("WebSocket subscription %s created", id)

	wsc.sendResponse(req.ID, map[string]interface{}{"subscription": id})
}

func (wsc *wsConnection) handleUnsubscribe(req JSONRPCRequest) {
	var params UnsubscribeParams
	if err := decodeParams(req.Params, &params, "subscription"); err != nil {
		wsc.sendError(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
		return
	}

	wsc.mu.Lock()
	cancel, ok := wsc.subs[params.Subscription]
	delete(wsc.subs, params.Subscription)
	wsc.mu.Unlock()

	if !ok {
		wsc.sendError(req.ID, ErrCodeInvalidParams, "Invalid params", "unknown subscription "+params.Subscription)
		return
	}

	cancel()
	wsc.sendResponse(req.ID, okResponse)
}

// enqueue runs on the event loop goroutine and must not block
func (wsc *wsConnection) enqueue(ev EventParams) {
	select {
	case wsc.events <- ev:
	default:
		wsc.mu.Lock()
		wsc.dropped++
		dropped := wsc.dropped
		wsc.mu.Unlock()
		utils.Verbose("WebSocket client too slow, dropped %d notification(s)", dropped)
	}
}

func (wsc *wsConnection) writeEvents() {
	for {
		select {
		case <-wsc.done:
			return
		case ev := <-wsc.events:
			notification := JSONRPCNotification{
				JSONRPC: "2.0",
				Method:  methodEvent,
				Params:  ev,
			}
			if err := wsc.sendJSON(notification); err != nil {
				utils.Verbose("WebSocket notification failed: %v", err)
				return
			}
		}
	}
}

// close cancels every subscription of the connection
func (wsc *wsConnection) close() {
	wsc.mu.Lock()
	subs := wsc.subs
	wsc.subs = map[string]func(){}
	wsc.mu.Unlock()

	for _, cancel := range subs {
		cancel()
	}
	close(wsc.done)
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendError(id interface{}, code int, message string, data interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()
	_ = wsc.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return wsc.conn.WriteJSON(v)
}
