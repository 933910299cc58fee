package boreas

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/coder/websocket"

	"github.com/RobertWHurst/navaros"
)

// Responder lets a handler return a ready-made response instead of a value
// to serialize. The HTTP front door checks for it before falling back to
// JSON serialization; the dispatcher itself never examines results.
type Responder interface {
	WriteResponse(res http.ResponseWriter) error
}

var _ http.Handler = &Dispatcher{}

// ServeHTTP implements http.Handler. WebSocket upgrade requests become
// envelope message loops; anything else is translated into a neutral
// request descriptor and dispatched. No-match maps to 404. Binding errors
// map to 500, matching the long-standing behavior of servers built on this
// core, and invocation faults map to 500 as well.
func (d *Dispatcher) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	if isWebsocketUpgradeRequest(req) {
		d.handleWebsocketConnection(res, req)
		return
	}

	result, err := d.Dispatch(RequestFromHTTP(req))
	if err != nil {
		writeHTTPError(res, err)
		return
	}

	if responder, ok := result.(Responder); ok {
		if err := responder.WriteResponse(res); err != nil {
			writeHTTPError(res, err)
		}
		return
	}

	if result == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	// By the time encoding fails, headers may already be on the wire;
	// nothing more can be written safely.
	_ = json.NewEncoder(res).Encode(result)
}

// Middleware returns a Navaros middleware function. WebSocket upgrade
// requests are taken over by the dispatcher; plain requests are dispatched
// if a route matches and passed along the Navaros chain otherwise.
func (d *Dispatcher) Middleware() navaros.HandlerFunc {
	return func(ctx *navaros.Context) {
		req := ctx.Request()

		if isWebsocketUpgradeRequest(req) {
			navaros.CtxInhibitResponse(ctx)
			d.handleWebsocketConnection(ctx.ResponseWriter(), req)
			return
		}

		if _, ok := d.table.Match(req.Method, req.URL.EscapedPath()); !ok {
			ctx.Next()
			return
		}

		navaros.CtxInhibitResponse(ctx)
		d.ServeHTTP(ctx.ResponseWriter(), req)
	}
}

func writeHTTPError(res http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(res, "Not Found", http.StatusNotFound)
		return
	}
	http.Error(res, err.Error(), http.StatusInternalServerError)
}

func isWebsocketUpgradeRequest(req *http.Request) bool {
	return req.Header.Get("Upgrade") == "websocket"
}

func (d *Dispatcher) handleWebsocketConnection(res http.ResponseWriter, req *http.Request) {
	origins := d.config.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	conn, err := websocket.Accept(res, req, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		return
	}

	info := &ConnectionInfo{
		RemoteAddr: req.RemoteAddr,
		Headers:    req.Header,
	}
	session := NewSession(info, NewWebSocketConnection(conn))
	connection := session.connection

	defer d.registry.Remove(session.ID())

	for {
		data, err := connection.Read(req.Context())
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
			websocket.CloseStatus(err) == websocket.StatusGoingAway ||
			err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		result, handled, err := d.DispatchEnvelope(req.Context(), session, data)
		if err != nil {
			// Per-message failures are contained to this connection. The
			// connection stays open; the client gets an error envelope.
			_ = session.SendError(err.Error())
			continue
		}
		if handled && result != nil {
			_ = session.Send(result)
		}
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
}
