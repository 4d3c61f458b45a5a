package transport

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/s4vector/rga/engine"
	"github.com/s4vector/rga/s4vector"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsHub fans out accepted operations to every connected WebSocket client.
// Client-submitted operations reach the owning replica through
// handleWebSocket, not through the hub.
type wsHub struct {
	mu      sync.Mutex
	logger  *zap.Logger
	clients map[*websocket.Conn]struct{}
}

func newWSHub(logger *zap.Logger) *wsHub {
	return &wsHub{logger: logger, clients: make(map[*websocket.Conn]struct{})}
}

func (h *wsHub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *wsHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *wsHub) broadcast(op WireOp) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteJSON(op); err != nil {
			h.logger.Warn("ws broadcast failed, dropping client", zap.Error(err))
			go c.Close()
			delete(h.clients, c)
		}
	}
}

// handleWebSocket upgrades the connection, streams remote operations in
// as they arrive, and relays every locally-applied operation back out —
// the same duty the spec assigns to "the network": deliver at-least-once,
// in any order, and let the causal buffer sort out readiness.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	connID := uuid.NewString()
	log := s.logger.With(zap.String("conn_id", connID))

	s.hub.add(conn)
	log.Info("ws client connected")
	defer func() {
		s.hub.remove(conn)
		conn.Close()
		log.Info("ws client disconnected")
	}()

	for {
		var wire WireOp
		if err := conn.ReadJSON(&wire); err != nil {
			return
		}

		op, err := wire.toOpRecord()
		if err != nil {
			conn.WriteJSON(gin.H{"error": err.Error()})
			continue
		}

		s.mu.Lock()
		err = s.replica.RemoteApply(op)
		s.mu.Unlock()
		if err != nil {
			log.Warn("ws remote apply failed", zap.Error(err))
			conn.WriteJSON(gin.H{"error": err.Error()})
			continue
		}

		s.hub.broadcast(wire)
		s.notifyAccepted(wire)
	}
}

// ToOpRecord converts a wire-shaped operation back into an engine.OpRecord,
// for collaborators (internal/broker, cmd/rgaserver) that receive WireOp
// values outside of an HTTP/WebSocket request.
func ToOpRecord(w WireOp) (engine.OpRecord, error) {
	return w.toOpRecord()
}

func (w WireOp) toOpRecord() (engine.OpRecord, error) {
	kind, err := parseKind(w.Kind)
	if err != nil {
		return engine.OpRecord{}, err
	}

	op := engine.OpRecord{
		Kind:  kind,
		ID:    s4vector.S4Vector{SSN: w.SSN, Sum: w.Sum, SID: w.SID, Seq: w.Seq},
		Value: w.Value,
	}
	if w.LeftSet {
		op.Left = engine.PresentAnchor(s4vector.S4Vector{SSN: w.LeftSSN, Sum: w.Left, SID: w.LeftSID, Seq: w.LeftSeq})
	} else {
		op.Left = engine.AbsentAnchor
	}
	if w.RightSet {
		op.Right = engine.PresentAnchor(s4vector.S4Vector{SSN: w.RightSSN, Sum: w.Right, SID: w.RightSID, Seq: w.RightSeq})
	} else {
		op.Right = engine.AbsentAnchor
	}
	return op, nil
}

func parseKind(s string) (engine.Kind, error) {
	switch s {
	case engine.Insert.String():
		return engine.Insert, nil
	case engine.Delete.String():
		return engine.Delete, nil
	case engine.Update.String():
		return engine.Update, nil
	default:
		return 0, fmt.Errorf("transport: unknown op kind %q", s)
	}
}
