// Package transport is the reference external collaborator spec.md §6
// describes: it is deliberately outside the convergence kernel
// (package engine/replica never imports it) and owns encoding operation
// records to/from JSON, delivering them over HTTP/WebSocket, and calling
// replica.RemoteApply on receipt.
//
// It replaces the hand-rolled RFC 6455 frame codec sketched in the
// Polqt-golang-journey scaffold with the ecosystem libraries the rest of
// the retrieval pack reaches for: gin for routing, gorilla/websocket for
// the upgrade and frame (de)coding, and gin-contrib/cors for browser
// clients.
package transport

import (
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/s4vector/rga/engine"
	"github.com/s4vector/rga/replica"
)

// WireOp is the JSON wire shape for engine.OpRecord. The engine itself
// defines no serialization (spec.md §1/§6); this is the collaborator's
// concern.
type WireOp struct {
	Kind      string `json:"kind"`
	SSN       uint64 `json:"ssn"`
	Sum       uint64 `json:"sum"`
	SID       uint64 `json:"sid"`
	Seq       uint64 `json:"seq"`
	Value     string `json:"value,omitempty"`
	LeftSet   bool   `json:"left_set,omitempty"`
	Left      uint64 `json:"left_sum,omitempty"`
	LeftSSN   uint64 `json:"left_ssn,omitempty"`
	LeftSID   uint64 `json:"left_sid,omitempty"`
	LeftSeq   uint64 `json:"left_seq,omitempty"`
	RightSet  bool   `json:"right_set,omitempty"`
	Right     uint64 `json:"right_sum,omitempty"`
	RightSSN  uint64 `json:"right_ssn,omitempty"`
	RightSID  uint64 `json:"right_sid,omitempty"`
	RightSeq  uint64 `json:"right_seq,omitempty"`
}

// Server exposes a replica over HTTP + WebSocket. It holds no engine
// state of its own: every request is forwarded to the wrapped replica.
// Replica per spec.md §5 is single-threaded cooperative, so Server
// serializes every access behind mu — gin and the WebSocket read loop
// both run handlers on their own goroutines.
type Server struct {
	mu      sync.Mutex
	replica *replica.Replica
	logger  *zap.Logger
	engine  *gin.Engine
	hub     *wsHub

	// onAccepted, if set, fires after an op from a client is applied
	// successfully, letting a collaborator (internal/broker) relay it to
	// other processes sharing the session.
	onAccepted func(WireOp)
}

// OnAccepted registers fn to be called with every client-submitted
// operation after it is applied locally. Only one callback is supported;
// calling it again replaces the previous one.
func (s *Server) OnAccepted(fn func(WireOp)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAccepted = fn
}

// NewServer builds a gin engine wired to replica's public API, with CORS
// enabled for browser-based demo clients.
func NewServer(r *replica.Replica, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := gin.New()
	g.Use(gin.Recovery())
	g.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost},
		AllowHeaders:    []string{"Content-Type"},
	}))

	s := &Server{
		replica: r,
		logger:  logger,
		engine:  g,
		hub:     newWSHub(logger),
	}

	g.GET("/read", s.handleRead)
	g.POST("/ops", s.handleSubmitOp)
	g.GET("/ws", s.handleWebSocket)

	return s
}

// Handler returns the http.Handler backing the server, for use with
// http.Server or httptest.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleRead(c *gin.Context) {
	s.mu.Lock()
	text := s.replica.Read()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Server) handleSubmitOp(c *gin.Context) {
	var wire WireOp
	if err := c.ShouldBindJSON(&wire); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	op, err := wire.toOpRecord()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	err = s.replica.RemoteApply(op)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("remote apply failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	s.hub.broadcast(wire)
	s.notifyAccepted(wire)
	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

// ApplyExternal applies an operation that arrived through a collaborator
// outside HTTP/WebSocket (internal/broker relaying another process's
// accepted op) and fans it out to this server's own WebSocket clients.
// It takes the same lock as every other replica access so the broker's
// subscriber goroutine can never race gin's request handlers.
func (s *Server) ApplyExternal(op WireOp) error {
	rec, err := op.toOpRecord()
	if err != nil {
		return err
	}

	s.mu.Lock()
	err = s.replica.RemoteApply(rec)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.hub.broadcast(op)
	return nil
}

func (s *Server) notifyAccepted(op WireOp) {
	s.mu.Lock()
	fn := s.onAccepted
	s.mu.Unlock()
	if fn != nil {
		fn(op)
	}
}

// ToWireOp converts an engine.OpRecord into its JSON wire shape, for use
// by collaborators (cmd/rgaserver, internal/broker) that need to publish
// a locally-applied operation without reaching into transport's private
// handler state.
func ToWireOp(op engine.OpRecord) WireOp {
	w := WireOp{
		Kind:  op.Kind.String(),
		SSN:   op.ID.SSN,
		Sum:   op.ID.Sum,
		SID:   op.ID.SID,
		Seq:   op.ID.Seq,
		Value: op.Value,
	}
	if op.Left.Present {
		w.LeftSet = true
		w.LeftSSN, w.Left, w.LeftSID, w.LeftSeq = op.Left.ID.SSN, op.Left.ID.Sum, op.Left.ID.SID, op.Left.ID.Seq
	}
	if op.Right.Present {
		w.RightSet = true
		w.RightSSN, w.Right, w.RightSID, w.RightSeq = op.Right.ID.SSN, op.Right.ID.Sum, op.Right.ID.SID, op.Right.ID.Seq
	}
	return w
}
