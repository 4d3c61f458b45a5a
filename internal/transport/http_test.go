package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/s4vector/rga/replica"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	r := replica.New(1, 1)
	return NewServer(r, zap.NewNop())
}

func postOp(t *testing.T, srv *Server, op WireOp) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(op)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ops", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleReadEmpty(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":[]}`, rec.Body.String())
}

func TestHandleSubmitOpInsertThenRead(t *testing.T) {
	srv := newTestServer(t)

	op := WireOp{Kind: "Insert", SSN: 1, Sum: 100, SID: 9, Seq: 1, Value: "hello"}
	rec := postOp(t, srv, op)
	require.Equal(t, http.StatusAccepted, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	readRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(readRec, req)

	assert.JSONEq(t, `{"text":["hello"]}`, readRec.Body.String())
}

func TestHandleSubmitOpUnknownKindRejected(t *testing.T) {
	srv := newTestServer(t)

	op := WireOp{Kind: "Bogus", SSN: 1, Sum: 100, SID: 9, Seq: 1}
	rec := postOp(t, srv, op)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSubmitOpMalformedBodyRejected(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/ops", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyExternalAppliesLocally(t *testing.T) {
	srv := newTestServer(t)

	op := WireOp{Kind: "Insert", SSN: 1, Sum: 100, SID: 9, Seq: 1, Value: "relayed"}
	require.NoError(t, srv.ApplyExternal(op))

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.JSONEq(t, `{"text":["relayed"]}`, rec.Body.String())
}
