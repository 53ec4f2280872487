package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deepstudy/deepstudy-backend/internal/data/graph"
	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/http/response"
	"github.com/deepstudy/deepstudy-backend/internal/modules/agent"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
	"github.com/deepstudy/deepstudy-backend/internal/requestdata"
)

type fakeSubmitter struct {
	result *agent.SubmitTurnResult
	err    error
	gotIn  *agent.SubmitTurnInput
}

func (f *fakeSubmitter) SubmitTurn(_ context.Context, in agent.SubmitTurnInput) (*agent.SubmitTurnResult, error) {
	f.gotIn = &in
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTreeReader struct {
	tree *types.DialogueTree
	err  error
}

func (f *fakeTreeReader) BuildTree(_ context.Context, _, _ string, _ int) (*types.DialogueTree, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tree, nil
}

func testChatRouter(t *testing.T, submitter TurnSubmitter, trees TreeReader, userID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	ch := NewChatHandler(submitter, trees, 0, log)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	router.POST("/api/chat", ch.SubmitTurn)
	router.GET("/api/chat/conversation/:id", ch.GetConversation)
	return router
}

func decodeError(t *testing.T, body []byte) response.ErrorEnvelope {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, body)
	}
	return env
}

func TestSubmitTurnHandlerOK(t *testing.T) {
	userID := uuid.New()
	submitter := &fakeSubmitter{result: &agent.SubmitTurnResult{
		NodeID: "n1",
		Answer: "回答",
		Intent: types.IntentConcept,
	}}
	router := testChatRouter(t, submitter, &fakeTreeReader{}, userID)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"什么是 Schur 分解？"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got agent.SubmitTurnResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.NodeID != "n1" || got.Answer != "回答" {
		t.Fatalf("unexpected body: %+v", got)
	}
	if submitter.gotIn == nil || submitter.gotIn.UserID != userID {
		t.Fatalf("user id not passed through: %+v", submitter.gotIn)
	}
}

func TestSubmitTurnHandlerValidation(t *testing.T) {
	router := testChatRouter(t, &fakeSubmitter{}, &fakeTreeReader{}, uuid.New())

	cases := []string{
		`{"query":""}`,
		`{"query":"q","fragment_id":"f1"}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestSubmitTurnHandlerUnauthenticated(t *testing.T) {
	router := testChatRouter(t, &fakeSubmitter{}, &fakeTreeReader{}, uuid.Nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestSubmitTurnHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{graph.ErrDanglingReference, http.StatusUnprocessableEntity, "dangling_parent"},
		{graph.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
		{graph.ErrNotFound, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		router := testChatRouter(t, &fakeSubmitter{err: tc.err}, &fakeTreeReader{}, uuid.New())

		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"q","parent_id":"p"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != tc.wantStatus {
			t.Fatalf("%v: status = %d, want %d", tc.err, w.Code, tc.wantStatus)
		}
		if env := decodeError(t, w.Body.Bytes()); env.Error.Code != tc.wantCode {
			t.Fatalf("%v: code = %q, want %q", tc.err, env.Error.Code, tc.wantCode)
		}
	}
}

func TestGetConversation(t *testing.T) {
	tree := &types.DialogueTree{
		DialogueNode: types.DialogueNode{NodeID: "root", Content: "q"},
		Children:     []*types.DialogueTree{},
	}
	router := testChatRouter(t, &fakeSubmitter{}, &fakeTreeReader{tree: tree}, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversation/root", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got types.DialogueTree
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.NodeID != "root" {
		t.Fatalf("unexpected tree: %+v", got)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	router := testChatRouter(t, &fakeSubmitter{}, &fakeTreeReader{err: graph.ErrNotFound}, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversation/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetConversationBadDepth(t *testing.T) {
	router := testChatRouter(t, &fakeSubmitter{}, &fakeTreeReader{}, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversation/root?depth=zero", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
