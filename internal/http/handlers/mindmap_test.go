package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/requestdata"
)

type fakeProjector struct {
	m *types.MindMap
}

func (f *fakeProjector) Project(_ context.Context, _ string) *types.MindMap {
	return f.m
}

func testMindMapRouter(userID uuid.UUID, projector MapProjector) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mh := NewMindMapHandler(projector)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	router.GET("/api/mindmap/:id", mh.GetMindMap)
	return router
}

func TestGetMindMap(t *testing.T) {
	m := &types.MindMap{
		Nodes: []types.VisualNode{{ID: "root", Label: "线性代数", Type: "ConceptNode"}},
		Edges: []types.VisualEdge{},
	}
	router := testMindMapRouter(uuid.New(), &fakeProjector{m: m})

	req := httptest.NewRequest(http.MethodGet, "/api/mindmap/root", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got types.MindMap
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got.Nodes) != 1 || got.Nodes[0].ID != "root" {
		t.Fatalf("unexpected map: %+v", got)
	}
}

func TestGetMindMapEmptyStillOK(t *testing.T) {
	empty := &types.MindMap{Nodes: []types.VisualNode{}, Edges: []types.VisualEdge{}}
	router := testMindMapRouter(uuid.New(), &fakeProjector{m: empty})

	req := httptest.NewRequest(http.MethodGet, "/api/mindmap/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("empty projection must still answer 200, got %d", w.Code)
	}
	var got types.MindMap
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got.Nodes) != 0 || len(got.Edges) != 0 {
		t.Fatalf("expected empty map, got %+v", got)
	}
}

func TestGetMindMapUnauthenticated(t *testing.T) {
	router := testMindMapRouter(uuid.Nil, &fakeProjector{m: &types.MindMap{}})

	req := httptest.NewRequest(http.MethodGet, "/api/mindmap/root", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
