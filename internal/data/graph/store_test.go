package graph

import (
	"context"
	"errors"
	"testing"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

func disconnectedStore(t *testing.T) *Store {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewStore(nil, log)
}

func TestUpsertDialogueNodeRejectsMissingNodeID(t *testing.T) {
	s := disconnectedStore(t)

	err := s.UpsertDialogueNode(context.Background(), &types.DialogueNode{})
	if !errors.Is(err, ErrQuery) {
		t.Fatalf("expected ErrQuery for missing node_id, got %v", err)
	}
	if err := s.UpsertDialogueNode(context.Background(), nil); !errors.Is(err, ErrQuery) {
		t.Fatalf("expected ErrQuery for nil node, got %v", err)
	}
}

func TestUpsertDialogueNodeWithoutBackend(t *testing.T) {
	s := disconnectedStore(t)

	err := s.UpsertDialogueNode(context.Background(), &types.DialogueNode{NodeID: "n1"})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestLinkNodesRejectsUnknownEdgeType(t *testing.T) {
	s := disconnectedStore(t)

	// Edge type validation comes first: a hostile type string must never
	// reach query composition, connected or not.
	err := s.LinkNodes(context.Background(), "a", "b", types.EdgeType("HAS_CHILD]->() DETACH DELETE n//"), "")
	if !errors.Is(err, ErrInvalidEdgeType) {
		t.Fatalf("expected ErrInvalidEdgeType, got %v", err)
	}
}

func TestLinkNodesRejectsEmptyEndpoints(t *testing.T) {
	s := disconnectedStore(t)

	if err := s.LinkNodes(context.Background(), "", "b", types.EdgeHasChild, ""); !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference for empty parent, got %v", err)
	}
	if err := s.LinkNodes(context.Background(), "a", " ", types.EdgeHasChild, ""); !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference for empty child, got %v", err)
	}
}

func TestGetNodeWithoutBackend(t *testing.T) {
	s := disconnectedStore(t)

	if _, err := s.GetNode(context.Background(), "n1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestReadRowsWithoutBackend(t *testing.T) {
	s := disconnectedStore(t)

	if _, err := s.ReadRows(context.Background(), "MATCH (n) RETURN n", nil); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
