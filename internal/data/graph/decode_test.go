package graph

import (
	"errors"
	"testing"
	"time"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
)

func TestDecodeDialogueNode(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 123456789, time.UTC)
	props := map[string]any{
		"node_id":       "n1",
		"user_id":       "u1",
		"role":          "assistant",
		"content":       "回答内容",
		"intent":        "code",
		"mastery_score": 0.4,
		"timestamp":     ts.Format(time.RFC3339Nano),
	}

	node, err := DecodeDialogueNode(props)
	if err != nil {
		t.Fatalf("DecodeDialogueNode: %v", err)
	}
	if node.NodeID != "n1" || node.UserID != "u1" || node.Role != "assistant" {
		t.Fatalf("unexpected node: %+v", node)
	}
	if node.Intent != types.IntentCode {
		t.Fatalf("intent = %q", node.Intent)
	}
	if node.MasteryScore != 0.4 {
		t.Fatalf("mastery_score = %v", node.MasteryScore)
	}
	if !node.Timestamp.Equal(ts) {
		t.Fatalf("timestamp = %v, want %v", node.Timestamp, ts)
	}
}

func TestDecodeDialogueNodeMissingNodeID(t *testing.T) {
	if _, err := DecodeDialogueNode(map[string]any{"content": "x"}); err == nil {
		t.Fatalf("expected error for missing node_id")
	}
	if _, err := DecodeDialogueNode("not a map"); err == nil {
		t.Fatalf("expected error for non-map input")
	}
}

func TestDecodeDialogueNodeDefaults(t *testing.T) {
	node, err := DecodeDialogueNode(map[string]any{"node_id": "n1"})
	if err != nil {
		t.Fatalf("DecodeDialogueNode: %v", err)
	}
	if node.Content != "" || node.Intent != "" || node.MasteryScore != 0 {
		t.Fatalf("expected zero defaults, got %+v", node)
	}
	if !node.Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got %v", node.Timestamp)
	}
}

func TestTimeProp(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	if got := TimeProp(map[string]any{"t": ts}, "t"); !got.Equal(ts) {
		t.Fatalf("time.Time passthrough: %v", got)
	}
	if got := TimeProp(map[string]any{"t": "2026-03-01T10:30:00Z"}, "t"); !got.Equal(ts) {
		t.Fatalf("RFC3339 parse: %v", got)
	}
	if got := TimeProp(map[string]any{"t": "garbage"}, "t"); !got.IsZero() {
		t.Fatalf("expected zero time for garbage, got %v", got)
	}
	if got := TimeProp(map[string]any{}, "t"); !got.IsZero() {
		t.Fatalf("expected zero time for absent key, got %v", got)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Fatalf("classify(nil) must be nil")
	}
	err := classify(errors.New("syntax error"))
	if !errors.Is(err, ErrQuery) {
		t.Fatalf("expected ErrQuery wrap, got %v", err)
	}
}
