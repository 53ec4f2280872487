package graph

import (
	"fmt"
	"strings"
	"time"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
)

// DecodeDialogueNode maps a raw property bag from the backend into a typed
// DialogueNode. Missing optional fields get explicit defaults; a missing
// node_id is the one hard failure, because every traversal keys on it.
func DecodeDialogueNode(raw any) (*types.DialogueNode, error) {
	props, ok := raw.(map[string]any)
	if !ok || props == nil {
		return nil, fmt.Errorf("decode dialogue node: not a property map (%T)", raw)
	}
	nodeID := StringProp(props, "node_id")
	if nodeID == "" {
		return nil, fmt.Errorf("decode dialogue node: missing node_id")
	}
	return &types.DialogueNode{
		NodeID:       nodeID,
		UserID:       StringProp(props, "user_id"),
		Role:         StringProp(props, "role"),
		Content:      StringProp(props, "content"),
		Intent:       types.Intent(StringProp(props, "intent")),
		MasteryScore: FloatProp(props, "mastery_score"),
		Timestamp:    TimeProp(props, "timestamp"),
	}, nil
}

func StringProp(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func FloatProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// TimeProp parses the ISO-8601 timestamp property. Zero time on absence or
// parse failure; tree ordering then falls back to node_id.
func TimeProp(props map[string]any, key string) time.Time {
	switch v := props[key].(type) {
	case time.Time:
		return v
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return ts
		}
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
