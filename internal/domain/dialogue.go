package domain

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Intent classifies a query and selects the answering strategy.
type Intent string

const (
	IntentDerivation Intent = "derivation"
	IntentCode       Intent = "code"
	IntentConcept    Intent = "concept"
)

// EdgeType is the closed set of relationship types the dialogue graph can
// create or traverse. LinkNodes rejects anything outside this set before
// query composition, so type names are never caller-controlled strings.
type EdgeType string

const (
	EdgeHasChild   EdgeType = "HAS_CHILD"
	EdgeHasKeyword EdgeType = "HAS_KEYWORD"
	EdgeRequires   EdgeType = "REQUIRES"
	EdgePartOf     EdgeType = "PART_OF"
)

func (t EdgeType) Valid() bool {
	switch t {
	case EdgeHasChild, EdgeHasKeyword, EdgeRequires, EdgePartOf:
		return true
	default:
		return false
	}
}

// DialogueNode is one conversational turn persisted as a graph vertex.
// NodeID is a caller-generated UUID string, assigned once and immutable.
type DialogueNode struct {
	NodeID       string    `json:"node_id"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Intent       Intent    `json:"intent,omitempty"`
	MasteryScore float64   `json:"mastery_score"`
	Timestamp    time.Time `json:"timestamp"`
}

// DialogueTree is a node plus its HAS_CHILD descendants, each level ordered
// by (timestamp, node_id).
type DialogueTree struct {
	DialogueNode
	Children []*DialogueTree `json:"children"`
}

// VisualNode and VisualEdge are the flattened mind-map projection format.
// ID of a VisualEdge is the backend-assigned relationship element id;
// parallel edges with distinct ids are both kept.
type VisualNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type VisualEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

type MindMap struct {
	Nodes []VisualNode `json:"nodes"`
	Edges []VisualEdge `json:"edges"`
}
