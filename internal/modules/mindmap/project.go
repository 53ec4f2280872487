package mindmap

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deepstudy/deepstudy-backend/internal/data/graph"
	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/platform/envutil"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

const (
	// labelRunes is how much node content survives into a display label.
	labelRunes = 15

	placeholderLabel = "(untitled)"

	// rootWalkLimit caps the backward walk so a cyclic graph cannot hang
	// the projection.
	rootWalkLimit = 100
)

// RowSource is the slice of the graph store the projector reads through.
type RowSource interface {
	ReadRows(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Projector flattens a graph neighborhood into the node/edge set a mind-map
// widget renders. It never returns an error: visualization is non-critical,
// so every failure degrades to a smaller (possibly empty) map.
type Projector struct {
	store    RowSource
	cache    *redis.Client
	cacheTTL time.Duration
	log      *logger.Logger
}

func NewProjector(store RowSource, cache *redis.Client, log *logger.Logger) *Projector {
	return &Projector{
		store:    store,
		cache:    cache,
		cacheTTL: time.Duration(envutil.Int("MINDMAP_CACHE_TTL_SECONDS", 60)) * time.Second,
		log:      log.With("module", "MindMapProjector"),
	}
}

const resolveQuery = `
MATCH (n {node_id: $node_id})
RETURN n.node_id AS node_id
LIMIT 1
`

const parentQuery = `
MATCH (p)-[r]->(n {node_id: $node_id})
WHERE type(r) IN $edge_types
RETURN p.node_id AS parent_id
LIMIT 1
`

const neighborhoodQuery = `
MATCH (root {node_id: $node_id})
OPTIONAL MATCH (root)-[r]->(m)
RETURN properties(root) AS root_props,
       labels(root) AS root_labels,
       elementId(r) AS rel_id,
       type(r) AS rel_type,
       m.node_id AS target_id,
       properties(m) AS target_props,
       labels(m) AS target_labels
`

// Project resolves anchorID (falling back to the anchorID+"_root" naming
// convention), walks backward along HAS_CHILD/HAS_KEYWORD edges to the
// top-most ancestor, then emits that root plus its one-hop outgoing
// neighborhood, deduplicated by node id and relationship id. Malformed rows
// are dropped and counted; total failure yields an empty map.
func (p *Projector) Project(ctx context.Context, anchorID string) *types.MindMap {
	empty := &types.MindMap{Nodes: []types.VisualNode{}, Edges: []types.VisualEdge{}}
	if anchorID == "" {
		return empty
	}

	if cached := p.cacheGet(ctx, anchorID); cached != nil {
		return cached
	}

	resolved, err := p.resolveAnchor(ctx, anchorID)
	if err != nil {
		p.observeFailure("anchor resolution failed", anchorID, err)
		return empty
	}

	rootID, err := p.walkToRoot(ctx, resolved)
	if err != nil {
		p.observeFailure("root walk failed", anchorID, err)
		return empty
	}

	m, err := p.collect(ctx, rootID)
	if err != nil {
		p.observeFailure("neighborhood collection failed", anchorID, err)
		return empty
	}

	p.cacheSet(ctx, anchorID, m)
	return m
}

func (p *Projector) resolveAnchor(ctx context.Context, anchorID string) (string, error) {
	for _, candidate := range []string{anchorID, anchorID + "_root"} {
		rows, err := p.store.ReadRows(ctx, resolveQuery, map[string]any{"node_id": candidate})
		if err != nil {
			return "", err
		}
		if len(rows) > 0 {
			return candidate, nil
		}
	}
	return "", graph.ErrNotFound
}

// walkToRoot follows incoming HAS_CHILD/HAS_KEYWORD edges upward so that a
// fragment-level anchor still produces the map of its whole enclosing
// cluster, not just its own neighborhood.
func (p *Projector) walkToRoot(ctx context.Context, nodeID string) (string, error) {
	edgeTypes := []any{string(types.EdgeHasChild), string(types.EdgeHasKeyword)}
	seen := map[string]bool{nodeID: true}
	current := nodeID
	for i := 0; i < rootWalkLimit; i++ {
		rows, err := p.store.ReadRows(ctx, parentQuery, map[string]any{
			"node_id":    current,
			"edge_types": edgeTypes,
		})
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return current, nil
		}
		parent, _ := rows[0]["parent_id"].(string)
		if parent == "" || seen[parent] {
			return current, nil
		}
		seen[parent] = true
		current = parent
	}
	return current, nil
}

func (p *Projector) collect(ctx context.Context, rootID string) (*types.MindMap, error) {
	rows, err := p.store.ReadRows(ctx, neighborhoodQuery, map[string]any{"node_id": rootID})
	if err != nil {
		return nil, err
	}

	nodes := map[string]types.VisualNode{}
	edges := map[string]types.VisualEdge{}
	order := []string{}
	edgeOrder := []string{}
	dropped := 0

	addNode := func(id string, props map[string]any, labels []string) {
		if _, ok := nodes[id]; ok {
			return
		}
		nodes[id] = types.VisualNode{
			ID:    id,
			Label: deriveLabel(props),
			Type:  firstLabel(labels),
		}
		order = append(order, id)
	}

	for _, row := range rows {
		rootProps, _ := row["root_props"].(map[string]any)
		if rootProps != nil {
			addNode(rootID, rootProps, stringSlice(row["root_labels"]))
		}

		relID, _ := row["rel_id"].(string)
		relType, _ := row["rel_type"].(string)
		targetID, _ := row["target_id"].(string)
		targetProps, _ := row["target_props"].(map[string]any)

		if relID == "" && targetID == "" && targetProps == nil {
			// Root with no outgoing edges: the OPTIONAL MATCH row.
			continue
		}
		if relID == "" || targetID == "" {
			dropped++
			continue
		}

		addNode(targetID, targetProps, stringSlice(row["target_labels"]))
		if _, ok := edges[relID]; !ok {
			edges[relID] = types.VisualEdge{
				ID:     relID,
				Source: rootID,
				Target: targetID,
				Type:   relType,
			}
			edgeOrder = append(edgeOrder, relID)
		}
	}

	if dropped > 0 {
		p.log.Warn("dropped malformed mind-map rows", "root_id", rootID, "dropped", dropped)
	}

	out := &types.MindMap{Nodes: make([]types.VisualNode, 0, len(order)), Edges: make([]types.VisualEdge, 0, len(edgeOrder))}
	for _, id := range order {
		out.Nodes = append(out.Nodes, nodes[id])
	}
	for _, id := range edgeOrder {
		out.Edges = append(out.Edges, edges[id])
	}
	return out, nil
}

// observeFailure keeps the never-fail contract observable: store outages
// log at error level so operators can alert on them, while ordinary missing
// data stays at debug.
func (p *Projector) observeFailure(msg, anchorID string, err error) {
	switch {
	case errors.Is(err, graph.ErrStoreUnavailable):
		p.log.Error(msg, "anchor_id", anchorID, "error", err)
	case errors.Is(err, graph.ErrNotFound):
		p.log.Debug(msg, "anchor_id", anchorID, "error", err)
	default:
		p.log.Warn(msg, "anchor_id", anchorID, "error", err)
	}
}

// deriveLabel: title when present, else content truncated to 15 runes with
// an ellipsis, else a placeholder. Dialogue nodes generally carry content,
// concept nodes carry title; the map must render something for either.
func deriveLabel(props map[string]any) string {
	if props == nil {
		return placeholderLabel
	}
	if title := graph.StringProp(props, "title"); title != "" {
		return title
	}
	if content := graph.StringProp(props, "content"); content != "" {
		runes := []rune(content)
		if len(runes) > labelRunes {
			return string(runes[:labelRunes]) + "…"
		}
		return content
	}
	return placeholderLabel
}

func firstLabel(labels []string) string {
	if len(labels) > 0 {
		return labels[0]
	}
	return "Node"
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (p *Projector) cacheGet(ctx context.Context, anchorID string) *types.MindMap {
	if p.cache == nil {
		return nil
	}
	raw, err := p.cache.Get(ctx, cacheKey(anchorID)).Bytes()
	if err != nil {
		return nil
	}
	var m types.MindMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return &m
}

func (p *Projector) cacheSet(ctx context.Context, anchorID string, m *types.MindMap) {
	if p.cache == nil || m == nil {
		return
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, cacheKey(anchorID), raw, p.cacheTTL).Err(); err != nil {
		p.log.Debug("mind-map cache write failed", "anchor_id", anchorID, "error", err)
	}
}

func cacheKey(anchorID string) string { return "mindmap:" + anchorID }
