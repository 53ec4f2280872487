package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
	"github.com/deepstudy/deepstudy-backend/internal/platform/neo4jdb"
)

// Store is the sole owner of graph connection state. DialogueNode values
// are exchanged by copy; nothing returned from here references driver
// internals. Sessions are scoped per operation and never held across
// completion calls.
type Store struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewStore(client *neo4jdb.Client, log *logger.Logger) *Store {
	return &Store{client: client, log: log.With("store", "DialogueGraph")}
}

// InitSchema creates the node_id uniqueness constraint. Best-effort; a
// restricted user may not be allowed to create constraints.
func (s *Store) InitSchema(ctx context.Context) {
	if s.client == nil || s.client.Driver == nil {
		return
	}
	session := s.newSession(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT dialogue_node_id_unique IF NOT EXISTS FOR (n:DialogueNode) REQUIRE n.node_id IS UNIQUE`,
		`CREATE INDEX dialogue_node_user_idx IF NOT EXISTS FOR (n:DialogueNode) ON (n.user_id)`,
	}
	for _, q := range stmts {
		if res, err := session.Run(ctx, q, nil); err != nil {
			s.log.Warn("schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}
}

// UpsertDialogueNode is an idempotent create-or-replace keyed by node_id.
// Mutable fields are overwritten when the node already exists, so retried
// writes of the same turn converge instead of duplicating.
func (s *Store) UpsertDialogueNode(ctx context.Context, node *types.DialogueNode) error {
	if node == nil || strings.TrimSpace(node.NodeID) == "" {
		return fmt.Errorf("%w: missing node_id", ErrQuery)
	}
	if s.client == nil || s.client.Driver == nil {
		return ErrStoreUnavailable
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ts := node.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	session := s.newSession(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (n:DialogueNode {node_id: $node_id})
SET n.user_id = $user_id,
    n.role = $role,
    n.content = $content,
    n.intent = $intent,
    n.mastery_score = $mastery_score,
    n.timestamp = $timestamp
`, map[string]any{
			"node_id":       node.NodeID,
			"user_id":       node.UserID,
			"role":          node.Role,
			"content":       node.Content,
			"intent":        string(node.Intent),
			"mastery_score": node.MasteryScore,
			"timestamp":     ts.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

// LinkNodes creates a typed edge between two existing nodes. The edge type
// must come from the domain.EdgeType whitelist: the type name is the only
// interpolated token, everything else is a bound parameter. A missing
// endpoint fails with ErrDanglingReference and creates nothing; an
// identical existing edge is a MERGE no-op.
func (s *Store) LinkNodes(ctx context.Context, parentID, childID string, edgeType types.EdgeType, fragmentID string) error {
	if !edgeType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEdgeType, edgeType)
	}
	if strings.TrimSpace(parentID) == "" || strings.TrimSpace(childID) == "" {
		return fmt.Errorf("%w: empty endpoint id", ErrDanglingReference)
	}
	if s.client == nil || s.client.Driver == nil {
		return ErrStoreUnavailable
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := s.newSession(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, id := range []string{parentID, childID} {
			res, err := tx.Run(ctx, `MATCH (n {node_id: $node_id}) RETURN n.node_id LIMIT 1`, map[string]any{"node_id": id})
			if err != nil {
				return nil, err
			}
			if _, err := res.Single(ctx); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrDanglingReference, id)
			}
		}

		var q string
		params := map[string]any{"parent_id": parentID, "child_id": childID}
		if strings.TrimSpace(fragmentID) != "" {
			q = fmt.Sprintf(`
MATCH (parent {node_id: $parent_id}), (child {node_id: $child_id})
MERGE (parent)-[r:%s {fragment_id: $fragment_id}]->(child)
`, edgeType)
			params["fragment_id"] = fragmentID
		} else {
			q = fmt.Sprintf(`
MATCH (parent {node_id: $parent_id}), (child {node_id: $child_id})
MERGE (parent)-[r:%s]->(child)
`, edgeType)
		}
		res, err := tx.Run(ctx, q, params)
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		if strings.Contains(err.Error(), ErrDanglingReference.Error()) {
			return fmt.Errorf("%w: parent=%s child=%s", ErrDanglingReference, parentID, childID)
		}
		return classify(err)
	}
	return nil
}

// GetNode fetches a single dialogue node by id.
func (s *Store) GetNode(ctx context.Context, nodeID string) (*types.DialogueNode, error) {
	if s.client == nil || s.client.Driver == nil {
		return nil, ErrStoreUnavailable
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.ReadRows(ctx, `
MATCH (n:DialogueNode {node_id: $node_id})
RETURN properties(n) AS props
`, map[string]any{"node_id": nodeID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	node, err := DecodeDialogueNode(rows[0]["props"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return node, nil
}

// ReadRows executes a read query and returns its records as row maps. The
// store does not interpret the query; callers hold their Cypher as fixed
// parameterized templates (no interpolation of caller input).
func (s *Store) ReadRows(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	if s.client == nil || s.client.Driver == nil {
		return nil, ErrStoreUnavailable
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := s.newSession(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			rows = append(rows, rec.AsMap())
		}
		return rows, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return out.([]map[string]any), nil
}

func (s *Store) newSession(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.client.Database,
	})
}
