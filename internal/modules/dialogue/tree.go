package dialogue

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/deepstudy/deepstudy-backend/internal/data/graph"
	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

// DefaultMaxDepth bounds recursion below the root. Nodes beyond the bound
// are omitted, not an error.
const DefaultMaxDepth = 10

// childFetchConcurrency bounds per-level fan-out against the store pool.
const childFetchConcurrency = 4

// RowSource is the slice of the graph store the builder needs. The builder
// never mutates the graph.
type RowSource interface {
	ReadRows(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

type TreeBuilder struct {
	store RowSource
	log   *logger.Logger
}

func NewTreeBuilder(store RowSource, log *logger.Logger) *TreeBuilder {
	return &TreeBuilder{store: store, log: log.With("module", "TreeBuilder")}
}

const rootQuery = `
MATCH (n:DialogueNode {node_id: $node_id, user_id: $user_id})
RETURN properties(n) AS props
`

const childrenQuery = `
MATCH (parent:DialogueNode {node_id: $parent_id})-[:HAS_CHILD]->(child:DialogueNode)
RETURN properties(child) AS props
ORDER BY child.timestamp ASC, child.node_id ASC
`

// BuildTree reconstructs the HAS_CHILD subtree under rootID for userID.
// Returns graph.ErrNotFound when the root is absent or owned by someone
// else (indistinguishable, so existence is not leaked). Children at each
// level are ordered by (timestamp, node_id). Cycles and children without a
// node_id are skipped rather than failing the build.
func (b *TreeBuilder) BuildTree(ctx context.Context, rootID, userID string, maxDepth int) (*types.DialogueTree, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	rows, err := b.store.ReadRows(ctx, rootQuery, map[string]any{
		"node_id": rootID,
		"user_id": userID,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, graph.ErrNotFound
	}
	rootNode, err := graph.DecodeDialogueNode(rows[0]["props"])
	if err != nil {
		return nil, graph.ErrNotFound
	}

	root := &types.DialogueTree{DialogueNode: *rootNode, Children: []*types.DialogueTree{}}
	visited := map[string]bool{root.NodeID: true}
	frontier := []*types.DialogueTree{root}

	// Level-by-level worklist instead of per-node recursion: the depth
	// counter is explicit and the visited set guards against cycles in
	// partially corrupt data.
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		children := make([][]*types.DialogueNode, len(frontier))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(childFetchConcurrency)
		for i, parent := range frontier {
			g.Go(func() error {
				fetched, err := b.fetchChildren(gctx, parent.NodeID)
				if err != nil {
					return err
				}
				children[i] = fetched
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		// Attach sequentially in frontier order so the visited set and the
		// resulting tree are deterministic regardless of fetch completion
		// order.
		next := make([]*types.DialogueTree, 0)
		for i, parent := range frontier {
			for _, child := range children[i] {
				if visited[child.NodeID] {
					b.log.Warn("skipping repeated node in dialogue tree", "node_id", child.NodeID)
					continue
				}
				visited[child.NodeID] = true
				sub := &types.DialogueTree{DialogueNode: *child, Children: []*types.DialogueTree{}}
				parent.Children = append(parent.Children, sub)
				next = append(next, sub)
			}
		}
		frontier = next
	}

	return root, nil
}

func (b *TreeBuilder) fetchChildren(ctx context.Context, parentID string) ([]*types.DialogueNode, error) {
	rows, err := b.store.ReadRows(ctx, childrenQuery, map[string]any{"parent_id": parentID})
	if err != nil {
		return nil, err
	}
	out := make([]*types.DialogueNode, 0, len(rows))
	for _, row := range rows {
		node, err := graph.DecodeDialogueNode(row["props"])
		if err != nil {
			// Malformed child (no node_id): degrade instead of failing the
			// whole build.
			b.log.Warn("skipping malformed dialogue node", "parent_id", parentID, "error", err)
			continue
		}
		out = append(out, node)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].NodeID < out[j].NodeID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
