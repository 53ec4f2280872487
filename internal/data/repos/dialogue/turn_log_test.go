package dialogue

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/deepstudy/deepstudy-backend/internal/data/repos/testutil"
	types "github.com/deepstudy/deepstudy-backend/internal/domain"
)

func TestTurnLogRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	// Create writes through the repo's own handle, so this test uses the
	// shared db and cleans up after itself.
	repo := NewTurnLogRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "turnlogrepo@example.com")

	nodeID := uuid.NewString()
	row := &types.TurnLog{
		UserID: u.ID,
		NodeID: nodeID,
		Query:  "用 Python 实现快速排序",
		Answer: "def quicksort(arr): ...",
		Intent: "code",
	}
	if err := repo.Create(ctx, row); err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		db.Where("node_id = ?", nodeID).Delete(&types.TurnLog{})
	})

	gotByNode, err := repo.GetByNodeIDs(ctx, nil, []string{nodeID})
	if err != nil {
		t.Fatalf("GetByNodeIDs: %v", err)
	}
	if len(gotByNode) != 1 || gotByNode[0].Intent != "code" {
		t.Fatalf("GetByNodeIDs: unexpected result: %+v", gotByNode)
	}

	gotByUser, err := repo.GetByUserID(ctx, nil, u.ID, 10)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(gotByUser) != 1 || gotByUser[0].NodeID != nodeID {
		t.Fatalf("GetByUserID: unexpected result: %+v", gotByUser)
	}
}
