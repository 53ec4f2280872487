package dialogue

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

// TurnLogRepo stores the flat audit row written after each turn. Create
// takes a single row because the orchestrator writes turns one at a time.
type TurnLogRepo interface {
	Create(ctx context.Context, row *types.TurnLog) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.TurnLog, error)
	GetByNodeIDs(ctx context.Context, tx *gorm.DB, nodeIDs []string) ([]*types.TurnLog, error)
}

type turnLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTurnLogRepo(db *gorm.DB, baseLog *logger.Logger) TurnLogRepo {
	repoLog := baseLog.With("repo", "TurnLogRepo")
	return &turnLogRepo{db: db, log: repoLog}
}

func (tlr *turnLogRepo) Create(ctx context.Context, row *types.TurnLog) error {
	if row == nil {
		return nil
	}
	return tlr.db.WithContext(ctx).Create(row).Error
}

func (tlr *turnLogRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.TurnLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = tlr.db
	}

	if limit <= 0 {
		limit = 50
	}

	var results []*types.TurnLog
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tlr *turnLogRepo) GetByNodeIDs(ctx context.Context, tx *gorm.DB, nodeIDs []string) ([]*types.TurnLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = tlr.db
	}

	var results []*types.TurnLog
	if len(nodeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("node_id IN ?", nodeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
