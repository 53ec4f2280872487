package repos

import (
	"gorm.io/gorm"

	"github.com/deepstudy/deepstudy-backend/internal/data/repos/auth"
	"github.com/deepstudy/deepstudy-backend/internal/data/repos/dialogue"
	"github.com/deepstudy/deepstudy-backend/internal/data/repos/user"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type TurnLogRepo = dialogue.TurnLogRepo

type Repos struct {
	User      UserRepo
	UserToken UserTokenRepo
	TurnLog   TurnLogRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) *Repos {
	return &Repos{
		User:      user.NewUserRepo(db, baseLog),
		UserToken: auth.NewUserTokenRepo(db, baseLog),
		TurnLog:   dialogue.NewTurnLogRepo(db, baseLog),
	}
}
