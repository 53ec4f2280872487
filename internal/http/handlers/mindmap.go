package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/http/response"
	"github.com/deepstudy/deepstudy-backend/internal/requestdata"
)

// MapProjector renders the mind-map view. Satisfied by mindmap.Projector.
type MapProjector interface {
	Project(ctx context.Context, anchorID string) *types.MindMap
}

type MindMapHandler struct {
	projector MapProjector
}

func NewMindMapHandler(projector MapProjector) *MindMapHandler {
	return &MindMapHandler{projector: projector}
}

// GetMindMap always answers 200: the projection degrades to an empty map
// rather than failing the request.
func (mh *MindMapHandler) GetMindMap(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("no authenticated user"))
		return
	}

	anchorID := c.Param("id")
	m := mh.projector.Project(c.Request.Context(), anchorID)
	response.RespondOK(c, m)
}
