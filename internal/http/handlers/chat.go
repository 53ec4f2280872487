package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deepstudy/deepstudy-backend/internal/data/graph"
	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/http/response"
	"github.com/deepstudy/deepstudy-backend/internal/modules/agent"
	"github.com/deepstudy/deepstudy-backend/internal/modules/dialogue"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
	"github.com/deepstudy/deepstudy-backend/internal/requestdata"
)

// TurnSubmitter runs one full turn. Satisfied by agent.Orchestrator.
type TurnSubmitter interface {
	SubmitTurn(ctx context.Context, in agent.SubmitTurnInput) (*agent.SubmitTurnResult, error)
}

// TreeReader reconstructs a conversation subtree. Satisfied by
// dialogue.TreeBuilder.
type TreeReader interface {
	BuildTree(ctx context.Context, rootID, userID string, maxDepth int) (*types.DialogueTree, error)
}

type ChatHandler struct {
	orchestrator TurnSubmitter
	trees        TreeReader
	maxDepth     int
	log          *logger.Logger
}

func NewChatHandler(orchestrator TurnSubmitter, trees TreeReader, maxDepth int, log *logger.Logger) *ChatHandler {
	if maxDepth <= 0 {
		maxDepth = dialogue.DefaultMaxDepth
	}
	return &ChatHandler{
		orchestrator: orchestrator,
		trees:        trees,
		maxDepth:     maxDepth,
		log:          log.With("handler", "ChatHandler"),
	}
}

func (ch *ChatHandler) SubmitTurn(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("no authenticated user"))
		return
	}

	var req struct {
		Query      string `json:"query"`
		ParentID   string `json:"parent_id"`
		FragmentID string `json:"fragment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Query == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("query is required"))
		return
	}
	if req.FragmentID != "" && req.ParentID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("fragment_id requires parent_id"))
		return
	}

	result, err := ch.orchestrator.SubmitTurn(c.Request.Context(), agent.SubmitTurnInput{
		UserID:     rd.UserID,
		Query:      req.Query,
		ParentID:   req.ParentID,
		FragmentID: req.FragmentID,
	})
	if err != nil {
		ch.respondGraphError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (ch *ChatHandler) GetConversation(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("no authenticated user"))
		return
	}

	rootID := c.Param("id")
	if rootID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("conversation id is required"))
		return
	}

	maxDepth := ch.maxDepth
	if raw := c.Query("depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("depth must be a positive integer"))
			return
		}
		if d < maxDepth {
			maxDepth = d
		}
	}

	tree, err := ch.trees.BuildTree(c.Request.Context(), rootID, rd.UserID.String(), maxDepth)
	if err != nil {
		ch.respondGraphError(c, err)
		return
	}
	response.RespondOK(c, tree)
}

// respondGraphError maps graph sentinel errors to their HTTP shapes. Absent
// and not-owned nodes are indistinguishable on the wire.
func (ch *ChatHandler) respondGraphError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, graph.ErrDanglingReference):
		response.RespondError(c, http.StatusUnprocessableEntity, "dangling_parent", err)
	case errors.Is(err, graph.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, graph.ErrStoreUnavailable):
		response.RespondError(c, http.StatusServiceUnavailable, "store_unavailable", err)
	default:
		ch.log.Error("chat request failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
