package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

// GraphWriter is the slice of the graph store the orchestrator writes
// through.
type GraphWriter interface {
	UpsertDialogueNode(ctx context.Context, node *types.DialogueNode) error
	LinkNodes(ctx context.Context, parentID, childID string, edgeType types.EdgeType, fragmentID string) error
}

// TurnLogger records the flat audit row for a turn. Optional.
type TurnLogger interface {
	Create(ctx context.Context, row *types.TurnLog) error
}

type SubmitTurnInput struct {
	UserID     uuid.UUID
	Query      string
	ParentID   string
	FragmentID string
}

type SubmitTurnResult struct {
	NodeID   string       `json:"node_id"`
	Answer   string       `json:"answer"`
	ParentID string       `json:"parent_id,omitempty"`
	Intent   types.Intent `json:"intent,omitempty"`
}

// Orchestrator runs the full turn: classify, answer, persist, link, audit.
type Orchestrator struct {
	router     *IntentRouter
	strategies map[types.Intent]Strategy
	llm        Completer
	store      GraphWriter
	turnLogs   TurnLogger
	log        *logger.Logger
	tracer     trace.Tracer
}

func NewOrchestrator(router *IntentRouter, strategies map[types.Intent]Strategy, llm Completer, store GraphWriter, turnLogs TurnLogger, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		router:     router,
		strategies: strategies,
		llm:        llm,
		store:      store,
		turnLogs:   turnLogs,
		log:        log.With("module", "AgentOrchestrator"),
		tracer:     otel.Tracer("agent"),
	}
}

// SubmitTurn answers the query and persists the resulting assistant node.
// A fragment reference routes to the follow-up path regardless of
// classification. The node upsert must complete before any edge referencing
// it is attempted; an abandoned request therefore cannot leave a dangling
// edge. A bad parent reference surfaces as ErrDanglingReference for the
// caller to correct.
func (o *Orchestrator) SubmitTurn(ctx context.Context, in SubmitTurnInput) (*SubmitTurnResult, error) {
	ctx, span := o.tracer.Start(ctx, "agent.submit_turn")
	defer span.End()

	if in.Query == "" {
		return nil, fmt.Errorf("submit turn: empty query")
	}
	if in.FragmentID != "" && in.ParentID == "" {
		return nil, fmt.Errorf("submit turn: fragment reference without parent id")
	}

	var (
		answer string
		intent types.Intent
		err    error
	)
	if in.FragmentID != "" {
		answer, err = o.answerFollowUp(ctx, in)
		intent = ""
	} else {
		answer, intent, err = o.answerClassified(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	node := &types.DialogueNode{
		NodeID:    uuid.NewString(),
		UserID:    in.UserID.String(),
		Role:      types.RoleAssistant,
		Content:   answer,
		Intent:    intent,
		Timestamp: time.Now().UTC(),
	}
	span.SetAttributes(attribute.String("dialogue.node_id", node.NodeID))

	if err := o.persist(ctx, node, in); err != nil {
		return nil, err
	}

	o.audit(ctx, node, in)

	return &SubmitTurnResult{
		NodeID:   node.NodeID,
		Answer:   answer,
		ParentID: in.ParentID,
		Intent:   intent,
	}, nil
}

func (o *Orchestrator) answerClassified(ctx context.Context, in SubmitTurnInput) (string, types.Intent, error) {
	cctx, cspan := o.tracer.Start(ctx, "agent.classify")
	intent := o.router.Classify(cctx, in.Query)
	cspan.SetAttributes(attribute.String("dialogue.intent", string(intent)))
	cspan.End()

	strategy, ok := o.strategies[intent]
	if !ok {
		return "", intent, fmt.Errorf("no strategy bound for intent %q", intent)
	}

	actx, aspan := o.tracer.Start(ctx, "agent.answer")
	aspan.SetAttributes(attribute.String("llm.model", strategy.Model()))
	answer, err := strategy.Answer(actx, in.Query, StrategyContext{
		UserID:   in.UserID.String(),
		ParentID: in.ParentID,
	})
	aspan.End()
	if err != nil {
		return "", intent, fmt.Errorf("answer generation: %w", err)
	}
	return answer, intent, nil
}

func (o *Orchestrator) answerFollowUp(ctx context.Context, in SubmitTurnInput) (string, error) {
	actx, span := o.tracer.Start(ctx, "agent.answer_follow_up")
	defer span.End()
	span.SetAttributes(attribute.String("dialogue.fragment_id", in.FragmentID))

	answer, err := o.llm.Complete(actx, followUpPrompt(in.Query))
	if err != nil {
		return "", fmt.Errorf("follow-up answer generation: %w", err)
	}
	return answer, nil
}

func (o *Orchestrator) persist(ctx context.Context, node *types.DialogueNode, in SubmitTurnInput) error {
	pctx, span := o.tracer.Start(ctx, "agent.persist")
	defer span.End()

	// Hard ordering invariant: the node write completes (or visibly fails)
	// before an edge referencing it exists anywhere.
	if err := o.store.UpsertDialogueNode(pctx, node); err != nil {
		return fmt.Errorf("persist turn node: %w", err)
	}
	if in.ParentID != "" {
		if err := o.store.LinkNodes(pctx, in.ParentID, node.NodeID, types.EdgeHasChild, in.FragmentID); err != nil {
			return fmt.Errorf("link turn to parent: %w", err)
		}
	}
	return nil
}

// audit writes the flat Q&A row. Best-effort: the graph node is the durable
// record of the turn.
func (o *Orchestrator) audit(ctx context.Context, node *types.DialogueNode, in SubmitTurnInput) {
	if o.turnLogs == nil {
		return
	}
	row := &types.TurnLog{
		UserID: in.UserID,
		NodeID: node.NodeID,
		Query:  in.Query,
		Answer: node.Content,
		Intent: string(node.Intent),
	}
	if in.ParentID != "" {
		parent := in.ParentID
		row.ParentID = &parent
	}
	if in.FragmentID != "" {
		meta, _ := json.Marshal(map[string]string{"fragment_id": in.FragmentID})
		row.Metadata = datatypes.JSON(meta)
	}
	if err := o.turnLogs.Create(ctx, row); err != nil {
		o.log.Warn("turn audit log write failed", "node_id", node.NodeID, "error", err)
	}
}
