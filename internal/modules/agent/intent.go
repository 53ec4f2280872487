package agent

import (
	"context"
	"strings"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

// Completer is the completion capability the agent consumes. Satisfied by
// platform/modelscope.Client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GenerateText(ctx context.Context, system string, user string) (string, error)
	Model() string
}

// IntentRouter classifies a free-text query with a few-shot completion
// call. Classification is never a hard failure point: any error resolves to
// the concept default.
type IntentRouter struct {
	llm Completer
	log *logger.Logger
}

func NewIntentRouter(llm Completer, log *logger.Logger) *IntentRouter {
	return &IntentRouter{llm: llm, log: log.With("module", "IntentRouter")}
}

func (r *IntentRouter) Classify(ctx context.Context, query string) types.Intent {
	resp, err := r.llm.Complete(ctx, classifyPrompt(query))
	if err != nil {
		r.log.Warn("intent classification failed, using concept default", "error", err)
		return types.IntentConcept
	}
	return ParseIntent(resp)
}

// ParseIntent pattern-matches the completion text case-insensitively.
// Concept is the default: it is the safest generic strategy when the model
// answers with something unexpected.
func ParseIntent(raw string) types.Intent {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "code") || strings.Contains(s, "代码"):
		return types.IntentCode
	case strings.Contains(s, "derivation") || strings.Contains(s, "推导"):
		return types.IntentDerivation
	default:
		return types.IntentConcept
	}
}
