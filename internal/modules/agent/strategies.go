package agent

import (
	"context"
	"fmt"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
)

// StrategyContext carries the request identity a strategy may use when
// composing its prompt.
type StrategyContext struct {
	UserID   string
	ParentID string
}

// Strategy answers a query for one intent. Model reports which underlying
// model id handled the call, so dispatch is verifiable independently of the
// answer content.
type Strategy interface {
	Answer(ctx context.Context, query string, sctx StrategyContext) (string, error)
	Model() string
}

type promptStrategy struct {
	llm    Completer
	system string
	intent types.Intent
}

func (s *promptStrategy) Answer(ctx context.Context, query string, _ StrategyContext) (string, error) {
	text, err := s.llm.GenerateText(ctx, s.system, query)
	if err != nil {
		return "", fmt.Errorf("%s strategy: %w", s.intent, err)
	}
	return text, nil
}

func (s *promptStrategy) Model() string { return s.llm.Model() }

// NewStrategies binds each intent to its strategy. The code intent gets the
// code-specialized model; derivation and concept share the base model.
func NewStrategies(base Completer, coder Completer) map[types.Intent]Strategy {
	if coder == nil {
		coder = base
	}
	return map[types.Intent]Strategy{
		types.IntentDerivation: &promptStrategy{llm: base, system: derivationSystem, intent: types.IntentDerivation},
		types.IntentCode:       &promptStrategy{llm: coder, system: codeSystem, intent: types.IntentCode},
		types.IntentConcept:    &promptStrategy{llm: base, system: conceptSystem, intent: types.IntentConcept},
	}
}
