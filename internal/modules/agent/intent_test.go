package agent

import (
	"context"
	"errors"
	"testing"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

func TestParseIntent(t *testing.T) {
	cases := []struct {
		raw  string
		want types.Intent
	}{
		{"code", types.IntentCode},
		{" Code \n", types.IntentCode},
		{"意图: 代码", types.IntentCode},
		{"derivation", types.IntentDerivation},
		{"这是一个推导类问题", types.IntentDerivation},
		{"concept", types.IntentConcept},
		{"概念", types.IntentConcept},
		{"something unexpected", types.IntentConcept},
		{"", types.IntentConcept},
	}
	for _, tc := range cases {
		if got := ParseIntent(tc.raw); got != tc.want {
			t.Fatalf("ParseIntent(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestClassifyFallsBackToConcept(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	router := NewIntentRouter(&fakeLLM{completeErr: errors.New("model down")}, log)

	if got := router.Classify(context.Background(), "任意问题"); got != types.IntentConcept {
		t.Fatalf("Classify = %q, want concept", got)
	}
}

func TestClassifyParsesModelAnswer(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	llm := &fakeLLM{completeResp: "意图: derivation"}
	router := NewIntentRouter(llm, log)

	if got := router.Classify(context.Background(), "为什么特征值之积等于行列式？"); got != types.IntentDerivation {
		t.Fatalf("Classify = %q, want derivation", got)
	}
	if len(llm.completePrompts) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(llm.completePrompts))
	}
}
