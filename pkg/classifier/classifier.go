package classifier

import (
	"context"
	"sync/atomic"

	"github.com/relayhub/gateway/pkg/providers"
)

// Service is the classifier the pipeline calls: heuristic by default, with
// an LLM mode that can be flipped on and off at runtime (settings
// hot-reload, spec §4.13) without reconstructing the pipeline.
type Service struct {
	heuristic *Heuristic
	llm       *LLM
	llmMode   atomic.Bool
}

// New returns a classifier service. llmProvider/llmModel may be left zero
// if no LLM-mode provider is configured; SetLLMMode(true) is then a no-op
// and the service always falls back to the heuristic.
func New(llmProvider providers.Provider, llmModel string) *Service {
	s := &Service{heuristic: NewHeuristic()}
	if llmProvider != nil {
		s.llm = NewLLM(llmProvider, llmModel)
	}
	return s
}

// SetLLMMode toggles whether Classify prefers the LLM classifier.
func (s *Service) SetLLMMode(enabled bool) {
	s.llmMode.Store(enabled)
}

// LLMMode reports the current mode.
func (s *Service) LLMMode() bool {
	return s.llmMode.Load()
}

// Classify runs the configured classifier, falling back to the heuristic
// when LLM mode is off, unconfigured, or the LLM call itself falls back
// internally.
func (s *Service) Classify(ctx context.Context, messages []providers.Message) (Result, error) {
	if s.llmMode.Load() && s.llm != nil {
		return s.llm.Classify(ctx, messages)
	}
	return s.heuristic.Classify(ctx, messages)
}
