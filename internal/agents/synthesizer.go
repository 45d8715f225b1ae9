package agents

import (
	"context"
	"iter"

	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Synthesizer consolidates specialist results into one Markdown answer.
type Synthesizer struct {
	llm TextGenerator
	log *logger.Logger
}

// NewSynthesizer creates a synthesizer
func NewSynthesizer(llm TextGenerator) *Synthesizer {
	return &Synthesizer{
		llm: llm,
		log: logger.Get().With("component", "synthesizer"),
	}
}

// Synthesize returns the complete answer in one call
func (s *Synthesizer) Synthesize(ctx context.Context, message string, results []AgentResult) (string, error) {
	s.log.Debugf("Synthesizing %d agent outputs (buffered)", len(results))

	answer, err := s.llm.Generate(ctx, synthesisInstruction, SynthesisPrompt(message, results))
	if err != nil {
		return "", errors.Mark(err, errors.ErrSynthesisFailed)
	}
	return answer, nil
}

// Stream forwards the answer chunk by chunk as the model produces it.
// Breaking out of the loop releases the underlying generation stream.
func (s *Synthesizer) Stream(ctx context.Context, message string, results []AgentResult) iter.Seq2[string, error] {
	s.log.Debugf("Synthesizing %d agent outputs (streaming)", len(results))

	prompt := SynthesisPrompt(message, results)
	return func(yield func(string, error) bool) {
		for chunk, err := range s.llm.Stream(ctx, synthesisInstruction, prompt) {
			if err != nil {
				yield("", errors.Mark(err, errors.ErrSynthesisFailed))
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}
