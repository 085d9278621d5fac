package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTier struct {
	name   string
	answer *Answer
	err    error
	calls  int
}

func (s *stubTier) Name() string { return s.name }

func (s *stubTier) TryAnswer(ctx context.Context, question, lang string, departments []string) (*Answer, bool, error) {
	s.calls++
	if s.err != nil {
		return nil, false, s.err
	}
	if s.answer == nil {
		return nil, false, nil
	}
	return s.answer, true, nil
}

func TestChainFirstHitWins(t *testing.T) {
	first := &stubTier{name: "first", answer: &Answer{Text: "from first", Source: "first"}}
	second := &stubTier{name: "second", answer: &Answer{Text: "from second", Source: "second"}}
	chain := NewChain(first, second)

	answer := chain.Respond(context.Background(), "q", "", nil)
	require.NotNil(t, answer)
	assert.Equal(t, "from first", answer.Text)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThroughMisses(t *testing.T) {
	miss := &stubTier{name: "miss"}
	hit := &stubTier{name: "hit", answer: &Answer{Text: "answered"}}
	chain := NewChain(miss, hit)

	answer := chain.Respond(context.Background(), "q", "", nil)
	require.NotNil(t, answer)
	assert.Equal(t, "answered", answer.Text)
	assert.Equal(t, 1, miss.calls)
}

func TestChainTreatsErrorsAsMisses(t *testing.T) {
	failing := &stubTier{name: "failing", err: errors.New("provider down")}
	hit := &stubTier{name: "hit", answer: &Answer{Text: "answered"}}
	chain := NewChain(failing, hit)

	answer := chain.Respond(context.Background(), "q", "", nil)
	require.NotNil(t, answer)
	assert.Equal(t, "answered", answer.Text)
}

func TestChainEmpty(t *testing.T) {
	chain := NewChain()
	assert.Nil(t, chain.Respond(context.Background(), "q", "", nil))
}

func TestChainAllMiss(t *testing.T) {
	chain := NewChain(&stubTier{name: "a"}, &stubTier{name: "b"})
	assert.Nil(t, chain.Respond(context.Background(), "q", "", nil))
}
