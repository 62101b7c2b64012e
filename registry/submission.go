package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Confidence is the completion milestone a mutation has reached.
type Confidence int

const (
	// ConfidenceIncluded means the mutation is in a block that may still be
	// reverted by a reorg.
	ConfidenceIncluded Confidence = iota + 1
	// ConfidenceFinalized means the block holding the mutation is final.
	ConfidenceFinalized
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceIncluded:
		return "included"
	case ConfidenceFinalized:
		return "finalized"
	}
	return "unknown"
}

func ParseConfidence(s string) (Confidence, error) {
	switch s {
	case "included", "inblock", "in-block":
		return ConfidenceIncluded, nil
	case "finalized", "final":
		return ConfidenceFinalized, nil
	}
	return 0, fmt.Errorf("unknown confidence level %q, valid values: included, finalized", s)
}

// Receipt is the backend's confirmation token for a mutation. The mock
// backend leaves the hashes empty.
type Receipt struct {
	TxHash     string
	BlockHash  string
	Confidence Confidence
}

type stage struct {
	once    sync.Once
	done    chan struct{}
	receipt Receipt
	err     error
}

func newStage() *stage {
	return &stage{done: make(chan struct{})}
}

func (s *stage) resolve(r Receipt, err error) {
	s.once.Do(func() {
		s.receipt, s.err = r, err
		close(s.done)
	})
}

func (s *stage) wait(ctx context.Context, name string) (Receipt, error) {
	select {
	case <-s.done:
		return s.receipt, s.err
	case <-ctx.Done():
		return Receipt{}, fmt.Errorf("waiting for %s: %w: %w", name, ErrOutcomeUnknown, ctx.Err())
	}
}

// Submission tracks a mutation through its two completion milestones.
// Backends resolve it; callers wait on it. A milestone resolves at most once
// and Finalize implies Include.
type Submission struct {
	ID string

	included  *stage
	finalized *stage
}

func NewSubmission() *Submission {
	return &Submission{
		ID:        uuid.NewString(),
		included:  newStage(),
		finalized: newStage(),
	}
}

// Committed returns a submission with both milestones already reached, for
// backends that apply mutations synchronously.
func Committed(r Receipt) *Submission {
	s := NewSubmission()
	r.Confidence = ConfidenceFinalized
	s.Finalize(r)
	return s
}

func (s *Submission) Include(r Receipt) {
	r.Confidence = ConfidenceIncluded
	s.included.resolve(r, nil)
}

func (s *Submission) Finalize(r Receipt) {
	r.Confidence = ConfidenceFinalized
	s.included.resolve(r, nil)
	s.finalized.resolve(r, nil)
}

// Fail resolves every milestone not reached yet with err.
func (s *Submission) Fail(err error) {
	s.included.resolve(Receipt{}, err)
	s.finalized.resolve(Receipt{}, err)
}

// Included blocks until the mutation is in a block. When ctx expires first
// the returned error wraps ErrOutcomeUnknown: the mutation may still land.
func (s *Submission) Included(ctx context.Context) (Receipt, error) {
	return s.included.wait(ctx, "inclusion")
}

// Finalized blocks until the block holding the mutation is final.
func (s *Submission) Finalized(ctx context.Context) (Receipt, error) {
	return s.finalized.wait(ctx, "finalization")
}

func (s *Submission) Wait(ctx context.Context, c Confidence) (Receipt, error) {
	if c == ConfidenceFinalized {
		return s.Finalized(ctx)
	}
	return s.Included(ctx)
}
