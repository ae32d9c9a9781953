package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chazu/csgtree/pkg/graph"
)

// DefaultEvalTimeout bounds a single evaluation unless WithTimeout is given.
const DefaultEvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation runs past the engine timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the evaluation limit. Non-positive values keep
// DefaultEvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

type evalResult struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

// waitWithTimeout waits for the result of generation gen. A result that
// arrives after a newer evaluation started is discarded; the goroutine of a
// timed out evaluation keeps running and its result is dropped the same way.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*graph.DesignGraph, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()
		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.graph, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
