package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	oracleport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/oracle"
)

// State describes the lifecycle of a Handle
type State string

// Handle states
const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateUnavailable   State = "unavailable"
	StateClosed        State = "closed"
)

// Handle owns a lazily built oracle backend.
//
// The loader runs at most once, on first use, even when many goroutines call
// concurrently. A failed load leaves the handle unavailable for its whole
// lifetime, so every caller falls back the same way. Callers wait for the
// load only as long as their own context allows.
type Handle struct {
	loader oracleport.Loader
	logger core.Logger

	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	state   State
	backend oracleport.Backend
}

// NewHandle creates a handle. A nil loader yields a permanently unavailable handle.
func NewHandle(loader oracleport.Loader, logger core.Logger) *Handle {
	h := &Handle{
		loader: loader,
		logger: logger,
		done:   make(chan struct{}),
		state:  StateUninitialized,
	}
	if loader == nil {
		h.state = StateUnavailable
		h.once.Do(func() { close(h.done) })
	}
	return h
}

// Warmup starts initialization without waiting for it
func (h *Handle) Warmup(ctx context.Context) {
	h.start(ctx)
}

// State returns the current lifecycle state
func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// SuggestCategory implements oracle.CategoryOracle
func (h *Handle) SuggestCategory(ctx context.Context, query oracleport.CategoryQuery) (string, error) {
	backend, err := h.acquire(ctx)
	if err != nil {
		return "", errs.NewOracleError("categorize", err)
	}
	return backend.SuggestCategory(ctx, query)
}

// ExtractTransaction implements oracle.ExtractionOracle
func (h *Handle) ExtractTransaction(ctx context.Context, message string) (string, error) {
	backend, err := h.acquire(ctx)
	if err != nil {
		return "", errs.NewOracleError("extract", err)
	}
	return backend.ExtractTransaction(ctx, message)
}

// Close releases the backend. The handle stays unavailable afterwards.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = StateClosed
	backend := h.backend
	h.backend = nil

	if closer, ok := backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (h *Handle) acquire(ctx context.Context) (oracleport.Backend, error) {
	h.start(ctx)

	select {
	case <-h.done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errs.ErrOracleTimeout
		}
		return nil, ctx.Err()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state != StateReady {
		return nil, errs.ErrOracleUnavailable
	}
	return h.backend, nil
}

func (h *Handle) start(ctx context.Context) {
	h.once.Do(func() {
		h.mu.Lock()
		pending := h.state == StateUninitialized
		if pending {
			h.state = StateInitializing
		}
		h.mu.Unlock()

		if !pending {
			close(h.done)
			return
		}

		// detached so that the first caller's deadline does not decide the outcome for everyone
		go h.initialize(context.WithoutCancel(ctx))
	})
}

func (h *Handle) initialize(ctx context.Context) {
	defer close(h.done)

	backend, err := h.load(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateInitializing {
		// closed while loading
		if closer, ok := backend.(io.Closer); ok {
			_ = closer.Close()
		}
		return
	}

	if err != nil {
		h.state = StateUnavailable
		h.logger.Warn("Semantic oracle unavailable, falling back to keyword rules", map[string]any{
			"error": err.Error(),
		})
		return
	}

	h.backend = backend
	h.state = StateReady
	h.logger.Info("Semantic oracle initialized", nil)
}

func (h *Handle) load(ctx context.Context) (backend oracleport.Backend, err error) {
	defer func() {
		if r := recover(); r != nil {
			backend, err = nil, fmt.Errorf("oracle loader panicked: %v", r)
		}
	}()

	backend, err = h.loader(ctx)
	if err == nil && backend == nil {
		err = errors.New("oracle loader returned no backend")
	}
	return backend, err
}

var _ oracleport.Backend = (*Handle)(nil)
