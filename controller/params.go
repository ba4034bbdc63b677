package controller

import (
	"context"
	"errors"
	"sync"
)

// Shared parameter keys.
const (
	ParamBlendedACC               = "BlendedACC"
	ParamExperimentalLongitudinal = "ExperimentalLongitudinalEnabled"
	ParamStockActive              = "CEStatus"
	ParamTransitionCounter        = "CEFramesCounter"
	ParamTorqueInterceptor        = "TorqueInterceptorEnabled"
	ParamRadarInterceptor         = "RadarInterceptorEnabled"
)

// ErrParamNotFound is returned by Params implementations for absent keys.
var ErrParamNotFound = errors.New("param not found")

// Params is the shared key-value store the controller reads its runtime
// switches from. Each call is one round trip; there is no transaction across
// a read and the following write.
type Params interface {
	GetBool(ctx context.Context, key string) (bool, error)
	GetInt(ctx context.Context, key string) (int, error)
	PutInt(ctx context.Context, key string, value int) error
}

// BatchParams is a Params store that can read several keys in one round
// trip. The returned view answers reads from the fetched values and passes
// writes through to the store.
type BatchParams interface {
	Params
	Fetch(ctx context.Context, keys ...string) (Params, error)
}

// paramReader resolves keys to their documented defaults when the store
// cannot answer, so the control loop never stalls on configuration.
type paramReader struct {
	params Params
	log    Logger
}

func (r paramReader) boolOr(ctx context.Context, key string, def bool) bool {
	if r.params == nil {
		return def
	}
	v, err := r.params.GetBool(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrParamNotFound) {
			r.log.Debug("param %s unavailable, using %v: %v", key, def, err)
		}
		return def
	}
	return v
}

func (r paramReader) intOr(ctx context.Context, key string, def int) int {
	if r.params == nil {
		return def
	}
	v, err := r.params.GetInt(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrParamNotFound) {
			r.log.Debug("param %s unavailable, using %d: %v", key, def, err)
		}
		return def
	}
	return v
}

// fetch samples keys in one round trip when the store supports it. If the
// fetch fails every key resolves to its default.
func (r paramReader) fetch(ctx context.Context, keys ...string) paramReader {
	batch, ok := r.params.(BatchParams)
	if !ok {
		return r
	}
	view, err := batch.Fetch(ctx, keys...)
	if err != nil {
		r.log.Debug("params unavailable, using defaults: %v", err)
		return paramReader{log: r.log}
	}
	return paramReader{params: view, log: r.log}
}

func (r paramReader) putInt(ctx context.Context, key string, value int) {
	if r.params == nil {
		return
	}
	if err := r.params.PutInt(ctx, key, value); err != nil {
		r.log.Debug("failed to write param %s=%d: %v", key, value, err)
	}
}

// MemoryParams is an in-process Params used for offline runs and tests.
type MemoryParams struct {
	mu    sync.RWMutex
	bools map[string]bool
	ints  map[string]int
}

func NewMemoryParams() *MemoryParams {
	return &MemoryParams{
		bools: make(map[string]bool),
		ints:  make(map[string]int),
	}
}

func (m *MemoryParams) GetBool(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.bools[key]
	if !ok {
		return false, ErrParamNotFound
	}
	return v, nil
}

func (m *MemoryParams) GetInt(ctx context.Context, key string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.ints[key]
	if !ok {
		return 0, ErrParamNotFound
	}
	return v, nil
}

func (m *MemoryParams) PutInt(ctx context.Context, key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ints[key] = value
	return nil
}

func (m *MemoryParams) PutBool(ctx context.Context, key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bools[key] = value
	return nil
}

// Fetch copies the requested keys into a view that later writes to m do not
// change.
func (m *MemoryParams) Fetch(ctx context.Context, keys ...string) (Params, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	view := memoryView{MemoryParams: NewMemoryParams(), store: m}
	for _, key := range keys {
		if v, ok := m.bools[key]; ok {
			view.bools[key] = v
		}
		if v, ok := m.ints[key]; ok {
			view.ints[key] = v
		}
	}
	return view, nil
}

type memoryView struct {
	*MemoryParams
	store *MemoryParams
}

func (v memoryView) PutInt(ctx context.Context, key string, value int) error {
	return v.store.PutInt(ctx, key, value)
}
