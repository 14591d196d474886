package source

import (
	"context"
	"slices"
	"sync"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// MemorySource serves trade records held in memory.
type MemorySource struct {
	name    string
	records []TradeRecord
	closed  bool
	mu      sync.RWMutex
}

// NewMemorySource creates a source over a copy of records.
func NewMemorySource(records []TradeRecord) *MemorySource {
	return &MemorySource{
		name:    "memory",
		records: slices.Clone(records),
	}
}

// Name returns the backend name
func (m *MemorySource) Name() string {
	return m.name
}

// Replace swaps the records served by the source.
func (m *MemorySource) Replace(records []TradeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.Clone(records)
}

// Len returns the number of records held.
func (m *MemorySource) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemorySource) snapshot(ctx context.Context) ([]TradeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.records, nil
}

// NetworkFlows returns the network-eligible Export records
func (m *MemorySource) NetworkFlows(ctx context.Context) ([]network.FlowRecord, error) {
	records, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return NetworkFlows(records), nil
}

// Countries returns every country appearing in the records
func (m *MemorySource) Countries(ctx context.Context) ([]string, error) {
	records, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Countries(records), nil
}

// Records returns the records matching filter
func (m *MemorySource) Records(ctx context.Context, filter Filter) ([]TradeRecord, error) {
	records, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Select(records, filter), nil
}

// Ping reports whether the source is open
func (m *MemorySource) Ping(ctx context.Context) error {
	_, err := m.snapshot(ctx)
	return err
}

// Close releases the records
func (m *MemorySource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}
