package testutil

import (
	"context"
	"sync"

	"sequence-engine/internal/mapping"
	"sequence-engine/internal/sequence"
)

// MockStore implements session.Store for testing
type MockStore struct {
	mu        sync.Mutex
	saved     map[string]*sequence.Sequence
	mappings  map[string][]mapping.FieldMapping
	SaveError error
	SaveCalls int
}

// NewMockStore creates a new mock store instance
func NewMockStore() *MockStore {
	return &MockStore{
		saved:    make(map[string]*sequence.Sequence),
		mappings: make(map[string][]mapping.FieldMapping),
	}
}

func (m *MockStore) SaveSequence(ctx context.Context, partnerID string, seq *sequence.Sequence, mappings []mapping.FieldMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	m.saved[partnerID] = seq
	m.mappings[partnerID] = mappings
	return nil
}

// Saved returns what was last persisted for a partner
func (m *MockStore) Saved(partnerID string) (*sequence.Sequence, []mapping.FieldMapping, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq, ok := m.saved[partnerID]
	return seq, m.mappings[partnerID], ok
}

// MockSampleProvider implements session.SampleProvider for testing
type MockSampleProvider struct {
	Responses   map[int]map[string]interface{}
	LookupError error
}

// NewMockSampleProvider creates a provider serving the given responses,
// keyed by sequence order
func NewMockSampleProvider(responses map[int]map[string]interface{}) *MockSampleProvider {
	return &MockSampleProvider{Responses: responses}
}

func (m *MockSampleProvider) LatestResponse(ctx context.Context, partnerID string, sequenceOrder int) (map[string]interface{}, bool, error) {
	if m.LookupError != nil {
		return nil, false, m.LookupError
	}
	body, ok := m.Responses[sequenceOrder]
	return body, ok, nil
}

// MockExecutor implements session.Executor for testing
type MockExecutor struct {
	Trace        *sequence.ExecutionTrace
	ExecuteError error
	ExecuteCalls int
	LastSequence *sequence.Sequence
}

func (m *MockExecutor) Execute(ctx context.Context, seq *sequence.Sequence, record map[string]interface{}) (*sequence.ExecutionTrace, error) {
	m.ExecuteCalls++
	m.LastSequence = seq
	if m.ExecuteError != nil {
		return nil, m.ExecuteError
	}
	if m.Trace != nil {
		return m.Trace, nil
	}
	return &sequence.ExecutionTrace{
		SequenceName:  seq.Name,
		ExecutionMode: seq.ExecutionMode,
		Success:       true,
	}, nil
}
