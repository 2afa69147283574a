// Package session implements the sequence editor session: the thin
// orchestration layer that holds in-memory sequence and mapping state,
// prefills steps from pasted curl commands, re-validates on every mutation
// and produces transformation previews.
package session

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"sequence-engine/internal/common/errors"
	"sequence-engine/internal/common/logging"
	"sequence-engine/internal/curl"
	"sequence-engine/internal/mapping"
	"sequence-engine/internal/sequence"
)

// Store persists a validated sequence and its field mappings, keyed by an
// opaque partner identifier
type Store interface {
	SaveSequence(ctx context.Context, partnerID string, seq *sequence.Sequence, mappings []mapping.FieldMapping) error
}

// SampleProvider returns the most recent observed response body for a step,
// used to propose output-field selectors
type SampleProvider interface {
	LatestResponse(ctx context.Context, partnerID string, sequenceOrder int) (map[string]interface{}, bool, error)
}

// Executor runs a fully valid sequence against the real partner API
type Executor interface {
	Execute(ctx context.Context, seq *sequence.Sequence, record map[string]interface{}) (*sequence.ExecutionTrace, error)
}

// Session is one editing session over a sequence and its field mappings.
// Every structural mutation renumbers the steps and re-validates, so the
// verdict is always consistent with the current state. Sessions are not safe
// for concurrent use; each belongs to a single logical thread of control.
type Session struct {
	id        string
	partnerID string
	log       logging.Logger

	seq      *sequence.Sequence
	mappings []mapping.FieldMapping
	verdict  sequence.Verdict

	store   Store
	samples SampleProvider
}

// Option configures a session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(log logging.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithStore sets the persistence collaborator
func WithStore(store Store) Option {
	return func(s *Session) { s.store = store }
}

// WithSampleProvider sets the sample-response collaborator
func WithSampleProvider(samples SampleProvider) Option {
	return func(s *Session) { s.samples = samples }
}

// New starts an editing session for a partner. A nil sequence starts a fresh
// sequential one.
func New(partnerID string, seq *sequence.Sequence, opts ...Option) *Session {
	if seq == nil {
		seq = &sequence.Sequence{
			ExecutionMode: sequence.ModeSequential,
			StopOnError:   true,
			IsActive:      true,
			Steps:         []sequence.Step{},
		}
	}

	s := &Session{
		id:        uuid.New().String(),
		partnerID: partnerID,
		log:       logging.GetGlobalLogger(),
		seq:       seq,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logging.String("session_id", s.id), logging.String("partner_id", partnerID))

	s.seq.Renumber()
	s.revalidate()
	return s
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Sequence returns a copy of the current sequence state
func (s *Session) Sequence() *sequence.Sequence { return s.seq.Clone() }

// Mappings returns a copy of the current field mappings
func (s *Session) Mappings() []mapping.FieldMapping {
	return append([]mapping.FieldMapping(nil), s.mappings...)
}

// Verdict returns the validation verdict for the current state
func (s *Session) Verdict() sequence.Verdict { return s.verdict }

func (s *Session) revalidate() {
	s.verdict = sequence.Validate(s.seq)
	s.log.Debug("sequence revalidated",
		logging.Bool("valid", s.verdict.Valid),
		logging.Int("violations", len(s.verdict.Violations)),
		logging.Int("warnings", len(s.verdict.Warnings)),
	)
}

// Update applies an arbitrary edit to the sequence, then renumbers and
// re-validates
func (s *Session) Update(edit func(*sequence.Sequence)) {
	edit(s.seq)
	s.seq.Renumber()
	s.revalidate()
}

// AppendStep adds a step at the end
func (s *Session) AppendStep(step sequence.Step) {
	s.seq.AppendStep(step)
	s.revalidate()
}

// InsertStep adds a step at the given position
func (s *Session) InsertStep(index int, step sequence.Step) error {
	if err := s.seq.InsertStep(index, step); err != nil {
		return err
	}
	s.revalidate()
	return nil
}

// RemoveStep deletes the step at the given position
func (s *Session) RemoveStep(index int) error {
	if err := s.seq.RemoveStep(index); err != nil {
		return err
	}
	s.revalidate()
	return nil
}

// MoveStep relocates a step
func (s *Session) MoveStep(from, to int) error {
	if err := s.seq.MoveStep(from, to); err != nil {
		return err
	}
	s.revalidate()
	return nil
}

// UpdateStep edits one step in place
func (s *Session) UpdateStep(index int, edit func(*sequence.Step)) error {
	if index < 0 || index >= len(s.seq.Steps) {
		return errors.ValidationError("step index out of range").WithContext("index", index)
	}
	edit(&s.seq.Steps[index])
	s.revalidate()
	return nil
}

// SetMappings replaces the session's field mappings
func (s *Session) SetMappings(mappings []mapping.FieldMapping) {
	s.mappings = append([]mapping.FieldMapping(nil), mappings...)
}

// ImportCurl parses pasted curl command text and merges the recovered
// request into the step at the given index: endpoint, method, headers, query
// parameters, body template and any inferred authentication. The descriptor
// is returned so the caller can surface what was recognized.
func (s *Session) ImportCurl(index int, text string) (*curl.RequestDescriptor, error) {
	if index < 0 || index >= len(s.seq.Steps) {
		return nil, errors.ValidationError("step index out of range").WithContext("index", index)
	}

	d := curl.Parse(text)
	step := &s.seq.Steps[index]

	if d.URL != "" {
		step.Endpoint = d.URL
	}
	if d.Method != "" {
		step.HTTPMethod = d.Method
	}

	headers := make(map[string]string, len(d.Headers))
	for k, v := range d.Headers {
		headers[k] = v
	}

	if authType, authConfig, headerName := InferAuth(headers); authType != sequence.AuthNone {
		step.AuthType = authType
		step.AuthConfig = authConfig
		delete(headers, headerName)
	}

	if len(headers) > 0 {
		if step.RequestHeaders == nil {
			step.RequestHeaders = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			step.RequestHeaders[k] = v
		}
	}

	if len(d.QueryParams) > 0 || d.Body != nil {
		if step.RequestSchema == nil {
			step.RequestSchema = &sequence.RequestSchema{}
		}
	}

	if len(d.QueryParams) > 0 {
		if step.RequestSchema.QueryParams == nil {
			step.RequestSchema.QueryParams = make(map[string]string, len(d.QueryParams))
		}
		for k, v := range d.QueryParams {
			step.RequestSchema.QueryParams[k] = v
		}
	}

	if d.Body != nil {
		if encoded, err := json.Marshal(d.Body); err == nil {
			step.RequestSchema.Template = string(encoded)
		}
	}

	s.log.Info("curl import merged into step",
		logging.Int("step_index", index),
		logging.String("method", d.Method),
		logging.String("url", d.URL),
		logging.Int("headers", len(d.Headers)),
	)

	s.revalidate()
	return d, nil
}

// PreviewTransform runs the field-transformation pipeline against a sample
// record using the session's active mappings. Repeated previews over the
// same record yield identical results.
func (s *Session) PreviewTransform(record map[string]interface{}) mapping.Result {
	return mapping.Apply(record, s.mappings)
}

// SuggestMappings proposes identity mappings from a sample record
func (s *Session) SuggestMappings(record map[string]interface{}) []mapping.FieldMapping {
	return mapping.SuggestMappings(record)
}

// SuggestOutputFields proposes up to n output-field selectors for a step
// from the most recent observed response body. Selectors the step already
// declares are skipped.
func (s *Session) SuggestOutputFields(ctx context.Context, index, n int) ([]string, error) {
	if index < 0 || index >= len(s.seq.Steps) {
		return nil, errors.ValidationError("step index out of range").WithContext("index", index)
	}
	if s.samples == nil {
		return nil, errors.ConfigError("no sample-response collaborator configured")
	}

	step := &s.seq.Steps[index]
	body, found, err := s.samples.LatestResponse(ctx, s.partnerID, step.SequenceOrder)
	if err != nil {
		return nil, errors.InternalError("sample response lookup failed", err)
	}
	if !found || len(body) == 0 {
		return nil, nil
	}

	declared := make(map[string]bool, len(step.OutputFields))
	for _, selector := range step.OutputFields {
		declared[selector] = true
	}

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var proposals []string
	for _, k := range keys {
		if len(proposals) >= n {
			break
		}
		selector := sequence.SelectorPrefix + k
		if !declared[selector] {
			proposals = append(proposals, selector)
		}
	}
	return proposals, nil
}

// Save hands the sequence and mappings to the persistence collaborator. It
// refuses to persist while the validator withholds a valid verdict.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return errors.ConfigError("no persistence collaborator configured")
	}
	if !s.verdict.Valid {
		return errors.ValidationError("sequence is not valid").
			WithContext("violations", len(s.verdict.Violations))
	}

	if err := s.store.SaveSequence(ctx, s.partnerID, s.seq.Clone(), s.Mappings()); err != nil {
		return errors.InternalError("failed to persist sequence", err)
	}

	s.log.Info("sequence saved", logging.String("sequence", s.seq.Name))
	return nil
}

// RunTest executes the sequence against the partner API through the
// execution collaborator, gated on a valid verdict
func (s *Session) RunTest(ctx context.Context, executor Executor, record map[string]interface{}) (*sequence.ExecutionTrace, error) {
	if executor == nil {
		return nil, errors.ConfigError("no execution collaborator configured")
	}
	if !s.verdict.Valid {
		return nil, errors.ValidationError("sequence is not valid").
			WithContext("violations", len(s.verdict.Violations))
	}
	return executor.Execute(ctx, s.seq.Clone(), record)
}
