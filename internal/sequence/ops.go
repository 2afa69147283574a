package sequence

import (
	"sequence-engine/internal/common/errors"
)

// Renumber restores the dense 1-based sequence_order invariant after a
// structural change
func (s *Sequence) Renumber() {
	for i := range s.Steps {
		s.Steps[i].SequenceOrder = i + 1
	}
}

// AppendStep adds a step at the end and renumbers
func (s *Sequence) AppendStep(step Step) {
	s.Steps = append(s.Steps, step)
	s.Renumber()
}

// InsertStep adds a step at the given position and renumbers
func (s *Sequence) InsertStep(index int, step Step) error {
	if index < 0 || index > len(s.Steps) {
		return errors.ValidationError("step index out of range").WithContext("index", index)
	}
	s.Steps = append(s.Steps, Step{})
	copy(s.Steps[index+1:], s.Steps[index:])
	s.Steps[index] = step
	s.Renumber()
	return nil
}

// RemoveStep deletes the step at the given position and renumbers
func (s *Sequence) RemoveStep(index int) error {
	if index < 0 || index >= len(s.Steps) {
		return errors.ValidationError("step index out of range").WithContext("index", index)
	}
	s.Steps = append(s.Steps[:index], s.Steps[index+1:]...)
	s.Renumber()
	return nil
}

// MoveStep relocates a step and renumbers
func (s *Sequence) MoveStep(from, to int) error {
	if from < 0 || from >= len(s.Steps) || to < 0 || to >= len(s.Steps) {
		return errors.ValidationError("step index out of range").
			WithContext("from", from).
			WithContext("to", to)
	}
	if from == to {
		return nil
	}

	step := s.Steps[from]
	s.Steps = append(s.Steps[:from], s.Steps[from+1:]...)
	s.Steps = append(s.Steps, Step{})
	copy(s.Steps[to+1:], s.Steps[to:])
	s.Steps[to] = step
	s.Renumber()
	return nil
}

// Clone returns a deep-enough copy for handing the sequence to read-only
// consumers without sharing step slices
func (s *Sequence) Clone() *Sequence {
	clone := *s
	clone.Steps = make([]Step, len(s.Steps))
	copy(clone.Steps, s.Steps)
	for i := range clone.Steps {
		step := &clone.Steps[i]
		if step.DependsOnFields != nil {
			deps := make(map[string]string, len(step.DependsOnFields))
			for k, v := range step.DependsOnFields {
				deps[k] = v
			}
			step.DependsOnFields = deps
		}
		if step.OutputFields != nil {
			step.OutputFields = append([]string(nil), step.OutputFields...)
		}
		if step.RequestHeaders != nil {
			headers := make(map[string]string, len(step.RequestHeaders))
			for k, v := range step.RequestHeaders {
				headers[k] = v
			}
			step.RequestHeaders = headers
		}
		if step.RequestSchema != nil {
			schema := *step.RequestSchema
			if schema.QueryParams != nil {
				params := make(map[string]string, len(schema.QueryParams))
				for k, v := range schema.QueryParams {
					params[k] = v
				}
				schema.QueryParams = params
			}
			step.RequestSchema = &schema
		}
	}
	return &clone
}
