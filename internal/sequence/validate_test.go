package sequence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStep(name string) Step {
	return Step{
		Name:            name,
		IntegrationType: IntegrationLeadSubmission,
		Endpoint:        "https://api.example.com/" + name,
		HTTPMethod:      "POST",
		AuthType:        AuthNone,
		IsActive:        true,
	}
}

func validSequence(steps ...Step) *Sequence {
	seq := &Sequence{
		Name:          "test-sequence",
		SequenceType:  "lead_submission",
		ExecutionMode: ModeSequential,
		StopOnError:   true,
		IsActive:      true,
		Steps:         steps,
	}
	seq.Renumber()
	return seq
}

func violationRules(violations []Violation) []ViolationKind {
	rules := make([]ViolationKind, len(violations))
	for i, v := range violations {
		rules[i] = v.Rule
	}
	return rules
}

func TestValidate_ValidSequence(t *testing.T) {
	seq := validSequence(validStep("submit"), validStep("confirm"))

	verdict := Validate(seq)

	assert.True(t, verdict.Valid)
	assert.Empty(t, verdict.Violations)
}

func TestValidate_EmptyName(t *testing.T) {
	seq := validSequence(validStep("submit"))
	seq.Name = "   "

	verdict := Validate(seq)

	assert.False(t, verdict.Valid)
	assert.Contains(t, violationRules(verdict.Violations), ViolationEmptyName)
}

func TestValidate_NoSteps(t *testing.T) {
	seq := validSequence()

	verdict := Validate(seq)

	assert.False(t, verdict.Valid)
	assert.Contains(t, violationRules(verdict.Violations), ViolationNoSteps)
}

func TestValidate_SkeletalStepsTolerated(t *testing.T) {
	// one configured step plus an in-progress blank one: the blank step is
	// not flagged
	seq := validSequence(validStep("submit"), Step{})

	verdict := Validate(seq)

	assert.True(t, verdict.Valid)
}

func TestValidate_AllStepsSkeletal(t *testing.T) {
	seq := validSequence(Step{}, Step{Name: "named but no endpoint"})

	verdict := Validate(seq)

	assert.False(t, verdict.Valid)
	assert.Contains(t, violationRules(verdict.Violations), ViolationNoConfiguredSteps)
}

func TestValidate_InvalidMethod(t *testing.T) {
	step := validStep("submit")
	step.HTTPMethod = "FETCH"
	seq := validSequence(step)

	verdict := Validate(seq)

	require.False(t, verdict.Valid)
	assert.Contains(t, violationRules(verdict.Violations), ViolationInvalidMethod)
	assert.Equal(t, 0, verdict.Violations[0].StepIndex)
}

func TestValidate_InvalidEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		valid    bool
	}{
		{"https absolute", "https://api.example.com/x", true},
		{"http absolute", "http://api.example.com/x", true},
		{"root-relative", "/v1/leads", true},
		{"bare host", "api.example.com/x", false},
		{"other scheme", "ftp://api.example.com/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := validStep("submit")
			step.Endpoint = tt.endpoint
			verdict := Validate(validSequence(step))
			assert.Equal(t, tt.valid, verdict.Valid)
		})
	}
}

func TestValidate_SelectorGrammar(t *testing.T) {
	step := validStep("submit")
	step.OutputFields = []string{"$.lead_id", "bare_name"}
	step2 := validStep("confirm")
	step2.DependsOnFields = map[string]string{"lead_id": "lead_id"}
	seq := validSequence(step, step2)

	verdict := Validate(seq)

	require.False(t, verdict.Valid)
	rules := violationRules(verdict.Violations)
	assert.Contains(t, rules, ViolationInvalidOutputSelector)
	assert.Contains(t, rules, ViolationInvalidDependencySelector)
}

func TestValidate_InvalidBodyTemplate(t *testing.T) {
	step := validStep("submit")
	step.RequestSchema = &RequestSchema{Template: `{"name": broken`}
	seq := validSequence(step)

	verdict := Validate(seq)

	assert.False(t, verdict.Valid)
	assert.Contains(t, violationRules(verdict.Violations), ViolationInvalidBodyTemplate)
}

func TestValidate_SchemaCompileCheck(t *testing.T) {
	t.Run("valid schema", func(t *testing.T) {
		step := validStep("submit")
		step.ResponseSchema = json.RawMessage(`{"type": "object", "properties": {"lead_id": {"type": "string"}}}`)
		verdict := Validate(validSequence(step))
		assert.True(t, verdict.Valid)
	})

	t.Run("invalid schema", func(t *testing.T) {
		step := validStep("submit")
		step.ResponseSchema = json.RawMessage(`{"type": "not-a-real-type"}`)
		verdict := Validate(validSequence(step))
		assert.False(t, verdict.Valid)
		assert.Contains(t, violationRules(verdict.Violations), ViolationInvalidSchema)
	})
}

func TestValidate_ParallelDependencies(t *testing.T) {
	step := validStep("submit")
	step.DependsOnFields = map[string]string{"lead_id": "$.lead_id"}
	seq := validSequence(validStep("validate"), step)
	seq.ExecutionMode = ModeParallel

	verdict := Validate(seq)

	assert.False(t, verdict.Valid)
	assert.Contains(t, violationRules(verdict.Violations), ViolationParallelDependencies)
}

func TestValidate_FirstStepDependencies(t *testing.T) {
	first := validStep("submit")
	first.DependsOnFields = map[string]string{"lead_id": "$.lead_id"}
	seq := validSequence(first, validStep("confirm"))

	verdict := Validate(seq)

	assert.False(t, verdict.Valid)
	assert.Contains(t, violationRules(verdict.Violations), ViolationFirstStepDependencies)
}

func TestValidate_FirstStepDependencyToggle(t *testing.T) {
	seq := validSequence(validStep("submit"), validStep("confirm"))
	require.True(t, Validate(seq).Valid)

	seq.Steps[0].DependsOnFields = map[string]string{"lead_id": "$.lead_id"}
	assert.False(t, Validate(seq).Valid)

	seq.Steps[0].DependsOnFields = nil
	assert.True(t, Validate(seq).Valid)
}

func TestValidate_ConditionalModeAllowsDependencies(t *testing.T) {
	first := validStep("submit")
	first.DependsOnFields = map[string]string{"lead_id": "$.lead_id"}
	seq := validSequence(first, validStep("confirm"))
	seq.ExecutionMode = ModeConditional

	verdict := Validate(seq)

	assert.True(t, verdict.Valid)
}

func TestValidate_ForwardReference(t *testing.T) {
	t.Run("dependency on later output flagged", func(t *testing.T) {
		consumer := validStep("consumer")
		consumer.DependsOnFields = map[string]string{"lead_id": "$.lead_id"}
		producer := validStep("producer")
		producer.OutputFields = []string{"$.lead_id"}

		seq := validSequence(validStep("opener"), consumer, producer)

		verdict := Validate(seq)
		assert.False(t, verdict.Valid)
		assert.Contains(t, violationRules(verdict.Violations), ViolationForwardReference)
	})

	t.Run("dependency on earlier output passes", func(t *testing.T) {
		producer := validStep("producer")
		producer.OutputFields = []string{"$.lead_id"}
		consumer := validStep("consumer")
		consumer.DependsOnFields = map[string]string{"lead_id": "$.lead_id"}

		seq := validSequence(producer, consumer)

		verdict := Validate(seq)
		assert.True(t, verdict.Valid)
	})

	t.Run("dependency emitted by both earlier and later step passes", func(t *testing.T) {
		early := validStep("early")
		early.OutputFields = []string{"$.lead_id"}
		consumer := validStep("consumer")
		consumer.DependsOnFields = map[string]string{"lead_id": "$.lead_id"}
		late := validStep("late")
		late.OutputFields = []string{"$.lead_id"}

		seq := validSequence(early, consumer, late)

		verdict := Validate(seq)
		assert.True(t, verdict.Valid)
	})

	t.Run("dependency emitted nowhere is not flagged", func(t *testing.T) {
		consumer := validStep("consumer")
		consumer.DependsOnFields = map[string]string{"lead_id": "$.external_value"}

		seq := validSequence(validStep("opener"), consumer)

		verdict := Validate(seq)
		assert.True(t, verdict.Valid)
	})
}

func TestValidate_IndependentRulesAllReported(t *testing.T) {
	step := validStep("submit")
	step.HTTPMethod = "FETCH"
	step.Endpoint = "not-a-url"
	seq := validSequence(step)
	seq.Name = ""

	verdict := Validate(seq)

	rules := violationRules(verdict.Violations)
	assert.Contains(t, rules, ViolationEmptyName)
	assert.Contains(t, rules, ViolationInvalidMethod)
	assert.Contains(t, rules, ViolationInvalidEndpoint)
	assert.Len(t, verdict.Violations, 3)
}

func TestValidate_EmptyBodyWarning(t *testing.T) {
	step := validStep("submit")
	seq := validSequence(step)

	verdict := Validate(seq)

	// warning only: the verdict stays valid
	assert.True(t, verdict.Valid)
	require.Len(t, verdict.Warnings, 1)
	assert.Equal(t, WarningEmptyBodyLikely, verdict.Warnings[0].Rule)
}

func TestValidate_NoEmptyBodyWarningWithTemplate(t *testing.T) {
	step := validStep("submit")
	step.RequestSchema = &RequestSchema{Template: `{"name": "Jane"}`}
	seq := validSequence(step)

	verdict := Validate(seq)

	assert.True(t, verdict.Valid)
	assert.Empty(t, verdict.Warnings)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	step := validStep("submit")
	step.HTTPMethod = "FETCH"
	seq := validSequence(step)

	before, err := json.Marshal(seq)
	require.NoError(t, err)

	Validate(seq)

	after, err := json.Marshal(seq)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}
