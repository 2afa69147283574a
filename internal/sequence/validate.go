package sequence

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ViolationKind identifies one validation rule failure
type ViolationKind string

const (
	ViolationEmptyName                 ViolationKind = "empty_sequence_name"
	ViolationNoSteps                   ViolationKind = "no_steps"
	ViolationNoConfiguredSteps         ViolationKind = "no_configured_steps"
	ViolationInvalidMethod             ViolationKind = "invalid_http_method"
	ViolationInvalidEndpoint           ViolationKind = "invalid_endpoint"
	ViolationInvalidOutputSelector     ViolationKind = "invalid_output_selector"
	ViolationInvalidDependencySelector ViolationKind = "invalid_dependency_selector"
	ViolationInvalidBodyTemplate       ViolationKind = "invalid_body_template"
	ViolationInvalidSchema             ViolationKind = "invalid_schema"
	ViolationParallelDependencies      ViolationKind = "parallel_dependencies"
	ViolationFirstStepDependencies     ViolationKind = "first_step_dependencies"
	ViolationForwardReference          ViolationKind = "forward_reference"

	// WarningEmptyBodyLikely flags a body-bearing step that would send an
	// empty request; it never withholds the valid verdict
	WarningEmptyBodyLikely ViolationKind = "empty_body_likely"
)

// Violation describes one rule failure. StepIndex is -1 for sequence-level
// rules.
type Violation struct {
	Rule      ViolationKind `json:"rule"`
	StepIndex int           `json:"step_index"`
	StepName  string        `json:"step_name,omitempty"`
	Field     string        `json:"field,omitempty"`
	Message   string        `json:"message"`
}

// Verdict is the validator's result. Valid is withheld while any violation
// stands; warnings are advisory only.
type Verdict struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
	Warnings   []Violation `json:"warnings"`
}

// SelectorPrefix starts every output-field and dependency selector
const SelectorPrefix = "$."

// isConfigured reports whether the user has started configuring a step.
// Skeletal steps are tolerated so an in-progress edit is not flagged as
// broken prematurely.
func isConfigured(step *Step) bool {
	return strings.TrimSpace(step.Name) != "" && strings.TrimSpace(step.Endpoint) != ""
}

// Validate checks a sequence for internal consistency. It is pure and total:
// it never mutates its input and never fails, and every rule is evaluated
// independently so one failure does not hide another. It is cheap enough to
// run on every keystroke-driven edit.
func Validate(seq *Sequence) Verdict {
	v := Verdict{Violations: []Violation{}, Warnings: []Violation{}}

	if strings.TrimSpace(seq.Name) == "" {
		v.fail(Violation{
			Rule:      ViolationEmptyName,
			StepIndex: -1,
			Field:     "name",
			Message:   "sequence name must not be empty",
		})
	}

	if len(seq.Steps) == 0 {
		v.fail(Violation{
			Rule:      ViolationNoSteps,
			StepIndex: -1,
			Field:     "steps",
			Message:   "sequence has no steps",
		})
	}

	configured := 0
	for i := range seq.Steps {
		step := &seq.Steps[i]
		if !isConfigured(step) {
			continue
		}
		configured++
		v.checkStep(i, step)
	}

	if len(seq.Steps) > 0 && configured == 0 {
		v.fail(Violation{
			Rule:      ViolationNoConfiguredSteps,
			StepIndex: -1,
			Field:     "steps",
			Message:   "at least one step needs both a name and an endpoint",
		})
	}

	v.checkDependencyRules(seq)
	v.checkForwardReferences(seq)
	v.checkEmptyBodies(seq)

	v.Valid = len(v.Violations) == 0
	return v
}

func (v *Verdict) fail(violation Violation) {
	v.Violations = append(v.Violations, violation)
}

func (v *Verdict) warn(violation Violation) {
	v.Warnings = append(v.Warnings, violation)
}

// checkStep applies the per-step well-formedness rules to a configured step
func (v *Verdict) checkStep(i int, step *Step) {
	if !ValidMethods[step.HTTPMethod] {
		v.fail(Violation{
			Rule:      ViolationInvalidMethod,
			StepIndex: i,
			StepName:  step.Name,
			Field:     "http_method",
			Message:   fmt.Sprintf("http method %q is not one of GET, POST, PUT, PATCH, DELETE", step.HTTPMethod),
		})
	}

	endpoint := strings.TrimSpace(step.Endpoint)
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "/") {
		v.fail(Violation{
			Rule:      ViolationInvalidEndpoint,
			StepIndex: i,
			StepName:  step.Name,
			Field:     "endpoint",
			Message:   fmt.Sprintf("endpoint %q must be an absolute URL or a root-relative path", step.Endpoint),
		})
	}

	for _, selector := range step.OutputFields {
		if selector != "" && !strings.HasPrefix(selector, SelectorPrefix) {
			v.fail(Violation{
				Rule:      ViolationInvalidOutputSelector,
				StepIndex: i,
				StepName:  step.Name,
				Field:     "output_fields",
				Message:   fmt.Sprintf("output selector %q must begin with %q", selector, SelectorPrefix),
			})
		}
	}

	for local, selector := range step.DependsOnFields {
		if selector != "" && !strings.HasPrefix(selector, SelectorPrefix) {
			v.fail(Violation{
				Rule:      ViolationInvalidDependencySelector,
				StepIndex: i,
				StepName:  step.Name,
				Field:     "depends_on_fields",
				Message:   fmt.Sprintf("dependency selector %q for field %q must begin with %q", selector, local, SelectorPrefix),
			})
		}
	}

	if step.RequestSchema != nil {
		if template := strings.TrimSpace(step.RequestSchema.Template); template != "" && !json.Valid([]byte(template)) {
			v.fail(Violation{
				Rule:      ViolationInvalidBodyTemplate,
				StepIndex: i,
				StepName:  step.Name,
				Field:     "request_schema.template",
				Message:   "request body template is not valid JSON",
			})
		}
		if len(step.RequestSchema.Schema) > 0 {
			v.checkSchema(i, step, "request_schema.schema", step.RequestSchema.Schema)
		}
	}

	if len(step.ResponseSchema) > 0 {
		v.checkSchema(i, step, "response_schema", step.ResponseSchema)
	}
}

// checkSchema compile-checks an embedded JSON Schema document
func (v *Verdict) checkSchema(i int, step *Step, field string, raw json.RawMessage) {
	if _, err := jsonschema.CompileString(fmt.Sprintf("step-%d-%s", i, field), string(raw)); err != nil {
		v.fail(Violation{
			Rule:      ViolationInvalidSchema,
			StepIndex: i,
			StepName:  step.Name,
			Field:     field,
			Message:   fmt.Sprintf("schema does not compile: %v", err),
		})
	}
}

// checkDependencyRules enforces the execution-mode-specific dependency rules:
// parallel steps cannot consume each other's output, and nothing precedes the
// first sequential step for it to depend on
func (v *Verdict) checkDependencyRules(seq *Sequence) {
	switch seq.ExecutionMode {
	case ModeParallel:
		for i := range seq.Steps {
			step := &seq.Steps[i]
			if len(step.DependsOnFields) > 0 {
				v.fail(Violation{
					Rule:      ViolationParallelDependencies,
					StepIndex: i,
					StepName:  step.Name,
					Field:     "depends_on_fields",
					Message:   "steps in a parallel sequence cannot depend on each other's output",
				})
			}
		}

	case ModeSequential:
		if len(seq.Steps) > 0 && len(seq.Steps[0].DependsOnFields) > 0 {
			v.fail(Violation{
				Rule:      ViolationFirstStepDependencies,
				StepIndex: 0,
				StepName:  seq.Steps[0].Name,
				Field:     "depends_on_fields",
				Message:   "the first step has no prior step to depend on",
			})
		}
	}
	// conditional mode deliberately imposes no dependency restriction
}

// checkForwardReferences flags dependency selectors that resolve only to the
// output of a step with an equal or greater sequence_order. Ordering is
// normally guaranteed structurally because the editor only offers earlier
// output fields, so this catches sequences forced into the data model by
// other paths.
func (v *Verdict) checkForwardReferences(seq *Sequence) {
	for i := range seq.Steps {
		step := &seq.Steps[i]
		for local, selector := range step.DependsOnFields {
			if selector == "" || !strings.HasPrefix(selector, SelectorPrefix) {
				continue
			}

			earlier, later := false, false
			for j := range seq.Steps {
				if j == i || !stepEmits(&seq.Steps[j], selector) {
					continue
				}
				if seq.Steps[j].SequenceOrder < step.SequenceOrder {
					earlier = true
				} else {
					later = true
				}
			}

			if !earlier && later {
				v.fail(Violation{
					Rule:      ViolationForwardReference,
					StepIndex: i,
					StepName:  step.Name,
					Field:     "depends_on_fields",
					Message:   fmt.Sprintf("dependency %q for field %q references the output of a later step", selector, local),
				})
			}
		}
	}
}

func stepEmits(step *Step, selector string) bool {
	for _, output := range step.OutputFields {
		if output == selector {
			return true
		}
	}
	return false
}

// checkEmptyBodies warns about body-bearing steps that would send an empty
// request: no template, no dependencies, and no headers that could carry data
func (v *Verdict) checkEmptyBodies(seq *Sequence) {
	for i := range seq.Steps {
		step := &seq.Steps[i]
		if !isConfigured(step) {
			continue
		}
		if step.HTTPMethod != "POST" && step.HTTPMethod != "PUT" && step.HTTPMethod != "PATCH" {
			continue
		}

		hasTemplate := step.RequestSchema != nil && strings.TrimSpace(step.RequestSchema.Template) != ""
		if !hasTemplate && len(step.DependsOnFields) == 0 && len(step.RequestHeaders) == 0 {
			v.warn(Violation{
				Rule:      WarningEmptyBodyLikely,
				StepIndex: i,
				StepName:  step.Name,
				Field:     "request_schema.template",
				Message:   fmt.Sprintf("step %d has no template, dependencies or headers; its request body may be empty", i+1),
			})
		}
	}
}
