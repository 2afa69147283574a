package sequence

import "strings"

// titleCase renders "lead_submission" as "Lead Submission"
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SampleSequence scaffolds a three-step starter sequence of the given type
// for a new partner integration
func SampleSequence(sequenceType string) *Sequence {
	if sequenceType == "" {
		sequenceType = string(IntegrationLeadSubmission)
	}

	seq := &Sequence{
		Name:          "Sample " + titleCase(sequenceType) + " Sequence",
		Description:   "Automated sequence for " + sequenceType,
		SequenceType:  sequenceType,
		ExecutionMode: ModeSequential,
		StopOnError:   true,
		IsActive:      true,
		Steps: []Step{
			{
				Name:            "Step 1: Validate Lead",
				IntegrationType: IntegrationLeadSubmission,
				Endpoint:        "https://api.partner.example.com/validate",
				HTTPMethod:      "POST",
				AuthType:        AuthAPIKey,
				OutputFields:    []string{"$.validation_id", "$.status"},
				IsActive:        true,
			},
			{
				Name:            "Step 2: Submit Lead",
				IntegrationType: IntegrationLeadSubmission,
				Endpoint:        "https://api.partner.example.com/submit",
				HTTPMethod:      "POST",
				AuthType:        AuthAPIKey,
				DependsOnFields: map[string]string{"validation_id": "$.validation_id"},
				OutputFields:    []string{"$.lead_id", "$.status"},
				IsActive:        true,
			},
			{
				Name:            "Step 3: Confirm Submission",
				IntegrationType: IntegrationStatusCheck,
				Endpoint:        "https://api.partner.example.com/confirm",
				HTTPMethod:      "GET",
				AuthType:        AuthAPIKey,
				DependsOnFields: map[string]string{"lead_id": "$.lead_id"},
				OutputFields:    []string{"$.confirmation_id", "$.final_status"},
				IsActive:        true,
			},
		},
	}

	seq.Renumber()
	return seq
}
