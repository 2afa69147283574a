package sequence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepJSON_AuthConfigSelectedByAuthType(t *testing.T) {
	raw := `{
		"name": "submit",
		"integration_type": "lead_submission",
		"endpoint": "https://api.example.com/submit",
		"http_method": "POST",
		"sequence_order": 1,
		"auth_type": "api_key",
		"auth_config": {"key_name": "X-API-Key", "key_value": "secret", "key_location": "header"},
		"is_active": true
	}`

	var step Step
	require.NoError(t, json.Unmarshal([]byte(raw), &step))

	require.IsType(t, APIKeyAuth{}, step.AuthConfig)
	cfg := step.AuthConfig.(APIKeyAuth)
	assert.Equal(t, "X-API-Key", cfg.KeyName)
	assert.Equal(t, "header", cfg.KeyLocation)
}

func TestStepJSON_RoundTrip(t *testing.T) {
	step := Step{
		Name:          "submit",
		Endpoint:      "https://api.example.com/submit",
		HTTPMethod:    "POST",
		SequenceOrder: 1,
		AuthType:      AuthBearer,
		AuthConfig:    BearerAuth{Token: "tok-123"},
		IsActive:      true,
	}

	data, err := json.Marshal(step)
	require.NoError(t, err)

	var decoded Step
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, step.AuthType, decoded.AuthType)
	assert.Equal(t, BearerAuth{Token: "tok-123"}, decoded.AuthConfig)
}

func TestStepJSON_MissingAuthConfigTolerated(t *testing.T) {
	raw := `{"name": "submit", "auth_type": "bearer_token"}`

	var step Step
	require.NoError(t, json.Unmarshal([]byte(raw), &step))

	assert.Nil(t, step.AuthConfig)
}

func TestStepJSON_UnknownAuthTypeRejected(t *testing.T) {
	raw := `{"name": "submit", "auth_type": "magic", "auth_config": {"spell": "x"}}`

	var step Step
	assert.Error(t, json.Unmarshal([]byte(raw), &step))
}

func TestSampleSequence(t *testing.T) {
	seq := SampleSequence("")

	assert.Equal(t, "Sample Lead Submission Sequence", seq.Name)
	assert.Equal(t, ModeSequential, seq.ExecutionMode)
	require.Len(t, seq.Steps, 3)
	for i, step := range seq.Steps {
		assert.Equal(t, i+1, step.SequenceOrder)
	}

	// the scaffold is immediately valid apart from advisory warnings
	verdict := Validate(seq)
	assert.True(t, verdict.Valid)
}

func TestSampleSequence_CustomType(t *testing.T) {
	seq := SampleSequence("status_check")

	assert.Equal(t, "Sample Status Check Sequence", seq.Name)
	assert.Equal(t, "status_check", seq.SequenceType)
}
