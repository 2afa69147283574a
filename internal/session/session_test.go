package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sequence-engine/internal/common/errors"
	"sequence-engine/internal/mapping"
	"sequence-engine/internal/sequence"
	"sequence-engine/internal/testutil"
)

func validSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	seq := testutil.NewSequenceBuilder().
		WithSteps(
			testutil.NewStepBuilder().WithName("submit").WithOutputFields("$.lead_id").Build(),
			testutil.NewStepBuilder().WithName("confirm").WithDependsOn(map[string]string{"lead_id": "$.lead_id"}).Build(),
		).
		Build()
	s := New("partner-1", seq, opts...)
	require.True(t, s.Verdict().Valid)
	return s
}

func TestNew_NilSequenceStartsFresh(t *testing.T) {
	s := New("partner-1", nil)

	seq := s.Sequence()
	assert.Equal(t, sequence.ModeSequential, seq.ExecutionMode)
	assert.True(t, seq.StopOnError)
	assert.Empty(t, seq.Steps)

	// a fresh sequence is not yet saveable
	assert.False(t, s.Verdict().Valid)
}

func TestNew_AssignsUniqueIDs(t *testing.T) {
	a := New("partner-1", nil)
	b := New("partner-1", nil)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestMutationsRevalidate(t *testing.T) {
	s := New("partner-1", nil)
	assert.False(t, s.Verdict().Valid)

	s.Update(func(seq *sequence.Sequence) { seq.Name = "lead flow" })
	s.AppendStep(testutil.NewStepBuilder().WithName("submit").Build())

	assert.True(t, s.Verdict().Valid)

	require.NoError(t, s.UpdateStep(0, func(step *sequence.Step) {
		step.HTTPMethod = "FETCH"
	}))
	assert.False(t, s.Verdict().Valid)
}

func TestMutationsRenumber(t *testing.T) {
	s := validSession(t)

	require.NoError(t, s.InsertStep(1, testutil.NewStepBuilder().WithName("enrich").Build()))

	seq := s.Sequence()
	require.Len(t, seq.Steps, 3)
	for i, step := range seq.Steps {
		assert.Equal(t, i+1, step.SequenceOrder)
	}
	assert.Equal(t, "enrich", seq.Steps[1].Name)
}

func TestUpdateStep_OutOfRange(t *testing.T) {
	s := New("partner-1", nil)

	err := s.UpdateStep(0, func(step *sequence.Step) {})

	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestImportCurl_MergesDescriptor(t *testing.T) {
	s := validSession(t)

	d, err := s.ImportCurl(0, `curl -X PUT 'https://partner.example.com/v2/leads' `+
		`-H 'Content-Type: application/json' `+
		`--data-raw '{"name":"Jane"}'`)
	require.NoError(t, err)
	assert.False(t, d.IsEmpty())

	step := s.Sequence().Steps[0]
	assert.Equal(t, "https://partner.example.com/v2/leads", step.Endpoint)
	assert.Equal(t, "PUT", step.HTTPMethod)
	assert.Equal(t, "application/json", step.RequestHeaders["Content-Type"])
	require.NotNil(t, step.RequestSchema)
	assert.JSONEq(t, `{"name":"Jane"}`, step.RequestSchema.Template)
}

func TestImportCurl_InfersBearerAuth(t *testing.T) {
	s := validSession(t)

	_, err := s.ImportCurl(0, `curl https://partner.example.com/leads -H 'Authorization: Bearer tok-123'`)
	require.NoError(t, err)

	step := s.Sequence().Steps[0]
	assert.Equal(t, sequence.AuthBearer, step.AuthType)
	assert.Equal(t, sequence.BearerAuth{Token: "tok-123"}, step.AuthConfig)

	// the consumed header is not duplicated into request headers
	assert.NotContains(t, step.RequestHeaders, "Authorization")
}

func TestImportCurl_QueryParams(t *testing.T) {
	s := validSession(t)

	_, err := s.ImportCurl(0, `curl 'https://partner.example.com/search?q=leads&page=2'`)
	require.NoError(t, err)

	step := s.Sequence().Steps[0]
	require.NotNil(t, step.RequestSchema)
	assert.Equal(t, map[string]string{"q": "leads", "page": "2"}, step.RequestSchema.QueryParams)
}

func TestImportCurl_FormBodyStaysJSONValid(t *testing.T) {
	s := validSession(t)

	_, err := s.ImportCurl(0, `curl https://partner.example.com/leads -d 'name=Jane&source=web'`)
	require.NoError(t, err)

	step := s.Sequence().Steps[0]
	require.NotNil(t, step.RequestSchema)
	assert.JSONEq(t, `{"name":"Jane","source":"web"}`, step.RequestSchema.Template)

	// the merged template must not trip the body-template rule
	assert.True(t, s.Verdict().Valid)
}

func TestImportCurl_OutOfRange(t *testing.T) {
	s := New("partner-1", nil)

	_, err := s.ImportCurl(0, "curl https://example.com")

	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestPreviewTransform_Deterministic(t *testing.T) {
	s := validSession(t)
	s.SetMappings([]mapping.FieldMapping{
		testutil.NewMappingBuilder("phone", "contact_phone").
			WithTransform(mapping.TransformFormatPhone, mapping.PhoneConfig{Format: "dashed"}).
			Build(),
	})

	record := map[string]interface{}{"phone": "+1-555-123-4567"}

	first := s.PreviewTransform(record)
	assert.Equal(t, "555-123-4567", first.Output["contact_phone"])
	assert.Equal(t, first, s.PreviewTransform(record))
}

func TestSuggestOutputFields(t *testing.T) {
	provider := testutil.NewMockSampleProvider(map[int]map[string]interface{}{
		1: {"lead_id": "L-1", "status": "ok", "created_at": "2026-08-01", "score": 9.5},
	})
	s := validSession(t, WithSampleProvider(provider))

	proposals, err := s.SuggestOutputFields(context.Background(), 0, 3)
	require.NoError(t, err)

	// sorted keys, capped at n, already-declared selectors skipped
	assert.Equal(t, []string{"$.created_at", "$.score", "$.status"}, proposals)
}

func TestSuggestOutputFields_NoSample(t *testing.T) {
	provider := testutil.NewMockSampleProvider(nil)
	s := validSession(t, WithSampleProvider(provider))

	proposals, err := s.SuggestOutputFields(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Empty(t, proposals)
}

func TestSuggestOutputFields_NoProvider(t *testing.T) {
	s := validSession(t)

	_, err := s.SuggestOutputFields(context.Background(), 0, 3)

	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestSave(t *testing.T) {
	store := testutil.NewMockStore()
	s := validSession(t, WithStore(store))
	s.SetMappings([]mapping.FieldMapping{
		testutil.NewMappingBuilder("email", "contact_email").Build(),
	})

	require.NoError(t, s.Save(context.Background()))

	saved, mappings, ok := store.Saved("partner-1")
	require.True(t, ok)
	assert.Equal(t, "test-sequence", saved.Name)
	require.Len(t, mappings, 1)
	assert.Equal(t, "contact_email", mappings[0].TargetField)
}

func TestSave_RefusesInvalidSequence(t *testing.T) {
	store := testutil.NewMockStore()
	s := New("partner-1", nil, WithStore(store))

	err := s.Save(context.Background())

	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	assert.Equal(t, 0, store.SaveCalls)
}

func TestSave_NoStore(t *testing.T) {
	s := validSession(t)

	err := s.Save(context.Background())

	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestRunTest(t *testing.T) {
	s := validSession(t)
	executor := &testutil.MockExecutor{}

	trace, err := s.RunTest(context.Background(), executor, map[string]interface{}{"email": "jane@example.com"})
	require.NoError(t, err)

	assert.True(t, trace.Success)
	assert.Equal(t, 1, executor.ExecuteCalls)
	assert.Equal(t, "test-sequence", executor.LastSequence.Name)
}

func TestRunTest_RefusesInvalidSequence(t *testing.T) {
	s := New("partner-1", nil)
	executor := &testutil.MockExecutor{}

	_, err := s.RunTest(context.Background(), executor, nil)

	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	assert.Equal(t, 0, executor.ExecuteCalls)
}
