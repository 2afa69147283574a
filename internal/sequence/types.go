// Package sequence models multi-step partner API call sequences and
// validates them for internal consistency before they may be saved or
// executed.
package sequence

import (
	"encoding/json"
	"fmt"
)

// IntegrationType classifies what a step does against the partner API
type IntegrationType string

const (
	IntegrationLeadSubmission IntegrationType = "lead_submission"
	IntegrationStatusCheck    IntegrationType = "status_check"
	IntegrationBulkUpload     IntegrationType = "bulk_upload"
	IntegrationWebhook        IntegrationType = "webhook"
	IntegrationPolling        IntegrationType = "polling"
)

// AuthType selects how a step authenticates against the partner API
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "api_key"
	AuthBearer AuthType = "bearer_token"
	AuthBasic  AuthType = "basic_auth"
	AuthOAuth2 AuthType = "oauth2"
)

// ExecutionMode controls how a sequence's steps run
type ExecutionMode string

const (
	ModeSequential  ExecutionMode = "sequential"
	ModeParallel    ExecutionMode = "parallel"
	ModeConditional ExecutionMode = "conditional"
)

// ValidMethods is the set of HTTP methods a step may use
var ValidMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// AuthConfig is the typed configuration for one authentication kind. The
// concrete type is selected by the step's AuthType.
type AuthConfig interface {
	Kind() AuthType
}

// APIKeyAuth carries an API key and where to place it
type APIKeyAuth struct {
	KeyName     string `json:"key_name"`
	KeyValue    string `json:"key_value"`
	KeyLocation string `json:"key_location"` // header or query
}

func (APIKeyAuth) Kind() AuthType { return AuthAPIKey }

// BearerAuth carries a bearer token
type BearerAuth struct {
	Token string `json:"token"`
}

func (BearerAuth) Kind() AuthType { return AuthBearer }

// BasicAuth carries username/password credentials
type BasicAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (BasicAuth) Kind() AuthType { return AuthBasic }

// OAuth2Auth carries an OAuth2 client-credentials configuration
type OAuth2Auth struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes,omitempty"`
}

func (OAuth2Auth) Kind() AuthType { return AuthOAuth2 }

// RequestSchema describes the request a step sends: an optional JSON body
// template, extra query parameters, and an optional JSON Schema the body is
// expected to satisfy
type RequestSchema struct {
	Template    string            `json:"template,omitempty"`
	QueryParams map[string]string `json:"query_params,omitempty"`
	Schema      json.RawMessage   `json:"schema,omitempty"`
}

// Step is a single HTTP call definition inside a sequence.
//
// DependsOnFields maps a local field name to a selector ("$.field") naming a
// prior step's output; OutputFields lists selectors extracted from this
// step's response for downstream steps.
type Step struct {
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	IntegrationType    IntegrationType   `json:"integration_type"`
	Endpoint           string            `json:"endpoint"`
	HTTPMethod         string            `json:"http_method"`
	SequenceOrder      int               `json:"sequence_order"`
	AuthType           AuthType          `json:"auth_type"`
	AuthConfig         AuthConfig        `json:"-"`
	DependsOnFields    map[string]string `json:"depends_on_fields,omitempty"`
	OutputFields       []string          `json:"output_fields,omitempty"`
	IsActive           bool              `json:"is_active"`
	TimeoutSeconds     int               `json:"timeout_seconds,omitempty"`
	RetryCount         int               `json:"retry_count,omitempty"`
	RetryDelaySeconds  int               `json:"retry_delay_seconds,omitempty"`
	RateLimitPerMinute int               `json:"rate_limit_per_minute,omitempty"`
	RequestHeaders     map[string]string `json:"request_headers,omitempty"`
	RequestSchema      *RequestSchema    `json:"request_schema,omitempty"`
	ResponseSchema     json.RawMessage   `json:"response_schema,omitempty"`
}

// MarshalJSON renders auth_config in the wire shape selected by auth_type
func (s Step) MarshalJSON() ([]byte, error) {
	type alias Step
	return json.Marshal(struct {
		alias
		AuthConfig AuthConfig `json:"auth_config,omitempty"`
	}{
		alias:      alias(s),
		AuthConfig: s.AuthConfig,
	})
}

// UnmarshalJSON decodes auth_config into the concrete type named by auth_type
func (s *Step) UnmarshalJSON(data []byte) error {
	type alias Step
	aux := struct {
		*alias
		AuthConfig json.RawMessage `json:"auth_config"`
	}{alias: (*alias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.AuthConfig) == 0 || string(aux.AuthConfig) == "null" {
		s.AuthConfig = nil
		return nil
	}

	cfg, err := decodeAuthConfig(s.AuthType, aux.AuthConfig)
	if err != nil {
		return err
	}
	s.AuthConfig = cfg
	return nil
}

func decodeAuthConfig(kind AuthType, raw json.RawMessage) (AuthConfig, error) {
	switch kind {
	case AuthAPIKey:
		var c APIKeyAuth
		return c, json.Unmarshal(raw, &c)
	case AuthBearer:
		var c BearerAuth
		return c, json.Unmarshal(raw, &c)
	case AuthBasic:
		var c BasicAuth
		return c, json.Unmarshal(raw, &c)
	case AuthOAuth2:
		var c OAuth2Auth
		return c, json.Unmarshal(raw, &c)
	case AuthNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", kind)
	}
}

// Sequence is an ordered, possibly-dependent set of steps representing one
// integration workflow. Steps carry dense 1-based sequence_order values;
// dependencies may only reference earlier steps.
type Sequence struct {
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	SequenceType     string          `json:"sequence_type"`
	ExecutionMode    ExecutionMode   `json:"execution_mode"`
	ConditionConfig  ConditionConfig `json:"condition_config,omitempty"`
	StopOnError      bool            `json:"stop_on_error"`
	RetryFailedSteps bool            `json:"retry_failed_steps"`
	IsActive         bool            `json:"is_active"`
	Steps            []Step          `json:"steps"`
}
