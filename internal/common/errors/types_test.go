package errors

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{
			name: "basic error",
			appError: &AppError{
				Type:    ErrTypeConfig,
				Message: "configuration is invalid",
			},
			want: "config: configuration is invalid",
		},
		{
			name: "error with code",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "sequence is not valid",
				Code:    "SEQ001",
			},
			want: "validation: sequence is not valid: code=SEQ001",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParse,
				Message: "cannot parse curl command",
				Cause:   errors.New("unterminated quote"),
			},
			want: "parse: cannot parse curl command: cause=unterminated quote",
		},
		{
			name: "error with context",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "step index out of range",
				Context: map[string]interface{}{
					"index": 7,
				},
			},
			want: "validation: step index out of range: context={index=7}",
		},
		{
			name: "complete error",
			appError: &AppError{
				Type:    ErrTypeInternal,
				Message: "internal system error",
				Code:    "SYS001",
				Cause:   errors.New("panic recovered"),
				Context: map[string]interface{}{
					"component": "session",
				},
			},
			want: "internal: internal system error: code=SYS001: cause=panic recovered: context={component=session}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appError.Error()
			if got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	appError := &AppError{
		Type:    ErrTypeInternal,
		Message: "wrapper error",
		Cause:   cause,
	}

	if unwrapped := appError.Unwrap(); unwrapped != cause {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}

	appErrorNoCause := &AppError{
		Type:    ErrTypeConfig,
		Message: "no cause error",
	}

	if unwrapped := appErrorNoCause.Unwrap(); unwrapped != nil {
		t.Errorf("AppError.Unwrap() without cause = %v, want nil", unwrapped)
	}
}

func TestAppError_WithContext(t *testing.T) {
	appError := ValidationError("validation failed")

	result := appError.WithContext("field", "endpoint")

	if result != appError {
		t.Error("WithContext should return the same instance")
	}

	if appError.Context["field"] != "endpoint" {
		t.Errorf("Context[field] = %v, want endpoint", appError.Context["field"])
	}
}

func TestAppError_WithCode(t *testing.T) {
	appError := ConfigError("missing store").WithCode("CFG001")

	if appError.Code != "CFG001" {
		t.Errorf("Code = %v, want CFG001", appError.Code)
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *AppError
		want ErrorType
	}{
		{"validation", ValidationError("bad input"), ErrTypeValidation},
		{"parse", ParseError("bad curl", cause), ErrTypeParse},
		{"transform", TransformError("bad phone"), ErrTypeTransform},
		{"config", ConfigError("missing setting"), ErrTypeConfig},
		{"not found", NotFoundError("sequence"), ErrTypeNotFound},
		{"internal", InternalError("oops", cause), ErrTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.want {
				t.Errorf("Type = %v, want %v", tt.err.Type, tt.want)
			}
		})
	}

	if msg := NotFoundError("sequence").Message; msg != "sequence not found" {
		t.Errorf("NotFoundError message = %v", msg)
	}
}

func TestIsType(t *testing.T) {
	err := ValidationError("bad input")

	if !IsType(err, ErrTypeValidation) {
		t.Error("IsType should match the error's type")
	}
	if IsType(err, ErrTypeConfig) {
		t.Error("IsType should not match a different type")
	}
	if IsType(nil, ErrTypeValidation) {
		t.Error("IsType(nil) should be false")
	}
	if IsType(errors.New("plain"), ErrTypeValidation) {
		t.Error("IsType should be false for non-AppError errors")
	}
}

func TestGetType(t *testing.T) {
	if got := GetType(ParseError("x", nil)); got != ErrTypeParse {
		t.Errorf("GetType = %v, want %v", got, ErrTypeParse)
	}
	if got := GetType(errors.New("plain")); got != ErrTypeInternal {
		t.Errorf("GetType for plain error = %v, want %v", got, ErrTypeInternal)
	}
	if got := GetType(nil); got != "" {
		t.Errorf("GetType(nil) = %v, want empty", got)
	}
}
