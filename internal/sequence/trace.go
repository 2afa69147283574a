package sequence

// StepTrace records the outcome of one executed step. The execution
// collaborator produces these; downstream output-field selectors are
// evaluated against ResponseBody.
type StepTrace struct {
	StepName     string                 `json:"step_name"`
	StepOrder    int                    `json:"step_order"`
	Success      bool                   `json:"success"`
	Skipped      bool                   `json:"skipped,omitempty"`
	StatusCode   int                    `json:"status_code,omitempty"`
	DurationMS   int64                  `json:"duration_ms,omitempty"`
	RequestBody  map[string]interface{} `json:"input_data,omitempty"`
	ResponseBody map[string]interface{} `json:"output_data,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// ExecutionTrace is the per-step record of one full sequence run
type ExecutionTrace struct {
	SequenceName  string                 `json:"sequence_name"`
	ExecutionMode ExecutionMode          `json:"execution_mode"`
	Steps         []StepTrace            `json:"steps"`
	FinalResult   map[string]interface{} `json:"final_result,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
}
