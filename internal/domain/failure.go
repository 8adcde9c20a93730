package domain

// TestFailure represents a failed test result in the JSON report
type TestFailure struct {
	GroupName    string      `json:"group_name"`
	TestName     string      `json:"test_name"`
	FilePath     string      `json:"file_path"`
	ResultState  ResultState `json:"result_state"`
	ErrorDetails string      `json:"error_details"`
	StackTrace   []string    `json:"stack_trace"`
	File         string      `json:"file"`
	Line         int         `json:"line"`
	Message      string      `json:"message"`
	Resolved     bool        `json:"resolved,omitempty"` // Track if test case is marked as resolved
}
