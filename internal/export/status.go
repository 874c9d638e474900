package export

import (
	"fmt"
	"sync"

	"github.com/handiism/media-exporter/internal/model"
)

// Status is the outcome of one call to Exporter.Export.
type Status int

const (
	StatusNotExported Status = iota
	StatusExported
	StatusAlreadyExported
	StatusNoRoot
	StatusSkipped
)

// String returns the human-readable status.
func (s Status) String() string {
	switch s {
	case StatusExported:
		return "exported"
	case StatusAlreadyExported:
		return "already exported"
	case StatusNoRoot:
		return "no root found"
	case StatusSkipped:
		return "skipped"
	default:
		return "not exported"
	}
}

// Result is returned by Export. Report is only set when Status is
// StatusExported; Err only when it is StatusNotExported.
type Result struct {
	Status  Status
	Message string
	Report  *model.Report
	Err     *RunError
}

// RunState remembers whether an export completed. The caller owns it and
// passes the same value to every Export call that should share the
// run-once guard.
type RunState struct {
	mu        sync.Mutex
	completed bool
}

// Completed reports whether an export finished successfully.
func (s *RunState) Completed() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// MarkCompleted records a successful export.
func (s *RunState) MarkCompleted() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.completed = true
	s.mu.Unlock()
}

// RunError is a whole-run failure. Op names the step that failed and is
// written to export-error.json as the error source.
type RunError struct {
	Op    string
	Err   error
	Stack []byte
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// errorFileContent renders the plain-text body of export-error.json.
func (e *RunError) errorFileContent() []byte {
	return []byte(fmt.Sprintf("Media section not exported!\n%v\n%s\n%s", e.Err, e.Op, e.Stack))
}
