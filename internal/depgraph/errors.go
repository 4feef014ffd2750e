package depgraph

import (
	"errors"
	"fmt"
)

// Reason classifies why the guard refused an operation.
type Reason string

const (
	ReasonSelfDependency   Reason = "self_dependency"
	ReasonDuplicateEdge    Reason = "duplicate_edge"
	ReasonCyclicDependency Reason = "cyclic_dependency"
	ReasonNotFound         Reason = "not_found"
	ReasonStorageFailure   Reason = "storage_failure"
)

// Sentinel errors, one per Reason. Match with errors.Is.
var (
	ErrSelfDependency   = errors.New("task cannot depend on itself")
	ErrDuplicateEdge    = errors.New("dependency already exists")
	ErrCyclicDependency = errors.New("dependency would create a cycle")
	ErrNotFound         = errors.New("dependency not found")
	ErrStorageFailure   = errors.New("dependency store failure")

	// ErrConflict is what a DependencyStore returns (possibly wrapped) when
	// an insert hits the (task_id, predecessor_task_id) uniqueness constraint.
	ErrConflict = errors.New("dependency store: unique constraint conflict")
)

var reasonSentinels = map[Reason]error{
	ReasonSelfDependency:   ErrSelfDependency,
	ReasonDuplicateEdge:    ErrDuplicateEdge,
	ReasonCyclicDependency: ErrCyclicDependency,
	ReasonNotFound:         ErrNotFound,
	ReasonStorageFailure:   ErrStorageFailure,
}

// Err returns the sentinel error for the reason.
func (r Reason) Err() error {
	return reasonSentinels[r]
}

// RejectionError is a logical, recoverable refusal. The caller fixes the
// input and retries.
type RejectionError struct {
	Reason            Reason
	TaskID            int64
	PredecessorTaskID int64
	EdgeID            int64 // set for ReasonNotFound on removal
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonSelfDependency:
		return fmt.Sprintf("task %d cannot depend on itself", e.TaskID)
	case ReasonDuplicateEdge:
		if e.TaskID == 0 && e.PredecessorTaskID == 0 {
			return ErrDuplicateEdge.Error()
		}
		return fmt.Sprintf("task %d already depends on task %d", e.TaskID, e.PredecessorTaskID)
	case ReasonCyclicDependency:
		return fmt.Sprintf("task %d depending on task %d would create a cycle", e.TaskID, e.PredecessorTaskID)
	case ReasonNotFound:
		return fmt.Sprintf("dependency %d not found in project", e.EdgeID)
	default:
		return string(e.Reason)
	}
}

// Is reports whether target is the sentinel for e.Reason.
func (e *RejectionError) Is(target error) bool {
	return target == e.Reason.Err()
}

func reject(reason Reason, taskID, predecessorTaskID int64) *RejectionError {
	return &RejectionError{Reason: reason, TaskID: taskID, PredecessorTaskID: predecessorTaskID}
}

// StorageError wraps a failed store call. It matches ErrStorageFailure and
// the underlying error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("depgraph: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageFailure }

// ReasonOf extracts the Reason carried by err, or "" for errors the guard
// did not produce.
func ReasonOf(err error) Reason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	var se *StorageError
	if errors.As(err, &se) {
		return ReasonStorageFailure
	}
	return ""
}
