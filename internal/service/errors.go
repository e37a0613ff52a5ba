package service

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat rejects a restore candidate whose filename does not end
// in .db. The check runs before any I/O.
var ErrInvalidFormat = errors.New("restore candidate must have a .db extension")

// RestoreStage identifies where a restore attempt stopped.
type RestoreStage string

const (
	StageValidate   RestoreStage = "validate"
	StageDownload   RestoreStage = "download"
	StageSafetyCopy RestoreStage = "safety_copy"
	StagePromote    RestoreStage = "promote"
)

// RestoreError is terminal for the whole restore attempt: the operator
// reissues the restore, no single stage is retried.
type RestoreError struct {
	Stage RestoreStage
	Err   error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore failed at %s: %v", e.Stage, e.Err)
}

func (e *RestoreError) Unwrap() error {
	return e.Err
}
