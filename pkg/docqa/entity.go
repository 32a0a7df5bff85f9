package docqa

import (
	"fmt"
	"time"
)

// Request is one uploaded document and the question asked about it.
// Filename only contributes its extension; the bytes are never stored under it.
type Request struct {
	Filename string
	Data     []byte
	Question string
}

// Answer is the model reply for a Request.
type Answer struct {
	Text  string
	Model string
	// Chars is the length of the extracted document text sent as context.
	Chars int
}

// Pipeline stages reported in PipelineError.
const (
	StageStore    = "store"
	StageExtract  = "extract"
	StagePrompt   = "prompt"
	StageGenerate = "generate"
)

// PipelineError reports which stage of answering failed.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("docqa %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	return &PipelineError{Stage: stage, Err: err}
}

// Recorder observes pipeline outcomes. stage is empty on success.
type Recorder interface {
	ObserveAnswer(stage string, elapsed time.Duration)
}
