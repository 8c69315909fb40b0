package core

import "fmt"

// ProbeError reports that duration and frame data could not be obtained
// for a source file. The pipeline treats it as fatal: segmentation is
// aborted with an empty clip list.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// SegmentError reports a single failed cut. The segmenter logs it and
// omits the clip index; the run continues.
type SegmentError struct {
	Index int
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("cut clip %d: %v", e.Index, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// StageError reports a failure inside one extraction or summarization
// stage. Stages are isolated: the clip still produces a result with the
// affected field degraded to a sentinel or empty value.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
