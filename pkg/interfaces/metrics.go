package interfaces

import "time"

// PipelineMetrics receives observations from the document pipeline and the
// resolver. Implementations must be safe for concurrent use.
type PipelineMetrics interface {
	ObserveRenderDuration(contentType string, duration time.Duration)
	IncrementMathFailure(mode string)
	IncrementResolve(outcome string)
	IncrementCacheResult(cache, result string)
}
