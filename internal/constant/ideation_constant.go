package constant

// Session lifecycle statuses. Transitions are owned by the pipeline
// orchestrator; "failed" is reachable from every non-terminal state.
const (
	StatusPending       = "pending"
	StatusParsing       = "parsing"
	StatusGenerating    = "generating"
	StatusClustering    = "clustering"
	StatusEnriching     = "enriching"
	StatusScoring       = "scoring"
	StatusDeduplicating = "deduplicating"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
)

// Ordinal position of each step within the run sequence. The session
// store rejects writes that would move progress_step backwards.
const (
	StepPending       = 0
	StepParsing       = 1
	StepGenerating    = 2
	StepClustering    = 3
	StepEnriching     = 4
	StepScoring       = 5
	StepDeduplicating = 6
	StepCompleted     = 7
)

// Confidence levels. A run starts high and is downgraded when fallback
// or degraded behavior occurs (never upgraded).
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// MinProblemStatementLength rejects junk input before a session is created.
const MinProblemStatementLength = 10
