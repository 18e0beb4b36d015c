package detect

// Source identifies which collector produced a Signal.
type Source string

const (
	SourceURLReputation Source = "url_reputation"
	SourceRuleURL       Source = "rule_url"
	SourceRuleText      Source = "rule_text"
	SourceMLText        Source = "ml_text"
)

// Status is a collector's (or the fused) risky/safe call. Signals may
// additionally be unavailable when their source could not be consulted.
type Status string

const (
	StatusRisky       Status = "risky"
	StatusSafe        Status = "safe"
	StatusUnavailable Status = "unavailable"
)

// Signal is one collector's normalized opinion on one artifact.
// Confidence is meaningless when Status is unavailable.
type Signal struct {
	Source     Source   `json:"source"`
	Artifact   string   `json:"artifact"`
	Status     Status   `json:"status"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence,omitempty"`
}

// Verdict is the fused decision returned to the caller.
type Verdict struct {
	Status          Status   `json:"status"`
	Confidence      float64  `json:"confidence"`
	DetectionMethod string   `json:"detection_method"`
	Reasons         []string `json:"reasons"`
}

// Request carries the artifacts to analyze. At least one of Text or URL
// must be set; the engine rejects empty requests with ErrNoInput.
type Request struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}
