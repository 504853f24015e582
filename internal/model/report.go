package model

// FetchResult is the crawl metadata the health branch consumes. On error,
// HTML is empty and the scoring engine's fetch-failure branch activates.
type FetchResult struct {
	HTML           string `json:"html,omitempty"`
	FinalURL       string `json:"final_url"`
	RobotsTxt      string `json:"robots_txt,omitempty"`
	SitemapFound   bool   `json:"sitemap_found"`
	ResponseTimeMS int    `json:"response_time_ms"`
	StatusCode     int    `json:"status_code"`
	JSRendered     bool   `json:"js_rendered"`
	Blocked        bool   `json:"blocked"`
	BlockType      string `json:"block_type,omitempty"`
	Error          string `json:"error,omitempty"`
}

// HealthReport is the output of the health branch.
type HealthReport struct {
	URL           string        `json:"url"`
	Score         float64       `json:"score"`
	MaxScore      float64       `json:"max_score"`
	Grade         string        `json:"grade"`
	Band          string        `json:"band"`
	BandColor     string        `json:"band_color"`
	ChecksPassed  int           `json:"checks_passed"`
	ChecksFailed  int           `json:"checks_failed"`
	Issues        []CheckResult `json:"issues"`
	TierDetails   *TierDetails  `json:"tier_details,omitempty"`
	FetchTimeMS   int           `json:"fetch_time_ms"`
	JSRendered    bool          `json:"js_rendered"`
	ExecutionTime float64       `json:"execution_time"`
}

// BranchError records which pipeline branch failed and why. Both branches'
// failures are preserved, not just the first.
type BranchError struct {
	Branch string `json:"branch"`
	Error  string `json:"error"`
}

// AnalysisReport is the combined pipeline output. A branch that did not run
// (or failed) is nil; callers always receive a complete, well-typed object.
type AnalysisReport struct {
	RunID        string          `json:"run_id"`
	Health       *HealthReport   `json:"health,omitempty"`
	Mentions     *MentionsReport `json:"mentions,omitempty"`
	TotalTime    float64         `json:"total_execution_time"`
	Error        string          `json:"error,omitempty"`
	BranchErrors []BranchError   `json:"branch_errors,omitempty"`
}
