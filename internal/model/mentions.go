package model

// Query dimensions emitted by the hyperniche generator. Dimension is a
// free-form label; these are the values the generator asks the model for.
const (
	DimensionUnbranded   = "UNBRANDED_HYPERNICHE"
	DimensionCompetitive = "COMPETITIVE_HYPERNICHE"
	DimensionBranded     = "BRANDED_DIRECT"
)

// CompanyProfile is the targeting data the query generator works from.
type CompanyProfile struct {
	Name           string   `json:"name"`
	Industry       string   `json:"industry,omitempty"`
	Products       []string `json:"products,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	Competitors    []string `json:"competitors,omitempty"`
}

// GeneratedQuery is one search-style probe query. Immutable once created.
type GeneratedQuery struct {
	Query     string `json:"query"`
	Dimension string `json:"dimension"`
}

// QueryResult is the outcome of probing one query against the generative
// provider. Created by the prober, aggregated by the visibility aggregator.
type QueryResult struct {
	Query            string `json:"query"`
	Dimension        string `json:"dimension,omitempty"`
	HasResponse      bool   `json:"has_response"`
	CompanyMentioned bool   `json:"company_mentioned"`
	ResponseLength   int    `json:"response_length"`
	ResponsePreview  string `json:"response_preview"`
	Error            string `json:"error,omitempty"`
}

// MentionType classifies how a company appears in a probe response.
type MentionType string

const (
	MentionPrimary    MentionType = "primary"
	MentionComparison MentionType = "comparison"
	MentionAbsent     MentionType = "absent"
)

// PlatformResult is one platform's answer to a query in the fanned-out
// probe variant.
type PlatformResult struct {
	Platform         string      `json:"platform"`
	HasResponse      bool        `json:"has_response"`
	CompanyMentioned bool        `json:"company_mentioned"`
	MentionType      MentionType `json:"mention_type"`
	ListPosition     int         `json:"list_position,omitempty"`
	ResponseLength   int         `json:"response_length"`
	ResponsePreview  string      `json:"response_preview"`
	Error            string      `json:"error,omitempty"`
}

// PlatformQueryResult is a query's outcome across all probed platforms.
// CountedMentions is capped so one verbose answer cannot dominate the
// aggregate statistics.
type PlatformQueryResult struct {
	Query           string           `json:"query"`
	Dimension       string           `json:"dimension,omitempty"`
	Platforms       []PlatformResult `json:"platforms"`
	CountedMentions int              `json:"counted_mentions"`
}

// GroupStats holds presence/mention arithmetic for one grouping key
// (a platform or a query dimension).
type GroupStats struct {
	Queries    int     `json:"queries"`
	Responses  int     `json:"responses"`
	Mentions   int     `json:"mentions"`
	Visibility float64 `json:"visibility"`
}

// VisibilityReport is the aggregate mentions outcome: a stateless function
// of the per-query results it was derived from.
type VisibilityReport struct {
	Visibility   float64               `json:"visibility"`
	Mentions     int                   `json:"mentions"`
	PresenceRate float64               `json:"presence_rate"`
	QualityScore float64               `json:"quality_score"`
	Band         string                `json:"band"`
	ByDimension  map[string]GroupStats `json:"by_dimension,omitempty"`
	ByPlatform   map[string]GroupStats `json:"by_platform,omitempty"`
}

// MentionsReport is the full output of the mentions branch.
type MentionsReport struct {
	CompanyName      string           `json:"company_name"`
	QueriesGenerated []GeneratedQuery `json:"queries_generated"`
	QueryResults     []QueryResult    `json:"query_results"`
	VisibilityReport
	ExecutionTime float64 `json:"execution_time"`
}
