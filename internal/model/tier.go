package model

// TierResult is the outcome of evaluating one gating tier.
type TierResult struct {
	Passed bool   `json:"passed"`
	Cap    int    `json:"cap"`
	Reason string `json:"reason"`
}

// TierDetails explains how the final score was derived from the tier caps
// and the weighted base score.
type TierDetails struct {
	Tier0          TierResult `json:"tier0"`
	Tier1          TierResult `json:"tier1"`
	Tier2          TierResult `json:"tier2"`
	BaseScore      float64    `json:"base_score"`
	LimitingTier   string     `json:"limiting_tier"`
	LimitingReason string     `json:"limiting_reason"`
}
