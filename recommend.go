package main

// Recommend picks up to limit issues from an already prioritized slice.
// Candidates come from the first non-empty tier: issues that are both
// contributor-friendly and an expertise match, then contributor-friendly
// ones, then everything. Order within a tier follows the input, so scores
// stay descending.
func Recommend(prioritized []Issue, limit int) []Issue {
	if limit <= 0 {
		return nil
	}

	var both, friendly []Issue
	for _, issue := range prioritized {
		if issue.ContributorFriendly && issue.ExpertiseMatch {
			both = append(both, issue)
		}
		if issue.ContributorFriendly {
			friendly = append(friendly, issue)
		}
	}

	candidates := both
	if len(candidates) == 0 {
		candidates = friendly
	}
	if len(candidates) == 0 {
		candidates = prioritized
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// RecommendationReasons explains why an issue was worth recommending. The
// slice is empty only for issues that slipped in through the final
// fallback tier with nothing going for them.
func RecommendationReasons(issue Issue) []string {
	var reasons []string
	if issue.ContributorFriendly {
		reasons = append(reasons, "Marked as good for contributors")
	}
	if issue.ExpertiseMatch {
		reasons = append(reasons, "Matches your expertise")
	}
	if issue.ComplexityEstimate == ComplexityLow {
		reasons = append(reasons, "Relatively low complexity")
	}
	if issue.PriorityScore > 30 {
		reasons = append(reasons, "High priority for the project")
	}
	return reasons
}
