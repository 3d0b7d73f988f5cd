package models

// PointsTable maps every activity type to its score contribution.
// It is a value type; copies handed to the engine cannot be changed by callers.
type PointsTable struct {
	PROpened        int `json:"pr_opened"`
	PRMerged        int `json:"pr_merged"`
	IssueOpened     int `json:"issue_opened"`
	ReviewSubmitted int `json:"review_submitted"`
	IssueLabeled    int `json:"issue_labeled"`
	IssueAssigned   int `json:"issue_assigned"`
	IssueClosed     int `json:"issue_closed"`
}

// DefaultPoints returns the fixed points table used by the leaderboard
func DefaultPoints() PointsTable {
	return PointsTable{
		PROpened:        2,
		PRMerged:        5,
		IssueOpened:     1,
		ReviewSubmitted: 4,
		IssueLabeled:    2,
		IssueAssigned:   2,
		IssueClosed:     1,
	}
}

// For returns the points awarded for one activity of the given type
func (p PointsTable) For(t ActivityType) int {
	switch t {
	case ActivityPROpened:
		return p.PROpened
	case ActivityPRMerged:
		return p.PRMerged
	case ActivityIssueOpened:
		return p.IssueOpened
	case ActivityReviewSubmitted:
		return p.ReviewSubmitted
	case ActivityIssueLabeled:
		return p.IssueLabeled
	case ActivityIssueAssigned:
		return p.IssueAssigned
	case ActivityIssueClosed:
		return p.IssueClosed
	default:
		return 0
	}
}
