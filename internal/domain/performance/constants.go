package performance

const (
	StatusDraft        = "draft"
	StatusSubmitted    = "submitted"
	StatusReviewed     = "reviewed"
	StatusAcknowledged = "acknowledged"

	GoalStatusPending    = "pending"
	GoalStatusInProgress = "in-progress"
	GoalStatusCompleted  = "completed"
	GoalStatusCancelled  = "cancelled"

	RatingMin = 1
	RatingMax = 5
)

var Statuses = []string{StatusDraft, StatusSubmitted, StatusReviewed, StatusAcknowledged}

var GoalStatuses = []string{GoalStatusPending, GoalStatusInProgress, GoalStatusCompleted, GoalStatusCancelled}

func ValidStatus(status string) bool {
	for _, candidate := range Statuses {
		if status == candidate {
			return true
		}
	}
	return false
}

func ValidGoalStatus(status string) bool {
	for _, candidate := range GoalStatuses {
		if status == candidate {
			return true
		}
	}
	return false
}
