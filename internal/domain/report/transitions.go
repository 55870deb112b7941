package report

// allowedTransitions is the status state machine. Absent edges are invalid;
// archived is terminal and has no outgoing edges.
var allowedTransitions = map[Status][]Status{
	StatusPending:     {StatusUnderReview, StatusReviewed, StatusRejected},
	StatusUnderReview: {StatusReviewed, StatusConfirmed, StatusRejected},
	StatusReviewed:    {StatusArchived},
	StatusConfirmed:   {StatusArchived},
	StatusRejected:    {StatusArchived},
}

// CanTransition reports whether the edge from -> to exists in the state
// machine. Self-loops are never allowed.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// requiresReviewerRole reports whether an edge needs a doctor or admin actor.
// Picking up a pending report for review is the only edge open to anyone.
func requiresReviewerRole(from, to Status) bool {
	return !(from == StatusPending && to == StatusUnderReview)
}
