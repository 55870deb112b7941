package report

// DerivePriority computes the review priority from the reported side effects
// and, when present, the triage guidance. It is a pure function of its inputs
// so re-running it after a triage update is always safe.
//
// Rules, highest first:
//   - triage urgency "urgent"                      -> high
//   - any severe or life-threatening side effect   -> high
//   - triage urgency "soon"                        -> medium
//   - any moderate side effect                     -> medium
//   - otherwise                                    -> low
func DerivePriority(sideEffects []SideEffect, triage *TriageMetadata) Priority {
	if triage != nil && triage.PatientGuidance.UrgencyLevel == UrgencyUrgent {
		return PriorityHigh
	}
	maxRank := 0
	for _, se := range sideEffects {
		if r := se.Severity.Rank(); r > maxRank {
			maxRank = r
		}
	}
	if maxRank >= SeveritySevere.Rank() {
		return PriorityHigh
	}
	if triage != nil && triage.PatientGuidance.UrgencyLevel == UrgencySoon {
		return PriorityMedium
	}
	if maxRank >= SeverityModerate.Rank() {
		return PriorityMedium
	}
	return PriorityLow
}
