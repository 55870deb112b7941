package report

import "testing"

func TestDerivePriority(t *testing.T) {
	mild := []SideEffect{{Effect: "itching", Severity: SeverityMild}}
	moderate := []SideEffect{{Effect: "vomiting", Severity: SeverityModerate}}
	severe := []SideEffect{{Effect: "anaphylaxis", Severity: SeveritySevere}}
	lifeThreatening := []SideEffect{{Effect: "cardiac arrest", Severity: SeverityLifeThreatening}}

	triage := func(u UrgencyLevel) *TriageMetadata {
		return &TriageMetadata{PatientGuidance: PatientGuidance{UrgencyLevel: u}}
	}

	cases := []struct {
		name    string
		effects []SideEffect
		triage  *TriageMetadata
		want    Priority
	}{
		{"no triage, mild", mild, nil, PriorityLow},
		{"no triage, moderate", moderate, nil, PriorityMedium},
		{"no triage, severe", severe, nil, PriorityHigh},
		{"no triage, life-threatening", lifeThreatening, nil, PriorityHigh},
		{"urgent triage overrides mild", mild, triage(UrgencyUrgent), PriorityHigh},
		{"soon triage lifts mild", mild, triage(UrgencySoon), PriorityMedium},
		{"routine triage keeps mild low", mild, triage(UrgencyRoutine), PriorityLow},
		{"severe wins over routine triage", severe, triage(UrgencyRoutine), PriorityHigh},
		{"soon triage does not demote severe", severe, triage(UrgencySoon), PriorityHigh},
		{"moderate with routine triage", moderate, triage(UrgencyRoutine), PriorityMedium},
		{"no effects, urgent triage", nil, triage(UrgencyUrgent), PriorityHigh},
		{"no effects, no triage", nil, nil, PriorityLow},
		{"mixed effects take the worst", append(append([]SideEffect{}, mild...), severe...), nil, PriorityHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DerivePriority(tc.effects, tc.triage); got != tc.want {
				t.Errorf("DerivePriority() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDerivePriority_Deterministic(t *testing.T) {
	effects := []SideEffect{{Effect: "rash", Severity: SeverityModerate}}
	tr := &TriageMetadata{PatientGuidance: PatientGuidance{UrgencyLevel: UrgencySoon}}

	first := DerivePriority(effects, tr)
	for i := 0; i < 5; i++ {
		if got := DerivePriority(effects, tr); got != first {
			t.Fatalf("priority derivation is not deterministic: %q != %q", got, first)
		}
	}
}
