package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func mkReport(status Status, priority Priority, created time.Time, effects ...SideEffect) *Report {
	if len(effects) == 0 {
		effects = []SideEffect{{Effect: "headache", Severity: SeverityMild}}
	}
	return &Report{
		ID:          uuid.New(),
		ReporterID:  uuid.New(),
		PatientName: "Jane Roe",
		Medicine:    Medicine{Name: "Ibuprofen"},
		SideEffects: effects,
		Status:      status,
		Priority:    priority,
		CreatedAt:   created,
	}
}

func TestComputeDashboardStats(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	old := now.Add(-30 * 24 * time.Hour)

	reports := []*Report{
		mkReport(StatusPending, PriorityLow, recent),
		mkReport(StatusPending, PriorityHigh, old, SideEffect{Effect: "anaphylaxis", Severity: SeveritySevere}),
		mkReport(StatusReviewed, PriorityMedium, old),
		mkReport(StatusConfirmed, PriorityHigh, recent, SideEffect{Effect: "arrest", Severity: SeverityLifeThreatening}),
		mkReport(StatusRejected, PriorityLow, old),
		mkReport(StatusArchived, PriorityLow, old),
	}

	stats := ComputeDashboardStats(reports, now)

	if stats.Total != 6 {
		t.Errorf("Total = %d, want 6", stats.Total)
	}
	if stats.Pending != 2 {
		t.Errorf("Pending = %d, want 2", stats.Pending)
	}
	if stats.Approved != 2 {
		t.Errorf("Approved = %d, want 2 (reviewed + confirmed)", stats.Approved)
	}
	if stats.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", stats.Rejected)
	}
	if stats.Severe != 1 {
		t.Errorf("Severe = %d, want 1 (exactly severe)", stats.Severe)
	}
	if stats.HighPriority != 2 {
		t.Errorf("HighPriority = %d, want 2", stats.HighPriority)
	}
	if stats.ThisWeek != 2 {
		t.Errorf("ThisWeek = %d, want 2", stats.ThisWeek)
	}
}

func TestComputeDashboardStats_SevereIsExactGrade(t *testing.T) {
	now := time.Now().UTC()
	reports := []*Report{
		mkReport(StatusPending, PriorityHigh, now, SideEffect{Effect: "arrest", Severity: SeverityLifeThreatening}),
		mkReport(StatusPending, PriorityLow, now, SideEffect{Effect: "rash", Severity: SeverityModerate}),
	}

	stats := ComputeDashboardStats(reports, now)
	if stats.Severe != 0 {
		t.Errorf("Severe = %d, want 0: only side effects graded exactly severe count", stats.Severe)
	}
}

func TestComputeDashboardStats_Empty(t *testing.T) {
	stats := ComputeDashboardStats(nil, time.Now().UTC())
	if stats != (DashboardStats{}) {
		t.Errorf("expected zero stats for no reports, got %+v", stats)
	}
}

func TestFilterAndSort_StatusFilter(t *testing.T) {
	now := time.Now().UTC()
	reports := []*Report{
		mkReport(StatusPending, PriorityLow, now),
		mkReport(StatusReviewed, PriorityLow, now),
		mkReport(StatusPending, PriorityLow, now),
	}

	out := FilterAndSort(reports, Query{Status: StatusPending})
	if len(out) != 2 {
		t.Fatalf("expected 2 pending reports, got %d", len(out))
	}
	for _, rep := range out {
		if rep.Status != StatusPending {
			t.Errorf("unexpected status %q in filtered output", rep.Status)
		}
	}
}

func TestFilterAndSort_TotalMatchesUnfiltered(t *testing.T) {
	now := time.Now().UTC()
	reports := []*Report{
		mkReport(StatusPending, PriorityLow, now),
		mkReport(StatusReviewed, PriorityLow, now.Add(time.Hour)),
		mkReport(StatusArchived, PriorityLow, now.Add(2*time.Hour)),
	}
	if got := len(FilterAndSort(reports, Query{})); got != len(reports) {
		t.Errorf("empty query should keep all reports, got %d of %d", got, len(reports))
	}
}

func TestFilterAndSort_AllStatusMeansNoFilter(t *testing.T) {
	now := time.Now().UTC()
	reports := []*Report{
		mkReport(StatusPending, PriorityLow, now),
		mkReport(StatusReviewed, PriorityLow, now.Add(time.Hour)),
	}
	if got := len(FilterAndSort(reports, Query{Status: StatusAll})); got != len(reports) {
		t.Errorf("status %q should keep all reports, got %d of %d", StatusAll, got, len(reports))
	}
}

func TestFilterAndSort_Search(t *testing.T) {
	now := time.Now().UTC()
	byMedicine := mkReport(StatusPending, PriorityLow, now)
	byMedicine.Medicine.Name = "Aspirin"
	byPatient := mkReport(StatusPending, PriorityLow, now)
	byPatient.PatientName = "Casper Ashworth"
	byEffect := mkReport(StatusPending, PriorityLow, now, SideEffect{Effect: "ASPIRIN-induced asthma", Severity: SeverityModerate})
	miss := mkReport(StatusPending, PriorityLow, now)

	out := FilterAndSort([]*Report{byMedicine, byPatient, byEffect, miss}, Query{Search: "aspirin"})
	if len(out) != 2 {
		t.Fatalf("expected 2 matches for %q, got %d", "aspirin", len(out))
	}
	for _, rep := range out {
		if rep.ID == miss.ID || rep.ID == byPatient.ID {
			t.Errorf("report %s should not match", rep.ID)
		}
	}
}

func TestFilterAndSort_DateOrder(t *testing.T) {
	base := time.Now().UTC()
	oldest := mkReport(StatusPending, PriorityLow, base.Add(-2*time.Hour))
	middle := mkReport(StatusPending, PriorityLow, base.Add(-time.Hour))
	newest := mkReport(StatusPending, PriorityLow, base)
	reports := []*Report{middle, oldest, newest}

	out := FilterAndSort(reports, Query{})
	if out[0].ID != newest.ID || out[2].ID != oldest.ID {
		t.Error("default order should be newest first")
	}

	out = FilterAndSort(reports, Query{SortBy: SortByDate, SortOrder: OrderAsc})
	if out[0].ID != oldest.ID || out[2].ID != newest.ID {
		t.Error("ascending date order should be oldest first")
	}
}

func TestFilterAndSort_SeverityOrderIsStable(t *testing.T) {
	now := time.Now().UTC()
	a := mkReport(StatusPending, PriorityLow, now, SideEffect{Effect: "a", Severity: SeverityMild})
	b := mkReport(StatusPending, PriorityLow, now, SideEffect{Effect: "b", Severity: SeverityMild})
	c := mkReport(StatusPending, PriorityHigh, now, SideEffect{Effect: "c", Severity: SeveritySevere})
	reports := []*Report{a, b, c}

	out := FilterAndSort(reports, Query{SortBy: SortBySeverity, SortOrder: OrderDesc})
	if out[0].ID != c.ID {
		t.Error("severe report should sort first on severity desc")
	}
	if out[1].ID != a.ID || out[2].ID != b.ID {
		t.Error("equal-severity reports must keep their incoming order")
	}
}

func TestPaginate(t *testing.T) {
	now := time.Now().UTC()
	var items []*Report
	for i := 0; i < 25; i++ {
		items = append(items, mkReport(StatusPending, PriorityLow, now))
	}

	page := Paginate(items, 1, 10)
	if len(page.Items) != 10 || page.TotalItems != 25 || page.TotalPages != 3 {
		t.Errorf("page 1: got %d items, total %d, pages %d", len(page.Items), page.TotalItems, page.TotalPages)
	}

	page = Paginate(items, 3, 10)
	if len(page.Items) != 5 {
		t.Errorf("last page should have the remainder, got %d items", len(page.Items))
	}

	page = Paginate(items, 4, 10)
	if len(page.Items) != 0 || page.TotalItems != 25 || page.TotalPages != 3 {
		t.Errorf("out-of-range page should be empty with totals intact, got %+v", page)
	}

	page = Paginate(items, 0, 0)
	if len(page.Items) != 20 {
		t.Errorf("defaults should apply for non-positive parameters, got %d items", len(page.Items))
	}
}

func TestPaginate_RoundTrip(t *testing.T) {
	now := time.Now().UTC()
	var items []*Report
	for i := 0; i < 17; i++ {
		items = append(items, mkReport(StatusPending, PriorityLow, now))
	}

	seen := make(map[uuid.UUID]bool)
	for p := 1; ; p++ {
		page := Paginate(items, p, 5)
		if len(page.Items) == 0 {
			break
		}
		for _, rep := range page.Items {
			if seen[rep.ID] {
				t.Fatalf("report %s appeared on more than one page", rep.ID)
			}
			seen[rep.ID] = true
		}
	}
	if len(seen) != len(items) {
		t.Errorf("pages covered %d of %d items", len(seen), len(items))
	}
}
