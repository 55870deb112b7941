package report

import (
	"sort"
	"strings"
	"time"
)

// DashboardStats is the set of counters behind the overview dashboard.
// Approved counts reviewed plus confirmed reports; Severe counts reports with
// at least one side effect graded exactly severe; ThisWeek counts reports
// created in the trailing seven days.
type DashboardStats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	Approved     int `json:"approved"`
	Rejected     int `json:"rejected"`
	Severe       int `json:"severe"`
	HighPriority int `json:"highPriority"`
	ThisWeek     int `json:"thisWeek"`
}

// ComputeDashboardStats derives the dashboard counters from a snapshot of
// reports. now anchors the trailing-week window.
func ComputeDashboardStats(reports []*Report, now time.Time) DashboardStats {
	stats := DashboardStats{Total: len(reports)}
	weekAgo := now.Add(-7 * 24 * time.Hour)
	for _, rep := range reports {
		switch rep.Status {
		case StatusPending:
			stats.Pending++
		case StatusReviewed, StatusConfirmed:
			stats.Approved++
		case StatusRejected:
			stats.Rejected++
		}
		if rep.HasSeverity(SeveritySevere) {
			stats.Severe++
		}
		if rep.Priority == PriorityHigh {
			stats.HighPriority++
		}
		if rep.CreatedAt.After(weekAgo) {
			stats.ThisWeek++
		}
	}
	return stats
}

// SortField selects the key for listing order.
type SortField string

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	SortByDate     SortField = "date"
	SortBySeverity SortField = "severity"

	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Query is an in-memory filter/search/sort over a report snapshot.
type Query struct {
	Status    Status
	Search    string
	SortBy    SortField
	SortOrder SortOrder
}

// FilterAndSort narrows reports by status and free-text search, then orders
// them. An empty status or StatusAll matches every report. Sorting is stable
// so equal keys keep their incoming order. Defaults are date descending
// (newest first).
func FilterAndSort(reports []*Report, q Query) []*Report {
	statusFilter := q.Status
	if statusFilter == StatusAll {
		statusFilter = ""
	}
	out := make([]*Report, 0, len(reports))
	for _, rep := range reports {
		if statusFilter != "" && rep.Status != statusFilter {
			continue
		}
		if q.Search != "" && !matchesSearch(rep, q.Search) {
			continue
		}
		out = append(out, rep)
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = SortByDate
	}
	order := q.SortOrder
	if order == "" {
		order = OrderDesc
	}

	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		switch sortBy {
		case SortBySeverity:
			ri, rj := out[i].MaxSeverity().Rank(), out[j].MaxSeverity().Rank()
			if ri == rj {
				return false
			}
			less = ri < rj
		default:
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return false
			}
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if order == OrderDesc {
			return !less
		}
		return less
	})
	return out
}

// matchesSearch does a case-insensitive substring match over patient name,
// medicine name and side-effect descriptions.
func matchesSearch(rep *Report, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(rep.PatientName), term) {
		return true
	}
	if strings.Contains(strings.ToLower(rep.Medicine.Name), term) {
		return true
	}
	for _, se := range rep.SideEffects {
		if strings.Contains(strings.ToLower(se.Effect), term) {
			return true
		}
	}
	return false
}

// Page is one page of an in-memory listing.
type Page struct {
	Items      []*Report `json:"items"`
	TotalItems int       `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}

// Paginate slices items into 1-indexed pages. Pages past the end come back
// empty rather than erroring, so stale page links degrade gracefully.
func Paginate(items []*Report, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= total {
		return Page{Items: []*Report{}, TotalItems: total, TotalPages: totalPages}
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return Page{Items: items[start:end], TotalItems: total, TotalPages: totalPages}
}
