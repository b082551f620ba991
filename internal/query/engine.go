// Package query filters document snapshots with composable predicates.
//
// All functions are pure: they never mutate the snapshot or re-sort by
// relevance. Search results keep the snapshot's insertion order.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/metrodocs/kiroku/internal/models"
)

// Lookback windows for the date-range filter, measured from query time.
var lookbackWindows = map[string]time.Duration{
	models.DateRangeLastWeek:    7 * 24 * time.Hour,
	models.DateRangeLastMonth:   30 * 24 * time.Hour,
	models.DateRangeLastQuarter: 90 * 24 * time.Hour,
	models.DateRangeLastYear:    365 * 24 * time.Hour,
}

// Search applies the query's text predicate and filters over the snapshot.
// The text predicate is a case-insensitive substring match against title,
// summary, AI annotation summary, and tags (OR across fields); filters combine
// with AND. An empty query returns the snapshot unchanged.
func Search(snapshot []*models.Document, q *models.SearchQuery) []*models.Document {
	return searchAt(time.Now(), snapshot, q)
}

func searchAt(now time.Time, snapshot []*models.Document, q *models.SearchQuery) []*models.Document {
	if q == nil || q.IsEmpty() {
		return snapshot
	}
	term := strings.ToLower(q.Query)
	cutoff, dateActive := dateCutoff(now, q.Filters.DateRange)

	out := make([]*models.Document, 0, len(snapshot))
	for _, doc := range snapshot {
		if term != "" && !matchesText(doc, term) {
			continue
		}
		if d := q.Filters.Department; d != "" && doc.Department != d {
			continue
		}
		if ft := q.Filters.DocumentType; ft != "" && doc.FileType != ft {
			continue
		}
		if flag := q.Filters.ComplianceFlag; flag != "" && !contains(doc.ComplianceFlags, flag) {
			continue
		}
		if dateActive && doc.UploadDate.Before(cutoff) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

// dateCutoff maps a date-range key to its inclusive lower bound. Unknown keys
// disable date filtering rather than failing.
func dateCutoff(now time.Time, key string) (time.Time, bool) {
	window, ok := lookbackWindows[key]
	if !ok {
		return time.Time{}, false
	}
	return now.Add(-window), true
}

func matchesText(doc *models.Document, term string) bool {
	if strings.Contains(strings.ToLower(doc.Title), term) ||
		strings.Contains(strings.ToLower(doc.Summary), term) ||
		strings.Contains(strings.ToLower(doc.AIAnnotationSummary), term) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Recent returns up to limit documents sorted descending by upload date.
// This is the one view that re-orders; the input snapshot is left untouched.
func Recent(snapshot []*models.Document, limit int) []*models.Document {
	out := append([]*models.Document(nil), snapshot...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadDate.After(out[j].UploadDate)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// ByDepartment returns documents owned by the given department.
func ByDepartment(snapshot []*models.Document, department string) []*models.Document {
	out := make([]*models.Document, 0)
	for _, doc := range snapshot {
		if doc.Department == department {
			out = append(out, doc)
		}
	}
	return out
}

// CrossDepartment returns documents whose derived relevance set includes the
// given department, i.e. documents another department should be aware of.
func CrossDepartment(snapshot []*models.Document, department string) []*models.Document {
	out := make([]*models.Document, 0)
	for _, doc := range snapshot {
		if contains(doc.CrossDepartmentRelevance, department) {
			out = append(out, doc)
		}
	}
	return out
}

// WithCompliance returns documents carrying at least one compliance flag.
func WithCompliance(snapshot []*models.Document) []*models.Document {
	out := make([]*models.Document, 0)
	for _, doc := range snapshot {
		if len(doc.ComplianceFlags) > 0 {
			out = append(out, doc)
		}
	}
	return out
}
