package persistence

import "strings"

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting
// to DESC for invalid or empty input.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// columns, falling back to defaultField for anything not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// CircleSortFields contains allowed sort fields for circles
var CircleSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
	"start_date": true,
}

// CreditEventSortFields contains allowed sort fields for credit events
var CreditEventSortFields = map[string]bool{
	"created_at":    true,
	"event_type":    true,
	"points_change": true,
}
