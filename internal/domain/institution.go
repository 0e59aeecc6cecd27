package domain

// Institution represents a 13F-filing institution.
// Corresponds to institutions table in PostgreSQL.
type Institution struct {
	ID            string
	Name          string
	ReportDate    int64 // Unix timestamp in milliseconds
	HoldingsCount int
	CreatedAt     int64 // record creation timestamp (ms)
}

// InstitutionKey builds the holdings-set key for an institution, kept
// disjoint from fund tickers so both can share one holdings store.
func InstitutionKey(institutionID string) string {
	return "inst:" + institutionID
}
