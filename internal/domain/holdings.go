package domain

// HoldingsRecord is one normalized line item from a holdings table.
// Produced by the normalization package; read-only afterwards.
type HoldingsRecord struct {
	Name             string   // security or fund name
	Ticker           *string  // nil when the source row had no usable ticker
	CUSIP            *string  // 9-character identifier, nil when absent
	Value            float64  // always >= 0 after normalization
	Percentage       float64  // portfolio weight, 0 when unknown
	Category         *string  // asset category from the source, nil when absent
	ParentFundName   *string  // set by expansion for underlying securities
	ParentFundTicker *string  // set by expansion for underlying securities
}

// HoldingsSet is an ordered sequence of records sharing one identifying
// key (a fund ticker or an institution key) and one retrieval time.
type HoldingsSet struct {
	Key         string // fund ticker or institution key
	RetrievedAt int64  // Unix timestamp in milliseconds
	Records     []HoldingsRecord
}

// Empty reports whether the set has no records.
func (s HoldingsSet) Empty() bool {
	return len(s.Records) == 0
}

// TotalValue sums the value of all records in the set.
func (s HoldingsSet) TotalValue() float64 {
	var total float64
	for _, r := range s.Records {
		total += r.Value
	}
	return total
}
