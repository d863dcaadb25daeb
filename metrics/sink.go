package metrics

import "time"

// Labels metric label set
type Labels map[string]string

// Sink counters and histograms, injected into every service
type Sink interface {
	IncCounter(name string, labels Labels)
	ObserveDuration(name string, d time.Duration, labels Labels)
}

// Metric names
const (
	EligibilityCreated  = "eligibility_created_total"  // category, guest
	EligibilityConsumed = "eligibility_consumed_total" // result
	CatalogReservations = "catalog_reservations_total" // category, result
	CatalogReleases     = "catalog_releases_total"     // reason
	MintOperations      = "mint_operations_total"      // status
	ForgeOperations     = "forge_operations_total"     // type, status
	ForgeValidation     = "forge_validation_total"     // rule
	LedgerSubmissions   = "ledger_submissions_total"   // kind, result
	LedgerSubmitLatency = "ledger_submit_seconds"      // kind
	ForgeDuration       = "forge_duration_seconds"     // type, status
)

// Nop discards everything
type Nop struct{}

func (Nop) IncCounter(string, Labels)                     {}
func (Nop) ObserveDuration(string, time.Duration, Labels) {}

// OrNop s, or Nop when s is nil
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}
