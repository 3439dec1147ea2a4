package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountOutcome is the per-account result of an optional fetch. Skipped is
// set when the account could not serve the fetch, for example when the account
// has no premium support plan.
type AccountOutcome[T any] struct {
	Account string
	Items   []T
	Skipped string
}

func (o AccountOutcome[T]) IsSkipped() bool {
	return o.Skipped != ""
}

// Flatten collects the items of every outcome that was not skipped.
func Flatten[T any](outcomes []AccountOutcome[T]) []T {
	var items []T
	for _, o := range outcomes {
		if o.IsSkipped() {
			continue
		}
		items = append(items, o.Items...)
	}
	return items
}

type AdvisorResult struct {
	Account      string
	CheckName    string
	Category     string
	Region       string
	ResourceType string
	ResourceID   string
	Description  string
	Saving       string
	Status       string
}

type AccountSpend struct {
	Account  string
	Start    time.Time
	End      time.Time
	Amount   decimal.Decimal
	Currency string
}
