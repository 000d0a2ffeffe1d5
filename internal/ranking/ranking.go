// Package ranking builds read-only views over the candidate store: the full
// roster and the shortlist, in a configurable order.
package ranking

import (
	"fmt"

	"github.com/jobsai/shortlister/internal/candidate"
)

// Order selects how a view is sorted.
type Order string

const (
	// OrderInsertion keeps the store's ingestion order.
	OrderInsertion Order = "insertion"
	// OrderScore sorts by final score descending, ATS score breaking ties.
	OrderScore Order = "score"
)

// ParseOrder validates an order name from configuration.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case OrderInsertion, OrderScore:
		return Order(s), nil
	case "":
		return OrderInsertion, nil
	default:
		return "", fmt.Errorf("unknown ranking order %q (want insertion or score)", s)
	}
}

type View struct {
	store candidate.Store
	order Order
}

func NewView(store candidate.Store, order Order) *View {
	if order == "" {
		order = OrderInsertion
	}
	return &View{store: store, order: order}
}

// List returns every candidate, or only the shortlist when shortlistedOnly is
// set. The result reflects the scores current at call time; an empty store
// yields an empty collection, not an error.
func (v *View) List(shortlistedOnly bool) (*candidate.Candidates, error) {
	all, err := v.store.List()
	if err != nil {
		return nil, err
	}

	if shortlistedOnly {
		all = all.Shortlisted()
	}
	if v.order == OrderScore {
		all.SortByScore()
	}
	return all, nil
}

// Shortlist is shorthand for List(true).
func (v *View) Shortlist() (*candidate.Candidates, error) {
	return v.List(true)
}
