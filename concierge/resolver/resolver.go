// Package resolver turns loose search criteria into exactly one customer
// identity.
package resolver

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
)

// maxCandidateRecords is deliberately 2: enough to distinguish "exactly one
// match" from "more than one" without pulling a full page.
const maxCandidateRecords = 2

var _ contractx.CustomerResolver = (*Resolver)(nil)

type Resolver struct {
	directory contractx.CustomerDirectory
}

func New(directory contractx.CustomerDirectory) (*Resolver, error) {
	if directory == nil {
		return nil, errors.New("customer directory is required")
	}
	return &Resolver{directory: directory}, nil
}

// Resolve validates the criteria, queries the directory and applies a strict
// decision policy: zero matches is not-found, one match wins, and two or
// more is an ambiguity failure rather than a guess.
func (r *Resolver) Resolve(ctx context.Context, criteria contractx.SearchCriteria) (contractx.CustomerIdentity, error) {
	normalized := criteria.Normalized()
	if normalized.IsEmpty() {
		return contractx.CustomerIdentity{}, fmt.Errorf(
			"%w: provide a tax id, trade name or city", contractx.ErrInvalidCriteria)
	}

	records, err := r.directory.Search(ctx, normalized, maxCandidateRecords)
	if err != nil {
		return contractx.CustomerIdentity{}, fmt.Errorf("resolve customer: %w", err)
	}

	switch len(records) {
	case 0:
		return contractx.CustomerIdentity{}, contractx.ErrCustomerNotFound
	case 1:
		return records[0].Identity(), nil
	default:
		return contractx.CustomerIdentity{}, fmt.Errorf(
			"%w: %d records matched", contractx.ErrAmbiguousMatch, len(records))
	}
}
