// Package history retrieves and normalizes a customer's recent orders.
package history

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
)

const (
	// orderPageSize is intentionally much larger than the number of orders
	// kept, to tolerate an upstream page whose ordering is not guaranteed
	// to be chronological.
	orderPageSize = 50

	// recentOrderCount caps the history at the head of the page as the
	// source returned it. No client-side re-sorting is performed; the
	// ordering assumption lives on the OrderSource contract.
	recentOrderCount = 3
)

var _ contractx.OrderRetriever = (*Retriever)(nil)

type Retriever struct {
	source contractx.OrderSource
}

func New(source contractx.OrderSource) (*Retriever, error) {
	if source == nil {
		return nil, errors.New("order source is required")
	}
	return &Retriever{source: source}, nil
}

// FetchRecentOrders returns the customer's most recent orders, normalized to
// a stable shape. A customer with no orders yields a successful, empty
// history.
func (r *Retriever) FetchRecentOrders(ctx context.Context, customer contractx.CustomerIdentity) (contractx.OrderHistory, error) {
	docs, err := r.source.ListOrders(ctx, customer.ID, orderPageSize)
	if err != nil {
		return contractx.OrderHistory{}, fmt.Errorf("fetch orders: %w", err)
	}

	if len(docs) > recentOrderCount {
		docs = docs[:recentOrderCount]
	}

	records := make([]contractx.OrderRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, normalize(doc))
	}

	return contractx.OrderHistory{
		Customer: customer,
		Orders:   records,
	}, nil
}

// normalize flattens one upstream document. Optional fields the source
// omitted stay at their zero values so every record has the same shape.
func normalize(doc contractx.SalesOrderDocument) contractx.OrderRecord {
	items := make([]contractx.LineItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, contractx.LineItem{
			Description: it.Product.Description,
			Quantity:    it.Product.Quantity,
			UnitValue:   it.Product.UnitValue,
			LineTotal:   it.Product.TotalValue,
		})
	}

	return contractx.OrderRecord{
		Number:       doc.Header.Number,
		ForecastDate: doc.Header.ForecastDate,
		Stage:        doc.Header.Stage,
		Total:        doc.Totals.TotalValue,
		Items:        items,
	}
}
