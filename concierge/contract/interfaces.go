package contract

import "context"

// CustomerDirectory is the external registry of customer identities.
type CustomerDirectory interface {
	// Search returns at most maxRecords customers matching the non-empty
	// fields of the filter.
	Search(ctx context.Context, filter SearchCriteria, maxRecords int) ([]CustomerRecord, error)
}

// OrderSource lists a customer's sales orders.
//
// The upstream API does not document any ordering guarantee for the returned
// page; callers that treat the head of the list as "most recent" inherit
// that assumption (see history.Retriever).
type OrderSource interface {
	ListOrders(ctx context.Context, customerID int64, maxRecords int) ([]SalesOrderDocument, error)
}

// CustomerResolver turns raw criteria into exactly one customer identity or
// a typed failure.
type CustomerResolver interface {
	Resolve(ctx context.Context, criteria SearchCriteria) (CustomerIdentity, error)
}

// OrderRetriever turns a resolved identity into a bounded, normalized order
// history.
type OrderRetriever interface {
	FetchRecentOrders(ctx context.Context, customer CustomerIdentity) (OrderHistory, error)
}

// CriteriaExtractor interprets a free-text question into search criteria.
type CriteriaExtractor interface {
	Extract(ctx context.Context, question string) (ExtractedCriteria, error)
}

// AnswerComposer formulates a natural-language answer from retrieved orders.
type AnswerComposer interface {
	Compose(ctx context.Context, req ComposeRequest) (string, error)
}

// ComposeRequest carries everything the composer needs: the user's original
// question, the extractor's interpretation of it (may be empty on the direct
// path), and the retrieved history.
type ComposeRequest struct {
	Question         string
	SpecificQuestion string
	History          OrderHistory
}
