package contract

import "strings"

// SearchCriteria is the set of optional identifying fields used to look up a
// customer in the directory. At least one field must be non-empty before any
// network call is made.
type SearchCriteria struct {
	TaxID     string `json:"tax_id,omitempty"`
	TradeName string `json:"trade_name,omitempty"`
	City      string `json:"city,omitempty"`
}

// Normalized returns a copy with surrounding whitespace removed and the tax
// id reduced to digits only, matching how the directory stores CNPJ/CPF.
func (c SearchCriteria) Normalized() SearchCriteria {
	return SearchCriteria{
		TaxID:     digitsOnly(c.TaxID),
		TradeName: strings.TrimSpace(c.TradeName),
		City:      strings.TrimSpace(c.City),
	}
}

func (c SearchCriteria) IsEmpty() bool {
	n := c.Normalized()
	return n.TaxID == "" && n.TradeName == "" && n.City == ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CustomerIdentity is a resolved customer: the directory identifier plus the
// display attributes it was resolved from. It is owned by the pipeline
// invocation that produced it and never cached across invocations.
type CustomerIdentity struct {
	ID        int64  `json:"id"`
	TaxID     string `json:"tax_id,omitempty"`
	TradeName string `json:"trade_name,omitempty"`
	City      string `json:"city,omitempty"`
}

// CustomerRecord is the directory's wire shape for one customer entry.
type CustomerRecord struct {
	ID        int64  `json:"codigo_cliente_omie"`
	TaxID     string `json:"cnpj_cpf"`
	TradeName string `json:"nome_fantasia"`
	City      string `json:"cidade"`
}

// Identity converts a directory record into a CustomerIdentity.
func (r CustomerRecord) Identity() CustomerIdentity {
	return CustomerIdentity{
		ID:        r.ID,
		TaxID:     r.TaxID,
		TradeName: r.TradeName,
		City:      r.City,
	}
}

// SalesOrderDocument is the order source's wire shape for one sales order.
// Absent optional fields decode to their zero values, which downstream
// normalization keeps as explicit sentinels.
type SalesOrderDocument struct {
	Header OrderHeader `json:"cabecalho"`
	Items  []OrderItem `json:"det"`
	Totals OrderTotals `json:"total_pedido"`
}

type OrderHeader struct {
	Number       string `json:"numero_pedido"`
	ForecastDate string `json:"data_previsao"`
	Stage        string `json:"etapa"`
}

type OrderItem struct {
	Product OrderProduct `json:"produto"`
}

type OrderProduct struct {
	Description string  `json:"descricao"`
	Quantity    float64 `json:"quantidade"`
	UnitValue   float64 `json:"valor_unitario"`
	TotalValue  float64 `json:"valor_total"`
}

type OrderTotals struct {
	TotalValue float64 `json:"valor_total_pedido"`
}

// OrderRecord is the normalized shape of one sales order as exposed by this
// service. Line items keep the order they had in the source document.
type OrderRecord struct {
	Number       string     `json:"number"`
	ForecastDate string     `json:"forecast_date"`
	Stage        string     `json:"stage"`
	Total        float64    `json:"total"`
	Items        []LineItem `json:"items"`
}

type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitValue   float64 `json:"unit_value"`
	LineTotal   float64 `json:"line_total"`
}

// OrderHistory is the bounded list of a customer's most recent orders.
// An empty Orders slice is a valid outcome: the customer exists but has no
// orders on record.
type OrderHistory struct {
	Customer CustomerIdentity `json:"customer"`
	Orders   []OrderRecord    `json:"orders"`
}

// ExtractedCriteria is what the language model found in a free-text
// question: search criteria, the specific question being asked about the
// orders, and whether the question is about customer orders at all.
type ExtractedCriteria struct {
	Criteria         SearchCriteria `json:"criteria"`
	SpecificQuestion string         `json:"specific_question"`
	AboutOrders      bool           `json:"about_orders"`
}

// ModelRole selects per-role model overrides for the two language-model
// passes.
type ModelRole string

const (
	RoleExtractor ModelRole = "extractor"
	RoleComposer  ModelRole = "composer"
)
