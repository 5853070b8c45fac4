// Package orders lists a customer's sales orders from Omie.
package orders

import (
	"context"
	"encoding/json"
	"fmt"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
	omiex "github.com/example/omie-order-concierge/concierge/omie"
)

const (
	endpointPath = "/produtos/pedido/"
	callName     = "ListarPedidos"
)

var _ contractx.OrderSource = (*Client)(nil)

type Client struct {
	api *omiex.Client
}

func New(api *omiex.Client) *Client {
	return &Client{api: api}
}

type listOrdersParam struct {
	Page           int    `json:"pagina"`
	RecordsPerPage int    `json:"registros_por_pagina"`
	APIImportsOnly string `json:"apenas_importado_api"`
	CustomerFilter int64  `json:"filtrar_por_cliente"`
}

type listOrdersPage struct {
	Orders []contractx.SalesOrderDocument `json:"pedido_venda_produto"`
}

// ListOrders returns up to maxRecords orders for the customer, in whatever
// order the API supplies them. A customer with no orders yields an empty
// slice, not an error.
func (c *Client) ListOrders(ctx context.Context, customerID int64, maxRecords int) ([]contractx.SalesOrderDocument, error) {
	raw, err := c.api.Call(ctx, endpointPath, callName, listOrdersParam{
		Page:           1,
		RecordsPerPage: maxRecords,
		APIImportsOnly: "N",
		CustomerFilter: customerID,
	})
	if err != nil {
		return nil, err
	}

	var page listOrdersPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &contractx.UpstreamError{
			Source:  "omie/" + callName,
			Message: fmt.Sprintf("decode order page: %v", err),
		}
	}

	return page.Orders, nil
}
