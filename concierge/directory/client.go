// Package directory looks customers up in the Omie general registry.
package directory

import (
	"context"
	"encoding/json"
	"fmt"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
	omiex "github.com/example/omie-order-concierge/concierge/omie"
)

const (
	endpointPath = "/geral/clientes/"
	callName     = "ListarClientes"
)

var _ contractx.CustomerDirectory = (*Client)(nil)

type Client struct {
	api *omiex.Client
}

func New(api *omiex.Client) *Client {
	return &Client{api: api}
}

type listClientsParam struct {
	Page           int            `json:"pagina"`
	RecordsPerPage int            `json:"registros_por_pagina"`
	APIImportsOnly string         `json:"apenas_importado_api"`
	Filter         customerFilter `json:"clientesFiltro"`
}

type customerFilter struct {
	TaxID     string `json:"cnpj_cpf,omitempty"`
	TradeName string `json:"nome_fantasia,omitempty"`
	City      string `json:"cidade,omitempty"`
}

type listClientsPage struct {
	Records []contractx.CustomerRecord `json:"clientes_cadastro"`
}

// Search requests the first page of customers matching the non-empty filter
// fields, capped at maxRecords.
func (c *Client) Search(ctx context.Context, filter contractx.SearchCriteria, maxRecords int) ([]contractx.CustomerRecord, error) {
	raw, err := c.api.Call(ctx, endpointPath, callName, listClientsParam{
		Page:           1,
		RecordsPerPage: maxRecords,
		APIImportsOnly: "N",
		Filter: customerFilter{
			TaxID:     filter.TaxID,
			TradeName: filter.TradeName,
			City:      filter.City,
		},
	})
	if err != nil {
		return nil, err
	}

	var page listClientsPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &contractx.UpstreamError{
			Source:  "omie/" + callName,
			Message: fmt.Sprintf("decode customer page: %v", err),
		}
	}

	return page.Records, nil
}
