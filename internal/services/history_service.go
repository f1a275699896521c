package services

import (
	"fmt"

	"ayuta/internal/events"
	"ayuta/internal/models"
	"ayuta/internal/pricing"
)

const (
	msgOrdersSignIn   = "Sign in to view your orders."
	msgNoOrders       = "No orders yet for this email."
	msgResultsSignIn  = "Sign in to view your results."
	msgNoResults      = "No results available for this email yet."
	signedInAsPattern = "Signed in as %s."
)

// OrderCard is one order on the orders page.
type OrderCard struct {
	ID      string   `json:"id"`
	Heading string   `json:"heading"`
	Meta    string   `json:"meta"`
	Tags    []string `json:"tags"`
}

// OrdersView is the orders page.
type OrdersView struct {
	Status string      `json:"status"`
	Orders []OrderCard `json:"orders"`
}

// ResultCard is one result entry on the results page.
type ResultCard struct {
	OrderID string             `json:"orderId"`
	Heading string             `json:"heading"`
	Meta    string             `json:"meta"`
	Tags    []string           `json:"tags"`
	Rows    []models.Biomarker `json:"rows"`
}

// ResultsView is the results page.
type ResultsView struct {
	Status  string       `json:"status"`
	Results []ResultCard `json:"results"`
}

// HistoryService renders the orders and results pages for the signed-in email.
type HistoryService struct {
	orders  *page[OrdersView]
	results *page[ResultsView]
}

func newHistoryService(t *Tab) *HistoryService {
	return &HistoryService{
		orders:  newPage(t.bus, t.state, renderOrders, events.StateUpdated, events.AuthUpdated),
		results: newPage(t.bus, t.state, renderResults, events.StateUpdated, events.AuthUpdated),
	}
}

// Orders returns the last render of the orders page.
func (s *HistoryService) Orders() OrdersView {
	return s.orders.view()
}

// Results returns the last render of the results page.
func (s *HistoryService) Results() ResultsView {
	return s.results.view()
}

func renderOrders(state models.State) OrdersView {
	view := OrdersView{Orders: []OrderCard{}}
	email := state.SessionEmail()
	if email == "" {
		view.Status = msgOrdersSignIn
		return view
	}
	for _, o := range state.Orders {
		if o.Email != email {
			continue
		}
		tags := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			tags = append(tags, item.Name)
		}
		view.Orders = append(view.Orders, OrderCard{
			ID:      o.ID,
			Heading: "Order " + o.ID,
			Meta:    fmt.Sprintf("%s | %s | %s", pricing.FormatDate(o.CreatedAt), pricing.FormatCurrency(o.Total), o.Status),
			Tags:    tags,
		})
	}
	if len(view.Orders) == 0 {
		view.Status = msgNoOrders
		return view
	}
	view.Status = fmt.Sprintf(signedInAsPattern, email)
	return view
}

func renderResults(state models.State) ResultsView {
	view := ResultsView{Results: []ResultCard{}}
	email := state.SessionEmail()
	if email == "" {
		view.Status = msgResultsSignIn
		return view
	}
	for _, r := range state.Results {
		if r.Email != email {
			continue
		}
		tags := make([]string, 0, len(r.Results))
		for _, b := range r.Results {
			tags = append(tags, b.Name+": "+b.Status)
		}
		view.Results = append(view.Results, ResultCard{
			OrderID: r.OrderID,
			Heading: "Results for " + r.OrderID,
			Meta:    fmt.Sprintf("%s | %s", pricing.FormatDate(r.CreatedAt), r.Status),
			Tags:    tags,
			Rows:    r.Clone().Results,
		})
	}
	if len(view.Results) == 0 {
		view.Status = msgNoResults
		return view
	}
	view.Status = fmt.Sprintf(signedInAsPattern, email)
	return view
}
