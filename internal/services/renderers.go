package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ayuta/internal/events"
	"ayuta/internal/models"
	"ayuta/internal/pricing"
)

const (
	homePreviewRows = 3
	defaultInitial  = "U"
	msgHomeEmpty    = "No items selected yet. Start an order to build your kit."
	msgNotSignedIn  = "Not signed in yet."
	morePattern     = "+%d more in your basket"
)

// NavView is the navigation bar.
type NavView struct {
	Authenticated  bool   `json:"authenticated"`
	ProfileInitial string `json:"profileInitial"`
	LoginVisible   bool   `json:"loginVisible"`
	UserMenuHidden bool   `json:"userMenuHidden"`
}

// NavRenderer re-renders the navigation bar on auth changes only.
type NavRenderer struct {
	page *page[NavView]
}

func newNavRenderer(bus *events.Bus, initial models.State) *NavRenderer {
	return &NavRenderer{page: newPage(bus, initial, renderNav, events.AuthUpdated)}
}

// View returns the last render.
func (r *NavRenderer) View() NavView {
	return r.page.view()
}

// Renders returns how many times the nav has been rendered.
func (r *NavRenderer) Renders() int {
	return r.page.count()
}

func renderNav(state models.State) NavView {
	signedIn := state.SessionEmail() != ""
	source := state.SessionEmail()
	if state.User != nil && state.User.Name != "" {
		source = state.User.Name
	}
	return NavView{
		Authenticated:  signedIn,
		ProfileInitial: initial(source),
		LoginVisible:   !signedIn,
		UserMenuHidden: !signedIn,
	}
}

func initial(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultInitial
	}
	r, _ := utf8.DecodeRuneInString(v)
	return string(unicode.ToUpper(r))
}

// HomeView is the home page basket summary.
type HomeView struct {
	Basket        []BasketRow `json:"basket"`
	EmptyMessage  string      `json:"emptyMessage,omitempty"`
	More          string      `json:"more,omitempty"`
	Count         int         `json:"count"`
	TotalLabel    string      `json:"totalLabel"`
	SessionStatus string      `json:"sessionStatus"`
}

// HomeRenderer re-renders the home summary on every signal.
type HomeRenderer struct {
	page *page[HomeView]
}

func newHomeRenderer(bus *events.Bus, initial models.State, cfg TabConfig) *HomeRenderer {
	render := func(state models.State) HomeView {
		return renderHome(state, cfg)
	}
	return &HomeRenderer{page: newPage(bus, initial, render, events.StateUpdated, events.AuthUpdated)}
}

// View returns the last render.
func (r *HomeRenderer) View() HomeView {
	return r.page.view()
}

// Renders returns how many times the summary has been rendered.
func (r *HomeRenderer) Renders() int {
	return r.page.count()
}

func renderHome(state models.State, cfg TabConfig) HomeView {
	totals := pricing.GetTotals(state.Cart, cfg.TaxRate, cfg.ShippingCost)
	view := HomeView{
		Basket:        basketRows(state.Cart[:min(len(state.Cart), homePreviewRows)]),
		Count:         len(state.Cart),
		TotalLabel:    pricing.FormatCurrency(totals.Total),
		SessionStatus: msgNotSignedIn,
	}
	if len(state.Cart) == 0 {
		view.EmptyMessage = msgHomeEmpty
	}
	if extra := len(state.Cart) - homePreviewRows; extra > 0 {
		view.More = fmt.Sprintf(morePattern, extra)
	}
	if email := state.SessionEmail(); email != "" {
		view.SessionStatus = fmt.Sprintf(signedInAsPattern, email)
	}
	return view
}
