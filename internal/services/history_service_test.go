package services_test

import (
	"testing"

	"ayuta/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoCustomers = `[
	{"id":"AYU-2","email":"b@x.com","items":[{"id":"hba1c","name":"HbA1c","price":35}],"total":36.75,"status":"Paid","createdAt":"2025-03-06T09:00:00.000Z"},
	{"id":"AYU-1","email":"a@x.com","items":[{"id":"vitamin-d","name":"Vitamin D","price":29},{"id":"cortisol","name":"Cortisol","price":39}],"total":1234.5,"status":"Paid","createdAt":"2025-03-05T10:00:00.000Z"}
]`

func TestHistoryService_Orders(t *testing.T) {
	f := newFixtureWith(t, seedOrders(twoCustomers))

	view := f.tab.History.Orders()
	assert.Equal(t, "Sign in to view your orders.", view.Status)
	assert.Empty(t, view.Orders)

	_, err := f.tab.Account.Login(services.LoginRequest{Email: "a@x.com"})
	require.NoError(t, err)

	view = f.tab.History.Orders()
	assert.Equal(t, "Signed in as a@x.com.", view.Status)
	require.Len(t, view.Orders, 1)
	card := view.Orders[0]
	assert.Equal(t, "Order AYU-1", card.Heading)
	assert.Equal(t, "05 Mar 2025 | £1,234.50 | Paid", card.Meta)
	assert.Equal(t, []string{"Vitamin D", "Cortisol"}, card.Tags)
}

func TestHistoryService_Orders_NoneForEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.tab.Account.Register(services.ProfileRequest{Name: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "No orders yet for this email.", f.tab.History.Orders().Status)
	assert.Equal(t, "No results available for this email yet.", f.tab.History.Results().Status)
}

func TestHistoryService_ResultsFollowCheckout(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Sign in to view your results.", f.tab.History.Results().Status)

	_, err := f.tab.Account.Register(services.ProfileRequest{Name: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)
	_, err = f.tab.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)
	f.gateway.expectPayment("ada@x.com", 30.45, "succeeded")
	order, _, err := f.tab.Shop.Checkout(t.Context(), services.CheckoutRequest{Email: "ada@x.com"})
	require.NoError(t, err)

	view := f.tab.History.Results()
	assert.Equal(t, "Signed in as ada@x.com.", view.Status)
	require.Len(t, view.Results, 1)
	card := view.Results[0]
	assert.Equal(t, "Results for "+order.ID, card.Heading)
	assert.Equal(t, "05 Mar 2025 | Available", card.Meta)
	assert.Equal(t, []string{"Vitamin D: Optimal", "HbA1c: Optimal", "Lipid Panel: Low", "Cortisol: Optimal"}, card.Tags)
	assert.Len(t, f.tab.History.Orders().Orders, 1)
}
