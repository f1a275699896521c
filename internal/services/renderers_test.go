package services_test

import (
	"testing"

	"ayuta/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavRenderer(t *testing.T) {
	f := newFixture(t)
	nav := f.tab.Nav.View()
	assert.False(t, nav.Authenticated)
	assert.Equal(t, "U", nav.ProfileInitial)
	assert.True(t, nav.LoginVisible)

	_, err := f.tab.Account.Register(services.ProfileRequest{Name: "ada", Email: "zed@x.com"})
	require.NoError(t, err)
	nav = f.tab.Nav.View()
	assert.True(t, nav.Authenticated)
	assert.Equal(t, "A", nav.ProfileInitial)
	assert.False(t, nav.LoginVisible)
	assert.False(t, nav.UserMenuHidden)
}

func TestNavRenderer_IgnoresStateUpdates(t *testing.T) {
	f := newFixture(t)
	before := f.tab.Nav.Renders()

	_, err := f.tab.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)
	assert.Equal(t, before, f.tab.Nav.Renders())

	_, err = f.tab.Account.Logout()
	require.NoError(t, err)
	assert.Equal(t, before+1, f.tab.Nav.Renders())
}

func TestHomeRenderer(t *testing.T) {
	f := newFixture(t)
	home := f.tab.Home.View()
	assert.Equal(t, "No items selected yet. Start an order to build your kit.", home.EmptyMessage)
	assert.Equal(t, "Not signed in yet.", home.SessionStatus)
	assert.Equal(t, "£0.00", home.TotalLabel)

	for _, id := range []string{"vitamin-d", "hba1c", "cortisol", "energy-check", "metabolic-panel"} {
		_, err := f.tab.Shop.ToggleCartItem(id)
		require.NoError(t, err)
	}
	home = f.tab.Home.View()
	assert.Len(t, home.Basket, 3)
	assert.Equal(t, "Vitamin D", home.Basket[0].Name)
	assert.Equal(t, "£29.00", home.Basket[0].PriceLabel)
	assert.Equal(t, "+2 more in your basket", home.More)
	assert.Equal(t, 5, home.Count)
	assert.Empty(t, home.EmptyMessage)
	// 29 + 35 + 39 + 59 + 79 = 241, taxes 12.05
	assert.Equal(t, "£253.05", home.TotalLabel)

	_, err := f.tab.Account.Register(services.ProfileRequest{Name: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "Signed in as ada@x.com.", f.tab.Home.View().SessionStatus)
}
