package models_test

import (
	"encoding/json"
	"testing"

	"ayuta/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartItem_UnmarshalDefaultsQuantity(t *testing.T) {
	var items []models.CartItem
	err := json.Unmarshal([]byte(`[{"id":"kit-1","name":"Kit","price":49},{"id":"kit-2","name":"Other","price":10,"quantity":3}]`), &items)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 3, items[1].Quantity)
	assert.Equal(t, "Kit", items[0].Name)
}

func TestCartItem_UnmarshalKeepsExplicitZero(t *testing.T) {
	var item models.CartItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"kit-1","price":5,"quantity":0}`), &item))
	assert.Equal(t, 0, item.Quantity)
}

func TestState_CloneIsDeep(t *testing.T) {
	state := models.DefaultState()
	state.Cart = append(state.Cart, models.CartItem{ID: "a", Price: 1, Quantity: 1})
	state.Orders = append(state.Orders, models.Order{ID: "AYU-1", Items: []models.CartItem{{ID: "a"}}})
	state.User = &models.UserProfile{Name: "Ann"}
	state.Session = &models.Session{Email: "ann@example.com"}

	clone := state.Clone()
	clone.Cart[0].Quantity = 9
	clone.Orders[0].Items[0].ID = "changed"
	clone.User.Name = "Bob"
	clone.Session.Email = "bob@example.com"

	assert.Equal(t, 1, state.Cart[0].Quantity)
	assert.Equal(t, "a", state.Orders[0].Items[0].ID)
	assert.Equal(t, "Ann", state.User.Name)
	assert.Equal(t, "ann@example.com", state.Session.Email)
}

func TestState_PrefillEmail(t *testing.T) {
	state := models.DefaultState()
	assert.Equal(t, "", state.PrefillEmail())

	state.PaymentEmail = "pay@example.com"
	assert.Equal(t, "pay@example.com", state.PrefillEmail())

	state.User = &models.UserProfile{Email: "user@example.com"}
	assert.Equal(t, "user@example.com", state.PrefillEmail())

	state.Session = &models.Session{Email: "session@example.com"}
	assert.Equal(t, "session@example.com", state.PrefillEmail())
}

func TestGoal_Valid(t *testing.T) {
	assert.True(t, models.GoalEnergy.Valid())
	assert.True(t, models.Goal("all").Valid())
	assert.False(t, models.Goal("sleep").Valid())
	assert.False(t, models.Goal("").Valid())
}

func TestProduct_MatchesGoal(t *testing.T) {
	p := models.Product{ID: "kit", Goals: models.ParseGoalTags(" wellness, energy ,")}
	assert.Equal(t, []string{"wellness", "energy"}, p.Goals)
	assert.True(t, p.MatchesGoal(models.GoalAll))
	assert.True(t, p.MatchesGoal(models.GoalEnergy))
	assert.False(t, p.MatchesGoal(models.GoalMetabolic))
}
