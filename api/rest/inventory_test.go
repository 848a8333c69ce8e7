package rest_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shillien-project/portal/model"
)

// seedStack inserts a stack directly so split/combine tests don't depend
// on market prices.
func seedStack(t *testing.T, env *testEnv, charID int64, name string, qty int64, stackable bool) model.ItemStack {
	t.Helper()
	s := model.ItemStack{
		ID: fmt.Sprintf("seed-%s-%d", name, qty), CharID: charID, Name: name,
		Quantity: qty, Stackable: stackable, Price: 25, Droppable: true, Splittable: true,
	}
	require.NoError(t, env.db.Create(&s).Error)
	return s
}

func TestInventorySplit(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")
	charID := env.createCharacter(t, token, "Splitter")
	seeded := seedStack(t, env, charID, "Elixir", 30, true)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/characters/%d/inventory/split", charID),
		map[string]interface{}{"stack_id": seeded.ID, "quantity": 10}, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var qtys []int64
	var rows []model.ItemStack
	require.NoError(t, env.db.Where("char_id = ? AND name = ?", charID, "Elixir").Find(&rows).Error)
	for _, r := range rows {
		qtys = append(qtys, r.Quantity)
	}
	assert.ElementsMatch(t, []int64{20, 10}, qtys)
}

func TestInventorySplit_WholeStackRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")
	charID := env.createCharacter(t, token, "Splitter")
	seeded := seedStack(t, env, charID, "Elixir", 30, true)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/characters/%d/inventory/split", charID),
		map[string]interface{}{"stack_id": seeded.ID, "quantity": 30}, bearer(token)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventorySplit_UnknownStack(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")
	charID := env.createCharacter(t, token, "Splitter")

	w := env.do(http.MethodPost, fmt.Sprintf("/api/characters/%d/inventory/split", charID),
		map[string]interface{}{"stack_id": "bogus", "quantity": 1}, bearer(token)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInventoryCombine(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")
	charID := env.createCharacter(t, token, "Merger")
	seedStack(t, env, charID, "Elixir", 30, true)
	seedStack(t, env, charID, "Elixir", 12, true)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/characters/%d/inventory/combine", charID),
		nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)

	var rows []model.ItemStack
	require.NoError(t, env.db.Where("char_id = ? AND name = ?", charID, "Elixir").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(42), rows[0].Quantity)
}

func TestInventory_ForeignCharacterHidden(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	charID := env.createCharacter(t, alice, "AliceChar")

	w := env.do(http.MethodGet, fmt.Sprintf("/api/characters/%d/inventory", charID),
		nil, bearer(bob)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
