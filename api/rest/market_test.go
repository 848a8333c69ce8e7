package rest_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogEntry struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Stackable bool   `json:"stackable"`
	Quantity  int64  `json:"quantity"`
}

func fetchCatalog(t *testing.T, env *testEnv, token string) []catalogEntry {
	t.Helper()
	w := env.do(http.MethodGet, "/api/market/catalog", nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Catalog []catalogEntry `json:"catalog"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Catalog)
	return resp.Catalog
}

func pickEntry(t *testing.T, catalog []catalogEntry, stackable bool) catalogEntry {
	t.Helper()
	for _, e := range catalog {
		if e.Stackable == stackable {
			return e
		}
	}
	t.Fatal("no catalog entry of requested class")
	return catalogEntry{}
}

func TestMarketCatalog_SamePricesWithinSession(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")

	first := fetchCatalog(t, env, token)
	second := fetchCatalog(t, env, token)
	assert.Equal(t, first, second)
}

func TestMarketBuy_DeductsAdena(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")
	charID := env.createCharacter(t, token, "Buyer")

	catalog := fetchCatalog(t, env, token)
	var affordable catalogEntry
	for _, e := range catalog {
		if e.Stackable && e.Price <= 500 {
			affordable = e
			break
		}
	}
	require.NotEmpty(t, affordable.Name, "expected an affordable stackable entry")

	w := env.do(http.MethodPost, "/api/market/buy", map[string]interface{}{
		"char_id": charID, "name": affordable.Name, "quantity": 1,
	}, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, float64(1000-affordable.Price), resp["adena"])
}

func TestMarketBuy_InsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")
	charID := env.createCharacter(t, token, "Pauper")

	catalog := fetchCatalog(t, env, token)
	expensive := pickEntry(t, catalog, false) // unique prices start at 1000

	w := env.do(http.MethodPost, "/api/market/buy", map[string]interface{}{
		"char_id": charID, "name": expensive.Name, "quantity": 100,
	}, bearer(token)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Balance untouched.
	inv := env.do(http.MethodGet, fmt.Sprintf("/api/characters/%d/inventory", charID),
		nil, bearer(token)...)
	require.Equal(t, http.StatusOK, inv.Code)
	assert.Equal(t, float64(1000), decode(t, inv)["adena"])
}

func TestMarketBuy_UnlistedItem(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")
	charID := env.createCharacter(t, token, "Buyer")

	w := env.do(http.MethodPost, "/api/market/buy", map[string]interface{}{
		"char_id": charID, "name": "Zariche", "quantity": 1,
	}, bearer(token)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarketSell_ThenBuyRestoresBalance(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")
	charID := env.createCharacter(t, token, "Trader")

	// Pick a stackable, unbundled item the starter set doesn't already
	// carry, so the sale uses the freshly bought stack's price.
	catalog := fetchCatalog(t, env, token)
	var entry catalogEntry
	for _, e := range catalog {
		if e.Stackable && e.Quantity == 1 && e.Price <= 500 &&
			e.Name != "Red Potion" && e.Name != "Scroll of Escape" {
			entry = e
			break
		}
	}
	require.NotEmpty(t, entry.Name)

	w := env.do(http.MethodPost, "/api/market/buy", map[string]interface{}{
		"char_id": charID, "name": entry.Name, "quantity": 3,
	}, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	afterBuy := decode(t, w)["adena"].(float64)

	// Find the purchased stack.
	var resp struct {
		Inventory []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Quantity int64  `json:"quantity"`
		} `json:"inventory"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var stackID string
	for _, s := range resp.Inventory {
		if s.Name == entry.Name {
			stackID = s.ID
		}
	}
	require.NotEmpty(t, stackID)

	// Selling at the purchase price restores the balance exactly.
	w = env.do(http.MethodPost, "/api/market/sell", map[string]interface{}{
		"char_id": charID, "stack_id": stackID, "quantity": 3,
	}, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, afterBuy+float64(entry.Price*3), decode(t, w)["adena"].(float64))
}

func TestMarketSell_UnknownStack(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")
	charID := env.createCharacter(t, token, "Trader")

	w := env.do(http.MethodPost, "/api/market/sell", map[string]interface{}{
		"char_id": charID, "stack_id": "bogus", "quantity": 1,
	}, bearer(token)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarket_ForeignCharacterRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	charID := env.createCharacter(t, alice, "AliceChar")

	w := env.do(http.MethodPost, "/api/market/buy", map[string]interface{}{
		"char_id": charID, "name": "Red Potion", "quantity": 1,
	}, bearer(bob)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
