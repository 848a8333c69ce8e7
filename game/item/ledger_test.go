package item

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shillien-project/portal/model"
)

func adena(qty int64) model.ItemStack {
	return model.ItemStack{
		ID: uuid.NewString(), CharID: 1, Name: model.CurrencyName,
		Quantity: qty, Stackable: true, Price: 1, Droppable: true, Splittable: true,
	}
}

func stack(name string, qty int64, stackable bool) model.ItemStack {
	return model.ItemStack{
		ID: uuid.NewString(), CharID: 1, Name: name,
		Quantity: qty, Stackable: stackable, Price: 100, Droppable: true, Splittable: true,
	}
}

func find(t *testing.T, inv []model.ItemStack, name string) model.ItemStack {
	t.Helper()
	for _, s := range inv {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no stack named %q", name)
	return model.ItemStack{}
}

func TestBuy_DeductsCurrency(t *testing.T) {
	inv := []model.ItemStack{adena(1000)}
	out, err := Buy(inv, 1, Listing{Name: "Red Potion", Price: 50, Stackable: true}, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(850), CurrencyBalance(out))
	assert.Equal(t, int64(3), find(t, out, "Red Potion").Quantity)
	// input untouched
	assert.Equal(t, int64(1000), CurrencyBalance(inv))
}

func TestBuy_InsufficientFunds(t *testing.T) {
	inv := []model.ItemStack{adena(1000)}
	out, err := Buy(inv, 1, Listing{Name: "Red Potion", Price: 50, Stackable: true}, 25)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, out)
	assert.Equal(t, int64(1000), CurrencyBalance(inv))
}

func TestBuy_MergesIntoExistingStack(t *testing.T) {
	inv := []model.ItemStack{adena(1000), stack("Red Potion", 5, true)}
	out, err := Buy(inv, 1, Listing{Name: "Red Potion", Price: 10, Stackable: true}, 2)
	require.NoError(t, err)

	assert.Len(t, out, 2)
	assert.Equal(t, int64(7), find(t, out, "Red Potion").Quantity)
	assert.Equal(t, inv[1].ID, find(t, out, "Red Potion").ID)
}

func TestBuy_BundleGrantsMultipleUnits(t *testing.T) {
	inv := []model.ItemStack{adena(1000)}
	// quantity counts bundles: 2 purchases of a 50-arrow bundle grant 100 arrows
	out, err := Buy(inv, 1, Listing{Name: "Wooden Arrow", Price: 5, Stackable: true, Bundle: 50}, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(990), CurrencyBalance(out))
	assert.Equal(t, int64(100), find(t, out, "Wooden Arrow").Quantity)
}

func TestBuy_UniqueNeverMerges(t *testing.T) {
	inv := []model.ItemStack{adena(1000), stack("Demon's Dagger", 1, false)}
	out, err := Buy(inv, 1, Listing{Name: "Demon's Dagger", Price: 100, Stackable: false}, 1)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestBuy_ExactBalanceRemovesCurrencyStack(t *testing.T) {
	inv := []model.ItemStack{adena(150)}
	out, err := Buy(inv, 1, Listing{Name: "Red Potion", Price: 50, Stackable: true}, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(0), CurrencyBalance(out))
	for _, s := range out {
		assert.False(t, s.IsCurrency(), "zero-quantity Adena stack must be removed")
		assert.GreaterOrEqual(t, s.Quantity, int64(1))
	}
}

func TestBuy_InvalidQuantity(t *testing.T) {
	inv := []model.ItemStack{adena(1000)}
	_, err := Buy(inv, 1, Listing{Name: "Red Potion", Price: 50, Stackable: true}, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSell_CreditsCurrency(t *testing.T) {
	src := stack("Red Potion", 10, true)
	inv := []model.ItemStack{adena(100), src}

	out, err := Sell(inv, 1, src.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(500), CurrencyBalance(out))
	assert.Equal(t, int64(6), find(t, out, "Red Potion").Quantity)
}

func TestSell_FullQuantityRemovesStack(t *testing.T) {
	src := stack("Red Potion", 10, true)
	inv := []model.ItemStack{src} // no currency stack yet

	out, err := Sell(inv, 1, src.ID, 10)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, int64(1000), CurrencyBalance(out))
}

func TestSell_NotSellable(t *testing.T) {
	src := stack("Shadow Item", 1, false)
	src.Droppable = false
	inv := []model.ItemStack{src}

	_, err := Sell(inv, 1, src.ID, 1)
	assert.ErrorIs(t, err, ErrNotSellable)
}

func TestSell_NotFound(t *testing.T) {
	inv := []model.ItemStack{adena(100)}
	_, err := Sell(inv, 1, "missing-id", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSell_QuantityOutOfRange(t *testing.T) {
	src := stack("Red Potion", 5, true)
	inv := []model.ItemStack{src}

	_, err := Sell(inv, 1, src.ID, 6)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = Sell(inv, 1, src.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSellThenBuy_RestoresBalance(t *testing.T) {
	src := stack("Red Potion", 10, true)
	inv := []model.ItemStack{adena(1000), src}

	sold, err := Sell(inv, 1, src.ID, 10)
	require.NoError(t, err)
	bought, err := Buy(sold, 1, Listing{Name: "Red Potion", Price: src.Price, Stackable: true}, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), CurrencyBalance(bought))
	assert.Equal(t, int64(10), find(t, bought, "Red Potion").Quantity)
}

func TestSplit_CreatesNewStack(t *testing.T) {
	src := stack("Red Potion", 30, true)
	inv := []model.ItemStack{src}

	out, err := Split(inv, src.ID, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, src.ID, out[0].ID)
	assert.Equal(t, int64(20), out[0].Quantity)
	assert.NotEqual(t, src.ID, out[1].ID)
	assert.Equal(t, int64(10), out[1].Quantity)
	assert.Equal(t, src.Name, out[1].Name)
	assert.Equal(t, src.Price, out[1].Price)
}

func TestSplit_WholeStackRejected(t *testing.T) {
	src := stack("Red Potion", 30, true)
	inv := []model.ItemStack{src}

	_, err := Split(inv, src.ID, 30)
	assert.ErrorIs(t, err, ErrInvalidSplit)
	_, err = Split(inv, src.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidSplit)
}

func TestSplit_NotSplittable(t *testing.T) {
	src := stack("Quest Scroll", 5, true)
	src.Splittable = false
	inv := []model.ItemStack{src}

	_, err := Split(inv, src.ID, 2)
	assert.ErrorIs(t, err, ErrInvalidSplit)
}

func TestSplit_NotFound(t *testing.T) {
	_, err := Split([]model.ItemStack{}, "missing-id", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCombine_MergesByNameAndEnchant(t *testing.T) {
	a := stack("Red Potion", 10, true)
	b := stack("Red Potion", 5, true)
	plus1 := stack("Red Potion", 3, true)
	plus1.Enchant = 1
	sword := stack("Bastard Sword", 1, false)
	inv := []model.ItemStack{a, sword, b, plus1}

	out := Combine(inv)
	require.Len(t, out, 3)
	// merged stack takes the first-seen position with a fresh id
	assert.Equal(t, int64(15), out[0].Quantity)
	assert.NotEqual(t, a.ID, out[0].ID)
	assert.Equal(t, sword.ID, out[1].ID)
	assert.Equal(t, plus1.ID, out[2].ID)
	assert.Equal(t, int64(3), out[2].Quantity)
}

func TestCombine_Idempotent(t *testing.T) {
	inv := []model.ItemStack{
		adena(500),
		stack("Red Potion", 10, true),
		stack("Red Potion", 5, true),
		stack("Bastard Sword", 1, false),
	}

	once := Combine(inv)
	twice := Combine(once)
	assert.Equal(t, once, twice)
}

func TestSplitThenCombine_RestoresStack(t *testing.T) {
	src := stack("Red Potion", 30, true)
	inv := []model.ItemStack{src}

	for _, q := range []int64{1, 10, 29} {
		split, err := Split(inv, src.ID, q)
		require.NoError(t, err)
		out := Combine(split)
		require.Len(t, out, 1)
		assert.Equal(t, int64(30), out[0].Quantity)
		assert.Equal(t, src.Name, out[0].Name)
	}
}
