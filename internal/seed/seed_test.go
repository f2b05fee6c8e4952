package seed

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rawbazaar/backend/internal/domain"
)

func TestLoadDataset(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	ds, err := Load(now)
	require.NoError(t, err)

	require.Len(t, ds.Products, 6)
	require.Len(t, ds.Orders, 3)
	assert.Equal(t, []int64{1, 4}, ds.Favorites)
	assert.Len(t, ds.Users, 8)

	onion := ds.Products[0]
	assert.Equal(t, "Onion", onion.NameEn)
	assert.Equal(t, "प्याज", onion.Name)
	assert.True(t, onion.Price.Equal(decimal.NewFromInt(25)))
	assert.True(t, onion.InStock)

	tomato := ds.Products[2]
	assert.Equal(t, 0, tomato.Stock)
	assert.False(t, tomato.InStock)
	assert.Equal(t, domain.ProductOutOfStock, tomato.Status)

	first := ds.Orders[0]
	assert.Equal(t, "ORD001", first.ID)
	assert.True(t, first.Total.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, domain.OrderPending, first.Status)

	delivered := ds.Orders[1]
	assert.Equal(t, now.Add(-24*time.Hour), delivered.CreatedAt)
	assert.Equal(t, now.Add(-12*time.Hour), delivered.UpdatedAt)
	assert.True(t, delivered.Total.Equal(decimal.NewFromInt(450)))
}

func TestParseRejectsBadPrice(t *testing.T) {
	_, err := parse([]byte(`products:
  - id: 1
    name: x
    name_en: x
    supplier: s
    supplier_id: 1
    price: "abc"
    unit: kg
    category: c
    stock: 1
    min_order_quantity: 1
`), time.Now())
	require.Error(t, err)
}
