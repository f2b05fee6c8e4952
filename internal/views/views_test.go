package views

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rawbazaar/backend/internal/domain"
	"rawbazaar/backend/internal/seed"
)

func dataset(t *testing.T) seed.Dataset {
	t.Helper()
	ds, err := seed.Load(time.Now())
	require.NoError(t, err)
	return ds
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterProductsSearchMatchesBothLanguages(t *testing.T) {
	ds := dataset(t)
	base := domain.DefaultFilter()

	base.Search = "ONION"
	assert.Equal(t, []int64{1}, ids(FilterProducts(ds.Products, base)))

	base.Search = "प्याज"
	assert.Equal(t, []int64{1}, ids(FilterProducts(ds.Products, base)))

	base.Search = "masala"
	assert.Equal(t, []int64{4, 5}, ids(FilterProducts(ds.Products, base)))

	base.Search = "मसाला"
	assert.Equal(t, []int64{4, 5}, ids(FilterProducts(ds.Products, base)))

	base.Search = ""
	assert.Len(t, FilterProducts(ds.Products, base), 6)
}

func TestFilterProductsCategoryAndPriceCommute(t *testing.T) {
	ds := dataset(t)

	byCategory := domain.DefaultFilter()
	byCategory.Category = "spices"
	byPrice := domain.DefaultFilter()
	byPrice.PriceMin = decimal.NewFromInt(100)
	byPrice.PriceMax = decimal.NewFromInt(150)

	categoryThenPrice := FilterProducts(FilterProducts(ds.Products, byCategory), byPrice)
	priceThenCategory := FilterProducts(FilterProducts(ds.Products, byPrice), byCategory)
	assert.Equal(t, ids(categoryThenPrice), ids(priceThenCategory))
	assert.Equal(t, []int64{5}, ids(categoryThenPrice))

	combined := byCategory
	combined.PriceMin, combined.PriceMax = byPrice.PriceMin, byPrice.PriceMax
	assert.Equal(t, ids(categoryThenPrice), ids(FilterProducts(ds.Products, combined)))
}

func TestFilterProductsPriceRangeInclusive(t *testing.T) {
	ds := dataset(t)
	f := domain.DefaultFilter()
	f.PriceMin = decimal.NewFromInt(25)
	f.PriceMax = decimal.NewFromInt(45)
	assert.Equal(t, []int64{1, 3, 6}, ids(FilterProducts(ds.Products, f)))

	f = domain.DefaultFilter()
	f.Category = "Vegetables"
	assert.Equal(t, []int64{1, 2, 3}, ids(FilterProducts(ds.Products, f)))

	f.Category = AllCategories
	assert.Len(t, FilterProducts(ds.Products, f), 6)
}

func TestCartTotalIgnoresDanglingEntries(t *testing.T) {
	ds := dataset(t)
	cart := domain.Cart{1: 10, 2: 5, 99: 4, 4: 0}

	assert.True(t, CartTotal(cart, ds.Products).Equal(decimal.NewFromInt(350)))
	assert.Equal(t, 19, CartItemCount(cart))

	lines := ResolveCart(cart, ds.Products)
	require.Len(t, lines, 2)
	assert.EqualValues(t, 1, lines[0].Product.ID)
	assert.True(t, lines[0].LineTotal.Equal(decimal.NewFromInt(250)))
}

func TestGroupBySupplier(t *testing.T) {
	ds := dataset(t)
	lines := ResolveCart(domain.Cart{1: 10, 4: 2, 5: 3, 2: 5}, ds.Products)

	groups := GroupBySupplier(lines)
	require.Len(t, groups, 3)
	assert.EqualValues(t, 1, groups[0].SupplierID)
	assert.EqualValues(t, 2, groups[1].SupplierID)
	assert.EqualValues(t, 4, groups[2].SupplierID)
	assert.Len(t, groups[2].Lines, 2)
	assert.True(t, groups[2].Subtotal.Equal(decimal.NewFromInt(720)))
	assert.Equal(t, "Masala King", groups[2].SupplierNameEn)
}

func TestSupplierAnalytics(t *testing.T) {
	ds := dataset(t)

	masala := SupplierAnalytics(4, ds.Products, ds.Orders)
	assert.True(t, masala.TotalRevenue.Equal(decimal.NewFromInt(360)))
	assert.Equal(t, 75, masala.TotalUnitsSold)
	assert.Equal(t, 2, masala.ActiveProducts)
	assert.Equal(t, 0, masala.PendingOrders)
	assert.True(t, masala.AverageOrderValue.Equal(decimal.NewFromInt(360)))
	require.NotNil(t, masala.TopSeller)
	assert.EqualValues(t, 5, masala.TopSeller.ID)

	ram := SupplierAnalytics(1, ds.Products, ds.Orders)
	assert.Equal(t, 1, ram.PendingOrders)

	grain := SupplierAnalytics(5, ds.Products, ds.Orders)
	assert.Equal(t, 0, grain.TotalOrders)
	assert.True(t, grain.AverageOrderValue.IsZero())

	nobody := SupplierAnalytics(42, ds.Products, ds.Orders)
	assert.Nil(t, nobody.TopSeller)
	assert.True(t, nobody.AverageOrderValue.IsZero())
}

func TestSupplierAnalyticsAverageOrderValueFloors(t *testing.T) {
	orders := []domain.Order{
		{ID: "ORD001", SupplierID: 1, Total: decimal.NewFromInt(100)},
		{ID: "ORD002", SupplierID: 1, Total: decimal.NewFromInt(100)},
		{ID: "ORD003", SupplierID: 1, Total: decimal.NewFromInt(101)},
		{ID: "ORD004", SupplierID: 2, Total: decimal.NewFromInt(999)},
	}

	a := SupplierAnalytics(1, nil, orders)
	assert.Equal(t, 3, a.TotalOrders)
	assert.True(t, a.TotalRevenue.Equal(decimal.NewFromInt(301)))
	assert.True(t, a.AverageOrderValue.Equal(decimal.NewFromInt(100)), a.AverageOrderValue.String())

	fractional := []domain.Order{
		{ID: "ORD001", SupplierID: 1, Total: decimal.RequireFromString("99.99")},
	}
	assert.True(t, SupplierAnalytics(1, nil, fractional).AverageOrderValue.Equal(decimal.NewFromInt(99)))
}

func TestSupplierAnalyticsTopSellerTieKeepsFirst(t *testing.T) {
	products := []domain.Product{
		{ID: 1, SupplierID: 9, Sold: 10, Status: domain.ProductActive},
		{ID: 2, SupplierID: 9, Sold: 10, Status: domain.ProductActive},
	}
	a := SupplierAnalytics(9, products, nil)
	require.NotNil(t, a.TopSeller)
	assert.EqualValues(t, 1, a.TopSeller.ID)
}

func TestTopProductsAndVendorSummary(t *testing.T) {
	ds := dataset(t)

	top := TopProducts(ds.Products, 2)
	require.Len(t, top, 2)
	assert.EqualValues(t, 3, top[0].ProductID)
	assert.EqualValues(t, 1, top[1].ProductID)
	assert.True(t, top[1].EstimatedRevenue.Equal(decimal.NewFromInt(3000)))

	summary := VendorSummary(1, ds.Orders, domain.Cart{6: 10}, []int64{1, 4}, ds.Products)
	assert.Equal(t, 1, summary.TotalOrders)
	assert.Equal(t, 1, summary.PendingOrders)
	assert.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(350)))
	assert.True(t, summary.CartTotal.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, 2, summary.Favorites)
}

func TestActorScopedViews(t *testing.T) {
	ds := dataset(t)
	assert.Len(t, OrdersFor(domain.Actor{UserID: 1, UserType: domain.UserVendor}, ds.Orders), 1)
	assert.Len(t, OrdersFor(domain.Actor{UserID: 4, UserType: domain.UserSupplier}, ds.Orders), 1)

	notes := []domain.Notification{
		{UserID: 1, Audience: domain.UserVendor},
		{UserID: 1, Audience: domain.UserSupplier, IsRead: true},
	}
	mine := NotificationsFor(domain.Actor{UserID: 1, UserType: domain.UserVendor}, notes)
	assert.Len(t, mine, 1)
	assert.Equal(t, 1, UnreadCount(notes))
}
