package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderPending:   {OrderAccepted, OrderRejected, OrderCancelled},
		OrderAccepted:  {OrderInTransit, OrderCancelled},
		OrderInTransit: {OrderDelivered},
	}
	all := []OrderStatus{OrderPending, OrderAccepted, OrderRejected, OrderInTransit, OrderDelivered, OrderCancelled}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, OrderDelivered.Terminal())
	assert.False(t, OrderPending.Terminal())
}

func validProduct() Product {
	now := time.Now().UTC()
	return Product{
		ID:               1,
		Name:             "प्याज",
		NameEn:           "Onion",
		Supplier:         "राम सप्लायर्स",
		SupplierEn:       "Ram Suppliers",
		SupplierID:       1,
		Price:            decimal.NewFromInt(25),
		Unit:             "किलो",
		UnitEn:           "kg",
		Rating:           4.5,
		InStock:          true,
		Stock:            500,
		Category:         "सब्जी",
		CategoryEn:       "vegetables",
		Status:           ProductActive,
		MinOrderQuantity: 5,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestProductValidate(t *testing.T) {
	require.NoError(t, validProduct().Validate())

	t.Run("non positive price", func(t *testing.T) {
		p := validProduct()
		p.Price = decimal.Zero
		err := p.Validate()
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, FieldError{Field: "Price", Rule: "gt"})
	})

	t.Run("negative stock and bad rating", func(t *testing.T) {
		p := validProduct()
		p.Stock = -1
		p.Rating = 7
		err := p.Validate()
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, FieldError{Field: "Stock", Rule: "gte"})
		assert.Contains(t, verr.Fields, FieldError{Field: "Rating", Rule: "lte"})
	})

	t.Run("zero stock must be out of stock", func(t *testing.T) {
		p := validProduct()
		p.Stock = 0
		require.Error(t, p.Validate())
		p.SyncStock()
		require.NoError(t, p.Validate())
		assert.False(t, p.InStock)
		assert.Equal(t, ProductOutOfStock, p.Status)
	})
}

func TestSyncStockKeepsInactive(t *testing.T) {
	p := validProduct()
	p.Status = ProductInactive
	p.SyncStock()
	assert.Equal(t, ProductInactive, p.Status)

	p.Status = ProductOutOfStock
	p.SyncStock()
	assert.Equal(t, ProductActive, p.Status)
}

func TestProductApplyMergesOnlyGivenFields(t *testing.T) {
	p := validProduct()
	name := "Red Onion"
	price := decimal.NewFromInt(28)
	p.Apply(ProductPatch{NameEn: &name, Price: &price})

	assert.Equal(t, "Red Onion", p.NameEn)
	assert.Equal(t, "प्याज", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(28)))
	assert.Equal(t, 500, p.Stock)
}

func TestOrderRecalculateAndValidate(t *testing.T) {
	order := Order{
		VendorID:     1,
		VendorName:   "राहुल चाट भंडार",
		SupplierID:   1,
		SupplierName: "राम सप्लायर्स",
		Items: []OrderItem{
			{ProductID: 1, ProductName: "प्याज", Quantity: 10, PricePerUnit: decimal.NewFromInt(25), TotalPrice: decimal.NewFromInt(1)},
			{ProductID: 2, ProductName: "आलू", Quantity: 5, PricePerUnit: decimal.NewFromInt(20)},
		},
		Total:           decimal.NewFromInt(999),
		Status:          OrderPending,
		DeliveryAddress: "Shop 15, Main Market, Mumbai",
	}
	order.Recalculate()
	assert.True(t, order.Items[0].TotalPrice.Equal(decimal.NewFromInt(250)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(350)))
	require.NoError(t, order.Validate())

	order.Items = nil
	order.DeliveryAddress = "   "
	err := order.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, FieldError{Field: "DeliveryAddress", Rule: "required"})
	assert.Contains(t, verr.Fields, FieldError{Field: "Items", Rule: "required"})
}

func TestActorKey(t *testing.T) {
	assert.Equal(t, "vendor:1", Actor{UserID: 1, UserType: UserVendor}.Key())
	assert.NotEqual(t, Actor{UserID: 1, UserType: UserVendor}.Key(), Actor{UserID: 1, UserType: UserSupplier}.Key())
	assert.False(t, Actor{UserID: 0, UserType: UserVendor}.Valid())
}
