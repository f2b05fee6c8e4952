package domain

import "strconv"

type ProductStatus string

const (
	ProductActive     ProductStatus = "active"
	ProductOutOfStock ProductStatus = "out_of_stock"
	ProductInactive   ProductStatus = "inactive"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderRejected  OrderStatus = "rejected"
	OrderInTransit OrderStatus = "in_transit"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderRejected, OrderInTransit, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to target.
// Setting the current status again is handled by callers as a no-op.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderPending:
		return target == OrderAccepted || target == OrderRejected || target == OrderCancelled
	case OrderAccepted:
		return target == OrderInTransit || target == OrderCancelled
	case OrderInTransit:
		return target == OrderDelivered
	case OrderRejected, OrderDelivered, OrderCancelled:
		return false
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderRejected || s == OrderDelivered || s == OrderCancelled
}

type UserType string

const (
	UserVendor   UserType = "vendor"
	UserSupplier UserType = "supplier"
)

func (u UserType) Valid() bool {
	return u == UserVendor || u == UserSupplier
}

type NotificationType string

const (
	NotificationOrder     NotificationType = "order"
	NotificationPayment   NotificationType = "payment"
	NotificationDelivery  NotificationType = "delivery"
	NotificationSystem    NotificationType = "system"
	NotificationPromotion NotificationType = "promotion"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
