package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name" validate:"required"`
	NameEn           string          `json:"name_en" validate:"required"`
	Supplier         string          `json:"supplier" validate:"required"`
	SupplierEn       string          `json:"supplier_en"`
	SupplierID       int64           `json:"supplier_id" validate:"gt=0"`
	Price            decimal.Decimal `json:"price"`
	Unit             string          `json:"unit" validate:"required"`
	UnitEn           string          `json:"unit_en"`
	Rating           float64         `json:"rating" validate:"gte=0,lte=5"`
	Location         string          `json:"location"`
	LocationEn       string          `json:"location_en"`
	Image            string          `json:"image"`
	InStock          bool            `json:"in_stock"`
	Stock            int             `json:"stock" validate:"gte=0"`
	Sold             int             `json:"sold" validate:"gte=0"`
	Description      string          `json:"description"`
	DescriptionEn    string          `json:"description_en"`
	Category         string          `json:"category" validate:"required"`
	CategoryEn       string          `json:"category_en"`
	Status           ProductStatus   `json:"status" validate:"required,oneof=active out_of_stock inactive"`
	MinOrderQuantity int             `json:"min_order_quantity" validate:"gte=1"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductPatch carries the fields of a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name             *string          `json:"name,omitempty"`
	NameEn           *string          `json:"name_en,omitempty"`
	Supplier         *string          `json:"supplier,omitempty"`
	SupplierEn       *string          `json:"supplier_en,omitempty"`
	SupplierID       *int64           `json:"supplier_id,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Unit             *string          `json:"unit,omitempty"`
	UnitEn           *string          `json:"unit_en,omitempty"`
	Rating           *float64         `json:"rating,omitempty"`
	Location         *string          `json:"location,omitempty"`
	LocationEn       *string          `json:"location_en,omitempty"`
	Image            *string          `json:"image,omitempty"`
	Stock            *int             `json:"stock,omitempty"`
	Sold             *int             `json:"sold,omitempty"`
	Description      *string          `json:"description,omitempty"`
	DescriptionEn    *string          `json:"description_en,omitempty"`
	Category         *string          `json:"category,omitempty"`
	CategoryEn       *string          `json:"category_en,omitempty"`
	Status           *ProductStatus   `json:"status,omitempty"`
	MinOrderQuantity *int             `json:"min_order_quantity,omitempty"`
}

type OrderItem struct {
	ProductID     int64           `json:"product_id" validate:"gt=0"`
	ProductName   string          `json:"product_name" validate:"required"`
	ProductNameEn string          `json:"product_name_en"`
	Quantity      int             `json:"quantity" validate:"gte=1"`
	Unit          string          `json:"unit"`
	UnitEn        string          `json:"unit_en"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

type Order struct {
	ID              string          `json:"id"`
	VendorID        int64           `json:"vendor_id" validate:"gt=0"`
	VendorName      string          `json:"vendor_name" validate:"required"`
	VendorNameEn    string          `json:"vendor_name_en"`
	VendorPhone     string          `json:"vendor_phone"`
	SupplierID      int64           `json:"supplier_id" validate:"gt=0"`
	SupplierName    string          `json:"supplier_name" validate:"required"`
	SupplierNameEn  string          `json:"supplier_name_en"`
	Items           []OrderItem     `json:"items" validate:"required,min=1,dive"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	DeliveryAddress string          `json:"delivery_address" validate:"required"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    int64            `json:"user_id" validate:"gt=0"`
	Audience  UserType         `json:"audience" validate:"required,oneof=vendor supplier"`
	Title     string           `json:"title" validate:"required"`
	TitleEn   string           `json:"title_en" validate:"required"`
	Message   string           `json:"message"`
	MessageEn string           `json:"message_en"`
	Type      NotificationType `json:"type" validate:"required,oneof=order payment delivery system promotion"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	ActionURL string           `json:"action_url,omitempty"`
}

type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	NameEn         string    `json:"name_en"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	UserType       UserType  `json:"user_type"`
	BusinessName   string    `json:"business_name"`
	BusinessNameEn string    `json:"business_name_en"`
	Location       string    `json:"location"`
	LocationEn     string    `json:"location_en"`
	Category       string    `json:"category"`
	CategoryEn     string    `json:"category_en"`
	IsVerified     bool      `json:"is_verified"`
	Rating         float64   `json:"rating"`
	TotalOrders    int       `json:"total_orders"`
	JoinedDate     time.Time `json:"joined_date"`
}

// Actor is the identity a request or session acts as.
type Actor struct {
	UserID   int64    `json:"user_id"`
	UserType UserType `json:"user_type"`
}

func (a Actor) Key() string {
	return string(a.UserType) + ":" + formatID(a.UserID)
}

func (a Actor) Valid() bool {
	return a.UserID > 0 && a.UserType.Valid()
}

// Cart maps product id to quantity. A zero quantity is logically absent.
type Cart map[int64]int

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}

type FilterCriteria struct {
	Search   string          `json:"search"`
	Category string          `json:"category"`
	PriceMin decimal.Decimal `json:"price_min"`
	PriceMax decimal.Decimal `json:"price_max"`
}

func DefaultFilter() FilterCriteria {
	return FilterCriteria{
		PriceMin: decimal.Zero,
		PriceMax: decimal.NewFromInt(1000),
	}
}

type CartLine struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	Lines     []CartLine      `json:"lines"`
	Groups    []SupplierGroup `json:"groups"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

type SupplierGroup struct {
	SupplierID     int64           `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name"`
	SupplierNameEn string          `json:"supplier_name_en"`
	Lines          []CartLine      `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type SupplierAnalytics struct {
	SupplierID        int64           `json:"supplier_id"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalUnitsSold    int             `json:"total_units_sold"`
	PendingOrders     int             `json:"pending_orders"`
	ActiveProducts    int             `json:"active_products"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TopSeller         *Product        `json:"top_seller,omitempty"`
	TopProducts       []TopProduct    `json:"top_products,omitempty"`
}

type VendorSummary struct {
	VendorID      int64           `json:"vendor_id"`
	TotalOrders   int             `json:"total_orders"`
	PendingOrders int             `json:"pending_orders"`
	Delivered     int             `json:"delivered_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	CartItems     int             `json:"cart_items"`
	CartTotal     decimal.Decimal `json:"cart_total"`
	Favorites     int             `json:"favorites"`
}

type TopProduct struct {
	ProductID        int64           `json:"product_id"`
	Name             string          `json:"name"`
	NameEn           string          `json:"name_en"`
	Sold             int             `json:"sold"`
	EstimatedRevenue decimal.Decimal `json:"estimated_revenue"`
}

type ProductCreateRequest struct {
	Name             string          `json:"name" validate:"required,max=120"`
	NameEn           string          `json:"name_en" validate:"required,max=120"`
	Price            decimal.Decimal `json:"price"`
	Unit             string          `json:"unit" validate:"required"`
	UnitEn           string          `json:"unit_en"`
	Stock            int             `json:"stock" validate:"gte=0"`
	Description      string          `json:"description"`
	DescriptionEn    string          `json:"description_en"`
	Category         string          `json:"category" validate:"required"`
	CategoryEn       string          `json:"category_en"`
	Location         string          `json:"location"`
	LocationEn       string          `json:"location_en"`
	Image            string          `json:"image"`
	MinOrderQuantity int             `json:"min_order_quantity" validate:"gte=0"`
}

type ProductUpdateRequest struct {
	Name             *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	NameEn           *string          `json:"name_en,omitempty" validate:"omitempty,min=1,max=120"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Unit             *string          `json:"unit,omitempty"`
	UnitEn           *string          `json:"unit_en,omitempty"`
	Description      *string          `json:"description,omitempty"`
	DescriptionEn    *string          `json:"description_en,omitempty"`
	Category         *string          `json:"category,omitempty"`
	CategoryEn       *string          `json:"category_en,omitempty"`
	Location         *string          `json:"location,omitempty"`
	LocationEn       *string          `json:"location_en,omitempty"`
	Image            *string          `json:"image,omitempty"`
	Status           *ProductStatus   `json:"status,omitempty" validate:"omitempty,oneof=active out_of_stock inactive"`
	MinOrderQuantity *int             `json:"min_order_quantity,omitempty" validate:"omitempty,gte=1"`
}

type StockUpdateRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

type CartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

type FilterUpdateRequest struct {
	Search   *string          `json:"search,omitempty"`
	Category *string          `json:"category,omitempty"`
	PriceMin *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax *decimal.Decimal `json:"price_max,omitempty"`
}

type PlaceOrderRequest struct {
	DeliveryAddress string `json:"delivery_address" validate:"required,max=300"`
	Notes           string `json:"notes" validate:"max=500"`
}

type PlaceOrderResult struct {
	Orders        []Order         `json:"orders"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Notifications []Notification  `json:"notifications"`
}

type OrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending accepted rejected in_transit delivered cancelled"`
}

type SessionRequest struct {
	UserType UserType `json:"user_type" validate:"required,oneof=vendor supplier"`
	UserID   int64    `json:"user_id" validate:"gt=0"`
}

type NotificationList struct {
	Items       []Notification `json:"items"`
	UnreadCount int            `json:"unread_count"`
}

type FavoritesView struct {
	ProductIDs []int64   `json:"product_ids"`
	Products   []Product `json:"products"`
}

type SessionResponse struct {
	AccessToken string `json:"access_token"`
	Actor       Actor  `json:"actor"`
	User        User   `json:"user"`
	ExpiresAt   string `json:"expires_at"`
}
