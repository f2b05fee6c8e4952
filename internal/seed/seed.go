// Package seed provides the demo marketplace dataset used when no saved state exists.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"rawbazaar/backend/internal/domain"
)

//go:embed seed.yaml
var raw []byte

type Dataset struct {
	Users     []domain.User
	Products  []domain.Product
	Orders    []domain.Order
	Favorites []int64
}

type document struct {
	Favorites []int64      `yaml:"favorites"`
	Users     []userDoc    `yaml:"users"`
	Products  []productDoc `yaml:"products"`
	Orders    []orderDoc   `yaml:"orders"`
}

type userDoc struct {
	ID             int64     `yaml:"id"`
	UserType       string    `yaml:"user_type"`
	Name           string    `yaml:"name"`
	NameEn         string    `yaml:"name_en"`
	Phone          string    `yaml:"phone"`
	Email          string    `yaml:"email"`
	BusinessName   string    `yaml:"business_name"`
	BusinessNameEn string    `yaml:"business_name_en"`
	Location       string    `yaml:"location"`
	LocationEn     string    `yaml:"location_en"`
	Category       string    `yaml:"category"`
	CategoryEn     string    `yaml:"category_en"`
	IsVerified     bool      `yaml:"is_verified"`
	Rating         float64   `yaml:"rating"`
	TotalOrders    int       `yaml:"total_orders"`
	Joined         time.Time `yaml:"joined"`
}

type productDoc struct {
	ID               int64     `yaml:"id"`
	Name             string    `yaml:"name"`
	NameEn           string    `yaml:"name_en"`
	Supplier         string    `yaml:"supplier"`
	SupplierEn       string    `yaml:"supplier_en"`
	SupplierID       int64     `yaml:"supplier_id"`
	Price            string    `yaml:"price"`
	Unit             string    `yaml:"unit"`
	UnitEn           string    `yaml:"unit_en"`
	Rating           float64   `yaml:"rating"`
	Location         string    `yaml:"location"`
	LocationEn       string    `yaml:"location_en"`
	Image            string    `yaml:"image"`
	Stock            int       `yaml:"stock"`
	Sold             int       `yaml:"sold"`
	Description      string    `yaml:"description"`
	DescriptionEn    string    `yaml:"description_en"`
	Category         string    `yaml:"category"`
	CategoryEn       string    `yaml:"category_en"`
	Status           string    `yaml:"status"`
	MinOrderQuantity int       `yaml:"min_order_quantity"`
	Created          time.Time `yaml:"created"`
	Updated          time.Time `yaml:"updated"`
}

type orderDoc struct {
	ID              string         `yaml:"id"`
	VendorID        int64          `yaml:"vendor_id"`
	VendorName      string         `yaml:"vendor_name"`
	VendorNameEn    string         `yaml:"vendor_name_en"`
	VendorPhone     string         `yaml:"vendor_phone"`
	SupplierID      int64          `yaml:"supplier_id"`
	SupplierName    string         `yaml:"supplier_name"`
	SupplierNameEn  string         `yaml:"supplier_name_en"`
	Status          string         `yaml:"status"`
	DeliveryAddress string         `yaml:"delivery_address"`
	Notes           string         `yaml:"notes"`
	CreatedAgo      time.Duration  `yaml:"created_ago"`
	UpdatedAgo      time.Duration  `yaml:"updated_ago"`
	Items           []orderItemDoc `yaml:"items"`
}

type orderItemDoc struct {
	ProductID     int64  `yaml:"product_id"`
	ProductName   string `yaml:"product_name"`
	ProductNameEn string `yaml:"product_name_en"`
	Quantity      int    `yaml:"quantity"`
	Unit          string `yaml:"unit"`
	UnitEn        string `yaml:"unit_en"`
	PricePerUnit  string `yaml:"price_per_unit"`
}

// Load parses the embedded dataset. Order timestamps are placed relative to now.
func Load(now time.Time) (Dataset, error) {
	return parse(raw, now)
}

// MustLoad is Load for callers that treat a broken embedded dataset as a programming error.
func MustLoad(now time.Time) Dataset {
	ds, err := Load(now)
	if err != nil {
		panic(err)
	}
	return ds
}

func parse(data []byte, now time.Time) (Dataset, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Dataset{}, fmt.Errorf("parse seed: %w", err)
	}

	ds := Dataset{
		Users:     make([]domain.User, 0, len(doc.Users)),
		Products:  make([]domain.Product, 0, len(doc.Products)),
		Orders:    make([]domain.Order, 0, len(doc.Orders)),
		Favorites: doc.Favorites,
	}

	for _, u := range doc.Users {
		ds.Users = append(ds.Users, domain.User{
			ID:             u.ID,
			Name:           u.Name,
			NameEn:         u.NameEn,
			Phone:          u.Phone,
			Email:          u.Email,
			UserType:       domain.UserType(u.UserType),
			BusinessName:   u.BusinessName,
			BusinessNameEn: u.BusinessNameEn,
			Location:       u.Location,
			LocationEn:     u.LocationEn,
			Category:       u.Category,
			CategoryEn:     u.CategoryEn,
			IsVerified:     u.IsVerified,
			Rating:         u.Rating,
			TotalOrders:    u.TotalOrders,
			JoinedDate:     u.Joined.UTC(),
		})
	}

	for _, p := range doc.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return Dataset{}, fmt.Errorf("seed product %d price: %w", p.ID, err)
		}
		product := domain.Product{
			ID:               p.ID,
			Name:             p.Name,
			NameEn:           p.NameEn,
			Supplier:         p.Supplier,
			SupplierEn:       p.SupplierEn,
			SupplierID:       p.SupplierID,
			Price:            price,
			Unit:             p.Unit,
			UnitEn:           p.UnitEn,
			Rating:           p.Rating,
			Location:         p.Location,
			LocationEn:       p.LocationEn,
			Image:            p.Image,
			Stock:            p.Stock,
			Sold:             p.Sold,
			Description:      p.Description,
			DescriptionEn:    p.DescriptionEn,
			Category:         p.Category,
			CategoryEn:       p.CategoryEn,
			Status:           domain.ProductStatus(p.Status),
			MinOrderQuantity: p.MinOrderQuantity,
			CreatedAt:        p.Created.UTC(),
			UpdatedAt:        p.Updated.UTC(),
		}
		product.SyncStock()
		if err := product.Validate(); err != nil {
			return Dataset{}, fmt.Errorf("seed product %d: %w", p.ID, err)
		}
		ds.Products = append(ds.Products, product)
	}

	for _, o := range doc.Orders {
		order := domain.Order{
			ID:              o.ID,
			VendorID:        o.VendorID,
			VendorName:      o.VendorName,
			VendorNameEn:    o.VendorNameEn,
			VendorPhone:     o.VendorPhone,
			SupplierID:      o.SupplierID,
			SupplierName:    o.SupplierName,
			SupplierNameEn:  o.SupplierNameEn,
			Status:          domain.OrderStatus(o.Status),
			DeliveryAddress: o.DeliveryAddress,
			Notes:           o.Notes,
			CreatedAt:       now.Add(-o.CreatedAgo).UTC(),
			UpdatedAt:       now.Add(-o.UpdatedAgo).UTC(),
			Items:           make([]domain.OrderItem, 0, len(o.Items)),
		}
		for _, it := range o.Items {
			price, err := decimal.NewFromString(it.PricePerUnit)
			if err != nil {
				return Dataset{}, fmt.Errorf("seed order %s price: %w", o.ID, err)
			}
			order.Items = append(order.Items, domain.OrderItem{
				ProductID:     it.ProductID,
				ProductName:   it.ProductName,
				ProductNameEn: it.ProductNameEn,
				Quantity:      it.Quantity,
				Unit:          it.Unit,
				UnitEn:        it.UnitEn,
				PricePerUnit:  price,
			})
		}
		order.Recalculate()
		if err := order.Validate(); err != nil {
			return Dataset{}, fmt.Errorf("seed order %s: %w", o.ID, err)
		}
		ds.Orders = append(ds.Orders, order)
	}

	return ds, nil
}
