package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"rawbazaar/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrForbidden         = errors.New("forbidden")
)

// BlobStore saves and loads opaque snapshots by key. LoadBlob returns
// ErrNotFound when nothing has been saved under key.
type BlobStore interface {
	LoadBlob(ctx context.Context, key string) ([]byte, error)
	SaveBlob(ctx context.Context, key string, blob []byte) error
}

// PlacementFunc builds the orders and notifications for a cart. It runs while
// the repository holds its write lock, so it must not call back into it.
type PlacementFunc func(cart domain.Cart, products []domain.Product) ([]domain.Order, []domain.Notification, error)

type Repository interface {
	Users(ctx context.Context) ([]domain.User, error)
	User(ctx context.Context, userType domain.UserType, id int64) (*domain.User, error)
	// SetCurrentUser and CurrentUser record the user who last started a
	// session so snapshots carry it. Requests never resolve their actor
	// from it; the actor comes from the request context.
	SetCurrentUser(ctx context.Context, user *domain.User) error
	CurrentUser(ctx context.Context) (*domain.User, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	AddProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
	UpdateStock(ctx context.Context, id int64, stock int) (*domain.Product, error)

	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	AddOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)

	Cart(ctx context.Context, actor domain.Actor) (domain.Cart, error)
	AddToCart(ctx context.Context, actor domain.Actor, productID int64, qty int) (domain.Cart, error)
	RemoveFromCart(ctx context.Context, actor domain.Actor, productID int64) (domain.Cart, error)
	ClearCart(ctx context.Context, actor domain.Actor) error

	Favorites(ctx context.Context, actor domain.Actor) ([]int64, error)
	ToggleFavorite(ctx context.Context, actor domain.Actor, productID int64) ([]int64, error)

	ListNotifications(ctx context.Context) ([]domain.Notification, error)
	AddNotification(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (bool, error)
	ClearNotifications(ctx context.Context) error
	ClearNotificationsFor(ctx context.Context, actor domain.Actor) (int, error)

	Filter(ctx context.Context, actor domain.Actor) (domain.FilterCriteria, error)
	SetSearchQuery(ctx context.Context, actor domain.Actor, query string) error
	SetSelectedCategory(ctx context.Context, actor domain.Actor, category string) error
	SetPriceRange(ctx context.Context, actor domain.Actor, priceMin, priceMax decimal.Decimal) error

	CommitPlacement(ctx context.Context, actor domain.Actor, plan PlacementFunc) ([]domain.Order, []domain.Notification, error)

	Snapshot(ctx context.Context) (Snapshot, error)
}

const SnapshotVersion = 1

type Session struct {
	Cart      domain.Cart `json:"cart"`
	Favorites []int64     `json:"favorites"`
}

// Snapshot is the persisted subset of marketplace state. Filter criteria and
// derived views are not part of it.
type Snapshot struct {
	Version       int                   `json:"version"`
	CurrentUser   *domain.User          `json:"current_user"`
	Products      []domain.Product      `json:"products"`
	Orders        []domain.Order        `json:"orders"`
	Notifications []domain.Notification `json:"notifications"`
	Sessions      map[string]Session    `json:"sessions"`
	OrderSeq      int                   `json:"order_seq"`
}

func Encode(s Snapshot) ([]byte, error) {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	return json.Marshal(s)
}

func Decode(blob []byte) (Snapshot, error) {
	var s Snapshot
	if len(blob) == 0 {
		return s, fmt.Errorf("decode snapshot: %w", ErrNotFound)
	}
	if err := json.Unmarshal(blob, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("decode snapshot: unsupported version %d", s.Version)
	}
	return s, nil
}
