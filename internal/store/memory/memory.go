package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"rawbazaar/backend/internal/domain"
	"rawbazaar/backend/internal/seed"
	"rawbazaar/backend/internal/store"
	"rawbazaar/backend/internal/xid"
)

type Store struct {
	mu               sync.RWMutex
	now              func() time.Time
	users            []domain.User
	currentUser      *domain.User
	products         []domain.Product
	orders           []domain.Order
	orderSeq         int
	notifications    []domain.Notification
	sessions         map[string]*session
	defaultFavorites []int64
}

type session struct {
	cart      domain.Cart
	favorites []int64
	filter    domain.FilterCriteria
}

type Option func(*Store)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(ds seed.Dataset, opts ...Option) *Store {
	s := &Store{
		now:              time.Now,
		users:            slices.Clone(ds.Users),
		products:         cloneProducts(ds.Products),
		orders:           cloneOrders(ds.Orders),
		notifications:    []domain.Notification{},
		sessions:         make(map[string]*session),
		defaultFavorites: slices.Clone(ds.Favorites),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.orderSeq = maxOrderSeq(s.orders)
	return s
}

func NewSeeded(opts ...Option) *Store {
	return New(seed.MustLoad(time.Now()), opts...)
}

// FromBlob restores a store from a saved snapshot. A missing or unreadable
// blob yields the seeded store and ok=false.
func FromBlob(blob []byte, opts ...Option) (*Store, bool) {
	s := NewSeeded(opts...)
	if len(blob) == 0 {
		return s, false
	}
	snap, err := store.Decode(blob)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot unreadable, using seed dataset")
		return s, false
	}
	s.restore(snap)
	return s, true
}

func (s *Store) restore(snap store.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = cloneProducts(snap.Products)
	s.orders = cloneOrders(snap.Orders)
	s.notifications = slices.Clone(snap.Notifications)
	if s.notifications == nil {
		s.notifications = []domain.Notification{}
	}
	if snap.CurrentUser != nil {
		u := *snap.CurrentUser
		s.currentUser = &u
	}
	s.sessions = make(map[string]*session, len(snap.Sessions))
	for key, sess := range snap.Sessions {
		cart := sess.Cart.Clone()
		favorites := slices.Clone(sess.Favorites)
		if favorites == nil {
			favorites = []int64{}
		}
		s.sessions[key] = &session{cart: cart, favorites: favorites, filter: domain.DefaultFilter()}
	}
	s.orderSeq = max(snap.OrderSeq, maxOrderSeq(s.orders))
}

func (s *Store) Snapshot(_ context.Context) (store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := store.Snapshot{
		Version:       store.SnapshotVersion,
		Products:      cloneProducts(s.products),
		Orders:        cloneOrders(s.orders),
		Notifications: slices.Clone(s.notifications),
		Sessions:      make(map[string]store.Session, len(s.sessions)),
		OrderSeq:      s.orderSeq,
	}
	if s.currentUser != nil {
		u := *s.currentUser
		snap.CurrentUser = &u
	}
	for key, sess := range s.sessions {
		snap.Sessions[key] = store.Session{
			Cart:      sess.cart.Clone(),
			Favorites: slices.Clone(sess.favorites),
		}
	}
	return snap, nil
}

func (s *Store) Users(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users), nil
}

func (s *Store) User(_ context.Context, userType domain.UserType, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.UserType == userType && u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

// SetCurrentUser stores the last session user for snapshots only.
func (s *Store) SetCurrentUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.currentUser = nil
		return nil
	}
	u := *user
	s.currentUser = &u
	return nil
}

// CurrentUser returns the last session user, or nil before any session.
func (s *Store) CurrentUser(_ context.Context) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil, nil
	}
	u := *s.currentUser
	return &u, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products), nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.productIndex(id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	p := s.products[idx]
	return &p, nil
}

func (s *Store) AddProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, p := range s.products {
		maxID = max(maxID, p.ID)
	}
	now := s.now().UTC()
	product.ID = maxID + 1
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.MinOrderQuantity == 0 {
		product.MinOrderQuantity = 1
	}
	product.SyncStock()
	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}

	s.products = append(s.products, product)
	created := product
	return &created, nil
}

// UpdateProduct merges patch into the product. It returns nil, nil when the
// product does not exist.
func (s *Store) UpdateProduct(_ context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(id)
	if idx < 0 {
		return nil, nil
	}
	next := s.products[idx]
	next.Apply(patch)
	next.ID = id
	next.SyncStock()
	next.UpdatedAt = s.now().UTC()
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}

	s.products[idx] = next
	return &next, nil
}

// DeleteProduct removes the product. Orders, carts and favorites that
// reference it are left alone.
func (s *Store) DeleteProduct(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(id)
	if idx < 0 {
		return false, nil
	}
	s.products = slices.Delete(s.products, idx, idx+1)
	return true, nil
}

func (s *Store) UpdateStock(_ context.Context, id int64, stock int) (*domain.Product, error) {
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(id)
	if idx < 0 {
		return nil, nil
	}
	p := &s.products[idx]
	p.Stock = stock
	p.InStock = stock > 0
	if stock > 0 {
		p.Status = domain.ProductActive
	} else {
		p.Status = domain.ProductOutOfStock
	}
	p.UpdatedAt = s.now().UTC()

	updated := *p
	return &updated, nil
}

func (s *Store) ListOrders(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.orders), nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.orderIndex(id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	o := cloneOrder(s.orders[idx])
	return &o, nil
}

func (s *Store) AddOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepared, err := s.prepareOrder(order, s.orderSeq+1)
	if err != nil {
		return nil, err
	}
	s.orderSeq++
	s.orders = append(s.orders, prepared)
	out := cloneOrder(prepared)
	return &out, nil
}

// UpdateOrderStatus moves an order along the status table. Re-applying the
// current status changes nothing; a missing order yields nil, nil.
func (s *Store) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", store.ErrInvalidInput, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.orderIndex(id)
	if idx < 0 {
		return nil, nil
	}
	o := &s.orders[idx]
	if o.Status != status {
		if !o.Status.CanTransitionTo(status) {
			return nil, fmt.Errorf("%w: %s to %s", store.ErrInvalidTransition, o.Status, status)
		}
		o.Status = status
		o.UpdatedAt = s.now().UTC()
	}
	out := cloneOrder(*o)
	return &out, nil
}

func (s *Store) Cart(_ context.Context, actor domain.Actor) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(actor).cart.Clone(), nil
}

func (s *Store) AddToCart(_ context.Context, actor domain.Actor, productID int64, qty int) (domain.Cart, error) {
	if productID <= 0 || qty < 0 {
		return nil, fmt.Errorf("%w: invalid product id or quantity", store.ErrInvalidInput)
	}
	if qty == 0 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(actor)
	sess.cart[productID] += qty
	return sess.cart.Clone(), nil
}

// RemoveFromCart decrements the quantity by one, floored at zero. The entry
// is kept with quantity zero.
func (s *Store) RemoveFromCart(_ context.Context, actor domain.Actor, productID int64) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(actor)
	sess.cart[productID] = max(sess.cart[productID]-1, 0)
	return sess.cart.Clone(), nil
}

func (s *Store) ClearCart(_ context.Context, actor domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(actor).cart = domain.Cart{}
	return nil
}

func (s *Store) Favorites(_ context.Context, actor domain.Actor) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.session(actor).favorites), nil
}

func (s *Store) ToggleFavorite(_ context.Context, actor domain.Actor, productID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(actor)
	if idx := slices.Index(sess.favorites, productID); idx >= 0 {
		sess.favorites = slices.Delete(sess.favorites, idx, idx+1)
	} else {
		sess.favorites = append(sess.favorites, productID)
	}
	return slices.Clone(sess.favorites), nil
}

// ListNotifications returns notifications newest first.
func (s *Store) ListNotifications(_ context.Context) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notifications), nil
}

func (s *Store) AddNotification(_ context.Context, n domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepared, err := s.prepareNotification(n)
	if err != nil {
		return nil, err
	}
	s.notifications = slices.Insert(s.notifications, 0, prepared)
	return &prepared, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ClearNotifications(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = []domain.Notification{}
	return nil
}

// ClearNotificationsFor removes only the notifications addressed to actor.
func (s *Store) ClearNotificationsFor(_ context.Context, actor domain.Actor) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.notifications)
	s.notifications = slices.DeleteFunc(s.notifications, func(n domain.Notification) bool {
		return n.UserID == actor.UserID && n.Audience == actor.UserType
	})
	return before - len(s.notifications), nil
}

func (s *Store) Filter(_ context.Context, actor domain.Actor) (domain.FilterCriteria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(actor).filter, nil
}

func (s *Store) SetSearchQuery(_ context.Context, actor domain.Actor, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(actor).filter.Search = query
	return nil
}

func (s *Store) SetSelectedCategory(_ context.Context, actor domain.Actor, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(actor).filter.Category = category
	return nil
}

// SetPriceRange stores [min, max]. Negative bounds are clamped to zero and
// reversed bounds are swapped.
func (s *Store) SetPriceRange(_ context.Context, actor domain.Actor, priceMin, priceMax decimal.Decimal) error {
	if priceMin.IsNegative() {
		priceMin = decimal.Zero
	}
	if priceMax.IsNegative() {
		priceMax = decimal.Zero
	}
	if priceMin.GreaterThan(priceMax) {
		priceMin, priceMax = priceMax, priceMin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f := &s.session(actor).filter
	f.PriceMin = priceMin
	f.PriceMax = priceMax
	return nil
}

// CommitPlacement runs plan against the actor's cart and commits every
// resulting order and notification, then clears the cart. Nothing is
// committed when plan fails or any order or notification is invalid.
func (s *Store) CommitPlacement(_ context.Context, actor domain.Actor, plan store.PlacementFunc) ([]domain.Order, []domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(actor)
	orders, notifications, err := plan(sess.cart.Clone(), cloneProducts(s.products))
	if err != nil {
		return nil, nil, err
	}
	if len(orders) == 0 {
		return nil, nil, store.ErrEmptyCart
	}

	prepared := make([]domain.Order, 0, len(orders))
	for i, o := range orders {
		p, err := s.prepareOrder(o, s.orderSeq+1+i)
		if err != nil {
			return nil, nil, err
		}
		prepared = append(prepared, p)
	}
	notes := make([]domain.Notification, 0, len(notifications))
	for _, n := range notifications {
		p, err := s.prepareNotification(n)
		if err != nil {
			return nil, nil, err
		}
		notes = append(notes, p)
	}

	s.orderSeq += len(prepared)
	s.orders = append(s.orders, prepared...)
	for _, n := range notes {
		s.notifications = slices.Insert(s.notifications, 0, n)
	}
	sess.cart = domain.Cart{}

	return cloneOrders(prepared), slices.Clone(notes), nil
}

func (s *Store) prepareOrder(order domain.Order, seq int) (domain.Order, error) {
	now := s.now().UTC()
	order = cloneOrder(order)
	order.ID = fmt.Sprintf("ORD%03d", seq)
	order.Status = domain.OrderPending
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Recalculate()
	if err := order.Validate(); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}
	return order, nil
}

func (s *Store) prepareNotification(n domain.Notification) (domain.Notification, error) {
	n.ID = xid.New("NOTIF")
	n.CreatedAt = s.now().UTC()
	n.IsRead = false
	if err := n.Validate(); err != nil {
		return domain.Notification{}, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}
	return n, nil
}

// session must be called with s.mu held for writing.
func (s *Store) session(actor domain.Actor) *session {
	key := actor.Key()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{
			cart:      domain.Cart{},
			favorites: slices.Clone(s.defaultFavorites),
			filter:    domain.DefaultFilter(),
		}
		if sess.favorites == nil {
			sess.favorites = []int64{}
		}
		s.sessions[key] = sess
	}
	return sess
}

func (s *Store) productIndex(id int64) int {
	return slices.IndexFunc(s.products, func(p domain.Product) bool { return p.ID == id })
}

func (s *Store) orderIndex(id string) int {
	id = strings.TrimSpace(id)
	return slices.IndexFunc(s.orders, func(o domain.Order) bool { return o.ID == id })
}

func maxOrderSeq(orders []domain.Order) int {
	seq := len(orders)
	for _, o := range orders {
		n, err := strconv.Atoi(strings.TrimPrefix(o.ID, "ORD"))
		if err == nil && n > seq {
			seq = n
		}
	}
	return seq
}

func cloneProducts(in []domain.Product) []domain.Product {
	if in == nil {
		return []domain.Product{}
	}
	return slices.Clone(in)
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func cloneOrders(in []domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(in))
	for _, o := range in {
		out = append(out, cloneOrder(o))
	}
	return out
}

var _ store.Repository = (*Store)(nil)

// Load reads the snapshot saved under key and restores a store from it. Any
// load failure falls back to the seed dataset; only a missing snapshot is
// silent.
func Load(ctx context.Context, blobs store.BlobStore, key string, opts ...Option) (*Store, bool) {
	blob, err := blobs.LoadBlob(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("snapshot load failed, using seed dataset")
		}
		return NewSeeded(opts...), false
	}
	return FromBlob(blob, opts...)
}
