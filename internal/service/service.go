package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"rawbazaar/backend/internal/domain"
	"rawbazaar/backend/internal/i18n"
	"rawbazaar/backend/internal/metrics"
	"rawbazaar/backend/internal/store"
	"rawbazaar/backend/internal/views"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const (
	defaultSnapshotKey = "rawbazaar:snapshot"
	saveTimeout        = 3 * time.Second
	topProductsLimit   = 5
)

type Service struct {
	repo         store.Repository
	texts        i18n.Catalog
	blobs        store.BlobStore
	snapshotKey  string
	metrics      *metrics.Recorder
	defaultActor domain.Actor

	// saveMu orders snapshot-and-write pairs so an older snapshot never
	// lands after a newer one.
	saveMu sync.Mutex
}

type Option func(*Service)

// WithSnapshots enables autosave of the full state after each mutation.
func WithSnapshots(blobs store.BlobStore, key string) Option {
	return func(s *Service) {
		s.blobs = blobs
		if key != "" {
			s.snapshotKey = key
		}
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDefaultActor sets the identity used when a context carries none.
func WithDefaultActor(actor domain.Actor) Option {
	return func(s *Service) {
		if actor.Valid() {
			s.defaultActor = actor
		}
	}
}

func New(repo store.Repository, texts i18n.Catalog, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		texts:        texts,
		snapshotKey:  defaultSnapshotKey,
		defaultActor: domain.Actor{UserID: 1, UserType: domain.UserVendor},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) DefaultActor() domain.Actor {
	return s.defaultActor
}

// Actor returns the identity the request acts as.
func (s *Service) Actor(ctx context.Context) domain.Actor {
	if actor, ok := ActorFromContext(ctx); ok && actor.Valid() {
		return actor
	}
	return s.defaultActor
}

func (s *Service) requireRole(ctx context.Context, role domain.UserType) (domain.Actor, error) {
	actor := s.Actor(ctx)
	if actor.UserType != role {
		return domain.Actor{}, fmt.Errorf("%w: %s role required", store.ErrForbidden, role)
	}
	return actor, nil
}

// Users lists the demo directory.
func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	return s.repo.Users(ctx)
}

// StartSession switches the current user to a directory user.
func (s *Service) StartSession(ctx context.Context, req domain.SessionRequest) (domain.User, error) {
	if err := domain.Validate(req); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}
	user, err := s.repo.User(ctx, req.UserType, req.UserID)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.repo.SetCurrentUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.persist(ctx)

	log.Info().Str("actor", domain.Actor{UserID: user.ID, UserType: user.UserType}.Key()).Msg("session started")
	return *user, nil
}

// CurrentUser returns the directory entry of the acting identity.
func (s *Service) CurrentUser(ctx context.Context) (domain.User, error) {
	actor := s.Actor(ctx)
	user, err := s.repo.User(ctx, actor.UserType, actor.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: unknown user %s", store.ErrForbidden, actor.Key())
		}
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

// BrowseProducts applies the actor's saved filter criteria to the catalogue.
func (s *Service) BrowseProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	criteria, err := s.repo.Filter(ctx, s.Actor(ctx))
	if err != nil {
		return nil, err
	}
	return views.FilterProducts(products, criteria), nil
}

func (s *Service) SupplierProducts(ctx context.Context, supplierID int64) ([]domain.Product, error) {
	if supplierID < 1 {
		return nil, store.ErrInvalidInput
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return views.ProductsBySupplier(products, supplierID), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, err := s.requireRole(ctx, domain.UserSupplier)
	if err != nil {
		return domain.Product{}, err
	}
	if err := domain.Validate(req); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}
	supplier, err := s.CurrentUser(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		Name:             strings.TrimSpace(req.Name),
		NameEn:           strings.TrimSpace(req.NameEn),
		Supplier:         supplier.BusinessName,
		SupplierEn:       supplier.BusinessNameEn,
		SupplierID:       actor.UserID,
		Price:            req.Price,
		Unit:             req.Unit,
		UnitEn:           req.UnitEn,
		Location:         firstNonEmpty(req.Location, supplier.Location),
		LocationEn:       firstNonEmpty(req.LocationEn, supplier.LocationEn),
		Image:            req.Image,
		Stock:            req.Stock,
		Description:      req.Description,
		DescriptionEn:    req.DescriptionEn,
		Category:         req.Category,
		CategoryEn:       req.CategoryEn,
		MinOrderQuantity: req.MinOrderQuantity,
	}

	created, err := s.repo.AddProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.notify(ctx, actor, domain.NotificationSystem, i18n.KeyProductAddedTitle, nil,
		i18n.KeyProductAddedMessage, []any{created.Name, created.NameEn}, "")
	s.persist(ctx)

	log.Info().Int64("product_id", created.ID).Int64("supplier_id", actor.UserID).Msg("product created")
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (domain.Product, error) {
	actor, err := s.ownProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := domain.Validate(req); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}

	patch := domain.ProductPatch{
		Name:             trimmed(req.Name),
		NameEn:           trimmed(req.NameEn),
		Price:            req.Price,
		Unit:             req.Unit,
		UnitEn:           req.UnitEn,
		Description:      req.Description,
		DescriptionEn:    req.DescriptionEn,
		Category:         req.Category,
		CategoryEn:       req.CategoryEn,
		Location:         req.Location,
		LocationEn:       req.LocationEn,
		Image:            req.Image,
		Status:           req.Status,
		MinOrderQuantity: req.MinOrderQuantity,
	}
	updated, err := s.repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		return domain.Product{}, err
	}
	if updated == nil {
		return domain.Product{}, store.ErrNotFound
	}

	s.notify(ctx, actor, domain.NotificationSystem, i18n.KeyProductUpdatedTitle, nil,
		i18n.KeyProductUpdatedMessage, []any{updated.Name, updated.NameEn}, "")
	s.persist(ctx)
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	actor, err := s.ownProduct(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return store.ErrNotFound
	}

	s.notify(ctx, actor, domain.NotificationSystem, i18n.KeyProductDeletedTitle, nil,
		i18n.KeyProductDeletedMessage, nil, "")
	s.persist(ctx)

	log.Info().Int64("product_id", id).Int64("supplier_id", actor.UserID).Msg("product deleted")
	return nil
}

func (s *Service) UpdateStock(ctx context.Context, id int64, req domain.StockUpdateRequest) (domain.Product, error) {
	actor, err := s.ownProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := domain.Validate(req); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}

	updated, err := s.repo.UpdateStock(ctx, id, *req.Stock)
	if err != nil {
		return domain.Product{}, err
	}
	if updated == nil {
		return domain.Product{}, store.ErrNotFound
	}

	s.notify(ctx, actor, domain.NotificationSystem, i18n.KeyStockUpdatedTitle, nil,
		i18n.KeyStockUpdatedMessage, []any{updated.Stock}, "")
	s.persist(ctx)
	return *updated, nil
}

// ownProduct checks that the acting supplier owns product id.
func (s *Service) ownProduct(ctx context.Context, id int64) (domain.Actor, error) {
	actor, err := s.requireRole(ctx, domain.UserSupplier)
	if err != nil {
		return domain.Actor{}, err
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Actor{}, err
	}
	if p.SupplierID != actor.UserID {
		return domain.Actor{}, fmt.Errorf("%w: product %d belongs to another supplier", store.ErrForbidden, id)
	}
	return actor, nil
}

// ListOrders returns the orders the actor placed or must fulfil.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return views.OrdersFor(s.Actor(ctx), orders), nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !isParty(s.Actor(ctx), *order) {
		return domain.Order{}, fmt.Errorf("%w: order %s", store.ErrForbidden, id)
	}
	return *order, nil
}

// UpdateOrderStatus lets the supplier fulfil an order and the vendor cancel
// it. The other party is notified of every actual change.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, req domain.OrderStatusRequest) (domain.Order, error) {
	if err := domain.Validate(req); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}
	actor := s.Actor(ctx)
	current, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !mayMoveTo(actor, *current, req.Status) {
		return domain.Order{}, fmt.Errorf("%w: %s may not set order %s to %s", store.ErrForbidden, actor.Key(), id, req.Status)
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		return domain.Order{}, err
	}
	if updated == nil {
		return domain.Order{}, store.ErrNotFound
	}
	if current.Status == updated.Status {
		return *updated, nil
	}

	s.notifyStatusChange(ctx, actor, *updated)
	s.persist(ctx)

	log.Info().
		Str("order_id", id).
		Str("from", string(current.Status)).
		Str("to", string(updated.Status)).
		Str("actor", actor.Key()).
		Msg("order status changed")
	return *updated, nil
}

func isParty(actor domain.Actor, o domain.Order) bool {
	switch actor.UserType {
	case domain.UserVendor:
		return o.VendorID == actor.UserID
	case domain.UserSupplier:
		return o.SupplierID == actor.UserID
	}
	return false
}

func mayMoveTo(actor domain.Actor, o domain.Order, target domain.OrderStatus) bool {
	if !isParty(actor, o) {
		return false
	}
	if actor.UserType == domain.UserVendor {
		return target == domain.OrderCancelled
	}
	return target != domain.OrderCancelled
}

func (s *Service) notifyStatusChange(ctx context.Context, actor domain.Actor, o domain.Order) {
	actionURL := "/orders/" + o.ID
	if o.Status == domain.OrderCancelled {
		vendor, err := s.repo.User(ctx, domain.UserVendor, o.VendorID)
		nameHi, nameEn := o.VendorName, o.VendorNameEn
		if err == nil {
			nameHi, nameEn = vendor.BusinessName, vendor.BusinessNameEn
		}
		s.notify(ctx, domain.Actor{UserID: o.SupplierID, UserType: domain.UserSupplier}, domain.NotificationOrder,
			i18n.KeyOrderCancelledTitle, nil, i18n.KeyOrderCancelledMessage, []any{nameHi, nameEn, o.ID}, actionURL)
		return
	}

	var titleKey, messageKey string
	kind := domain.NotificationOrder
	switch o.Status {
	case domain.OrderAccepted:
		titleKey, messageKey = i18n.KeyOrderAcceptedTitle, i18n.KeyOrderAcceptedMessage
	case domain.OrderRejected:
		titleKey, messageKey = i18n.KeyOrderRejectedTitle, i18n.KeyOrderRejectedMessage
	case domain.OrderInTransit:
		titleKey, messageKey = i18n.KeyOrderShippedTitle, i18n.KeyOrderShippedMessage
		kind = domain.NotificationDelivery
	case domain.OrderDelivered:
		titleKey, messageKey = i18n.KeyOrderDeliveredTitle, i18n.KeyOrderDeliveredMessage
		kind = domain.NotificationDelivery
	default:
		return
	}
	s.notify(ctx, domain.Actor{UserID: o.VendorID, UserType: domain.UserVendor}, kind,
		titleKey, nil, messageKey, []any{o.ID}, actionURL)
}

func (s *Service) Cart(ctx context.Context) (domain.CartView, error) {
	actor, err := s.requireRole(ctx, domain.UserVendor)
	if err != nil {
		return domain.CartView{}, err
	}
	cart, err := s.repo.Cart(ctx, actor)
	if err != nil {
		return domain.CartView{}, err
	}
	return s.cartView(ctx, cart)
}

func (s *Service) cartView(ctx context.Context, cart domain.Cart) (domain.CartView, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.CartView{}, err
	}
	lines := views.ResolveCart(cart, products)
	return domain.CartView{
		Lines:     lines,
		Groups:    views.GroupBySupplier(lines),
		ItemCount: views.CartItemCount(cart),
		Total:     views.CartTotal(cart, products),
	}, nil
}

func (s *Service) AddToCart(ctx context.Context, req domain.CartItemRequest) (domain.CartView, error) {
	actor, err := s.requireRole(ctx, domain.UserVendor)
	if err != nil {
		return domain.CartView{}, err
	}
	if err := domain.Validate(req); err != nil {
		return domain.CartView{}, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}
	if _, err := s.repo.GetProduct(ctx, req.ProductID); err != nil {
		return domain.CartView{}, err
	}

	cart, err := s.repo.AddToCart(ctx, actor, req.ProductID, req.Quantity)
	if err != nil {
		return domain.CartView{}, err
	}
	s.persist(ctx)
	return s.cartView(ctx, cart)
}

func (s *Service) RemoveFromCart(ctx context.Context, productID int64) (domain.CartView, error) {
	actor, err := s.requireRole(ctx, domain.UserVendor)
	if err != nil {
		return domain.CartView{}, err
	}
	if productID < 1 {
		return domain.CartView{}, store.ErrInvalidInput
	}
	cart, err := s.repo.RemoveFromCart(ctx, actor, productID)
	if err != nil {
		return domain.CartView{}, err
	}
	s.persist(ctx)
	return s.cartView(ctx, cart)
}

func (s *Service) ClearCart(ctx context.Context) error {
	actor, err := s.requireRole(ctx, domain.UserVendor)
	if err != nil {
		return err
	}
	if err := s.repo.ClearCart(ctx, actor); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

func (s *Service) Favorites(ctx context.Context) (domain.FavoritesView, error) {
	actor, err := s.requireRole(ctx, domain.UserVendor)
	if err != nil {
		return domain.FavoritesView{}, err
	}
	ids, err := s.repo.Favorites(ctx, actor)
	if err != nil {
		return domain.FavoritesView{}, err
	}
	return s.favoritesView(ctx, ids)
}

func (s *Service) ToggleFavorite(ctx context.Context, productID int64) (domain.FavoritesView, error) {
	actor, err := s.requireRole(ctx, domain.UserVendor)
	if err != nil {
		return domain.FavoritesView{}, err
	}
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return domain.FavoritesView{}, err
	}
	ids, err := s.repo.ToggleFavorite(ctx, actor, productID)
	if err != nil {
		return domain.FavoritesView{}, err
	}
	s.persist(ctx)
	return s.favoritesView(ctx, ids)
}

func (s *Service) favoritesView(ctx context.Context, ids []int64) (domain.FavoritesView, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.FavoritesView{}, err
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	view := domain.FavoritesView{ProductIDs: ids, Products: make([]domain.Product, 0, len(ids))}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			view.Products = append(view.Products, p)
		}
	}
	return view, nil
}

func (s *Service) Filter(ctx context.Context) (domain.FilterCriteria, error) {
	return s.repo.Filter(ctx, s.Actor(ctx))
}

// UpdateFilter changes only the criteria present in req.
func (s *Service) UpdateFilter(ctx context.Context, req domain.FilterUpdateRequest) (domain.FilterCriteria, error) {
	actor := s.Actor(ctx)
	if req.Search != nil {
		if err := s.repo.SetSearchQuery(ctx, actor, strings.TrimSpace(*req.Search)); err != nil {
			return domain.FilterCriteria{}, err
		}
	}
	if req.Category != nil {
		if err := s.repo.SetSelectedCategory(ctx, actor, strings.TrimSpace(*req.Category)); err != nil {
			return domain.FilterCriteria{}, err
		}
	}
	if req.PriceMin != nil || req.PriceMax != nil {
		current, err := s.repo.Filter(ctx, actor)
		if err != nil {
			return domain.FilterCriteria{}, err
		}
		priceMin, priceMax := current.PriceMin, current.PriceMax
		if req.PriceMin != nil {
			priceMin = *req.PriceMin
		}
		if req.PriceMax != nil {
			priceMax = *req.PriceMax
		}
		if err := s.repo.SetPriceRange(ctx, actor, priceMin, priceMax); err != nil {
			return domain.FilterCriteria{}, err
		}
	}
	return s.repo.Filter(ctx, actor)
}

// PlaceOrder turns the vendor's cart into one pending order per supplier,
// notifies every supplier and the vendor, then empties the cart. Nothing is
// committed unless every order is valid.
func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.PlaceOrderResult, error) {
	actor, err := s.requireRole(ctx, domain.UserVendor)
	if err != nil {
		return domain.PlaceOrderResult{}, err
	}
	vendor, err := s.CurrentUser(ctx)
	if err != nil {
		return domain.PlaceOrderResult{}, err
	}
	address := strings.TrimSpace(req.DeliveryAddress)
	notes := strings.TrimSpace(req.Notes)

	plan := func(cart domain.Cart, products []domain.Product) ([]domain.Order, []domain.Notification, error) {
		lines := views.ResolveCart(cart, products)
		if len(lines) == 0 {
			return nil, nil, store.ErrEmptyCart
		}
		req.DeliveryAddress = address
		if err := domain.Validate(req); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
		}

		groups := views.GroupBySupplier(lines)
		orders := make([]domain.Order, 0, len(groups))
		notifications := make([]domain.Notification, 0, len(groups)+1)
		grandTotal := decimal.Zero
		for _, g := range groups {
			order := buildOrder(vendor, g, address, notes)
			grandTotal = grandTotal.Add(order.Total)
			orders = append(orders, order)
			notifications = append(notifications, s.buildNotification(
				domain.Actor{UserID: g.SupplierID, UserType: domain.UserSupplier}, domain.NotificationOrder,
				i18n.KeyOrderReceivedTitle, nil,
				i18n.KeyOrderReceivedMessage, []any{vendor.BusinessName, vendor.BusinessNameEn, order.Total.String()},
				"/orders",
			))
		}
		notifications = append(notifications, s.buildNotification(
			actor, domain.NotificationOrder,
			i18n.KeyOrderPlacedTitle, nil,
			i18n.KeyOrderPlacedMessage, []any{grandTotal.String()},
			"/orders",
		))
		return orders, notifications, nil
	}

	orders, emitted, err := s.repo.CommitPlacement(ctx, actor, plan)
	if err != nil {
		return domain.PlaceOrderResult{}, err
	}

	result := domain.PlaceOrderResult{Orders: orders, GrandTotal: decimal.Zero, Notifications: emitted}
	for _, o := range orders {
		result.GrandTotal = result.GrandTotal.Add(o.Total)
	}
	s.metrics.OrdersPlaced(len(orders))
	for _, n := range emitted {
		s.metrics.NotificationEmitted(string(n.Type))
	}
	s.persist(ctx)

	log.Info().
		Str("actor", actor.Key()).
		Int("orders", len(orders)).
		Str("grand_total", result.GrandTotal.String()).
		Msg("orders placed")
	return result, nil
}

func buildOrder(vendor domain.User, g domain.SupplierGroup, address, notes string) domain.Order {
	items := make([]domain.OrderItem, 0, len(g.Lines))
	for _, line := range g.Lines {
		items = append(items, domain.OrderItem{
			ProductID:     line.Product.ID,
			ProductName:   line.Product.Name,
			ProductNameEn: line.Product.NameEn,
			Quantity:      line.Quantity,
			Unit:          line.Product.Unit,
			UnitEn:        line.Product.UnitEn,
			PricePerUnit:  line.Product.Price,
		})
	}
	order := domain.Order{
		VendorID:        vendor.ID,
		VendorName:      vendor.BusinessName,
		VendorNameEn:    vendor.BusinessNameEn,
		VendorPhone:     vendor.Phone,
		SupplierID:      g.SupplierID,
		SupplierName:    g.SupplierName,
		SupplierNameEn:  g.SupplierNameEn,
		Items:           items,
		Status:          domain.OrderPending,
		DeliveryAddress: address,
		Notes:           notes,
	}
	order.Recalculate()
	return order
}

func (s *Service) Notifications(ctx context.Context) (domain.NotificationList, error) {
	all, err := s.repo.ListNotifications(ctx)
	if err != nil {
		return domain.NotificationList{}, err
	}
	mine := views.NotificationsFor(s.Actor(ctx), all)
	return domain.NotificationList{Items: mine, UnreadCount: views.UnreadCount(mine)}, nil
}

// MarkNotificationRead only touches notifications addressed to the actor.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	all, err := s.repo.ListNotifications(ctx)
	if err != nil {
		return err
	}
	owned := false
	for _, n := range views.NotificationsFor(s.Actor(ctx), all) {
		if n.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		return store.ErrNotFound
	}

	marked, err := s.repo.MarkNotificationRead(ctx, id)
	if err != nil {
		return err
	}
	if !marked {
		return store.ErrNotFound
	}
	s.persist(ctx)
	return nil
}

func (s *Service) ClearNotifications(ctx context.Context) (int, error) {
	removed, err := s.repo.ClearNotificationsFor(ctx, s.Actor(ctx))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.persist(ctx)
	}
	return removed, nil
}

func (s *Service) SupplierAnalytics(ctx context.Context) (domain.SupplierAnalytics, error) {
	actor, err := s.requireRole(ctx, domain.UserSupplier)
	if err != nil {
		return domain.SupplierAnalytics{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.SupplierAnalytics{}, err
	}
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return domain.SupplierAnalytics{}, err
	}

	out := views.SupplierAnalytics(actor.UserID, products, orders)
	out.TopProducts = views.TopProducts(views.ProductsBySupplier(products, actor.UserID), topProductsLimit)
	return out, nil
}

func (s *Service) VendorSummary(ctx context.Context) (domain.VendorSummary, error) {
	actor, err := s.requireRole(ctx, domain.UserVendor)
	if err != nil {
		return domain.VendorSummary{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.VendorSummary{}, err
	}
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return domain.VendorSummary{}, err
	}
	cart, err := s.repo.Cart(ctx, actor)
	if err != nil {
		return domain.VendorSummary{}, err
	}
	favorites, err := s.repo.Favorites(ctx, actor)
	if err != nil {
		return domain.VendorSummary{}, err
	}
	return views.VendorSummary(actor.UserID, orders, cart, favorites, products), nil
}

func (s *Service) buildNotification(to domain.Actor, kind domain.NotificationType, titleKey string, titleArgs []any, messageKey string, messageArgs []any, actionURL string) domain.Notification {
	title, titleEn := i18n.Pair(s.texts, titleKey, titleArgs...)
	message, messageEn := i18n.Pair(s.texts, messageKey, messageArgs...)
	return domain.Notification{
		UserID:    to.UserID,
		Audience:  to.UserType,
		Title:     title,
		TitleEn:   titleEn,
		Message:   message,
		MessageEn: messageEn,
		Type:      kind,
		ActionURL: actionURL,
	}
}

// notify records a notification for to. Failures are logged; the mutation
// that triggered it has already happened.
func (s *Service) notify(ctx context.Context, to domain.Actor, kind domain.NotificationType, titleKey string, titleArgs []any, messageKey string, messageArgs []any, actionURL string) {
	n := s.buildNotification(to, kind, titleKey, titleArgs, messageKey, messageArgs, actionURL)
	if _, err := s.repo.AddNotification(ctx, n); err != nil {
		log.Warn().Err(err).Str("to", to.Key()).Str("key", titleKey).Msg("notification dropped")
		return
	}
	s.metrics.NotificationEmitted(string(kind))
}

// persist saves a snapshot of the whole state. It is best effort: a failed
// save is logged and counted but never fails the caller.
func (s *Service) persist(ctx context.Context) {
	if s.blobs == nil {
		return
	}
	err := s.save(ctx)
	s.metrics.SnapshotSaved(err)
	if err != nil {
		log.Warn().Err(err).Str("key", s.snapshotKey).Msg("snapshot autosave failed")
	}
}

func (s *Service) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return err
	}
	blob, err := store.Encode(snap)
	if err != nil {
		return err
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	return s.blobs.SaveBlob(saveCtx, s.snapshotKey, blob)
}

// Save writes a snapshot immediately and reports the outcome.
func (s *Service) Save(ctx context.Context) error {
	if s.blobs == nil {
		return nil
	}
	err := s.save(ctx)
	s.metrics.SnapshotSaved(err)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
