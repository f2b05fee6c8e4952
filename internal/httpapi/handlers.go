package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"rawbazaar/backend/internal/domain"
)

func (a *API) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if !a.sessionLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many session requests"))
		return
	}

	var req domain.SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := a.service.StartSession(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	actor := domain.Actor{UserID: user.ID, UserType: user.UserType}
	token, expiresAt, err := a.sessions.Issue(actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, domain.SessionResponse{
		AccessToken: token,
		Actor:       actor,
		User:        user,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	})
}

func (a *API) handleSessionCurrent(w http.ResponseWriter, r *http.Request) {
	user, err := a.service.CurrentUser(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"actor": a.service.Actor(r.Context()),
		"user":  user,
	})
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.service.Users(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// handleProductList serves the whole catalogue, one supplier's products
// (?supplier_id=) or the caller's filtered view (?filtered=true).
func (a *API) handleProductList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		products []domain.Product
		err      error
	)
	switch {
	case query.Get("supplier_id") != "":
		supplierID, perr := parseID(query.Get("supplier_id"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr)
			return
		}
		products, err = a.service.SupplierProducts(r.Context(), supplierID)
	case query.Get("filtered") == "true":
		products, err = a.service.BrowseProducts(r.Context())
	default:
		products, err = a.service.ListProducts(r.Context())
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	limit := parsePositiveLimit(query.Get("limit"), len(products), 500)
	if limit < len(products) {
		products = products[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (a *API) handleProductGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req domain.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	product, err := a.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

func (a *API) handleStockUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req domain.StockUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	product, err := a.service.UpdateStock(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleFilterGet(w http.ResponseWriter, r *http.Request) {
	criteria, err := a.service.Filter(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filter": criteria})
}

func (a *API) handleFilterUpdate(w http.ResponseWriter, r *http.Request) {
	var req domain.FilterUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	criteria, err := a.service.UpdateFilter(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filter": criteria})
}

func (a *API) handleCartGet(w http.ResponseWriter, r *http.Request) {
	cart, err := a.service.Cart(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (a *API) handleCartClear(w http.ResponseWriter, r *http.Request) {
	if err := a.service.ClearCart(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	a.handleCartGet(w, r)
}

func (a *API) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var req domain.CartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	cart, err := a.service.AddToCart(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (a *API) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cart, err := a.service.RemoveFromCart(r.Context(), productID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (a *API) handleFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := a.service.Favorites(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

func (a *API) handleFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	favorites, err := a.service.ToggleFavorite(r.Context(), productID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

func (a *API) handleOrderList(w http.ResponseWriter, r *http.Request) {
	orders, err := a.service.ListOrders(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (a *API) handleOrderPlace(w http.ResponseWriter, r *http.Request) {
	var req domain.PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	result, err := a.service.PlaceOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (a *API) handleOrderGet(w http.ResponseWriter, r *http.Request) {
	order, err := a.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (a *API) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	order, err := a.service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// notificationView adds the title and message in the negotiated language.
type notificationView struct {
	domain.Notification
	DisplayTitle   string `json:"display_title"`
	DisplayMessage string `json:"display_message"`
}

func (a *API) handleNotificationList(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.Notifications(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	lang := a.language(r)
	hindi := lang == language.Hindi
	items := make([]notificationView, 0, len(list.Items))
	for _, n := range list.Items {
		view := notificationView{Notification: n, DisplayTitle: n.TitleEn, DisplayMessage: n.MessageEn}
		if hindi {
			view.DisplayTitle, view.DisplayMessage = n.Title, n.Message
		}
		items = append(items, view)
	}

	limit := parsePositiveLimit(r.URL.Query().Get("limit"), len(items), 200)
	if limit < len(items) {
		items = items[:limit]
	}
	w.Header().Set("Content-Language", lang.String())
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": items,
		"unread_count":  list.UnreadCount,
	})
}

func (a *API) handleNotificationClear(w http.ResponseWriter, r *http.Request) {
	removed, err := a.service.ClearNotifications(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (a *API) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := a.service.MarkNotificationRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleSupplierAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := a.service.SupplierAnalytics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analytics": analytics})
}

func (a *API) handleVendorSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.VendorSummary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}
