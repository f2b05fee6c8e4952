// Package views computes read-only projections over marketplace state.
// Nothing here mutates its inputs or is persisted.
package views

import (
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"rawbazaar/backend/internal/domain"
)

// AllCategories is accepted as "no category filter".
const AllCategories = "all"

// FilterProducts keeps the products matching every set criterion, in their
// original order.
func FilterProducts(products []domain.Product, criteria domain.FilterCriteria) []domain.Product {
	folder := cases.Fold()
	search := folder.String(strings.TrimSpace(criteria.Search))
	category := strings.TrimSpace(criteria.Category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}
	foldedCategory := folder.String(category)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !matchesSearch(folder, p, search) {
			continue
		}
		if category != "" && p.Category != category && folder.String(p.CategoryEn) != foldedCategory {
			continue
		}
		if p.Price.LessThan(criteria.PriceMin) || p.Price.GreaterThan(criteria.PriceMax) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(folder cases.Caser, p domain.Product, search string) bool {
	for _, field := range []string{p.Name, p.NameEn, p.Supplier, p.SupplierEn} {
		if strings.Contains(folder.String(field), search) {
			return true
		}
	}
	return false
}

// CartTotal sums price × quantity over cart entries whose product still exists.
func CartTotal(cart domain.Cart, products []domain.Product) decimal.Decimal {
	byID := indexProducts(products)
	total := decimal.Zero
	for id, qty := range cart {
		p, ok := byID[id]
		if !ok || qty <= 0 {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

func CartItemCount(cart domain.Cart) int {
	count := 0
	for _, qty := range cart {
		count += qty
	}
	return count
}

// ResolveCart turns cart entries into lines, dropping zero quantities and
// products that no longer exist. Lines are ordered by product id.
func ResolveCart(cart domain.Cart, products []domain.Product) []domain.CartLine {
	byID := indexProducts(products)
	ids := make([]int64, 0, len(cart))
	for id, qty := range cart {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	lines := make([]domain.CartLine, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		qty := cart[id]
		lines = append(lines, domain.CartLine{
			Product:   p,
			Quantity:  qty,
			LineTotal: p.Price.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return lines
}

// GroupBySupplier partitions lines by supplier id, in order of each
// supplier's first appearance.
func GroupBySupplier(lines []domain.CartLine) []domain.SupplierGroup {
	groups := make([]domain.SupplierGroup, 0)
	index := make(map[int64]int)
	for _, line := range lines {
		idx, ok := index[line.Product.SupplierID]
		if !ok {
			idx = len(groups)
			index[line.Product.SupplierID] = idx
			groups = append(groups, domain.SupplierGroup{
				SupplierID:     line.Product.SupplierID,
				SupplierName:   line.Product.Supplier,
				SupplierNameEn: line.Product.SupplierEn,
				Subtotal:       decimal.Zero,
			})
		}
		groups[idx].Lines = append(groups[idx].Lines, line)
		groups[idx].Subtotal = groups[idx].Subtotal.Add(line.LineTotal)
	}
	return groups
}

// SupplierAnalytics aggregates a supplier's products and orders. The top
// seller is the first product with the highest sold count.
func SupplierAnalytics(supplierID int64, products []domain.Product, orders []domain.Order) domain.SupplierAnalytics {
	out := domain.SupplierAnalytics{
		SupplierID:        supplierID,
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}

	for _, p := range products {
		if p.SupplierID != supplierID {
			continue
		}
		out.TotalUnitsSold += p.Sold
		if p.Status == domain.ProductActive {
			out.ActiveProducts++
		}
		if out.TopSeller == nil || p.Sold > out.TopSeller.Sold {
			top := p
			out.TopSeller = &top
		}
	}

	for _, o := range orders {
		if o.SupplierID != supplierID {
			continue
		}
		out.TotalOrders++
		out.TotalRevenue = out.TotalRevenue.Add(o.Total)
		if o.Status == domain.OrderPending {
			out.PendingOrders++
		}
	}

	out.AverageOrderValue = out.TotalRevenue.Div(decimal.NewFromInt(int64(max(out.TotalOrders, 1)))).Floor()
	return out
}

// VendorSummary aggregates a vendor's orders together with their cart and favorites.
func VendorSummary(vendorID int64, orders []domain.Order, cart domain.Cart, favorites []int64, products []domain.Product) domain.VendorSummary {
	out := domain.VendorSummary{
		VendorID:   vendorID,
		TotalSpent: decimal.Zero,
		CartItems:  CartItemCount(cart),
		CartTotal:  CartTotal(cart, products),
		Favorites:  len(favorites),
	}
	for _, o := range orders {
		if o.VendorID != vendorID {
			continue
		}
		out.TotalOrders++
		switch o.Status {
		case domain.OrderPending:
			out.PendingOrders++
		case domain.OrderDelivered:
			out.Delivered++
		}
		if o.Status != domain.OrderRejected && o.Status != domain.OrderCancelled {
			out.TotalSpent = out.TotalSpent.Add(o.Total)
		}
	}
	return out
}

// TopProducts ranks products by units sold, highest first. Ties keep catalogue order.
func TopProducts(products []domain.Product, limit int) []domain.TopProduct {
	ranked := slices.Clone(products)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Sold > ranked[j].Sold
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]domain.TopProduct, 0, len(ranked))
	for _, p := range ranked {
		out = append(out, domain.TopProduct{
			ProductID:        p.ID,
			Name:             p.Name,
			NameEn:           p.NameEn,
			Sold:             p.Sold,
			EstimatedRevenue: p.Price.Mul(decimal.NewFromInt(int64(p.Sold))),
		})
	}
	return out
}

func ProductsBySupplier(products []domain.Product, supplierID int64) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.SupplierID == supplierID {
			out = append(out, p)
		}
	}
	return out
}

// OrdersFor returns the orders visible to actor: placed by a vendor or
// addressed to a supplier.
func OrdersFor(actor domain.Actor, orders []domain.Order) []domain.Order {
	out := make([]domain.Order, 0)
	for _, o := range orders {
		switch actor.UserType {
		case domain.UserVendor:
			if o.VendorID == actor.UserID {
				out = append(out, o)
			}
		case domain.UserSupplier:
			if o.SupplierID == actor.UserID {
				out = append(out, o)
			}
		}
	}
	return out
}

func NotificationsFor(actor domain.Actor, notifications []domain.Notification) []domain.Notification {
	out := make([]domain.Notification, 0)
	for _, n := range notifications {
		if n.UserID == actor.UserID && n.Audience == actor.UserType {
			out = append(out, n)
		}
	}
	return out
}

func UnreadCount(notifications []domain.Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func indexProducts(products []domain.Product) map[int64]domain.Product {
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}
