package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(field, rule string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule})
}

// Validate runs struct tag validation on v and returns a *ValidationError
// when any rule fails.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.add(fieldPath(fe), fe.Tag())
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func collect(base error, extra *ValidationError) error {
	if len(extra.Fields) == 0 {
		return base
	}
	if base == nil {
		return extra
	}
	var verr *ValidationError
	if errors.As(base, &verr) {
		verr.Fields = append(verr.Fields, extra.Fields...)
		return verr
	}
	return base
}

func (p Product) Validate() error {
	extra := &ValidationError{}
	if !p.Price.IsPositive() {
		extra.add("Price", "gt")
	}
	if p.Stock == 0 && (p.InStock || p.Status != ProductOutOfStock) {
		extra.add("Status", "out_of_stock_when_empty")
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		extra.add("UpdatedAt", "gtefield")
	}
	return collect(Validate(p), extra)
}

func (o Order) Validate() error {
	extra := &ValidationError{}
	if strings.TrimSpace(o.DeliveryAddress) == "" {
		extra.add("DeliveryAddress", "required")
	}
	for i, item := range o.Items {
		if !item.PricePerUnit.IsPositive() {
			extra.add(fmt.Sprintf("Items[%d].PricePerUnit", i), "gt")
		}
	}
	if !o.Status.Valid() {
		extra.add("Status", "oneof")
	}
	return collect(Validate(o), extra)
}

func (n Notification) Validate() error {
	return Validate(n)
}

// SyncStock derives InStock and Status from Stock. An inactive product with
// stock stays inactive.
func (p *Product) SyncStock() {
	p.InStock = p.Stock > 0
	switch {
	case p.Stock == 0:
		p.Status = ProductOutOfStock
	case p.Status == ProductOutOfStock || p.Status == "":
		p.Status = ProductActive
	}
}

// Apply merges the non-nil fields of patch into p.
func (p *Product) Apply(patch ProductPatch) {
	setString(&p.Name, patch.Name)
	setString(&p.NameEn, patch.NameEn)
	setString(&p.Supplier, patch.Supplier)
	setString(&p.SupplierEn, patch.SupplierEn)
	if patch.SupplierID != nil {
		p.SupplierID = *patch.SupplierID
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	setString(&p.Unit, patch.Unit)
	setString(&p.UnitEn, patch.UnitEn)
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	setString(&p.Location, patch.Location)
	setString(&p.LocationEn, patch.LocationEn)
	setString(&p.Image, patch.Image)
	if patch.Sold != nil {
		p.Sold = *patch.Sold
	}
	setString(&p.Description, patch.Description)
	setString(&p.DescriptionEn, patch.DescriptionEn)
	setString(&p.Category, patch.Category)
	setString(&p.CategoryEn, patch.CategoryEn)
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.MinOrderQuantity != nil {
		p.MinOrderQuantity = *patch.MinOrderQuantity
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
}

// Recalculate recomputes every line total and the order total from the items.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].TotalPrice = o.Items[i].PricePerUnit.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity)))
		total = total.Add(o.Items[i].TotalPrice)
	}
	o.Total = total
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
