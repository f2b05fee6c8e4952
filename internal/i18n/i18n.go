// Package i18n holds the Hindi and English texts for notifications raised by
// marketplace workflows. Callers ask for a key and get both languages back.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	KeyOrderReceivedTitle    = "order.received.title"
	KeyOrderReceivedMessage  = "order.received.message"
	KeyOrderPlacedTitle      = "order.placed.title"
	KeyOrderPlacedMessage    = "order.placed.message"
	KeyOrderAcceptedTitle    = "order.accepted.title"
	KeyOrderAcceptedMessage  = "order.accepted.message"
	KeyOrderRejectedTitle    = "order.rejected.title"
	KeyOrderRejectedMessage  = "order.rejected.message"
	KeyOrderShippedTitle     = "order.in_transit.title"
	KeyOrderShippedMessage   = "order.in_transit.message"
	KeyOrderDeliveredTitle   = "order.delivered.title"
	KeyOrderDeliveredMessage = "order.delivered.message"
	KeyOrderCancelledTitle   = "order.cancelled.title"
	KeyOrderCancelledMessage = "order.cancelled.message"
	KeyStockUpdatedTitle     = "stock.updated.title"
	KeyStockUpdatedMessage   = "stock.updated.message"
	KeyProductAddedTitle     = "product.added.title"
	KeyProductAddedMessage   = "product.added.message"
	KeyProductUpdatedTitle   = "product.updated.title"
	KeyProductUpdatedMessage = "product.updated.message"
	KeyProductDeletedTitle   = "product.deleted.title"
	KeyProductDeletedMessage = "product.deleted.message"
)

var (
	Hindi   = language.Hindi
	English = language.English
)

type entry struct {
	hi string
	en string
}

var entries = map[string]entry{
	KeyOrderReceivedTitle:    {"नया ऑर्डर मिला", "New Order Received"},
	KeyOrderReceivedMessage:  {"%[1]s से ₹%[3]s का ऑर्डर", "Order of ₹%[3]s from %[2]s"},
	KeyOrderPlacedTitle:      {"ऑर्डर प्लेस किया गया", "Order Placed"},
	KeyOrderPlacedMessage:    {"₹%s का ऑर्डर सफलतापूर्वक प्लेस किया गया", "Order of ₹%s placed successfully"},
	KeyOrderAcceptedTitle:    {"ऑर्डर स्वीकार किया गया", "Order Accepted"},
	KeyOrderAcceptedMessage:  {"आपका ऑर्डर #%s स्वीकार किया गया", "Your order #%s has been accepted"},
	KeyOrderRejectedTitle:    {"ऑर्डर रद्द किया गया", "Order Rejected"},
	KeyOrderRejectedMessage:  {"आपका ऑर्डर #%s रद्द किया गया", "Your order #%s has been rejected"},
	KeyOrderShippedTitle:     {"ऑर्डर रास्ते में है", "Order In Transit"},
	KeyOrderShippedMessage:   {"आपका ऑर्डर #%s भेज दिया गया है", "Your order #%s is on its way"},
	KeyOrderDeliveredTitle:   {"ऑर्डर डिलीवर हुआ", "Order Delivered"},
	KeyOrderDeliveredMessage: {"आपका ऑर्डर #%s डिलीवर कर दिया गया है", "Your order #%s has been delivered"},
	KeyOrderCancelledTitle:   {"ऑर्डर कैंसल किया गया", "Order Cancelled"},
	KeyOrderCancelledMessage: {"%[1]s ने ऑर्डर #%[3]s कैंसल किया", "Order #%[3]s was cancelled by %[2]s"},
	KeyStockUpdatedTitle:     {"स्टॉक अपडेट किया गया", "Stock Updated"},
	KeyStockUpdatedMessage:   {"प्रोडक्ट स्टॉक %d पर अपडेट किया गया", "Product stock updated to %d"},
	KeyProductAddedTitle:     {"नया प्रोडक्ट जोड़ा गया", "New Product Added"},
	KeyProductAddedMessage:   {"%[1]s सफलतापूर्वक जोड़ा गया", "%[2]s added successfully"},
	KeyProductUpdatedTitle:   {"प्रोडक्ट अपडेट किया गया", "Product Updated"},
	KeyProductUpdatedMessage: {"%[1]s की जानकारी अपडेट की गई", "%[2]s information updated"},
	KeyProductDeletedTitle:   {"प्रोडक्ट डिलीट किया गया", "Product Deleted"},
	KeyProductDeletedMessage: {"प्रोडक्ट सफलतापूर्वक डिलीट किया गया", "Product deleted successfully"},
}

// Catalog renders a keyed message in one language.
type Catalog interface {
	Text(lang language.Tag, key string, args ...any) string
}

type Dictionary struct {
	cat catalog.Catalog
}

// New builds the default Hindi/English dictionary. English is the fallback.
func New() (*Dictionary, error) {
	b := catalog.NewBuilder(catalog.Fallback(English))
	for key, e := range entries {
		if err := b.SetString(Hindi, key, e.hi); err != nil {
			return nil, fmt.Errorf("catalog %s (hi): %w", key, err)
		}
		if err := b.SetString(English, key, e.en); err != nil {
			return nil, fmt.Errorf("catalog %s (en): %w", key, err)
		}
	}
	return &Dictionary{cat: b}, nil
}

func MustNew() *Dictionary {
	d, err := New()
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dictionary) Text(lang language.Tag, key string, args ...any) string {
	return message.NewPrinter(lang, message.Catalog(d.cat)).Sprintf(key, args...)
}

// Pair renders key in Hindi and English, in that order.
func Pair(c Catalog, key string, args ...any) (hi string, en string) {
	return c.Text(Hindi, key, args...), c.Text(English, key, args...)
}
