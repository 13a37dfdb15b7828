// Package market standardizes the per-tick payloads shared between the exchange harness and strategy layers.
package market

import "sort"

// Product is the exchange symbol of a tradable product.
type Product string

// Products traded by the default session.
const (
	Amethysts     Product = "AMETHYSTS"
	Starfruit     Product = "STARFRUIT"
	Orchids       Product = "ORCHIDS"
	Chocolate     Product = "CHOCOLATE"
	Strawberries  Product = "STRAWBERRIES"
	Roses         Product = "ROSES"
	GiftBasket    Product = "GIFT_BASKET"
	Coconut       Product = "COCONUT"
	CoconutCoupon Product = "COCONUT_COUPON"
)

// Spec holds the static trading metadata of a product.
type Spec struct {
	Limit         int
	DefaultPrice  float64
	ExternalQuote bool // mid taken from the conversion venue instead of the local book
	FeeBearing    bool // fills pay transport fees and import tariff
}

// Catalog maps every traded product to its metadata.
type Catalog map[Product]Spec

// Products returns the catalog symbols in a deterministic order.
func (c Catalog) Products() []Product {
	out := make([]Product, 0, len(c))
	for p := range c {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Limit returns the position limit of p, zero when p is unknown.
func (c Catalog) Limit(p Product) int { return c[p].Limit }
