package domain

// CommodityKind distinguishes the three things a seller can offer:
// physical goods, foreign-currency lots, and property titles.
type CommodityKind string

const (
	KindGood        CommodityKind = "good"
	KindCurrencyLot CommodityKind = "currency_lot"
	KindProperty    CommodityKind = "property"
)

// Commodity is the tagged variant identifying what an offer sells. Exactly
// one of Good, Currency, or PropertyClass is set, depending on Kind. The
// zero values of the unused fields make Commodity comparable, so it serves
// directly as the order book's commodity key.
type Commodity struct {
	Kind          CommodityKind
	Good          GoodType
	Currency      Currency
	PropertyClass PropertyClass
}

// GoodCommodity returns the commodity key for a physical good.
func GoodCommodity(g GoodType) Commodity {
	return Commodity{Kind: KindGood, Good: g}
}

// CurrencyLotCommodity returns the commodity key for lots of the given
// currency. The settlement currency of the offer is a separate concern:
// an EUR lot may well be priced and paid in USD.
func CurrencyLotCommodity(c Currency) Commodity {
	return Commodity{Kind: KindCurrencyLot, Currency: c}
}

// PropertyCommodity returns the commodity key for titles of the given class.
func PropertyCommodity(p PropertyClass) Commodity {
	return Commodity{Kind: KindProperty, PropertyClass: p}
}

// Valid reports whether the commodity is well formed: a known kind with
// the matching identity field set and the other fields zero.
func (c Commodity) Valid() bool {
	switch c.Kind {
	case KindGood:
		return c.Good.Valid() && c.Currency == "" && c.PropertyClass == ""
	case KindCurrencyLot:
		return c.Currency.Valid() && c.Good == "" && c.PropertyClass == ""
	case KindProperty:
		return c.PropertyClass.Valid() && c.Good == "" && c.Currency == ""
	}
	return false
}

// String returns the human-readable commodity identity, used in transfer
// memos and logs.
func (c Commodity) String() string {
	switch c.Kind {
	case KindGood:
		return string(c.Good)
	case KindCurrencyLot:
		return string(c.Currency)
	case KindProperty:
		return string(c.PropertyClass)
	}
	return "unknown"
}
