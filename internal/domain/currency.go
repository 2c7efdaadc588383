package domain

// Currency is an ISO 4217 currency code. Bank accounts are denominated in
// exactly one currency, and foreign-currency lots are identified by the
// currency being sold.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
)

// Valid reports whether the currency is one of the known codes.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyEUR, CurrencyUSD, CurrencyGBP, CurrencyJPY:
		return true
	}
	return false
}
