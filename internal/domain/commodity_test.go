package domain

import "testing"

func TestCommodityValid(t *testing.T) {
	cases := []struct {
		name      string
		commodity Commodity
		want      bool
	}{
		{"good", GoodCommodity(GoodWheat), true},
		{"currency lot", CurrencyLotCommodity(CurrencyUSD), true},
		{"property", PropertyCommodity(PropertyRealEstate), true},
		{"unknown good", GoodCommodity("plutonium"), false},
		{"unknown currency", CurrencyLotCommodity("XXX"), false},
		{"unknown property class", PropertyCommodity("castle"), false},
		{"unknown kind", Commodity{Kind: "bogus", Good: GoodWheat}, false},
		{"zero value", Commodity{}, false},
		{"good with stray currency", Commodity{Kind: KindGood, Good: GoodWheat, Currency: CurrencyEUR}, false},
		{"lot with stray good", Commodity{Kind: KindCurrencyLot, Currency: CurrencyUSD, Good: GoodCoal}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.commodity.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCommodityString(t *testing.T) {
	if got := GoodCommodity(GoodWheat).String(); got != "wheat" {
		t.Errorf("good string %q, want wheat", got)
	}
	if got := CurrencyLotCommodity(CurrencyUSD).String(); got != "USD" {
		t.Errorf("lot string %q, want USD", got)
	}
	if got := PropertyCommodity(PropertyShare).String(); got != "share" {
		t.Errorf("property string %q, want share", got)
	}
	if got := (Commodity{}).String(); got != "unknown" {
		t.Errorf("zero value string %q, want unknown", got)
	}
}

func TestCommodityAsMapKey(t *testing.T) {
	m := map[Commodity]int{
		GoodCommodity(GoodWheat):              1,
		CurrencyLotCommodity(CurrencyUSD):     2,
		PropertyCommodity(PropertyRealEstate): 3,
	}
	if m[GoodCommodity(GoodWheat)] != 1 {
		t.Error("equal good commodities should hash to the same key")
	}
	if len(m) != 3 {
		t.Errorf("distinct commodities collapsed: %d keys", len(m))
	}
}
