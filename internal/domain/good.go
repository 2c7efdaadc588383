package domain

// GoodType identifies a physically tradeable good. Goods are fungible and
// divisible; inventories and offers hold fractional amounts.
type GoodType string

const (
	GoodWheat       GoodType = "wheat"
	GoodCoal        GoodType = "coal"
	GoodIron        GoodType = "iron"
	GoodGold        GoodType = "gold"
	GoodKilowatt    GoodType = "kilowatt"
	GoodLabourHour  GoodType = "labour_hour"
	GoodConsumption GoodType = "consumption_good"
)

// Valid reports whether the good type is one of the known goods.
func (g GoodType) Valid() bool {
	switch g {
	case GoodWheat, GoodCoal, GoodIron, GoodGold, GoodKilowatt,
		GoodLabourHour, GoodConsumption:
		return true
	}
	return false
}

// PropertyClass groups property titles that trade on the same market,
// e.g. all real estate titles or all shares of one issuer.
type PropertyClass string

const (
	PropertyRealEstate PropertyClass = "real_estate"
	PropertyShare      PropertyClass = "share"
	PropertyBond       PropertyClass = "bond"
)

// Valid reports whether the property class is one of the known classes.
func (p PropertyClass) Valid() bool {
	switch p {
	case PropertyRealEstate, PropertyShare, PropertyBond:
		return true
	}
	return false
}
