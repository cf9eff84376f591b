// Package trade defines the enumerated values trade attributes can hold
package trade

// Currency is an ISO currency code
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	GBP Currency = "GBP"
	CHF Currency = "CHF"
	JPY Currency = "JPY"
	SEK Currency = "SEK"
	DKK Currency = "DKK"
	NOK Currency = "NOK"
)

// Currencies lists every supported currency
var Currencies = []Currency{EUR, USD, GBP, CHF, JPY, SEK, DKK, NOK}

// DayCount is a day count convention
type DayCount string

const (
	ACT360 DayCount = "ACT360"
	ACT365 DayCount = "ACT365"
	ACTACT DayCount = "ACTACT"
	BOND   DayCount = "BOND"
)

var DayCounts = []DayCount{ACT360, ACT365, ACTACT, BOND}

// SwaptionStrategy is the contract type of a swaption or a swaption strategy
type SwaptionStrategy string

const (
	Payer            SwaptionStrategy = "PAYER"
	Receiver         SwaptionStrategy = "RECEIVER"
	SwaptionStraddle SwaptionStrategy = "STRADDLE"
	SwaptionCollar   SwaptionStrategy = "COLLAR"
	SwaptionStrangle SwaptionStrategy = "STRANGLE"
)

// CapFloorStrategy is the contract type of a cap, a floor or a combination of
// both
type CapFloorStrategy string

const (
	Cap              CapFloorStrategy = "CAP"
	Floor            CapFloorStrategy = "FLOOR"
	CapFloorStraddle CapFloorStrategy = "STRADDLE"
	CapFloorCollar   CapFloorStrategy = "COLLAR"
	CapFloorStrangle CapFloorStrategy = "STRANGLE"
)

// SettlementMethod is how a swaption settles on exercise
type SettlementMethod string

const (
	CashSettledISDA             SettlementMethod = "CASH_SETTLED_ISDA"
	CollateralisedCashPrice     SettlementMethod = "COLLATERALISED_CASH_PRICE"
	PhysicallySettled           SettlementMethod = "PHYSICALLY_SETTLED"
	PhysicallyClearedSettled    SettlementMethod = "PHYSICALLY_CLEARED_SETTLED"
	CashSettledPricedAsPhysical SettlementMethod = "CASH_SETTLED_PRICED_AS_PHYSICAL"
)
