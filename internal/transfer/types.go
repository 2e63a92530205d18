package transfer

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionFromAirport Direction = "FROM_AIRPORT"
	DirectionToAirport   Direction = "TO_AIRPORT"
	DirectionBoth        Direction = "BOTH"
)

// Serves reports whether a route stored with direction d can carry a request for want.
func (d Direction) Serves(want Direction) bool {
	return d == want || d == DirectionBoth
}

type VehicleType string

const (
	VehicleSedan   VehicleType = "SEDAN"
	VehicleVan     VehicleType = "VAN"
	VehicleMinibus VehicleType = "MINIBUS"
	VehicleBus     VehicleType = "BUS"
	VehicleVIP     VehicleType = "VIP"
)

const dateLayout = "2006-01-02"

// Money is an amount serialised as a JSON number with two decimals.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.Decimal.UnmarshalJSON(b)
}

type Airport struct {
	ID       int64
	Code     string
	Timezone string
}

type Zone struct {
	ID      int64
	City    string
	Country string
	Lat     float64
	Lng     float64
}

type Route struct {
	ID              int64
	AirportID       int64
	ZoneID          int64
	Direction       Direction
	DurationMinutes int
	IsActive        bool
	// AirportTimezone is joined from the airport; rules are evaluated in this zone.
	AirportTimezone string
}

// Location returns the airport's time zone, UTC when unknown.
func (r Route) Location() *time.Location {
	if r.AirportTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.AirportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Supplier struct {
	ID          int64
	Name        string
	Rating      float64
	RatingCount int
	IsVerified  bool
	IsActive    bool
}

type Tariff struct {
	ID               int64
	SupplierID       int64
	RouteID          int64
	VehicleType      VehicleType
	Currency         string
	BasePrice        decimal.Decimal
	PricePerExtraPax decimal.NullDecimal
	MinPax           *int
	MaxPax           *int
	ValidFrom        *time.Time
	ValidTo          *time.Time
	IsActive         bool
	// RouteDurationMin comes from the tariff's own route join and may be absent.
	RouteDurationMin *int
}

type TariffWithSupplier struct {
	Tariff   Tariff
	Supplier Supplier
}

type SearchRequest struct {
	AirportID   int64     `json:"airportId" validate:"required,gt=0"`
	ZoneID      int64     `json:"zoneId" validate:"required,gt=0"`
	Direction   Direction `json:"direction" validate:"required,oneof=FROM_AIRPORT TO_AIRPORT BOTH"`
	PickupTime  string    `json:"pickupTime" validate:"required" example:"2026-03-10T14:00:00+03:00"` // RFC 3339, UTC offset required
	PaxAdults   int       `json:"paxAdults" validate:"required,gte=1"`
	PaxChildren int       `json:"paxChildren" validate:"gte=0"`
	Currency    string    `json:"currency" validate:"required,len=3,alpha"`
}

func (r SearchRequest) TotalPax() int {
	return r.PaxAdults + r.PaxChildren
}

type SupplierSummary struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
}

type TransferOption struct {
	Supplier             SupplierSummary `json:"supplier"`
	VehicleType          VehicleType     `json:"vehicleType"`
	Currency             string          `json:"currency"`
	TotalPrice           Money           `json:"totalPrice"`
	EstimatedDurationMin int             `json:"estimatedDurationMin"`
	CancellationPolicy   string          `json:"cancellationPolicy"`
	OptionCode           string          `json:"optionCode"`
}

type Metadata struct {
	SearchID          string `json:"searchId"`
	RouteID           int64  `json:"routeId"`
	TotalResults      int    `json:"totalResults"`
	TariffsConsidered int    `json:"tariffsConsidered"`
	RulesSkipped      int    `json:"rulesSkipped"`
	SearchTimeMs      int64  `json:"searchTimeMs"`
}

type SearchResponse struct {
	Options  []TransferOption `json:"options"`
	Metadata Metadata         `json:"metadata"`
}

// Quote is what the booking flow reads back for an option code.
type Quote struct {
	SearchID string         `json:"searchId"`
	Option   TransferOption `json:"option"`
	Request  SearchRequest  `json:"request"`
	QuotedAt time.Time      `json:"quotedAt"`
}
