package transfer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RuleType string

const (
	RuleTypeTimeOfDay  RuleType = "TIME_OF_DAY"
	RuleTypeDayOfWeek  RuleType = "DAY_OF_WEEK"
	RuleTypeSeason     RuleType = "SEASON"
	RuleTypeLastMinute RuleType = "LAST_MINUTE"
)

// ErrMalformedRule is wrapped by DecodeRule when a row cannot be applied.
var ErrMalformedRule = errors.New("malformed tariff rule")

var hundred = decimal.NewFromInt(100)

// RuleRecord is a tariff_rules row exactly as stored. Which columns carry meaning
// depends on RuleType; DecodeRule reads only those.
type RuleRecord struct {
	ID                int64
	TariffID          int64
	RuleType          RuleType
	DayOfWeek         *int
	StartTime         *string // "15:04" local clock
	EndTime           *string
	SeasonFrom        *time.Time
	SeasonTo          *time.Time
	HoursBeforePickup *float64
	PercentAdjustment decimal.NullDecimal
	FixedAdjustment   decimal.NullDecimal
	IsActive          bool
}

// Adjustment is a percentage and/or fixed change to a running price.
type Adjustment struct {
	Percent decimal.NullDecimal
	Fixed   decimal.NullDecimal
}

// Apply compounds the percentage on price first, then adds the fixed amount.
func (a Adjustment) Apply(price decimal.Decimal) decimal.Decimal {
	if a.Percent.Valid {
		price = price.Add(price.Mul(a.Percent.Decimal).Div(hundred))
	}
	if a.Fixed.Valid {
		price = price.Add(a.Fixed.Decimal)
	}
	return price
}

// Pickup is the point in time rules are matched against.
type Pickup struct {
	// Local is the pickup instant in the airport's zone.
	Local time.Time
	// LeadTime is the time left until pickup, never negative.
	LeadTime time.Duration
}

func NewPickup(instant time.Time, loc *time.Location, now time.Time) Pickup {
	lead := instant.Sub(now)
	if lead < 0 {
		lead = 0
	}
	return Pickup{Local: instant.In(loc), LeadTime: lead}
}

func (p Pickup) minuteOfDay() int {
	return p.Local.Hour()*60 + p.Local.Minute()
}

// isoWeekday maps time.Weekday to Monday=1..Sunday=7
func (p Pickup) isoWeekday() int {
	wd := int(p.Local.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (p Pickup) date() string {
	return p.Local.Format(dateLayout)
}

// Rule is one decoded pricing rule. Each variant carries only its own condition.
type Rule interface {
	ID() int64
	Type() RuleType
	Applies(p Pickup) bool
	Adjustment() Adjustment
}

type ruleBase struct {
	id  int64
	adj Adjustment
}

func (b ruleBase) ID() int64              { return b.id }
func (b ruleBase) Adjustment() Adjustment { return b.adj }

// TimeOfDayRule matches pickups whose local clock minute is in [Start, End].
type TimeOfDayRule struct {
	ruleBase
	StartMinute int
	EndMinute   int
}

func (r TimeOfDayRule) Type() RuleType { return RuleTypeTimeOfDay }

func (r TimeOfDayRule) Applies(p Pickup) bool {
	m := p.minuteOfDay()
	return m >= r.StartMinute && m <= r.EndMinute
}

// DayOfWeekRule matches an ISO weekday, Monday=1.
type DayOfWeekRule struct {
	ruleBase
	Day int
}

func (r DayOfWeekRule) Type() RuleType { return RuleTypeDayOfWeek }

func (r DayOfWeekRule) Applies(p Pickup) bool {
	return p.isoWeekday() == r.Day
}

// SeasonRule matches local calendar dates in [From, To], both "2006-01-02".
type SeasonRule struct {
	ruleBase
	From string
	To   string
}

func (r SeasonRule) Type() RuleType { return RuleTypeSeason }

func (r SeasonRule) Applies(p Pickup) bool {
	d := p.date()
	return d >= r.From && d <= r.To
}

// LastMinuteRule matches when pickup is at most Hours away.
type LastMinuteRule struct {
	ruleBase
	Hours float64
}

func (r LastMinuteRule) Type() RuleType { return RuleTypeLastMinute }

func (r LastMinuteRule) Applies(p Pickup) bool {
	return p.LeadTime.Hours() <= r.Hours
}

// DecodeRule turns a stored row into its variant. Rows missing a field their type
// needs fail with ErrMalformedRule; callers skip them.
func DecodeRule(rec RuleRecord) (Rule, error) {
	adj := Adjustment{Percent: rec.PercentAdjustment, Fixed: rec.FixedAdjustment}
	if !adj.Percent.Valid && !adj.Fixed.Valid {
		return nil, malformed("no adjustment set")
	}
	base := ruleBase{id: rec.ID, adj: adj}

	switch rec.RuleType {
	case RuleTypeTimeOfDay:
		if rec.StartTime == nil || rec.EndTime == nil {
			return nil, malformed("start_time and end_time are required")
		}
		start, err := parseClock(*rec.StartTime)
		if err != nil {
			return nil, malformed("start_time: " + err.Error())
		}
		end, err := parseClock(*rec.EndTime)
		if err != nil {
			return nil, malformed("end_time: " + err.Error())
		}
		if start > end {
			return nil, malformed("window ends before it starts")
		}
		return TimeOfDayRule{ruleBase: base, StartMinute: start, EndMinute: end}, nil

	case RuleTypeDayOfWeek:
		if rec.DayOfWeek == nil {
			return nil, malformed("day_of_week is required")
		}
		if *rec.DayOfWeek < 1 || *rec.DayOfWeek > 7 {
			return nil, malformed(fmt.Sprintf("day_of_week %d out of range", *rec.DayOfWeek))
		}
		return DayOfWeekRule{ruleBase: base, Day: *rec.DayOfWeek}, nil

	case RuleTypeSeason:
		if rec.SeasonFrom == nil || rec.SeasonTo == nil {
			return nil, malformed("season_from and season_to are required")
		}
		from := rec.SeasonFrom.Format(dateLayout)
		to := rec.SeasonTo.Format(dateLayout)
		if from > to {
			return nil, malformed("season ends before it starts")
		}
		return SeasonRule{ruleBase: base, From: from, To: to}, nil

	case RuleTypeLastMinute:
		if rec.HoursBeforePickup == nil {
			return nil, malformed("hours_before_pickup is required")
		}
		if *rec.HoursBeforePickup < 0 {
			return nil, malformed("hours_before_pickup is negative")
		}
		return LastMinuteRule{ruleBase: base, Hours: *rec.HoursBeforePickup}, nil

	default:
		return nil, malformed(fmt.Sprintf("unknown rule type %q", rec.RuleType))
	}
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedRule, reason)
}

// parseClock converts "15:04" or "15:04:05" into minutes since midnight
func parseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" || s == "24:00:00" {
		return 24 * 60, nil
	}
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
