package transfer

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BasePrice is basePrice plus pricePerExtraPax for every passenger after the first.
func BasePrice(t Tariff, totalPax int) decimal.Decimal {
	price := t.BasePrice
	extra := totalPax - 1
	if t.PricePerExtraPax.Valid && extra > 0 {
		price = price.Add(t.PricePerExtraPax.Decimal.Mul(decimal.NewFromInt(int64(extra))))
	}
	return price
}

// ApplyRules runs every applicable rule over the running price in slice order and
// rounds the result to cents, half away from zero.
func ApplyRules(base decimal.Decimal, rules []Rule, p Pickup) Money {
	price := base
	for _, r := range rules {
		if r.Applies(p) {
			price = r.Adjustment().Apply(price)
		}
	}
	return NewMoney(price)
}

// ComputePrice prices one tariff for a pickup.
func ComputePrice(t Tariff, totalPax int, rules []Rule, p Pickup) Money {
	return ApplyRules(BasePrice(t, totalPax), rules, p)
}

// orderRules fixes evaluation order to rule id ascending. Percentages compound, so
// the order changes the price and must not depend on storage return order.
func orderRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].ID() < rules[j].ID()
	})
}
