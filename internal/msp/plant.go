// Package msp computes the minimum selling price of ethylene from an ODHE
// plant for a given set of feed and utility prices.
package msp

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrZeroProduction indicates the plant produces nothing per year, so no
	// selling price can be defined.
	ErrZeroProduction = errors.New("msp: annual production must be positive")

	// ErrInvalidPlant indicates plant constants that make the cost model
	// undefined.
	ErrInvalidPlant = errors.New("msp: invalid plant constants")
)

// Plant holds the fixed constants of the MSP model. Flows are t/h, loads
// are kW, prices are USD per unit and costs are USD.
type Plant struct {
	Capex             float64 `json:"capex" yaml:"capex" validate:"gte=0"`
	OpexBase          float64 `json:"opex_base" yaml:"opex_base" validate:"gte=0"`
	HoursPerYear      float64 `json:"hours_per_year" yaml:"hours_per_year" validate:"gte=0"`
	ProductionRate    float64 `json:"production_rate" yaml:"production_rate" validate:"gte=0"` // t/h ethylene
	EthaneFlow        float64 `json:"ethane_flow" yaml:"ethane_flow" validate:"gte=0"`
	OxygenFlow        float64 `json:"oxygen_flow" yaml:"oxygen_flow" validate:"gte=0"`
	OxygenPrice       float64 `json:"oxygen_price" yaml:"oxygen_price" validate:"gte=0"` // USD/t, no slider
	ElectricityLoad   float64 `json:"electricity_load" yaml:"electricity_load" validate:"gte=0"`
	SteamLoad         float64 `json:"steam_load" yaml:"steam_load" validate:"gte=0"`
	SteamUnitDivisor  float64 `json:"steam_unit_divisor" yaml:"steam_unit_divisor" validate:"gt=0"`
	RefrigerationLoad float64 `json:"refrigeration_load" yaml:"refrigeration_load" validate:"gte=0"`
	DiscountRate      float64 `json:"discount_rate" yaml:"discount_rate" validate:"gte=0"`
	LifetimeYears     float64 `json:"lifetime_years" yaml:"lifetime_years" validate:"gt=0"`
}

// ReferencePlant returns the reference ODHE plant.
func ReferencePlant() Plant {
	return Plant{
		Capex:             220_000_000,
		OpexBase:          578_000_000,
		HoursPerYear:      8000,
		ProductionRate:    91.6,
		EthaneFlow:        113,
		OxygenFlow:        29,
		OxygenPrice:       100,
		ElectricityLoad:   30 * 1000,
		SteamLoad:         150 * 1000,
		SteamUnitDivisor:  1000,
		RefrigerationLoad: 250 * 1000,
		DiscountRate:      0.1,
		LifetimeYears:     20,
	}
}

// AnnualProduction is tonnes of ethylene per year.
func (p Plant) AnnualProduction() float64 {
	return p.ProductionRate * p.HoursPerYear
}

// CapitalRecoveryFactor returns r(1+r)^n / ((1+r)^n - 1), or 1/n at r = 0.
func CapitalRecoveryFactor(rate, years float64) (float64, error) {
	if years <= 0 || math.IsNaN(years) {
		return 0, fmt.Errorf("%w: lifetime %g years", ErrInvalidPlant, years)
	}
	if rate < 0 || math.IsNaN(rate) {
		return 0, fmt.Errorf("%w: discount rate %g", ErrInvalidPlant, rate)
	}
	if rate == 0 {
		return 1 / years, nil
	}
	g := math.Pow(1+rate, years)
	return rate * g / (g - 1), nil
}

// AnnualizedCapex spreads the capital cost over the plant lifetime.
func (p Plant) AnnualizedCapex() (float64, error) {
	if _, err := CapitalRecoveryFactor(p.DiscountRate, p.LifetimeYears); err != nil {
		return 0, err
	}
	if p.DiscountRate == 0 {
		return p.Capex / p.LifetimeYears, nil
	}
	g := math.Pow(1+p.DiscountRate, p.LifetimeYears)
	return p.Capex * (p.DiscountRate * g) / (g - 1), nil
}
