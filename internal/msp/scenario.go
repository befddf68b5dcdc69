package msp

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Prices are the slider-controlled inputs of a scenario.
type Prices struct {
	Ethane        float64 `json:"ethane" yaml:"ethane"`               // USD/t
	Electricity   float64 `json:"electricity" yaml:"electricity"`     // USD/kWh
	Steam         float64 `json:"steam" yaml:"steam"`                 // USD/t
	Refrigeration float64 `json:"refrigeration" yaml:"refrigeration"` // USD/kWh
}

// Breakdown lists the annual cost terms in USD/year.
type Breakdown struct {
	AnnualizedCapex   float64 `json:"annualized_capex"`
	OpexBase          float64 `json:"opex_base"`
	EthaneCost        float64 `json:"ethane_cost"`
	OxygenCost        float64 `json:"oxygen_cost"`
	ElectricityCost   float64 `json:"electricity_cost"`
	SteamCost         float64 `json:"steam_cost"`
	RefrigerationCost float64 `json:"refrigeration_cost"`
}

// Total sums the terms in a fixed order so results are reproducible to the
// last bit.
func (b Breakdown) Total() float64 {
	return b.AnnualizedCapex + b.OpexBase + b.EthaneCost + b.OxygenCost + b.ElectricityCost + b.SteamCost + b.RefrigerationCost
}

// Result is an evaluated scenario.
type Result struct {
	Prices           Prices    `json:"prices"`
	Breakdown        Breakdown `json:"breakdown"`
	TotalAnnualCost  float64   `json:"total_annual_cost"`
	AnnualProduction float64   `json:"annual_production"`
	MSP              float64   `json:"msp"` // USD per tonne ethylene
}

// Compute evaluates the minimum selling price for one scenario. Errors are
// returned as-is; no fallback price is substituted.
func Compute(plant Plant, prices Prices) (Result, error) {
	production := plant.AnnualProduction()
	if production <= 0 {
		return Result{}, fmt.Errorf("%w: %g t/h over %g h", ErrZeroProduction, plant.ProductionRate, plant.HoursPerYear)
	}
	capex, err := plant.AnnualizedCapex()
	if err != nil {
		return Result{}, err
	}
	hours := plant.HoursPerYear
	b := Breakdown{
		AnnualizedCapex:   capex,
		OpexBase:          plant.OpexBase,
		EthaneCost:        prices.Ethane * plant.EthaneFlow * hours,
		OxygenCost:        plant.OxygenPrice * plant.OxygenFlow * hours,
		ElectricityCost:   prices.Electricity * plant.ElectricityLoad * hours,
		SteamCost:         prices.Steam * plant.SteamLoad * hours / plant.SteamUnitDivisor,
		RefrigerationCost: prices.Refrigeration * plant.RefrigerationLoad * hours,
	}
	total := b.Total()
	return Result{
		Prices:           prices,
		Breakdown:        b,
		TotalAnnualCost:  total,
		AnnualProduction: production,
		MSP:              total / production,
	}, nil
}

// SweepPoint is one point of a price sweep.
type SweepPoint struct {
	EthanePrice float64 `json:"ethane_price"`
	MSP         float64 `json:"msp"`
}

// EthaneSweep evaluates the MSP at points evenly spaced ethane prices across
// the slider range, holding the other prices fixed.
func EthaneSweep(plant Plant, prices Prices, ethane Slider, points int) ([]SweepPoint, error) {
	if points < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 points, got %d", points)
	}
	grid := floats.Span(make([]float64, points), ethane.Min, ethane.Max)
	out := make([]SweepPoint, 0, points)
	for _, p := range grid {
		scenario := prices
		scenario.Ethane = p
		res, err := Compute(plant, scenario)
		if err != nil {
			return nil, err
		}
		out = append(out, SweepPoint{EthanePrice: p, MSP: res.MSP})
	}
	return out, nil
}
