package msp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidSlider indicates a slider whose range or step is unusable.
var ErrInvalidSlider = errors.New("msp: invalid slider")

// DefaultSweepPoints is the number of ethane prices shown on the dashboard
// sweep chart.
const DefaultSweepPoints = 6

// Slider is a bounded, stepped price input.
type Slider struct {
	Key     string  `json:"key" yaml:"key"`
	Label   string  `json:"label" yaml:"label"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Step    float64 `json:"step" yaml:"step" validate:"gt=0"`
	Default float64 `json:"default" yaml:"default"`
}

// Validate checks the range, step and default.
func (s Slider) Validate() error {
	switch {
	case !(s.Min < s.Max):
		return fmt.Errorf("%w: %s min %g not below max %g", ErrInvalidSlider, s.Key, s.Min, s.Max)
	case !(s.Step > 0) || s.Step > s.Max-s.Min:
		return fmt.Errorf("%w: %s step %g", ErrInvalidSlider, s.Key, s.Step)
	case s.Default < s.Min || s.Default > s.Max:
		return fmt.Errorf("%w: %s default %g outside [%g, %g]", ErrInvalidSlider, s.Key, s.Default, s.Min, s.Max)
	}
	return nil
}

// Decimals is the number of decimal places the step is expressed in.
func (s Slider) Decimals() int {
	str := strconv.FormatFloat(s.Step, 'f', -1, 64)
	if i := strings.IndexByte(str, '.'); i >= 0 {
		return len(str) - i - 1
	}
	return 0
}

// Snap clamps v into the slider range and rounds it to the nearest step,
// at the step's precision so 0.07 stays 0.07.
func (s Slider) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return s.Default
	}
	v = math.Max(s.Min, math.Min(s.Max, v))
	steps := math.Round((v - s.Min) / s.Step)
	snapped := s.Min + steps*s.Step
	scale := math.Pow(10, float64(s.Decimals()))
	snapped = math.Round(snapped*scale) / scale
	return math.Min(s.Max, snapped)
}

// Sliders are the four dashboard inputs.
type Sliders struct {
	Ethane        Slider `json:"ethane" yaml:"ethane"`
	Electricity   Slider `json:"electricity" yaml:"electricity"`
	Steam         Slider `json:"steam" yaml:"steam"`
	Refrigeration Slider `json:"refrigeration" yaml:"refrigeration"`
}

// ReferenceSliders returns the dashboard ranges, steps and defaults.
func ReferenceSliders() Sliders {
	return Sliders{
		Ethane:        Slider{Key: "ethane", Label: "Ethane Price ($/ton)", Min: 800, Max: 1300, Step: 50, Default: 1000},
		Electricity:   Slider{Key: "electricity", Label: "Electricity Price ($/kWh)", Min: 0.05, Max: 0.10, Step: 0.01, Default: 0.07},
		Steam:         Slider{Key: "steam", Label: "Steam Price ($/ton)", Min: 10, Max: 25, Step: 1, Default: 15},
		Refrigeration: Slider{Key: "refrigeration", Label: "Refrigeration Price ($/kWh)", Min: 0.03, Max: 0.08, Step: 0.01, Default: 0.05},
	}
}

// List returns the sliders in display order.
func (s Sliders) List() []Slider {
	return []Slider{s.Ethane, s.Electricity, s.Steam, s.Refrigeration}
}

// Validate checks every slider.
func (s Sliders) Validate() error {
	for _, sl := range s.List() {
		if err := sl.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Defaults returns the scenario with every slider at its default.
func (s Sliders) Defaults() Prices {
	return Prices{
		Ethane:        s.Ethane.Default,
		Electricity:   s.Electricity.Default,
		Steam:         s.Steam.Default,
		Refrigeration: s.Refrigeration.Default,
	}
}

// Snap snaps every price onto its slider.
func (s Sliders) Snap(p Prices) Prices {
	return Prices{
		Ethane:        s.Ethane.Snap(p.Ethane),
		Electricity:   s.Electricity.Snap(p.Electricity),
		Steam:         s.Steam.Snap(p.Steam),
		Refrigeration: s.Refrigeration.Snap(p.Refrigeration),
	}
}
