// Package config loads the study, plant and dashboard settings. The zero
// configuration file reproduces the reference ODHE study and dashboard.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/user/odhe_tea_go/internal/analysis"
	"github.com/user/odhe_tea_go/internal/msp"
	"github.com/user/odhe_tea_go/internal/tea"
)

// Config holds the application configuration.
type Config struct {
	Study   StudyConfig  `json:"study" yaml:"study"`
	Plant   msp.Plant    `json:"plant" yaml:"plant"`
	Sliders msp.Sliders  `json:"sliders" yaml:"sliders"`
	Output  OutputConfig `json:"output" yaml:"output"`
	Server  ServerConfig `json:"server" yaml:"server"`
}

// StudyConfig describes the sensitivity run. Sample size and parameters are
// checked by the sampler and problem definition rather than here, so their
// errors surface with the sensitivity error taxonomy.
type StudyConfig struct {
	SampleSize   int               `json:"sample_size" yaml:"sample_size"`
	SecondOrder  bool              `json:"second_order" yaml:"second_order"`
	Scramble     bool              `json:"scramble" yaml:"scramble"`
	Seed         *uint64           `json:"seed,omitempty" yaml:"seed,omitempty"`
	Skip         uint64            `json:"skip" yaml:"skip"`
	Workers      int               `json:"workers" yaml:"workers" validate:"gte=0,lte=256"`
	Resamples    int               `json:"resamples" yaml:"resamples"`
	ConfLevel    float64           `json:"conf_level" yaml:"conf_level" validate:"gt=0,lt=1"`
	Parameters   []ParameterConfig `json:"parameters" yaml:"parameters"`
	Coefficients tea.Coefficients  `json:"coefficients" yaml:"coefficients"`
}

// ParameterConfig is one entry of the parameter space.
type ParameterConfig struct {
	Name string  `json:"name" yaml:"name"`
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// OutputConfig controls where and what the reporter writes.
type OutputConfig struct {
	Dir string `json:"dir" yaml:"dir" validate:"required"`
	PDF bool   `json:"pdf" yaml:"pdf"`
}

// ServerConfig controls the web dashboard.
type ServerConfig struct {
	Addr         string   `json:"addr" yaml:"addr" validate:"required,hostname_port"`
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins" validate:"dive,required"`
	SweepPoints  int      `json:"sweep_points" yaml:"sweep_points" validate:"gte=2,lte=101"`
}

// Default returns the reference configuration.
func Default() Config {
	ref := analysis.ReferenceProblem()
	params := make([]ParameterConfig, ref.NumVars())
	for i, name := range ref.Names {
		params[i] = ParameterConfig{Name: name, Low: ref.Bounds[i].Low, High: ref.Bounds[i].High}
	}
	return Config{
		Study: StudyConfig{
			SampleSize:   1024,
			Scramble:     true,
			Resamples:    analysis.DefaultResamples,
			ConfLevel:    analysis.DefaultConfLevel,
			Parameters:   params,
			Coefficients: tea.ReferenceCoefficients(),
		},
		Plant:   msp.ReferencePlant(),
		Sliders: msp.ReferenceSliders(),
		Output: OutputConfig{
			Dir: "results",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8501",
			AllowOrigins: []string{"http://localhost:8501", "http://127.0.0.1:8501"},
			SweepPoints:  msp.DefaultSweepPoints,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s failed on %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return err
	}
	if err := c.Sliders.Validate(); err != nil {
		return err
	}
	if _, err := c.Problem(); err != nil {
		return err
	}
	return nil
}

// Problem builds the sensitivity problem from the parameter list. The TEA
// model reads its inputs by position, so the list must name the model
// inputs in reference order; only the bounds are free.
func (c Config) Problem() (*analysis.Problem, error) {
	names := make([]string, len(c.Study.Parameters))
	bounds := make([]analysis.Bound, len(c.Study.Parameters))
	for i, p := range c.Study.Parameters {
		names[i] = p.Name
		bounds[i] = analysis.Bound{Low: p.Low, High: p.High}
	}
	problem, err := analysis.NewProblem(names, bounds)
	if err != nil {
		return nil, err
	}

	ref := analysis.ReferenceProblem().Names
	if len(names) != tea.NumInputs {
		return nil, &analysis.ProblemError{
			Field:  "study.parameters",
			Reason: fmt.Sprintf("the TEA model takes %d inputs %v, got %d", tea.NumInputs, ref, len(names)),
		}
	}
	for i, name := range names {
		if name != ref[i] {
			return nil, &analysis.ProblemError{
				Field:  fmt.Sprintf("study.parameters[%d]", i),
				Reason: fmt.Sprintf("expected %q, got %q (inputs must be listed as %v)", ref[i], name, ref),
			}
		}
	}
	return problem, nil
}
