package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/basket/pkg/basket/internalerr"
	"github.com/cognicore/basket/pkg/basket/normalize"
)

// Params drives one analysis run.
type Params struct {
	Domain                      normalize.Domain `yaml:"item_domain"`
	MinItemSupport              float64          `yaml:"min_item_support"` // words domain only
	MinItemsetSupport           float64          `yaml:"min_itemset_support"`
	MinConfidence               float64          `yaml:"min_confidence"`
	LiftDistance                float64          `yaml:"lift_distance"`
	IncludeNegativeCorrelations bool             `yaml:"include_negative_correlations"`
	SampleLimit                 int              `yaml:"sample_limit"` // 0 = all records
}

// Defaults returns the thresholds that worked on the troll-tweet corpus
// for the given domain.
func Defaults(domain normalize.Domain) Params {
	if domain == normalize.DomainWords {
		return Params{
			Domain:                      normalize.DomainWords,
			MinItemSupport:              0.003,
			MinItemsetSupport:           0.001,
			MinConfidence:               0.1,
			LiftDistance:                0.2,
			IncludeNegativeCorrelations: true,
		}
	}
	return Params{
		Domain:                      normalize.DomainEmoji,
		MinItemsetSupport:           0.0001,
		MinConfidence:               0.1,
		LiftDistance:                0.1,
		IncludeNegativeCorrelations: true,
	}
}

// Validate rejects thresholds that cannot produce meaningful results.
func (p Params) Validate() error {
	if _, err := normalize.ParseDomain(string(p.Domain)); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := fraction("min_item_support", p.MinItemSupport); err != nil {
		return err
	}
	if err := fraction("min_itemset_support", p.MinItemsetSupport); err != nil {
		return err
	}
	if err := fraction("min_confidence", p.MinConfidence); err != nil {
		return err
	}
	if p.LiftDistance < 0 || math.IsNaN(p.LiftDistance) || math.IsInf(p.LiftDistance, 0) {
		return fmt.Errorf("%w: lift_distance must be a non-negative number, got %v", internalerr.ErrInvalidConfig, p.LiftDistance)
	}
	if p.SampleLimit < 0 {
		return fmt.Errorf("%w: sample_limit must be >= 0, got %d", internalerr.ErrInvalidConfig, p.SampleLimit)
	}
	return nil
}

func fraction(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be within [0,1], got %v", internalerr.ErrInvalidConfig, name, v)
	}
	return nil
}

// Load reads params from a YAML file. Keys missing from the file keep the
// defaults of the domain named in the file (emoji when unset).
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML params over the domain defaults.
func Parse(data []byte) (*Params, error) {
	var probe struct {
		Domain string `yaml:"item_domain"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	domain := normalize.DomainEmoji
	if probe.Domain != "" {
		d, err := normalize.ParseDomain(probe.Domain)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
		}
		domain = d
	}

	return ParseAs(data, domain)
}

// ParseAs decodes YAML params over the defaults of domain, which wins over
// any item_domain in data. Keys absent from data keep domain's defaults.
func ParseAs(data []byte, domain normalize.Domain) (*Params, error) {
	p := Defaults(domain)
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	p.Domain = domain
	return &p, nil
}

// Marshal renders params as YAML.
func (p Params) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
