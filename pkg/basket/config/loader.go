package config

import (
	"fmt"
	"os"

	"github.com/cognicore/basket/pkg/basket/internalerr"
	"github.com/cognicore/basket/pkg/basket/normalize"
)

// Overrides holds values set explicitly on the command line. Nil fields
// leave the file or default value alone.
type Overrides struct {
	MinItemSupport              *float64
	MinItemsetSupport           *float64
	MinConfidence               *float64
	LiftDistance                *float64
	IncludeNegativeCorrelations *bool
	SampleLimit                 *int
}

// Loader resolves the params of a run: domain defaults, then the params
// file, then overrides. A Domain set here replaces the file's item_domain
// and supplies the defaults the file is read over. The result is validated.
type Loader struct {
	ParamsPath string
	Domain     string
	Overrides  Overrides
}

// Load returns validated params.
func (l *Loader) Load() (*Params, error) {
	var domain normalize.Domain
	if l.Domain != "" {
		d, err := normalize.ParseDomain(l.Domain)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
		}
		domain = d
	}

	var p *Params
	switch {
	case l.ParamsPath != "" && domain != "":
		// the file's keys are laid over the flag domain's defaults, not
		// over the defaults of the domain the file names
		data, err := os.ReadFile(l.ParamsPath)
		if err != nil {
			return nil, fmt.Errorf("load params: %w", err)
		}
		if p, err = ParseAs(data, domain); err != nil {
			return nil, fmt.Errorf("load params: %w", err)
		}
	case l.ParamsPath != "":
		loaded, err := Load(l.ParamsPath)
		if err != nil {
			return nil, fmt.Errorf("load params: %w", err)
		}
		p = loaded
	case domain != "":
		def := Defaults(domain)
		p = &def
	default:
		def := Defaults(normalize.DomainEmoji)
		p = &def
	}

	o := l.Overrides
	if o.MinItemSupport != nil {
		p.MinItemSupport = *o.MinItemSupport
	}
	if o.MinItemsetSupport != nil {
		p.MinItemsetSupport = *o.MinItemsetSupport
	}
	if o.MinConfidence != nil {
		p.MinConfidence = *o.MinConfidence
	}
	if o.LiftDistance != nil {
		p.LiftDistance = *o.LiftDistance
	}
	if o.IncludeNegativeCorrelations != nil {
		p.IncludeNegativeCorrelations = *o.IncludeNegativeCorrelations
	}
	if o.SampleLimit != nil {
		p.SampleLimit = *o.SampleLimit
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
