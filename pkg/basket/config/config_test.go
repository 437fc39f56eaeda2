package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/basket/pkg/basket/internalerr"
	"github.com/cognicore/basket/pkg/basket/normalize"
)

func TestDefaultsAreValid(t *testing.T) {
	for _, d := range []normalize.Domain{normalize.DomainEmoji, normalize.DomainWords} {
		p := Defaults(d)
		if p.Domain != d {
			t.Errorf("Defaults(%s).Domain = %s", d, p.Domain)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("Defaults(%s) should validate: %v", d, err)
		}
	}

	if Defaults(normalize.DomainWords).MinItemSupport != 0.003 {
		t.Error("words defaults should prune items below 0.3%")
	}
	if Defaults(normalize.DomainEmoji).MinItemSupport != 0 {
		t.Error("emoji defaults should not prune")
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"itemset support above 1", func(p *Params) { p.MinItemsetSupport = 1.5 }},
		{"itemset support negative", func(p *Params) { p.MinItemsetSupport = -0.1 }},
		{"item support above 1", func(p *Params) { p.MinItemSupport = 2 }},
		{"confidence above 1", func(p *Params) { p.MinConfidence = 1.01 }},
		{"confidence NaN", func(p *Params) { p.MinConfidence = math.NaN() }},
		{"negative lift distance", func(p *Params) { p.LiftDistance = -0.2 }},
		{"infinite lift distance", func(p *Params) { p.LiftDistance = math.Inf(1) }},
		{"negative sample", func(p *Params) { p.SampleLimit = -1 }},
		{"unknown domain", func(p *Params) { p.Domain = "hashtags" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Defaults(normalize.DomainWords)
			tt.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig: %v", err)
			}
		})
	}
}

func TestValidateAcceptsBoundaries(t *testing.T) {
	p := Params{
		Domain:            normalize.DomainEmoji,
		MinItemsetSupport: 0,
		MinConfidence:     1,
		LiftDistance:      0,
	}
	if err := p.Validate(); err != nil {
		t.Errorf("boundary values should validate: %v", err)
	}
}

func TestParseOverDefaults(t *testing.T) {
	data := []byte(`
item_domain: words
min_confidence: 0.5
include_negative_correlations: false
sample_limit: 100
`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Domain != normalize.DomainWords {
		t.Errorf("domain = %s", p.Domain)
	}
	if p.MinConfidence != 0.5 {
		t.Errorf("min_confidence = %v", p.MinConfidence)
	}
	if p.IncludeNegativeCorrelations {
		t.Error("include_negative_correlations should be false")
	}
	if p.SampleLimit != 100 {
		t.Errorf("sample_limit = %d", p.SampleLimit)
	}
	// untouched keys keep words defaults
	if p.MinItemSupport != 0.003 || p.LiftDistance != 0.2 {
		t.Errorf("defaults not kept: %+v", p)
	}
}

func TestParseDomainAlias(t *testing.T) {
	p, err := Parse([]byte("item_domain: emoji-only\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Domain != normalize.DomainEmoji {
		t.Errorf("domain = %s", p.Domain)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("item_domain: [oops")); err == nil {
		t.Error("malformed YAML should error")
	}
	_, err := Parse([]byte("item_domain: hashtags\n"))
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("unknown domain should be a config error, got %v", err)
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	want := Defaults(normalize.DomainWords)
	want.MinConfidence = 0.25

	data, err := want.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != want {
		t.Errorf("Load = %+v, want %+v", *got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/params.yaml"); err == nil {
		t.Error("missing file should error")
	}
}
