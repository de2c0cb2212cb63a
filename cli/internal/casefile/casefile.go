package casefile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/pkg/types"
	"github.com/wqlegmed/death-time-calculator/pkg/watch"
)

// File is one parsed case file.
type File struct {
	Case    types.Observation `yaml:"case"`
	Options Options           `yaml:"options"`
}

// Options are the engine settings stored next to a case.
type Options struct {
	// Locale is en | zh. Default en.
	Locale string `yaml:"locale"`

	// DecayForm is continuous | literal. Default continuous.
	DecayForm string `yaml:"decay_form"`

	// FixedLocation ignores the case location and humidity and uses the
	// default humidity context.
	FixedLocation bool `yaml:"fixed_location"`
}

// Engine converts the options into engine options.
func (o Options) Engine() (estimate.Options, error) {
	locale, err := estimate.ParseLocale(o.Locale)
	if err != nil {
		return estimate.Options{}, err
	}
	decay, err := estimate.ParseDecayForm(o.DecayForm)
	if err != nil {
		return estimate.Options{}, err
	}
	return estimate.Options{Locale: locale, Decay: decay, FixedLocation: o.FixedLocation}, nil
}

// Load reads and parses the case file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("casefile: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a case file from YAML.
func Parse(data []byte) (*File, error) {
	f := defaults()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("casefile: parse yaml: %w", err)
	}
	normalize(f)
	if err := validate(f); err != nil {
		return nil, fmt.Errorf("casefile: %w", err)
	}
	return f, nil
}

// Watch calls onChange with the reloaded file each time path is written.
// It runs until ctx is cancelled. A file that fails to load is logged and
// skipped; onChange is not called for it.
func Watch(ctx context.Context, path string, onChange func(*File)) error {
	return watch.File(ctx, path, func() error {
		f, err := Load(path)
		if err != nil {
			return err
		}
		onChange(f)
		return nil
	})
}

// defaults returns a File pre-populated with default values.
func defaults() *File {
	return &File{
		Case: types.Observation{Sex: types.SexMale},
		Options: Options{
			Locale:    string(estimate.LocaleEN),
			DecayForm: string(estimate.DecayContinuous),
		},
	}
}

// normalize maps Chinese or loosely spelled weather labels to their
// canonical names. Unrecognised labels are left for validate to reject.
func normalize(f *File) {
	loc := f.Case.Location
	if loc == nil || loc.Weather == "" {
		return
	}
	if w, ok := estimate.ParseWeather(string(loc.Weather)); ok {
		loc.Weather = w
	}
}

// validate checks the observation ranges and the option enums.
func validate(f *File) error {
	if err := f.Case.Validate(); err != nil {
		return err
	}
	if _, err := f.Options.Engine(); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	return nil
}
