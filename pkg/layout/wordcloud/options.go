package wordcloud

import (
	"github.com/matzehuels/slipmap/pkg/errors"
)

// Scale maps the normalized value fraction onto the font-size range.
type Scale string

// Supported font scales.
const (
	ScaleLinear Scale = "linear"
	ScaleSqrt   Scale = "sqrt"
)

// Defaults used when an option is not set.
const (
	DefaultMinFontSize = 10.0
	DefaultMaxFontSize = 80.0
	DefaultScale       = ScaleSqrt
	DefaultMaxSteps    = 10000
	DefaultAngleStep   = 0.1
	DefaultRadiusStep  = 1.0
)

// ParseScale validates a scale name. The empty string selects DefaultScale.
func ParseScale(s string) (Scale, error) {
	switch Scale(s) {
	case "":
		return DefaultScale, nil
	case ScaleLinear, ScaleSqrt:
		return Scale(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown font scale %q (want %s or %s)", s, ScaleLinear, ScaleSqrt)
}

// Options configures Layout.
type Options struct {
	MinFontSize float64
	MaxFontSize float64
	Scale       Scale
	MaxSteps    int     // spiral candidates tried per label before dropping it
	AngleStep   float64 // radians advanced per spiral step
	RadiusStep  float64 // radius growth per radian
	Padding     float64 // minimum gap kept between words
	Metrics     Metrics
}

// Option mutates Options.
type Option func(*Options)

// WithFontRange sets the smallest and largest font size.
func WithFontRange(minSize, maxSize float64) Option {
	return func(o *Options) { o.MinFontSize, o.MaxFontSize = minSize, maxSize }
}

// WithScale selects the font-size scale.
func WithScale(s Scale) Option {
	return func(o *Options) { o.Scale = s }
}

// WithMaxSteps caps the spiral candidates tried per label.
func WithMaxSteps(n int) Option {
	return func(o *Options) { o.MaxSteps = n }
}

// WithSpiral sets the spiral's angle step (radians) and radius growth per
// radian.
func WithSpiral(angleStep, radiusStep float64) Option {
	return func(o *Options) { o.AngleStep, o.RadiusStep = angleStep, radiusStep }
}

// WithPadding keeps at least p units between any two words.
func WithPadding(p float64) Option {
	return func(o *Options) { o.Padding = p }
}

// WithMetrics sets the text metrics provider.
func WithMetrics(m Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// DefaultOptions returns the options Layout starts from.
func DefaultOptions() Options {
	return Options{
		MinFontSize: DefaultMinFontSize,
		MaxFontSize: DefaultMaxFontSize,
		Scale:       DefaultScale,
		MaxSteps:    DefaultMaxSteps,
		AngleStep:   DefaultAngleStep,
		RadiusStep:  DefaultRadiusStep,
		Metrics:     CharMetrics{},
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if !(o.MinFontSize > 0) || !(o.MaxFontSize > 0) {
		return errors.New(errors.ErrCodeInvalidInput, "font sizes must be positive, got %g..%g", o.MinFontSize, o.MaxFontSize)
	}
	if o.MinFontSize > o.MaxFontSize {
		return errors.New(errors.ErrCodeInvalidInput, "min font size %g exceeds max %g", o.MinFontSize, o.MaxFontSize)
	}
	if _, err := ParseScale(string(o.Scale)); err != nil {
		return err
	}
	if o.MaxSteps <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max steps must be positive, got %d", o.MaxSteps)
	}
	if !(o.AngleStep > 0) || !(o.RadiusStep > 0) {
		return errors.New(errors.ErrCodeInvalidInput, "spiral steps must be positive, got angle %g radius %g", o.AngleStep, o.RadiusStep)
	}
	if o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "padding must not be negative, got %g", o.Padding)
	}
	if o.Metrics == nil {
		return errors.New(errors.ErrCodeInvalidInput, "metrics provider is required")
	}
	return nil
}
