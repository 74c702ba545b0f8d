package srs

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned when a Params value would break scheduling invariants.
var ErrInvalidParams = errors.New("invalid srs params")

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Ease factor bounds. MaxEaseFactor of 0 means no ceiling.
	InitialEaseFactor float64
	MinEaseFactor     float64
	MaxEaseFactor     float64

	// Ease factor adjustments per outcome
	CorrectEaseBonus     float64
	IncorrectEasePenalty float64

	// Intervals, in days, for the first and second consecutive correct
	// answers and after a failed answer.
	FirstInterval  int
	SecondInterval int
	LapseInterval  int

	// MaxIntervalDays caps interval growth so due dates stay storable.
	MaxIntervalDays int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	InitialEaseFactor    float64
	MinEaseFactor        float64
	MaxEaseFactor        float64
	CorrectEaseBonus     float64
	IncorrectEasePenalty float64
	FirstInterval        int
	SecondInterval       int
	LapseInterval        int
	MaxIntervalDays      int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		InitialEaseFactor: 2.5,
		MinEaseFactor:     1.3,
		MaxEaseFactor:     0,

		CorrectEaseBonus:     0.1,
		IncorrectEasePenalty: 0.2,

		FirstInterval:  1,
		SecondInterval: 6,
		LapseInterval:  1,

		MaxIntervalDays: 36500,
	}
}

// NewParams creates a new Params instance with custom configuration and
// validates the result.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}
	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}
	if config.CorrectEaseBonus > 0 {
		params.CorrectEaseBonus = config.CorrectEaseBonus
	}
	if config.IncorrectEasePenalty > 0 {
		params.IncorrectEasePenalty = config.IncorrectEasePenalty
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks that the parameters are internally consistent.
func (p *Params) Validate() error {
	switch {
	case p.MinEaseFactor <= 1.0:
		return fmt.Errorf("%w: min ease factor must be greater than 1.0", ErrInvalidParams)
	case p.InitialEaseFactor < p.MinEaseFactor:
		return fmt.Errorf("%w: initial ease factor below minimum", ErrInvalidParams)
	case p.MaxEaseFactor != 0 && p.MaxEaseFactor < p.InitialEaseFactor:
		return fmt.Errorf("%w: max ease factor below initial ease factor", ErrInvalidParams)
	case p.FirstInterval < 1 || p.SecondInterval < p.FirstInterval || p.LapseInterval < 1:
		return fmt.Errorf("%w: intervals must be positive and non-decreasing", ErrInvalidParams)
	case p.MaxIntervalDays < p.SecondInterval || p.MaxIntervalDays < p.LapseInterval:
		return fmt.Errorf("%w: max interval below fixed intervals", ErrInvalidParams)
	}
	return nil
}
