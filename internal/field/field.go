// Package field provides magnetic field models the transport engine samples
// during field-line integration. Implementations cover the three variants the
// engine is used with: analytic uniform fields, synthetic turbulence, and
// tabulated grids.
package field

import (
	"errors"

	"github.com/san-kum/cosray/internal/vec"
)

// ErrOutOfDomain indicates a sample position outside the field's region of
// validity. The engine treats it as fatal for the affected candidate.
var ErrOutOfDomain = errors.New("field: position outside field domain")

// Sampler returns the magnetic field vector (tesla) at a position (meters).
type Sampler interface {
	At(pos vec.Vec3) (vec.Vec3, error)
}

// Uniform is the analytic constant-field model.
type Uniform struct {
	B vec.Vec3
}

func NewUniform(b vec.Vec3) *Uniform { return &Uniform{B: b} }

func (u *Uniform) At(vec.Vec3) (vec.Vec3, error) { return u.B, nil }
