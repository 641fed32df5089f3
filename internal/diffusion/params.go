package diffusion

import "github.com/san-kum/cosray/internal/field"

// Parameter mutators. Each re-validates the full configuration and leaves
// the module unchanged on error. They must not be called while candidates
// are being processed concurrently.

func (s *SDE) SetMinimumStep(m float64) error {
	old := s.ctrl.MinStep
	s.ctrl.MinStep = m
	if err := s.validate(); err != nil {
		s.ctrl.MinStep = old
		return err
	}
	return nil
}

func (s *SDE) SetMaximumStep(m float64) error {
	old := s.ctrl.MaxStep
	s.ctrl.MaxStep = m
	if err := s.validate(); err != nil {
		s.ctrl.MaxStep = old
		return err
	}
	return nil
}

func (s *SDE) SetTolerance(tol float64) error {
	old := s.ctrl.Tolerance
	s.ctrl.Tolerance = tol
	if err := s.validate(); err != nil {
		s.ctrl.Tolerance = old
		return err
	}
	return nil
}

func (s *SDE) SetEpsilon(eps float64) error {
	old := s.ten.Epsilon
	s.ten.Epsilon = eps
	if err := s.validate(); err != nil {
		s.ten.Epsilon = old
		return err
	}
	return nil
}

func (s *SDE) SetAlpha(alpha float64) error {
	s.ten.Alpha = alpha
	return s.validate()
}

func (s *SDE) SetScale(scale float64) error {
	s.ten.Scale = scale
	return s.validate()
}

func (s *SDE) SetField(f field.Sampler) error {
	old := s.field
	s.field = f
	if err := s.validate(); err != nil {
		s.field = old
		return err
	}
	s.line = NewFieldLine(f)
	return nil
}

func (s *SDE) MinimumStep() float64 { return s.ctrl.MinStep }
func (s *SDE) MaximumStep() float64 { return s.ctrl.MaxStep }
func (s *SDE) Tolerance() float64   { return s.ctrl.Tolerance }
func (s *SDE) Epsilon() float64     { return s.ten.Epsilon }
func (s *SDE) Alpha() float64       { return s.ten.Alpha }
func (s *SDE) Scale() float64       { return s.ten.Scale }
func (s *SDE) Field() field.Sampler { return s.field }
