package diffusion

import (
	"testing"

	"github.com/san-kum/cosray/internal/unit"
	"github.com/san-kum/cosray/internal/vec"
)

func testController() StepController {
	return StepController{
		Tolerance: 1e-4,
		MinStep:   10 * unit.Parsec,
		MaxStep:   1000 * unit.Parsec,
	}
}

func TestStepController_AcceptAndGrow(t *testing.T) {
	c := testController()
	h := 10 * unit.Parsec
	pos := vec.Vec3{X: 1}

	// identical estimates: zero error, maximum growth
	v := c.Evaluate(pos, pos, h)
	if !v.Accept || v.Forced {
		t.Fatalf("zero error should be a clean accept, got %+v", v)
	}
	if v.Next != ctrlMaxScale*h {
		t.Errorf("next = %g, expected max growth %g", v.Next, ctrlMaxScale*h)
	}
}

func TestStepController_GrowthBoundedByMaxStep(t *testing.T) {
	c := testController()
	h := 500 * unit.Parsec
	pos := vec.Vec3{}

	v := c.Evaluate(pos, pos, h)
	if v.Next != c.MaxStep {
		t.Errorf("next = %g, expected clamp to maxStep %g", v.Next, c.MaxStep)
	}
}

func TestStepController_Reject(t *testing.T) {
	c := testController()
	h := 100 * unit.Parsec

	lo := vec.Vec3{}
	hi := vec.Vec3{X: 1e-2 * h} // relative error 1e-2 >> tolerance

	v := c.Evaluate(lo, hi, h)
	if v.Accept {
		t.Fatal("error above tolerance must reject")
	}
	if v.Next >= h {
		t.Errorf("rejected step must shrink: next %g >= h %g", v.Next, h)
	}
	if v.Next < c.MinStep {
		t.Errorf("retry step %g below minStep %g", v.Next, c.MinStep)
	}
}

func TestStepController_ShrinkBounded(t *testing.T) {
	c := testController()
	h := 100 * unit.Parsec

	lo := vec.Vec3{}
	hi := vec.Vec3{X: 1e6 * h} // absurd error

	v := c.Evaluate(lo, hi, h)
	if v.Accept {
		t.Fatal("expected rejection")
	}
	if v.Next < ctrlMinScale*h-1e-9 {
		t.Errorf("shrink exceeded bound: next %g, floor %g", v.Next, ctrlMinScale*h)
	}
}

func TestStepController_ForcedAcceptAtMinStep(t *testing.T) {
	c := testController()
	h := c.MinStep

	lo := vec.Vec3{}
	hi := vec.Vec3{X: h} // hopeless error at the floor

	v := c.Evaluate(lo, hi, h)
	if !v.Accept {
		t.Fatal("step at minStep must be accepted to guarantee progress")
	}
	if !v.Forced {
		t.Error("acceptance at minStep above tolerance must be marked forced")
	}
	if v.Next != c.MinStep {
		t.Errorf("forced accept should propose minStep, got %g", v.Next)
	}
}

func TestStepController_AcceptNeverShrinks(t *testing.T) {
	c := testController()
	h := 100 * unit.Parsec

	// error just below tolerance: raw growth formula would shrink, the
	// controller must not
	lo := vec.Vec3{}
	hi := vec.Vec3{X: 0.99e-4 * h}

	v := c.Evaluate(lo, hi, h)
	if !v.Accept {
		t.Fatal("error below tolerance must accept")
	}
	if v.Next < h {
		t.Errorf("accepted step proposed a smaller next step: %g < %g", v.Next, h)
	}
}
