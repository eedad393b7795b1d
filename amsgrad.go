package reagent

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
)

// AMSGrad is an anysgd.Transformer implementing the AMSGrad variant
// of Adam, which divides by the running maximum of the second moment
// instead of the second moment itself.
//
// Like anysgd.Adam, it produces bias-corrected update directions and
// accumulates state across calls, so one AMSGrad must be bound to
// exactly one parameter set.
type AMSGrad struct {
	// DecayRate1 is the first moment decay rate.
	// If 0, a default of 0.9 is used.
	DecayRate1 float64

	// DecayRate2 is the second moment decay rate.
	// If 0, a default of 0.999 is used.
	DecayRate2 float64

	// Damping is added to the denominator to avoid division
	// by zero.
	// If 0, a default of 1e-8 is used.
	Damping float64

	firstMoment  anydiff.Grad
	secondMoment anydiff.Grad
	maxSecond    anydiff.Grad
	iteration    float64
}

var _ anysgd.Transformer = &AMSGrad{}

// Transform updates the moment estimates with realGrad and returns
// the adaptive update direction.
//
// The returned gradient is newly allocated; realGrad is not
// modified.
func (a *AMSGrad) Transform(realGrad anydiff.Grad) anydiff.Grad {
	if a.firstMoment == nil {
		a.firstMoment = zeroGrad(realGrad)
		a.secondMoment = zeroGrad(realGrad)
		a.maxSecond = zeroGrad(realGrad)
	}
	a.iteration++

	decay1 := a.decayRate(a.DecayRate1, 0.9)
	decay2 := a.decayRate(a.DecayRate2, 0.999)
	res := anydiff.Grad{}
	for variable, grad := range realGrad {
		c := grad.Creator()

		first := a.firstMoment[variable]
		first.Scale(c.MakeNumeric(decay1))
		scaledGrad := grad.Copy()
		scaledGrad.Scale(c.MakeNumeric(1 - decay1))
		first.Add(scaledGrad)

		second := a.secondMoment[variable]
		second.Scale(c.MakeNumeric(decay2))
		squareGrad := grad.Copy()
		squareGrad.Mul(grad)
		squareGrad.Scale(c.MakeNumeric(1 - decay2))
		second.Add(squareGrad)

		// max(old, new) computed as old + clipPos(new - old).
		maxSecond := a.maxSecond[variable]
		excess := second.Copy()
		excess.Sub(maxSecond)
		anyvec.ClipPos(excess)
		maxSecond.Add(excess)

		numerator := first.Copy()
		numerator.Scale(c.MakeNumeric(1 / (1 - math.Pow(decay1, a.iteration))))
		denominator := maxSecond.Copy()
		anyvec.Pow(denominator, c.MakeNumeric(0.5))
		denominator.Scale(c.MakeNumeric(1 / math.Sqrt(1-math.Pow(decay2, a.iteration))))
		denominator.AddScalar(c.MakeNumeric(a.damping()))
		numerator.Div(denominator)
		res[variable] = numerator
	}
	return res
}

func (a *AMSGrad) decayRate(param, def float64) float64 {
	if param == 0 {
		return def
	}
	return param
}

func (a *AMSGrad) damping() float64 {
	if a.Damping == 0 {
		return 1e-8
	}
	return a.Damping
}

func zeroGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for variable, grad := range g {
		res[variable] = grad.Creator().MakeVector(grad.Len())
	}
	return res
}
