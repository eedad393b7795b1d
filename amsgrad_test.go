package reagent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestAMSGradFirstStep(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	v := anydiff.NewVar(c.MakeVectorData(c.MakeNumericList([]float64{1, -3})))

	grad := anydiff.Grad{
		v: c.MakeVectorData(c.MakeNumericList([]float64{0.5, -2})),
	}
	trans := &AMSGrad{}
	out := vecToFloats(trans.Transform(grad)[v])

	// The first bias-corrected step is the gradient normalized by
	// its own magnitude, i.e. the sign.
	assert.InDelta(t, 1, out[0], 1e-6)
	assert.InDelta(t, -1, out[1], 1e-6)
}

func TestAMSGradDescendsQuadratic(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	v := anydiff.NewVar(c.MakeVectorData(c.MakeNumericList([]float64{3})))

	trans := &AMSGrad{}
	for i := 0; i < 2000; i++ {
		grad := anydiff.NewGrad(v)
		loss := anydiff.Mul(v, v)
		loss.Propagate(anyvec.Ones(c, 1), grad)
		update := trans.Transform(grad)
		update.Scale(c.MakeNumeric(-0.01))
		update.AddToVars()
	}
	assert.InDelta(t, 0, vecToFloats(v.Vector)[0], 0.1)
}

func TestAMSGradDoesNotMutateInput(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	v := anydiff.NewVar(c.MakeVectorData(c.MakeNumericList([]float64{1})))
	grad := anydiff.Grad{
		v: c.MakeVectorData(c.MakeNumericList([]float64{0.5})),
	}
	trans := &AMSGrad{}
	trans.Transform(grad)
	assert.Equal(t, 0.5, vecToFloats(grad[v])[0])
}
