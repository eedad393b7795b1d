package reagent

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
)

// An optimizer owns the gradient buffer and adaptive update state for
// exactly one network's parameter set.
// It never touches parameters outside that set.
type optimizer struct {
	params  []*anydiff.Var
	creator anyvec.Creator
	trans   anysgd.Transformer
	lr      float64
	grad    anydiff.Grad
}

func newOptimizer(params []*anydiff.Var, lr float64) *optimizer {
	res := &optimizer{
		params: params,
		trans:  &AMSGrad{},
		lr:     lr,
	}
	if len(params) > 0 {
		res.creator = params[0].Vector.Creator()
	}
	return res
}

// zeroGrad discards any accumulated gradients.
func (o *optimizer) zeroGrad() {
	o.grad = anydiff.NewGrad(o.params...)
}

// backward accumulates the gradient of the scalar loss with respect
// to the optimizer's parameters.
// Parameters outside the bound set are skipped during propagation.
func (o *optimizer) backward(loss anydiff.Res) {
	c := loss.Output().Creator()
	loss.Propagate(anyvec.Ones(c, 1), o.grad)
}

// step applies one descent update using the accumulated gradients.
// The gradients are stale afterwards and must be zeroed before the
// next backward pass.
func (o *optimizer) step() {
	if len(o.grad) == 0 {
		return
	}
	update := o.trans.Transform(o.grad)
	update.Scale(o.creator.MakeNumeric(-o.lr))
	update.AddToVars()
}
