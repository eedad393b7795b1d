package reagent

import (
	"errors"

	"github.com/unixpickle/anynet"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// Save writes the policy's network to a file so that a later run can
// warm start from it.
func (s *SoftmaxPolicy) Save(path string) error {
	if err := serializer.SaveAny(path, s.Net); err != nil {
		return essentials.AddCtx("save policy", err)
	}
	return nil
}

// LoadSoftmaxPolicy restores a policy saved with Save.
func LoadSoftmaxPolicy(path string) (*SoftmaxPolicy, error) {
	var net anynet.Net
	if err := serializer.LoadAny(path, &net); err != nil {
		return nil, essentials.AddCtx("load policy", err)
	}
	if len(net) == 0 {
		return nil, errors.New("load policy: empty network")
	}
	out, ok := net[len(net)-1].(*anynet.FC)
	if !ok {
		return nil, errors.New("load policy: output layer is not fully-connected")
	}
	return &SoftmaxPolicy{Net: net, NumSlates: out.OutCount}, nil
}

// Save writes the baseline's network to a file so that a later run
// can warm start from it.
func (f *FFBaseline) Save(path string) error {
	if err := serializer.SaveAny(path, f.Net); err != nil {
		return essentials.AddCtx("save baseline", err)
	}
	return nil
}

// LoadFFBaseline restores a baseline saved with Save.
func LoadFFBaseline(path string) (*FFBaseline, error) {
	var net anynet.Net
	if err := serializer.LoadAny(path, &net); err != nil {
		return nil, essentials.AddCtx("load baseline", err)
	}
	return &FFBaseline{Net: net}, nil
}
