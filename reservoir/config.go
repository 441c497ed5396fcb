// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"fmt"

	"cogentcore.org/core/math32"
	"cogentcore.org/core/math32/minmax"
	"cogentcore.org/lab/base/randx"
	"github.com/rescomp/reservoir/actfn"
	"github.com/rescomp/reservoir/lif"
	"github.com/rescomp/reservoir/stp"
)

///////////////////////////////////////////////////////////////////////
//  config.go contains the validated settings object graph that drives
//  reservoir construction.  No file or text parsing happens here: callers
//  supply fully-populated structs (typically starting from Defaults).

// DelayParams configure the distance-to-delay policy of a synapse schema.
type DelayParams struct {
	Method   DelayMethods `desc:"policy mapping synapse distance to signal delay"`
	MaxDelay int32        `def:"0" min:"0" desc:"maximum delay in cycles -- 0 disables delay regardless of method"`
}

func (dp *DelayParams) Defaults() {
	dp.Method = DistanceDelay
	dp.MaxDelay = 0
}

func (dp *DelayParams) Validate() error {
	if dp.Method < 0 || dp.Method >= DelayMethodsN {
		return fmt.Errorf("delay: unknown method %d", dp.Method)
	}
	if dp.MaxDelay < 0 {
		return fmt.Errorf("delay: MaxDelay %d is negative", dp.MaxDelay)
	}
	return nil
}

// SynParams configure the synapses created by one wiring schema: the weight
// magnitude distribution, the delay policy, and short-term plasticity.
type SynParams struct {
	Weight randx.RandParams `view:"inline" desc:"distribution of initial weight magnitude -- role determines the sign"`
	Delay  DelayParams      `view:"inline" desc:"distance-to-delay policy"`
	Plast  stp.Params       `view:"inline" desc:"short-term plasticity -- only effective on synapses with a spiking source"`
}

func (sp *SynParams) Defaults() {
	sp.Weight.Dist = randx.Uniform
	sp.Weight.Mean = 0.5
	sp.Weight.Var = 0.5
	sp.Delay.Defaults()
	sp.Plast.Defaults()
	sp.Plast.On = false
}

func (sp *SynParams) Validate() error {
	return sp.Delay.Validate()
}

// RetainParams configure the retainment (leak) property applied to a
// fraction of a group's analog neurons: new activation is blended with the
// previous one, giving those neurons longer intrinsic memory.
type RetainParams struct {
	Density  float32          `def:"0" min:"0" max:"1" desc:"fraction of the group's neurons given retainment, selected by shuffling"`
	Strength randx.RandParams `view:"inline" desc:"distribution of the retainment coefficient in [0, 1) -- share of the previous signal kept each cycle"`
}

func (rp *RetainParams) Defaults() {
	rp.Density = 0
	rp.Strength.Dist = randx.Uniform
	rp.Strength.Mean = 0.5
	rp.Strength.Var = 0.25
}

// PredictorParams select which predictors a group's neurons expose to the
// downstream readout.  The enabled set is fixed at construction.
type PredictorParams struct {
	Activation          bool    `desc:"current signal value"`
	ActivationPower     bool    `desc:"current signal raised to PowerExp, keeping sign"`
	PowerExp            float32 `def:"2" desc:"exponent for ActivationPower"`
	ActivationFadingSum bool    `desc:"exponentially fading sum of signal values"`
	ActFadingStrength   float32 `def:"0.005" min:"0" max:"1" desc:"per-cycle fade coefficient of the activation fading sum"`
	FiringFadingSum     bool    `desc:"exponentially fading sum of emitted spikes"`
	FireFadingStrength  float32 `def:"0.005" min:"0" max:"1" desc:"per-cycle fade coefficient of the firing fading sum"`
	FiringMovingAvg     bool    `desc:"average firing rate over the trailing Window cycles"`
	FiringCount         bool    `desc:"number of spikes within the trailing Window cycles"`
	Window              int32   `def:"64" min:"1" max:"64" desc:"trailing window, in cycles, for FiringMovingAvg and FiringCount"`
}

func (pp *PredictorParams) Defaults() {
	pp.PowerExp = 2
	pp.ActFadingStrength = 0.005
	pp.FireFadingStrength = 0.005
	pp.Window = 64
}

// NumEnabled returns the number of enabled predictors.
func (pp *PredictorParams) NumEnabled() int {
	n := 0
	for _, on := range []bool{pp.Activation, pp.ActivationPower, pp.ActivationFadingSum,
		pp.FiringFadingSum, pp.FiringMovingAvg, pp.FiringCount} {
		if on {
			n++
		}
	}
	return n
}

// RequiredHistory returns the minimum number of cycles a neuron must have
// seen before its predictors are meaningful.
func (pp *PredictorParams) RequiredHistory() int32 {
	if pp.FiringMovingAvg || pp.FiringCount {
		return pp.Window
	}
	if pp.NumEnabled() > 0 {
		return 1
	}
	return 0
}

func (pp *PredictorParams) Validate() error {
	if pp.Window < 1 || pp.Window > 64 {
		return fmt.Errorf("predictors: Window %d outside [1, 64]", pp.Window)
	}
	return nil
}

// GroupParams configure one neuron group within a pool: a set of neurons
// sharing a type, activation function, and parameter distributions.
type GroupParams struct {
	Name       string           `desc:"group name, unique within the pool"`
	Share      float32          `def:"1" min:"0" desc:"relative share of the pool's neurons allotted to this group"`
	Type       NeurTypes        `desc:"neuron variant -- AnalogHidden or SpikingHidden"`
	Act        actfn.Params     `view:"inline" desc:"activation function for analog neurons"`
	Spike      lif.Params       `view:"inline" desc:"membrane dynamics for spiking neurons"`
	Bias       randx.RandParams `view:"inline" desc:"distribution of per-neuron bias -- Mean dist with Mean 0 for no bias"`
	Retain     RetainParams     `view:"inline" desc:"retainment (leak) applied to a fraction of analog neurons"`
	Predictors PredictorParams  `view:"inline" desc:"predictors exposed by this group's neurons"`
}

func (gp *GroupParams) Defaults() {
	gp.Share = 1
	gp.Type = AnalogHidden
	gp.Act.Defaults()
	gp.Spike.Defaults()
	gp.Bias.Dist = randx.Mean
	gp.Bias.Mean = 0
	gp.Retain.Defaults()
	gp.Predictors.Defaults()
	gp.Predictors.Activation = true
}

func (gp *GroupParams) Validate() error {
	if gp.Type != AnalogHidden && gp.Type != SpikingHidden {
		return fmt.Errorf("group %q: type %s is not a hidden neuron type", gp.Name, gp.Type)
	}
	if gp.Share <= 0 {
		return fmt.Errorf("group %q: Share must be positive", gp.Name)
	}
	if gp.Retain.Density < 0 || gp.Retain.Density > 1 {
		return fmt.Errorf("group %q: Retain.Density %g outside [0, 1]", gp.Name, gp.Retain.Density)
	}
	if err := gp.Predictors.Validate(); err != nil {
		return fmt.Errorf("group %q: %w", gp.Name, err)
	}
	return nil
}

// RandSchemaParams configure the random intra-pool wiring schema.
type RandSchemaParams struct {
	Density          float32   `def:"0.1" min:"0" max:"1" desc:"intended synapse count per target neuron as a fraction of pool size"`
	Repetitions      int32     `def:"1" min:"1" desc:"number of times the schema is applied"`
	ConstantCount    bool      `desc:"disable the probabilistic rounding of the per-target synapse count"`
	AllowSelf        bool      `desc:"allow a neuron to connect to itself"`
	ReplaceExisting  bool      `desc:"replace an existing synapse for the same source-target pair instead of rejecting the new one"`
	DistanceWeighted bool      `desc:"prefer sources whose distance to the target is near a Gaussian draw around the candidate mean distance, instead of uniform selection"`
	ExcitatoryShare  float32   `def:"4" min:"0" desc:"relative share of excitatory role assignment for spiking targets"`
	InhibitoryShare  float32   `def:"1" min:"0" desc:"relative share of inhibitory role assignment for spiking targets"`
	Syn              SynParams `view:"add-fields" desc:"synapse parameters for this schema"`
}

func (rp *RandSchemaParams) Defaults() {
	rp.Density = 0.1
	rp.Repetitions = 1
	rp.ExcitatoryShare = 4
	rp.InhibitoryShare = 1
	rp.Syn.Defaults()
}

func (rp *RandSchemaParams) Validate() error {
	if rp.Density < 0 || rp.Density > 1 {
		return fmt.Errorf("random schema: Density %g outside [0, 1]", rp.Density)
	}
	if rp.Repetitions < 1 {
		return fmt.Errorf("random schema: Repetitions %d < 1", rp.Repetitions)
	}
	if rp.ExcitatoryShare <= 0 && rp.InhibitoryShare <= 0 {
		return fmt.Errorf("random schema: both role shares are zero")
	}
	return rp.Syn.Validate()
}

// ChainSchemaParams configure the chain intra-pool wiring schema.
type ChainSchemaParams struct {
	Ratio           float32   `def:"1" min:"0" max:"1" desc:"fraction of pool neurons included in the chain"`
	Circular        bool      `desc:"connect the last chain neuron back to the first"`
	ReplaceExisting bool      `desc:"replace an existing synapse for the same source-target pair instead of rejecting the new one"`
	Syn             SynParams `view:"add-fields" desc:"synapse parameters for this schema"`
}

func (cp *ChainSchemaParams) Defaults() {
	cp.Ratio = 1
	cp.Syn.Defaults()
}

func (cp *ChainSchemaParams) Validate() error {
	if cp.Ratio < 0 || cp.Ratio > 1 {
		return fmt.Errorf("chain schema: Ratio %g outside [0, 1]", cp.Ratio)
	}
	return cp.Syn.Validate()
}

// SchemaParams is one entry in a pool's ordered schema list.
type SchemaParams struct {
	Kind  SchemaKinds       `desc:"which schema variant this entry applies"`
	Rand  RandSchemaParams  `viewif:"Kind=RandomSchema" desc:"random schema settings"`
	Chain ChainSchemaParams `viewif:"Kind=ChainSchema" desc:"chain schema settings"`
}

func (sp *SchemaParams) Defaults() {
	sp.Kind = RandomSchema
	sp.Rand.Defaults()
	sp.Chain.Defaults()
}

func (sp *SchemaParams) Validate() error {
	switch sp.Kind {
	case RandomSchema:
		return sp.Rand.Validate()
	case ChainSchema:
		return sp.Chain.Validate()
	}
	return fmt.Errorf("schema: unknown kind %d", sp.Kind)
}

// PoolParams configure one pool: a named group of hidden neurons placed on a
// fixed 3D grid, with an ordered list of intra-pool wiring schemas.
type PoolParams struct {
	Name    string          `desc:"pool name, unique within the reservoir"`
	DimX    int32           `min:"1" desc:"grid extent on X"`
	DimY    int32           `min:"1" desc:"grid extent on Y"`
	DimZ    int32           `min:"1" desc:"grid extent on Z"`
	Origin  math32.Vector3  `desc:"spatial offset of the pool grid within the reservoir"`
	Groups  []GroupParams   `desc:"neuron group configurations sharing the pool"`
	Schemas []SchemaParams  `desc:"ordered intra-pool connection schemas"`
}

func (pp *PoolParams) Defaults() {
	pp.DimX, pp.DimY, pp.DimZ = 1, 1, 1
	for gi := range pp.Groups {
		pp.Groups[gi].Defaults()
	}
	for si := range pp.Schemas {
		pp.Schemas[si].Defaults()
	}
}

// NumNeurons returns the configured neuron count DimX * DimY * DimZ.
func (pp *PoolParams) NumNeurons() int32 {
	return pp.DimX * pp.DimY * pp.DimZ
}

func (pp *PoolParams) Validate() error {
	if pp.Name == "" {
		return fmt.Errorf("pool: empty name")
	}
	if pp.DimX < 1 || pp.DimY < 1 || pp.DimZ < 1 {
		return fmt.Errorf("pool %q: dims %dx%dx%d must all be >= 1", pp.Name, pp.DimX, pp.DimY, pp.DimZ)
	}
	if len(pp.Groups) == 0 {
		return fmt.Errorf("pool %q: no neuron groups", pp.Name)
	}
	for gi := range pp.Groups {
		if err := pp.Groups[gi].Validate(); err != nil {
			return fmt.Errorf("pool %q: %w", pp.Name, err)
		}
	}
	for si := range pp.Schemas {
		if err := pp.Schemas[si].Validate(); err != nil {
			return fmt.Errorf("pool %q: %w", pp.Name, err)
		}
	}
	return nil
}

// InterPoolParams configure one directed pool-to-pool connection.
type InterPoolParams struct {
	SourcePool      string    `desc:"name of the source pool"`
	TargetPool      string    `desc:"name of the target pool"`
	TargetDensity   float32   `def:"1" min:"0" max:"1" desc:"fraction of target-pool neurons receiving connections, selected by shuffling"`
	SourceDensity   float32   `def:"0.1" min:"0" max:"1" desc:"synapse count per selected target as a fraction of source pool size"`
	ConstantCount   bool      `desc:"disable the probabilistic rounding of the per-target synapse count"`
	ExcitatoryShare float32   `def:"4" min:"0" desc:"relative share of excitatory role assignment for spiking targets"`
	InhibitoryShare float32   `def:"1" min:"0" desc:"relative share of inhibitory role assignment for spiking targets"`
	Syn             SynParams `view:"add-fields" desc:"synapse parameters for this connection"`
}

func (ip *InterPoolParams) Defaults() {
	ip.TargetDensity = 1
	ip.SourceDensity = 0.1
	ip.ExcitatoryShare = 4
	ip.InhibitoryShare = 1
	ip.Syn.Defaults()
}

func (ip *InterPoolParams) Validate() error {
	if ip.TargetDensity < 0 || ip.TargetDensity > 1 {
		return fmt.Errorf("interpool %s->%s: TargetDensity %g outside [0, 1]", ip.SourcePool, ip.TargetPool, ip.TargetDensity)
	}
	if ip.SourceDensity < 0 || ip.SourceDensity > 1 {
		return fmt.Errorf("interpool %s->%s: SourceDensity %g outside [0, 1]", ip.SourcePool, ip.TargetPool, ip.SourceDensity)
	}
	if ip.ExcitatoryShare <= 0 && ip.InhibitoryShare <= 0 {
		return fmt.Errorf("interpool %s->%s: both role shares are zero", ip.SourcePool, ip.TargetPool)
	}
	return ip.Syn.Validate()
}

// SpikeCodeParams configure the fixed-precision spike code of an input field.
type SpikeCodeParams struct {
	Length        int32   `def:"8" min:"1" max:"30" desc:"number of spiking input neurons L realizing the code"`
	SplitPolarity bool    `desc:"encode positive and negative deviations from the range midpoint on separate halves of the population (L must be even)"`
	Tolerance     float32 `def:"0.001" min:"0" max:"0.5" desc:"margin below 1 at which a planned bit still counts as a spike"`
}

func (sc *SpikeCodeParams) Defaults() {
	sc.Length = 8
	sc.SplitPolarity = true
	sc.Tolerance = 0.001
}

func (sc *SpikeCodeParams) Validate() error {
	if sc.Length < 1 || sc.Length > 30 {
		return fmt.Errorf("spike code: Length %d outside [1, 30]", sc.Length)
	}
	if sc.SplitPolarity && sc.Length%2 != 0 {
		return fmt.Errorf("spike code: SplitPolarity requires even Length, have %d", sc.Length)
	}
	return nil
}

// InputFieldParams configure one external scalar input field and its
// encoding unit.
type InputFieldParams struct {
	Name      string          `desc:"field name, unique within the reservoir"`
	Range     minmax.F32      `desc:"expected range of external values -- values are clamped into it before encoding"`
	SpikeCode SpikeCodeParams `view:"inline" desc:"spike code realized by the field's spiking input neurons"`
}

func (fp *InputFieldParams) Defaults() {
	fp.Range.Min = -1
	fp.Range.Max = 1
	fp.SpikeCode.Defaults()
}

func (fp *InputFieldParams) Validate() error {
	if fp.Name == "" {
		return fmt.Errorf("input field: empty name")
	}
	if fp.Range.Max <= fp.Range.Min {
		return fmt.Errorf("input field %q: empty range [%g, %g]", fp.Name, fp.Range.Min, fp.Range.Max)
	}
	return fp.SpikeCode.Validate()
}

// InputConnParams configure the connection of one input field into one pool.
type InputConnParams struct {
	Field          string    `desc:"name of the input field"`
	Pool           string    `desc:"name of the target pool"`
	AnalogDensity  float32   `def:"0" min:"0" max:"1" desc:"fraction of the pool's analog neurons receiving a synapse from the field's analog neuron"`
	SpikingDensity float32   `def:"1" min:"0" max:"1" desc:"fraction of the pool's spiking neurons receiving synapses from the field's spiking population"`
	Syn            SynParams `view:"add-fields" desc:"synapse parameters for this connection"`
}

func (ic *InputConnParams) Defaults() {
	ic.AnalogDensity = 0
	ic.SpikingDensity = 1
	ic.Syn.Defaults()
}

func (ic *InputConnParams) Validate() error {
	if ic.AnalogDensity < 0 || ic.AnalogDensity > 1 {
		return fmt.Errorf("input conn %s->%s: AnalogDensity %g outside [0, 1]", ic.Field, ic.Pool, ic.AnalogDensity)
	}
	if ic.SpikingDensity < 0 || ic.SpikingDensity > 1 {
		return fmt.Errorf("input conn %s->%s: SpikingDensity %g outside [0, 1]", ic.Field, ic.Pool, ic.SpikingDensity)
	}
	if ic.AnalogDensity == 0 && ic.SpikingDensity == 0 {
		return fmt.Errorf("input conn %s->%s: both densities are zero", ic.Field, ic.Pool)
	}
	return ic.Syn.Validate()
}

// HomogeneousParams configure homogeneous-excitability balancing of the
// spiking sub-network: each spiking neuron's input, excitatory, and
// inhibitory weight sums are independently rescaled to configured fractions
// of a total excitatory-strength budget.
type HomogeneousParams struct {
	On                 bool    `desc:"apply homogeneous-excitability balancing to spiking neurons"`
	ExcitatoryStrength float32 `def:"0.75" min:"0" desc:"total excitatory-strength budget per neuron: input weights + excitatory recurrent weights sum to this"`
	InputRatio         float32 `def:"0.3" min:"0" max:"1" desc:"fraction of the budget carried by input synapses"`
	InhibitoryRatio    float32 `def:"0.25" min:"0" desc:"target sum of inhibitory weight magnitudes as a fraction of the budget"`
}

func (hp *HomogeneousParams) Defaults() {
	hp.ExcitatoryStrength = 0.75
	hp.InputRatio = 0.3
	hp.InhibitoryRatio = 0.25
}

func (hp *HomogeneousParams) Validate() error {
	if !hp.On {
		return nil
	}
	if hp.ExcitatoryStrength <= 0 {
		return fmt.Errorf("homogeneous excitability: ExcitatoryStrength must be positive")
	}
	if hp.InputRatio < 0 || hp.InputRatio > 1 {
		return fmt.Errorf("homogeneous excitability: InputRatio %g outside [0, 1]", hp.InputRatio)
	}
	return nil
}

// NormParams configure the post-wiring weight normalization pass.
type NormParams struct {
	SpectralRadius float32           `def:"0.9999" min:"0" desc:"target spectral radius of the analog recurrent weight matrix -- 0 disables spectral scaling"`
	Homogeneous    HomogeneousParams `view:"inline" desc:"homogeneous-excitability balancing of the spiking sub-network"`
}

func (np *NormParams) Defaults() {
	np.SpectralRadius = 0.9999
	np.Homogeneous.Defaults()
}

func (np *NormParams) Validate() error {
	if np.SpectralRadius < 0 {
		return fmt.Errorf("norm: SpectralRadius %g is negative", np.SpectralRadius)
	}
	return np.Homogeneous.Validate()
}

// Params is the complete reservoir configuration.
type Params struct {
	Name       string             `desc:"reservoir instance name"`
	Fields     []InputFieldParams `desc:"external input fields and their encoding units"`
	Pools      []PoolParams       `desc:"hidden neuron pools"`
	InterPool  []InterPoolParams  `desc:"directed pool-to-pool connections"`
	InputConns []InputConnParams  `desc:"input field to pool connections"`
	Norm       NormParams         `view:"inline" desc:"post-wiring weight normalization"`
	NThreads   int                `def:"0" desc:"number of parallel compute goroutines -- 0 selects GOMAXPROCS"`
}

func (ps *Params) Defaults() {
	for i := range ps.Fields {
		ps.Fields[i].Defaults()
	}
	for i := range ps.Pools {
		ps.Pools[i].Defaults()
	}
	for i := range ps.InterPool {
		ps.InterPool[i].Defaults()
	}
	for i := range ps.InputConns {
		ps.InputConns[i].Defaults()
	}
	ps.Norm.Defaults()
}

// Validate checks the whole configuration for construction-time errors:
// unknown pool and field references, invalid dimensions, densities and
// ratios.  Construction fails fast on the first error found.
func (ps *Params) Validate() error {
	if len(ps.Pools) == 0 {
		return fmt.Errorf("params: no pools configured")
	}
	pools := map[string]bool{}
	for pi := range ps.Pools {
		pp := &ps.Pools[pi]
		if err := pp.Validate(); err != nil {
			return err
		}
		if pools[pp.Name] {
			return fmt.Errorf("params: duplicate pool name %q", pp.Name)
		}
		pools[pp.Name] = true
	}
	fields := map[string]bool{}
	for fi := range ps.Fields {
		fp := &ps.Fields[fi]
		if err := fp.Validate(); err != nil {
			return err
		}
		if fields[fp.Name] {
			return fmt.Errorf("params: duplicate input field name %q", fp.Name)
		}
		fields[fp.Name] = true
	}
	for ii := range ps.InterPool {
		ip := &ps.InterPool[ii]
		if err := ip.Validate(); err != nil {
			return err
		}
		if !pools[ip.SourcePool] {
			return fmt.Errorf("interpool: unknown source pool %q", ip.SourcePool)
		}
		if !pools[ip.TargetPool] {
			return fmt.Errorf("interpool: unknown target pool %q", ip.TargetPool)
		}
	}
	for ci := range ps.InputConns {
		ic := &ps.InputConns[ci]
		if err := ic.Validate(); err != nil {
			return err
		}
		if !fields[ic.Field] {
			return fmt.Errorf("input conn: unknown input field %q", ic.Field)
		}
		if !pools[ic.Pool] {
			return fmt.Errorf("input conn: unknown pool %q", ic.Pool)
		}
	}
	return ps.Norm.Validate()
}
