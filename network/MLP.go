package network

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/arcadeq/initwfn"
	"github.com/samuelfneumann/arcadeq/solver"
)

// MLPConfig describes the architecture and optimizer of an MLP.
//
// The MLP has len(HiddenSizes) + 1 layers. HiddenSizes[i] is the
// number of units in hidden layer i and Activations[i] is its
// activation. A final linear layer with Outputs units is always added.
type MLPConfig struct {
	Features    int
	Outputs     int
	HiddenSizes []int
	Activations []*Activation

	Solver  *solver.Solver
	InitWFn *initwfn.InitWFn
}

// Validate checks whether an MLPConfig describes a valid MLP
func (c MLPConfig) Validate() error {
	if c.Features < 1 {
		return fmt.Errorf("validate: features must be positive\n\thave(%v)",
			c.Features)
	}
	if c.Outputs < 1 {
		return fmt.Errorf("validate: outputs must be positive\n\thave(%v)",
			c.Outputs)
	}
	if len(c.HiddenSizes) != len(c.Activations) {
		return fmt.Errorf("validate: invalid number of activations"+
			"\n\twant(%d)\n\thave(%d)", len(c.HiddenSizes), len(c.Activations))
	}
	for i, size := range c.HiddenSizes {
		if size < 1 {
			return fmt.Errorf("validate: hidden layer %v must have at "+
				"least one unit\n\thave(%v)", i, size)
		}
		if c.Activations[i] == nil {
			return fmt.Errorf("validate: hidden layer %v has no activation",
				i)
		}
	}
	if c.Solver == nil {
		return fmt.Errorf("validate: no solver specified")
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: no weight initializer specified")
	}
	return nil
}

// net is a single MLP forward pass over a fixed batch size, built in
// its own computational graph
type net struct {
	g          *G.ExprGraph
	input      *G.Node
	layers     []*fcLayer
	prediction *G.Node
	predVal    G.Value
	batch      int
}

// fitNet is a net extended with the mean squared error loss and its
// gradients
type fitNet struct {
	*net
	targets *G.Node
	vm      G.VM
	model   []G.ValueGrad
}

// MLP implements a multi-layered perceptron which predicts one value
// per output given a single state, trained with a Gorgonia Solver.
//
// Gorgonia graphs have a fixed batch size. The MLP keeps a batch-1
// graph for prediction which holds the canonical parameters. Graphs
// used for Fit are built the first time a given batch size is seen and
// share a single Solver so that optimizer state persists between
// batches. Parameters are copied into a fit graph before each gradient
// step and copied back afterwards.
type MLP struct {
	features int
	outputs  int

	predict   *net
	predictVM G.VM

	fits   map[int]*fitNet
	solver G.Solver

	hiddenSizes []int
	activations []*Activation
}

// NewMLP creates and returns a new MLP described by config
func NewMLP(config MLPConfig) (*MLP, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newMLP: %w", err)
	}

	hiddenSizes := append([]int{}, config.HiddenSizes...)
	activations := append([]*Activation{}, config.Activations...)

	m := &MLP{
		features:    config.Features,
		outputs:     config.Outputs,
		fits:        make(map[int]*fitNet),
		solver:      config.Solver.Config.Create(),
		hiddenSizes: hiddenSizes,
		activations: activations,
	}

	predict, err := m.newNet(1, config.InitWFn.InitWFn())
	if err != nil {
		return nil, fmt.Errorf("newMLP: could not create network: %w", err)
	}
	m.predict = predict
	m.predictVM = G.NewTapeMachine(predict.g)

	return m, nil
}

// newNet builds the forward pass of the MLP for inputs of a given
// batch size in a new graph
func (m *MLP) newNet(batch int, init G.InitWFn) (*net, error) {
	g := G.NewGraph()
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, m.features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	sizes := append(append([]int{}, m.hiddenSizes...), m.outputs)
	acts := append(append([]*Activation{}, m.activations...), Identity())
	layers := newFCLayers(g, m.features, sizes, acts, init)

	pred := input
	var err error
	for i, l := range layers {
		if pred, err = l.fwd(pred); err != nil {
			return nil, fmt.Errorf("newNet: could not compute forward pass "+
				"of layer %v: %w", i, err)
		}
	}

	n := &net{
		g:          g,
		input:      input,
		layers:     layers,
		prediction: pred,
		batch:      batch,
	}
	G.Read(n.prediction, &n.predVal)

	return n, nil
}

// fitNetFor returns the fit graph for the given batch size, building
// it if needed
func (m *MLP) fitNetFor(batch int) (*fitNet, error) {
	if f, ok := m.fits[batch]; ok {
		return f, nil
	}

	n, err := m.newNet(batch, G.Zeroes())
	if err != nil {
		return nil, err
	}

	targets := G.NewMatrix(n.g, tensor.Float64, G.WithShape(batch, m.outputs),
		G.WithName("targets"), G.WithInit(G.Zeroes()))

	losses := G.Must(G.Sub(n.prediction, targets))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	learnables := n.learnables()
	if _, err := G.Grad(cost, learnables...); err != nil {
		return nil, fmt.Errorf("fitNetFor: could not compute gradient: %w",
			err)
	}

	f := &fitNet{
		net:     n,
		targets: targets,
		vm:      G.NewTapeMachine(n.g, G.BindDualValues(learnables...)),
		model:   G.NodesToValueGrads(learnables),
	}
	m.fits[batch] = f

	return f, nil
}

// learnables returns the learnable nodes of the net, ordered by layer
// with the weights of each layer before its bias
func (n *net) learnables() G.Nodes {
	learnables := make(G.Nodes, 0, 2*len(n.layers))
	for _, l := range n.layers {
		learnables = append(learnables, l.learnables()...)
	}
	return learnables
}

// Features returns the number of features in a single state
func (m *MLP) Features() int {
	return m.features
}

// Outputs returns the number of values predicted for a state
func (m *MLP) Outputs() int {
	return m.outputs
}

// Predict returns the predicted values of a single state
func (m *MLP) Predict(state []float64) ([]float64, error) {
	if len(state) != m.features {
		return nil, shapeError("predict", "state", []int{m.features},
			[]int{len(state)})
	}

	input := tensor.New(
		tensor.WithBacking(append([]float64{}, state...)),
		tensor.WithShape(1, m.features),
	)
	if err := G.Let(m.predict.input, input); err != nil {
		return nil, fmt.Errorf("predict: could not set input: %w", err)
	}

	defer m.predictVM.Reset()
	if err := m.predictVM.RunAll(); err != nil {
		return nil, fmt.Errorf("predict: could not run forward pass: %w",
			err)
	}

	values := m.predict.predVal.Data().([]float64)
	return append([]float64{}, values...), nil
}

// Fit performs a single gradient step on the mean squared error
// between the predicted values of states and targets. The parameters
// are left untouched if any state or target has the wrong shape.
func (m *MLP) Fit(states, targets [][]float64) error {
	if len(states) == 0 {
		return shapeError("fit", "states", []int{1}, []int{0})
	}
	if len(states) != len(targets) {
		return shapeError("fit", "targets", []int{len(states)},
			[]int{len(targets)})
	}

	batch := len(states)
	inputData := make([]float64, 0, batch*m.features)
	targetData := make([]float64, 0, batch*m.outputs)
	for i := range states {
		if len(states[i]) != m.features {
			return shapeError("fit", fmt.Sprintf("state %v", i),
				[]int{m.features}, []int{len(states[i])})
		}
		if len(targets[i]) != m.outputs {
			return shapeError("fit", fmt.Sprintf("target %v", i),
				[]int{m.outputs}, []int{len(targets[i])})
		}
		inputData = append(inputData, states[i]...)
		targetData = append(targetData, targets[i]...)
	}

	f, err := m.fitNetFor(batch)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	copyLearnables(f.learnables(), m.predict.learnables())

	err = G.Let(f.input, tensor.New(
		tensor.WithBacking(inputData),
		tensor.WithShape(batch, m.features),
	))
	if err != nil {
		return fmt.Errorf("fit: could not set states: %w", err)
	}
	err = G.Let(f.targets, tensor.New(
		tensor.WithBacking(targetData),
		tensor.WithShape(batch, m.outputs),
	))
	if err != nil {
		return fmt.Errorf("fit: could not set targets: %w", err)
	}

	defer f.vm.Reset()
	if err := f.vm.RunAll(); err != nil {
		return fmt.Errorf("fit: could not compute gradients: %w", err)
	}
	if err := m.solver.Step(f.model); err != nil {
		return fmt.Errorf("fit: could not step solver: %w", err)
	}

	copyLearnables(m.predict.learnables(), f.learnables())
	return nil
}

// Parameters returns a deep copy of the parameters of the MLP. For each
// layer, the weights are followed by the bias.
func (m *MLP) Parameters() []*mat.Dense {
	learnables := m.predict.learnables()
	params := make([]*mat.Dense, len(learnables))

	for i, node := range learnables {
		shape := node.Shape()
		data := node.Value().Data().([]float64)
		params[i] = mat.NewDense(shape[0], shape[1],
			append([]float64{}, data...))
	}

	return params
}

// SetParameters sets the parameters of the MLP to deep copies of
// params, which must be ordered as returned by Parameters()
func (m *MLP) SetParameters(params []*mat.Dense) error {
	learnables := m.predict.learnables()
	if len(params) != len(learnables) {
		return shapeError("setParameters", "parameters",
			[]int{len(learnables)}, []int{len(params)})
	}

	for i, node := range learnables {
		if params[i] == nil {
			return fmt.Errorf("setParameters: parameter %v is nil", i)
		}
		r, c := params[i].Dims()
		if shape := node.Shape(); shape[0] != r || shape[1] != c {
			return shapeError("setParameters", node.Name(),
				[]int{shape[0], shape[1]}, []int{r, c})
		}
	}

	for i, node := range learnables {
		dst := node.Value().Data().([]float64)
		r, c := params[i].Dims()
		for row := 0; row < r; row++ {
			copy(dst[row*c:(row+1)*c], params[i].RawRowView(row))
		}
	}

	return nil
}

// copyLearnables copies the values of src into dst in place. Values
// are modified in place since dst may be bound to dual values.
func copyLearnables(dst, src G.Nodes) {
	for i := range dst {
		copy(dst[i].Value().Data().([]float64),
			src[i].Value().Data().([]float64))
	}
}

// String implements the fmt.Stringer interface
func (m *MLP) String() string {
	return fmt.Sprintf("MLP | Features: %v | Hidden: %v %v | Outputs: %v",
		m.features, m.hiddenSizes, m.activations, m.outputs)
}
