package main

import (
	"os"
	"strings"

	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// modelFile is the YAML description of a model: its named modules and its
// graph nodes in topological order.
type modelFile struct {
	Name    string                `yaml:"name"`
	Modules map[string]moduleSpec `yaml:"modules"`
	Graph   []nodeSpec            `yaml:"graph"`
}

type moduleSpec struct {
	Kind string `yaml:"kind"`

	InChannels  int `yaml:"in_channels"`
	OutChannels int `yaml:"out_channels"`
	NumFeatures int `yaml:"num_features"`
	InFeatures  int `yaml:"in_features"`
	OutFeatures int `yaml:"out_features"`

	// Scalar-or-pair hyperparameters; nil means "use the module default".
	KernelSize *modules.Pair `yaml:"kernel_size"`
	Stride     *modules.Pair `yaml:"stride"`
	Padding    *modules.Pair `yaml:"padding"`
	Dilation   *modules.Pair `yaml:"dilation"`
	OutputSize *modules.Pair `yaml:"output_size"`
}

type nodeSpec struct {
	Name   string    `yaml:"name"`
	Op     string    `yaml:"op"`
	Target string    `yaml:"target"`
	Args   []any     `yaml:"args"`
	Type   *typeSpec `yaml:"type"`
}

// typeSpec is a YAML gradual type: the scalar "dyn" or "int", or a sequence
// of dimensions, each an integer or "dyn".
type typeSpec struct {
	typ gradual.Type
}

func (ts *typeSpec) UnmarshalYAML(value *yaml.Node) error {
	var scalar string
	if err := value.Decode(&scalar); err == nil {
		switch strings.ToLower(scalar) {
		case "dyn":
			ts.typ = gradual.Dyn()
			return nil
		case "int":
			ts.typ = gradual.Int()
			return nil
		}
		return errors.Errorf("unknown type %q, want \"dyn\", \"int\" or a dimension list", scalar)
	}
	var raw []any
	if err := value.Decode(&raw); err != nil {
		return errors.Wrapf(err, "cannot parse type")
	}
	dims := make([]gradual.Dim, len(raw))
	for i, v := range raw {
		switch v := v.(type) {
		case int:
			if v < 0 {
				return errors.Errorf("dimension #%d is %d, must be >= 0 or \"dyn\"", i, v)
			}
			dims[i] = gradual.Dim(v)
		case string:
			if strings.ToLower(v) != "dyn" {
				return errors.Errorf("dimension #%d is %q, must be an integer or \"dyn\"", i, v)
			}
			dims[i] = gradual.DynDim
		default:
			return errors.Errorf("dimension #%d is %v (%T), must be an integer or \"dyn\"", i, v, v)
		}
	}
	ts.typ = gradual.Make(dims...)
	return nil
}

// loadModel reads and parses a YAML model file. An unreadable file panics,
// a malformed one returns an error with the YAML diagnostic.
func loadModel(path string) (*modelFile, error) {
	data := must.M1(os.ReadFile(path))
	model := &modelFile{}
	if err := yaml.Unmarshal(data, model); err != nil {
		return nil, errors.Wrapf(err, "parsing model file %q", path)
	}
	if model.Name == "" {
		model.Name = path
	}
	return model, nil
}

// build converts the parsed model into a graph and a module lookup ready
// for the checker.
func (m *modelFile) build() (*graph.Graph, modules.Lookup, error) {
	lookup := modules.Map{}
	for name, spec := range m.Modules {
		mod, err := spec.build()
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "module %q", name)
		}
		lookup[name] = mod
	}

	g := graph.New(m.Name)
	byName := make(map[string]*graph.Node)
	for i, spec := range m.Graph {
		n, err := spec.build(g, byName)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "graph node #%d", i)
		}
		if spec.Name != "" {
			byName[spec.Name] = n
		}
	}
	return g, lookup, nil
}

func (s moduleSpec) build() (modules.Module, error) {
	pairOr := func(p *modules.Pair, def modules.Pair) modules.Pair {
		if p == nil {
			return def
		}
		return *p
	}
	switch strings.ToLower(s.Kind) {
	case "conv2d":
		if s.KernelSize == nil {
			return nil, errors.Errorf("conv2d requires kernel_size")
		}
		conv := modules.NewConv2D(s.InChannels, s.OutChannels, *s.KernelSize)
		conv.Stride = pairOr(s.Stride, conv.Stride)
		conv.Padding = pairOr(s.Padding, conv.Padding)
		conv.Dilation = pairOr(s.Dilation, conv.Dilation)
		return conv, nil
	case "maxpool2d":
		if s.KernelSize == nil {
			return nil, errors.Errorf("maxpool2d requires kernel_size")
		}
		pool := modules.NewMaxPool2D(*s.KernelSize)
		pool.Stride = pairOr(s.Stride, pool.Stride)
		pool.Padding = pairOr(s.Padding, pool.Padding)
		pool.Dilation = pairOr(s.Dilation, pool.Dilation)
		return pool, nil
	case "adaptiveavgpool2d":
		if s.OutputSize == nil {
			return nil, errors.Errorf("adaptiveavgpool2d requires output_size")
		}
		return modules.NewAdaptiveAvgPool2D(*s.OutputSize), nil
	case "batchnorm2d":
		return modules.NewBatchNorm2D(s.NumFeatures), nil
	case "relu":
		return modules.NewReLU(), nil
	case "linear":
		return modules.NewLinear(s.InFeatures, s.OutFeatures), nil
	}
	return nil, errors.Errorf("unknown module kind %q", s.Kind)
}

func (s nodeSpec) build(g *graph.Graph, byName map[string]*graph.Node) (*graph.Node, error) {
	nodeArg := func(i int) (*graph.Node, error) {
		if i >= len(s.Args) {
			return nil, errors.Errorf("%s requires at least %d args", s.Op, i+1)
		}
		name, ok := s.Args[i].(string)
		if !ok {
			return nil, errors.Errorf("arg #%d must be a node name, got %v", i, s.Args[i])
		}
		n, found := byName[name]
		if !found {
			return nil, errors.Errorf("arg #%d refers to unknown node %q", i, name)
		}
		return n, nil
	}
	intArg := func(i int) (int, error) {
		if i >= len(s.Args) {
			return 0, errors.Errorf("%s requires at least %d args", s.Op, i+1)
		}
		v, ok := s.Args[i].(int)
		if !ok {
			return 0, errors.Errorf("arg #%d must be an integer, got %v", i, s.Args[i])
		}
		return v, nil
	}

	declared := gradual.Invalid()
	if s.Type != nil {
		declared = s.Type.typ
	}

	switch strings.ToLower(s.Op) {
	case "placeholder":
		return g.Placeholder(s.Name, declared), nil

	case "call_function":
		switch strings.ToLower(s.Target) {
		case "add":
			x, err := nodeArg(0)
			if err != nil {
				return nil, err
			}
			y, err := nodeArg(1)
			if err != nil {
				return nil, err
			}
			n := g.Add(s.Name, x, y)
			if declared.Ok() {
				n.SetType(declared)
			}
			return n, nil
		case "transpose":
			x, err := nodeArg(0)
			if err != nil {
				return nil, err
			}
			dim1, err := intArg(1)
			if err != nil {
				return nil, err
			}
			dim2, err := intArg(2)
			if err != nil {
				return nil, err
			}
			n := g.Transpose(s.Name, x, dim1, dim2)
			if declared.Ok() {
				n.SetType(declared)
			}
			return n, nil
		case "reshape":
			x, err := nodeArg(0)
			if err != nil {
				return nil, err
			}
			if len(s.Args) < 2 {
				return nil, errors.Errorf("reshape requires a target shape")
			}
			raw, ok := s.Args[1].([]any)
			if !ok {
				return nil, errors.Errorf("reshape target must be a list, got %v", s.Args[1])
			}
			target := make([]int, len(raw))
			for i, v := range raw {
				target[i], ok = v.(int)
				if !ok {
					return nil, errors.Errorf("reshape target entry #%d must be an integer, got %v", i, v)
				}
			}
			n := g.Reshape(s.Name, x, target...)
			if declared.Ok() {
				n.SetType(declared)
			}
			return n, nil
		}
		return nil, errors.Errorf("unknown function target %q", s.Target)

	case "call_module":
		x, err := nodeArg(0)
		if err != nil {
			return nil, err
		}
		n := g.CallModule(s.Name, s.Target, x)
		if declared.Ok() {
			n.SetType(declared)
		}
		return n, nil

	case "output":
		x, err := nodeArg(0)
		if err != nil {
			return nil, err
		}
		return g.Output(x), nil
	}
	return nil, errors.Errorf("unknown op %q", s.Op)
}
