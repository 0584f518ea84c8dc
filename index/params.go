package index

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Params configures an index variant. The set of implementations is closed;
// the concrete type selects the variant.
type Params interface {
	// Algorithm returns the variant these parameters configure.
	Algorithm() Algorithm

	// Validate reports whether the parameters, with defaults applied, are
	// acceptable.
	Validate() error

	params()
}

// Default tuning values.
const (
	DefaultTrees          = 4
	DefaultLeafMaxSize    = 10
	DefaultBranching      = 32
	DefaultIterations     = 11
	DefaultCBIndex        = 0.2
	DefaultHCTrees        = 4
	DefaultHCLeafMaxSize  = 100
	DefaultCuda3dLeafSize = 64
	DefaultM              = 8
	DefaultEfConstruction = 200
)

// CentersInit selects how cluster centers are seeded.
type CentersInit int

// Center initialisation methods.
const (
	CentersRandom CentersInit = iota
	CentersGonzales
	CentersKMeansPP
)

var centersNames = map[CentersInit]string{
	CentersRandom:   "random",
	CentersGonzales: "gonzales",
	CentersKMeansPP: "kmeanspp",
}

func (c CentersInit) String() string {
	if name, ok := centersNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(c))
}

// ParseCentersInit parses a center initialisation name.
func ParseCentersInit(s string) (CentersInit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range centersNames {
		if name == s {
			return c, nil
		}
	}
	return 0, &ConfigError{Field: "centers_init", Reason: fmt.Sprintf("unknown method %q", s)}
}

// MarshalYAML encodes the method by name.
func (c CentersInit) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML decodes a method name.
func (c *CentersInit) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseCentersInit(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c CentersInit) validate(a Algorithm) error {
	if _, ok := centersNames[c]; !ok {
		return NewConfigError(a, "centers_init", "unknown method")
	}
	return nil
}

// LinearParams configures exhaustive search.
type LinearParams struct{}

func (LinearParams) Algorithm() Algorithm { return AlgorithmLinear }
func (LinearParams) Validate() error      { return nil }
func (LinearParams) params()              {}

// KDTreeParams configures a forest of randomized kd-trees.
type KDTreeParams struct {
	// Trees is the number of parallel trees.
	Trees int `yaml:"trees"`

	// BuildWorkers bounds concurrent tree builds. Zero builds one tree at a
	// time; larger values call the distance adapter from several goroutines.
	BuildWorkers int `yaml:"build_workers"`

	// Seed seeds split-dimension randomisation.
	Seed int64 `yaml:"seed"`
}

// DefaultKDTreeParams returns the default forest configuration.
func DefaultKDTreeParams() KDTreeParams {
	return KDTreeParams{Trees: DefaultTrees}
}

func (KDTreeParams) Algorithm() Algorithm { return AlgorithmKDTree }
func (KDTreeParams) params()              {}

// WithDefaults fills zero fields.
func (p KDTreeParams) WithDefaults() KDTreeParams {
	if p.Trees == 0 {
		p.Trees = DefaultTrees
	}
	if p.BuildWorkers == 0 {
		p.BuildWorkers = 1
	}
	return p
}

func (p KDTreeParams) Validate() error {
	p = p.WithDefaults()
	if p.Trees < 1 {
		return NewConfigError(AlgorithmKDTree, "trees", "must be positive")
	}
	if p.BuildWorkers < 1 {
		return NewConfigError(AlgorithmKDTree, "build_workers", "must be positive")
	}
	return nil
}

// KDTreeSingleParams configures a single exact kd-tree.
type KDTreeSingleParams struct {
	// LeafMaxSize is the maximum number of points in a leaf.
	LeafMaxSize int `yaml:"leaf_max_size"`
}

// DefaultKDTreeSingleParams returns the default single tree configuration.
func DefaultKDTreeSingleParams() KDTreeSingleParams {
	return KDTreeSingleParams{LeafMaxSize: DefaultLeafMaxSize}
}

func (KDTreeSingleParams) Algorithm() Algorithm { return AlgorithmKDTreeSingle }
func (KDTreeSingleParams) params()              {}

// WithDefaults fills zero fields.
func (p KDTreeSingleParams) WithDefaults() KDTreeSingleParams {
	if p.LeafMaxSize == 0 {
		p.LeafMaxSize = DefaultLeafMaxSize
	}
	return p
}

func (p KDTreeSingleParams) Validate() error {
	if p.WithDefaults().LeafMaxSize < 1 {
		return NewConfigError(AlgorithmKDTreeSingle, "leaf_max_size", "must be positive")
	}
	return nil
}

// KMeansParams configures a hierarchical k-means tree.
type KMeansParams struct {
	// Branching is the number of children per inner node.
	Branching int `yaml:"branching"`

	// Iterations bounds Lloyd iterations per clustering; Unlimited runs
	// until assignments converge.
	Iterations int `yaml:"iterations"`

	// CentersInit seeds each clustering.
	CentersInit CentersInit `yaml:"centers_init"`

	// CBIndex biases exploration towards larger clusters. Zero disables it.
	CBIndex float64 `yaml:"cb_index"`

	// Seed seeds center initialisation.
	Seed int64 `yaml:"seed"`
}

// DefaultKMeansParams returns the default k-means tree configuration.
func DefaultKMeansParams() KMeansParams {
	return KMeansParams{
		Branching:   DefaultBranching,
		Iterations:  DefaultIterations,
		CentersInit: CentersRandom,
		CBIndex:     DefaultCBIndex,
	}
}

func (KMeansParams) Algorithm() Algorithm { return AlgorithmKMeans }
func (KMeansParams) params()              {}

// WithDefaults fills zero fields.
func (p KMeansParams) WithDefaults() KMeansParams {
	if p.Branching == 0 {
		p.Branching = DefaultBranching
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultIterations
	}
	return p
}

func (p KMeansParams) Validate() error {
	return p.WithDefaults().validate(AlgorithmKMeans)
}

func (p KMeansParams) validate(a Algorithm) error {
	if p.Branching < 2 {
		return NewConfigError(a, "branching", "must be at least 2")
	}
	if p.Iterations < 1 && p.Iterations != Unlimited {
		return NewConfigError(a, "iterations", "must be positive or unlimited")
	}
	if p.CBIndex < 0 {
		return NewConfigError(a, "cb_index", "must not be negative")
	}
	return p.CentersInit.validate(a)
}

// CompositeParams configures a combination of a kd forest and a k-means tree.
type CompositeParams struct {
	Trees       int         `yaml:"trees"`
	Branching   int         `yaml:"branching"`
	Iterations  int         `yaml:"iterations"`
	CentersInit CentersInit `yaml:"centers_init"`
	CBIndex     float64     `yaml:"cb_index"`
	Seed        int64       `yaml:"seed"`

	// BuildWorkers bounds concurrent builds of the trees and of the two
	// sub-indexes. Zero builds sequentially.
	BuildWorkers int `yaml:"build_workers"`
}

// DefaultCompositeParams returns the default composite configuration.
func DefaultCompositeParams() CompositeParams {
	km := DefaultKMeansParams()
	return CompositeParams{
		Trees:       DefaultTrees,
		Branching:   km.Branching,
		Iterations:  km.Iterations,
		CentersInit: km.CentersInit,
		CBIndex:     km.CBIndex,
	}
}

func (CompositeParams) Algorithm() Algorithm { return AlgorithmComposite }
func (CompositeParams) params()              {}

// KDTree returns the parameters of the kd forest part.
func (p CompositeParams) KDTree() KDTreeParams {
	return KDTreeParams{Trees: p.Trees, BuildWorkers: p.BuildWorkers, Seed: p.Seed}.WithDefaults()
}

// KMeans returns the parameters of the k-means tree part.
func (p CompositeParams) KMeans() KMeansParams {
	return KMeansParams{
		Branching:   p.Branching,
		Iterations:  p.Iterations,
		CentersInit: p.CentersInit,
		CBIndex:     p.CBIndex,
		Seed:        p.Seed,
	}.WithDefaults()
}

func (p CompositeParams) Validate() error {
	kd := p.KDTree()
	if kd.Trees < 1 {
		return NewConfigError(AlgorithmComposite, "trees", "must be positive")
	}
	if kd.BuildWorkers < 1 {
		return NewConfigError(AlgorithmComposite, "build_workers", "must be positive")
	}
	return p.KMeans().validate(AlgorithmComposite)
}

// HierarchicalClusteringParams configures a forest of clustering trees whose
// centers are points of the data set.
type HierarchicalClusteringParams struct {
	Branching   int         `yaml:"branching"`
	CentersInit CentersInit `yaml:"centers_init"`
	Trees       int         `yaml:"trees"`
	LeafMaxSize int         `yaml:"leaf_max_size"`
	Seed        int64       `yaml:"seed"`

	// BuildWorkers bounds concurrent tree builds. Zero builds one tree at a
	// time, so the distance function is never called concurrently.
	BuildWorkers int `yaml:"build_workers"`
}

// DefaultHierarchicalClusteringParams returns the default configuration.
func DefaultHierarchicalClusteringParams() HierarchicalClusteringParams {
	return HierarchicalClusteringParams{
		Branching:   DefaultBranching,
		CentersInit: CentersRandom,
		Trees:       DefaultHCTrees,
		LeafMaxSize: DefaultHCLeafMaxSize,
	}
}

func (HierarchicalClusteringParams) Algorithm() Algorithm { return AlgorithmHierarchicalClustering }
func (HierarchicalClusteringParams) params()              {}

// WithDefaults fills zero fields.
func (p HierarchicalClusteringParams) WithDefaults() HierarchicalClusteringParams {
	if p.Branching == 0 {
		p.Branching = DefaultBranching
	}
	if p.Trees == 0 {
		p.Trees = DefaultHCTrees
	}
	if p.LeafMaxSize == 0 {
		p.LeafMaxSize = DefaultHCLeafMaxSize
	}
	if p.BuildWorkers == 0 {
		p.BuildWorkers = 1
	}
	return p
}

func (p HierarchicalClusteringParams) Validate() error {
	p = p.WithDefaults()
	const a = AlgorithmHierarchicalClustering
	if p.Branching < 2 {
		return NewConfigError(a, "branching", "must be at least 2")
	}
	if p.Trees < 1 {
		return NewConfigError(a, "trees", "must be positive")
	}
	if p.LeafMaxSize < 1 {
		return NewConfigError(a, "leaf_max_size", "must be positive")
	}
	if p.BuildWorkers < 1 {
		return NewConfigError(a, "build_workers", "must be positive")
	}
	return p.CentersInit.validate(a)
}

// HNSWParams configures a navigable small world graph.
type HNSWParams struct {
	// M is the number of links per node above layer 0 (2*M at layer 0).
	M int `yaml:"m"`

	// EfConstruction is the candidate list size during insertion.
	EfConstruction int `yaml:"ef_construction"`

	// SimpleSelection links a new node to its M closest candidates instead
	// of using the diversity heuristic. Full link lists are always pruned
	// with the heuristic.
	SimpleSelection bool `yaml:"simple_selection"`

	// Seed seeds level generation.
	Seed int64 `yaml:"seed"`
}

// DefaultHNSWParams returns the default graph configuration.
func DefaultHNSWParams() HNSWParams {
	return HNSWParams{M: DefaultM, EfConstruction: DefaultEfConstruction}
}

func (HNSWParams) Algorithm() Algorithm { return AlgorithmHNSW }
func (HNSWParams) params()              {}

// WithDefaults fills zero fields.
func (p HNSWParams) WithDefaults() HNSWParams {
	if p.M == 0 {
		p.M = DefaultM
	}
	if p.EfConstruction == 0 {
		p.EfConstruction = DefaultEfConstruction
	}
	return p
}

func (p HNSWParams) Validate() error {
	p = p.WithDefaults()
	if p.M < 2 {
		return NewConfigError(AlgorithmHNSW, "m", "must be at least 2")
	}
	if p.EfConstruction < 1 {
		return NewConfigError(AlgorithmHNSW, "ef_construction", "must be positive")
	}
	return nil
}

// KDTreeCuda3dParams configures a GPU kd-tree over three dimensional points.
type KDTreeCuda3dParams struct {
	LeafMaxSize int `yaml:"leaf_max_size"`
}

func (KDTreeCuda3dParams) Algorithm() Algorithm { return AlgorithmKDTreeCuda3d }
func (KDTreeCuda3dParams) params()              {}

func (p KDTreeCuda3dParams) Validate() error {
	if p.LeafMaxSize < 0 {
		return NewConfigError(AlgorithmKDTreeCuda3d, "leaf_max_size", "must not be negative")
	}
	return nil
}

// DefaultParams returns the default parameters of an algorithm.
func DefaultParams(a Algorithm) (Params, error) {
	switch a {
	case AlgorithmLinear:
		return LinearParams{}, nil
	case AlgorithmKDTree:
		return DefaultKDTreeParams(), nil
	case AlgorithmKDTreeSingle:
		return DefaultKDTreeSingleParams(), nil
	case AlgorithmKMeans:
		return DefaultKMeansParams(), nil
	case AlgorithmComposite:
		return DefaultCompositeParams(), nil
	case AlgorithmHierarchicalClustering:
		return DefaultHierarchicalClusteringParams(), nil
	case AlgorithmHNSW:
		return DefaultHNSWParams(), nil
	case AlgorithmKDTreeCuda3d:
		return KDTreeCuda3dParams{LeafMaxSize: DefaultCuda3dLeafSize}, nil
	default:
		return nil, NewConfigError(a, "", "unknown algorithm")
	}
}
