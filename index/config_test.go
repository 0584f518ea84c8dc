package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseConfig(t *testing.T) {
	t.Run("KDTree", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`
index:
  algorithm: kdtree
  trees: 8
search:
  checks: 64
  eps: 0.1
`))
		require.NoError(t, err)
		assert.Equal(t, KDTreeParams{Trees: 8}, cfg.Index)
		assert.Equal(t, 64, cfg.Search.Checks)
		assert.InDelta(t, 0.1, cfg.Search.Eps, 1e-12)
		assert.True(t, cfg.Search.Sorted, "omitted fields keep defaults")
	})

	t.Run("KMeansDefaults", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`
index:
  algorithm: KMeans
  centers_init: gonzales
`))
		require.NoError(t, err)
		p, ok := cfg.Index.(KMeansParams)
		require.True(t, ok)
		assert.Equal(t, DefaultBranching, p.Branching)
		assert.Equal(t, DefaultIterations, p.Iterations)
		assert.Equal(t, CentersGonzales, p.CentersInit)
		assert.InDelta(t, DefaultCBIndex, p.CBIndex, 1e-12)
		assert.Equal(t, DefaultSearchParams(), cfg.Search)
	})

	t.Run("Empty", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("UnknownAlgorithm", func(t *testing.T) {
		_, err := ParseConfig([]byte("index:\n  algorithm: lsh\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lsh")
	})

	t.Run("InvalidValue", func(t *testing.T) {
		_, err := ParseConfig([]byte("index:\n  algorithm: hierarchical\n  branching: 1\n"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))

		var ce *ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "branching", ce.Field)
		assert.Equal(t, "hierarchical", ce.Scope)
	})

	t.Run("InvalidSearch", func(t *testing.T) {
		_, err := ParseConfig([]byte("search:\n  checks: 0\n"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	})
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index:\n  algorithm: hnsw\n  m: 16\n"), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, HNSWParams{M: 16, EfConstruction: DefaultEfConstruction}, cfg.Index)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	in := Config{
		Index:  CompositeParams{Trees: 2, Branching: 8, Iterations: 5, CentersInit: CentersKMeansPP, CBIndex: 0.5},
		Search: SearchParams{Checks: Unlimited, Sorted: true, MaxNeighbors: 10},
	}

	data, err := yaml.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), "algorithm: composite")
	assert.Contains(t, string(data), "centers_init: kmeanspp")

	out, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		valid  bool
	}{
		{"Linear", LinearParams{}, true},
		{"KDTreeZero", KDTreeParams{}, true},
		{"KDTreeNegative", KDTreeParams{Trees: -1}, false},
		{"KDTreeSingleNegative", KDTreeSingleParams{LeafMaxSize: -3}, false},
		{"KMeansUnlimitedIterations", KMeansParams{Iterations: Unlimited}, true},
		{"KMeansBranchingOne", KMeansParams{Branching: 1}, false},
		{"KMeansNegativeCBIndex", KMeansParams{CBIndex: -0.1}, false},
		{"KMeansUnknownInit", KMeansParams{CentersInit: CentersInit(9)}, false},
		{"CompositeDefaults", DefaultCompositeParams(), true},
		{"CompositeIterations", CompositeParams{Iterations: -5}, false},
		{"Hierarchical", DefaultHierarchicalClusteringParams(), true},
		{"HNSWSmallM", HNSWParams{M: 1}, false},
		{"Cuda3d", KDTreeCuda3dParams{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestAlgorithmString(t *testing.T) {
	for a := AlgorithmLinear; a <= AlgorithmKDTreeCuda3d; a++ {
		parsed, err := ParseAlgorithm(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)

		p, err := DefaultParams(a)
		require.NoError(t, err)
		assert.Equal(t, a, p.Algorithm())
	}
	assert.Equal(t, "Unknown(42)", Algorithm(42).String())
}

func TestSearchParams(t *testing.T) {
	p := DefaultSearchParams()
	assert.False(t, p.IsExact())
	assert.NoError(t, p.Validate())

	e := p.Exact()
	assert.True(t, e.IsExact())
	assert.False(t, p.IsExact(), "Exact returns a copy")
	assert.NoError(t, e.Validate())

	assert.Error(t, SearchParams{Checks: 1, Eps: -1}.Validate())
}
