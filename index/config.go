package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config bundles index and query tuning, typically loaded from YAML:
//
//	index:
//	  algorithm: kdtree
//	  trees: 8
//	search:
//	  checks: 64
//	  eps: 0.1
//
// Omitted fields keep the defaults of the selected algorithm.
type Config struct {
	Index  Params
	Search SearchParams
}

// DefaultConfig returns a linear index with default query tuning.
func DefaultConfig() Config {
	return Config{
		Index:  LinearParams{},
		Search: DefaultSearchParams(),
	}
}

// Validate validates both parts of the configuration.
func (c Config) Validate() error {
	if c.Index == nil {
		return &ConfigError{Field: "index", Reason: "missing"}
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Search.Validate()
}

type rawConfig struct {
	Index  *yaml.Node `yaml:"index"`
	Search *yaml.Node `yaml:"search"`
}

type algorithmHeader struct {
	Algorithm Algorithm `yaml:"algorithm"`
}

// UnmarshalYAML decodes the algorithm first and then its parameters on top
// of that algorithm's defaults.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	cfg := DefaultConfig()
	if raw.Index != nil {
		p, err := decodeParams(raw.Index)
		if err != nil {
			return err
		}
		cfg.Index = p
	}
	if raw.Search != nil {
		if err := raw.Search.Decode(&cfg.Search); err != nil {
			return fmt.Errorf("decode search params: %w", err)
		}
	}
	*c = cfg
	return nil
}

func decodeParams(node *yaml.Node) (Params, error) {
	var header algorithmHeader
	if err := node.Decode(&header); err != nil {
		return nil, err
	}

	switch header.Algorithm {
	case AlgorithmLinear:
		return LinearParams{}, nil
	case AlgorithmKDTree:
		return decodeInto(node, DefaultKDTreeParams())
	case AlgorithmKDTreeSingle:
		return decodeInto(node, DefaultKDTreeSingleParams())
	case AlgorithmKMeans:
		return decodeInto(node, DefaultKMeansParams())
	case AlgorithmComposite:
		return decodeInto(node, DefaultCompositeParams())
	case AlgorithmHierarchicalClustering:
		return decodeInto(node, DefaultHierarchicalClusteringParams())
	case AlgorithmHNSW:
		return decodeInto(node, DefaultHNSWParams())
	case AlgorithmKDTreeCuda3d:
		return decodeInto(node, KDTreeCuda3dParams{LeafMaxSize: DefaultCuda3dLeafSize})
	default:
		return nil, NewConfigError(header.Algorithm, "", "unknown algorithm")
	}
}

func decodeInto[P Params](node *yaml.Node, p P) (Params, error) {
	if err := node.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode %s params: %w", p.Algorithm(), err)
	}
	return p, nil
}

// MarshalYAML encodes the configuration in the layout UnmarshalYAML reads.
func (c Config) MarshalYAML() (any, error) {
	var node *yaml.Node
	if c.Index != nil {
		node = &yaml.Node{}
		if err := node.Encode(c.Index); err != nil {
			return nil, err
		}
		if node.Kind != yaml.MappingNode {
			node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "algorithm"}
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Index.Algorithm().String()}
		node.Content = append([]*yaml.Node{key, val}, node.Content...)
	}
	return struct {
		Index  *yaml.Node   `yaml:"index,omitempty"`
		Search SearchParams `yaml:"search"`
	}{Index: node, Search: c.Search}, nil
}

// ParseConfig parses a YAML configuration document and validates it.
func ParseConfig(data []byte) (Config, error) {
	return LoadConfig(bytes.NewReader(data))
}

// LoadConfig reads a YAML configuration document and validates it.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}
