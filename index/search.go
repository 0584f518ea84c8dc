package index

// Unlimited disables a bound. As SearchParams.Checks it requests an exact
// search.
const Unlimited = -1

// DefaultChecks is the default number of checks of an approximate search.
const DefaultChecks = 32

// SearchParams tunes a single query.
type SearchParams struct {
	// Checks bounds the number of distance evaluations an approximate index
	// performs. Unlimited forces an exact search.
	Checks int `yaml:"checks"`

	// Eps relaxes pruning: branches closer than dist*(1+Eps) are explored.
	Eps float64 `yaml:"eps"`

	// Sorted orders radius results by ascending distance. k-NN results are
	// always sorted.
	Sorted bool `yaml:"sorted"`

	// MaxNeighbors caps the number of radius results when positive, keeping
	// the closest.
	MaxNeighbors int `yaml:"max_neighbors"`
}

// DefaultSearchParams returns the default query tuning.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Checks:       DefaultChecks,
		Eps:          0,
		Sorted:       true,
		MaxNeighbors: Unlimited,
	}
}

// Exact returns a copy of p that requests an exact, sorted search.
func (p SearchParams) Exact() SearchParams {
	p.Checks = Unlimited
	p.Eps = 0
	p.Sorted = true
	return p
}

// IsExact reports whether p requests an exact search.
func (p SearchParams) IsExact() bool {
	return p.Checks == Unlimited
}

// Validate checks the ranges of the parameters.
func (p SearchParams) Validate() error {
	if p.Checks < 1 && p.Checks != Unlimited {
		return &ConfigError{Scope: "search", Field: "checks", Reason: "must be positive or unlimited"}
	}
	if p.Eps < 0 {
		return &ConfigError{Scope: "search", Field: "eps", Reason: "must not be negative"}
	}
	return nil
}
