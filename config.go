package quotegateway

// Config holds the configuration for the quote gateway.
type Config struct {
	// Strategy defines how fetches are routed (e.g., single, fallback, loadbalance).
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	// Targets is a list of provider targets to route fetches to.
	Targets []Target `json:"targets" yaml:"targets"`
	// Cache configures the in-memory quote cache decorator.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// History configures the optional served-quote log (optional).
	History HistoryConfig `json:"history,omitempty" yaml:"history,omitempty"`
}

// StrategyConfig defines the routing strategy.
type StrategyConfig struct {
	Mode       StrategyMode `json:"mode" yaml:"mode"`
	Conditions []Condition  `json:"conditions,omitempty" yaml:"conditions,omitempty"` // For conditional routing
}

// StrategyMode represents the routing strategy mode.
type StrategyMode string

// StrategyMode constants define the supported routing strategies.
const (
	ModeSingle      StrategyMode = "single"
	ModeFallback    StrategyMode = "fallback"
	ModeLoadBalance StrategyMode = "loadbalance"
	ModeConditional StrategyMode = "conditional"
)

// Condition represents a condition for conditional routing. Key is one of
// "tag", "tag_prefix", or "author".
type Condition struct {
	Key            string `json:"key" yaml:"key"`
	Value          string `json:"value" yaml:"value"`
	TargetProvider string `json:"target_provider" yaml:"target_provider"`
}

// Target represents a specific provider target.
type Target struct {
	// Provider is the registered name of the provider.
	Provider string `json:"provider" yaml:"provider"`
	// Weight is used for load balancing.
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	// Retry configuration for this target.
	Retry *RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	Attempts int `json:"attempts" yaml:"attempts"`
}

// CacheConfig configures the blockable cache decorator.
type CacheConfig struct {
	// Strict makes mutations on a blocked cache return an error instead of
	// silently no-oping.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
	// PreserveState clears the cache contents whenever the cache is blocked.
	PreserveState bool `json:"preserve_state,omitempty" yaml:"preserve_state,omitempty"`
}

// HistoryConfig configures the served-quote log.
type HistoryConfig struct {
	// Driver is "sqlite" or "postgres"; empty disables the history log.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}
