package agent

import (
	"github.com/mfinkle/llm-agents/pkg/llms"
)

const (
	// DefaultMaxSteps bounds tool dispatches within one ProcessMessage call.
	DefaultMaxSteps = 10
	// DefaultMaxRetries bounds consecutive parse retries.
	DefaultMaxRetries = 3
	// DefaultMaxMessages bounds the conversation length.
	DefaultMaxMessages = 200
	// DefaultMaxContentSize bounds the total bytes sent to the model.
	DefaultMaxContentSize = 1 * 1024 * 1024
)

// Example is a few-shot example pair for the preamble.
type Example struct {
	Prompt     string
	Completion string
}

// Option is a function that can be used to modify the behavior of the Agent Config.
type Option func(*Config)

type Config struct {
	// Name identifies the agent in logs and metrics.
	Name string

	// MaxSteps is the tool dispatch budget per ProcessMessage call.
	MaxSteps int

	// MaxRetries is the consecutive parse retry budget.
	MaxRetries int

	// MaxMessages bounds the total message count in a conversation.
	MaxMessages int

	// MaxContentSize bounds the total bytes sent to the model per call.
	MaxContentSize uint64

	// CallbackHandler receives engine lifecycle events.
	CallbackHandler Callback

	// Examples are few-shot pairs seeded into new conversations.
	Examples []Example

	// Model is the model name to use in an LLM call.
	Model    string
	modelSet bool

	// MaxTokens is the maximum number of tokens to generate in an LLM call.
	MaxTokens    int
	maxTokensSet bool

	// Temperature is the temperature for sampling in an LLM call.
	Temperature    float64
	temperatureSet bool

	// Seed is a seed for deterministic sampling in an LLM call.
	Seed    int
	seedSet bool

	// JSONMode asks the provider for JSON-constrained responses.
	JSONMode bool
}

func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Name:           "ToolAgent",
		MaxSteps:       DefaultMaxSteps,
		MaxRetries:     DefaultMaxRetries,
		MaxMessages:    DefaultMaxMessages,
		MaxContentSize: DefaultMaxContentSize,
		JSONMode:       true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Apply returns a copy of the config with per-call options applied.
func (c *Config) Apply(opts ...Option) *Config {
	cfg := *c
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithName sets the agent name used in logs and metrics.
func WithName(name string) Option {
	return func(o *Config) {
		o.Name = name
	}
}

// WithMaxSteps sets the tool dispatch budget per call.
func WithMaxSteps(maxSteps int) Option {
	return func(o *Config) {
		o.MaxSteps = maxSteps
	}
}

// WithMaxRetries sets the consecutive parse retry budget.
func WithMaxRetries(maxRetries int) Option {
	return func(o *Config) {
		o.MaxRetries = maxRetries
	}
}

// WithMaxMessages sets the conversation length bound.
func WithMaxMessages(maxMessages int) Option {
	return func(o *Config) {
		o.MaxMessages = maxMessages
	}
}

// WithCallback allows setting a custom Callback Handler.
func WithCallback(callbackHandler Callback) Option {
	return func(o *Config) {
		o.CallbackHandler = callbackHandler
	}
}

// WithExamples sets the few-shot examples for new conversations.
func WithExamples(examples []Example) Option {
	return func(o *Config) {
		o.Examples = examples
	}
}

// WithModel is an option for LLM calls.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
		o.modelSet = true
	}
}

// WithMaxTokens is an option for LLM calls.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
		o.maxTokensSet = true
	}
}

// WithTemperature is an option for LLM calls.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
		o.temperatureSet = true
	}
}

// WithSeed is an option for LLM calls.
func WithSeed(seed int) Option {
	return func(o *Config) {
		o.Seed = seed
		o.seedSet = true
	}
}

// WithJSONMode toggles provider-side JSON constraining.
func WithJSONMode(jsonMode bool) Option {
	return func(o *Config) {
		o.JSONMode = jsonMode
	}
}

// GetCallOptions converts the config into model call options.
func (c *Config) GetCallOptions() []llms.CallOption {
	var callOpts []llms.CallOption
	if c.modelSet {
		callOpts = append(callOpts, llms.WithModel(c.Model))
	}
	if c.maxTokensSet {
		callOpts = append(callOpts, llms.WithMaxTokens(c.MaxTokens))
	}
	if c.temperatureSet {
		callOpts = append(callOpts, llms.WithTemperature(c.Temperature))
	}
	if c.seedSet {
		callOpts = append(callOpts, llms.WithSeed(c.Seed))
	}
	if c.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	return callOpts
}
