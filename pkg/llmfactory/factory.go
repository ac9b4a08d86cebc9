// Package llmfactory constructs chat models from configuration,
// hiding the provider-specific client setup from callers.
package llmfactory

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/mfinkle/llm-agents/pkg/llms"
	"github.com/mfinkle/llm-agents/pkg/llms/ollama"
	"github.com/mfinkle/llm-agents/pkg/llms/openai"
)

var logger = xlog.NewPackageLogger("github.com/mfinkle/llm-agents", "llmfactory")

// Factory creates and caches chat models by provider name.
type Factory interface {
	DefaultModel() (llms.Model, error)
	ModelByName(name string) (llms.Model, error)
}

// Load returns a factory from a config file.
func Load(location string) (Factory, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

type factory struct {
	cfg *Config

	byName map[string]llms.Model
	lock   sync.Mutex
}

// New creates a new LLM factory
func New(cfg *Config) Factory {
	return &factory{
		cfg:    cfg,
		byName: make(map[string]llms.Model),
	}
}

// NewLLM constructs a model from one provider config.
func NewLLM(cfg *ProviderConfig) (llms.Model, error) {
	switch strings.ToUpper(cfg.Type) {
	case string(llms.ProviderOllama):
		model, err := ollama.New(cfg.DefaultModel, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return model, nil
	case string(llms.ProviderOpenAI), "":
		var opts []openai.Option
		if cfg.Token != "" {
			opts = append(opts, openai.WithToken(cfg.Token))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		opts = append(opts, openai.WithModel(cfg.DefaultModel))
		model, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, errors.Newf("unsupported provider type %q", cfg.Type)
	}
}

func (f *factory) DefaultModel() (llms.Model, error) {
	if len(f.cfg.Providers) == 0 {
		return nil, errors.New("no providers configured")
	}
	name := values.StringsCoalesce(f.cfg.DefaultProvider, f.cfg.Providers[0].Name)
	return f.ModelByName(name)
}

func (f *factory) ModelByName(name string) (llms.Model, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if model, ok := f.byName[name]; ok {
		return model, nil
	}
	for _, provider := range f.cfg.Providers {
		if provider.Name == name {
			model, err := NewLLM(provider)
			if err != nil {
				return nil, err
			}
			logger.KV(xlog.DEBUG, "provider", name, "model", model.GetName())
			f.byName[name] = model
			return model, nil
		}
	}
	return nil, errors.Newf("provider %q not found in config", name)
}
