package analysis

import (
	"fmt"

	"liftlab/pkg/config"
	"liftlab/pkg/llm"
	"liftlab/pkg/llm/deepseek"
	"liftlab/pkg/llm/failover"
	"liftlab/pkg/llm/gemini"
	"liftlab/pkg/llm/groq"
	"liftlab/pkg/llm/openai"
	"liftlab/pkg/request"
	"liftlab/pkg/tracker"
)

// NewProvider builds the failover chain from the configured fallback list.
// Every name in cfg.Fallback becomes one provider, tried in order. logPath
// is the llm request log; empty disables prompt/response logging.
func NewProvider(cfg config.LLMConfig, logPath string, rc *request.Client, t *tracker.Tracker) (llm.Provider, error) {
	if len(cfg.Fallback) == 0 {
		return nil, fmt.Errorf("no llm providers configured in fallback list")
	}

	providers := make([]llm.Provider, 0, len(cfg.Fallback))
	names := make([]string, 0, len(cfg.Fallback))

	for _, name := range cfg.Fallback {
		pCfg, ok := cfg.Providers[name]
		if !ok {
			return nil, fmt.Errorf("provider %q not found in config", name)
		}

		p, err := buildProvider(name, pCfg, rc, t)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}
		providers = append(providers, p)
		names = append(names, name)
	}

	return failover.New(providers, names, logPath, t)
}

func buildProvider(name string, pCfg config.ProviderConfig, rc *request.Client, t *tracker.Tracker) (llm.Provider, error) {
	switch pCfg.Type {
	case "gemini":
		return gemini.NewClient(pCfg, t)
	case "groq":
		c, err := groq.NewClient(pCfg, rc)
		if err != nil {
			return nil, err
		}
		c.SetLabel(name)
		return c, nil
	case "deepseek":
		c, err := deepseek.NewClient(pCfg, rc)
		if err != nil {
			return nil, err
		}
		c.SetLabel(name)
		return c, nil
	case "openai":
		c, err := openai.NewClient(pCfg, pCfg.BaseURL, rc)
		if err != nil {
			return nil, err
		}
		c.SetLabel(name)
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider type: %s", pCfg.Type)
	}
}
