package router

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/KaramelBytes/csvask-cli/internal/ai"
)

// Strategy names the cascade stage that produced a Decision.
type Strategy string

const (
	// StrategyEmpty: the query was blank.
	StrategyEmpty      Strategy = "empty"
	StrategyExplicit   Strategy = "explicit"
	StrategyKeyword    Strategy = "keyword"
	StrategyClassifier Strategy = "classifier"
	// StrategyFallback: no stage produced a tool, or the classifier failed.
	StrategyFallback Strategy = "fallback"
	// StrategyManual: the caller named the tool and routing was skipped.
	StrategyManual Strategy = "manual"
)

// Decision is the routed tool plus how it was chosen.
type Decision struct {
	Tool     Tool     `json:"tool"`
	Strategy Strategy `json:"strategy"`
	// Answer is the classifier's raw reply, when it was consulted.
	Answer string `json:"answer,omitempty"`
}

// Default values for the remote classification stage.
const (
	DefaultModel       = "google/gemma-3-27b-it"
	DefaultTemperature = 0.7
	DefaultTimeout     = 15 * time.Second
)

// Config wires the router. A nil Classifier disables the remote stage.
type Config struct {
	Classifier  ai.Runtime
	Model string
	// Temperature nil means DefaultTemperature; 0 is a valid setting.
	Temperature *float64
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Router is safe for concurrent use; it holds no per-query state.
type Router struct {
	classifier  ai.Runtime
	model       string
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

// New builds a Router, filling zero Config fields with defaults.
func New(cfg Config) *Router {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Router{
		classifier:  cfg.Classifier,
		model:       cfg.Model,
		temperature: temperature,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
}

// Route always returns one of Tools.
func (r *Router) Route(ctx context.Context, query string) Decision {
	d := r.route(ctx, query)
	decisionsTotal.WithLabelValues(string(d.Strategy), string(d.Tool)).Inc()
	r.logger.Debug("routed query",
		slog.String("tool", string(d.Tool)),
		slog.String("strategy", string(d.Strategy)))
	return d
}

func (r *Router) route(ctx context.Context, query string) Decision {
	if strings.TrimSpace(query) == "" {
		return Decision{Tool: Summary, Strategy: StrategyEmpty}
	}
	lower := strings.ToLower(query)
	if t, ok := explicitMention(lower); ok {
		return Decision{Tool: t, Strategy: StrategyExplicit}
	}
	if t, ok := keywordMatch(lower); ok {
		return Decision{Tool: t, Strategy: StrategyKeyword}
	}
	if r.classifier == nil {
		return Decision{Tool: Summary, Strategy: StrategyFallback}
	}
	return r.classify(ctx, query)
}

// classify asks the remote service once. Any failure yields summary.
func (r *Router) classify(ctx context.Context, query string) Decision {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	temp := r.temperature
	answer, err := ai.Complete(ctx, r.classifier, r.model, &temp, BuildPrompt(query))
	classifierLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		reason := ai.FailureReason(err)
		classifierFailuresTotal.WithLabelValues(reason).Inc()
		r.logger.Warn("classifier failed, using default tool",
			slog.String("reason", reason),
			slog.String("error", err.Error()))
		return Decision{Tool: Summary, Strategy: StrategyFallback}
	}
	r.logger.Debug("classifier answered", slog.String("answer", answer))
	t, ok := Parse(answer)
	if !ok {
		classifierFailuresTotal.WithLabelValues("unknown_tool").Inc()
		r.logger.Warn("classifier returned unknown tool", slog.String("answer", answer))
		return Decision{Tool: Summary, Strategy: StrategyFallback, Answer: answer}
	}
	return Decision{Tool: t, Strategy: StrategyClassifier, Answer: answer}
}
