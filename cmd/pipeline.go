package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvask-cli/internal/ai"
	"github.com/KaramelBytes/csvask-cli/internal/assist"
	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/router"
	"github.com/KaramelBytes/csvask-cli/internal/tools"
)

// loadFlags are the dataset parsing flags shared by ask and columns.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheet      string
	sheetIndex int
	maxRows    int
}

func (l *loadFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&l.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (from extension if omitted)")
	c.Flags().StringVar(&l.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	c.Flags().StringVar(&l.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	c.Flags().StringVar(&l.sheet, "sheet", "", "XLSX: sheet name")
	c.Flags().IntVar(&l.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet not provided)")
	c.Flags().IntVar(&l.maxRows, "max-rows", 0, "maximum rows to load (0 = config max_rows, unlimited by default)")
}

func (l *loadFlags) options() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.MaxRows = current().MaxRows
	if l.maxRows > 0 {
		opt.MaxRows = l.maxRows
	}
	switch l.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", l.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(l.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
		opt.DecimalSeparator = 0
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", l.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(l.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", l.thousands)
	}
	opt.Sheet = l.sheet
	if l.sheetIndex > 0 {
		opt.SheetIndex = l.sheetIndex
	}
	return opt, nil
}

func (l *loadFlags) load(path string) (*dataset.Dataset, error) {
	opt, err := l.options()
	if err != nil {
		return nil, err
	}
	return dataset.Load(path, opt)
}

// classifierRuntime returns nil when the configured provider cannot be used,
// which leaves the router on its local stages only. Classification makes a
// single attempt whatever retry_max_attempts says.
func classifierRuntime(logger *slog.Logger) ai.Runtime {
	c := current()
	provider := c.Provider
	if provider == "" {
		provider = ai.ProviderOpenRouter
	}
	if provider != ai.ProviderOllama && c.APIKey == "" {
		logger.Debug("no api key configured, classifier disabled", slog.String("provider", provider))
		return nil
	}
	base, max := c.RetryDelays()
	rt, ok := ai.GetRuntime(provider, ai.RuntimeConfig{
		HTTPTimeout: c.HTTPTimeout(),
		RetryMax:    classifierAttempts,
		BaseDelay:   base,
		MaxDelay:    max,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Host:        c.OllamaHost,
	})
	if !ok {
		logger.Warn("unknown provider, classifier disabled", slog.String("provider", provider))
		return nil
	}
	return rt
}

const classifierAttempts = 1

func buildRouter(noLLM bool, logger *slog.Logger) *router.Router {
	c := current()
	rc := router.Config{
		Model:   c.RouterModel,
		Timeout: c.RouterTimeout(),
		Logger:  logger,
	}
	if cfg != nil {
		temp := cfg.RouterTemperature
		rc.Temperature = &temp
	}
	if !noLLM {
		rc.Classifier = classifierRuntime(logger)
	}
	return router.New(rc)
}

// buildAssistant returns nil unless the assistant is enabled by config or
// force.
func buildAssistant(force bool, logger *slog.Logger) *assist.Assistant {
	c := current()
	if !force && !c.AssistEnabled {
		return nil
	}
	provider := c.AssistProvider
	if provider == "" {
		provider = ai.ProviderOllama
	}
	base, max := c.RetryDelays()
	rt, ok := ai.GetRuntime(provider, ai.RuntimeConfig{
		HTTPTimeout: c.HTTPTimeout(),
		RetryMax:    c.RetryMaxAttempts,
		BaseDelay:   base,
		MaxDelay:    max,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Host:        c.OllamaHost,
	})
	if !ok {
		logger.Warn("unknown assist provider", slog.String("provider", provider))
		return nil
	}
	return assist.New(assist.Config{Runtime: rt, Model: c.AssistModel, Logger: logger})
}

func buildRunner(logger *slog.Logger) *tools.Runner {
	c := current()
	return tools.NewRunner(tools.Options{
		PieMaxSlices:      c.PieMaxSlices,
		SubgroupMaxUnique: c.SubgroupMaxUnique,
	}, logger)
}
