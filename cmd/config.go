package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/csvask-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/csvask-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set csvask configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "api_key: %s\n", cfg.MaskedKey())
		fmt.Fprintf(out, "provider: %s\n", cfg.Provider)
		if cfg.BaseURL != "" {
			fmt.Fprintf(out, "base_url: %s\n", cfg.BaseURL)
		}
		fmt.Fprintf(out, "router_model: %s\n", cfg.RouterModel)
		fmt.Fprintf(out, "router_temperature: %.3f\n", cfg.RouterTemperature)
		fmt.Fprintf(out, "router_timeout_sec: %d\n", cfg.RouterTimeoutSec)
		fmt.Fprintf(out, "assist_enabled: %t\n", cfg.AssistEnabled)
		fmt.Fprintf(out, "assist_provider: %s\n", cfg.AssistProvider)
		fmt.Fprintf(out, "assist_model: %s\n", cfg.AssistModel)
		fmt.Fprintf(out, "ollama_host: %s\n", cfg.OllamaHost)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Fprintf(out, "retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Fprintf(out, "retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		if cfg.MaxRows > 0 {
			fmt.Fprintf(out, "max_rows: %d\n", cfg.MaxRows)
		}
		fmt.Fprintf(out, "pie_max_slices: %d\n", cfg.PieMaxSlices)
		fmt.Fprintf(out, "subgroup_max_unique: %d\n", cfg.SubgroupMaxUnique)
		if cfg.ChartsDir != "" {
			fmt.Fprintf(out, "charts_dir: %s\n", cfg.ChartsDir)
		}
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "cors_origins: %s\n", strings.Join(cfg.CORSOrigins, ","))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		var err error
		switch key {
		case "api_key":
			cfg.APIKey = val
		case "provider":
			cfg.Provider, err = parseProvider(key, val)
		case "base_url":
			cfg.BaseURL = val
		case "router_model":
			cfg.RouterModel = val
		case "router_temperature":
			cfg.RouterTemperature, err = parseFloat(key, val)
		case "router_timeout_sec":
			cfg.RouterTimeoutSec, err = parseInt(key, val)
		case "assist_enabled":
			b, perr := strconv.ParseBool(val)
			if perr != nil {
				return fmt.Errorf("invalid bool for assist_enabled: %v", val)
			}
			cfg.AssistEnabled = b
		case "assist_provider":
			cfg.AssistProvider, err = parseProvider(key, val)
		case "assist_model":
			cfg.AssistModel = val
		case "ollama_host":
			cfg.OllamaHost = val
		case "http_timeout_sec":
			cfg.HTTPTimeoutSec, err = parseInt(key, val)
		case "retry_max_attempts":
			cfg.RetryMaxAttempts, err = parseInt(key, val)
		case "retry_base_delay_ms":
			cfg.RetryBaseDelayMs, err = parseInt(key, val)
		case "retry_max_delay_ms":
			cfg.RetryMaxDelayMs, err = parseInt(key, val)
		case "max_rows":
			cfg.MaxRows, err = parseInt(key, val)
		case "pie_max_slices":
			cfg.PieMaxSlices, err = parseInt(key, val)
		case "subgroup_max_unique":
			cfg.SubgroupMaxUnique, err = parseInt(key, val)
		case "charts_dir":
			cfg.ChartsDir = val
		case "listen_addr":
			cfg.ListenAddr = val
		case "cors_origins":
			cfg.CORSOrigins = nil
			for _, o := range strings.Split(val, ",") {
				if o = strings.TrimSpace(o); o != "" {
					cfg.CORSOrigins = append(cfg.CORSOrigins, o)
				}
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func parseProvider(key, val string) (string, error) {
	switch strings.ToLower(val) {
	case ai.ProviderOpenRouter:
		return ai.ProviderOpenRouter, nil
	case ai.ProviderOpenAI:
		return ai.ProviderOpenAI, nil
	case ai.ProviderOllama, "local":
		return ai.ProviderOllama, nil
	}
	return "", fmt.Errorf("invalid %s: %s (use openrouter, openai or ollama)", key, val)
}

func parseInt(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid int for %s: %v", key, val)
	}
	return i, nil
}

func parseFloat(key, val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid float for %s: %v", key, val)
	}
	return f, nil
}
