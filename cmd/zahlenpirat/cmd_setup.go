package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/zahlenpirat/internal/config"
)

var initBackend string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ~/.zahlenpirat (first-time setup)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the current configuration (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig(cmd.OutOrStdout())
	},
}

func init() {
	initCmd.Flags().StringVar(&initBackend, "backend", config.BackendJSON, "Storage backend: json, sqlite or postgres")
}

func runInit(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Zahlenpirat - First-Time Setup")
	fmt.Fprintln(out, "==============================")
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Creating config directory... ")
	dir, err := config.EnsureDir()
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	fmt.Fprintln(out, "✓")

	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Fprint(out, "Creating default configuration... ")
		cfg := config.DefaultLocalConfig()
		cfg.Storage.Backend = initBackend
		if err := config.SaveLocalConfig(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintln(out, "✓")
	} else {
		fmt.Fprintln(out, "Configuration already exists ✓")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Secrets (press Enter to skip)")
	fmt.Fprintln(out, "-----------------------------")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		return err
	}
	secrets := config.SecretsConfig{
		TelegramToken: cfg.Telegram.Token,
		DatabaseURL:   cfg.Storage.DatabaseURL,
		RabbitMQURL:   cfg.Events.URL,
	}

	changed := false
	for _, p := range []struct {
		label string
		value *string
	}{
		{"Telegram bot token", &secrets.TelegramToken},
		{"PostgreSQL URL", &secrets.DatabaseURL},
		{"RabbitMQ URL", &secrets.RabbitMQURL},
	} {
		if *p.value != "" {
			fmt.Fprintf(out, "%s: already configured ✓\n", p.label)
			continue
		}
		fmt.Fprintf(out, "%s: ", p.label)
		line, _ := reader.ReadString('\n')
		if v := strings.TrimSpace(line); v != "" {
			*p.value = v
			changed = true
		}
	}

	if changed {
		if err := config.SaveSecrets(secrets); err != nil {
			return fmt.Errorf("save secrets: %w", err)
		}
		fmt.Fprintln(out, "Secrets saved ✓")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Setup complete. Config directory: %s\n", dir)
	fmt.Fprintln(out, "Start the daemon with 'zahlenpirat start'.")
	return nil
}

func runConfig(out io.Writer) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(dir)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	fmt.Fprintf(out, "# %s\n", filepath.Join(dir, "config.yaml"))
	_, _ = out.Write(data)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "telegram_token: %s\n", mask(cfg.Telegram.Token))
	fmt.Fprintf(out, "database_url:   %s\n", mask(cfg.Storage.DatabaseURL))
	fmt.Fprintf(out, "rabbitmq_url:   %s\n", mask(cfg.Events.URL))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "\n⚠ %v\n", err)
	}
	return nil
}

func mask(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "****"
	}
}
