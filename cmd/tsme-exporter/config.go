package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sywesk/tsme-exporter/pkg/tsme"
	"gopkg.in/yaml.v3"
)

const EnvironmentVariablePrefix = "TSME_"

type config struct {
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Provider   string `yaml:"provider"`
	Pause      string `yaml:"pause"`
	Debug      bool   `yaml:"debug"`
	Prometheus struct {
		PushgatewayURL string `yaml:"pushgateway_url"`
		Job            string `yaml:"job"`
	} `yaml:"prometheus"`
	HomeAssistant struct {
		Enabled    bool   `yaml:"enabled"`
		BrokerAddr string `yaml:"broker_addr"`
		Username   string `yaml:"username"`
		Password   string `yaml:"password"`
	} `yaml:"home_assistant"`
}

func (c *config) setFromEnv() error {
	setStringFromEnv(&c.Email, EnvironmentVariablePrefix+"EMAIL")
	setStringFromEnv(&c.Password, EnvironmentVariablePrefix+"PASSWORD")
	setStringFromEnv(&c.Provider, EnvironmentVariablePrefix+"PROVIDER")
	setStringFromEnv(&c.Pause, EnvironmentVariablePrefix+"PAUSE")
	if err := setBoolFromEnv(&c.Debug, EnvironmentVariablePrefix+"DEBUG"); err != nil {
		return err
	}
	setStringFromEnv(&c.Prometheus.PushgatewayURL, EnvironmentVariablePrefix+"PUSHGATEWAY_URL")
	setStringFromEnv(&c.Prometheus.Job, EnvironmentVariablePrefix+"PUSHGATEWAY_JOB")
	if err := setBoolFromEnv(&c.HomeAssistant.Enabled, EnvironmentVariablePrefix+"HOME_ASSISTANT_ENABLED"); err != nil {
		return err
	}
	setStringFromEnv(&c.HomeAssistant.BrokerAddr, EnvironmentVariablePrefix+"HOME_ASSISTANT_BROKER_ADDR")
	setStringFromEnv(&c.HomeAssistant.Username, EnvironmentVariablePrefix+"HOME_ASSISTANT_USERNAME")
	setStringFromEnv(&c.HomeAssistant.Password, EnvironmentVariablePrefix+"HOME_ASSISTANT_PASSWORD")
	return nil
}

func (c *config) setDefaults() {
	if c.Provider == "" {
		c.Provider = "suez"
	}

	if c.Pause == "" {
		c.Pause = "750ms"
	}

	if c.Prometheus.Job == "" {
		c.Prometheus.Job = "tsme_exporter"
	}

	if c.HomeAssistant.BrokerAddr == "" {
		c.HomeAssistant.BrokerAddr = "127.0.0.1:1883"
	}
}

// validate checks everything but the credentials, which are only needed by the commands that
// talk to the portal and are checked when the client is built.
func (c *config) validate() error {
	if _, err := time.ParseDuration(c.Pause); err != nil {
		return fmt.Errorf("invalid pause %q: %w", c.Pause, err)
	}

	for _, name := range tsme.Providers() {
		if name == c.Provider {
			return nil
		}
	}
	return fmt.Errorf("%w %q", tsme.ErrUnknownProvider, c.Provider)
}

func (c config) pauseDuration() time.Duration {
	d, _ := time.ParseDuration(c.Pause)
	return d
}

var globalConfig config

func loadConfig(path ...string) error {
	// A .env file is optional, it only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := config{}

	// Load the configuration from a file if specified.
	if len(path) != 0 && path[0] != "" {
		contents, err := os.ReadFile(path[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		err = yaml.Unmarshal(contents, &cfg)
		if err != nil {
			return fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	}

	// Then override with env vars if specified.
	if err := cfg.setFromEnv(); err != nil {
		return err
	}
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return err
	}

	globalConfig = cfg
	return nil
}

func getConfig() config {
	return globalConfig
}

func setStringFromEnv(str *string, envVarName string) {
	value := os.Getenv(envVarName)
	if value == "" {
		return
	}
	*str = value
}

func setBoolFromEnv(b *bool, envVarName string) error {
	value := os.Getenv(envVarName)
	if value == "" {
		return nil
	}

	valueLower := strings.ToLower(value)

	if valueLower == "t" || valueLower == "true" || valueLower == "1" {
		*b = true
		return nil
	}
	if valueLower == "f" || valueLower == "false" || valueLower == "0" {
		*b = false
		return nil
	}

	return fmt.Errorf("invalid boolean value '%s' for env var '%s'", value, envVarName)
}
