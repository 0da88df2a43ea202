/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/suparena/entityquery/registry"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the query service and CLI.
type Config struct {
	AWSRegion   string                 `yaml:"aws_region" validate:"required"`
	AccessKey   string                 `yaml:"access_key" validate:"required_with=SecretKey"`
	SecretKey   string                 `yaml:"secret_key" validate:"required_with=AccessKey"`
	Endpoint    string                 `yaml:"endpoint" validate:"omitempty,url"`
	Environment string                 `yaml:"environment" validate:"omitempty,oneof=local dev staging prod"`
	APIDomain   string                 `yaml:"api_domain"`
	Logging     LoggingConf            `yaml:"logging"`
	Tables      map[string]TableConfig `yaml:"tables" validate:"dive"`
}

// TableConfig binds an entity name to its DynamoDB table.
type TableConfig struct {
	TableName   string                 `yaml:"table_name" validate:"required"`
	IDAttribute string                 `yaml:"id_attribute" validate:"required"`
	Indexes     map[string]IndexConfig `yaml:"indexes" validate:"dive"`
}

// IndexConfig names the key attributes of a secondary index.
type IndexConfig struct {
	PartitionKey string `yaml:"partition_key" validate:"required"`
	SortKey      string `yaml:"sort_key"`
}

// Binding converts the table configuration into a registry binding.
func (t TableConfig) Binding() registry.TableBinding {
	b := registry.TableBinding{TableName: t.TableName, IDAttribute: t.IDAttribute}
	if len(t.Indexes) > 0 {
		b.Indexes = make(map[string]registry.IndexBinding, len(t.Indexes))
		for name, idx := range t.Indexes {
			b.Indexes[name] = registry.IndexBinding{PartitionKey: idx.PartitionKey, SortKey: idx.SortKey}
		}
	}
	return b
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		AWSRegion:   "us-east-1",
		Environment: "local",
		Logging: LoggingConf{
			Enabled: true,
			Level:   "info",
			Format:  "json",
		},
		Tables: map[string]TableConfig{},
	}
}

// Load reads the YAML file at path (optional), loads a .env file when one exists
// and applies environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	// a missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"AWS_REGION", &cfg.AWSRegion},
		{"AWS_ACCESS_KEY_ID", &cfg.AccessKey},
		{"AWS_SECRET_ACCESS_KEY", &cfg.SecretKey},
		{"DDB_ENDPOINT", &cfg.Endpoint},
		{"ENVIRONMENT", &cfg.Environment},
		{"LOG_LEVEL", &cfg.Logging.Level},
		{"LOG_FORMAT", &cfg.Logging.Format},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.target = v
		}
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
}

// Table returns the table configuration registered under name.
func (c *Config) Table(name string) (TableConfig, error) {
	tc, ok := c.Tables[name]
	if !ok {
		return TableConfig{}, fmt.Errorf("no table configured for entity %q", name)
	}
	return tc, nil
}

var validate = validator.New()

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var msgs []string
			for _, e := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("field '%s' failed on rule '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid configuration:\n- %s", strings.Join(msgs, "\n- "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
