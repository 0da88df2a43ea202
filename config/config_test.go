/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
aws_region: eu-west-1
environment: dev
logging:
  enabled: true
  level: debug
  format: console
tables:
  users:
    table_name: users-dev
    id_attribute: userId
    indexes:
      UserNameIndex:
        partition_key: userName
`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "DDB_ENDPOINT", "ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	table, err := cfg.Table("users")
	require.NoError(t, err)
	assert.Equal(t, "users-dev", table.TableName)
	assert.Equal(t, "userId", table.IDAttribute)
	assert.Equal(t, IndexConfig{PartitionKey: "userName"}, table.Indexes["UserNameIndex"])

	binding := table.Binding()
	assert.Equal(t, "users-dev", binding.TableName)
	idx, err := binding.Index("UserNameIndex")
	require.NoError(t, err)
	assert.Equal(t, "userName", idx.PartitionKey)

	_, err = cfg.Table("orders")
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "ap-southeast-2")
	t.Setenv("DDB_ENDPOINT", "http://localhost:8000")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "ap-southeast-2", cfg.AWSRegion)
	assert.Equal(t, "http://localhost:8000", cfg.Endpoint)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Empty(t, cfg.Tables)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load("")
	require.NoError(t, err, "a missing .env is not an error")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0o600))
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "tables: [not, a, map"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing region", func(c *Config) { c.AWSRegion = "" }, true},
		{"access key without secret", func(c *Config) { c.AccessKey = "AKIA" }, true},
		{"static credentials", func(c *Config) { c.AccessKey, c.SecretKey = "AKIA", "secret" }, false},
		{"bad endpoint", func(c *Config) { c.Endpoint = "not a url" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"table without id", func(c *Config) { c.Tables["users"] = TableConfig{TableName: "users"} }, true},
		{
			"index without partition key",
			func(c *Config) {
				c.Tables["users"] = TableConfig{
					TableName:   "users",
					IDAttribute: "userId",
					Indexes:     map[string]IndexConfig{"byName": {SortKey: "createdAt"}},
				}
			},
			true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
