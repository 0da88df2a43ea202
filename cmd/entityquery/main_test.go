/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/entityquery"
)

const testConfig = `
aws_region: us-east-1
logging:
  enabled: false
tables:
  users:
    table_name: users-test
    id_attribute: userId
    indexes:
      UserNameIndex:
        partition_key: userName
`

func writeConfig(t *testing.T) string {
	t.Helper()
	for _, env := range []string{"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "DDB_ENDPOINT", "ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT", "ENTITYQUERY_CONFIG"} {
		t.Setenv(env, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), args, &stdout, &stderr); err != nil {
		return nil, err
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out), stdout.String())
	return out, nil
}

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "EntityQuery version "+entityquery.Version)
	assert.Empty(t, stderr.String())
}

func TestExplainScan(t *testing.T) {
	path := writeConfig(t)

	out, err := runCommand(t, "explain",
		"-config", path,
		"-entity", "users",
		"-filters", `{"age":[{"operator":">","value":18}]}`,
		"-negation", `{"status":[{"operator":"=","value":"banned"}]}`,
		"-fields", "userName",
		"-limit", "25",
	)
	require.NoError(t, err)

	assert.Equal(t, "users-test", out["TableName"])
	assert.Equal(t, "(#age > :age0 ) AND (NOT (#status = :status0 ))", out["FilterExpression"])
	assert.Equal(t, "#userName,#userId", out["ProjectionExpression"])
	assert.Equal(t, float64(25), out["Limit"])
	assert.Equal(t, map[string]any{
		"#age":      "age",
		"#status":   "status",
		"#userName": "userName",
		"#userId":   "userId",
	}, out["ExpressionAttributeNames"])
	assert.Equal(t, map[string]any{
		":age0":    float64(18),
		":status0": "banned",
	}, out["ExpressionAttributeValues"])
	assert.NotContains(t, out, "IndexName")
}

func TestExplainWithoutOptions(t *testing.T) {
	path := writeConfig(t)

	out, err := runCommand(t, "explain", "-config", path, "-entity", "users")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"TableName": "users-test"}, out)
}

func TestExplainIDOnlyProjection(t *testing.T) {
	path := writeConfig(t)

	out, err := runCommand(t, "explain", "-config", path, "-entity", "users", "-fields", "")
	require.NoError(t, err)
	assert.Equal(t, "#userId", out["ProjectionExpression"])
	assert.Equal(t, map[string]any{"#userId": "userId"}, out["ExpressionAttributeNames"])
}

func TestExplainQuery(t *testing.T) {
	path := writeConfig(t)

	out, err := runCommand(t, "explain",
		"-config", path,
		"-entity", "users",
		"-index", "UserNameIndex",
		"-key", "John Doe",
	)
	require.NoError(t, err)

	assert.Equal(t, "UserNameIndex", out["IndexName"])
	assert.Equal(t, "#0 = :0", out["KeyConditionExpression"])
	assert.Equal(t, map[string]any{"#0": "userName"}, out["ExpressionAttributeNames"])
	assert.Equal(t, map[string]any{":0": "John Doe"}, out["ExpressionAttributeValues"])
}

func TestRunErrors(t *testing.T) {
	path := writeConfig(t)

	testCases := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"drop", "-config", path}},
		{name: "unknown flag", args: []string{"explain", "-force"}},
		{name: "unknown entity", args: []string{"explain", "-config", path, "-entity", "orders"}},
		{name: "unknown index", args: []string{"explain", "-config", path, "-entity", "users", "-index", "AgeIndex", "-key", "1"}},
		{name: "limit overflows int32", args: []string{"explain", "-config", path, "-entity", "users", "-limit", "4294967297"}},
		{name: "zero limit", args: []string{"explain", "-config", path, "-entity", "users", "-limit", "0"}},
		{name: "bad filters", args: []string{"explain", "-config", path, "-entity", "users", "-filters", `{"age":5}`}},
		{name: "missing config", args: []string{"explain", "-config", filepath.Join(t.TempDir(), "absent.yaml")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tc.args, &stdout, &stderr)
			assert.Error(t, err)
			assert.Empty(t, stdout.String())
		})
	}
}
