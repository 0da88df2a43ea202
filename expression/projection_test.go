/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/entityquery/errors"
)

func TestBuildProjection(t *testing.T) {
	testCases := []struct {
		name       string
		fields     []string
		expression string
		names      map[string]string
	}{
		{
			name:       "id appended",
			fields:     []string{"name", "email"},
			expression: "#name,#email,#userId",
			names:      map[string]string{"#name": "name", "#email": "email", "#userId": "userId"},
		},
		{
			name:       "id already present keeps its position",
			fields:     []string{"userId", "name"},
			expression: "#userId,#name",
			names:      map[string]string{"#userId": "userId", "#name": "name"},
		},
		{
			name:       "empty field list projects only the id",
			fields:     []string{},
			expression: "#userId",
			names:      map[string]string{"#userId": "userId"},
		},
		{
			name:       "duplicates emitted once",
			fields:     []string{"name", "name", "email"},
			expression: "#name,#email,#userId",
			names:      map[string]string{"#name": "name", "#email": "email", "#userId": "userId"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frag, err := BuildProjection("userId", tc.fields)
			require.NoError(t, err)
			assert.Equal(t, tc.expression, frag.Expression)
			assert.Equal(t, tc.names, frag.Names)
		})
	}
}

func TestBuildProjectionDoesNotModifyFields(t *testing.T) {
	fields := make([]string, 2, 8)
	fields[0], fields[1] = "name", "email"

	_, err := BuildProjection("userId", fields)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "email"}, fields)
	assert.Equal(t, "", fields[:3][2])
}

func TestBuildProjectionContractViolations(t *testing.T) {
	_, err := BuildProjection("", []string{"name"})
	assert.True(t, errors.IsContractViolation(err))

	_, err = BuildProjection("userId", []string{"name", ""})
	assert.True(t, errors.IsContractViolation(err))
}
