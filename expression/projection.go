/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expression

import (
	"slices"
	"strings"

	"github.com/suparena/entityquery/errors"
)

// ProjectionFragment is a compiled projection expression and its name placeholders.
type ProjectionFragment struct {
	Expression string
	Names      map[string]string
}

// BuildProjection compiles fields into a projection expression such as
// "#name,#email,#userId". The identity attribute is appended when the caller left
// it out so every returned item can still be re-keyed. DynamoDB rejects a path that
// appears twice, so repeated fields are emitted once. fields is not modified.
func BuildProjection(idAttribute string, fields []string) (ProjectionFragment, error) {
	if idAttribute == "" {
		return ProjectionFragment{}, errors.NewContractViolation("idAttribute", "identity attribute must not be empty")
	}

	all := make([]string, 0, len(fields)+1)
	all = append(all, fields...)
	if !slices.Contains(all, idAttribute) {
		all = append(all, idAttribute)
	}

	frag := ProjectionFragment{Names: make(map[string]string, len(all))}
	placeholders := make([]string, 0, len(all))
	for _, field := range all {
		if field == "" {
			return ProjectionFragment{}, errors.NewContractViolation("fields", "field name must not be empty")
		}
		name := NamePlaceholder(field)
		if _, seen := frag.Names[name]; seen {
			continue
		}
		frag.Names[name] = field
		placeholders = append(placeholders, name)
	}
	frag.Expression = strings.Join(placeholders, ",")
	return frag, nil
}
