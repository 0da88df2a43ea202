/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expression

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/entityquery/errors"
	"github.com/suparena/entityquery/storagemodels"
)

// FilterFragment is a compiled filter: the expression string plus the placeholder
// maps it references.
type FilterFragment struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// NamePlaceholder returns the expression attribute name used for attr.
func NamePlaceholder(attr string) string {
	return "#" + attr
}

// ValuePlaceholder returns the expression attribute value used for the i-th
// predicate on attr.
func ValuePlaceholder(attr string, i int) string {
	return fmt.Sprintf(":%s%d", attr, i)
}

// BuildFilter compiles filters into a DynamoDB condition expression.
//
// Each attribute becomes a parenthesized OR-group of its predicates, e.g.
// "(#age > :age0 OR #age < :age1 )". Groups are joined with " AND " and, when
// there is more than one attribute, wrapped in one extra pair of parentheses so the
// result composes with sibling clauses. A single group is left unwrapped: DynamoDB
// rejects the doubly nested form once it is AND-combined with a negated group.
func BuildFilter(filters *storagemodels.Filters) (FilterFragment, error) {
	frag := FilterFragment{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}

	keys := filters.Keys()
	groups := make([]string, 0, len(keys))
	for _, attr := range keys {
		if attr == "" {
			return FilterFragment{}, errors.NewContractViolation("filters", "attribute name must not be empty")
		}
		preds := filters.Get(attr)
		if len(preds) == 0 {
			return FilterFragment{}, errors.NewContractViolation(attr, "empty predicate sequence")
		}

		name := NamePlaceholder(attr)
		frag.Names[name] = attr

		var group strings.Builder
		group.WriteString("(")
		for i, pred := range preds {
			if i > 0 {
				group.WriteString("OR ")
			}
			switch p := pred.(type) {
			case storagemodels.Comparison:
				if !p.Operator.Valid() {
					return FilterFragment{}, errors.NewContractViolation(attr, fmt.Sprintf("unsupported operator %q", p.Operator))
				}
				av, err := marshalValue(p.Value)
				if err != nil {
					return FilterFragment{}, errors.NewContractViolation(attr, err.Error())
				}
				placeholder := ValuePlaceholder(attr, i)
				frag.Values[placeholder] = av
				fmt.Fprintf(&group, "%s %s %s ", name, p.Operator, placeholder)
			case storagemodels.Function:
				if !p.Name.Valid() {
					return FilterFragment{}, errors.NewContractViolation(attr, fmt.Sprintf("unsupported condition function %q", p.Name))
				}
				fmt.Fprintf(&group, "%s(%s) ", p.Name, name)
			default:
				return FilterFragment{}, errors.NewContractViolation(attr, fmt.Sprintf("unsupported predicate %T", pred))
			}
		}
		group.WriteString(")")
		groups = append(groups, group.String())
	}

	frag.Expression = strings.Join(groups, " AND ")
	if len(groups) > 1 {
		frag.Expression = "(" + frag.Expression + " )"
	}
	return frag, nil
}

// marshalValue accepts strings and numbers only; those are the literal kinds the
// filter grammar compares against.
func marshalValue(v any) (types.AttributeValue, error) {
	if v == nil {
		return nil, fmt.Errorf("comparison value must not be nil")
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return nil, fmt.Errorf("comparison value must be a string or a number, got %T", v)
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comparison value: %w", err)
	}
	return av, nil
}
