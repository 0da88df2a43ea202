/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expression

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Evaluate reports whether item satisfies the parsed condition, resolving
// placeholders through names and values. Comparisons between different attribute
// types are false, as in DynamoDB.
func Evaluate(n Node, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	switch n := n.(type) {
	case *BinaryNode:
		left, err := Evaluate(n.Left, item, names, values)
		if err != nil {
			return false, err
		}
		if n.Operator == "AND" && !left {
			return false, nil
		}
		if n.Operator == "OR" && left {
			return true, nil
		}
		return Evaluate(n.Right, item, names, values)

	case *NotNode:
		v, err := Evaluate(n.Operand, item, names, values)
		return !v, err

	case *ComparisonNode:
		attr, err := resolveName(n.Path, names)
		if err != nil {
			return false, err
		}
		rhs, err := resolveValue(n.Value, values)
		if err != nil {
			return false, err
		}
		lhs, ok := item[attr]
		if !ok {
			return false, nil
		}
		return compare(lhs, rhs, n.Operator)

	case *BetweenNode:
		attr, err := resolveName(n.Path, names)
		if err != nil {
			return false, err
		}
		lower, err := resolveValue(n.Lower, values)
		if err != nil {
			return false, err
		}
		upper, err := resolveValue(n.Upper, values)
		if err != nil {
			return false, err
		}
		v, ok := item[attr]
		if !ok {
			return false, nil
		}
		above, err := compare(v, lower, ">=")
		if err != nil || !above {
			return false, err
		}
		return compare(v, upper, "<=")

	case *FunctionNode:
		attr, err := resolveName(n.Path, names)
		if err != nil {
			return false, err
		}
		v, present := item[attr]
		switch n.Function {
		case "attribute_exists":
			return present, nil
		case "attribute_not_exists":
			return !present, nil
		case "begins_with":
			arg, err := resolveValue(n.Arg, values)
			if err != nil {
				return false, err
			}
			s, ok1 := v.(*types.AttributeValueMemberS)
			prefix, ok2 := arg.(*types.AttributeValueMemberS)
			return present && ok1 && ok2 && strings.HasPrefix(s.Value, prefix.Value), nil
		}
		return false, fmt.Errorf("unsupported function %q", n.Function)
	}
	return false, fmt.Errorf("unsupported node %T", n)
}

// Matches parses expr and evaluates it against item. An empty expression matches
// every item.
func Matches(expr string, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	n, err := Parse(expr)
	if err != nil {
		return false, err
	}
	return Evaluate(n, item, names, values)
}

// Project keeps the top-level attributes listed in a projection expression. An
// empty projection returns the item unchanged.
func Project(item map[string]types.AttributeValue, projection string, names map[string]string) (map[string]types.AttributeValue, error) {
	if strings.TrimSpace(projection) == "" {
		return item, nil
	}
	out := make(map[string]types.AttributeValue)
	for _, part := range strings.Split(projection, ",") {
		attr, err := resolveName(strings.TrimSpace(part), names)
		if err != nil {
			return nil, err
		}
		if v, ok := item[attr]; ok {
			out[attr] = v
		}
	}
	return out, nil
}

func resolveName(path string, names map[string]string) (string, error) {
	if !strings.HasPrefix(path, "#") {
		return path, nil
	}
	attr, ok := names[path]
	if !ok {
		return "", fmt.Errorf("undefined name placeholder %s", path)
	}
	return attr, nil
}

func resolveValue(placeholder string, values map[string]types.AttributeValue) (types.AttributeValue, error) {
	v, ok := values[placeholder]
	if !ok {
		return nil, fmt.Errorf("undefined value placeholder %s", placeholder)
	}
	return v, nil
}

func compare(lhs, rhs types.AttributeValue, op string) (bool, error) {
	switch l := lhs.(type) {
	case *types.AttributeValueMemberS:
		r, ok := rhs.(*types.AttributeValueMemberS)
		if !ok {
			return false, nil
		}
		return ordered(strings.Compare(l.Value, r.Value), op)

	case *types.AttributeValueMemberN:
		r, ok := rhs.(*types.AttributeValueMemberN)
		if !ok {
			return false, nil
		}
		a, err := strconv.ParseFloat(l.Value, 64)
		if err != nil {
			return false, fmt.Errorf("bad number %q: %w", l.Value, err)
		}
		b, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			return false, fmt.Errorf("bad number %q: %w", r.Value, err)
		}
		c := 0
		if a < b {
			c = -1
		} else if a > b {
			c = 1
		}
		return ordered(c, op)
	}

	switch op {
	case "=":
		return reflect.DeepEqual(lhs, rhs), nil
	case "<>":
		return !reflect.DeepEqual(lhs, rhs), nil
	}
	return false, nil
}

func ordered(c int, op string) (bool, error) {
	switch op {
	case "=":
		return c == 0, nil
	case "<>":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, fmt.Errorf("unsupported operator %q", op)
}
