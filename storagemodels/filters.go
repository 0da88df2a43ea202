/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Operator is a comparison operator understood by DynamoDB filter expressions.
type Operator string

const (
	OpEqual          Operator = "="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

// Valid reports whether o is one of the supported comparison operators.
func (o Operator) Valid() bool {
	switch o {
	case OpEqual, OpLessThan, OpLessOrEqual, OpGreaterThan, OpGreaterOrEqual:
		return true
	}
	return false
}

// ConditionFunction is a zero-argument DynamoDB predicate applied to an attribute path.
type ConditionFunction string

const (
	AttributeNotExists ConditionFunction = "attribute_not_exists"
	AttributeExists    ConditionFunction = "attribute_exists"
)

// Valid reports whether f is a supported condition function.
func (f ConditionFunction) Valid() bool {
	return f == AttributeNotExists || f == AttributeExists
}

// FilterExpression is one predicate on an attribute. The only implementations are
// Comparison and Function.
type FilterExpression interface {
	isFilterExpression()
}

// Comparison compares an attribute against a literal string or number.
type Comparison struct {
	Operator Operator
	Value    any
}

func (Comparison) isFilterExpression() {}

// Function applies a condition function to an attribute.
type Function struct {
	Name ConditionFunction
}

func (Function) isFilterExpression() {}

// Shorthand constructors

func Eq(v any) FilterExpression  { return Comparison{Operator: OpEqual, Value: v} }
func Lt(v any) FilterExpression  { return Comparison{Operator: OpLessThan, Value: v} }
func Lte(v any) FilterExpression { return Comparison{Operator: OpLessOrEqual, Value: v} }
func Gt(v any) FilterExpression  { return Comparison{Operator: OpGreaterThan, Value: v} }
func Gte(v any) FilterExpression { return Comparison{Operator: OpGreaterOrEqual, Value: v} }

// NotExists matches items that do not carry the attribute at all.
func NotExists() FilterExpression { return Function{Name: AttributeNotExists} }

// Exists matches items that carry the attribute.
func Exists() FilterExpression { return Function{Name: AttributeExists} }

// Filters maps attribute names to the predicates applied to them. Predicates of one
// attribute are OR-combined, attributes are AND-combined in insertion order.
type Filters struct {
	keys  []string
	preds map[string][]FilterExpression
}

// NewFilters creates an empty Filters
func NewFilters() *Filters {
	return &Filters{preds: make(map[string][]FilterExpression)}
}

// Add appends predicates to attr. A new attribute is placed after all existing ones;
// an existing attribute keeps its position.
func (f *Filters) Add(attr string, exprs ...FilterExpression) *Filters {
	if f.preds == nil {
		f.preds = make(map[string][]FilterExpression)
	}
	if _, ok := f.preds[attr]; !ok {
		f.keys = append(f.keys, attr)
	}
	f.preds[attr] = append(f.preds[attr], exprs...)
	return f
}

// Keys returns the attribute names in insertion order.
func (f *Filters) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Get returns the predicates registered for attr.
func (f *Filters) Get(attr string) []FilterExpression {
	if f == nil {
		return nil
	}
	return f.preds[attr]
}

// Len returns the number of attributes.
func (f *Filters) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// filterJSON is the wire shape of one predicate:
// {"operator": ">", "value": 18} or {"conditionFunction": "attribute_not_exists"}.
type filterJSON struct {
	Operator          *Operator          `json:"operator,omitempty"`
	Value             any                `json:"value,omitempty"`
	ConditionFunction *ConditionFunction `json:"conditionFunction,omitempty"`
}

func (p filterJSON) toExpression(attr string) (FilterExpression, error) {
	switch {
	case p.Operator != nil && p.ConditionFunction != nil:
		return nil, fmt.Errorf("filter on %q sets both operator and conditionFunction", attr)
	case p.Operator != nil:
		v := p.Value
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				v = i
			} else if fl, err := n.Float64(); err == nil {
				v = fl
			} else {
				return nil, fmt.Errorf("filter on %q: bad number %q", attr, n)
			}
		}
		return Comparison{Operator: *p.Operator, Value: v}, nil
	case p.ConditionFunction != nil:
		return Function{Name: *p.ConditionFunction}, nil
	}
	return nil, fmt.Errorf("filter on %q needs an operator or a conditionFunction", attr)
}

// UnmarshalJSON decodes a JSON object keeping the order of its keys.
func (f *Filters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("filters must be a JSON object")
	}

	*f = Filters{preds: make(map[string][]FilterExpression)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		attr := tok.(string)

		var raw []filterJSON
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("filter on %q: %w", attr, err)
		}
		exprs := make([]FilterExpression, 0, len(raw))
		for _, p := range raw {
			e, err := p.toExpression(attr)
			if err != nil {
				return err
			}
			exprs = append(exprs, e)
		}
		// keep empty sequences visible so the compiler can reject them
		if _, ok := f.preds[attr]; !ok {
			f.keys = append(f.keys, attr)
		}
		f.preds[attr] = append(f.preds[attr], exprs...)
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the filters in insertion order.
func (f Filters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(attr)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		raw := make([]filterJSON, 0, len(f.preds[attr]))
		for _, e := range f.preds[attr] {
			switch e := e.(type) {
			case Comparison:
				op := e.Operator
				raw = append(raw, filterJSON{Operator: &op, Value: e.Value})
			case Function:
				fn := e.Name
				raw = append(raw, filterJSON{ConditionFunction: &fn})
			}
		}
		v, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
