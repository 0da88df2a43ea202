/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expression

import (
	"fmt"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/entityquery/errors"
	"github.com/suparena/entityquery/storagemodels"
)

// Assemble builds the request descriptor of a scan over table.
//
// Filters are emitted as-is. Negation filters are prefixed with "NOT " and, when a
// positive filter exists, appended as "<filters> AND (NOT <negation>)". A non-nil
// opts.Fields adds a projection that always includes idAttribute. Empty expression
// strings and maps are left nil.
func Assemble(table, idAttribute string, opts storagemodels.ReadOptions) (storagemodels.RequestDescriptor, error) {
	if table == "" {
		return storagemodels.RequestDescriptor{}, errors.NewContractViolation("table", "table name must not be empty")
	}

	names := make(map[string]string)
	values := make(map[string]types.AttributeValue)
	filterExpr := ""

	if opts.Filters.Len() > 0 {
		frag, err := BuildFilter(opts.Filters)
		if err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
		if err := mergeNames(names, frag.Names); err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
		if err := mergeValues(values, frag.Values); err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
		filterExpr += frag.Expression
	}

	if opts.NegationFilters.Len() > 0 {
		frag, err := BuildFilter(opts.NegationFilters)
		if err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
		if err := mergeNames(names, frag.Names); err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
		if err := mergeValues(values, frag.Values); err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
		negated := "NOT " + frag.Expression
		if filterExpr != "" {
			filterExpr = filterExpr + " AND (" + negated + ")"
		} else {
			filterExpr = negated
		}
	}

	desc := storagemodels.RequestDescriptor{
		TableName: table,
		Limit:     opts.Limit,
	}

	if opts.Fields != nil {
		frag, err := BuildProjection(idAttribute, opts.Fields)
		if err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
		if err := mergeNames(names, frag.Names); err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
		desc.ProjectionExpression = aws.String(frag.Expression)
	}

	if filterExpr != "" {
		desc.FilterExpression = aws.String(filterExpr)
	}
	if len(names) > 0 {
		desc.ExpressionAttributeNames = names
	}
	if len(values) > 0 {
		desc.ExpressionAttributeValues = values
	}
	return desc, nil
}

// AssembleQuery builds the request descriptor of a query on query.IndexName. The key
// condition and its placeholders are merged into the scan descriptor.
func AssembleQuery(table, idAttribute string, query storagemodels.QueryParameters, opts storagemodels.ReadOptions) (storagemodels.RequestDescriptor, error) {
	if query.IndexName == "" {
		return storagemodels.RequestDescriptor{}, errors.NewContractViolation("indexName", "query requires an index name")
	}
	if query.KeyConditionExpression == "" {
		return storagemodels.RequestDescriptor{}, errors.NewContractViolation("keyConditionExpression", "query requires a key condition expression")
	}

	desc, err := Assemble(table, idAttribute, opts)
	if err != nil {
		return storagemodels.RequestDescriptor{}, err
	}

	if len(query.ExpressionAttributeNames) > 0 {
		if desc.ExpressionAttributeNames == nil {
			desc.ExpressionAttributeNames = make(map[string]string, len(query.ExpressionAttributeNames))
		}
		if err := mergeNames(desc.ExpressionAttributeNames, query.ExpressionAttributeNames); err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
	}
	if len(query.ExpressionAttributeValues) > 0 {
		if desc.ExpressionAttributeValues == nil {
			desc.ExpressionAttributeValues = make(map[string]types.AttributeValue, len(query.ExpressionAttributeValues))
		}
		if err := mergeValues(desc.ExpressionAttributeValues, query.ExpressionAttributeValues); err != nil {
			return storagemodels.RequestDescriptor{}, err
		}
	}

	desc.IndexName = aws.String(query.IndexName)
	desc.KeyConditionExpression = aws.String(query.KeyConditionExpression)
	desc.ScanIndexForward = query.ScanIndexForward
	return desc, nil
}

// mergeNames copies src into dst. A placeholder already present must map to the
// same attribute name.
func mergeNames(dst, src map[string]string) error {
	for k, v := range src {
		if existing, ok := dst[k]; ok && existing != v {
			return errors.NewContractViolation(k, fmt.Sprintf("name placeholder maps to both %q and %q", existing, v))
		}
		dst[k] = v
	}
	return nil
}

// mergeValues copies src into dst. A placeholder already present must carry an
// equal value; this happens when the same attribute appears in filters and
// negation filters.
func mergeValues(dst, src map[string]types.AttributeValue) error {
	for k, v := range src {
		if existing, ok := dst[k]; ok && !reflect.DeepEqual(existing, v) {
			return errors.NewContractViolation(k, "value placeholder is bound to two different values")
		}
		dst[k] = v
	}
	return nil
}
