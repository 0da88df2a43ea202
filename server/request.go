/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/suparena/entityquery/storagemodels"
)

// parseReadOptions reads the options of a list request:
//
//	filters=<JSON object>  negationFilters=<JSON object>  fields=a,b  limit=25
func parseReadOptions(q url.Values) (storagemodels.ReadOptions, error) {
	var opts storagemodels.ReadOptions

	if raw := q.Get("filters"); raw != "" {
		f, err := decodeFilters(raw)
		if err != nil {
			return opts, fmt.Errorf("bad filters: %w", err)
		}
		opts.Filters = f
	}
	if raw := q.Get("negationFilters"); raw != "" {
		f, err := decodeFilters(raw)
		if err != nil {
			return opts, fmt.Errorf("bad negationFilters: %w", err)
		}
		opts.NegationFilters = f
	}
	if q.Has("fields") {
		opts.Fields = []string{}
		for _, field := range strings.Split(q.Get("fields"), ",") {
			if field = strings.TrimSpace(field); field != "" {
				opts.Fields = append(opts.Fields, field)
			}
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n <= 0 {
			return opts, fmt.Errorf("bad limit %q", raw)
		}
		limit := int32(n)
		opts.Limit = &limit
	}
	return opts, nil
}

func decodeFilters(raw string) (*storagemodels.Filters, error) {
	f := storagemodels.NewFilters()
	if err := json.UnmarshalFromString(raw, f); err != nil {
		return nil, err
	}
	return f, nil
}

// parseKey reads the partition key value of an index request. keyType=number
// sends the key as a DynamoDB number.
func parseKey(q url.Values) (any, error) {
	raw := q.Get("key")
	if raw == "" {
		return nil, fmt.Errorf("key is required")
	}
	switch q.Get("keyType") {
	case "", "string":
		return raw, nil
	case "number":
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad numeric key %q", raw)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported keyType %q", q.Get("keyType"))
	}
}
