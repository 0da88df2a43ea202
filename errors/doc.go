/*
Package errors provides semantic error types for the EntityQuery library.

Two failure classes exist, each checkable with the standard errors.Is() function
or the provided helper functions:

	var (
	    ErrStore             = errors.New("store request failed")
	    ErrContractViolation = errors.New("contract violation")
	)

StoreError wraps whatever the DynamoDB client returned for a single-item or page
request. ContractViolationError is returned before any network call when the
caller passes input the compiler cannot honour (an empty predicate list, a query
without a key condition, conflicting placeholders).

Usage:

	users, err := repo.ReadAllEntities(ctx, opts)
	if err != nil {
	    if errors.IsContractViolation(err) {
	        return nil, fmt.Errorf("bad filter: %w", err)
	    }
	    return nil, err
	}

StoreError implements Unwrap, so the underlying SDK error stays reachable with
errors.As.
*/
package errors
