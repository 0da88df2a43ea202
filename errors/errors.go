/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrStore is matched by every failure surfaced by the key-value store
	ErrStore = errors.New("store request failed")

	// ErrContractViolation is matched when a caller breaks a precondition
	ErrContractViolation = errors.New("contract violation")
)

// StoreError represents a failure of a single-item or page request against the store
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s on table %q failed: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// ContractViolationError represents invalid input detected before any network call
type ContractViolationError struct {
	Field   string
	Message string
}

func (e *ContractViolationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("contract violation for %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("contract violation: %s", e.Message)
}

func (e *ContractViolationError) Is(target error) bool {
	return target == ErrContractViolation
}

// Helper functions for creating errors

// NewStoreError wraps err as a StoreError. A nil err stays nil.
func NewStoreError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Table: table, Err: err}
}

// NewContractViolation creates a new ContractViolationError
func NewContractViolation(field, message string) error {
	return &ContractViolationError{Field: field, Message: message}
}

// IsStoreError checks if an error came from the store
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStore)
}

// IsContractViolation checks if an error is a caller precondition failure
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
