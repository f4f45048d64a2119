// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
// Every tenant-owned read or write is scoped by the owning user id.
package repository

import "errors"

var (
	// ErrReferenced is returned when a delete or insert violates a foreign key.
	ErrReferenced = errors.New("row is referenced by or references a missing row")
	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("duplicate row")
)

// PageQuery holds limit/offset pagination parameters. A non-positive Limit means no limit.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
