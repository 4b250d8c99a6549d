// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package service implements the domain operations behind the REST API:
// pod and cart CRUD, the ownership guard, the pod/cart relationship
// maintainer, and rating aggregation.
package service

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when a principal mutates a resource it does
// not own.
var ErrForbidden = errors.New("principal does not own this resource")

// ErrPodNotEmpty is returned when deleting a pod that still has food carts
// attached. Carts must be deleted or moved first.
var ErrPodNotEmpty = errors.New("cart pod still has food carts attached")

// InvalidInputError reports a semantic validation failure that struct tags
// cannot express, such as a dangling pod reference or an empty image list.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func invalidf(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
