// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plan

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrNoCatalog is returned when a table is fetched from a context that
	// has no catalog.
	ErrNoCatalog = errors.NewKind("no catalog to read table %s from")

	// ErrInvalidRangeExpression is returned when the expression of a Range
	// node is not made of comparisons of its variable against constants.
	ErrInvalidRangeExpression = errors.NewKind("invalid range expression over %s: %s")

	// ErrMarkerNotFound is returned when an outer join is evaluated and the
	// marked side of the join was never evaluated.
	ErrMarkerNotFound = errors.NewKind("marked result %q not found")

	// ErrColumnMismatch is returned when the two sides of a union do not
	// contain the same columns.
	ErrColumnMismatch = errors.NewKind("column %s of the left side is missing on the right side")

	// ErrCompositeColumns is returned when the two sides of a composite
	// have a different number of columns.
	ErrCompositeColumns = errors.NewKind("%s requires the same number of columns on both sides, got %d and %d")
)
