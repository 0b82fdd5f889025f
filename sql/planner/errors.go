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

package planner

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrDuplicateTableSource is returned when two items of the same FROM
	// clause are given the same name.
	ErrDuplicateTableSource = errors.NewKind("table source %s appears more than once in the FROM clause")

	// ErrMalformedOuterJoin is returned when an outer join has no ON
	// condition or when two sources with different outer join neighbours
	// can not be merged.
	ErrMalformedOuterJoin = errors.NewKind("malformed outer join between %s and %s")

	// ErrNoTableSource is returned when no source of the query block
	// provides a column.
	ErrNoTableSource = errors.NewKind("no table source provides column %s")

	// ErrCorrelatedSubquery is returned when a sub-query planned as
	// independent of the enclosing block references its columns.
	ErrCorrelatedSubquery = errors.NewKind("sub-query of %s is correlated")

	// ErrUnsupportedSubquery is returned when a sub-query is not a SELECT.
	ErrUnsupportedSubquery = errors.NewKind("unsupported sub-query statement: %v")
)
