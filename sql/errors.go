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

package sql

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrInvalidType is thrown when there is an unexpected type at some part of
	// the execution tree.
	ErrInvalidType = errors.NewKind("invalid type: %s")

	// ErrTableNotFound is returned when the table is not available from the
	// current scope.
	ErrTableNotFound = errors.NewKind("table not found: %s")

	// ErrTableAlreadyExists is thrown when someone tries to create a
	// table with a name of an existing one
	ErrTableAlreadyExists = errors.NewKind("table with name %s already exists")

	// ErrDatabaseNotFound is thrown when a database is not found
	ErrDatabaseNotFound = errors.NewKind("database not found: %s")

	// ErrColumnNotFound is returned when the column does not exist in any
	// row set reachable from the evaluated expression.
	ErrColumnNotFound = errors.NewKind("column %q could not be found")

	// ErrAmbiguousReference is returned when a name resolves to more than one
	// column or function in a scope.
	ErrAmbiguousReference = errors.NewKind("ambiguous reference %q")

	// ErrUnresolvedReference is returned when a name cannot be resolved in a
	// scope nor in any of its parents.
	ErrUnresolvedReference = errors.NewKind("unable to resolve reference %q")

	// ErrAggregateInGroupBy is returned when a GROUP BY key contains an
	// aggregate function.
	ErrAggregateInGroupBy = errors.NewKind("aggregate expression %s is not allowed in GROUP BY clause")

	// ErrNestedAggregate is returned when an aggregate function is used as an
	// argument of another aggregate.
	ErrNestedAggregate = errors.NewKind("aggregate function %s can not be nested inside another aggregate")

	// ErrAggregateNotAllowed is returned when an aggregate appears in a part of
	// the query that is evaluated before grouping.
	ErrAggregateNotAllowed = errors.NewKind("aggregate expression %s is not allowed in %s")

	// ErrUnresolvedOrderBy is returned when an ORDER BY key cannot be resolved.
	ErrUnresolvedOrderBy = errors.NewKind("can not resolve ORDER BY reference %s")

	// ErrUnexpectedRowLength is thrown when the obtained row has more columns than the schema
	ErrUnexpectedRowLength = errors.NewKind("expected %d values, got %d")

	// ErrInvalidChildrenNumber is returned when the WithChildren method of an
	// expression is called with an invalid number of arguments.
	ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")

	// ErrNoOuterRow is returned when a correlated variable is evaluated
	// outside of the query block it refers to.
	ErrNoOuterRow = errors.NewKind("no outer row at correlation level %d for %s")

	// ErrIncomparable is returned when two values cannot be compared.
	ErrIncomparable = errors.NewKind("can not compare %v (%T) with %v (%T)")
)
