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

import "fmt"

// Expression is a scalar expression evaluated against a row.
type Expression interface {
	fmt.Stringer
	// Eval evaluates the expression against the given row.
	Eval(ctx *Context, row RowContext) (interface{}, error)
	// Children returns the children expressions of this expression.
	Children() []Expression
	// WithChildren returns a copy of the expression with children replaced.
	// It will return an error if the number of children is different than
	// the current number of children.
	WithChildren(children ...Expression) (Expression, error)
}

// RowContext resolves the value of a column for the row an expression is
// being evaluated against.
type RowContext interface {
	Value(v Variable) (interface{}, error)
}

// GroupContext is the row context of a group of rows. Plain column lookups
// resolve against the first row of the group.
type GroupContext interface {
	RowContext
	// Group returns a context for every row in the group.
	Group() []RowContext
}

// Node is a node of an evaluation plan.
type Node interface {
	fmt.Stringer
	// Children nodes.
	Children() []Node
	// Evaluate computes the table this node stands for.
	Evaluate(ctx *Context) (*RowSet, error)
	// DiscoverTables appends to the given list the physical tables touched
	// by this node and its children.
	DiscoverTables(tables []TableName) []TableName
	// DiscoverCorrelated appends to the given list every correlated
	// reference at the given nesting level found in this node, its children
	// and the sub-queries of its expressions.
	DiscoverCorrelated(level int, list []Correlated) []Correlated
	// Clone returns a deep copy of the node.
	Clone() Node
}

// Correlated is a reference to a column of an enclosing query block.
type Correlated interface {
	Expression
	// Level is the number of query blocks between the reference and the
	// block that owns the column.
	Level() int
	// Name of the referenced column.
	Name() Variable
}

// Statement is a parsed query block that has not been planned yet.
type Statement interface {
	fmt.Stringer
	// CloneStatement returns a deep copy of the statement.
	CloneStatement() Statement
}

// Column is the definition of a table column.
type Column struct {
	// Name is the name of the column.
	Name string
	// Type is the data type of the column.
	Type Type
	// Nullable is true if the column can contain NULL values.
	Nullable bool
	// Source is the name of the table this column came from.
	Source string
}

// Schema is the definition of a table.
type Schema []*Column

// IndexOf returns the index of the given column in the schema or -1 if
// it's not present.
func (s Schema) IndexOf(column string) int {
	for i, col := range s {
		if col.Name == column {
			return i
		}
	}
	return -1
}

// Table represents the backend of a SQL table.
type Table interface {
	// Name returns the name.
	Name() string
	// Schema will return the schema of the table.
	Schema() Schema
	// Rows returns the current contents of the table.
	Rows(ctx *Context) ([]Row, error)
}

// Catalog gives access to the physical tables a query can read.
type Catalog interface {
	// CurrentSchema is the schema unqualified table names refer to.
	CurrentSchema() string
	// Table returns the table with the given name.
	Table(ctx *Context, schema, name string) (Table, error)
}
