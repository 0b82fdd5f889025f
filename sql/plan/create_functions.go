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

import "gopkg.in/src-d/go-queryplan.v0/sql"

// CreateFunctions appends to each row of its child the values of
// Functions, in columns named after Names.
type CreateFunctions struct {
	UnaryNode
	Functions []sql.Expression
	Names     []sql.Variable
}

// NewCreateFunctions creates a new CreateFunctions node.
func NewCreateFunctions(functions []sql.Expression, names []sql.Variable, child sql.Node) *CreateFunctions {
	return &CreateFunctions{UnaryNode{child}, functions, names}
}

// Evaluate implements the Node interface.
func (c *CreateFunctions) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.CreateFunctions")
	defer span.Finish()

	rs, err := c.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]sql.Variable, 0, len(rs.Columns)+len(c.Names))
	columns = append(columns, rs.Columns...)
	columns = append(columns, c.Names...)
	result := sql.NewRowSet(columns...)

	for i, r := range rs.Rows {
		row := make(sql.Row, 0, len(columns))
		row = append(row, r...)
		for _, f := range c.Functions {
			v, err := f.Eval(ctx, rs.Row(i))
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		result.Append(row, rs.Origins[i])
	}

	return result, nil
}

// DiscoverTables implements the Node interface.
func (c *CreateFunctions) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return discoverExprTables(c.Child.DiscoverTables(tables), c.Functions...)
}

// DiscoverCorrelated implements the Node interface.
func (c *CreateFunctions) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return discoverExprCorrelated(level, c.Child.DiscoverCorrelated(level, list), c.Functions...)
}

// Clone implements the Node interface.
func (c *CreateFunctions) Clone() sql.Node {
	return NewCreateFunctions(
		cloneExpressions(c.Functions),
		append([]sql.Variable(nil), c.Names...),
		c.Child.Clone(),
	)
}

func (c *CreateFunctions) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("CreateFunctions(%s)", functionList(c.Functions, c.Names))
	_ = p.WriteChildren(c.Child.String())
	return p.String()
}
