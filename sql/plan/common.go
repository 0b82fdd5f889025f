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

import (
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

// UnaryNode is a node that has only one child.
type UnaryNode struct {
	Child sql.Node
}

// Children implements the Node interface.
func (n *UnaryNode) Children() []sql.Node {
	return []sql.Node{n.Child}
}

// DiscoverTables implements the Node interface.
func (n *UnaryNode) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return n.Child.DiscoverTables(tables)
}

// DiscoverCorrelated implements the Node interface.
func (n *UnaryNode) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return n.Child.DiscoverCorrelated(level, list)
}

// BinaryNode is a node with two children.
type BinaryNode struct {
	Left  sql.Node
	Right sql.Node
}

// Children implements the Node interface.
func (n *BinaryNode) Children() []sql.Node {
	return []sql.Node{n.Left, n.Right}
}

// DiscoverTables implements the Node interface.
func (n *BinaryNode) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return n.Right.DiscoverTables(n.Left.DiscoverTables(tables))
}

// DiscoverCorrelated implements the Node interface.
func (n *BinaryNode) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return n.Right.DiscoverCorrelated(level, n.Left.DiscoverCorrelated(level, list))
}

// DiscoverTables returns every physical table the plan reads, without
// duplicates, in order of appearance.
func DiscoverTables(node sql.Node) []sql.TableName {
	var result []sql.TableName
	seen := make(map[sql.TableName]struct{})
	for _, t := range node.DiscoverTables(nil) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			result = append(result, t)
		}
	}
	return result
}

// DiscoverCorrelated returns the correlated references of the plan that
// point to the query block the given number of levels above it.
func DiscoverCorrelated(node sql.Node, level int) []sql.Correlated {
	return node.DiscoverCorrelated(level, nil)
}

func discoverExprTables(tables []sql.TableName, exprs ...sql.Expression) []sql.TableName {
	for _, e := range exprs {
		tables = expression.DiscoverTables(e, tables)
	}
	return tables
}

func discoverExprCorrelated(level int, list []sql.Correlated, exprs ...sql.Expression) []sql.Correlated {
	for _, e := range exprs {
		list = expression.DiscoverCorrelated(e, level, list)
	}
	return list
}

// filterRows keeps the rows of rs for which keep returns true.
func filterRows(rs *sql.RowSet, keep func(i int) (bool, error)) (*sql.RowSet, error) {
	var positions []int
	for i := range rs.Rows {
		ok, err := keep(i)
		if err != nil {
			return nil, err
		}
		if ok {
			positions = append(positions, i)
		}
	}
	return rs.Filter(positions), nil
}

// filterByExpression keeps the rows of rs for which e evaluates to true.
func filterByExpression(ctx *sql.Context, rs *sql.RowSet, e sql.Expression) (*sql.RowSet, error) {
	return filterRows(rs, func(i int) (bool, error) {
		v, err := e.Eval(ctx, rs.Row(i))
		if err != nil {
			return false, err
		}
		return v == true, nil
	})
}

// evalConstant evaluates an expression that does not depend on the rows
// of the current query block.
func evalConstant(ctx *sql.Context, e sql.Expression) (interface{}, error) {
	return e.Eval(ctx, sql.EmptyRowContext)
}

// joinedRowSet returns an empty set with the columns of left followed by
// the columns of right.
func joinedRowSet(left, right *sql.RowSet) *sql.RowSet {
	columns := make([]sql.Variable, 0, len(left.Columns)+len(right.Columns))
	columns = append(columns, left.Columns...)
	columns = append(columns, right.Columns...)
	return sql.NewRowSet(columns...)
}

func appendJoined(rs, left, right *sql.RowSet, l, r int) {
	rs.Append(joinRows(left, right, l, r), joinOrigins(left, right, l, r))
}

func joinRows(left, right *sql.RowSet, l, r int) sql.Row {
	row := make(sql.Row, 0, len(left.Columns)+len(right.Columns))
	row = append(row, left.Rows[l]...)
	return append(row, right.Rows[r]...)
}

func joinOrigins(left, right *sql.RowSet, l, r int) sql.Origin {
	origin := make(sql.Origin, 0, len(left.Origins[l])+len(right.Origins[r]))
	origin = append(origin, left.Origins[l]...)
	return append(origin, right.Origins[r]...)
}

func cloneExpressions(exprs []sql.Expression) []sql.Expression {
	if exprs == nil {
		return nil
	}
	result := make([]sql.Expression, len(exprs))
	for i, e := range exprs {
		result[i] = expression.Clone(e)
	}
	return result
}
