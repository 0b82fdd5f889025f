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
	"sort"
	"strings"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// GroupSource is the source name given to the rows built by Group.
const GroupSource = "#GROUP"

// Group partitions the rows of its child by the values of Keys and
// computes Functions once per group. Each output row holds the columns of
// the first row of its group followed by the function columns, named
// after Names. With no keys the whole table is one group, which exists
// even when the table is empty.
type Group struct {
	UnaryNode
	Keys      []sql.Variable
	Functions []sql.Expression
	Names     []sql.Variable
}

// NewGroup creates a new Group node.
func NewGroup(keys []sql.Variable, functions []sql.Expression, names []sql.Variable, child sql.Node) *Group {
	return &Group{UnaryNode{child}, keys, functions, names}
}

type groupRows struct {
	key  []interface{}
	rows []int
}

type groupContext struct {
	set  *sql.RowSet
	rows []sql.RowContext
}

func (g *groupContext) Value(v sql.Variable) (interface{}, error) {
	if len(g.rows) > 0 {
		return g.rows[0].Value(v)
	}
	if g.set.IndexOf(v) < 0 {
		return nil, sql.ErrColumnNotFound.New(v.String())
	}
	return nil, nil
}

func (g *groupContext) Group() []sql.RowContext { return g.rows }

// Evaluate implements the Node interface.
func (g *Group) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.Group")
	defer span.Finish()

	rs, err := g.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	positions := make([]int, len(g.Keys))
	for i, k := range g.Keys {
		positions[i] = rs.IndexOf(k)
		if positions[i] < 0 {
			return nil, sql.ErrColumnNotFound.New(k.String())
		}
	}

	groups, err := g.partition(rs, positions)
	if err != nil {
		return nil, err
	}

	columns := make([]sql.Variable, 0, len(rs.Columns)+len(g.Names))
	columns = append(columns, rs.Columns...)
	columns = append(columns, g.Names...)
	result := sql.NewRowSet(columns...)

	for n, group := range groups {
		gc := &groupContext{set: rs}
		for _, i := range group.rows {
			gc.rows = append(gc.rows, rs.Row(i))
		}

		row := make(sql.Row, 0, len(columns))
		if len(group.rows) > 0 {
			row = append(row, rs.Rows[group.rows[0]]...)
		} else {
			row = append(row, make(sql.Row, len(rs.Columns))...)
		}

		for _, f := range g.Functions {
			v, err := f.Eval(ctx, gc)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}

		result.Append(row, sql.Origin{{Source: GroupSource, Index: n}})
	}

	return result, nil
}

func (g *Group) partition(rs *sql.RowSet, positions []int) ([]*groupRows, error) {
	if len(positions) == 0 {
		group := &groupRows{}
		for i := range rs.Rows {
			group.rows = append(group.rows, i)
		}
		return []*groupRows{group}, nil
	}

	var groups []*groupRows
	byHash := make(map[uint64]*groupRows)
	for i, row := range rs.Rows {
		key := make([]interface{}, len(positions))
		for k, p := range positions {
			key[k] = row[p]
		}

		h, err := sql.HashRow(key...)
		if err != nil {
			return nil, err
		}

		group, ok := byHash[h]
		if !ok {
			group = &groupRows{key: key}
			byHash[h] = group
			groups = append(groups, group)
		}
		group.rows = append(group.rows, i)
	}

	var err error
	sort.SliceStable(groups, func(i, j int) bool {
		cmp, e := compareKeys(groups[i].key, groups[j].key)
		if e != nil {
			err = e
		}
		return cmp < 0
	})
	return groups, err
}

// compareKeys orders lists of values column by column, NULL first.
func compareKeys(a, b []interface{}) (int, error) {
	for i := range a {
		switch {
		case a[i] == nil && b[i] == nil:
			continue
		case a[i] == nil:
			return -1, nil
		case b[i] == nil:
			return 1, nil
		}

		cmp, err := sql.Compare(a[i], b[i])
		if err != nil || cmp != 0 {
			return cmp, err
		}
	}
	return 0, nil
}

// DiscoverTables implements the Node interface.
func (g *Group) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return discoverExprTables(g.Child.DiscoverTables(tables), g.Functions...)
}

// DiscoverCorrelated implements the Node interface.
func (g *Group) DiscoverCorrelated(level int, list []sql.Correlated) []sql.Correlated {
	return discoverExprCorrelated(level, g.Child.DiscoverCorrelated(level, list), g.Functions...)
}

// Clone implements the Node interface.
func (g *Group) Clone() sql.Node {
	return NewGroup(
		append([]sql.Variable(nil), g.Keys...),
		cloneExpressions(g.Functions),
		append([]sql.Variable(nil), g.Names...),
		g.Child.Clone(),
	)
}

func (g *Group) String() string {
	p := sql.NewTreePrinter()
	keys := make([]string, len(g.Keys))
	for i, k := range g.Keys {
		keys[i] = k.String()
	}
	if len(keys) == 0 {
		_ = p.WriteNode("Group(%s)", functionList(g.Functions, g.Names))
	} else {
		_ = p.WriteNode("Group(%s; %s)", strings.Join(keys, ", "), functionList(g.Functions, g.Names))
	}
	_ = p.WriteChildren(g.Child.String())
	return p.String()
}

func functionList(functions []sql.Expression, names []sql.Variable) string {
	parts := make([]string, len(functions))
	for i, f := range functions {
		parts[i] = names[i].String() + " = " + f.String()
	}
	return strings.Join(parts, ", ")
}
