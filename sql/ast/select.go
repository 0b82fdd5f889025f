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

// Package ast holds the parsed form of a SELECT statement as the planner
// consumes it.
package ast

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

// Select is a single query block, optionally followed by a chain of
// composite (UNION, INTERSECT, EXCEPT) blocks.
type Select struct {
	Distinct  bool
	Columns   []SelectColumn
	From      From
	Where     sql.Expression
	GroupBy   []sql.Expression
	Having    sql.Expression
	Composite *Composite
	// OrderBy, Limit and Offset apply to the result of the whole composite
	// chain and are only set on its first block.
	OrderBy []OrderBy
	Limit   sql.Expression
	Offset  sql.Expression
}

var _ sql.Statement = (*Select)(nil)

// SelectColumn is an entry of the SELECT list. Glob entries stand for
// every column of GlobTable, or of every source when GlobTable is empty.
type SelectColumn struct {
	Expr      sql.Expression
	Alias     string
	Glob      bool
	GlobTable sql.TableName
}

// NewGlob returns a "*" or "table.*" SELECT list entry.
func NewGlob(table sql.TableName) SelectColumn {
	return SelectColumn{Glob: true, GlobTable: table}
}

func (c SelectColumn) String() string {
	if c.Glob {
		if c.GlobTable.IsEmpty() {
			return "*"
		}
		return c.GlobTable.String() + ".*"
	}
	if c.Alias != "" {
		return fmt.Sprintf("%s AS %s", c.Expr, c.Alias)
	}
	return c.Expr.String()
}

// JoinType is the kind of link between two adjacent FROM items.
type JoinType byte

const (
	// JoinNone is a comma separated FROM item.
	JoinNone JoinType = iota
	// JoinInner is an INNER JOIN.
	JoinInner
	// JoinLeft is a LEFT OUTER JOIN.
	JoinLeft
	// JoinRight is a RIGHT OUTER JOIN.
	JoinRight
)

func (t JoinType) String() string {
	switch t {
	case JoinInner:
		return "JOIN"
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	default:
		return ","
	}
}

// IsOuter reports whether the join keeps unmatched rows of one side.
func (t JoinType) IsOuter() bool {
	return t == JoinLeft || t == JoinRight
}

// From is the FROM clause. Joins[i] links Items[i] with Items[i+1], so
// there is always one join less than items.
type From struct {
	Items []FromItem
	Joins []Join
}

// IsEmpty reports whether the statement has no FROM clause.
func (f From) IsEmpty() bool { return len(f.Items) == 0 }

// FromItem is a table or a derived table of the FROM clause.
type FromItem struct {
	Table    sql.TableName
	Subquery *Select
	Alias    string
}

// IsSubquery reports whether the item is a derived table.
func (i FromItem) IsSubquery() bool { return i.Subquery != nil }

func (i FromItem) String() string {
	var s string
	if i.Subquery != nil {
		s = fmt.Sprintf("(%s)", i.Subquery)
	} else {
		s = i.Table.String()
	}
	if i.Alias != "" {
		s += " AS " + i.Alias
	}
	return s
}

// Join is the link between two adjacent FROM items.
type Join struct {
	Type JoinType
	On   sql.Expression
}

// OrderBy is a sort key.
type OrderBy struct {
	Expr      sql.Expression
	Ascending bool
}

func (o OrderBy) String() string {
	if o.Ascending {
		return o.Expr.String() + " ASC"
	}
	return o.Expr.String() + " DESC"
}

// CompositeOp is the set operation combining two query blocks.
type CompositeOp byte

const (
	// Union of both results.
	Union CompositeOp = iota
	// Intersect keeps rows present in both results.
	Intersect
	// Except keeps rows of the left result absent from the right one.
	Except
)

func (op CompositeOp) String() string {
	switch op {
	case Intersect:
		return "INTERSECT"
	case Except:
		return "EXCEPT"
	default:
		return "UNION"
	}
}

// Composite links a query block with the next one of the chain.
type Composite struct {
	Op   CompositeOp
	All  bool
	Next *Select
}

// HasAggregate reports whether any SELECT list entry calls an aggregate.
func (s *Select) HasAggregate() bool {
	for _, c := range s.Columns {
		if !c.Glob && expression.HasAggregate(c.Expr) {
			return true
		}
	}
	return false
}

func (s *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}

	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = c.String()
	}
	b.WriteString(strings.Join(cols, ", "))

	if !s.From.IsEmpty() {
		b.WriteString(" FROM ")
		for i, item := range s.From.Items {
			if i > 0 {
				j := s.From.Joins[i-1]
				if j.Type == JoinNone {
					b.WriteString(", ")
				} else {
					fmt.Fprintf(&b, " %s ", j.Type)
				}
			}
			b.WriteString(item.String())
			if i > 0 && s.From.Joins[i-1].On != nil {
				fmt.Fprintf(&b, " ON %s", s.From.Joins[i-1].On)
			}
		}
	}

	if s.Where != nil {
		fmt.Fprintf(&b, " WHERE %s", s.Where)
	}

	if len(s.GroupBy) > 0 {
		keys := make([]string, len(s.GroupBy))
		for i, k := range s.GroupBy {
			keys[i] = k.String()
		}
		fmt.Fprintf(&b, " GROUP BY %s", strings.Join(keys, ", "))
	}

	if s.Having != nil {
		fmt.Fprintf(&b, " HAVING %s", s.Having)
	}

	if s.Composite != nil {
		fmt.Fprintf(&b, " %s ", s.Composite.Op)
		if s.Composite.All {
			b.WriteString("ALL ")
		}
		b.WriteString(s.Composite.Next.String())
	}

	if len(s.OrderBy) > 0 {
		keys := make([]string, len(s.OrderBy))
		for i, o := range s.OrderBy {
			keys[i] = o.String()
		}
		fmt.Fprintf(&b, " ORDER BY %s", strings.Join(keys, ", "))
	}

	if s.Limit != nil {
		fmt.Fprintf(&b, " LIMIT %s", s.Limit)
	}
	if s.Offset != nil {
		fmt.Fprintf(&b, " OFFSET %s", s.Offset)
	}

	return b.String()
}

// CloneStatement implements the sql.Statement interface.
func (s *Select) CloneStatement() sql.Statement {
	return s.Clone()
}

// Clone returns a deep copy of the statement, including every nested
// query block.
func (s *Select) Clone() *Select {
	if s == nil {
		return nil
	}

	ns := &Select{
		Distinct: s.Distinct,
		Where:    expression.Clone(s.Where),
		Having:   expression.Clone(s.Having),
		Limit:    expression.Clone(s.Limit),
		Offset:   expression.Clone(s.Offset),
	}

	if s.Columns != nil {
		ns.Columns = make([]SelectColumn, len(s.Columns))
		for i, c := range s.Columns {
			c.Expr = expression.Clone(c.Expr)
			ns.Columns[i] = c
		}
	}

	if s.From.Items != nil {
		ns.From.Items = make([]FromItem, len(s.From.Items))
		for i, item := range s.From.Items {
			item.Subquery = item.Subquery.Clone()
			ns.From.Items[i] = item
		}
	}

	if s.From.Joins != nil {
		ns.From.Joins = make([]Join, len(s.From.Joins))
		for i, j := range s.From.Joins {
			j.On = expression.Clone(j.On)
			ns.From.Joins[i] = j
		}
	}

	if s.GroupBy != nil {
		ns.GroupBy = make([]sql.Expression, len(s.GroupBy))
		for i, k := range s.GroupBy {
			ns.GroupBy[i] = expression.Clone(k)
		}
	}

	if s.OrderBy != nil {
		ns.OrderBy = make([]OrderBy, len(s.OrderBy))
		for i, o := range s.OrderBy {
			o.Expr = expression.Clone(o.Expr)
			ns.OrderBy[i] = o
		}
	}

	if s.Composite != nil {
		ns.Composite = &Composite{
			Op:   s.Composite.Op,
			All:  s.Composite.All,
			Next: s.Composite.Next.Clone(),
		}
	}

	return ns
}
