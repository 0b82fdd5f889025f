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

package expression

import (
	"fmt"

	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-queryplan.v0/sql"
)

var (
	// ErrSubqueryNotPlanned is returned when a sub-query is evaluated before
	// an evaluation plan was built for it.
	ErrSubqueryNotPlanned = errors.NewKind("sub-query %s has not been planned")

	// ErrSubqueryMultipleRows is returned when a scalar sub-query returns
	// more than one row.
	ErrSubqueryMultipleRows = errors.NewKind("sub-query returns more than 1 row")

	// ErrSubqueryNoColumns is returned when a sub-query used as a value has
	// no columns.
	ErrSubqueryNoColumns = errors.NewKind("sub-query returns no columns")
)

// Subquery is a query block nested inside an expression. The parser fills
// in the statement; the planner attaches the evaluation plan.
type Subquery struct {
	Statement sql.Statement
	Plan      sql.Node
}

// NewSubquery returns a new sub-query for the given statement.
func NewSubquery(stmt sql.Statement) *Subquery {
	return &Subquery{Statement: stmt}
}

// WithPlan returns a copy of the sub-query with the given plan.
func (s *Subquery) WithPlan(plan sql.Node) *Subquery {
	ns := *s
	ns.Plan = plan
	return &ns
}

// Rows evaluates the sub-query for the given row of the enclosing query.
func (s *Subquery) Rows(ctx *sql.Context, row sql.RowContext) (*sql.RowSet, error) {
	if s.Plan == nil {
		return nil, ErrSubqueryNotPlanned.New(s)
	}
	return s.Plan.Evaluate(ctx.WithOuterRow(row))
}

// EvalValues returns the values of the first column of the sub-query.
func (s *Subquery) EvalValues(ctx *sql.Context, row sql.RowContext) ([]interface{}, error) {
	rs, err := s.Rows(ctx, row)
	if err != nil {
		return nil, err
	}
	return FirstColumn(rs)
}

// FirstColumn returns the values of the first column of a row set.
func FirstColumn(rs *sql.RowSet) ([]interface{}, error) {
	if len(rs.Columns) == 0 {
		return nil, ErrSubqueryNoColumns.New()
	}

	values := make([]interface{}, len(rs.Rows))
	for i, r := range rs.Rows {
		values[i] = r[0]
	}
	return values, nil
}

// Eval implements the Expression interface. The sub-query is used as a
// scalar value.
func (s *Subquery) Eval(ctx *sql.Context, row sql.RowContext) (interface{}, error) {
	values, err := s.EvalValues(ctx, row)
	if err != nil {
		return nil, err
	}

	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	default:
		return nil, ErrSubqueryMultipleRows.New()
	}
}

// Children implements the Expression interface.
func (s *Subquery) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (s *Subquery) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

// Clone returns a deep copy of the sub-query.
func (s *Subquery) Clone() *Subquery {
	ns := &Subquery{}
	if s.Statement != nil {
		ns.Statement = s.Statement.CloneStatement()
	}
	if s.Plan != nil {
		ns.Plan = s.Plan.Clone()
	}
	return ns
}

func (s *Subquery) String() string {
	if s.Statement != nil {
		return fmt.Sprintf("(%s)", s.Statement)
	}
	return "(subquery)"
}

// Exists checks whether a sub-query returns any row.
type Exists struct {
	Query *Subquery
}

// NewExists creates an EXISTS test over the given sub-query.
func NewExists(q *Subquery) *Exists {
	return &Exists{q}
}

// Eval implements the Expression interface.
func (e *Exists) Eval(ctx *sql.Context, row sql.RowContext) (interface{}, error) {
	rs, err := e.Query.Rows(ctx, row)
	if err != nil {
		return nil, err
	}
	return rs.Len() > 0, nil
}

// Children implements the Expression interface. The sub-query is exposed
// so that tree walks find it.
func (e *Exists) Children() []sql.Expression {
	return []sql.Expression{e.Query}
}

// WithChildren implements the Expression interface.
func (e *Exists) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	q, ok := children[0].(*Subquery)
	if !ok {
		return nil, sql.ErrInvalidType.New(fmt.Sprintf("%T", children[0]))
	}
	return NewExists(q), nil
}

func (e *Exists) String() string {
	return fmt.Sprintf("EXISTS %s", e.Query)
}
