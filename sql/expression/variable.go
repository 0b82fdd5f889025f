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

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// Variable is a reference to a column. It is created unqualified by the
// parser and replaced by a fully qualified one during planning.
type Variable struct {
	name sql.Variable
}

// NewVariable creates a reference to the given column.
func NewVariable(name sql.Variable) *Variable {
	return &Variable{name}
}

// NewUnresolvedColumn creates a reference to a column by its dotted name.
func NewUnresolvedColumn(name string) *Variable {
	return &Variable{sql.ParseVariable(name)}
}

// Name returns the referenced column.
func (v *Variable) Name() sql.Variable { return v.name }

// Eval implements the Expression interface.
func (v *Variable) Eval(_ *sql.Context, row sql.RowContext) (interface{}, error) {
	if row == nil {
		return nil, sql.ErrColumnNotFound.New(v.name.String())
	}
	return row.Value(v.name)
}

// Children implements the Expression interface.
func (*Variable) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (v *Variable) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(v, len(children), 0)
	}
	return v, nil
}

func (v *Variable) String() string {
	return v.name.String()
}

// CorrelatedVariable is a reference to a column of an enclosing query
// block. Its value is taken from the row of that block being evaluated.
type CorrelatedVariable struct {
	name  sql.Variable
	level int
}

var _ sql.Correlated = (*CorrelatedVariable)(nil)

// NewCorrelatedVariable creates a reference to a column of the query block
// level blocks above the current one.
func NewCorrelatedVariable(name sql.Variable, level int) *CorrelatedVariable {
	return &CorrelatedVariable{name, level}
}

// Name implements the sql.Correlated interface.
func (v *CorrelatedVariable) Name() sql.Variable { return v.name }

// Level implements the sql.Correlated interface.
func (v *CorrelatedVariable) Level() int { return v.level }

// Eval implements the Expression interface.
func (v *CorrelatedVariable) Eval(ctx *sql.Context, _ sql.RowContext) (interface{}, error) {
	outer, ok := ctx.OuterRow(v.level)
	if !ok {
		return nil, sql.ErrNoOuterRow.New(v.level, v.name.String())
	}
	return outer.Value(v.name)
}

// Children implements the Expression interface.
func (*CorrelatedVariable) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (v *CorrelatedVariable) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(v, len(children), 0)
	}
	return v, nil
}

func (v *CorrelatedVariable) String() string {
	return fmt.Sprintf("CORRELATED(%s, %d)", v.name, v.level)
}
