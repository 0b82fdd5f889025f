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

// Literal represents a literal expression (string, number, bool, ...).
type Literal struct {
	value     interface{}
	fieldType sql.Type
}

// NewLiteral creates a new Literal expression.
func NewLiteral(value interface{}, fieldType sql.Type) *Literal {
	return &Literal{value: value, fieldType: fieldType}
}

// Value returns the literal value.
func (p *Literal) Value() interface{} { return p.value }

// Type returns the type of the literal.
func (p *Literal) Type() sql.Type { return p.fieldType }

// Eval implements the Expression interface.
func (p *Literal) Eval(_ *sql.Context, _ sql.RowContext) (interface{}, error) {
	return p.value, nil
}

// Children implements the Expression interface.
func (*Literal) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (p *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}
	return p, nil
}

func (p *Literal) String() string {
	switch v := p.value.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}
