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
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// ErrInvalidOperator is returned when an operator is used where it does not
// make sense.
var ErrInvalidOperator = errors.NewKind("invalid operator %s")

// Operator of a comparison or logical expression.
type Operator string

const (
	OpEquals         Operator = "="
	OpNotEquals      Operator = "<>"
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLike           Operator = "LIKE"
	OpNotLike        Operator = "NOT LIKE"
	OpRegexp         Operator = "REGEXP"
	OpNotRegexp      Operator = "NOT REGEXP"
	OpIn             Operator = "IN"
	OpNotIn          Operator = "NOT IN"
	OpAnd            Operator = "AND"
	OpOr             Operator = "OR"
)

// IsLogical reports whether the operator combines boolean conditions.
func (op Operator) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

// IsPattern reports whether the operator is a pattern match.
func (op Operator) IsPattern() bool {
	switch op {
	case OpLike, OpNotLike, OpRegexp, OpNotRegexp:
		return true
	}
	return false
}

// IsMembership reports whether the operator tests a value against a list.
func (op Operator) IsMembership() bool {
	return op == OpIn || op == OpNotIn
}

// IsRange reports whether the operator restricts a value to a range that
// can be described with bounds.
func (op Operator) IsRange() bool {
	switch op {
	case OpEquals, OpNotEquals, OpLessThan, OpLessOrEqual, OpGreaterThan, OpGreaterOrEqual:
		return true
	}
	return false
}

// Reverse returns the operator to use when both operands are swapped.
func (op Operator) Reverse() Operator {
	switch op {
	case OpLessThan:
		return OpGreaterThan
	case OpLessOrEqual:
		return OpGreaterOrEqual
	case OpGreaterThan:
		return OpLessThan
	case OpGreaterOrEqual:
		return OpLessOrEqual
	default:
		return op
	}
}

// Quantifier tells how a comparison against a sub-query is applied to the
// rows the sub-query returns.
type Quantifier int

const (
	// NoQuantifier compares against the single value of a scalar sub-query.
	NoQuantifier Quantifier = iota
	// Any is true if the comparison holds for any row.
	Any
	// All is true if the comparison holds for every row.
	All
)

func (q Quantifier) String() string {
	switch q {
	case Any:
		return "ANY"
	case All:
		return "ALL"
	default:
		return ""
	}
}

// Comparison compares two expressions with an operator.
type Comparison struct {
	BinaryExpression
	Op         Operator
	Quantifier Quantifier
}

// NewComparison creates a new comparison between two expressions.
func NewComparison(op Operator, left, right sql.Expression) *Comparison {
	return &Comparison{BinaryExpression: BinaryExpression{left, right}, Op: op}
}

// NewQuantifiedComparison creates a comparison of a value against the
// rows of a sub-query.
func NewQuantifiedComparison(op Operator, q Quantifier, left sql.Expression, right *Subquery) *Comparison {
	return &Comparison{BinaryExpression: BinaryExpression{left, right}, Op: op, Quantifier: q}
}

// NewEquals returns a new equality comparison.
func NewEquals(left, right sql.Expression) *Comparison {
	return NewComparison(OpEquals, left, right)
}

// NewIn returns a membership test of left in right. A sub-query on the
// right side turns it into an "= ANY" comparison.
func NewIn(left, right sql.Expression) *Comparison {
	if sq, ok := right.(*Subquery); ok {
		return NewQuantifiedComparison(OpEquals, Any, left, sq)
	}
	return NewComparison(OpIn, left, right)
}

// NewNotIn returns a negated membership test. A sub-query on the right
// side turns it into an "<> ALL" comparison.
func NewNotIn(left, right sql.Expression) *Comparison {
	if sq, ok := right.(*Subquery); ok {
		return NewQuantifiedComparison(OpNotEquals, All, left, sq)
	}
	return NewComparison(OpNotIn, left, right)
}

// Eval implements the Expression interface.
func (c *Comparison) Eval(ctx *sql.Context, row sql.RowContext) (interface{}, error) {
	left, err := c.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	switch {
	case c.Quantifier != NoQuantifier:
		sq, ok := c.Right.(*Subquery)
		if !ok {
			return nil, ErrInvalidOperator.New(c.Quantifier.String())
		}

		values, err := sq.EvalValues(ctx, row)
		if err != nil {
			return nil, err
		}

		return Quantified(c.Op, c.Quantifier, left, values)
	case c.Op.IsMembership():
		values, err := EvalList(ctx, row, c.Right)
		if err != nil {
			return nil, err
		}

		return Membership(c.Op, left, values)
	}

	right, err := c.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	return Compare(c.Op, left, right)
}

// WithChildren implements the Expression interface.
func (c *Comparison) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 2)
	}
	nc := *c
	nc.BinaryExpression = BinaryExpression{children[0], children[1]}
	return &nc, nil
}

func (c *Comparison) String() string {
	if c.Quantifier != NoQuantifier {
		return fmt.Sprintf("%s %s %s %s", c.Left, c.Op, c.Quantifier, c.Right)
	}
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

// EvalList evaluates the right side of a membership test into the list of
// values it stands for.
func EvalList(ctx *sql.Context, row sql.RowContext, e sql.Expression) ([]interface{}, error) {
	if sq, ok := e.(*Subquery); ok {
		return sq.EvalValues(ctx, row)
	}

	v, err := e.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	if values, ok := v.([]interface{}); ok {
		return values, nil
	}
	return []interface{}{v}, nil
}

// Membership tests whether left is IN, or NOT IN, the given values.
func Membership(op Operator, left interface{}, values []interface{}) (interface{}, error) {
	result, err := Quantified(OpEquals, Any, left, values)
	if err != nil || op != OpNotIn || result == nil {
		return result, err
	}
	return !result.(bool), nil
}

// Compare applies a comparison operator to two values. The result is nil
// when any of the values is NULL.
func Compare(op Operator, left, right interface{}) (interface{}, error) {
	if left == nil || right == nil {
		return nil, nil
	}

	switch op {
	case OpLike, OpNotLike:
		matched, err := matchLike(left, right)
		if err != nil {
			return nil, err
		}
		return matched == (op == OpLike), nil
	case OpRegexp, OpNotRegexp:
		matched, err := matchRegexp(left, right)
		if err != nil {
			return nil, err
		}
		return matched == (op == OpRegexp), nil
	}

	cmp, err := sql.Compare(left, right)
	if err != nil {
		return nil, err
	}

	switch op {
	case OpEquals:
		return cmp == 0, nil
	case OpNotEquals:
		return cmp != 0, nil
	case OpLessThan:
		return cmp < 0, nil
	case OpLessOrEqual:
		return cmp <= 0, nil
	case OpGreaterThan:
		return cmp > 0, nil
	case OpGreaterOrEqual:
		return cmp >= 0, nil
	default:
		return nil, ErrInvalidOperator.New(op)
	}
}

// Quantified compares a value with every value of a list and combines the
// results as ANY or ALL does, following three-valued logic.
func Quantified(op Operator, q Quantifier, left interface{}, values []interface{}) (interface{}, error) {
	if q == NoQuantifier {
		switch len(values) {
		case 0:
			return nil, nil
		case 1:
			return Compare(op, left, values[0])
		default:
			return nil, ErrSubqueryMultipleRows.New()
		}
	}

	var sawNull bool
	for _, v := range values {
		result, err := Compare(op, left, v)
		if err != nil {
			return nil, err
		}

		if result == nil {
			sawNull = true
			continue
		}

		matched := result.(bool)
		if q == Any && matched {
			return true, nil
		}
		if q == All && !matched {
			return false, nil
		}
	}

	if sawNull {
		return nil, nil
	}
	return q == All, nil
}

func matchLike(left, right interface{}) (bool, error) {
	value, err := cast.ToStringE(left)
	if err != nil {
		return false, err
	}

	pattern, err := cast.ToStringE(right)
	if err != nil {
		return false, err
	}

	re, err := regexp.Compile(likeToRegexp(pattern))
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}

func likeToRegexp(pattern string) string {
	var buf strings.Builder
	buf.WriteString("(?s)^")
	var escaped bool
	for _, r := range pattern {
		switch {
		case escaped:
			buf.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			buf.WriteString(".*")
		case r == '_':
			buf.WriteString(".")
		default:
			buf.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	buf.WriteString("$")
	return buf.String()
}

func matchRegexp(left, right interface{}) (bool, error) {
	value, err := cast.ToStringE(left)
	if err != nil {
		return false, err
	}

	pattern, err := cast.ToStringE(right)
	if err != nil {
		return false, err
	}

	return regexp.MatchString(pattern, value)
}
