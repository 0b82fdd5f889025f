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

// Package parse turns SQL text into the statement model the planner works
// on.
package parse // import "gopkg.in/src-d/go-queryplan.v0/sql/parse"

import (
	"fmt"
	"strconv"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/ast"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
	"gopkg.in/src-d/go-vitess.v1/vt/sqlparser"
)

var (
	// ErrUnsupportedSyntax is thrown when a specific syntax is not already supported
	ErrUnsupportedSyntax = errors.NewKind("unsupported syntax: %#v")

	// ErrUnsupportedFeature is thrown when a feature is not already supported
	ErrUnsupportedFeature = errors.NewKind("unsupported feature: %s")

	// ErrInvalidSQLValType is returned when a SQLVal type is not valid.
	ErrInvalidSQLValType = errors.NewKind("invalid SQLVal of type: %d")

	// ErrInvalidSortOrder is returned when a sort order is not valid.
	ErrInvalidSortOrder = errors.NewKind("invalid sort order: %s")

	// ErrEmptyQuery is returned when the query has no statement once
	// comments and blanks are removed.
	ErrEmptyQuery = errors.NewKind("query is empty")
)

// dualTable is the table the parser puts in the FROM clause of a SELECT
// that has none.
const dualTable = "dual"

// Parse parses the given SQL sentence and returns the corresponding
// statement.
func Parse(ctx *sql.Context, query string) (*ast.Select, error) {
	span, _ := ctx.Span("parse", opentracing.Tag{Key: "query", Value: query})
	defer span.Finish()

	s := strings.TrimSpace(removeComments(query))
	if strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(s[:len(s)-1])
	}

	if s == "" {
		logrus.WithField("query", query).Debug("query became empty once comments were removed")
		return nil, ErrEmptyQuery.New()
	}

	stmt, err := sqlparser.Parse(s)
	if err != nil {
		return nil, err
	}

	return convert(stmt)
}

func convert(stmt sqlparser.Statement) (*ast.Select, error) {
	switch n := stmt.(type) {
	default:
		return nil, ErrUnsupportedSyntax.New(n)
	case *sqlparser.Select:
		return convertSelect(n)
	case *sqlparser.Union:
		return convertUnion(n)
	case *sqlparser.ParenSelect:
		return convert(n.Select)
	}
}

func convertUnion(u *sqlparser.Union) (*ast.Select, error) {
	var all bool
	switch u.Type {
	case sqlparser.UnionStr, sqlparser.UnionDistinctStr:
	case sqlparser.UnionAllStr:
		all = true
	default:
		return nil, ErrUnsupportedFeature.New(u.Type)
	}

	left, err := convert(u.Left)
	if err != nil {
		return nil, err
	}

	right, err := convert(u.Right)
	if err != nil {
		return nil, err
	}

	if right.Composite != nil {
		return nil, ErrUnsupportedFeature.New("nested set operation on the right side of UNION")
	}

	if hasTail(right) || (left.Composite == nil && hasTail(left)) {
		return nil, ErrUnsupportedFeature.New("ORDER BY or LIMIT inside a UNION operand")
	}

	last := left
	for last.Composite != nil {
		last = last.Composite.Next
	}
	last.Composite = &ast.Composite{Op: ast.Union, All: all, Next: right}

	if len(u.OrderBy) > 0 {
		if left.OrderBy, err = convertOrderBy(u.OrderBy); err != nil {
			return nil, err
		}
	}

	if u.Limit != nil {
		if left.Limit, left.Offset, err = convertLimit(u.Limit); err != nil {
			return nil, err
		}
	}

	return left, nil
}

func hasTail(s *ast.Select) bool {
	return len(s.OrderBy) > 0 || s.Limit != nil || s.Offset != nil
}

func convertSelect(s *sqlparser.Select) (*ast.Select, error) {
	var (
		result = new(ast.Select)
		err    error
	)

	result.Distinct = s.Distinct != ""

	if result.Columns, err = selectExprsToColumns(s.SelectExprs); err != nil {
		return nil, err
	}

	if !isDual(s.From) {
		if result.From, err = tableExprsToFrom(s.From); err != nil {
			return nil, err
		}
	}

	if s.Where != nil {
		if result.Where, err = exprToExpression(s.Where.Expr); err != nil {
			return nil, err
		}
	}

	for _, g := range s.GroupBy {
		e, err := exprToExpression(g)
		if err != nil {
			return nil, err
		}
		result.GroupBy = append(result.GroupBy, e)
	}

	if s.Having != nil {
		if result.Having, err = exprToExpression(s.Having.Expr); err != nil {
			return nil, err
		}
	}

	if len(s.OrderBy) > 0 {
		if result.OrderBy, err = convertOrderBy(s.OrderBy); err != nil {
			return nil, err
		}
	}

	if s.Limit != nil {
		if result.Limit, result.Offset, err = convertLimit(s.Limit); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func isDual(te sqlparser.TableExprs) bool {
	switch len(te) {
	case 0:
		return true
	case 1:
	default:
		return false
	}

	t, ok := te[0].(*sqlparser.AliasedTableExpr)
	if !ok || !t.As.IsEmpty() {
		return false
	}

	name, ok := t.Expr.(sqlparser.TableName)
	return ok && name.Qualifier.IsEmpty() && name.Name.String() == dualTable
}

func selectExprsToColumns(se sqlparser.SelectExprs) ([]ast.SelectColumn, error) {
	columns := make([]ast.SelectColumn, 0, len(se))
	for _, e := range se {
		switch e := e.(type) {
		default:
			return nil, ErrUnsupportedSyntax.New(e)
		case *sqlparser.StarExpr:
			columns = append(columns, ast.NewGlob(tableName(e.TableName)))
		case *sqlparser.AliasedExpr:
			expr, err := exprToExpression(e.Expr)
			if err != nil {
				return nil, err
			}

			columns = append(columns, ast.SelectColumn{Expr: expr, Alias: e.As.String()})
		}
	}
	return columns, nil
}

func tableName(t sqlparser.TableName) sql.TableName {
	return sql.NewTableName(t.Qualifier.String(), t.Name.String())
}

func tableExprsToFrom(te sqlparser.TableExprs) (ast.From, error) {
	var from ast.From
	if len(te) == 0 {
		return from, ErrUnsupportedFeature.New("zero tables in FROM")
	}

	for _, t := range te {
		if err := addTableExpr(&from, t, ast.Join{Type: ast.JoinNone}); err != nil {
			return from, err
		}
	}

	return from, nil
}

// addTableExpr appends the items of the table expression to the FROM
// clause. join is how the first item of the expression attaches to the
// items already in the clause.
func addTableExpr(from *ast.From, te sqlparser.TableExpr, join ast.Join) error {
	switch t := te.(type) {
	default:
		return ErrUnsupportedSyntax.New(te)
	case *sqlparser.AliasedTableExpr:
		item, err := tableExprToItem(t)
		if err != nil {
			return err
		}

		if len(from.Items) > 0 {
			from.Joins = append(from.Joins, join)
		}
		from.Items = append(from.Items, item)
		return nil
	case *sqlparser.ParenTableExpr:
		if len(t.Exprs) != 1 {
			return ErrUnsupportedFeature.New("parenthesized list of tables")
		}
		if _, ok := t.Exprs[0].(*sqlparser.AliasedTableExpr); !ok {
			return ErrUnsupportedFeature.New("parenthesized join")
		}
		return addTableExpr(from, t.Exprs[0], join)
	case *sqlparser.JoinTableExpr:
		typ, err := joinType(t.Join)
		if err != nil {
			return err
		}

		if len(t.Condition.Using) > 0 {
			return ErrUnsupportedFeature.New("using clause on join")
		}

		if _, ok := t.RightExpr.(*sqlparser.JoinTableExpr); ok {
			return ErrUnsupportedFeature.New("right nested join")
		}

		if err := addTableExpr(from, t.LeftExpr, join); err != nil {
			return err
		}

		next := ast.Join{Type: typ}
		if t.Condition.On != nil {
			if next.On, err = exprToExpression(t.Condition.On); err != nil {
				return err
			}
		}

		return addTableExpr(from, t.RightExpr, next)
	}
}

func joinType(join string) (ast.JoinType, error) {
	switch join {
	case sqlparser.JoinStr, sqlparser.StraightJoinStr:
		return ast.JoinInner, nil
	case sqlparser.LeftJoinStr:
		return ast.JoinLeft, nil
	case sqlparser.RightJoinStr:
		return ast.JoinRight, nil
	default:
		return ast.JoinNone, ErrUnsupportedFeature.New(join)
	}
}

func tableExprToItem(t *sqlparser.AliasedTableExpr) (ast.FromItem, error) {
	switch e := t.Expr.(type) {
	case sqlparser.TableName:
		return ast.FromItem{Table: tableName(e), Alias: t.As.String()}, nil
	case *sqlparser.Subquery:
		sub, err := convert(e.Select)
		if err != nil {
			return ast.FromItem{}, err
		}
		return ast.FromItem{Subquery: sub, Alias: t.As.String()}, nil
	default:
		return ast.FromItem{}, ErrUnsupportedSyntax.New(t)
	}
}

func convertOrderBy(ob sqlparser.OrderBy) ([]ast.OrderBy, error) {
	var fields []ast.OrderBy
	for _, o := range ob {
		e, err := exprToExpression(o.Expr)
		if err != nil {
			return nil, err
		}

		var asc bool
		switch o.Direction {
		default:
			return nil, ErrInvalidSortOrder.New(o.Direction)
		case sqlparser.AscScr:
			asc = true
		case sqlparser.DescScr:
		}

		fields = append(fields, ast.OrderBy{Expr: e, Ascending: asc})
	}
	return fields, nil
}

func convertLimit(l *sqlparser.Limit) (limit, offset sql.Expression, err error) {
	if l.Rowcount != nil {
		if limit, err = integerLiteral("LIMIT", l.Rowcount); err != nil {
			return nil, nil, err
		}
	}

	if l.Offset != nil {
		if offset, err = integerLiteral("OFFSET", l.Offset); err != nil {
			return nil, nil, err
		}
	}

	return limit, offset, nil
}

func integerLiteral(clause string, e sqlparser.Expr) (sql.Expression, error) {
	expr, err := exprToExpression(e)
	if err != nil {
		return nil, err
	}

	l, ok := expr.(*expression.Literal)
	if !ok || l.Type() != sql.Int64 {
		return nil, ErrUnsupportedFeature.New(clause + " with non-integer literal")
	}

	return l, nil
}

func exprToExpression(e sqlparser.Expr) (sql.Expression, error) {
	switch v := e.(type) {
	default:
		return nil, ErrUnsupportedSyntax.New(e)
	case *sqlparser.ComparisonExpr:
		return comparisonExprToExpression(v)
	case *sqlparser.IsExpr:
		return isExprToExpression(v)
	case *sqlparser.NotExpr:
		c, err := exprToExpression(v.Expr)
		if err != nil {
			return nil, err
		}

		return expression.NewNot(c), nil
	case *sqlparser.SQLVal:
		return convertVal(v)
	case sqlparser.BoolVal:
		return expression.NewLiteral(bool(v), sql.Boolean), nil
	case *sqlparser.NullVal:
		return expression.NewLiteral(nil, sql.Null), nil
	case *sqlparser.ColName:
		return expression.NewVariable(sql.Variable{
			Schema: v.Qualifier.Qualifier.String(),
			Table:  v.Qualifier.Name.String(),
			Column: v.Name.String(),
		}), nil
	case *sqlparser.FuncExpr:
		return funcExprToExpression(v)
	case *sqlparser.ParenExpr:
		return exprToExpression(v.Expr)
	case *sqlparser.AndExpr:
		lhs, rhs, err := bothToExpression(v.Left, v.Right)
		if err != nil {
			return nil, err
		}

		return expression.NewAnd(lhs, rhs), nil
	case *sqlparser.OrExpr:
		lhs, rhs, err := bothToExpression(v.Left, v.Right)
		if err != nil {
			return nil, err
		}

		return expression.NewOr(lhs, rhs), nil
	case *sqlparser.RangeCond:
		return rangeCondToExpression(v)
	case sqlparser.ValTuple:
		var exprs = make([]sql.Expression, len(v))
		for i, e := range v {
			expr, err := exprToExpression(e)
			if err != nil {
				return nil, err
			}
			exprs[i] = expr
		}
		return expression.NewTuple(exprs...), nil
	case *sqlparser.Subquery:
		return subqueryToExpression(v)
	case *sqlparser.ExistsExpr:
		sq, err := subqueryToExpression(v.Subquery)
		if err != nil {
			return nil, err
		}

		return expression.NewExists(sq), nil
	case *sqlparser.BinaryExpr:
		return binaryExprToExpression(v)
	case *sqlparser.UnaryExpr:
		return unaryExprToExpression(v)
	}
}

func bothToExpression(left, right sqlparser.Expr) (sql.Expression, sql.Expression, error) {
	l, err := exprToExpression(left)
	if err != nil {
		return nil, nil, err
	}

	r, err := exprToExpression(right)
	if err != nil {
		return nil, nil, err
	}

	return l, r, nil
}

func subqueryToExpression(s *sqlparser.Subquery) (*expression.Subquery, error) {
	stmt, err := convert(s.Select)
	if err != nil {
		return nil, err
	}
	return expression.NewSubquery(stmt), nil
}

func convertVal(v *sqlparser.SQLVal) (sql.Expression, error) {
	switch v.Type {
	case sqlparser.StrVal:
		return expression.NewLiteral(string(v.Val), sql.Text), nil
	case sqlparser.IntVal:
		val, err := strconv.ParseInt(string(v.Val), 10, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val, sql.Int64), nil
	case sqlparser.FloatVal:
		val, err := strconv.ParseFloat(string(v.Val), 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val, sql.Float64), nil
	case sqlparser.HexNum:
		v := strings.ToLower(string(v.Val))
		if strings.HasPrefix(v, "0x") {
			v = v[2:]
		} else if strings.HasPrefix(v, "x") {
			v = strings.Trim(v[1:], "'")
		}

		val, err := strconv.ParseInt(v, 16, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val, sql.Int64), nil
	case sqlparser.BitVal:
		return expression.NewLiteral(v.Val[0] == '1', sql.Boolean), nil
	case sqlparser.ValArg:
		return nil, ErrUnsupportedFeature.New("bind variables")
	}

	return nil, ErrInvalidSQLValType.New(v.Type)
}

func isExprToExpression(c *sqlparser.IsExpr) (sql.Expression, error) {
	e, err := exprToExpression(c.Expr)
	if err != nil {
		return nil, err
	}

	switch c.Operator {
	case sqlparser.IsNullStr:
		return expression.NewIsNull(e), nil
	case sqlparser.IsNotNullStr:
		return expression.NewNot(expression.NewIsNull(e)), nil
	default:
		return nil, ErrUnsupportedSyntax.New(c)
	}
}

func comparisonExprToExpression(c *sqlparser.ComparisonExpr) (sql.Expression, error) {
	if c.Escape != nil {
		return nil, ErrUnsupportedFeature.New("LIKE with ESCAPE")
	}

	left, right, err := bothToExpression(c.Left, c.Right)
	if err != nil {
		return nil, err
	}

	switch c.Operator {
	default:
		return nil, ErrUnsupportedFeature.New(c.Operator)
	case sqlparser.RegexpStr:
		return expression.NewComparison(expression.OpRegexp, left, right), nil
	case sqlparser.NotRegexpStr:
		return expression.NewComparison(expression.OpNotRegexp, left, right), nil
	case sqlparser.EqualStr:
		return expression.NewEquals(left, right), nil
	case sqlparser.LessThanStr:
		return expression.NewComparison(expression.OpLessThan, left, right), nil
	case sqlparser.LessEqualStr:
		return expression.NewComparison(expression.OpLessOrEqual, left, right), nil
	case sqlparser.GreaterThanStr:
		return expression.NewComparison(expression.OpGreaterThan, left, right), nil
	case sqlparser.GreaterEqualStr:
		return expression.NewComparison(expression.OpGreaterOrEqual, left, right), nil
	case sqlparser.NotEqualStr:
		return expression.NewComparison(expression.OpNotEquals, left, right), nil
	case sqlparser.InStr:
		return expression.NewIn(left, right), nil
	case sqlparser.NotInStr:
		return expression.NewNotIn(left, right), nil
	case sqlparser.LikeStr:
		return expression.NewComparison(expression.OpLike, left, right), nil
	case sqlparser.NotLikeStr:
		return expression.NewComparison(expression.OpNotLike, left, right), nil
	}
}

// rangeCondToExpression expands BETWEEN into a pair of comparisons so the
// planner sees plain range conditions over the value.
func rangeCondToExpression(r *sqlparser.RangeCond) (sql.Expression, error) {
	val, err := exprToExpression(r.Left)
	if err != nil {
		return nil, err
	}

	lower, upper, err := bothToExpression(r.From, r.To)
	if err != nil {
		return nil, err
	}

	switch r.Operator {
	case sqlparser.BetweenStr:
		return expression.NewAnd(
			expression.NewComparison(expression.OpGreaterOrEqual, val, lower),
			expression.NewComparison(expression.OpLessOrEqual, expression.Clone(val), upper),
		), nil
	case sqlparser.NotBetweenStr:
		return expression.NewOr(
			expression.NewComparison(expression.OpLessThan, val, lower),
			expression.NewComparison(expression.OpGreaterThan, expression.Clone(val), upper),
		), nil
	default:
		return nil, ErrUnsupportedFeature.New(fmt.Sprintf("RangeCond with operator: %s", r.Operator))
	}
}

func funcExprToExpression(f *sqlparser.FuncExpr) (sql.Expression, error) {
	if !f.Qualifier.IsEmpty() {
		return nil, ErrUnsupportedFeature.New("qualified function " + sqlparser.String(f))
	}

	name := f.Name.Lowered()
	if expression.IsAggregateFunction(name) {
		if len(f.Exprs) != 1 {
			return nil, expression.ErrInvalidArgumentNumber.New(name, 1, len(f.Exprs))
		}

		if _, ok := f.Exprs[0].(*sqlparser.StarExpr); ok {
			if name != "count" || f.Distinct {
				return nil, ErrUnsupportedSyntax.New(f)
			}
			return expression.NewCountStar(), nil
		}

		arg, err := funcArgument(f.Exprs[0])
		if err != nil {
			return nil, err
		}
		return expression.NewAggregate(name, f.Distinct, arg)
	}

	if f.Distinct {
		return nil, ErrUnsupportedSyntax.New(f)
	}

	args := make([]sql.Expression, len(f.Exprs))
	for i, e := range f.Exprs {
		arg, err := funcArgument(e)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	return expression.NewFunction(name, args...)
}

func funcArgument(se sqlparser.SelectExpr) (sql.Expression, error) {
	e, ok := se.(*sqlparser.AliasedExpr)
	if !ok || !e.As.IsEmpty() {
		return nil, ErrUnsupportedSyntax.New(se)
	}
	return exprToExpression(e.Expr)
}

func binaryExprToExpression(be *sqlparser.BinaryExpr) (sql.Expression, error) {
	switch be.Operator {
	case
		sqlparser.PlusStr,
		sqlparser.MinusStr,
		sqlparser.MultStr,
		sqlparser.DivStr,
		sqlparser.IntDivStr,
		sqlparser.ModStr:

		l, r, err := bothToExpression(be.Left, be.Right)
		if err != nil {
			return nil, err
		}

		return expression.NewArithmetic(l, r, be.Operator), nil

	default:
		return nil, ErrUnsupportedFeature.New(be.Operator)
	}
}

func unaryExprToExpression(u *sqlparser.UnaryExpr) (sql.Expression, error) {
	e, err := exprToExpression(u.Expr)
	if err != nil {
		return nil, err
	}

	switch u.Operator {
	case sqlparser.UMinusStr:
		return expression.NewUnaryMinus(e), nil
	case sqlparser.UPlusStr:
		return e, nil
	case sqlparser.BangStr:
		return expression.NewNot(e), nil
	default:
		return nil, ErrUnsupportedFeature.New(u.Operator)
	}
}
