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

package planner

import (
	"fmt"
	"sort"

	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
	"gopkg.in/src-d/go-queryplan.v0/sql/plan"
)

type planKind byte

const (
	constantPlan planKind = iota
	rangePlan
	simpleSelectPlan
	exhaustiveSinglePlan
	simplePatternPlan
	exhaustivePlan
	simpleSubqueryPlan
	exhaustiveSubqueryPlan
	standardJoinPlan
	exhaustiveJoinPlan
	subLogicPlan
)

var planKindNames = [...]string{
	constantPlan:           "Constant",
	rangePlan:              "Range",
	simpleSelectPlan:       "SimpleSelect",
	exhaustiveSinglePlan:   "ExhaustiveSingle",
	simplePatternPlan:      "SimplePattern",
	exhaustivePlan:         "Exhaustive",
	simpleSubqueryPlan:     "SimpleSubQuery",
	exhaustiveSubqueryPlan: "ExhaustiveSubQuery",
	standardJoinPlan:       "StandardJoin",
	exhaustiveJoinPlan:     "ExhaustiveJoin",
	subLogicPlan:           "SubLogic",
}

func (k planKind) String() string { return planKindNames[k] }

// Scores of the expression plans. Plans with lower scores are applied
// first.
const (
	constantScore           = 0
	rangeScore              = 0.2
	simpleSelectScore       = 0.2
	simplePatternScore      = 0.25
	simpleSubqueryScore     = 0.3
	subLogicScore           = 0.58
	columnJoinScore         = 0.60
	expressionJoinScore     = 0.64
	exhaustiveJoinScore     = 0.68
	subLogicJoinScore       = 0.70
	exhaustiveSingleScore   = 0.8
	exhaustiveScore         = 0.82
	exhaustiveSubqueryScore = 0.85
)

// expressionPlan is a part of a condition together with the way it is
// added to the plan.
type expressionPlan struct {
	kind  planKind
	score float64
	expr  sql.Expression

	// source is the arena index the plan was classified against. It is
	// only used to group plans of the same source.
	source int
	v      sql.Variable
	vars   []sql.Variable

	op         expression.Operator
	operand    sql.Expression
	quantifier expression.Quantifier
	subplan    sql.Node
}

func (p *expressionPlan) String() string {
	return fmt.Sprintf("%s(%.2f) %s", p.kind, p.score, p.expr)
}

// planExpressionList classifies the conjuncts of a condition, sorts them
// by score and applies them in that order.
func (t *tableSetPlanner) planExpressionList(exprs []sql.Expression) error {
	var plans []*expressionPlan
	add := func(p *expressionPlan) { plans = append(plans, p) }

	// combine ANDs e into a plan of the same kind and source, if any.
	combine := func(kind planKind, source int, v *sql.Variable, e sql.Expression) bool {
		for _, p := range plans {
			if p.kind == kind && p.source == source && (v == nil || p.v == *v) {
				p.expr = expression.NewAnd(p.expr, e)
				return true
			}
		}
		return false
	}

	for _, e := range exprs {
		left, op, right, isSplit := expression.Split(e)

		switch {
		case op.IsLogical():
			if v, ok := rangeVariable(e); ok {
				src, err := t.findTableSource(v)
				if err != nil {
					return err
				}
				if !combine(rangePlan, src, &v, e) {
					add(&expressionPlan{kind: rangePlan, score: rangeScore, expr: e, source: src, v: v})
				}
				continue
			}
			add(t.classifySubLogic(e))

		case expression.HasSubquery(e):
			add(t.classifySubquery(e))

		case op.IsPattern():
			vars := expression.DistinctVariables(e)
			if len(vars) == 0 {
				add(&expressionPlan{kind: constantPlan, score: constantScore, expr: e})
				continue
			}
			if v, ok := expression.AsVariable(left); ok && expression.IsConstant(right) {
				add(&expressionPlan{
					kind:    simplePatternPlan,
					score:   simplePatternScore,
					expr:    e,
					v:       v,
					op:      op,
					operand: right,
				})
				continue
			}
			add(&expressionPlan{kind: exhaustivePlan, score: exhaustiveScore, expr: e, vars: vars})

		default:
			vars := expression.DistinctVariables(e)
			switch len(vars) {
			case 0:
				add(&expressionPlan{kind: constantPlan, score: constantScore, expr: e})
			case 1:
				v := vars[0]
				src, err := t.findTableSource(v)
				if err != nil {
					return err
				}

				if isSplit && op.IsMembership() {
					if lv, ok := expression.AsVariable(left); ok && lv == v && expression.IsConstant(right) {
						add(&expressionPlan{
							kind:    simpleSelectPlan,
							score:   simpleSelectScore,
							expr:    e,
							source:  src,
							v:       v,
							op:      op,
							operand: right,
						})
						continue
					}
				}

				if _, ok := rangeVariable(e); ok {
					if !combine(rangePlan, src, &v, e) {
						add(&expressionPlan{kind: rangePlan, score: rangeScore, expr: e, source: src, v: v})
					}
					continue
				}

				if !combine(exhaustiveSinglePlan, src, nil, e) {
					add(&expressionPlan{
						kind:   exhaustiveSinglePlan,
						score:  exhaustiveSingleScore,
						expr:   e,
						source: src,
						v:      v,
					})
				}
			default:
				add(classifyMultiple(e, vars))
			}
		}
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].score < plans[j].score
	})

	for _, p := range plans {
		t.planner.Log("applying %s", p)
		if err := t.apply(p); err != nil {
			return err
		}
	}
	return nil
}

func (t *tableSetPlanner) classifySubLogic(e sql.Expression) *expressionPlan {
	score := subLogicScore
	for _, branch := range expression.SplitDisjunction(e) {
		vars := append(expression.DistinctVariables(branch), correlatedVariables(branch)...)
		if len(vars) > 0 && t.findCommonTableSource(vars) < 0 {
			score = subLogicJoinScore
			break
		}
	}
	return &expressionPlan{kind: subLogicPlan, score: score, expr: e}
}

func (t *tableSetPlanner) classifySubquery(e sql.Expression) *expressionPlan {
	if cmp, ok := e.(*expression.Comparison); ok {
		subplan, isPlan := expression.SubqueryPlan(cmp.Right)
		v, isVar := expression.AsVariable(cmp.Left)
		if isPlan && isVar && len(plan.DiscoverCorrelated(subplan, 1)) == 0 {
			return &expressionPlan{
				kind:       simpleSubqueryPlan,
				score:      simpleSubqueryScore,
				expr:       e,
				v:          v,
				op:         cmp.Op,
				quantifier: cmp.Quantifier,
				subplan:    subplan,
			}
		}
	}

	vars := expression.DistinctVariables(e)
	for _, v := range correlatedVariables(e) {
		vars = appendDistinct(vars, v)
	}
	if len(vars) == 0 {
		return &expressionPlan{kind: constantPlan, score: constantScore, expr: e}
	}
	return &expressionPlan{kind: exhaustiveSubqueryPlan, score: exhaustiveSubqueryScore, expr: e, vars: vars}
}

func classifyMultiple(e sql.Expression, vars []sql.Variable) *expressionPlan {
	left, op, right, ok := expression.Split(e)
	if ok && op.IsRange() {
		_, leftVar := expression.AsVariable(left)
		_, rightVar := expression.AsVariable(right)
		switch {
		case leftVar && rightVar:
			return &expressionPlan{kind: standardJoinPlan, score: columnJoinScore, expr: e, vars: vars}
		case leftVar || rightVar:
			return &expressionPlan{kind: standardJoinPlan, score: expressionJoinScore, expr: e, vars: vars}
		}
	}
	return &expressionPlan{kind: exhaustiveJoinPlan, score: exhaustiveJoinScore, expr: e, vars: vars}
}

// apply adds the expression plan to the plans of the sources.
func (t *tableSetPlanner) apply(p *expressionPlan) error {
	switch p.kind {
	case constantPlan:
		for _, i := range t.live {
			t.updatePlan(i, plan.NewConstantSelect(p.expr, t.plan(i)))
		}
		return nil
	case subLogicPlan:
		return t.planExpression(p.expr)
	case standardJoinPlan:
		return t.applyStandardJoin(p)
	case exhaustiveJoinPlan:
		return t.applyExhaustiveJoin(p)
	case exhaustivePlan, exhaustiveSubqueryPlan:
		return t.applyExhaustive(p.expr, p.vars)
	}

	i, err := t.findTableSource(p.v)
	if err != nil {
		return err
	}

	switch p.kind {
	case rangePlan:
		t.updatePlan(i, plan.NewRange(p.v, p.expr, t.plan(i)))
	case simpleSelectPlan:
		t.updatePlan(i, plan.NewSimpleSelect(p.v, p.op, p.operand, t.plan(i)))
	case exhaustiveSinglePlan:
		t.updatePlan(i, plan.NewExhaustive(p.expr, t.plan(i)))
	case simplePatternPlan:
		t.updatePlan(i, plan.NewSimplePattern(p.v, p.op, p.operand, t.plan(i)))
	case simpleSubqueryPlan:
		if len(plan.DiscoverCorrelated(p.subplan, 1)) > 0 {
			return ErrCorrelatedSubquery.New(p.expr)
		}
		t.updatePlan(i, plan.NewMembershipTest(p.v, p.op, p.quantifier, p.subplan, t.plan(i)))
	}
	return nil
}

func (t *tableSetPlanner) applyExhaustive(e sql.Expression, vars []sql.Variable) error {
	i, err := t.joinAllPlansWithVariables(vars)
	if err != nil {
		return err
	}
	t.updatePlan(i, plan.NewExhaustive(e, t.plan(i)))
	return nil
}

// joinSides joins the sources of each side of a comparison and returns the
// resulting sources, which are the same if the sides share a source.
func (t *tableSetPlanner) joinSides(left, right []sql.Variable) (int, int, error) {
	if _, err := t.joinAllPlansWithVariables(left); err != nil {
		return -1, -1, err
	}
	r, err := t.joinAllPlansWithVariables(right)
	if err != nil {
		return -1, -1, err
	}
	l, err := t.findTableSource(left[0])
	return l, r, err
}

func (t *tableSetPlanner) applyStandardJoin(p *expressionPlan) error {
	left, op, right, _ := expression.Split(p.expr)
	lv, leftVar := expression.AsVariable(left)
	rv, _ := expression.AsVariable(right)

	l, r, err := t.joinSides(expression.DistinctVariables(left), expression.DistinctVariables(right))
	if err != nil {
		return err
	}
	if l == r {
		return t.applyExhaustive(p.expr, p.vars)
	}

	if leftVar {
		t.mergeTables(l, r, plan.NewStandardJoin(t.plan(l), t.plan(r), lv, op, right))
	} else {
		t.mergeTables(r, l, plan.NewStandardJoin(t.plan(r), t.plan(l), rv, op.Reverse(), left))
	}
	return nil
}

func (t *tableSetPlanner) applyExhaustiveJoin(p *expressionPlan) error {
	left, _, right, ok := expression.Split(p.expr)
	if ok {
		lvars, rvars := expression.DistinctVariables(left), expression.DistinctVariables(right)
		if len(lvars) > 0 && len(rvars) > 0 {
			l, r, err := t.joinSides(lvars, rvars)
			if err != nil {
				return err
			}
			if l != r {
				t.mergeTables(l, r, plan.NewExhaustiveJoin(t.plan(l), t.plan(r), p.expr))
				return nil
			}
		}
	}
	return t.applyExhaustive(p.expr, p.vars)
}

// rangeVariable returns the column an AND/OR tree of comparisons is about,
// when every comparison compares that column with a constant.
func rangeVariable(e sql.Expression) (sql.Variable, bool) {
	left, op, right, ok := expression.Split(e)
	if !ok {
		return sql.Variable{}, false
	}

	if op.IsLogical() {
		lv, lok := rangeVariable(left)
		rv, rok := rangeVariable(right)
		return lv, lok && rok && lv == rv
	}

	if !op.IsRange() {
		return sql.Variable{}, false
	}
	if v, ok := expression.AsVariable(left); ok && expression.IsConstant(right) {
		return v, true
	}
	if v, ok := expression.AsVariable(right); ok && expression.IsConstant(left) {
		return v, true
	}
	return sql.Variable{}, false
}

// correlatedVariables returns the columns of the current block referenced
// from inside the sub-queries of the expression.
func correlatedVariables(e sql.Expression) []sql.Variable {
	var vars []sql.Variable
	for _, c := range expression.DiscoverCorrelated(e, 0, nil) {
		vars = appendDistinct(vars, c.Name())
	}
	return vars
}
