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
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
	"gopkg.in/src-d/go-queryplan.v0/sql/plan"
)

// planSearchExpression plans the outer joins of the sources and then the
// condition, returning the plan of the whole block.
func (t *tableSetPlanner) planSearchExpression(cond sql.Expression) (sql.Node, error) {
	if err := t.planAllOuterJoins(); err != nil {
		return nil, err
	}
	return t.logicalEvaluate(cond)
}

// logicalEvaluate plans the condition, which may be nil, and joins the
// remaining sources into one.
func (t *tableSetPlanner) logicalEvaluate(cond sql.Expression) (sql.Node, error) {
	if cond != nil {
		if err := t.planExpression(cond); err != nil {
			return nil, err
		}
	}

	if err := t.naturalJoinAll(); err != nil {
		return nil, err
	}
	return t.plan(t.single()), nil
}

func (t *tableSetPlanner) planExpression(e sql.Expression) error {
	if left, op, right, ok := expression.Split(e); ok && op == expression.OpOr {
		if _, ok := rangeVariable(e); !ok {
			return t.planDisjunction(left, right)
		}
	}
	return t.planExpressionList(expression.SplitConjunction(e))
}

// planDisjunction plans each side of an OR on its own copy of the planner
// and unions, source by source, the plans the sides changed.
func (t *tableSetPlanner) planDisjunction(l, r sql.Expression) error {
	t.setCachePoints()

	left, right := t.copy(), t.copy()
	if err := left.planExpression(l); err != nil {
		return err
	}
	if err := right.planExpression(r); err != nil {
		return err
	}

	if len(left.live) != len(right.live) || left.joined || right.joined {
		if err := left.naturalJoinAll(); err != nil {
			return err
		}
		if err := right.naturalJoinAll(); err != nil {
			return err
		}
	}

	var leftJoin, rightJoin []int
	for i := range left.live {
		li, ri := left.live[i], right.live[i]
		if left.arena[li].updated || right.arena[ri].updated {
			leftJoin = append(leftJoin, li)
			rightJoin = append(rightJoin, ri)
		}
	}

	if _, err := left.joinAllPlansToSingleSource(leftJoin); err != nil {
		return err
	}
	if _, err := right.joinAllPlansToSingleSource(rightJoin); err != nil {
		return err
	}

	// Clashing outer joins may pull more sources into one side.
	if len(left.live) != len(right.live) {
		if err := left.naturalJoinAll(); err != nil {
			return err
		}
		if err := right.naturalJoinAll(); err != nil {
			return err
		}
	}

	for i := range left.live {
		li, ri := left.live[i], right.live[i]
		if left.arena[li].updated || right.arena[ri].updated {
			left.updatePlan(li, plan.NewLogicalUnion(left.plan(li), right.plan(ri)))
		}
	}

	t.arena, t.live = left.arena, left.live
	t.joined = t.joined || left.joined || right.joined
	return nil
}
