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
	"strings"

	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/ast"
	"gopkg.in/src-d/go-queryplan.v0/sql/plan"
)

// planSource is a plan under construction together with the columns it
// provides. Sources are addressed by their index in the planner arena;
// left and right hold the index of an outer join neighbour or -1.
type planSource struct {
	plan  sql.Node
	vars  []sql.Variable
	names []string

	left      int
	leftType  ast.JoinType
	leftOn    sql.Expression
	right     int
	rightType ast.JoinType
	rightOn   sql.Expression

	updated bool
}

func (s *planSource) containsVariable(v sql.Variable) bool {
	for _, o := range s.vars {
		if o == v {
			return true
		}
	}
	return false
}

func (s *planSource) String() string {
	return strings.Join(s.names, ",")
}

// tableSetPlanner combines the sources of a query block into a single
// plan. The live list holds the arena indices of the sources that were
// not merged yet; together they provide every column of the block.
type tableSetPlanner struct {
	planner *Planner
	arena   []*planSource
	live    []int
	joined  bool
}

func newTableSetPlanner(p *Planner) *tableSetPlanner {
	return &tableSetPlanner{planner: p}
}

func (t *tableSetPlanner) addTableSource(node sql.Node, vars []sql.Variable, names ...string) int {
	i := len(t.arena)
	t.arena = append(t.arena, &planSource{
		plan:  node,
		vars:  vars,
		names: names,
		left:  -1,
		right: -1,
	})
	t.live = append(t.live, i)
	return i
}

// copy returns a planner sharing the plans of t. Changes to the copy do
// not affect t and the sources of the copy start as not updated.
func (t *tableSetPlanner) copy() *tableSetPlanner {
	c := &tableSetPlanner{
		planner: t.planner,
		arena:   make([]*planSource, len(t.arena)),
		live:    append([]int(nil), t.live...),
	}
	for i, s := range t.arena {
		ns := *s
		ns.updated = false
		c.arena[i] = &ns
	}
	return c
}

// detached returns a planner over the given sources with no join links.
func (t *tableSetPlanner) detached(indices ...int) *tableSetPlanner {
	c := newTableSetPlanner(t.planner)
	for _, i := range indices {
		s := t.arena[i]
		c.addTableSource(s.plan, s.vars, s.names...)
	}
	return c
}

func (t *tableSetPlanner) plan(i int) sql.Node { return t.arena[i].plan }

func (t *tableSetPlanner) updatePlan(i int, node sql.Node) {
	t.arena[i].plan = node
	t.arena[i].updated = true
}

func (t *tableSetPlanner) single() int { return t.live[0] }

func (t *tableSetPlanner) setJoinInfoBetweenSources(l, r int, typ ast.JoinType, on sql.Expression) {
	t.linkRight(l, r, typ, on)
}

func (t *tableSetPlanner) linkRight(l, r int, typ ast.JoinType, on sql.Expression) {
	left, right := t.arena[l], t.arena[r]
	left.right, left.rightType, left.rightOn = r, typ, on
	right.left, right.leftType, right.leftOn = l, typ, on
}

// mergeTables replaces the sources l and r with a new source planned by
// node and returns its index. The outer join links of l and r that do not
// point to each other move to the new source.
func (t *tableSetPlanner) mergeTables(l, r int, node sql.Node) int {
	left, right := t.arena[l], t.arena[r]

	vars := make([]sql.Variable, 0, len(left.vars)+len(right.vars))
	vars = append(append(vars, left.vars...), right.vars...)
	names := make([]string, 0, len(left.names)+len(right.names))
	names = append(append(names, left.names...), right.names...)

	c := len(t.arena)
	merged := &planSource{
		plan:    node,
		vars:    vars,
		names:   names,
		left:    -1,
		right:   -1,
		updated: true,
	}
	t.arena = append(t.arena, merged)

	if left.right != r {
		if left.right >= 0 {
			t.linkRight(c, left.right, left.rightType, left.rightOn)
		}
		if right.left >= 0 {
			t.linkRight(right.left, c, right.leftType, right.leftOn)
		}
	}
	if left.left != r {
		if merged.left < 0 && left.left >= 0 {
			t.linkRight(left.left, c, left.leftType, left.leftOn)
		}
		if merged.right < 0 && right.right >= 0 {
			t.linkRight(c, right.right, right.rightType, right.rightOn)
		}
	}

	live := make([]int, 0, len(t.live))
	for _, i := range t.live {
		if i != l && i != r {
			live = append(live, i)
		}
	}
	t.live = append(live, c)
	t.joined = true

	t.planner.Log("merged %s and %s", left, right)
	return c
}

// findTableSource returns the live source providing the column. A single
// live source provides every column.
func (t *tableSetPlanner) findTableSource(v sql.Variable) (int, error) {
	if len(t.live) == 1 {
		return t.live[0], nil
	}
	for _, i := range t.live {
		if t.arena[i].containsVariable(v) {
			return i, nil
		}
	}
	return -1, ErrNoTableSource.New(v)
}

// findCommonTableSource returns the live source providing all the columns,
// or -1 if they come from different sources.
func (t *tableSetPlanner) findCommonTableSource(vars []sql.Variable) int {
	if len(vars) == 0 {
		return -1
	}

	common, err := t.findTableSource(vars[0])
	if err != nil {
		return -1
	}
	for _, v := range vars[1:] {
		if i, err := t.findTableSource(v); err != nil || i != common {
			return -1
		}
	}
	return common
}

// joinAllPlansWithVariables joins the sources providing the columns and
// returns the resulting source.
func (t *tableSetPlanner) joinAllPlansWithVariables(vars []sql.Variable) (int, error) {
	if len(vars) == 0 {
		return t.live[0], nil
	}

	var touched []int
	for _, v := range vars {
		i, err := t.findTableSource(v)
		if err != nil {
			return -1, err
		}
		if !containsIndex(touched, i) {
			touched = append(touched, i)
		}
	}
	return t.joinAllPlansToSingleSource(touched)
}

// canPlansBeNaturallyJoined returns 0 when the sources can be joined with
// each other, 1 when their right links clash and 2 when their left links
// clash.
func (t *tableSetPlanner) canPlansBeNaturallyJoined(a, b int) int {
	p1, p2 := t.arena[a], t.arena[b]
	switch {
	case p1.left == b || p1.right == b:
		return 0
	case p1.left >= 0 && p2.left >= 0:
		return 2
	case p1.right >= 0 && p2.right >= 0:
		return 1
	case (p1.left < 0 && p1.right < 0) || (p2.left < 0 && p2.right < 0):
		return 0
	default:
		return 2
	}
}

// joinAllPlansToSingleSource joins the given sources, resolving outer join
// clashes by joining the clashing neighbour first.
func (t *tableSetPlanner) joinAllPlansToSingleSource(list []int) (int, error) {
	switch len(list) {
	case 0:
		return -1, nil
	case 1:
		return list[0], nil
	}

	work := append([]int(nil), list...)
	for len(work) > 1 {
		a := work[0]
		other := work[1]
		switch t.canPlansBeNaturallyJoined(a, other) {
		case 1:
			other = t.arena[a].right
		case 2:
			other = t.arena[a].left
		}

		merged, err := t.naturallyJoinPlans(a, other)
		if err != nil {
			return -1, err
		}

		rest := []int{merged}
		for _, i := range work {
			if i != a && i != other {
				rest = append(rest, i)
			}
		}
		work = rest
	}
	return work[0], nil
}

// naturallyJoinPlans joins two sources. Sources linked by a join are
// joined through their ON expression, any other pair is combined with a
// natural join.
func (t *tableSetPlanner) naturallyJoinPlans(a, b int) (int, error) {
	p1, p2 := t.arena[a], t.arena[b]

	var (
		typ  ast.JoinType
		on   sql.Expression
		l, r int
	)
	switch {
	case p1.right == b:
		typ, on, l, r = p1.rightType, p1.rightOn, a, b
	case p1.left == b:
		typ, on, l, r = p1.leftType, p1.leftOn, b, a
	default:
		if (p1.left >= 0 && p2.left >= 0) || (p1.right >= 0 && p2.right >= 0) {
			return -1, ErrMalformedOuterJoin.New(p1, p2)
		}
		return t.mergeTables(a, b, plan.NewNaturalJoin(p1.plan, p2.plan)), nil
	}

	var marker string
	switch typ {
	case ast.JoinLeft:
		marker = plan.NextMarkerName()
		t.updatePlan(l, plan.NewMarker(marker, t.plan(l)))
	case ast.JoinRight:
		marker = plan.NextMarkerName()
		t.updatePlan(r, plan.NewMarker(marker, t.plan(r)))
	}

	node, err := t.detached(l, r).logicalEvaluate(on)
	if err != nil {
		return -1, err
	}
	if marker != "" {
		node = plan.NewLeftOuterJoin(marker, node)
	}

	return t.mergeTables(a, b, node), nil
}

// planAllOuterJoins joins every pair of adjacent sources linked by a join.
func (t *tableSetPlanner) planAllOuterJoins() error {
	if len(t.live) <= 1 {
		return nil
	}

	work := append([]int(nil), t.live...)
	current := work[0]
	for _, next := range work[1:] {
		if t.arena[current].right != next {
			current = next
			continue
		}

		var err error
		current, err = t.naturallyJoinPlans(current, next)
		if err != nil {
			return err
		}
	}
	return nil
}

// naturalJoinAll joins every live source into one.
func (t *tableSetPlanner) naturalJoinAll() error {
	if len(t.live) <= 1 {
		return nil
	}
	_, err := t.joinAllPlansToSingleSource(append([]int(nil), t.live...))
	return err
}

// setCachePoints makes every live plan evaluate at most once, so that
// branches of a disjunction share it. The sources are not marked updated.
func (t *tableSetPlanner) setCachePoints() {
	for _, i := range t.live {
		if _, ok := t.arena[i].plan.(*plan.CachePoint); !ok {
			t.arena[i].plan = plan.NewCachePoint(t.arena[i].plan)
		}
	}
}

func containsIndex(list []int, i int) bool {
	for _, o := range list {
		if o == i {
			return true
		}
	}
	return false
}
