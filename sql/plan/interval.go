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
	"fmt"
	"sort"
	"strings"

	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

// RangeCut is a position on the ordered line of values. It always sits
// between two values, never on one.
type RangeCut interface {
	fmt.Stringer
	// Compare returns -1, 0 or 1 as the cut sits below, at or above the
	// other cut.
	Compare(RangeCut) (int, error)
	// compareValue returns -1 if the cut is below the value and 1 otherwise.
	compareValue(v interface{}) (int, error)
}

// Below is the cut right below Key.
type Below struct{ Key interface{} }

// Above is the cut right above Key.
type Above struct{ Key interface{} }

// BelowAll is the cut below every value.
type BelowAll struct{}

// AboveAll is the cut above every value.
type AboveAll struct{}

func cutRank(c RangeCut) int {
	switch c.(type) {
	case BelowAll:
		return 0
	case AboveAll:
		return 2
	default:
		return 1
	}
}

func cutKey(c RangeCut) interface{} {
	switch c := c.(type) {
	case Below:
		return c.Key
	case Above:
		return c.Key
	default:
		return nil
	}
}

func compareCuts(a, b RangeCut) (int, error) {
	ra, rb := cutRank(a), cutRank(b)
	if ra != rb || ra != 1 {
		switch {
		case ra < rb:
			return -1, nil
		case ra > rb:
			return 1, nil
		default:
			return 0, nil
		}
	}

	cmp, err := sql.Compare(cutKey(a), cutKey(b))
	if err != nil || cmp != 0 {
		return cmp, err
	}

	_, aBelow := a.(Below)
	_, bBelow := b.(Below)
	switch {
	case aBelow == bBelow:
		return 0, nil
	case aBelow:
		return -1, nil
	default:
		return 1, nil
	}
}

// Compare implements the RangeCut interface.
func (c Below) Compare(o RangeCut) (int, error) { return compareCuts(c, o) }

// Compare implements the RangeCut interface.
func (c Above) Compare(o RangeCut) (int, error) { return compareCuts(c, o) }

// Compare implements the RangeCut interface.
func (c BelowAll) Compare(o RangeCut) (int, error) { return compareCuts(c, o) }

// Compare implements the RangeCut interface.
func (c AboveAll) Compare(o RangeCut) (int, error) { return compareCuts(c, o) }

func (c Below) compareValue(v interface{}) (int, error) {
	cmp, err := sql.Compare(c.Key, v)
	if err != nil {
		return 0, err
	}
	if cmp <= 0 {
		return -1, nil
	}
	return 1, nil
}

func (c Above) compareValue(v interface{}) (int, error) {
	cmp, err := sql.Compare(c.Key, v)
	if err != nil {
		return 0, err
	}
	if cmp < 0 {
		return -1, nil
	}
	return 1, nil
}

func (BelowAll) compareValue(interface{}) (int, error) { return -1, nil }
func (AboveAll) compareValue(interface{}) (int, error) { return 1, nil }

func (c Below) String() string  { return fmt.Sprintf("Below[%v]", c.Key) }
func (c Above) String() string  { return fmt.Sprintf("Above[%v]", c.Key) }
func (BelowAll) String() string { return "BelowAll" }
func (AboveAll) String() string { return "AboveAll" }

// Interval is the set of values between two cuts.
type Interval struct {
	Lower RangeCut
	Upper RangeCut
}

// IsEmpty reports whether no value lies between the cuts.
func (i Interval) IsEmpty() (bool, error) {
	cmp, err := i.Lower.Compare(i.Upper)
	return cmp >= 0, err
}

// Contains reports whether the value lies in the interval. NULL is never
// contained.
func (i Interval) Contains(v interface{}) (bool, error) {
	if v == nil {
		return false, nil
	}

	cmp, err := i.Lower.compareValue(v)
	if err != nil || cmp > 0 {
		return false, err
	}

	cmp, err = i.Upper.compareValue(v)
	if err != nil {
		return false, err
	}
	return cmp > 0, nil
}

func (i Interval) String() string {
	var b strings.Builder
	switch c := i.Lower.(type) {
	case Above:
		fmt.Fprintf(&b, "(%v", c.Key)
	case Below:
		fmt.Fprintf(&b, "[%v", c.Key)
	default:
		b.WriteString("(-∞")
	}
	b.WriteString(", ")
	switch c := i.Upper.(type) {
	case Above:
		fmt.Fprintf(&b, "%v]", c.Key)
	case Below:
		fmt.Fprintf(&b, "%v)", c.Key)
	default:
		b.WriteString("+∞)")
	}
	return b.String()
}

// IntervalSet is a sorted list of disjoint, non adjacent intervals.
type IntervalSet []Interval

// AllValues is the set containing every non NULL value.
func AllValues() IntervalSet {
	return IntervalSet{{BelowAll{}, AboveAll{}}}
}

// NewIntervalSet returns the set of values x for which "x op value" holds.
func NewIntervalSet(op expression.Operator, value interface{}) (IntervalSet, error) {
	if value == nil {
		return nil, nil
	}

	switch op {
	case expression.OpEquals:
		return IntervalSet{{Below{value}, Above{value}}}, nil
	case expression.OpNotEquals:
		return IntervalSet{{BelowAll{}, Below{value}}, {Above{value}, AboveAll{}}}, nil
	case expression.OpLessThan:
		return IntervalSet{{BelowAll{}, Below{value}}}, nil
	case expression.OpLessOrEqual:
		return IntervalSet{{BelowAll{}, Above{value}}}, nil
	case expression.OpGreaterThan:
		return IntervalSet{{Above{value}, AboveAll{}}}, nil
	case expression.OpGreaterOrEqual:
		return IntervalSet{{Below{value}, AboveAll{}}}, nil
	default:
		return nil, expression.ErrInvalidOperator.New(op)
	}
}

// Contains reports whether any interval of the set contains the value.
func (s IntervalSet) Contains(v interface{}) (bool, error) {
	for _, i := range s {
		ok, err := i.Contains(v)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// Intersect returns the values present in both sets.
func (s IntervalSet) Intersect(o IntervalSet) (IntervalSet, error) {
	var result IntervalSet
	for _, a := range s {
		for _, b := range o {
			lower, err := maxCut(a.Lower, b.Lower)
			if err != nil {
				return nil, err
			}
			upper, err := minCut(a.Upper, b.Upper)
			if err != nil {
				return nil, err
			}

			i := Interval{lower, upper}
			empty, err := i.IsEmpty()
			if err != nil {
				return nil, err
			}
			if !empty {
				result = append(result, i)
			}
		}
	}
	return result.normalize()
}

// Union returns the values present in any of the sets.
func (s IntervalSet) Union(o IntervalSet) (IntervalSet, error) {
	result := make(IntervalSet, 0, len(s)+len(o))
	result = append(result, s...)
	result = append(result, o...)
	return result.normalize()
}

// normalize sorts the intervals and merges those that overlap or touch.
func (s IntervalSet) normalize() (IntervalSet, error) {
	if len(s) == 0 {
		return nil, nil
	}

	var err error
	sort.SliceStable(s, func(i, j int) bool {
		cmp, e := s[i].Lower.Compare(s[j].Lower)
		if e != nil {
			err = e
		}
		return cmp < 0
	})
	if err != nil {
		return nil, err
	}

	result := IntervalSet{s[0]}
	for _, i := range s[1:] {
		last := &result[len(result)-1]
		cmp, err := i.Lower.Compare(last.Upper)
		if err != nil {
			return nil, err
		}

		if cmp > 0 {
			result = append(result, i)
			continue
		}

		last.Upper, err = maxCut(last.Upper, i.Upper)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s IntervalSet) String() string {
	if len(s) == 0 {
		return "EMPTY"
	}

	parts := make([]string, len(s))
	for i, interval := range s {
		parts[i] = interval.String()
	}
	return strings.Join(parts, ", ")
}

func maxCut(a, b RangeCut) (RangeCut, error) {
	cmp, err := a.Compare(b)
	if err != nil {
		return nil, err
	}
	if cmp >= 0 {
		return a, nil
	}
	return b, nil
}

func minCut(a, b RangeCut) (RangeCut, error) {
	cmp, err := a.Compare(b)
	if err != nil {
		return nil, err
	}
	if cmp <= 0 {
		return a, nil
	}
	return b, nil
}
