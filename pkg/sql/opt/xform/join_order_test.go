// Copyright 2019 The Cockroach Authors.
// Copyright (c) 2022-present, Shanghai Yunxi Technology Co, Ltd. All rights reserved.
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
//
// This software (KWDB) is licensed under Mulan PSL v2.
// You can use this software according to the terms and conditions of the Mulan PSL v2.
// You may obtain a copy of Mulan PSL v2 at:
//          http://license.coscl.org.cn/MulanPSL2
// THIS SOFTWARE IS PROVIDED ON AN "AS IS" BASIS, WITHOUT WARRANTIES OF ANY KIND,
// EITHER EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO NON-INFRINGEMENT,
// MERCHANTABILITY OR FIT FOR A PARTICULAR PURPOSE.
// See the Mulan PSL v2 for more details.

package xform

import (
	"testing"

	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/memo"
	"github.com/stretchr/testify/require"
)

// collectPlan gathers the scans, join nodes and placed conditions of a built
// join tree.
func collectPlan(t *testing.T, e memo.RelExpr) (scans []string, joins int, placed []memo.ScalarExpr) {
	t.Helper()
	switch n := e.(type) {
	case *memo.ScanExpr:
		scans = append(scans, n.Table)
	case *memo.SelectExpr:
		placed = append(placed, n.Filters...)
		s, j, p := collectPlan(t, n.Input)
		scans = append(scans, s...)
		joins += j
		placed = append(placed, p...)
	case *memo.JoinExpr:
		joins++
		placed = append(placed, n.On...)
		for _, child := range []memo.RelExpr{n.Left, n.Right} {
			s, j, p := collectPlan(t, child)
			scans = append(scans, s...)
			joins += j
			placed = append(placed, p...)
		}
	default:
		t.Fatalf("unexpected node %T", e)
	}
	return scans, joins, placed
}

func TestBuildJoinOrder(t *testing.T) {
	tc := newStarCatalog(t)
	conds := parseFilters(t, tc, starQueryConds)

	result := BuildJoinOrder(scanLegs(tc, "f", "d2", "d1"), conds)

	// N legs need exactly N-1 joins, every leg appears once and every
	// condition is placed exactly once.
	scans, joins, placed := collectPlan(t, result)
	require.ElementsMatch(t, []string{"f", "d1", "d2"}, scans)
	require.Equal(t, 2, joins)
	require.ElementsMatch(t, conds, placed)

	// f and d2 join first; the d1 conditions wait for the outer join.
	join := result.(*memo.JoinExpr)
	inner := join.Left.(*memo.JoinExpr)
	require.Equal(t, "f", inner.Left.(*memo.ScanExpr).Table)
	require.Equal(t, "d2", inner.Right.(*memo.ScanExpr).Table)
	require.Len(t, inner.On, 1)
	require.Len(t, join.On, 2)
	require.Equal(t, "d1", join.Right.(*memo.ScanExpr).Table)
}

func TestBuildJoinOrderSkipsDisconnectedLeg(t *testing.T) {
	tc := newStarCatalog(t)

	// d2 shares no condition with d1, so after starting at d1 the builder
	// joins f first and d2 last.
	conds := parseFilters(t, tc, starQueryConds)
	result := BuildJoinOrder(scanLegs(tc, "d1", "d2", "f"), conds)

	join := result.(*memo.JoinExpr)
	inner := join.Left.(*memo.JoinExpr)
	require.Equal(t, "d1", inner.Left.(*memo.ScanExpr).Table)
	require.Equal(t, "f", inner.Right.(*memo.ScanExpr).Table)
	require.Equal(t, "d2", join.Right.(*memo.ScanExpr).Table)

	// The local d1 predicate is consumed by the first join that covers it.
	require.Len(t, inner.On, 2)
	require.Len(t, join.On, 1)
}

func TestBuildJoinOrderCartesianFallback(t *testing.T) {
	tc := newStarCatalog(t)

	// The leading leg connects to nothing, so the builder accepts a product
	// with the positionally next leg before the condition becomes placeable.
	conds := parseFilters(t, tc, "f.fk1 = d1.pk")
	result := BuildJoinOrder(scanLegs(tc, "d2", "d1", "f"), conds)

	join := result.(*memo.JoinExpr)
	product := join.Left.(*memo.JoinExpr)
	require.Equal(t, "d2", product.Left.(*memo.ScanExpr).Table)
	require.Equal(t, "d1", product.Right.(*memo.ScanExpr).Table)
	require.Empty(t, product.On)
	require.Equal(t, conds, join.On)
}

func TestBuildJoinOrderResidualFilter(t *testing.T) {
	tc := newStarCatalog(t)

	// An opaque condition can never be placed on a join and ends up as a
	// residual filter over the final tree.
	conds := parseFilters(t, tc, "f.fk1 = d1.pk; unsupported(f.c, d1.a)")
	result := BuildJoinOrder(scanLegs(tc, "f", "d1"), conds)

	sel, ok := result.(*memo.SelectExpr)
	require.True(t, ok)
	require.Equal(t, conds[1:], sel.Filters)
	join := sel.Input.(*memo.JoinExpr)
	require.Equal(t, conds[:1], join.On)
}

func TestBuildJoinOrderCrossLegs(t *testing.T) {
	tc := newStarCatalog(t)
	conds := parseFilters(t, tc, "f.fk1 = d1.pk")

	legs := scanLegs(tc, "f", "d1")
	legs[1].JoinType = memo.CrossJoin
	result := BuildJoinOrder(legs, conds)

	// A leg declared cross keeps the pairing from claiming inner semantics.
	join := result.(*memo.JoinExpr)
	require.Equal(t, memo.CrossJoin, join.JoinType)
	require.Equal(t, conds, join.On)
}

func TestBuildJoinOrderPanicsOnSingleLeg(t *testing.T) {
	tc := newStarCatalog(t)
	require.Panics(t, func() {
		BuildJoinOrder(scanLegs(tc, "f"), nil)
	})
}

func TestReorderJoins(t *testing.T) {
	tc := newStarCatalog(t)
	conds := parseFilters(t, tc, starQueryConds)

	// A select over a left-deep inner join group reorders into star order
	// when detection is on.
	group := &memo.JoinExpr{
		Left: &memo.JoinExpr{
			Left:     tc.Scan("d1"),
			Right:    tc.Scan("f"),
			JoinType: memo.InnerJoin,
		},
		Right:    tc.Scan("d2"),
		JoinType: memo.InnerJoin,
	}
	plan := &memo.SelectExpr{Input: group, Filters: conds}

	result := ReorderJoins(plan, starSettings())
	join := result.(*memo.JoinExpr)
	inner := join.Left.(*memo.JoinExpr)
	require.Equal(t, "f", inner.Left.(*memo.ScanExpr).Table)
	require.Equal(t, "d2", inner.Right.(*memo.ScanExpr).Table)
	require.Equal(t, "d1", join.Right.(*memo.ScanExpr).Table)

	scans, joins, placed := collectPlan(t, result)
	require.ElementsMatch(t, []string{"f", "d1", "d2"}, scans)
	require.Equal(t, 2, joins)
	require.ElementsMatch(t, conds, placed)
}

func TestReorderJoinsKeepsAllRelations(t *testing.T) {
	tc := newStarCatalog(t)

	// d3 is joined on a non-unique column and falls outside the star; the
	// rewritten plan must still contain every relation and place every
	// condition.
	conds := parseFilters(t, tc, "f.fk1 = d1.pk; f.fk2 = d2.pk; f.c = d3.pk; d1.a = 'x'")
	var group memo.RelExpr = tc.Scan("d3")
	for _, tab := range []string{"d1", "f", "d2"} {
		group = &memo.JoinExpr{Left: group, Right: tc.Scan(tab), JoinType: memo.InnerJoin}
	}
	plan := &memo.SelectExpr{Input: group, Filters: conds}

	result := ReorderJoins(plan, starSettings())
	scans, joins, placed := collectPlan(t, result)
	require.ElementsMatch(t, []string{"f", "d1", "d2", "d3"}, scans)
	require.Equal(t, 3, joins)
	require.ElementsMatch(t, conds, placed)

	// The star is rebuilt first; d3 joins last.
	join := result.(*memo.JoinExpr)
	require.Equal(t, "d3", join.Right.(*memo.ScanExpr).Table)
}

func TestReorderJoinsLeavesConditionlessGroup(t *testing.T) {
	tc := newStarCatalog(t)
	group := &memo.JoinExpr{
		Left:     tc.Scan("d1"),
		Right:    tc.Scan("d2"),
		JoinType: memo.CrossJoin,
	}
	require.Same(t, memo.RelExpr(group), ReorderJoins(group, starSettings()))
}

func TestReorderJoinsBelowOuterJoin(t *testing.T) {
	tc := newStarCatalog(t)
	conds := parseFilters(t, tc, "f.fk1 = d1.pk")

	// An outer join is a group boundary; the inner group beneath it still
	// reorders, while the boundary and the untouched side are shared.
	inner := &memo.SelectExpr{
		Input: &memo.JoinExpr{
			Left:     tc.Scan("d1"),
			Right:    tc.Scan("f"),
			JoinType: memo.InnerJoin,
		},
		Filters: conds,
	}
	d2 := tc.Scan("d2")
	outer := &memo.JoinExpr{
		Left:     inner,
		Right:    d2,
		JoinType: memo.LeftOuterJoin,
	}

	result := ReorderJoins(outer, opt.DefaultSettings())
	newOuter := result.(*memo.JoinExpr)
	require.NotSame(t, outer, newOuter)
	require.Equal(t, memo.LeftOuterJoin, newOuter.JoinType)
	require.Same(t, memo.RelExpr(d2), newOuter.Right)

	rebuilt := newOuter.Left.(*memo.JoinExpr)
	require.Equal(t, conds, rebuilt.On)
}
