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
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/memo"
	"gitee.com/kwbasedb/kwopt/pkg/util/log"
	"github.com/cockroachdb/errors"
)

// BuildJoinOrder assembles a single binary join tree from the legs, in the
// order given, pushing each condition to the earliest join that can evaluate
// it. Every leg is consumed exactly once and every condition is placed
// exactly once: either as a join condition or, if no join in the tree can
// evaluate it, as a residual filter over the final join.
//
// Calling with fewer than 2 legs is a caller bug.
func BuildJoinOrder(legs []JoinLeg, conds []memo.ScalarExpr) memo.RelExpr {
	if len(legs) < 2 {
		panic(errors.AssertionFailedf("join group must have at least 2 legs, got %d", len(legs)))
	}
	return createOrderedJoin(legs, conds)
}

func createOrderedJoin(legs []JoinLeg, conds []memo.ScalarExpr) memo.RelExpr {
	if len(legs) == 2 {
		left, right := legs[0], legs[1]
		joinCols := left.Plan.OutputCols().Union(right.Plan.OutputCols())
		var joinable, leftover []memo.ScalarExpr
		for _, cond := range conds {
			if memo.CanEvaluateUsing(cond, joinCols) {
				joinable = append(joinable, cond)
			} else {
				leftover = append(leftover, cond)
			}
		}
		join := &memo.JoinExpr{
			Left:     left.Plan,
			Right:    right.Plan,
			JoinType: memo.CombineJoinTypes(left.JoinType, right.JoinType),
			On:       joinable,
		}
		if len(leftover) > 0 {
			return &memo.SelectExpr{Input: join, Filters: leftover}
		}
		return join
	}

	left := legs[0]
	leftCols := left.Plan.OutputCols()

	// Pick the first remaining leg that shares a connecting condition with
	// the accumulated left side. If none does, fall back to the next leg
	// positionally, accepting a Cartesian product; that is existing behavior,
	// not an oversight.
	pick := -1
	for i := 1; i < len(legs) && pick < 0; i++ {
		candCols := legs[i].Plan.OutputCols()
		pairCols := leftCols.Union(candCols)
		for _, cond := range conds {
			if memo.OuterCols(cond).SubsetOf(pairCols) &&
				!memo.CanEvaluateUsing(cond, leftCols) &&
				!memo.CanEvaluateUsing(cond, candCols) {
				pick = i
				break
			}
		}
	}
	if pick < 0 {
		pick = 1
		log.Debug("no connecting condition; building a cartesian join")
	}
	chosen := legs[pick]

	joinedCols := leftCols.Union(chosen.Plan.OutputCols())
	var consumed, carried []memo.ScalarExpr
	for _, cond := range conds {
		if memo.CanEvaluateUsing(cond, joinedCols) {
			consumed = append(consumed, cond)
		} else {
			carried = append(carried, cond)
		}
	}

	join := &memo.JoinExpr{
		Left:     left.Plan,
		Right:    chosen.Plan,
		JoinType: memo.CombineJoinTypes(left.JoinType, chosen.JoinType),
		On:       consumed,
	}

	rest := make([]JoinLeg, 0, len(legs)-1)
	rest = append(rest, JoinLeg{Plan: join, JoinType: memo.InnerJoin})
	for i := 1; i < len(legs); i++ {
		if i != pick {
			rest = append(rest, legs[i])
		}
	}
	return createOrderedJoin(rest, carried)
}

// ReorderJoins rewrites every flattenable inner-join group in the plan with a
// heuristically better ordering: star-schema order when DetectStarJoin is
// confident, the original order otherwise. Groups without conditions are left
// alone; there is nothing to improve about a pure product. The result shares
// every subtree that did not change.
func ReorderJoins(e memo.RelExpr, settings opt.Settings) memo.RelExpr {
	if legs, conds, ok := ExtractJoinGroup(e); ok && len(conds) > 0 {
		ordered := make([]JoinLeg, len(legs))
		for i := range legs {
			ordered[i] = JoinLeg{
				Plan:     ReorderJoins(legs[i].Plan, settings),
				JoinType: legs[i].JoinType,
			}
		}
		if starred := DetectStarJoin(ordered, conds, settings); len(starred) > 0 {
			ordered = starred
		}
		return BuildJoinOrder(ordered, conds)
	}

	switch t := e.(type) {
	case *memo.ScanExpr:
		return t

	case *memo.ProjectExpr:
		input := ReorderJoins(t.Input, settings)
		if input == t.Input {
			return t
		}
		newExpr := *t
		newExpr.Input = input
		return &newExpr

	case *memo.SelectExpr:
		input := ReorderJoins(t.Input, settings)
		if input == t.Input {
			return t
		}
		newExpr := *t
		newExpr.Input = input
		return &newExpr

	case *memo.JoinExpr:
		left := ReorderJoins(t.Left, settings)
		right := ReorderJoins(t.Right, settings)
		if left == t.Left && right == t.Right {
			return t
		}
		newExpr := *t
		newExpr.Left = left
		newExpr.Right = right
		return &newExpr

	default:
		panic(errors.AssertionFailedf("unhandled relational %T", e))
	}
}
