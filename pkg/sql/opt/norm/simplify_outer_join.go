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

// Package norm holds the normalization rules: rewrites that are always an
// improvement (or neutral) and therefore apply unconditionally, without
// statistics.
package norm

import (
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/memo"
	"gitee.com/kwbasedb/kwopt/pkg/util/log"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// SimplifyOuterJoinType computes the narrowed type for an outer join sitting
// directly beneath a filter with the given predicates. An outer join's
// null-supplying side can be dropped when some filter predicate on that side
// is null-rejecting: the rows the outer join would preserve are discarded by
// the filter anyway, so the narrower join produces the same result.
//
// Derived constraints (column equivalences inferred elsewhere) are not
// consulted; the decision uses exactly the filter's own conjuncts.
//
// Only the type is computed; the caller leaves the filter's predicates
// untouched, since removing now-redundant predicates is a separate rewrite.
func SimplifyOuterJoinType(filters []memo.ScalarExpr, join *memo.JoinExpr) memo.JoinType {
	if !join.JoinType.IsOuter() {
		return join.JoinType
	}

	leftCols := join.Left.OutputCols()
	rightCols := join.Right.OutputCols()

	var leftHasNullFilter, rightHasNullFilter bool
	for _, filter := range filters {
		for _, conjunct := range memo.SplitConjuncts(filter) {
			refs := memo.OuterCols(conjunct)
			// A predicate with no column references lands on both sides.
			if refs.SubsetOf(leftCols) && !leftHasNullFilter {
				leftHasNullFilter = memo.IsNullRejecting(conjunct)
			}
			if refs.SubsetOf(rightCols) && !rightHasNullFilter {
				rightHasNullFilter = memo.IsNullRejecting(conjunct)
			}
		}
	}

	switch join.JoinType {
	case memo.LeftOuterJoin:
		if rightHasNullFilter {
			return memo.InnerJoin
		}
	case memo.RightOuterJoin:
		if leftHasNullFilter {
			return memo.InnerJoin
		}
	case memo.FullOuterJoin:
		switch {
		case leftHasNullFilter && rightHasNullFilter:
			return memo.InnerJoin
		case leftHasNullFilter:
			// Null-supplied left rows are discarded, so preserving the
			// unmatched right side is pointless.
			return memo.LeftOuterJoin
		case rightHasNullFilter:
			return memo.RightOuterJoin
		}
	}
	return join.JoinType
}

// EliminateOuterJoins walks the plan bottom-up and narrows every outer join
// found directly beneath a filter, per SimplifyOuterJoinType. The result
// shares every subtree that did not change.
func EliminateOuterJoins(e memo.RelExpr) memo.RelExpr {
	switch t := e.(type) {
	case *memo.ScanExpr:
		return t

	case *memo.ProjectExpr:
		input := EliminateOuterJoins(t.Input)
		if input == t.Input {
			return t
		}
		newExpr := *t
		newExpr.Input = input
		return &newExpr

	case *memo.SelectExpr:
		input := EliminateOuterJoins(t.Input)
		if join, ok := input.(*memo.JoinExpr); ok && join.JoinType.IsOuter() {
			if newType := SimplifyOuterJoinType(t.Filters, join); newType != join.JoinType {
				log.Debug("simplified outer join",
					zap.Stringer("from", join.JoinType), zap.Stringer("to", newType))
				newJoin := *join
				newJoin.JoinType = newType
				input = &newJoin
			}
		}
		if input == t.Input {
			return t
		}
		newExpr := *t
		newExpr.Input = input
		return &newExpr

	case *memo.JoinExpr:
		left := EliminateOuterJoins(t.Left)
		right := EliminateOuterJoins(t.Right)
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
