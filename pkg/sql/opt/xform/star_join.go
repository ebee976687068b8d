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
	"math"
	"sort"

	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/memo"
	"gitee.com/kwbasedb/kwopt/pkg/util/log"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// tableAccess caches what the detector needs to know about one leg: the
// underlying scan, the predicates already pushed into the access chain, the
// leg's output columns and its cardinality estimate. ord is the leg's input
// position, kept so the non-star remainder can be emitted in input order.
type tableAccess struct {
	leg    JoinLeg
	scan   *memo.ScanExpr
	pushed []memo.ScalarExpr
	cols   opt.ColSet
	card   float64
	ord    int
}

// DetectStarJoin looks for a star-schema pattern in a flattened join group: a
// single large fact table joined to several small dimension tables on unique
// (primary-key-like) columns. When it is confident of the pattern and of a
// benefit from reordering, it returns the legs reordered as
//
//	[fact] ++ dimensions sorted ascending by cardinality ++ remaining legs
//
// so the largest table anchors the driving side and the smallest, most
// selective dimensions shrink the working set first. Legs outside the star
// (not joined to the fact table, or joined on a non-unique column) keep
// their relative input order after it. In every uncertain case
// (detection disabled, missing statistics, ambiguous fact candidate, too few
// dimension tables, no selective dimension) it returns nil, which means
// "keep the caller's ordering" and is always a valid answer.
//
// A non-nil result is exactly a permutation of the input legs.
//
// Calling with fewer than 2 legs is a caller bug.
func DetectStarJoin(legs []JoinLeg, conds []memo.ScalarExpr, settings opt.Settings) []JoinLeg {
	if len(legs) < 2 {
		panic(errors.AssertionFailedf("join group must have at least 2 legs, got %d", len(legs)))
	}
	if !settings.StarJoinEnabled {
		return nil
	}

	// Every leg must be an analyzed base table access; anything else (a join,
	// a union, a relation without statistics) makes the size comparison
	// meaningless.
	accesses := make([]tableAccess, len(legs))
	for i, leg := range legs {
		scan, pushed, ok := memo.BaseTableAccess(leg.Plan)
		if !ok || !scan.Stats.Available {
			log.Debug("star join declined: leg is not an analyzed base table access")
			return nil
		}
		accesses[i] = tableAccess{
			leg:    leg,
			scan:   scan,
			pushed: pushed,
			cols:   leg.Plan.OutputCols(),
			card:   tableAccessCardinality(scan),
			ord:    i,
		}
	}

	// The fact table candidate is the largest leg. If the runner-up is of
	// comparable size, the fact/dimension split is not trustworthy. The sort
	// is stable so that equal cardinalities keep their input order.
	sorted := make([]tableAccess, len(accesses))
	copy(sorted, accesses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].card > sorted[j].card
	})
	fact := sorted[0]
	if sorted[1].card > settings.StarJoinFactTableRatio*fact.card {
		log.Debug("star join declined: two fact table candidates of comparable size",
			zap.String("table1", fact.scan.Table), zap.String("table2", sorted[1].scan.Table))
		return nil
	}

	// Keep the legs joined to the fact table by at least one condition.
	var connected []tableAccess
	var connecting [][]memo.ScalarExpr
	for _, cand := range sorted[1:] {
		if cc := joinConditions(fact, cand, conds); len(cc) > 0 {
			connected = append(connected, cand)
			connecting = append(connecting, cc)
		}
	}

	// Every connected leg must have at least one join condition whose columns
	// carry statistics on both ends, otherwise the uniqueness test below
	// would silently work on guesses.
	for i := range connected {
		if !hasJoinColumnStatistics(fact, connected[i], connecting[i]) {
			log.Debug("star join declined: join columns lack statistics",
				zap.String("table", connected[i].scan.Table))
			return nil
		}
	}

	// Eligible dimensions join the fact table through an equality on a
	// column that looks like a primary key.
	var eligible []tableAccess
	for i := range connected {
		if hasUniqueJoinColumn(connected[i], connecting[i], settings.NDVMaxError) {
			eligible = append(eligible, connected[i])
		}
	}
	if len(eligible) < 2 {
		log.Debug("star join declined: fewer than two eligible dimension tables",
			zap.Int("eligible", len(eligible)))
		return nil
	}

	// Reordering only pays off when at least one dimension is filtered and
	// so shrinks the join early.
	if !isSelectiveStarJoin(eligible, conds) {
		log.Debug("star join declined: no selective dimension table")
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].card < eligible[j].card
	})

	// The star comes first; every leg outside it follows in input order, so
	// the result is always a permutation of the input.
	inStar := make(map[int]bool, len(eligible)+1)
	inStar[fact.ord] = true
	for i := range eligible {
		inStar[eligible[i].ord] = true
	}
	result := make([]JoinLeg, 0, len(legs))
	result = append(result, fact.leg)
	for i := range eligible {
		result = append(result, eligible[i].leg)
	}
	for i := range legs {
		if !inStar[i] {
			result = append(result, legs[i])
		}
	}
	log.Debug("star join detected",
		zap.String("fact", fact.scan.Table), zap.Int("dimensions", len(eligible)),
		zap.Int("remainder", len(legs)-len(eligible)-1))
	return result
}

// tableAccessCardinality estimates the number of rows produced by a base
// table access.
// TODO: adjust the estimate for the predicates pushed into the access chain
// once filter selectivity estimation is available; for now it is the raw row
// count of the underlying relation.
func tableAccessCardinality(scan *memo.ScanExpr) float64 {
	return float64(scan.Stats.RowCount)
}

// joinConditions returns the conditions that genuinely join the two legs:
// their references are covered by the pair's combined output but cannot be
// satisfied by either leg alone.
func joinConditions(a, b tableAccess, conds []memo.ScalarExpr) []memo.ScalarExpr {
	pairCols := a.cols.Union(b.cols)
	var out []memo.ScalarExpr
	for _, cond := range conds {
		refs := memo.OuterCols(cond)
		if refs.SubsetOf(pairCols) &&
			!memo.CanEvaluateUsing(cond, a.cols) &&
			!memo.CanEvaluateUsing(cond, b.cols) {
			out = append(out, cond)
		}
	}
	return out
}

// columnSides splits a column-to-column comparison into its dimension-side
// and fact-side columns. Only the direct variable-to-variable shape is
// recognized; anything else is not usable for key inference.
func columnSides(cond memo.ScalarExpr, dim tableAccess) (dimCol, factCol opt.ColumnID, ok bool) {
	cmp, isCmp := cond.(*memo.ComparisonExpr)
	if !isCmp {
		return 0, 0, false
	}
	lhs, lok := cmp.Left.(*memo.VariableExpr)
	rhs, rok := cmp.Right.(*memo.VariableExpr)
	if !lok || !rok {
		return 0, 0, false
	}
	if dim.cols.Contains(lhs.Col) {
		return lhs.Col, rhs.Col, true
	}
	return rhs.Col, lhs.Col, true
}

// hasJoinColumnStatistics reports whether some connecting condition resolves
// to leaf columns with collected statistics on both the fact and the
// dimension side.
func hasJoinColumnStatistics(fact, dim tableAccess, connecting []memo.ScalarExpr) bool {
	for _, cond := range connecting {
		dimCol, factCol, ok := columnSides(cond, dim)
		if !ok {
			continue
		}
		dimScan, dimLeaf, ok := memo.LeafColumn(dimCol, dim.leg.Plan)
		if !ok {
			continue
		}
		factScan, factLeaf, ok := memo.LeafColumn(factCol, fact.leg.Plan)
		if !ok {
			continue
		}
		if _, ok := dimScan.ColumnStatistic(dimLeaf); !ok {
			continue
		}
		if _, ok := factScan.ColumnStatistic(factLeaf); !ok {
			continue
		}
		return true
	}
	return false
}

// hasUniqueJoinColumn reports whether some connecting equality condition
// joins the dimension on a unique column.
func hasUniqueJoinColumn(dim tableAccess, connecting []memo.ScalarExpr, ndvMaxError float64) bool {
	for _, cond := range connecting {
		if !cond.Op().IsEquality() {
			continue
		}
		dimCol, _, ok := columnSides(cond, dim)
		if !ok {
			continue
		}
		if isUniqueColumn(dimCol, dim, ndvMaxError) {
			return true
		}
	}
	return false
}

// isUniqueColumn applies the primary-key inference: no NULLs, and a distinct
// count within 2*ndvMaxError (relative) of the row count. Missing statistics
// mean "not provably unique".
func isUniqueColumn(col opt.ColumnID, dim tableAccess, ndvMaxError float64) bool {
	scan, leafCol, ok := memo.LeafColumn(col, dim.leg.Plan)
	if !ok || !scan.Stats.Available {
		return false
	}
	colStat, ok := scan.ColumnStatistic(leafCol)
	if !ok {
		return false
	}
	if colStat.NullCount != 0 {
		return false
	}
	distinctRatio := float64(colStat.DistinctCount) / float64(scan.Stats.RowCount)
	return math.Abs(distinctRatio-1.0) <= 2*ndvMaxError
}

// isSelectiveStarJoin reports whether some eligible dimension carries a local
// predicate, either in the condition pool or already pushed into its access
// chain. IS NOT NULL predicates do not count: they are routinely derived
// from the join condition itself and say nothing about selectivity.
func isSelectiveStarJoin(dims []tableAccess, conds []memo.ScalarExpr) bool {
	for i := range dims {
		for _, cond := range conds {
			if cond.Op() != opt.IsNotNullOp && memo.CanEvaluateUsing(cond, dims[i].cols) {
				return true
			}
		}
		for _, pushed := range dims[i].pushed {
			if pushed.Op() != opt.IsNotNullOp {
				return true
			}
		}
	}
	return false
}
