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

// Package memo defines the relational and scalar expression trees the reorder
// rules operate on. Trees are immutable: a rule that changes anything builds
// new nodes and shares the unchanged children. The variant sets are closed so
// that rules can match exhaustively and default to "leave it alone" on any
// shape they do not recognize.
package memo

import (
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/props"
	"github.com/cockroachdb/errors"
)

// RelExpr is a node in a relational expression tree. The set of
// implementations is closed: ScanExpr, ProjectExpr, SelectExpr, JoinExpr.
type RelExpr interface {
	// Op returns the operator tag of this node.
	Op() opt.Operator

	// OutputCols returns the set of columns visible in this node's output.
	OutputCols() opt.ColSet
}

// JoinType enumerates the join flavors carried by JoinExpr.
type JoinType uint8

const (
	// InnerJoin keeps only matching row pairs.
	InnerJoin JoinType = iota

	// CrossJoin is an unconditioned product. The reorder rules produce it
	// whenever they combine legs that were not both declared inner, since no
	// implied condition can be assumed for such a pairing.
	CrossJoin

	// LeftOuterJoin preserves unmatched left rows, null-supplying the right.
	LeftOuterJoin

	// RightOuterJoin preserves unmatched right rows, null-supplying the left.
	RightOuterJoin

	// FullOuterJoin preserves unmatched rows on both sides.
	FullOuterJoin
)

var joinTypeNames = [...]string{
	InnerJoin:      "inner",
	CrossJoin:      "cross",
	LeftOuterJoin:  "left-outer",
	RightOuterJoin: "right-outer",
	FullOuterJoin:  "full-outer",
}

// String returns the join type name used in plan output.
func (jt JoinType) String() string {
	if int(jt) >= len(joinTypeNames) {
		panic(errors.AssertionFailedf("unknown join type %d", jt))
	}
	return joinTypeNames[jt]
}

// IsOuter returns true for the three null-supplying join types.
func (jt JoinType) IsOuter() bool {
	return jt == LeftOuterJoin || jt == RightOuterJoin || jt == FullOuterJoin
}

// CombineJoinTypes returns the type of the join created when two legs of the
// given declared types are paired: inner only if both legs were inner, cross
// otherwise.
func CombineJoinTypes(left, right JoinType) JoinType {
	if left == InnerJoin && right == InnerJoin {
		return InnerJoin
	}
	return CrossJoin
}

// ScanExpr reads a single base relation. It is the only statistics-bearing
// leaf; statistics are attached by whoever built the plan and are never
// recomputed here.
type ScanExpr struct {
	// Table is the relation name, used for statistics lookup and display.
	Table string

	// Cols are the column ids produced by the scan.
	Cols opt.ColList

	// ColNames are the relation's column names, parallel to Cols. Statistics
	// are keyed by name, so this is the bridge from ids to ColStats.
	ColNames []string

	// Stats are the relation's collected statistics.
	Stats props.Statistics
}

// Op implements RelExpr.
func (s *ScanExpr) Op() opt.Operator { return opt.ScanOp }

// OutputCols implements RelExpr.
func (s *ScanExpr) OutputCols() opt.ColSet { return s.Cols.ToSet() }

// ColumnName returns the relation column name for one of the scan's output
// columns.
func (s *ScanExpr) ColumnName(col opt.ColumnID) (string, bool) {
	idx, ok := s.Cols.Find(col)
	if !ok {
		return "", false
	}
	if idx >= len(s.ColNames) {
		panic(errors.AssertionFailedf(
			"scan of %s has %d cols but %d names", s.Table, len(s.Cols), len(s.ColNames)))
	}
	return s.ColNames[idx], true
}

// ColumnStatistic returns the collected statistics for one of the scan's
// output columns, if the column has been analyzed.
func (s *ScanExpr) ColumnStatistic(col opt.ColumnID) (props.ColumnStatistic, bool) {
	name, ok := s.ColumnName(col)
	if !ok {
		return props.ColumnStatistic{}, false
	}
	return s.Stats.ColumnStatistic(name)
}

// ProjectionItem is one synthesized or re-aliased output column of a Project.
type ProjectionItem struct {
	// Col is the output column id.
	Col opt.ColumnID

	// Element is the expression producing the column. When it is a bare
	// VariableExpr the item is a re-aliasing and remains traceable to the
	// base relation; anything else is a computed column.
	Element ScalarExpr
}

// ProjectExpr renames or synthesizes output columns over its input.
type ProjectExpr struct {
	Input RelExpr

	// Projections are the synthesized output columns.
	Projections []ProjectionItem

	// Passthrough are input columns forwarded unchanged.
	Passthrough opt.ColSet
}

// Op implements RelExpr.
func (p *ProjectExpr) Op() opt.Operator { return opt.ProjectOp }

// OutputCols implements RelExpr.
func (p *ProjectExpr) OutputCols() opt.ColSet {
	out := p.Passthrough.Copy()
	for i := range p.Projections {
		out.Add(p.Projections[i].Col)
	}
	return out
}

// SelectExpr filters its input. Filters holds the predicate's top-level
// conjuncts; the list is never empty.
type SelectExpr struct {
	Input   RelExpr
	Filters []ScalarExpr
}

// Op implements RelExpr.
func (s *SelectExpr) Op() opt.Operator { return opt.SelectOp }

// OutputCols implements RelExpr.
func (s *SelectExpr) OutputCols() opt.ColSet { return s.Input.OutputCols() }

// JoinExpr combines two inputs. On holds the join condition's top-level
// conjuncts; an empty On means the join is unconditioned (a product for
// CrossJoin, a degenerate all-pairs join otherwise).
type JoinExpr struct {
	Left     RelExpr
	Right    RelExpr
	JoinType JoinType
	On       []ScalarExpr
}

// Op implements RelExpr.
func (j *JoinExpr) Op() opt.Operator { return opt.JoinOp }

// OutputCols implements RelExpr.
func (j *JoinExpr) OutputCols() opt.ColSet {
	return j.Left.OutputCols().Union(j.Right.OutputCols())
}
