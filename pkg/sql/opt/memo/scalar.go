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

package memo

import (
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"gitee.com/kwbasedb/kwopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/errors"
)

// ScalarExpr is a node in a scalar expression tree. The set of
// implementations is closed: VariableExpr, ConstExpr, ComparisonExpr,
// AndExpr, NotExpr, IsNotNullExpr, UnsupportedExpr.
type ScalarExpr interface {
	// Op returns the operator tag of this node.
	Op() opt.Operator
}

// VariableExpr is a reference to a column.
type VariableExpr struct {
	Col opt.ColumnID
}

// Op implements ScalarExpr.
func (v *VariableExpr) Op() opt.Operator { return opt.VariableOp }

// ConstExpr is a constant value.
type ConstExpr struct {
	Value tree.Datum
}

// Op implements ScalarExpr.
func (c *ConstExpr) Op() opt.Operator { return opt.ConstOp }

// ComparisonExpr is a binary comparison. CmpOp must be one of the comparison
// operators (Operator.IsComparison).
type ComparisonExpr struct {
	CmpOp opt.Operator
	Left  ScalarExpr
	Right ScalarExpr
}

// Op implements ScalarExpr.
func (c *ComparisonExpr) Op() opt.Operator {
	if !c.CmpOp.IsComparison() {
		panic(errors.AssertionFailedf("%s is not a comparison operator", c.CmpOp))
	}
	return c.CmpOp
}

// AndExpr is three-valued logical conjunction.
type AndExpr struct {
	Left  ScalarExpr
	Right ScalarExpr
}

// Op implements ScalarExpr.
func (a *AndExpr) Op() opt.Operator { return opt.AndOp }

// NotExpr is three-valued logical negation.
type NotExpr struct {
	Input ScalarExpr
}

// Op implements ScalarExpr.
func (n *NotExpr) Op() opt.Operator { return opt.NotOp }

// IsNotNullExpr tests its input for non-NULL-ness.
type IsNotNullExpr struct {
	Input ScalarExpr
}

// Op implements ScalarExpr.
func (i *IsNotNullExpr) Op() opt.Operator { return opt.IsNotNullOp }

// UnsupportedExpr stands in for a scalar construct the rules cannot reason
// about: a volatile (non-deterministic) function, a correlated subquery, or
// any operator outside the closed set. Cols records the columns the construct
// references so that coverage tests still work; everything else about it is
// opaque. Rules treat it conservatively: it cannot be folded, is never
// null-filtering, and is never usable as a join condition.
type UnsupportedExpr struct {
	Cols opt.ColSet
}

// Op implements ScalarExpr.
func (u *UnsupportedExpr) Op() opt.Operator { return opt.UnsupportedOp }

// OuterCols returns the set of columns referenced by the scalar expression.
func OuterCols(e ScalarExpr) opt.ColSet {
	var cols opt.ColSet
	addOuterCols(e, &cols)
	return cols
}

func addOuterCols(e ScalarExpr, cols *opt.ColSet) {
	switch t := e.(type) {
	case *VariableExpr:
		cols.Add(t.Col)
	case *ConstExpr:
	case *ComparisonExpr:
		addOuterCols(t.Left, cols)
		addOuterCols(t.Right, cols)
	case *AndExpr:
		addOuterCols(t.Left, cols)
		addOuterCols(t.Right, cols)
	case *NotExpr:
		addOuterCols(t.Input, cols)
	case *IsNotNullExpr:
		addOuterCols(t.Input, cols)
	case *UnsupportedExpr:
		cols.UnionWith(t.Cols)
	default:
		panic(errors.AssertionFailedf("unhandled scalar %T", e))
	}
}

// CanEvaluateWithinJoin returns true if the expression may be pushed into a
// join condition or evaluated against a single join input: it contains no
// construct that must stay where the original plan placed it.
func CanEvaluateWithinJoin(e ScalarExpr) bool {
	switch t := e.(type) {
	case *VariableExpr, *ConstExpr:
		return true
	case *ComparisonExpr:
		return CanEvaluateWithinJoin(t.Left) && CanEvaluateWithinJoin(t.Right)
	case *AndExpr:
		return CanEvaluateWithinJoin(t.Left) && CanEvaluateWithinJoin(t.Right)
	case *NotExpr:
		return CanEvaluateWithinJoin(t.Input)
	case *IsNotNullExpr:
		return CanEvaluateWithinJoin(t.Input)
	case *UnsupportedExpr:
		return false
	default:
		panic(errors.AssertionFailedf("unhandled scalar %T", e))
	}
}

// CanEvaluateUsing returns true if the expression can be evaluated with only
// the given columns in scope.
func CanEvaluateUsing(e ScalarExpr, cols opt.ColSet) bool {
	return OuterCols(e).SubsetOf(cols) && CanEvaluateWithinJoin(e)
}

// SplitConjuncts flattens nested AND operators into a list of conjuncts, in
// left-to-right order.
func SplitConjuncts(e ScalarExpr) []ScalarExpr {
	var out []ScalarExpr
	var split func(e ScalarExpr)
	split = func(e ScalarExpr) {
		if and, ok := e.(*AndExpr); ok {
			split(and.Left)
			split(and.Right)
			return
		}
		out = append(out, e)
	}
	split(e)
	return out
}
