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

// EvalOnNullRow folds the expression with every column reference bound to
// NULL, using three-valued logic. The second return value is false when the
// expression contains a construct the folder cannot evaluate; callers must
// then treat the result as unknown rather than as any particular value.
func EvalOnNullRow(e ScalarExpr) (tree.Datum, bool) {
	switch t := e.(type) {
	case *VariableExpr:
		return tree.DNull, true

	case *ConstExpr:
		return t.Value, true

	case *ComparisonExpr:
		left, ok := EvalOnNullRow(t.Left)
		if !ok {
			return nil, false
		}
		right, ok := EvalOnNullRow(t.Right)
		if !ok {
			return nil, false
		}
		return evalComparison(t.Op(), left, right)

	case *AndExpr:
		left, ok := EvalOnNullRow(t.Left)
		if !ok {
			return nil, false
		}
		right, ok := EvalOnNullRow(t.Right)
		if !ok {
			return nil, false
		}
		return evalAnd(left, right)

	case *NotExpr:
		in, ok := EvalOnNullRow(t.Input)
		if !ok {
			return nil, false
		}
		if in == tree.DNull {
			return tree.DNull, true
		}
		b, ok := in.(*tree.DBool)
		if !ok {
			return nil, false
		}
		return tree.MakeDBool(!*b), true

	case *IsNotNullExpr:
		in, ok := EvalOnNullRow(t.Input)
		if !ok {
			return nil, false
		}
		return tree.MakeDBool(in != tree.DNull), true

	case *UnsupportedExpr:
		return nil, false

	default:
		panic(errors.AssertionFailedf("unhandled scalar %T", e))
	}
}

func evalComparison(op opt.Operator, left, right tree.Datum) (tree.Datum, bool) {
	if op == opt.NullSafeEqOp {
		// NULL <=> NULL is true, NULL <=> x is false.
		if left == tree.DNull || right == tree.DNull {
			return tree.MakeDBool(left == tree.DNull && right == tree.DNull), true
		}
		cmp, ok := tree.Compare(left, right)
		if !ok {
			return nil, false
		}
		return tree.MakeDBool(cmp == 0), true
	}

	// Every other comparison yields NULL on NULL input.
	if left == tree.DNull || right == tree.DNull {
		return tree.DNull, true
	}
	cmp, ok := tree.Compare(left, right)
	if !ok {
		return nil, false
	}
	var res bool
	switch op {
	case opt.EqOp:
		res = cmp == 0
	case opt.NeOp:
		res = cmp != 0
	case opt.LtOp:
		res = cmp < 0
	case opt.LeOp:
		res = cmp <= 0
	case opt.GtOp:
		res = cmp > 0
	case opt.GeOp:
		res = cmp >= 0
	default:
		panic(errors.AssertionFailedf("unhandled comparison %s", op))
	}
	return tree.MakeDBool(tree.DBool(res)), true
}

// evalAnd applies Kleene conjunction: false dominates NULL.
func evalAnd(left, right tree.Datum) (tree.Datum, bool) {
	lNull := left == tree.DNull
	rNull := right == tree.DNull
	var lVal, rVal bool
	if !lNull {
		b, ok := left.(*tree.DBool)
		if !ok {
			return nil, false
		}
		lVal = bool(*b)
	}
	if !rNull {
		b, ok := right.(*tree.DBool)
		if !ok {
			return nil, false
		}
		rVal = bool(*b)
	}
	switch {
	case !lNull && !lVal, !rNull && !rVal:
		return tree.DBoolFalse, true
	case lNull || rNull:
		return tree.DNull, true
	default:
		return tree.DBoolTrue, true
	}
}

// IsNullRejecting returns true if the predicate discards rows whose
// referenced columns are all NULL: it folds to false or NULL on the all-null
// row. NULL counts because Filter and Join both drop rows whose predicate is
// not true. Expressions that cannot be folded are never null-rejecting.
func IsNullRejecting(e ScalarExpr) bool {
	d, ok := EvalOnNullRow(e)
	if !ok {
		return false
	}
	if d == tree.DNull {
		return true
	}
	if b, ok := d.(*tree.DBool); ok {
		return !bool(*b)
	}
	// A non-boolean constant predicate is a type error upstream; leave it be.
	return false
}
