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

package opt

import "fmt"

// Operator describes the type of operation that a memo expression performs.
// Some operators are relational (join, select, project) and others are scalar
// (and, eq, variable). The operator sets are closed: rules match on them with
// exhaustive switches and treat anything unknown conservatively.
type Operator uint16

const (
	// UnknownOp is the zero value. It is never constructed explicitly.
	UnknownOp Operator = iota

	// ------------------------------------------------------------
	// Relational operators.
	// ------------------------------------------------------------

	// ScanOp is a read of a single statistics-bearing base relation.
	ScanOp

	// ProjectOp renames or synthesizes output columns over its input.
	ProjectOp

	// SelectOp filters its input with a conjunction of predicates.
	SelectOp

	// JoinOp combines two inputs; the join flavor is carried as a private
	// JoinType field rather than distinct operators so that the reorder rules
	// can rewrite it in place of a rebuilt node.
	JoinOp

	// ------------------------------------------------------------
	// Scalar operators.
	// ------------------------------------------------------------

	// VariableOp is a reference to a column.
	VariableOp

	// ConstOp is a constant value.
	ConstOp

	// EqOp is the `=` comparison.
	EqOp

	// NullSafeEqOp is the null-safe `=` comparison (IS NOT DISTINCT FROM):
	// NULL compared with NULL yields true rather than NULL.
	NullSafeEqOp

	// LtOp, GtOp, LeOp, GeOp, NeOp are the ordering comparisons. They are
	// interchangeable for the reorder rules ("other" comparisons): none of
	// them implies key uniqueness and all of them yield NULL on NULL input.
	LtOp
	GtOp
	LeOp
	GeOp
	NeOp

	// AndOp is three-valued logical conjunction.
	AndOp

	// NotOp is three-valued logical negation.
	NotOp

	// IsNotNullOp tests its input for non-NULL-ness; it never yields NULL.
	IsNotNullOp

	// UnsupportedOp stands in for any scalar construct the constant folder
	// cannot evaluate: volatile functions, correlated subqueries, casts of
	// unknown types. Every rule treats it conservatively (not foldable, not
	// null-filtering, not a usable join predicate).
	UnsupportedOp

	// NumOperators should always be last.
	NumOperators
)

var opNames = [NumOperators]string{
	UnknownOp:     "unknown",
	ScanOp:        "scan",
	ProjectOp:     "project",
	SelectOp:      "select",
	JoinOp:        "join",
	VariableOp:    "variable",
	ConstOp:       "const",
	EqOp:          "eq",
	NullSafeEqOp:  "null-safe-eq",
	LtOp:          "lt",
	GtOp:          "gt",
	LeOp:          "le",
	GeOp:          "ge",
	NeOp:          "ne",
	AndOp:         "and",
	NotOp:         "not",
	IsNotNullOp:   "is-not-null",
	UnsupportedOp: "unsupported",
}

// String returns the name of the operator as a string.
func (op Operator) String() string {
	if op >= NumOperators {
		return fmt.Sprintf("Operator(%d)", op)
	}
	return opNames[op]
}

// IsComparison returns true if op is one of the binary comparison operators.
func (op Operator) IsComparison() bool {
	switch op {
	case EqOp, NullSafeEqOp, LtOp, GtOp, LeOp, GeOp, NeOp:
		return true
	}
	return false
}

// IsEquality returns true if op is an equality comparison, the only
// comparisons that can witness a primary-key relationship between a fact and
// a dimension table.
func (op Operator) IsEquality() bool {
	return op == EqOp || op == NullSafeEqOp
}
