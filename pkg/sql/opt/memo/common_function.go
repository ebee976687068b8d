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

import "gitee.com/kwbasedb/kwopt/pkg/sql/opt"

// BaseTableAccess matches a plan subtree that is a read of a single base
// relation: a ScanExpr, possibly wrapped in any number of Select and Project
// operators but with no join, union or other operator in between. It returns
// the underlying scan and every filter predicate pushed into the chain, in
// top-down order. Any other shape returns ok=false; callers treat that as
// "not a base table" and decline, never guess.
func BaseTableAccess(e RelExpr) (scan *ScanExpr, pushedFilters []ScalarExpr, ok bool) {
	for {
		switch t := e.(type) {
		case *ScanExpr:
			return t, pushedFilters, true
		case *SelectExpr:
			pushedFilters = append(pushedFilters, t.Filters...)
			e = t.Input
		case *ProjectExpr:
			e = t.Input
		default:
			return nil, nil, false
		}
	}
}

// LeafColumn resolves a column visible at e's output to the corresponding
// column on the underlying base relation, tracing through Project re-aliasing
// and Select pass-through. It returns ok=false if the column cannot be traced
// (it is a computed expression, or e is not a base table access). Plan trees
// are acyclic and shallow, so a plain loop suffices.
func LeafColumn(col opt.ColumnID, e RelExpr) (*ScanExpr, opt.ColumnID, bool) {
	for {
		switch t := e.(type) {
		case *ScanExpr:
			if _, ok := t.Cols.Find(col); ok {
				return t, col, true
			}
			return nil, 0, false

		case *SelectExpr:
			e = t.Input

		case *ProjectExpr:
			if t.Passthrough.Contains(col) {
				e = t.Input
				continue
			}
			var next opt.ColumnID
			for i := range t.Projections {
				if t.Projections[i].Col == col {
					v, isVar := t.Projections[i].Element.(*VariableExpr)
					if !isVar {
						// Computed column; not traceable to the leaf.
						return nil, 0, false
					}
					next = v.Col
					break
				}
			}
			if next == 0 {
				return nil, 0, false
			}
			col = next
			e = t.Input

		default:
			return nil, 0, false
		}
	}
}
