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
	"testing"

	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"github.com/stretchr/testify/require"
)

func testScan(table string, cols ...opt.ColumnID) *ScanExpr {
	names := make([]string, len(cols))
	for i := range cols {
		names[i] = string(rune('a' + i))
	}
	return &ScanExpr{Table: table, Cols: cols, ColNames: names}
}

func TestBaseTableAccess(t *testing.T) {
	scan := testScan("t", 1, 2)
	f1 := cmp(opt.EqOp, col(1), intConst(10))
	f2 := &IsNotNullExpr{Input: col(2)}

	// A bare scan is a base table access with no pushed filters.
	got, filters, ok := BaseTableAccess(scan)
	require.True(t, ok)
	require.Same(t, scan, got)
	require.Empty(t, filters)

	// Select and Project wrappers are traversed; filters accumulate in
	// top-down order.
	chain := &SelectExpr{
		Input: &ProjectExpr{
			Input:       &SelectExpr{Input: scan, Filters: []ScalarExpr{f2}},
			Passthrough: opt.MakeColSet(1, 2),
		},
		Filters: []ScalarExpr{f1},
	}
	got, filters, ok = BaseTableAccess(chain)
	require.True(t, ok)
	require.Same(t, scan, got)
	require.Equal(t, []ScalarExpr{f1, f2}, filters)

	// A join anywhere in the chain disqualifies the subtree.
	join := &JoinExpr{Left: scan, Right: testScan("u", 3), JoinType: InnerJoin}
	_, _, ok = BaseTableAccess(&SelectExpr{Input: join, Filters: []ScalarExpr{f1}})
	require.False(t, ok)
}

func TestLeafColumn(t *testing.T) {
	scan := testScan("t", 1, 2)

	// Direct hit on the scan.
	leafScan, leafCol, ok := LeafColumn(2, scan)
	require.True(t, ok)
	require.Same(t, scan, leafScan)
	require.Equal(t, opt.ColumnID(2), leafCol)

	_, _, ok = LeafColumn(9, scan)
	require.False(t, ok)

	// Pass-through and re-aliasing are traceable.
	aliased := &ProjectExpr{
		Input:       &SelectExpr{Input: scan, Filters: []ScalarExpr{&IsNotNullExpr{Input: col(1)}}},
		Projections: []ProjectionItem{{Col: 7, Element: col(2)}},
		Passthrough: opt.MakeColSet(1),
	}
	leafScan, leafCol, ok = LeafColumn(7, aliased)
	require.True(t, ok)
	require.Same(t, scan, leafScan)
	require.Equal(t, opt.ColumnID(2), leafCol)

	leafScan, leafCol, ok = LeafColumn(1, aliased)
	require.True(t, ok)
	require.Same(t, scan, leafScan)
	require.Equal(t, opt.ColumnID(1), leafCol)

	// A computed column is not traceable.
	computed := &ProjectExpr{
		Input:       scan,
		Projections: []ProjectionItem{{Col: 8, Element: cmp(opt.LtOp, col(1), intConst(5))}},
	}
	_, _, ok = LeafColumn(8, computed)
	require.False(t, ok)

	// A column unknown to the projection is not traceable either.
	_, _, ok = LeafColumn(9, computed)
	require.False(t, ok)

	// Aliasing across two projections resolves to the original leaf.
	twice := &ProjectExpr{
		Input:       aliased,
		Projections: []ProjectionItem{{Col: 9, Element: col(7)}},
	}
	leafScan, leafCol, ok = LeafColumn(9, twice)
	require.True(t, ok)
	require.Same(t, scan, leafScan)
	require.Equal(t, opt.ColumnID(2), leafCol)

	// Joins are not base table accesses.
	join := &JoinExpr{Left: scan, Right: testScan("u", 3), JoinType: InnerJoin}
	_, _, ok = LeafColumn(1, join)
	require.False(t, ok)
}
