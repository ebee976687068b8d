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

// Package xform holds the statistics-driven rewrites: join group flattening,
// star-schema detection and heuristic join ordering.
package xform

import "gitee.com/kwbasedb/kwopt/pkg/sql/opt/memo"

// JoinLeg is one input of a flattened join group, together with the join type
// it was declared with. A Cross leg combined with anything stays Cross; only
// two Inner legs combine into an inner join.
type JoinLeg struct {
	Plan     memo.RelExpr
	JoinType memo.JoinType
}

// ExtractJoinGroup flattens a subtree of inner and cross joins into the list
// of joined legs and the pool of conditions the group must satisfy. Filters
// sitting directly on a join inside the group are absorbed into the pool.
// Flattening follows the left spine: the right child of each join becomes a
// leg as-is. ok is false when e is not a join of at least two legs.
func ExtractJoinGroup(e memo.RelExpr) (legs []JoinLeg, conds []memo.ScalarExpr, ok bool) {
	legs, conds = flattenJoinGroup(e, memo.InnerJoin)
	if len(legs) < 2 {
		return nil, nil, false
	}
	return legs, conds, true
}

func flattenJoinGroup(e memo.RelExpr, declared memo.JoinType) ([]JoinLeg, []memo.ScalarExpr) {
	switch t := e.(type) {
	case *memo.JoinExpr:
		if t.JoinType == memo.InnerJoin || t.JoinType == memo.CrossJoin {
			legs, conds := flattenJoinGroup(t.Left, t.JoinType)
			legs = append(legs, JoinLeg{Plan: t.Right, JoinType: t.JoinType})
			conds = append(conds, t.On...)
			return legs, conds
		}

	case *memo.SelectExpr:
		if join, isJoin := t.Input.(*memo.JoinExpr); isJoin &&
			(join.JoinType == memo.InnerJoin || join.JoinType == memo.CrossJoin) {
			legs, conds := flattenJoinGroup(join, declared)
			conds = append(conds, t.Filters...)
			return legs, conds
		}
	}
	return []JoinLeg{{Plan: e, JoinType: declared}}, nil
}
