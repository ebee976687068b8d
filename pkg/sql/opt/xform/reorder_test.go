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
	"strconv"
	"strings"
	"testing"

	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/memo"
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/datadriven"
)

// TestDataDriven exercises detection and reordering end to end against the
// golden files under testdata. Supported commands:
//
//	catalog
//	  Load the YAML table definitions in the input into the catalog.
//
//	detect-star legs=(t1,t2,...) [enabled] [ratio=F] [ndv=F]
//	  Run star detection over scans of the named tables with the input
//	  predicates as the condition pool.
//
//	reorder legs=(t1,t2,...) [enabled] [ratio=F] [ndv=F]
//	  Build a left-deep inner join of the named tables, filter it with the
//	  input predicates and print the reordered plan.
func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		tc := testcat.New()
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "catalog":
				if err := tc.LoadYAML([]byte(d.Input)); err != nil {
					d.Fatalf(t, "%v", err)
				}
				return "ok"

			case "detect-star", "reorder":
				settings := opt.DefaultSettings()
				var tables []string
				for _, arg := range d.CmdArgs {
					switch arg.Key {
					case "legs":
						tables = arg.Vals
					case "enabled":
						settings.StarJoinEnabled = true
					case "ratio":
						settings.StarJoinFactTableRatio = parseFloatArg(t, d, arg.Vals)
					case "ndv":
						settings.NDVMaxError = parseFloatArg(t, d, arg.Vals)
					default:
						d.Fatalf(t, "unknown argument %q", arg.Key)
					}
				}
				if len(tables) == 0 {
					d.Fatalf(t, "%s requires legs=(...)", d.Cmd)
				}
				conds, err := tc.ParseFilters(d.Input)
				if err != nil {
					d.Fatalf(t, "%v", err)
				}
				legs := make([]JoinLeg, len(tables))
				for i, tab := range tables {
					legs[i] = JoinLeg{Plan: tc.Scan(tab), JoinType: memo.InnerJoin}
				}

				if d.Cmd == "detect-star" {
					result := DetectStarJoin(legs, conds, settings)
					if result == nil {
						return "no star\n"
					}
					names := make([]string, len(result))
					for i := range result {
						scan, _, ok := memo.BaseTableAccess(result[i].Plan)
						if !ok {
							d.Fatalf(t, "detection returned a non-base leg")
						}
						names[i] = scan.Table
					}
					return "star: " + strings.Join(names, ", ") + "\n"
				}

				plan := legs[0].Plan
				for _, leg := range legs[1:] {
					plan = &memo.JoinExpr{Left: plan, Right: leg.Plan, JoinType: memo.InnerJoin}
				}
				if len(conds) > 0 {
					plan = &memo.SelectExpr{Input: plan, Filters: conds}
				}
				return memo.FormatExpr(ReorderJoins(plan, settings), tc)

			default:
				d.Fatalf(t, "unknown command %q", d.Cmd)
				return ""
			}
		})
	})
}

func parseFloatArg(t *testing.T, d *datadriven.TestData, vals []string) float64 {
	t.Helper()
	if len(vals) != 1 {
		d.Fatalf(t, "expected a single value, got %v", vals)
	}
	f, err := strconv.ParseFloat(vals[0], 64)
	if err != nil {
		d.Fatalf(t, "%v", err)
	}
	return f
}
