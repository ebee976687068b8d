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

// Settings carries the knobs consulted by the reorder rules. There is no
// ambient or process-wide configuration: the value is threaded explicitly
// into every entry point, so independent plan rewrites can run with
// independent settings.
type Settings struct {
	// StarJoinEnabled gates star-schema detection. When false,
	// DetectStarJoin always defers to the caller's ordering.
	StarJoinEnabled bool

	// StarJoinFactTableRatio is the cardinality ratio in (0, 1] below which
	// the second-largest table in a join group is considered a dimension
	// rather than a second fact candidate. If the two largest tables are
	// closer in size than this ratio, detection declines.
	StarJoinFactTableRatio float64

	// NDVMaxError is the relative error assumed on distinct-value counts.
	// A column is considered unique when its distinct count is within
	// 2*NDVMaxError of the table row count.
	NDVMaxError float64
}

// DefaultSettings returns the production defaults. Star join detection ships
// disabled; the thresholds mirror the values the statistics collector is
// calibrated against.
func DefaultSettings() Settings {
	return Settings{
		StarJoinEnabled:        false,
		StarJoinFactTableRatio: 0.9,
		NDVMaxError:            0.05,
	}
}
