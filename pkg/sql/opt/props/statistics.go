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

// Package props holds the table statistics consumed by the reorder rules.
// Statistics are collected and refreshed entirely outside this library; the
// rules only ever read them.
package props

// ColumnStatistic is a collection of statistics for one column of a base
// relation.
type ColumnStatistic struct {
	// DistinctCount is the estimated number of distinct values in the column.
	DistinctCount uint64

	// NullCount is the estimated number of NULL values in the column.
	NullCount uint64
}

// Statistics is a collection of measurements for one base relation. The
// measurements are best-effort: Available is false when the relation has
// never been analyzed, and individual columns may be missing from ColStats.
// Rules that need a measurement they cannot find must decline rather than
// guess.
type Statistics struct {
	// Available indicates whether RowCount is backed by a real collection.
	// When false, every statistics-driven heuristic treats the relation as
	// unusable.
	Available bool

	// RowCount is the estimated number of rows in the relation.
	RowCount uint64

	// ColStats maps column name to its statistics. May be nil.
	ColStats map[string]ColumnStatistic
}

// ColumnStatistic looks up the statistics for the named column. The second
// return value is false if the column was never analyzed.
func (s *Statistics) ColumnStatistic(name string) (ColumnStatistic, bool) {
	cs, ok := s.ColStats[name]
	return cs, ok
}
