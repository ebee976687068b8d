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

// Package testcat implements an in-memory catalog for testing: it mints
// column ids for tables declared in YAML fixtures, serves scans with attached
// statistics, and parses the compact predicate syntax used in test files.
package testcat

import (
	"fmt"

	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/memo"
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/props"
	"github.com/cockroachdb/errors"
	yaml "gopkg.in/yaml.v2"
)

// Catalog is the in-memory test catalog. Column ids are unique across all
// tables in one catalog, the same property the optimizer's metadata
// guarantees in production.
type Catalog struct {
	tables  map[string]*Table
	colRefs map[string]opt.ColumnID
	names   map[opt.ColumnID]string
	nextCol opt.ColumnID
}

// Table is one catalog table.
type Table struct {
	Name     string
	Cols     opt.ColList
	ColNames []string
	Stats    props.Statistics
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		tables:  make(map[string]*Table),
		colRefs: make(map[string]opt.ColumnID),
		names:   make(map[opt.ColumnID]string),
	}
}

type yamlCatalog struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name    string     `yaml:"name"`
	Columns []string   `yaml:"columns"`
	Stats   *yamlStats `yaml:"stats"`
}

type yamlStats struct {
	RowCount uint64                 `yaml:"row_count"`
	Columns  map[string]yamlColStat `yaml:"columns"`
}

type yamlColStat struct {
	DistinctCount uint64 `yaml:"distinct_count"`
	NullCount     uint64 `yaml:"null_count"`
}

// LoadYAML adds the tables declared in the YAML document to the catalog. A
// table without a stats section is unanalyzed (Statistics.Available=false).
func (tc *Catalog) LoadYAML(data []byte) error {
	var doc yamlCatalog
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return errors.Wrap(err, "parsing catalog fixture")
	}
	for _, tab := range doc.Tables {
		stats := props.Statistics{}
		if tab.Stats != nil {
			stats.Available = true
			stats.RowCount = tab.Stats.RowCount
			if len(tab.Stats.Columns) > 0 {
				stats.ColStats = make(map[string]props.ColumnStatistic, len(tab.Stats.Columns))
				for col, cs := range tab.Stats.Columns {
					stats.ColStats[col] = props.ColumnStatistic{
						DistinctCount: cs.DistinctCount,
						NullCount:     cs.NullCount,
					}
				}
			}
		}
		if err := tc.CreateTable(tab.Name, tab.Columns, stats); err != nil {
			return err
		}
	}
	return nil
}

// CreateTable adds a table to the catalog, minting a ColumnID for each
// column.
func (tc *Catalog) CreateTable(name string, columns []string, stats props.Statistics) error {
	if _, ok := tc.tables[name]; ok {
		return errors.Newf("table %q already exists", name)
	}
	if len(columns) == 0 {
		return errors.Newf("table %q has no columns", name)
	}
	tab := &Table{Name: name, ColNames: columns, Stats: stats}
	for _, col := range columns {
		tc.nextCol++
		id := tc.nextCol
		tab.Cols = append(tab.Cols, id)
		ref := fmt.Sprintf("%s.%s", name, col)
		if _, ok := tc.colRefs[ref]; ok {
			return errors.Newf("duplicate column %q", ref)
		}
		tc.colRefs[ref] = id
		tc.names[id] = ref
	}
	tc.tables[name] = tab
	return nil
}

// Table looks up a table by name.
func (tc *Catalog) Table(name string) (*Table, bool) {
	tab, ok := tc.tables[name]
	return tab, ok
}

// Scan builds a scan of the named table. Panics on an unknown table: the
// catalog is test-only and a bad name is a broken test.
func (tc *Catalog) Scan(table string) *memo.ScanExpr {
	tab, ok := tc.tables[table]
	if !ok {
		panic(errors.AssertionFailedf("unknown table %q", table))
	}
	return &memo.ScanExpr{
		Table:    tab.Name,
		Cols:     tab.Cols,
		ColNames: tab.ColNames,
		Stats:    tab.Stats,
	}
}

// Column resolves a qualified "table.column" reference.
func (tc *Catalog) Column(ref string) (opt.ColumnID, bool) {
	id, ok := tc.colRefs[ref]
	return id, ok
}

// ColumnName implements memo.ColumnNamer.
func (tc *Catalog) ColumnName(col opt.ColumnID) string {
	if name, ok := tc.names[col]; ok {
		return name
	}
	return fmt.Sprintf("@%d", col)
}
