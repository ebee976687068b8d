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
	"bytes"
	"fmt"
	"strings"

	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"github.com/cockroachdb/errors"
)

// ColumnNamer maps column ids to display names. The test catalog implements
// it; a nil namer falls back to "@<id>".
type ColumnNamer interface {
	ColumnName(col opt.ColumnID) string
}

// FormatExpr renders a relational tree as indented text, two spaces per
// level. The output is deterministic for identical trees, which makes it
// usable both for golden-file tests and for comparing rewrite results.
func FormatExpr(e RelExpr, namer ColumnNamer) string {
	var buf bytes.Buffer
	formatRel(&buf, e, 0, namer)
	return buf.String()
}

func formatRel(buf *bytes.Buffer, e RelExpr, level int, namer ColumnNamer) {
	indent := strings.Repeat("  ", level)
	switch t := e.(type) {
	case *ScanExpr:
		fmt.Fprintf(buf, "%sscan %s\n", indent, t.Table)

	case *ProjectExpr:
		fmt.Fprintf(buf, "%sproject\n", indent)
		formatRel(buf, t.Input, level+1, namer)

	case *SelectExpr:
		fmt.Fprintf(buf, "%sselect [%s]\n", indent, formatFilters(t.Filters, namer))
		formatRel(buf, t.Input, level+1, namer)

	case *JoinExpr:
		if len(t.On) == 0 {
			fmt.Fprintf(buf, "%sjoin (%s)\n", indent, t.JoinType)
		} else {
			fmt.Fprintf(buf, "%sjoin (%s) [%s]\n", indent, t.JoinType, formatFilters(t.On, namer))
		}
		formatRel(buf, t.Left, level+1, namer)
		formatRel(buf, t.Right, level+1, namer)

	default:
		panic(errors.AssertionFailedf("unhandled relational %T", e))
	}
}

func formatFilters(filters []ScalarExpr, namer ColumnNamer) string {
	parts := make([]string, len(filters))
	for i := range filters {
		parts[i] = FormatScalar(filters[i], namer)
	}
	return strings.Join(parts, ", ")
}

var cmpSymbols = map[opt.Operator]string{
	opt.EqOp:         "=",
	opt.NullSafeEqOp: "<=>",
	opt.LtOp:         "<",
	opt.GtOp:         ">",
	opt.LeOp:         "<=",
	opt.GeOp:         ">=",
	opt.NeOp:         "!=",
}

// FormatScalar renders a scalar expression as compact infix text.
func FormatScalar(e ScalarExpr, namer ColumnNamer) string {
	switch t := e.(type) {
	case *VariableExpr:
		if namer != nil {
			return namer.ColumnName(t.Col)
		}
		return fmt.Sprintf("@%d", t.Col)
	case *ConstExpr:
		return t.Value.String()
	case *ComparisonExpr:
		return fmt.Sprintf("%s %s %s",
			FormatScalar(t.Left, namer), cmpSymbols[t.Op()], FormatScalar(t.Right, namer))
	case *AndExpr:
		return fmt.Sprintf("%s AND %s", FormatScalar(t.Left, namer), FormatScalar(t.Right, namer))
	case *NotExpr:
		return fmt.Sprintf("NOT (%s)", FormatScalar(t.Input, namer))
	case *IsNotNullExpr:
		return fmt.Sprintf("%s IS NOT NULL", FormatScalar(t.Input, namer))
	case *UnsupportedExpr:
		return fmt.Sprintf("unsupported%s", t.Cols)
	default:
		panic(errors.AssertionFailedf("unhandled scalar %T", e))
	}
}
