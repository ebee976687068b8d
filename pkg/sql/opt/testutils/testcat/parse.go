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

package testcat

import (
	"strconv"
	"strings"

	"gitee.com/kwbasedb/kwopt/pkg/sql/opt"
	"gitee.com/kwbasedb/kwopt/pkg/sql/opt/memo"
	"gitee.com/kwbasedb/kwopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/errors"
)

// ParseScalar parses the compact predicate syntax used in test files:
//
//	f.fk1 = d1.pk
//	d1.a = 'x'
//	f.c < 10
//	d1.a <=> d2.b
//	d1.a is not null
//	not (d1.a = 'x')
//	unsupported(d1.a, f.c)
//	d1.a = 'x' and f.fk1 = d1.pk
//
// This is deliberately not a SQL grammar; three token shapes cover every
// test.
func (tc *Catalog) ParseScalar(s string) (memo.ScalarExpr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty predicate")
	}

	// Conjunction binds loosest.
	if parts := splitTopLevel(s, " and "); len(parts) > 1 {
		result, err := tc.ParseScalar(parts[0])
		if err != nil {
			return nil, err
		}
		for _, part := range parts[1:] {
			right, err := tc.ParseScalar(part)
			if err != nil {
				return nil, err
			}
			result = &memo.AndExpr{Left: result, Right: right}
		}
		return result, nil
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, " is not null"):
		operand, err := tc.parseOperand(strings.TrimSpace(s[:len(s)-len(" is not null")]))
		if err != nil {
			return nil, err
		}
		return &memo.IsNotNullExpr{Input: operand}, nil

	case strings.HasPrefix(lower, "not (") && strings.HasSuffix(s, ")"):
		inner, err := tc.ParseScalar(s[len("not (") : len(s)-1])
		if err != nil {
			return nil, err
		}
		return &memo.NotExpr{Input: inner}, nil

	case strings.HasPrefix(lower, "unsupported(") && strings.HasSuffix(s, ")"):
		var cols opt.ColSet
		args := s[len("unsupported(") : len(s)-1]
		for _, ref := range strings.Split(args, ",") {
			ref = strings.TrimSpace(ref)
			if ref == "" {
				continue
			}
			id, ok := tc.Column(ref)
			if !ok {
				return nil, errors.Newf("unknown column %q", ref)
			}
			cols.Add(id)
		}
		return &memo.UnsupportedExpr{Cols: cols}, nil
	}

	// Binary comparison; longest symbols first so "<=" is not read as "<".
	for _, cmp := range []struct {
		sym string
		op  opt.Operator
	}{
		{"<=>", opt.NullSafeEqOp},
		{"<=", opt.LeOp},
		{">=", opt.GeOp},
		{"!=", opt.NeOp},
		{"=", opt.EqOp},
		{"<", opt.LtOp},
		{">", opt.GtOp},
	} {
		if idx := strings.Index(s, cmp.sym); idx >= 0 {
			left, err := tc.parseOperand(strings.TrimSpace(s[:idx]))
			if err != nil {
				return nil, err
			}
			right, err := tc.parseOperand(strings.TrimSpace(s[idx+len(cmp.sym):]))
			if err != nil {
				return nil, err
			}
			return &memo.ComparisonExpr{CmpOp: cmp.op, Left: left, Right: right}, nil
		}
	}

	return nil, errors.Newf("cannot parse predicate %q", s)
}

// ParseFilters parses a list of predicates separated by semicolons or
// newlines.
func (tc *Catalog) ParseFilters(s string) ([]memo.ScalarExpr, error) {
	var out []memo.ScalarExpr
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		e, err := tc.ParseScalar(part)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (tc *Catalog) parseOperand(s string) (memo.ScalarExpr, error) {
	if s == "" {
		return nil, errors.New("empty operand")
	}
	switch {
	case strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") && len(s) >= 2:
		return &memo.ConstExpr{
			Value: tree.DString(strings.ReplaceAll(s[1:len(s)-1], "''", "'")),
		}, nil
	case strings.EqualFold(s, "null"):
		return &memo.ConstExpr{Value: tree.DNull}, nil
	case strings.EqualFold(s, "true"):
		return &memo.ConstExpr{Value: tree.DBoolTrue}, nil
	case strings.EqualFold(s, "false"):
		return &memo.ConstExpr{Value: tree.DBoolFalse}, nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &memo.ConstExpr{Value: tree.DInt(i)}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return &memo.ConstExpr{Value: tree.DFloat(f)}, nil
	}
	if id, ok := tc.Column(s); ok {
		return &memo.VariableExpr{Col: id}, nil
	}
	return nil, errors.Newf("cannot parse operand %q", s)
}

// splitTopLevel splits on sep outside quotes and parentheses.
func splitTopLevel(s, sep string) []string {
	var parts []string
	depth := 0
	inQuote := false
	last := 0
	lower := strings.ToLower(s)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
			}
		}
		if !inQuote && depth == 0 && strings.HasPrefix(lower[i:], sep) {
			parts = append(parts, s[last:i])
			i += len(sep) - 1
			last = i + 1
		}
	}
	parts = append(parts, s[last:])
	return parts
}
