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

// Package tree holds the constant values understood by the optimizer's
// constant folder. Only the datum kinds the null-row evaluator can produce or
// compare are modeled.
package tree

import (
	"fmt"
	"strings"
)

// Datum is a constant value. The set of implementations is closed: DInt,
// DFloat, DString, DBool and the dNull singleton.
type Datum interface {
	fmt.Stringer
	datum()
}

// DInt is the int datum.
type DInt int64

// DFloat is the float datum.
type DFloat float64

// DString is the string datum.
type DString string

// DBool is the boolean datum.
type DBool bool

type dNull struct{}

// DNull is the NULL datum. There is only one instance; a Datum is NULL iff it
// is equal to DNull.
var DNull Datum = dNull{}

// DBoolTrue and DBoolFalse avoid allocating on every fold.
var (
	DBoolTrue  = MakeDBool(true)
	DBoolFalse = MakeDBool(false)
)

var dBoolTrue = DBool(true)
var dBoolFalse = DBool(false)

// MakeDBool returns the interned bool datum for b.
func MakeDBool(b DBool) *DBool {
	if b {
		return &dBoolTrue
	}
	return &dBoolFalse
}

func (d DInt) datum()    {}
func (d DFloat) datum()  {}
func (d DString) datum() {}
func (d *DBool) datum()  {}
func (dNull) datum()     {}

func (d DInt) String() string    { return fmt.Sprintf("%d", int64(d)) }
func (d DFloat) String() string  { return fmt.Sprintf("%g", float64(d)) }
func (d DString) String() string { return fmt.Sprintf("'%s'", strings.ReplaceAll(string(d), "'", "''")) }
func (dNull) String() string     { return "NULL" }

func (d *DBool) String() string {
	if bool(*d) {
		return "true"
	}
	return "false"
}

// Compare compares two non-NULL datums of the same kind, returning -1, 0 or
// +1. The second return value is false if the datums are not comparable
// (mixed kinds, or either is NULL); callers fall back to "cannot fold".
func Compare(a, b Datum) (int, bool) {
	switch l := a.(type) {
	case DInt:
		if r, ok := b.(DInt); ok {
			return cmpOrdered(int64(l), int64(r)), true
		}
	case DFloat:
		if r, ok := b.(DFloat); ok {
			return cmpOrdered(float64(l), float64(r)), true
		}
	case DString:
		if r, ok := b.(DString); ok {
			return cmpOrdered(string(l), string(r)), true
		}
	case *DBool:
		if r, ok := b.(*DBool); ok {
			return cmpBool(bool(*l), bool(*r)), true
		}
	}
	return 0, false
}

func cmpOrdered[T int64 | float64 | string](l, r T) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func cmpBool(l, r bool) int {
	switch {
	case !l && r:
		return -1
	case l && !r:
		return 1
	default:
		return 0
	}
}
