// Copyright 2018 The CUE Authors
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

package model

import (
	"github.com/cockroachdb/apd/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// decimalComparer lets cmp.Equal compare apd.Decimal values by their exact
// mathematical value (Decimal.Cmp) instead of walking big.Int's unexported
// internals, the same trick the teacher's internal value-equality helpers
// use for cockroachdb/apd-backed numbers.
var decimalComparer = cmp.Comparer(func(x, y apd.Decimal) bool {
	return x.Cmp(&y) == 0
})

// Every Schema variant embeds the unexported base marker (schema.go), which
// cmp.Equal otherwise refuses to walk into. IgnoreUnexported tells it to
// treat base as equal-by-type and compare only each variant's exported
// fields, the same way the teacher's value-equality helpers list every
// concrete kind explicitly rather than reaching for AllowUnexported.
var equalOpts = cmp.Options{
	decimalComparer,
	// Labels compare by name only (see Label).
	cmp.Comparer(func(x, y Label) bool { return x.Name == y.Name }),
	cmpopts.IgnoreFields(TextConstraints{}, "regex"),
	cmpopts.EquateEmpty(),
	cmpopts.IgnoreUnexported(
		Any{}, Fail{}, Boolean{}, GivenText{}, Text{}, Numeric{}, Binary{},
		Time{}, EnumValues{}, List{}, Tuple{}, Alternative{}, Object{}, Map{},
		Documented{}, Deprecated{}, NamedRef{}, ScopedRef{},
	),
}

// Equal reports whether a and b denote the same schema. Object field order
// never affects the result (invariant I3, spec §8 property 7); Tuple and
// Alternative order does, since it is semantically significant there.
func Equal(a, b Schema) bool {
	return cmp.Equal(a, b, equalOpts)
}
