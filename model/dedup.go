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

import "github.com/mpvl/unique"

// firstDuplicate reports the first name that appears more than once in
// names, using mpvl/unique's sort-and-compact algorithm. NewObject uses it
// for field label names and NewEnumValues for enum values. The original
// slice is left untouched.
func firstDuplicate(names []string) (string, bool) {
	if len(names) < 2 {
		return "", false
	}
	cp := make([]string, len(names))
	copy(cp, names)
	unique.Strings(&cp)
	if len(cp) == len(names) {
		return "", false
	}
	seen := make(map[string]int, len(names))
	for _, n := range names {
		seen[n]++
		if seen[n] > 1 {
			return n, true
		}
	}
	return "", false
}
