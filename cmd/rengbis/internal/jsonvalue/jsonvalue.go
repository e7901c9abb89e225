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

// Package jsonvalue is a minimal JSON-to-validator.Value decoder for the
// rengbis CLI. It is not part of the schema core (spec §1 names
// format-parsers as external collaborators specified only by the
// Value-tree contract, §6) and deliberately stays on encoding/json's
// Number-as-string decoding so a Numeric coercion check on the Validator
// side sees the original decimal text rather than a re-serialized
// float64, the same "preserve original string forms" invariant §6
// requires of any format-parser collaborator.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"rengbis.dev/go/validator"
)

// Decode parses src as JSON and converts it to a validator.Value tree.
func Decode(src []byte) (validator.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("jsonvalue: %w", err)
	}
	return convert(raw)
}

func convert(raw interface{}) (validator.Value, error) {
	switch v := raw.(type) {
	case nil:
		return validator.Null{}, nil
	case bool:
		return validator.Bool{B: v}, nil
	case json.Number:
		var d apd.Decimal
		if _, _, err := d.SetString(v.String()); err != nil {
			return nil, fmt.Errorf("jsonvalue: %q is not a valid decimal: %w", v, err)
		}
		return validator.Number{D: d}, nil
	case string:
		return validator.Text{S: v}, nil
	case []interface{}:
		items := make([]validator.Value, len(v))
		for i, e := range v {
			item, err := convert(e)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return validator.Array{Items: items}, nil
	case map[string]interface{}:
		fields := make(map[string]validator.Value, len(v))
		for k, e := range v {
			field, err := convert(e)
			if err != nil {
				return nil, err
			}
			fields[k] = field
		}
		return validator.Object{Fields: fields}, nil
	default:
		return nil, fmt.Errorf("jsonvalue: unsupported JSON value %T", raw)
	}
}
