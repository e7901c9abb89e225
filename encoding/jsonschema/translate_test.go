// Copyright 2020 CUE Authors
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

package jsonschema_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"rengbis.dev/go/encoding/jsonschema"
	"rengbis.dev/go/model"
	"rengbis.dev/go/syntax"
)

func TestTranslateObjectWithOptionalField(t *testing.T) {
	f, err := syntax.Parse("t.rengbis", []byte("= { name: text, age?: number }"))
	qt.Assert(t, qt.IsNil(err))

	doc, err := jsonschema.Translate(nil, f.Root.Schema)
	qt.Assert(t, qt.IsNil(err))

	root := doc.Components.Schemas["Root"].Value
	qt.Assert(t, qt.HasLen(root.Properties, 2))
	qt.Assert(t, qt.DeepEquals(root.Required, []string{"name"}))
}

func TestTranslateNamedDefinitions(t *testing.T) {
	defs := map[string]model.Schema{
		"Tag": model.EnumValues{Values: []string{"a", "b"}},
	}
	doc, err := jsonschema.Translate(defs, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(doc.Components.Schemas, 1))
	_, ok := doc.Components.Schemas["Tag"]
	qt.Assert(t, qt.Equals(ok, true))
}
