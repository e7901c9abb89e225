// Copyright 2019 CUE Authors
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

package protobuf

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-quicktest/qt"

	"rengbis.dev/go/model"
)

func decimal(t *testing.T, s string) apd.Decimal {
	t.Helper()
	var d apd.Decimal
	_, _, err := d.SetString(s)
	qt.Assert(t, qt.IsNil(err))
	return d
}

func TestParseMessage(t *testing.T) {
	src := `
syntax = "proto3";

message Person {
  string name = 1;
  int32 age = 2;
  repeated string tags = 3;
}
`
	defs, err := Parse("person.proto", []byte(src))
	qt.Assert(t, qt.IsNil(err))

	person, ok := defs["Person"].(model.Object)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(person.Fields, 3))

	name := person.Fields["name"]
	qt.Assert(t, qt.IsTrue(name.Label.Optional)) // proto3 fields are always Optional
	qt.Assert(t, qt.Equals(name.Type, model.Schema(model.Text{})))

	tags := person.Fields["tags"]
	list, ok := tags.Type.(model.List)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(list.Item, model.Schema(model.Text{})))
}

func TestParseEnum(t *testing.T) {
	src := `
syntax = "proto3";

enum Status {
  ACTIVE = 0;
  INACTIVE = 1;
}
`
	defs, err := Parse("status.proto", []byte(src))
	qt.Assert(t, qt.IsNil(err))

	status, ok := defs["Status"].(model.EnumValues)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(status.Values, []string{"ACTIVE", "INACTIVE"}))
}

func TestParseRecursiveMessage(t *testing.T) {
	src := `
syntax = "proto3";

message Node {
  string label = 1;
  repeated Node children = 2;
}
`
	defs, err := Parse("tree.proto", []byte(src))
	qt.Assert(t, qt.IsNil(err))

	node, ok := defs["Node"].(model.Object)
	qt.Assert(t, qt.IsTrue(ok))
	children := node.Fields["children"].Type.(model.List)
	_, stillRef := children.Item.(model.NamedRef)
	qt.Assert(t, qt.IsTrue(stillRef), qt.Commentf("a self-recursive message must keep its NamedRef for lazy resolution"))
}

func TestParseOneof(t *testing.T) {
	src := `
syntax = "proto3";

message Shape {
  oneof kind {
    double radius = 1;
    double side = 2;
  }
}
`
	defs, err := Parse("shape.proto", []byte(src))
	qt.Assert(t, qt.IsNil(err))

	shape := defs["Shape"].(model.Object)
	kind := shape.Fields["kind"].Type
	alt, ok := kind.(model.Alternative)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(alt.Options, 2))
}

func TestParseDuplicateMessage(t *testing.T) {
	src := `
syntax = "proto3";

message Foo { string a = 1; }
message Foo { string b = 1; }
`
	_, err := Parse("dup.proto", []byte(src))
	qt.Assert(t, qt.IsNotNil(err))
}

func TestPrintRoundTrip(t *testing.T) {
	tc, err := model.NewTextConstraints(nil, nil, nil)
	qt.Assert(t, qt.IsNil(err))
	obj, err := model.NewObject([]model.Field{
		{Label: model.Mandatory("name"), Type: model.Text{Constraints: tc}},
		{Label: model.OptionalLabel("nickname"), Type: model.Text{Constraints: tc}},
	})
	qt.Assert(t, qt.IsNil(err))

	out, err := Print(map[string]model.Schema{"Person": obj}, "example")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.StringContains(out, "message Person {"))
	qt.Assert(t, qt.StringContains(out, "package example;"))

	reparsed, err := Parse("person.proto", []byte(out))
	qt.Assert(t, qt.IsNil(err))
	_, ok := reparsed["Person"].(model.Object)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestPrintConstraintOption(t *testing.T) {
	size, err := model.NewSizeRange(nil, &model.Bound{Op: model.MaxInclusive, Value: decimal(t, "100")})
	qt.Assert(t, qt.IsNil(err))
	tc, err := model.NewTextConstraints(&size, nil, nil)
	qt.Assert(t, qt.IsNil(err))
	obj, err := model.NewObject([]model.Field{
		{Label: model.Mandatory("bio"), Type: model.Text{Constraints: tc}},
	})
	qt.Assert(t, qt.IsNil(err))

	out, err := Print(map[string]model.Schema{"Profile": obj}, "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.StringContains(out, "rengbis.constraints"))
}
