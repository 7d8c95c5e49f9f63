// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"embed"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

type testSetCase struct {
	Name      string `yaml:"name"`
	Initial   []Attr `yaml:"initial"`
	Value     string `yaml:"value"`
	WantLen   int    `yaml:"wantLen"`
	WantAttrs []Attr `yaml:"wantAttrs"`
	WantErr   bool   `yaml:"wantErr"`
}

type testTransformCase struct {
	Name          string `yaml:"name"`
	TransformSpec string `yaml:"transformSpec"`
	Input         any    `yaml:"input"`
	Want          any    `yaml:"want"`
}

type testGlobalTransformCase struct {
	Name      string   `yaml:"name"`
	Initial   []Attr   `yaml:"initial"`
	WantSpecs []string `yaml:"wantSpecs"`
}

type testStringCase struct {
	Name     string `yaml:"name"`
	AttrList []Attr `yaml:"attrList"`
	Want     string `yaml:"want"`
}

func loadTestData(filename string, v any) error {
	data, err := testDataFS.ReadFile("testdata/" + filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

func TestAttrList_Set(t *testing.T) {
	var tests []testSetCase
	require.NoError(t, loadTestData("set_cases.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			a := AttrList(tt.Initial)
			err := a.Set(tt.Value)

			if tt.WantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, a, tt.WantLen)

			for i, want := range tt.WantAttrs {
				assert.Equal(t, want.Key, a[i].Key, "attr[%d].Key", i)
				assert.Equal(t, want.OutputKey, a[i].OutputKey, "attr[%d].OutputKey", i)
				assert.Equal(t, want.Include, a[i].Include, "attr[%d].Include", i)
				assert.Equal(t, want.TransformSpec, a[i].TransformSpec, "attr[%d].TransformSpec", i)
			}
		})
	}
}

func TestAttrList_SetGlobalTransformSpec(t *testing.T) {
	var tests []testGlobalTransformCase
	require.NoError(t, loadTestData("global_transform_cases.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			a := AttrList(tt.Initial)
			require.NoError(t, a.SetGlobalTransformSpec())
			require.Len(t, a, len(tt.WantSpecs))

			for i, wantSpec := range tt.WantSpecs {
				assert.Equal(t, wantSpec, a[i].TransformSpec, "attr[%d].TransformSpec", i)
			}
		})
	}
}

func TestAttr_Transform(t *testing.T) {
	var tests []testTransformCase
	require.NoError(t, loadTestData("transform_cases.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			attr := Attr{TransformSpec: tt.TransformSpec}
			assert.Equal(t, tt.Want, attr.Transform(tt.Input))
		})
	}
}

func TestAttrList_String(t *testing.T) {
	var tests []testStringCase
	require.NoError(t, loadTestData("string_cases.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			a := AttrList(tt.AttrList)
			assert.Equal(t, tt.Want, a.String())
		})
	}
}

func TestAttrList_Type(t *testing.T) {
	a := AttrList{}
	assert.Equal(t, "list", a.Type())
}

func TestAttr_Transform_Timezone(t *testing.T) {
	tests := []struct {
		name  string
		tz    string
		input string
		want  string
	}{
		{"TZ env var used", "America/Los_Angeles", "2024-01-15T10:00:00Z", "2024-01-15T02:00:00PST"},
		{"no timezone passthrough", "", "2024-01-15T10:00:00Z", "2024-01-15T10:00:00Z"},
		{"not a time", "America/Los_Angeles", "soon", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TZ", tt.tz)
			if tt.tz == "" {
				os.Unsetenv("TZ")
			}

			attr := Attr{TransformSpec: "t"}
			assert.Equal(t, tt.want, attr.Transform(tt.input))
		})
	}
}

func TestBuild(t *testing.T) {
	columns := []string{"Item", "Price", "Notes"}

	tests := []struct {
		name        string
		spec        string
		wantKeys    []string
		wantInclude []bool
	}{
		{"empty shows all", "", []string{"Item", "Price", "Notes"}, []bool{true, true, true}},
		{"named only", "Price,Item", []string{"Price", "Item", "Notes"}, []bool{true, true, false}},
		{"wildcard keeps rest", "*,!Notes", []string{"*", "Notes", "Item", "Price"}, []bool{false, false, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := Build(columns, tt.spec)
			require.NoError(t, err)

			var keys []string
			var include []bool
			for _, a := range list {
				keys = append(keys, a.Key)
				include = append(include, a.Include)
			}
			assert.Equal(t, tt.wantKeys, keys)
			assert.Equal(t, tt.wantInclude, include)
		})
	}
}

func TestBuild_GlobalTransform(t *testing.T) {
	list, err := Build([]string{"Item"}, "*::u")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "WIDGET", list[1].Transform("Widget"))
}
