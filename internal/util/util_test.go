package util

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsObject(t *testing.T) {
	type user struct{ Name string }

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"string", "foo", false},
		{"int", 42, false},
		{"bool", true, false},
		{"func", func() {}, false},
		{"map", map[string]string{"a": "b"}, true},
		{"empty map", map[string]any{}, true},
		{"url values", url.Values{"a": {"b"}}, true},
		{"struct", user{Name: "x"}, true},
		{"struct pointer", &user{}, true},
		{"nil struct pointer", (*user)(nil), false},
		{"slice", []string{"a"}, true},
		{"array", [2]int{1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsObject(tt.value))
		})
	}
}

func TestSize(t *testing.T) {
	type pair struct {
		Key   string
		Value string
		note  string
	}

	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"nil", nil, 0},
		{"zero int", 0, 0},
		{"map", map[string]int{"a": 1, "b": 2}, 2},
		{"slice", []int{1, 2, 3}, 3},
		{"string", "abcd", 4},
		{"struct counts exported fields", pair{}, 2},
		{"pointer to map", &map[string]int{"a": 1}, 1},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Size(tt.value))
		})
	}
}

func TestSerialize(t *testing.T) {
	type params struct {
		Page  int    `url:"page"`
		Query string `url:"q"`
		Skip  string `url:"-"`
	}

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"non-object", "foo=bar", ""},
		{"nil", nil, ""},
		{"empty map", map[string]string{}, ""},
		{"single pair", map[string]string{"foo": "bar"}, "foo=bar"},
		{"sorted keys", map[string]any{"y": 2, "x": 1}, "x=1&y=2"},
		{"escaping", map[string]string{"a b": "c&d=e"}, "a%20b=c%26d%3De"},
		{"bool and nil values", map[string]any{"on": true, "off": nil}, "off=null&on=true"},
		{"list value", map[string]any{"ids": []int{1, 2}}, "ids=1%2C2"},
		{"url values", url.Values{"k": {"v1", "v2"}}, "k=v1&k=v2"},
		{"struct tags", params{Page: 2, Query: "go lang", Skip: "x"}, "page=2&q=go%20lang"},
		{"slice indexes", []string{"a", "b"}, "0=a&1=b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(tt.value))
		})
	}
}

func TestSerialize_ManyIndexes(t *testing.T) {
	values := make([]int, 11)
	got := Serialize(values)
	assert.Equal(t, "0=0&1=0&2=0&3=0&4=0&5=0&6=0&7=0&8=0&9=0&10=0", got)
}

func TestUnserialize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"single", "foo=bar", map[string]string{"foo": "bar"}},
		{"multiple", "a=1&b=2", map[string]string{"a": "1", "b": "2"}},
		{"split on first equals", "token=a=b", map[string]string{"token": "a=b"}},
		{"missing value", "flag", map[string]string{"flag": ""}},
		{"last duplicate wins", "a=1&a=2", map[string]string{"a": "2"}},
		{"percent decoding", "a%20b=c%26d", map[string]string{"a b": "c&d"}},
		{"plus kept literally", "q=go+lang", map[string]string{"q": "go+lang"}},
		{"empty segments skipped", "a=1&&b=2&", map[string]string{"a": "1", "b": "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unserialize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnserialize_MalformedEscape(t *testing.T) {
	_, err := Unserialize("a=%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode value")
}

func TestUnserialize_PlusSurvivesSerialize(t *testing.T) {
	decoded, err := Unserialize("a=1+2")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1+2"}, decoded)
	assert.Equal(t, "a=1%2B2", Serialize(decoded))
}

func TestSerializeUnserialize_PreservesPairs(t *testing.T) {
	inputs := []string{
		"b=2&a=1",
		"name=John%20Doe&email=john%40example.com",
		"x=1&y=&z=a%3Db",
		"sum=1+2",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			decoded, err := Unserialize(input)
			require.NoError(t, err)

			roundTripped, err := Unserialize(Serialize(decoded))
			require.NoError(t, err)
			assert.Equal(t, decoded, roundTripped)
		})
	}
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "a%20b%2Bc", EncodeComponent("a b+c"))
	assert.Equal(t, "%2F%3F%26%3D", EncodeComponent("/?&="))
}
