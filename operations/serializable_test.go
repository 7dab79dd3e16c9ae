package operations

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

func Test_IsSerializable(t *testing.T) {
	t.Parallel()

	type exported struct {
		Name  string
		Bytes []byte
	}

	tests := []struct {
		name string
		v    any
		want bool
	}{
		{name: "nil", v: nil, want: true},
		{name: "int", v: 42, want: true},
		{name: "string", v: "abc", want: true},
		{name: "exported struct", v: exported{Name: "a", Bytes: []byte{1, 2}}, want: true},
		{name: "func", v: func() {}, want: false},
		{name: "channel", v: make(chan int), want: false},
		{
			name: "unexported field",
			v: struct {
				A int
				b int
			}{A: 1, b: 2},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, IsSerializable(logger.Test(t), tt.v))
		})
	}
}

func Test_constructUniqueHashFrom(t *testing.T) {
	t.Parallel()

	type input struct {
		B string `json:"b"`
		A uint64 `json:"a"`
	}

	def := Definition{ID: "op", Version: semver.MustParse("1.0.0")}
	typed := input{B: "x", A: 1<<60 + 1}

	typedHash, err := constructUniqueHashFrom(nil, def, typed)
	require.NoError(t, err)

	// the same input decoded generically from a reports file
	generic := map[string]any{"a": json.Number("1152921504606846977"), "b": "x"}
	genericHash, err := constructUniqueHashFrom(nil, def, generic)
	require.NoError(t, err)
	assert.Equal(t, typedHash, genericHash)

	otherVersion, err := constructUniqueHashFrom(nil,
		Definition{ID: "op", Version: semver.MustParse("1.0.1")}, typed)
	require.NoError(t, err)
	assert.NotEqual(t, typedHash, otherVersion)

	cache := &sync.Map{}
	cached, err := constructUniqueHashFrom(cache, def, typed)
	require.NoError(t, err)
	again, err := constructUniqueHashFrom(cache, def, typed)
	require.NoError(t, err)
	assert.Equal(t, typedHash, cached)
	assert.Equal(t, cached, again)
}
