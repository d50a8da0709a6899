package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_Value(t *testing.T) {
	v, err := JSONMap{"email": "a@example.com"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@example.com"}`, string(v.([]byte)))

	v, err = JSONMap(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestJSONMap_Scan(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    JSONMap
		wantErr bool
	}{
		{name: "nil", in: nil, want: JSONMap{}},
		{name: "bytes", in: []byte(`{"purpose":"login"}`), want: JSONMap{"purpose": "login"}},
		{name: "text", in: `{"n":1}`, want: JSONMap{"n": float64(1)}},
		{name: "decoded map", in: map[string]any{"k": "v"}, want: JSONMap{"k": "v"}},
		{name: "bad json", in: []byte(`{`), wantErr: true},
		{name: "bad type", in: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got JSONMap
			err := got.Scan(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONMap_GetString(t *testing.T) {
	m := JSONMap{"email": "a@example.com", "n": 1}

	assert.Equal(t, "a@example.com", m.GetString("email"))
	assert.Empty(t, m.GetString("n"))
	assert.Empty(t, m.GetString("missing"))
}
