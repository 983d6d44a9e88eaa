package collection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCollections(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collections.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCollections(t, `
[collections]
day1 = ["D1S1", "D1S2"]
ch3 = ["3.3-1", "3.3-2", "3.3-10"]
`)

	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1S1", "D1S2"}, set.Collections["day1"])
	assert.Equal(t, []string{"3.3-1", "3.3-2", "3.3-10"}, set.Collections["ch3"])
	assert.Equal(t, []string{"ch3", "day1"}, set.Names())
}

func TestLoad_MissingFile(t *testing.T) {
	set, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Empty(t, set.Collections)
	assert.Equal(t, []string{"D1S1"}, set.Resolve([]string{"D1S1"}))
}

func TestLoad_EmptyPath(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.NotNil(t, set.Collections)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeCollections(t, "[collections\nday1 = ")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	set := &Set{Collections: map[string][]string{
		"day1": {"D1S1", "D1S2"},
		"day2": {"D2S1", "D1S2"},
	}}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"collection", []string{"day1"}, []string{"D1S1", "D1S2"}},
		{"plain units", []string{"X", "Y"}, []string{"X", "Y"}},
		{"mixed keeps order", []string{"Z", "day2", "day1"}, []string{"Z", "D2S1", "D1S2", "D1S1"}},
		{"duplicate args", []string{"D1S1", "day1", "D1S1"}, []string{"D1S1", "D1S2"}},
		{"none", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Resolve(tt.args))
		})
	}
}
