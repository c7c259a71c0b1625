package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("IFREC_TEST_DIR", "/data")
	t.Setenv("IFREC_TEST_HOME", "~/funds")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde prefix", in: "~/funds/raw", want: filepath.Join(home, "funds/raw")},
		{name: "env var", in: "$IFREC_TEST_DIR/01_raw", want: "/data/01_raw"},
		{name: "plain", in: "data/01_raw", want: "data/01_raw"},
		{name: "cleaned", in: "data//01_raw/./cvm/", want: "data/01_raw/cvm"},
		{name: "env var holding tilde", in: "$IFREC_TEST_HOME/raw", want: filepath.Join(home, "funds/raw")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestExpandPaths(t *testing.T) {
	t.Setenv("IFREC_TEST_DIR", "/data")
	raw, reports := "$IFREC_TEST_DIR/01_raw/", "out//08_reporting"

	expandPaths(&raw, &reports)

	assert.Equal(t, "/data/01_raw", raw)
	assert.Equal(t, "out/08_reporting", reports)
}
