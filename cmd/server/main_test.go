package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateDatabaseURLFlag(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	tests := []struct {
		name string
		args func(url string) []string
	}{
		{"on subcommand", func(url string) []string { return []string{"cerebmod", "migrate", "--database-url=" + url} }},
		{"on app", func(url string) []string { return []string{"cerebmod", "--database-url=" + url, "migrate"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "migrate.sqlite")
			require.NoError(t, run(tt.args("sqlite://"+path)))
			_, err := os.Stat(path)
			assert.NoError(t, err)
		})
	}
}

func TestMigrateWithoutDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	assert.Error(t, run([]string{"cerebmod", "migrate"}))
}
