package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/aanand-mishra/cantina-api/internal/config"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env       string
		debugOn   bool
		jsonStyle bool
	}{
		{env: "dev", debugOn: true},
		{env: "staging", debugOn: true, jsonStyle: true},
		{env: "prod", debugOn: false, jsonStyle: true},
		{env: "anything", debugOn: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			c := qt.New(t)

			log := setupLogger(tt.env)
			c.Assert(log.Enabled(context.Background(), slog.LevelDebug), qt.Equals, tt.debugOn)

			_, isJSON := log.Handler().(*slog.JSONHandler)
			c.Assert(isJSON, qt.Equals, tt.jsonStyle)
		})
	}
}

func TestOpenStorage(t *testing.T) {
	c := qt.New(t)

	cfg := &config.Config{Storage: config.Storage{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(c.TempDir(), "data", "cantina.db"),
	}}

	store, err := openStorage(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(store.Close(), qt.IsNil)

	_, err = openStorage(&config.Config{Storage: config.Storage{Driver: "oracle"}})
	c.Assert(err, qt.ErrorMatches, `unknown storage driver "oracle"`)
}

func TestMigrateCommand(t *testing.T) {
	c := qt.New(t)

	dir := c.TempDir()
	dbPath := filepath.Join(dir, "data", "cantina.db")
	configPath := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(configPath, []byte(`
env: "prod"
storage:
  driver: "sqlite"
  path: "`+dbPath+`"
http_server:
  address: "localhost:0"
`), 0o600)
	c.Assert(err, qt.IsNil)

	cmd := newMigrateCommand(&configPath)
	cmd.SetArgs([]string{})
	c.Assert(cmd.Execute(), qt.IsNil)

	_, err = os.Stat(dbPath)
	c.Assert(err, qt.IsNil)
}
