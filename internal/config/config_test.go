package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/aanand-mishra/cantina-api/internal/config"
)

func writeConfig(c *qt.C, body string) string {
	path := filepath.Join(c.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(body), 0o600)
	c.Assert(err, qt.IsNil)
	return path
}

func TestLoad(t *testing.T) {
	c := qt.New(t)

	path := writeConfig(c, `
env: "prod"
storage:
  driver: "sqlite"
  path: "/tmp/cantina.db"
http_server:
  address: "localhost:9090"
  read_timeout: 3s
`)

	cfg, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Env, qt.Equals, "prod")
	c.Assert(cfg.Storage.Driver, qt.Equals, config.DriverSQLite)
	c.Assert(cfg.Storage.Path, qt.Equals, "/tmp/cantina.db")
	c.Assert(cfg.Addr, qt.Equals, "localhost:9090")
	c.Assert(cfg.ReadTimeout, qt.Equals, 3*time.Second)
	c.Assert(cfg.WriteTimeout, qt.Equals, 10*time.Second)
	c.Assert(cfg.IdleTimeout, qt.Equals, 60*time.Second)
}

func TestLoadEnvOverride(t *testing.T) {
	c := qt.New(t)
	c.Setenv("HTTP_SERVER_ADDR", "0.0.0.0:8000")

	path := writeConfig(c, `
env: "dev"
storage:
  path: "cantina.db"
http_server:
  address: "localhost:8082"
`)

	cfg, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Addr, qt.Equals, "0.0.0.0:8000")
	c.Assert(cfg.Storage.Driver, qt.Equals, config.DriverSQLite)
}

func TestLoadFromConfigPathEnv(t *testing.T) {
	c := qt.New(t)

	path := writeConfig(c, `
env: "dev"
storage:
  path: "cantina.db"
http_server:
  address: "localhost:8082"
`)
	c.Setenv("CONFIG_PATH", path)

	cfg, err := config.Load("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Env, qt.Equals, "dev")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "postgres without dsn",
			body: `
env: "dev"
storage:
  driver: "postgres"
http_server:
  address: "localhost:8082"
`,
			wantErr: "storage.dsn is required for the postgres driver",
		},
		{
			name: "sqlite without path",
			body: `
env: "dev"
http_server:
  address: "localhost:8082"
`,
			wantErr: "storage.path is required for the sqlite driver",
		},
		{
			name: "unknown driver",
			body: `
env: "dev"
storage:
  driver: "oracle"
http_server:
  address: "localhost:8082"
`,
			wantErr: `unknown storage driver "oracle"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Setenv("STORAGE_PATH", "")
			c.Setenv("DATABASE_URL", "")

			_, err := config.Load(writeConfig(c, tt.body))
			c.Assert(err, qt.ErrorMatches, tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	c := qt.New(t)

	_, err := config.Load(filepath.Join(c.TempDir(), "nope.yaml"))
	c.Assert(err, qt.ErrorMatches, "config file does not exist: .*")
}
