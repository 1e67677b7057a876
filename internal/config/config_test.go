package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoad_ReadsYaml(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 8080
  mode: debug
postgres:
  host: db
  database: payments
  user: svc
  password: secret
  conn_max_lifetime: 5m
  logging: true
log:
  format: json
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, int64(100<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 5*time.Minute, cfg.Postgres.ConnMaxLifetime)
	assert.True(t, cfg.Postgres.Logging)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "x-cdp-request-id", cfg.Tracing.Header)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "fcp_mpdp_backend", cfg.Postgres.Database)
	assert.Equal(t, 30*time.Minute, cfg.Postgres.ConnMaxLifetime)
}

func TestLoad_EnvOverridesYaml(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 8080\npostgres:\n  password: fromyaml\n")
	t.Setenv("PORT", "9090")
	t.Setenv("POSTGRES_PASSWORD", "fromenv")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRACING_HEADER", "x-request-id")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "fromenv", cfg.Postgres.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "x-request-id", cfg.Tracing.Header)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
}

func TestPostgresConfig_DSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, Database: "payments", User: "svc", Password: "p@ss", SSLMode: "disable"}

	assert.Equal(t, "postgres://svc:p%40ss@db:5432/payments?sslmode=disable", p.DSNString())
	assert.Equal(t, "postgres://svc:p%40ss@db:5432/postgres?sslmode=disable", p.AdminDSNString())
	assert.Equal(t, "payments", p.DatabaseName())

	p.DSN = "postgres://u:p@other:6543/custom?sslmode=require"
	assert.Equal(t, p.DSN, p.DSNString())
	assert.Equal(t, "postgres://u:p@other:6543/postgres?sslmode=require", p.AdminDSNString())
	assert.Equal(t, "custom", p.DatabaseName())
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 3001}
	assert.Equal(t, "0.0.0.0:3001", s.Addr())
}
