package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apiserver.yaml")
	content := `
server:
  port: 8080
database:
  type: sqlite
  dbname: ` + filepath.Join(dir, "mesa.db") + `
jwt:
  secret_key: ${MESA_JWT_SECRET:0123456789abcdef0123456789abcdef}
  duration: 24h
usage:
  store: database
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.JWT.SecretKey)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "database", cfg.Usage.Store)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("MESA_DB_TYPE", "postgres")

	dir := t.TempDir()
	path := filepath.Join(dir, "apiserver.yaml")
	content := "database:\n  type: ${MESA_DB_TYPE:sqlite}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)
}

func TestDatabaseConfig_GetDSN_Postgres(t *testing.T) {
	c := &DatabaseConfig{Type: "postgres", Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.GetDSN())
}

func TestDatabaseConfig_GetDSN_MySQL(t *testing.T) {
	c := &DatabaseConfig{Type: "mysql", Host: "h", Port: 3306, User: "u", Password: "p", DBName: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=Local", c.GetDSN())
}

func TestDatabaseConfig_GetDSN_Unknown(t *testing.T) {
	c := &DatabaseConfig{Type: "unknown"}
	assert.Equal(t, "", c.GetDSN())
}
