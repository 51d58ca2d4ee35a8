package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumulus-hr/cumulus/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := config.Default()

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "sqlite", c.Store.Driver)
	assert.Equal(t, "hr.db", c.Store.Path)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.Policy.EnforceAnnualCap)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, `
addr: ":9090"
store:
  driver: workbook
  path: /data/hr.xlsx
policy:
  enforce_annual_cap: true
log_level: debug
`)

	c, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Addr)
	assert.Equal(t, "workbook", c.Store.Driver)
	assert.Equal(t, "/data/hr.xlsx", c.Store.Path)
	assert.True(t, c.Policy.EnforceAnnualCap)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, `addr: ":3000"`)

	c, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":3000", c.Addr)
	assert.Equal(t, "sqlite", c.Store.Driver)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_MemoryDriverNeedsNoPath(t *testing.T) {
	path := writeFile(t, `
store:
  driver: memory
  path: ""
`)

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Store.Driver)
}

func TestLoad_UnknownDriver(t *testing.T) {
	path := writeFile(t, `
store:
  driver: postgres
`)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_DriverWithoutPath(t *testing.T) {
	path := writeFile(t, `
store:
  driver: workbook
  path: ""
`)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeFile(t, "addr: [:::")

	_, err := config.Load(path)
	assert.Error(t, err)
}
