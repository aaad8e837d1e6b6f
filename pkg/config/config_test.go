package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
timing:
  type: sqlite
report:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 4, cfg.Run.Processes)
	assert.Equal(t, 1024, cfg.Run.Elements)
	assert.Equal(t, 64, cfg.Run.BatchSize)
	assert.True(t, cfg.Run.Validate)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
run:
  processes: 8
  elements: 2048
  batch_size: 128
  bound: 1000000
  validate: false
timing:
  type: postgres
  host: db.example.com
  port: 5432
  database: bitonicsort
  user: admin
  password: secret
report:
  type: local
  local_path: /tmp/reports
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Run.Processes)
	assert.Equal(t, 2048, cfg.Run.Elements)
	assert.Equal(t, 128, cfg.Run.BatchSize)
	assert.False(t, cfg.Run.Validate)
	assert.Equal(t, "db.example.com", cfg.Timing.Host)
	assert.Equal(t, 5432, cfg.Timing.Port)
	assert.Equal(t, "bitonicsort", cfg.Timing.Database)
}

func TestLoad_InvalidTimingType(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
timing:
  type: oracle
report:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported timing backend")
}

func TestLoad_COSWithCredentials(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
timing:
  type: sqlite
report:
  type: cos
  bucket: test-bucket
  region: ap-guangzhou
  secret_id: test-id
  secret_key: test-key
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, "cos", cfg.Report.Type)
	assert.Equal(t, "test-bucket", cfg.Report.Bucket)
}

func TestValidate_InvalidTimingType(t *testing.T) {
	cfg := &Config{
		Timing: TimingConfig{Type: "oracle"},
		Report: ReportConfig{Type: "local"},
		Run:    RunConfig{Processes: 4},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported timing backend")
}

func TestValidate_InvalidReportType(t *testing.T) {
	cfg := &Config{
		Timing: TimingConfig{Type: "sqlite"},
		Report: ReportConfig{Type: "ftp"},
		Run:    RunConfig{Processes: 4},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report storage type")
}

func TestValidate_InvalidProcessCount(t *testing.T) {
	cfg := &Config{
		Timing: TimingConfig{Type: "sqlite"},
		Report: ReportConfig{Type: "local"},
		Run:    RunConfig{Processes: 0},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "run.processes must be at least 1")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
timing:
  type: mysql
  host: mysql.local
report:
  type: local
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Timing.Type)
	assert.Equal(t, "mysql.local", cfg.Timing.Host)
}
