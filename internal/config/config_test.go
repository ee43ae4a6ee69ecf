package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, DefaultCallTimeout, cfg.Dispatch.CallTimeout)
	require.Equal(t, DefaultPromptTimeout, cfg.Permissions.PromptTimeout)
	require.Equal(t, DefaultHandlerName, cfg.Facade.HandlerName)
	require.Equal(t, DefaultGlobalName, cfg.Facade.GlobalName)
	require.NotEmpty(t, cfg.Permissions.DatabasePath)

	require.True(t, cfg.Capabilities.ClipboardEnabled)
	require.False(t, cfg.Capabilities.NotificationsEnabled, "gated groups default off")
	require.False(t, cfg.Capabilities.GeolocationEnabled, "gated groups default off")
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := isolateEnv(t)

	cfgDir := filepath.Join(dir, "capbridge")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(`
logging:
  level: debug
dispatch:
  call_timeout: 3s
capabilities:
  geolocation_enabled: true
facade:
  global_name: myHost
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, 3*time.Second, cfg.Dispatch.CallTimeout)
	require.True(t, cfg.Capabilities.GeolocationEnabled)
	require.Equal(t, "myHost", cfg.Facade.GlobalName)

	// Untouched fields keep their defaults.
	require.Equal(t, DefaultHandlerName, cfg.Facade.HandlerName)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			Logging:  LoggingConfig{Format: "console"},
			Dispatch: DispatchConfig{CallTimeout: time.Second},
			Permissions: PermissionsConfig{
				PromptTimeout: time.Minute,
			},
			Facade: FacadeConfig{HandlerName: "titancap", GlobalName: "titanHost"},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Logging.Format = "xml"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Dispatch.CallTimeout = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Permissions.PromptTimeout = -time.Second
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Facade.HandlerName = "has space"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Facade.GlobalName = "1stChar"
	require.Error(t, cfg.Validate())
}

func TestConfigDirHonorsXDG(t *testing.T) {
	dir := isolateEnv(t)

	got, err := ConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "capbridge"), got)

	data, err := DataDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "capbridge"), data)
}
