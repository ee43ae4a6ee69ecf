package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Default values for the bridge configuration.
const (
	DefaultCallTimeout   = 10 * time.Second
	DefaultPromptTimeout = 2 * time.Minute

	DefaultHandlerName = "titancap"
	DefaultGlobalName  = "titanHost"
)

func applyDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("dispatch.call_timeout", DefaultCallTimeout)

	v.SetDefault("permissions.database_path", defaultPermissionDBPath())
	v.SetDefault("permissions.prompt_timeout", DefaultPromptTimeout)

	// Low-risk capability groups default on; the permission-gated and
	// hardware-coupled ones default off, matching the engine defaults.
	v.SetDefault("capabilities.clipboard_enabled", true)
	v.SetDefault("capabilities.share_enabled", true)
	v.SetDefault("capabilities.notifications_enabled", false)
	v.SetDefault("capabilities.geolocation_enabled", false)
	v.SetDefault("capabilities.vibration_enabled", true)
	v.SetDefault("capabilities.battery_enabled", true)
	v.SetDefault("capabilities.network_enabled", true)
	v.SetDefault("capabilities.orientation_enabled", true)

	v.SetDefault("facade.handler_name", DefaultHandlerName)
	v.SetDefault("facade.global_name", DefaultGlobalName)
}

func defaultPermissionDBPath() string {
	dir, err := DataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "permissions.db")
}
