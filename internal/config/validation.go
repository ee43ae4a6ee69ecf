package config

import (
	"fmt"
	"regexp"
)

// identifierRe matches names safe to splice into the injected script as a
// message-handler or window-property name.
var identifierRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Validate checks the configuration for values the bridge cannot run with.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}

	if c.Dispatch.CallTimeout <= 0 {
		return fmt.Errorf("dispatch.call_timeout must be positive, got %s", c.Dispatch.CallTimeout)
	}

	if c.Permissions.PromptTimeout <= 0 {
		return fmt.Errorf("permissions.prompt_timeout must be positive, got %s", c.Permissions.PromptTimeout)
	}

	if !identifierRe.MatchString(c.Facade.HandlerName) {
		return fmt.Errorf("facade.handler_name %q is not a valid identifier", c.Facade.HandlerName)
	}
	if !identifierRe.MatchString(c.Facade.GlobalName) {
		return fmt.Errorf("facade.global_name %q is not a valid identifier", c.Facade.GlobalName)
	}

	return nil
}
