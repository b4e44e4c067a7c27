package config

import (
	"fmt"
	"strings"
)

// Validate lists the settings a production deployment cannot start without.
func (c Config) Validate() error {
	var missing []string
	if len(c.SessionSecret) == 0 {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
	}
	return nil
}
