package config

import (
	"fmt"
	"strings"
	"time"
)

type SessionConfig struct {
	CookieName string        `koanf:"cookieName"`
	TTL        time.Duration `koanf:"ttl"`
}

// String returns a string representation of the session configuration.
func (c *SessionConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Session ---\n")
	b.WriteString(fmt.Sprintf("  cookieName: %s\n", c.CookieName))
	b.WriteString(fmt.Sprintf("  ttl: %s\n", c.TTL))
	return b.String()
}

func (c *SessionConfig) Validate() error {
	if c.CookieName == "" {
		return fmt.Errorf("session cookie name is not configured")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("session TTL must be greater than zero")
	}
	return nil
}
