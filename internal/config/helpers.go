package config

import (
	"net"
	"strconv"
)

// ServerAddress returns the HTTP listen address.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// Database returns the database entry with the given id.
func (c *Config) Database(id string) (DatabaseConfig, bool) {
	for _, db := range c.Databases {
		if db.ID == id {
			return db, true
		}
	}
	return DatabaseConfig{}, false
}

// Address returns host:port of the database seed node.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
