// Package config loads server configuration through viper: defaults first,
// then an optional configs/config.yml, then BLOG_* environment variables,
// each layer overriding the previous one.
//
//	BLOG_PORT=9000 BLOG_DB_PATH=/var/lib/blog/blog.db BLOG_JWT_SECRET=... ./server
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	BcryptCost int
}

// Load reads the configuration. A missing config file is fine (defaults and
// env vars cover everything); a malformed one is an error.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db.path", "data/blog.db")
	v.SetDefault("bcrypt.cost", 12)

	v.AddConfigPath("configs")
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	cfg := Config{
		Port:       v.GetInt("port"),
		DBPath:     v.GetString("db.path"),
		JWTSecret:  v.GetString("jwt.secret"),
		BcryptCost: v.GetInt("bcrypt.cost"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: jwt.secret is required (set BLOG_JWT_SECRET)")
	}

	return cfg, nil
}
