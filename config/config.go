// Package config provides configuration management for the yelpcamp application.
// It loads settings from environment variables, optionally layered over a YAML file,
// with support for required variables, default values, and collective error reporting:
// every problem is gathered and returned at once instead of failing on the first one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Environment names for Server.Env.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// PoolConfig represents configuration for the database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication and session related configuration.
type AuthConfig struct {
	SessionSecret string        // Secret key for signing session cookies
	SessionTTL    time.Duration // Lifetime of a session cookie and its record
	BcryptCost    int           // Work factor for password hashes
	AdminPass     string        // Query password for the /admin area
	SecureCookie  bool          // Mark the session cookie Secure (HTTPS only)
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port string // Port for the HTTP server
	Env  string // development or production
}

// IsDevelopment reports whether diagnostic detail may be shown to clients.
func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == EnvDevelopment
}

// StoreConfig holds document store settings.
type StoreConfig struct {
	Backend        string        // postgres or memory
	OpTimeout      time.Duration // deadline applied to each store operation
	MigrationsPath string
	SweepInterval  time.Duration // how often expired sessions are purged
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB     *PoolConfig
	Auth   *AuthConfig
	Server *ServerConfig
	Store  *StoreConfig
}

// loader resolves keys from the process environment first and the optional
// YAML file second, and collects every problem it runs into.
type loader struct {
	file map[string]string
	errs *multierror.Error
}

func (l *loader) lookup(key string) (string, bool) {
	if value, exists := os.LookupEnv(key); exists {
		return value, true
	}
	value, exists := l.file[key]
	return value, exists
}

// required gets a required variable, recording an error if it is not set.
func (l *loader) required(key string) string {
	value, exists := l.lookup(key)
	if !exists || value == "" {
		l.errs = multierror.Append(l.errs, fmt.Errorf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// optional gets a variable with a default string value.
func (l *loader) optional(key, defaultValue string) string {
	if value, exists := l.lookup(key); exists {
		return value
	}
	return defaultValue
}

// optionalInt gets a variable parsed as an int.
func (l *loader) optionalInt(key string, defaultValue int) int {
	valueStr, exists := l.lookup(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		l.errs = multierror.Append(l.errs, fmt.Errorf("invalid value for %s: expected integer, got '%s': %w", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// optionalDuration gets a variable parsed as time.Duration ("15m", "1h30s").
func (l *loader) optionalDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := l.lookup(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		l.errs = multierror.Append(l.errs, fmt.Errorf("invalid value for %s: expected duration string, got '%s': %w", key, valueStr, err))
		return defaultValue
	}
	if valueDuration <= 0 {
		l.errs = multierror.Append(l.errs, fmt.Errorf("invalid value for %s: duration must be positive, got '%s'", key, valueStr))
		return defaultValue
	}
	return valueDuration
}

// optionalBool gets a variable parsed as a bool ("true", "1", "false", ...).
func (l *loader) optionalBool(key string, defaultValue bool) bool {
	valueStr, exists := l.lookup(key)
	if !exists {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		l.errs = multierror.Append(l.errs, fmt.Errorf("invalid value for %s: expected boolean, got '%s': %w", key, valueStr, err))
		return defaultValue
	}
	return valueBool
}

// inRange records an error when value lies outside [lo, hi].
func (l *loader) inRange(key string, value, lo, hi int) {
	if value < lo || value > hi {
		l.errs = multierror.Append(l.errs, fmt.Errorf("%s (%d) must be between %d and %d", key, value, lo, hi))
	}
}

func (l *loader) oneOf(key, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	l.errs = multierror.Append(l.errs, fmt.Errorf("%s must be one of %s, got '%s'", key, strings.Join(allowed, ", "), value))
}

// readFile loads a flat YAML mapping of variable names to values, e.g.
//
//	DB_USER: yelp
//	SESSION_TTL: 168h
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}

// LoadConfig creates and returns an AppConfig by reading and validating settings.
// path names an optional YAML file; when empty, YELPCAMP_CONFIG is consulted.
// Environment variables always win over file values.
func LoadConfig(path string) (*AppConfig, error) {
	l := &loader{}

	if path == "" {
		path = os.Getenv("YELPCAMP_CONFIG")
	}
	if path != "" {
		values, err := readFile(path)
		if err != nil {
			return nil, err
		}
		l.file = values
	}

	// Store Configuration
	storeConfig := &StoreConfig{
		Backend:        l.optional("STORE_BACKEND", BackendPostgres),
		OpTimeout:      l.optionalDuration("STORE_OP_TIMEOUT", 5*time.Second),
		MigrationsPath: l.optional("MIGRATIONS_PATH", "./migrations"),
		SweepInterval:  l.optionalDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
	}
	l.oneOf("STORE_BACKEND", storeConfig.Backend, BackendPostgres, BackendMemory)

	// Database Configuration, only mandatory when PostgreSQL backs the store.
	dbConfig := &PoolConfig{
		Host:    l.optional("DB_HOST", "localhost"),
		Port:    l.optionalInt("DB_PORT", 5432),
		MaxSize: l.optionalInt("DB_POOL_SIZE", 10),
	}
	if storeConfig.Backend == BackendPostgres {
		dbConfig.User = l.required("DB_USER")
		dbConfig.Password = l.required("DB_PASSWORD")
		dbConfig.DBName = l.required("DB_NAME")
		l.inRange("DB_POOL_SIZE", dbConfig.MaxSize, 1, 100)
	}

	// Auth Configuration
	authConfig := &AuthConfig{
		SessionSecret: l.required("SESSION_SECRET"),
		SessionTTL:    l.optionalDuration("SESSION_TTL", 168*time.Hour), // 7 days
		BcryptCost:    l.optionalInt("BCRYPT_COST", 12),
		AdminPass:     l.optional("ADMIN_PASS", "Admin"),
	}
	// bcrypt accepts costs from 4 to 31.
	l.inRange("BCRYPT_COST", authConfig.BcryptCost, 4, 31)

	// Server Configuration
	serverConfig := &ServerConfig{
		Port: l.optional("PORT", "3000"),
		Env:  l.optional("APP_ENV", EnvDevelopment),
	}
	l.oneOf("APP_ENV", serverConfig.Env, EnvDevelopment, EnvProduction)

	// Secure cookies by default in production, where TLS terminates in front of us.
	authConfig.SecureCookie = l.optionalBool("SESSION_SECURE_COOKIE", serverConfig.Env == EnvProduction)

	if err := l.errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("configuration errors: %w", err)
	}

	return &AppConfig{
		DB:     dbConfig,
		Auth:   authConfig,
		Server: serverConfig,
		Store:  storeConfig,
	}, nil
}
