// Package config loads notes settings from a .notes config file, the
// environment, and command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/notes/pkg/logging"
	"tableflip.dev/notes/pkg/store"
)

// Keys shared with command flag bindings.
const (
	KeyBackend     = "backend"
	KeyPath        = "path"
	KeyDiskDir     = "disk.dir"
	KeyPostgresURL = "postgres.url"
	KeyRemoteURL   = "remote.url"
	KeyRemoteToken = "remote.token"
	KeyServerAddr  = "server.addr"
	KeyServerToken = "server.token"
	KeyLogLevel    = "log.level"
	KeyLogFile     = "log.file"
)

// Config holds every notes setting.
type Config struct {
	Backend  string
	Path     string
	Disk     DiskConfig
	Postgres PostgresConfig
	Remote   RemoteConfig
	Server   ServerConfig
	Log      LogConfig
}

type DiskConfig struct {
	Dir string
}

type PostgresConfig struct {
	URL string
}

type RemoteConfig struct {
	URL   string
	Token string
}

type ServerConfig struct {
	Addr  string
	Token string
}

type LogConfig struct {
	Level string
	File  string
}

// New returns a viper instance with defaults, env binding and config search
// paths set. Commands bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBackend, store.BackendDisk)
	v.SetDefault(KeyPath, "items")
	v.SetDefault(KeyDiskDir, "~/.notes.db")
	v.SetDefault(KeyPostgresURL, "")
	v.SetDefault(KeyRemoteURL, "ws://127.0.0.1:7070/v1/ws")
	v.SetDefault(KeyRemoteToken, "")
	v.SetDefault(KeyServerAddr, "127.0.0.1:7070")
	v.SetDefault(KeyServerToken, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")

	v.SetConfigName(".notes") // .yaml is implicit
	v.SetEnvPrefix("NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("NOTES_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	return v
}

// Load reads .env, then the config file if one exists, and resolves paths.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	c := &Config{
		Backend:  v.GetString(KeyBackend),
		Path:     v.GetString(KeyPath),
		Disk:     DiskConfig{Dir: v.GetString(KeyDiskDir)},
		Postgres: PostgresConfig{URL: v.GetString(KeyPostgresURL)},
		Remote:   RemoteConfig{URL: v.GetString(KeyRemoteURL), Token: v.GetString(KeyRemoteToken)},
		Server:   ServerConfig{Addr: v.GetString(KeyServerAddr), Token: v.GetString(KeyServerToken)},
		Log:      LogConfig{Level: v.GetString(KeyLogLevel), File: v.GetString(KeyLogFile)},
	}

	var err error
	if c.Disk.Dir, err = homedir.Expand(c.Disk.Dir); err != nil {
		return nil, fmt.Errorf("config: expand disk.dir: %w", err)
	}
	if c.Log.File, err = homedir.Expand(c.Log.File); err != nil {
		return nil, fmt.Errorf("config: expand log.file: %w", err)
	}
	if err := store.ValidateParent(c.Path); err != nil {
		return nil, fmt.Errorf("config: path: %w", err)
	}
	return c, nil
}

// StoreOptions maps the config onto store.Open options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:     c.Backend,
		DiskPath:    c.Disk.Dir,
		PostgresURL: c.Postgres.URL,
		RemoteURL:   c.Remote.URL,
		RemoteToken: c.Remote.Token,
	}
}

// Logging maps the config onto logging options.
func (c *Config) Logging(console bool) logging.Config {
	return logging.Config{Level: c.Log.Level, File: c.Log.File, Console: console}
}
