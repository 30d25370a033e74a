package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/foremit/logger"
)

// Config is implemented by configuration structs that can default and
// validate themselves.
type Config interface {
	ApplyDefaults()
	Validate() error
}

// FileSystem abstracts file lookups so resolution can be tested.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, searching standard
// locations for whichever is missing.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(searchDirs(name), "config.yml")
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(searchDirs(name), ".env."+name, ".env")
	}
	return resolved
}

// first returns the first existing dir/file combination, trying every
// directory for a file before moving on to the next file name.
func (r *Resolver) first(dirs []string, files ...string) string {
	for _, f := range files {
		for _, d := range dirs {
			path := filepath.Join(d, f)
			if d == "." {
				path = "./" + f
			}
			if r.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

func searchDirs(name string) []string {
	var dirs []string
	for _, up := range []string{".", "..", "../.."} {
		dirs = append(dirs, filepath.Join(up, "cmd", name))
	}
	dirs = append(dirs, "./config", "../config", ".")
	return dirs
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for name into cfg. Missing files are not an
// error; the struct keeps whatever the environment provides.
func LoadConfig(name string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load env file", logger.Fields("path", files.EnvFile, "error", err.Error()))
		}
	}
	v.AutomaticEnv()
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return fmt.Errorf("unmarshal config for %s: %w", name, err)
	}
	return nil
}

// Load runs LoadConfig, then applies defaults and validates cfg.
func Load(name string, cfg Config, opts ...LoaderOption) error {
	if err := LoadConfig(name, cfg, opts...); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	return cfg.Validate()
}

// DecodeHook returns the hooks used when unmarshalling: "250ms" to
// time.Duration and "close,end" to []string.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// bindEnv sets every KEY=value pair under each nested key variant.
func bindEnv(v *viper.Viper, environ []string) {
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an env var to the keys it may override:
//
//	SEQUENCE_IN_BETWEEN_TIMEOUT -> sequence_in_between_timeout, sequence.in.between.timeout,
//	    sequence.in_between_timeout, sequence.in.between_timeout, ...
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	variants := []string{lower, strings.ReplaceAll(lower, "_", ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}

	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, s := range variants {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
