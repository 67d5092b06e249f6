package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/subtitler/logger"
)

// FileSystem is the part of the disk the loader touches.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem reads the real disk. LoadEnv never overrides variables that
// are already set.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSFileSystem) LoadEnv(path string) error { return godotenv.Load(path) }

// Files are the sources one load reads. An empty path was not found.
type Files struct {
	Config string
	Env    string
}

// Option adjusts a single LoadConfig call.
type Option func(*loader)

type loader struct {
	fs     FileSystem
	pinned Files
}

func WithFileSystem(fs FileSystem) Option { return func(l *loader) { l.fs = fs } }
func WithConfigFile(path string) Option   { return func(l *loader) { l.pinned.Config = path } }
func WithEnvFile(path string) Option      { return func(l *loader) { l.pinned.Env = path } }

func newLoader(opts []Option) *loader {
	l := &loader{fs: OSFileSystem{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the pinned paths and searches for the rest. The config
// file may also be named by <SERVICE>_CONFIG, e.g. SUBTITLER_CONFIG.
func Locate(service string, opts ...Option) Files {
	return newLoader(opts).locate(service)
}

func (l *loader) locate(service string) Files {
	found := l.pinned
	if found.Config == "" {
		found.Config = os.Getenv(strings.ToUpper(strings.ReplaceAll(service, "-", "_")) + "_CONFIG")
	}
	if found.Config == "" {
		found.Config = l.first(configCandidates(service))
	}
	if found.Env == "" {
		found.Env = l.first(envCandidates(service))
	}
	return found
}

func (l *loader) first(paths []string) string {
	i := slices.IndexFunc(paths, l.fs.Exists)
	if i < 0 {
		return ""
	}
	return paths[i]
}

// configCandidates lists, in priority order, the places a config file is
// looked for. Both YAML and TOML are accepted.
func configCandidates(service string) []string {
	var dirs []string
	for _, up := range []string{".", "..", filepath.Join("..", "..")} {
		dirs = append(dirs, filepath.Join(up, "cmd", service))
	}
	dirs = append(dirs, "config", ".")
	if home, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, service))
	}

	var out []string
	for _, dir := range dirs {
		for _, name := range []string{"config.yml", "config.yaml", "config.toml"} {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}

func envCandidates(service string) []string {
	dirs := []string{".", filepath.Join("cmd", service), "config", "..", filepath.Join("..", "..")}
	var out []string
	for _, name := range []string{".env." + service, ".env"} {
		for _, dir := range dirs {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}

// LoadConfig fills cfg from the config file, then the .env file, then the
// process environment, each layer overriding the one before. A missing
// file is not an error.
func LoadConfig(service string, cfg any, opts ...Option) error {
	l := newLoader(opts)
	files := l.locate(service)
	v := viper.New()

	if files.Config != "" && l.fs.Exists(files.Config) {
		v.SetConfigFile(files.Config)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.Config, err)
		}
	}
	if files.Env != "" && l.fs.Exists(files.Env) {
		if err := l.fs.LoadEnv(files.Env); err != nil {
			logger.WithComponent("config").Warn("env file ignored", logger.ErrorFields("load "+files.Env, err))
		}
	}
	bindEnviron(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode %s config: %w", service, err)
	}
	return nil
}

// bindEnviron writes every variable containing an underscore under each
// nested key it could address. Names without one, such as PATH, would
// shadow whole sections and are skipped.
func bindEnviron(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.HasPrefix(name, "_") || !strings.Contains(name, "_") {
			continue
		}
		for _, key := range envKeys(name) {
			v.Set(key, value)
		}
	}
}

// envKeys lists the keys an environment variable may address. Each
// underscore is either a separator or part of a key:
//
//	OPENAI_API_KEY -> openai_api_key, openai.api.key, openai.api_key, openai_api.key
func envKeys(name string) []string {
	lower := strings.ToLower(name)
	parts := strings.Split(lower, "_")
	keys := []string{lower}
	if len(parts) == 1 {
		return keys
	}
	keys = append(keys, strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		head, tail := parts[:i], parts[i:]
		keys = append(keys,
			strings.Join(head, ".")+"."+strings.Join(tail, "_"),
			strings.Join(head, "_")+"."+strings.Join(tail, "."),
		)
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}
