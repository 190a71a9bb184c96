package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts the file lookups the loader performs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem reads from the local disk.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadEnv exports the file's variables without overriding ones already set.
func (RealFileSystem) LoadEnv(path string) error { return godotenv.Load(path) }

// LoaderConfig holds loader dependencies and explicit file paths.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption customises a load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the disk used for lookups.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile skips the search and reads path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile skips the search and loads path as the .env file.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Loadable is a config that fills its own defaults and checks itself.
// Structs embedding ServiceConfig get both methods promoted.
type Loadable interface {
	ApplyDefaults()
	Validate() error
}

// Load reads cfg for serviceName, then applies defaults and validates.
func Load(serviceName string, cfg Loadable, opts ...LoaderOption) error {
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config for service %s: %w", serviceName, err)
	}
	return nil
}

// LoadConfig decodes the service's config file, .env file and environment
// into cfg. A missing file is not an error; an unreadable one is.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
	}

	// engine.model <- ENGINE_MODEL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys(reflect.TypeOf(cfg), "") {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config for service %s: %w", serviceName, err)
	}
	return nil
}

// configKeys lists the dotted viper keys a struct decodes from, following
// mapstructure tags. Squashed embeds share their parent's prefix.
func configKeys(t reflect.Type, prefix string) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		switch field.Type.Kind() {
		case reflect.Func, reflect.Chan, reflect.Interface:
			continue
		}

		ft := field.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && strings.Contains(opts, "squash") {
			keys = append(keys, configKeys(ft, prefix)...)
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		key := prefix + name
		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			keys = append(keys, configKeys(ft, key+".")...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Resolver finds the config and .env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles are the files a load will read. Empty means none found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles keeps explicit paths from opts and searches for the rest.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(serviceName))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(serviceName))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// searchDirs are the directories searched, most specific first. Commands
// may run from the repository root or from a package directory below it.
func searchDirs(serviceName string) []string {
	var dirs []string
	for _, base := range []string{filepath.Join("cmd", serviceName), "config", ""} {
		for _, up := range []string{".", "..", filepath.Join("..", "..")} {
			dirs = append(dirs, filepath.Join(up, base))
		}
	}
	return dirs
}

func configCandidates(serviceName string) []string {
	var paths []string
	for _, dir := range searchDirs(serviceName) {
		paths = append(paths, filepath.Join(dir, "config.yml"))
	}
	return paths
}

func envCandidates(serviceName string) []string {
	var paths []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range searchDirs(serviceName) {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}
