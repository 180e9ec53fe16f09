package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/slipmap/pkg/cache"
	"github.com/matzehuels/slipmap/pkg/pipeline"
)

// Environment variables read on top of the config file.
const (
	envJoplinToken = "SLIPMAP_JOPLIN_TOKEN"
	envJoplinURL   = "SLIPMAP_JOPLIN_URL"
)

// Config is the on-disk configuration. Every field is optional; flags win
// over the environment, which wins over the file.
//
//	[joplin]
//	url   = "http://localhost:41184"
//	token = "..."
//	tag   = "time-slip"
//
//	[output]
//	dir     = "~/slips"
//	formats = ["png", "svg"]
//
//	[treemap]
//	show_time = true
//
//	[wordcloud]
//	max_font = 64
//	scale    = "linear"
//
//	[cache]
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
type Config struct {
	Joplin    JoplinConfig    `toml:"joplin"`
	Output    OutputConfig    `toml:"output"`
	Treemap   TreemapConfig   `toml:"treemap"`
	WordCloud WordCloudConfig `toml:"wordcloud"`
	Cache     CacheConfig     `toml:"cache"`
}

type JoplinConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
	Tag   string `toml:"tag"`
}

type OutputConfig struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
	Keys    []string `toml:"keys"`
	Titles  bool     `toml:"titles"`
}

type TreemapConfig struct {
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	ShowTime bool    `toml:"show_time"`
}

type WordCloudConfig struct {
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	MinFont  float64 `toml:"min_font"`
	MaxFont  float64 `toml:"max_font"`
	Scale    string  `toml:"scale"`
	MaxSteps int     `toml:"max_steps"`
	Padding  float64 `toml:"padding"`
}

type CacheConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisURL        string `toml:"redis_url"`
	RedisPrefix     string `toml:"redis_prefix"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// configPath returns $XDG_CONFIG_HOME/slipmap/config.toml, falling back to
// the OS user config directory.
func configPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml"), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName, "config.toml"), nil
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file yields an empty config; a missing explicit file is
// an error. Environment overrides are applied last.
func loadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			cfg.applyEnv()
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if undec := md.Undecoded(); len(undec) > 0 {
			return Config{}, fmt.Errorf("config %s: unknown key %q", path, undec[0].String())
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envJoplinToken); v != "" {
		c.Joplin.Token = v
	}
	if v := os.Getenv(envJoplinURL); v != "" {
		c.Joplin.URL = v
	}
}

// CacheBackend converts the [cache] section for cache.Open.
func (c CacheConfig) CacheBackend() cache.Config {
	return cache.Config{
		Backend:         c.Backend,
		Dir:             c.Dir,
		RedisURL:        c.RedisURL,
		RedisPrefix:     c.RedisPrefix,
		MongoURI:        c.MongoURI,
		MongoDatabase:   c.MongoDatabase,
		MongoCollection: c.MongoCollection,
	}
}

// apply copies file settings into opts for every option whose flag was not
// set on the command line. changed reports whether a flag was given.
func (c Config) apply(opts *pipeline.Options, changed func(flag string) bool) {
	setStrings := func(flag string, dst *[]string, v []string) {
		if len(v) > 0 && !changed(flag) {
			*dst = v
		}
	}
	setFloat := func(flag string, dst *float64, v float64) {
		if v != 0 && !changed(flag) {
			*dst = v
		}
	}

	setStrings("key", &opts.Keys, c.Output.Keys)
	setStrings("format", &opts.Formats, c.Output.Formats)
	if c.Output.Titles && !changed("titles") {
		opts.Titles = true
	}

	setFloat("treemap-width", &opts.TreemapWidth, c.Treemap.Width)
	setFloat("treemap-height", &opts.TreemapHeight, c.Treemap.Height)
	if c.Treemap.ShowTime && !changed("show-time") {
		opts.ShowTime = true
	}

	setFloat("cloud-width", &opts.CloudWidth, c.WordCloud.Width)
	setFloat("cloud-height", &opts.CloudHeight, c.WordCloud.Height)
	setFloat("min-font", &opts.MinFont, c.WordCloud.MinFont)
	setFloat("max-font", &opts.MaxFont, c.WordCloud.MaxFont)
	setFloat("padding", &opts.Padding, c.WordCloud.Padding)
	if c.WordCloud.Scale != "" && !changed("scale") {
		opts.Scale = c.WordCloud.Scale
	}
	if c.WordCloud.MaxSteps != 0 && !changed("max-steps") {
		opts.MaxSteps = c.WordCloud.MaxSteps
	}
}
