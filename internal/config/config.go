package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "RESULTS_CRAWLER_CONFIG"

	defaultLogPath    = "grc.log"
	defaultLogLevel   = "debug"
	defaultLastJSON   = "last/last.json"
	defaultResultsURL = "http://164.100.158.135/ExamResults/ExamResultsmain.htm"
	defaultScrapDepth = 2
	defaultStore      = "firebase"
	defaultSQLitePath = "mirror.db"
)

// Config holds the full settings surface of the crawler. Every scalar field is
// overridable by an environment variable named after its flag, upper-cased
// with dashes turned into underscores.
type Config struct {
	Production bool   `yaml:"production"`
	LogPath    string `yaml:"logPath"`
	LogLevel   string `yaml:"logLevel"`

	LastJSON   string `yaml:"lastJson"`
	ResultsURL string `yaml:"resultsUrl"`
	ScrapDepth int    `yaml:"scrapDepth"`

	ForceAll   bool `yaml:"forceAll"`
	SkipImages bool `yaml:"skipImages"`
	SkipData   bool `yaml:"skipData"`

	Store     string         `yaml:"store"`
	ParserURL string         `yaml:"parserUrl"`
	Firebase  FirebaseConfig `yaml:"firebase"`
	SQLite    SQLiteConfig   `yaml:"sqlite"`
}

// FirebaseConfig describes the realtime-database and storage endpoints.
type FirebaseConfig struct {
	URL    string `yaml:"url"`
	Bucket string `yaml:"bucket"`
	Token  string `yaml:"token"`
}

// SQLiteConfig describes the local mirror target.
type SQLiteConfig struct {
	Path      string `yaml:"path"`
	PhotosDir string `yaml:"photosDir"`
}

// Load reads YAML configuration (if RESULTS_CRAWLER_CONFIG points at a file)
// and applies environment overrides on top of defaults. Flags bound by the
// command layer take precedence over everything returned here.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	envString("LOG_PATH", &c.LogPath)
	envString("LOG_LEVEL", &c.LogLevel)
	envString("LAST_JSON", &c.LastJSON)
	envString("RESULTS_URL", &c.ResultsURL)
	envString("STORE", &c.Store)
	envString("PARSER_URL", &c.ParserURL)
	envString("FIREBASE_URL", &c.Firebase.URL)
	envString("FIREBASE_BUCKET", &c.Firebase.Bucket)
	envString("FIREBASE_TOKEN", &c.Firebase.Token)
	envString("SQLITE_PATH", &c.SQLite.Path)
	envString("SQLITE_PHOTOS_DIR", &c.SQLite.PhotosDir)

	envBool("PRODUCTION", &c.Production)
	envBool("FORCE_ALL", &c.ForceAll)
	envBool("SKIP_IMAGES", &c.SkipImages)
	envBool("SKIP_DATA", &c.SkipData)

	if v := os.Getenv("SCRAP_DEPTH"); v != "" {
		if depth, err := strconv.Atoi(v); err == nil {
			c.ScrapDepth = depth
		} else {
			log.Printf("config: SCRAP_DEPTH=%q is not an integer, keeping %d", v, c.ScrapDepth)
		}
	}
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.LogPath != "" {
		base.LogPath = override.LogPath
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	if override.LastJSON != "" {
		base.LastJSON = override.LastJSON
	}
	if override.ResultsURL != "" {
		base.ResultsURL = override.ResultsURL
	}
	if override.ScrapDepth != 0 {
		base.ScrapDepth = override.ScrapDepth
	}
	if override.Store != "" {
		base.Store = override.Store
	}
	if override.ParserURL != "" {
		base.ParserURL = override.ParserURL
	}
	if override.Firebase.URL != "" {
		base.Firebase.URL = override.Firebase.URL
	}
	if override.Firebase.Bucket != "" {
		base.Firebase.Bucket = override.Firebase.Bucket
	}
	if override.Firebase.Token != "" {
		base.Firebase.Token = override.Firebase.Token
	}
	if override.SQLite.Path != "" {
		base.SQLite.Path = override.SQLite.Path
	}
	if override.SQLite.PhotosDir != "" {
		base.SQLite.PhotosDir = override.SQLite.PhotosDir
	}

	base.Production = base.Production || override.Production
	base.ForceAll = base.ForceAll || override.ForceAll
	base.SkipImages = base.SkipImages || override.SkipImages
	base.SkipData = base.SkipData || override.SkipData

	return base
}

func defaultConfig() Config {
	return Config{
		LogPath:    defaultLogPath,
		LogLevel:   defaultLogLevel,
		LastJSON:   defaultLastJSON,
		ResultsURL: defaultResultsURL,
		ScrapDepth: defaultScrapDepth,
		Store:      defaultStore,
		SQLite:     SQLiteConfig{Path: defaultSQLitePath, PhotosDir: "photos"},
	}
}
