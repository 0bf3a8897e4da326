package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseCommandFlags parses the process flags and reports which were
// explicitly set, so callers can let flags win over env and file
// values.
func ParseCommandFlags() (addr, db, cfgPath string, setFlags map[string]bool) {
	addrFlag := flag.String("addr", "", "listen address (host:port)")
	dbFlag := flag.String("db", "./data/tagme", "path to the pebble database")
	cfgFlag := flag.String("config", "", "path to the yaml config file")
	flag.Parse()

	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrFlag, *dbFlag, *cfgFlag, setFlags
}

// ResolveConfigPath picks the config file path: flag wins over env.
func ResolveConfigPath(flagVal string, flagSet bool) string {
	if flagSet {
		return flagVal
	}
	if p := os.Getenv("TAGME_CONFIG"); p != "" {
		return p
	}
	return flagVal
}

// Load reads the yaml config file (if path is non-empty) and applies
// TAGME_* environment overrides on top.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TAGME_ADDR"); v != "" {
		if host, port, ok := strings.Cut(v, ":"); ok {
			cfg.Server.Address = host
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = p
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("TAGME_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("TAGME_DB_PATH"); v != "" {
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("TAGME_CACHE_SIZE"); v != "" {
		cfg.Server.CacheSize = v
	}
	if v := os.Getenv("TAGME_OAUTH_CLIENT_ID"); v != "" {
		cfg.OAuth.ClientID = v
	}
	if v := os.Getenv("TAGME_OAUTH_CLIENT_SECRET"); v != "" {
		cfg.OAuth.ClientSecret = v
	}
	if v := os.Getenv("TAGME_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
