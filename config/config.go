package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Security  SecurityConfig  `mapstructure:"security"`
	Game      GameConfig      `mapstructure:"game"`
	Market    MarketConfig    `mapstructure:"market"`
	Countdown CountdownConfig `mapstructure:"countdown"`
	Data      DataConfig      `mapstructure:"data"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
	SiteDir  string `mapstructure:"site_dir"` // static site files, served at /
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type GameConfig struct {
	MaxCharacters int   `mapstructure:"max_characters"`
	StarterAdena  int64 `mapstructure:"starter_adena"`
}

// MarketConfig bounds the per-session randomized catalog prices.
// Stackable and unique items draw from separate [min,max] ranges.
type MarketConfig struct {
	StackableMinPrice int64         `mapstructure:"stackable_min_price"`
	StackableMaxPrice int64         `mapstructure:"stackable_max_price"`
	UniqueMinPrice    int64         `mapstructure:"unique_min_price"`
	UniqueMaxPrice    int64         `mapstructure:"unique_max_price"`
	CatalogTTL        time.Duration `mapstructure:"catalog_ttl"`
}

// CountdownConfig configures the launch countdown.
// Target is RFC 3339; an unparseable value disables the countdown.
type CountdownConfig struct {
	Target string `mapstructure:"target"`
}

type DataConfig struct {
	Path string `mapstructure:"path"` // directory containing itemdefs.json / droplist.json
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/portal.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("game.max_characters", 3)
	v.SetDefault("game.starter_adena", 1000)
	v.SetDefault("market.stackable_min_price", 5)
	v.SetDefault("market.stackable_max_price", 500)
	v.SetDefault("market.unique_min_price", 1000)
	v.SetDefault("market.unique_max_price", 50000)
	v.SetDefault("market.catalog_ttl", "72h")
	v.SetDefault("data.path", "./data")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
