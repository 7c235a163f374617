package config

import "time"

const (
	DefaultResource     = "https://database.windows.net/"
	DefaultPingTimeout  = 5 * time.Second
	DefaultQueryTimeout = 8 * time.Second
)

type DBConfig struct {
	PingTimeout  time.Duration `yaml:"pingTimeout"`
	QueryTimeout time.Duration `yaml:"queryTimeout"`
}

type IdentityConfig struct {
	Resource string `yaml:"resource"`
}

type Config struct {
	APIListen string         `yaml:"apiListen"`
	Debug     bool           `yaml:"debug"`
	LogFile   string         `yaml:"logFile"`
	DB        DBConfig       `yaml:"db"`
	Identity  IdentityConfig `yaml:"identity"`
}

func Default() Config {
	return Config{
		APIListen: "127.0.0.1:8080",
		Debug:     false,
		LogFile:   "",
		DB: DBConfig{
			PingTimeout:  DefaultPingTimeout,
			QueryTimeout: DefaultQueryTimeout,
		},
		Identity: IdentityConfig{
			Resource: DefaultResource,
		},
	}
}

// withDefaults fills zero values left by a partial config file.
func (c Config) withDefaults() Config {
	def := Default()
	if c.APIListen == "" {
		c.APIListen = def.APIListen
	}
	if c.DB.PingTimeout <= 0 {
		c.DB.PingTimeout = def.DB.PingTimeout
	}
	if c.DB.QueryTimeout <= 0 {
		c.DB.QueryTimeout = def.DB.QueryTimeout
	}
	if c.Identity.Resource == "" {
		c.Identity.Resource = def.Identity.Resource
	}
	return c
}
