package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port          int           `yaml:"port"`
		ReadTimeout   time.Duration `yaml:"readTimeout"`
		WriteTimeout  time.Duration `yaml:"writeTimeout"`
		CORSOrigins   []string      `yaml:"corsOrigins"`
		SecureCookies bool          `yaml:"secureCookies"`
		RateLimit     struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Log struct {
		Development bool `yaml:"development"`
	} `yaml:"log"`

	AI struct {
		APIKey  string `yaml:"apiKey"`
		BaseURL string `yaml:"baseURL"`
		Model   string `yaml:"model"`
	} `yaml:"ai"`

	Auth struct {
		GoogleClientID    string `yaml:"googleClientID"`
		VerifyCredentials bool   `yaml:"verifyCredentials"`
	} `yaml:"auth"`

	Uploads struct {
		MaxFiles     int `yaml:"maxFiles"`
		MaxFileMB    int `yaml:"maxFileMB"`
		MaxDimension int `yaml:"maxDimension"`
		JPEGQuality  int `yaml:"jpegQuality"`
	} `yaml:"uploads"`

	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`

	Session struct {
		// memory, redis, mysql or postgres
		Backend string `yaml:"backend"`
	} `yaml:"session"`

	Redis struct {
		Addrs    []string `yaml:"addrs"`
		Password string   `yaml:"password"`
		DB       int      `yaml:"db"`
		Cluster  bool     `yaml:"cluster"`
		Prefix   string   `yaml:"prefix"`
	} `yaml:"redis"`

	Database struct {
		// empty disables the analysis log; mysql or postgres
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled       bool          `yaml:"enabled"`
		Endpoint      string        `yaml:"endpoint"`
		AccessKey     string        `yaml:"accessKey"`
		SecretKey     string        `yaml:"secretKey"`
		BucketName    string        `yaml:"bucketName"`
		Region        string        `yaml:"region"`
		UseSSL        bool          `yaml:"useSSL"`
		PresignExpiry time.Duration `yaml:"presignExpiry"`
	} `yaml:"minio"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadTimeout = 30 * time.Second
	// completion calls have no client deadline; keep the write side generous
	c.Server.WriteTimeout = 10 * time.Minute
	c.Server.CORSOrigins = []string{"*"}
	c.Server.RateLimit.Capacity = 60
	c.Server.RateLimit.RefillRate = 1
	c.AI.BaseURL = "https://api.aimlapi.com/v1"
	c.AI.Model = "gpt-4o-mini"
	c.Uploads.MaxFiles = 3
	c.Uploads.MaxFileMB = 20
	c.Uploads.MaxDimension = 1024
	c.Uploads.JPEGQuality = 80
	c.Session.Backend = "memory"
	c.Redis.Addrs = []string{"localhost:6379"}
	c.Redis.Prefix = "genefit:"
	c.Database.SSLMode = "disable"
	c.Minio.BucketName = "genefit-reports"
	return &c
}

// Load reads .env, then the YAML file at path on top of the defaults, then
// the environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := firstEnv("OPENAI_API_KEY", "VITE_OPENAI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := firstEnv("GOOGLE_CLIENT_ID", "VITE_GOOGLE_CLIENT_ID"); v != "" {
		c.Auth.GoogleClientID = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the combinations that would only fail at first use.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case "memory", "redis":
	case "mysql", "postgres":
		if c.Database.Driver != c.Session.Backend {
			return fmt.Errorf("session backend %q needs database.driver %q", c.Session.Backend, c.Session.Backend)
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	switch c.Database.Driver {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Session.Backend == "redis" && len(c.Redis.Addrs) == 0 {
		return errors.New("redis backend needs at least one address")
	}
	if c.Uploads.MaxFiles <= 0 || c.Uploads.MaxFileMB <= 0 {
		return errors.New("upload limits must be positive")
	}
	if c.Auth.VerifyCredentials && c.Auth.GoogleClientID == "" {
		return errors.New("auth.verifyCredentials needs a Google client id")
	}
	return nil
}

func (c *Config) MaxFileBytes() int64 {
	return int64(c.Uploads.MaxFileMB) * 1024 * 1024
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
