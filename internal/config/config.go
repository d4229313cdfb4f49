package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App    AppConfig    `toml:"app"`
	Auth   AuthConfig   `toml:"auth"`
	MySQL  MySQLConfig  `toml:"mysql"`
	Redis  RedisConfig  `toml:"redis"`
	S3     S3Config     `toml:"s3"`
	Upload UploadConfig `toml:"upload"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type AuthConfig struct {
	AccessTokenSecret   string `toml:"access_token_secret"`
	AccessExpireMinute  int    `toml:"access_expire_minute"`
	RefreshTokenSecret  string `toml:"refresh_token_secret"`
	RefreshExpireHour   int    `toml:"refresh_expire_hour"`
	SecureCookies       bool   `toml:"secure_cookies"`
	CookieDomain        string `toml:"cookie_domain"`
	ProfileCacheSeconds int    `toml:"profile_cache_seconds"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type S3Config struct {
	Region string `toml:"region"`
	Bucket string `toml:"bucket"`
}

type UploadConfig struct {
	TempDir string `toml:"temp_dir"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "vidtube",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Auth: AuthConfig{
			AccessTokenSecret:   "change-me-access",
			AccessExpireMinute:  15,
			RefreshTokenSecret:  "change-me-refresh",
			RefreshExpireHour:   240,
			SecureCookies:       true,
			CookieDomain:        "",
			ProfileCacheSeconds: 30,
		},
		MySQL: MySQLConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "vidtube",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			Addr:     "127.0.0.1:6379",
			Password: "",
			DB:       0,
		},
		S3: S3Config{
			Region: "us-east-1",
			Bucket: "vidtube-media",
		},
		Upload: UploadConfig{
			TempDir: "tmp/uploads",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Auth.AccessTokenSecret = getEnv("ACCESS_TOKEN_SECRET", cfg.Auth.AccessTokenSecret)
	cfg.Auth.AccessExpireMinute = getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTE", cfg.Auth.AccessExpireMinute)
	cfg.Auth.RefreshTokenSecret = getEnv("REFRESH_TOKEN_SECRET", cfg.Auth.RefreshTokenSecret)
	cfg.Auth.RefreshExpireHour = getEnvAsInt("REFRESH_TOKEN_EXPIRE_HOUR", cfg.Auth.RefreshExpireHour)
	cfg.Auth.CookieDomain = getEnv("COOKIE_DOMAIN", cfg.Auth.CookieDomain)
	cfg.Auth.ProfileCacheSeconds = getEnvAsInt("PROFILE_CACHE_SECONDS", cfg.Auth.ProfileCacheSeconds)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.S3.Region = getEnv("AWS_REGION", cfg.S3.Region)
	cfg.S3.Bucket = getEnv("S3_BUCKET", cfg.S3.Bucket)

	cfg.Upload.TempDir = getEnv("UPLOAD_TEMP_DIR", cfg.Upload.TempDir)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
