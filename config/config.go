package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	OPD   OPDConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Timezone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// OPDConfig holds the walk-in queue settings: the fixed treatment-chair
// pool and the clinic timezone that anchors the daily token window.
type OPDConfig struct {
	ChairPool []string
	Timezone  string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		OPD: OPDConfig{
			ChairPool: parseChairPool(viper.GetString("OPD_CHAIR_POOL")),
			Timezone:  viper.GetString("OPD_TIMEZONE"),
		},
	}

	if config.DB.Timezone == "" {
		config.DB.Timezone = "UTC"
	}

	return config, nil
}

// parseChairPool splits a comma-separated chair list. The declared order is
// significant: it is the tie-break order for chair assignment.
func parseChairPool(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"Chair-1", "Chair-2", "Chair-3", "Chair-4", "Chair-5"}
	}

	var chairs []string
	for _, part := range strings.Split(raw, ",") {
		if chair := strings.TrimSpace(part); chair != "" {
			chairs = append(chairs, chair)
		}
	}
	return chairs
}
