package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config собранные настройки приложения
type Config struct {
	HTTPAddr     string
	Timezone     string
	OpenHour     int
	CloseHour    int
	SlotInterval time.Duration
	Buffer       time.Duration
	MonitorTick  time.Duration
}

// MustInit читает .env и config.yaml (оба необязательны), выставляет
// значения по умолчанию и настраивает логгер
func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		slog.Debug("no .env file, using environment as is")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/cakewalk")
	viper.AddConfigPath(".")

	viper.SetDefault("http.addr", ":9091")
	viper.SetDefault("schedule.timezone", "Asia/Kolkata")
	viper.SetDefault("schedule.open_hour", 9)
	viper.SetDefault("schedule.close_hour", 21)
	viper.SetDefault("schedule.slot_interval", "30m")
	viper.SetDefault("schedule.buffer", "1h")
	viper.SetDefault("monitor.tick", "1m")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("error while reading config file: " + err.Error())
		}
	}

	SetupLogger()
}

func SetupLogger() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)
}

// Load снимок настроек после MustInit
func Load() Config {
	return Config{
		HTTPAddr:     viper.GetString("http.addr"),
		Timezone:     viper.GetString("schedule.timezone"),
		OpenHour:     viper.GetInt("schedule.open_hour"),
		CloseHour:    viper.GetInt("schedule.close_hour"),
		SlotInterval: viper.GetDuration("schedule.slot_interval"),
		Buffer:       viper.GetDuration("schedule.buffer"),
		MonitorTick:  viper.GetDuration("monitor.tick"),
	}
}
