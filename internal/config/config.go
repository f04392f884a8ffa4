package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Log struct {
		Level  string `mapstructure:"level"`
		Pretty bool   `mapstructure:"pretty"`
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`

	Monitor struct {
		Interval    time.Duration `mapstructure:"interval"`
		Concurrency int           `mapstructure:"concurrency"`
	} `mapstructure:"monitor"`

	Notify struct {
		Toast struct {
			Capacity int `mapstructure:"capacity"`
		} `mapstructure:"toast"`
		Slack struct {
			WebhookURL string `mapstructure:"webhook_url"`
			Channel    string `mapstructure:"channel"`
			Username   string `mapstructure:"username"`
		} `mapstructure:"slack"`
		Email struct {
			SMTPHost    string   `mapstructure:"smtp_host"`
			SMTPPort    int      `mapstructure:"smtp_port"`
			From        string   `mapstructure:"from"`
			Password    string   `mapstructure:"password"`
			ToReceivers []string `mapstructure:"to_receivers"`
		} `mapstructure:"email"`
		Kafka struct {
			Brokers []string `mapstructure:"brokers"`
			Topic   string   `mapstructure:"topic"`
		} `mapstructure:"kafka"`
	} `mapstructure:"notify"`

	Dashboards map[string]DashboardConfig `mapstructure:"dashboards"`
}

// DashboardConfig overrides the record source of a built-in dashboard.
type DashboardConfig struct {
	RecordsFile string `mapstructure:"records_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "data/dashwatch.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("monitor.interval", "1m")
	v.SetDefault("monitor.concurrency", 4)
	v.SetDefault("notify.toast.capacity", 10)
	v.SetDefault("notify.slack.username", "dashwatch")
	v.SetDefault("notify.email.smtp_port", 587)
}

// LoadConfig reads config.yaml from path (or ./, ./config and /etc/dashwatch when path
// is empty), applies defaults and DASHWATCH_* environment overrides.
// A missing config file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/dashwatch")
	}

	v.SetEnvPrefix("dashwatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvs(v, reflect.TypeOf(Config{}), ""); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnvs registers every leaf key of t with viper so DASHWATCH_* variables
// apply to keys that have neither a default nor a value in the file.
// Map-typed keys (dashboards) are read from the file only.
func bindEnvs(v *viper.Viper, t reflect.Type, prefix string) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			if err := bindEnvs(v, field.Type, key); err != nil {
				return err
			}
		case reflect.Map:
			continue
		default:
			if err := v.BindEnv(key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor interval must be positive")
	}
	if len(c.Notify.Kafka.Brokers) > 0 && c.Notify.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}
	return nil
}
