package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name       string `koanf:"name"`
		HTTPAddr   string `koanf:"http_addr"`
		LogLevel   string `koanf:"log_level"`
		ClientHost string `koanf:"client_host"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Cache struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"cache"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers      []string `koanf:"brokers"`
		PushTopic    string   `koanf:"push_topic"`
		EventsTopic  string   `koanf:"events_topic"`
		PaymentTopic string   `koanf:"payment_topic"`
		PaymentGroup string   `koanf:"payment_group"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`

	Payment struct {
		GatewaySecret string `koanf:"gateway_secret"`
		SuccessCode   string `koanf:"success_code"`
	} `koanf:"payment"`

	Orders struct {
		UnpaidSweepInterval  time.Duration `koanf:"unpaid_sweep_interval"`
		UnpaidExpiry         time.Duration `koanf:"unpaid_expiry"`
		ConfirmSweepInterval time.Duration `koanf:"confirm_sweep_interval"`
		ConfirmGrace         time.Duration `koanf:"confirm_grace"`
	} `koanf:"orders"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix BOOKGARDEN_, nested with __)
	// e.g. BOOKGARDEN_MYSQL__DSN, BOOKGARDEN_REDIS__PASSWORD
	if err := k.Load(env.Provider("BOOKGARDEN_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "BOOKGARDEN_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Orders.UnpaidSweepInterval <= 0 {
		c.Orders.UnpaidSweepInterval = 5 * time.Minute
	}
	if c.Orders.UnpaidExpiry <= 0 {
		c.Orders.UnpaidExpiry = 30 * time.Minute
	}
	if c.Orders.ConfirmSweepInterval <= 0 {
		c.Orders.ConfirmSweepInterval = 24 * time.Hour
	}
	if c.Orders.ConfirmGrace <= 0 {
		c.Orders.ConfirmGrace = 7 * 24 * time.Hour
	}
	if c.Payment.SuccessCode == "" {
		c.Payment.SuccessCode = "00"
	}
	if c.Idempotency.TTL <= 0 {
		c.Idempotency.TTL = 24 * time.Hour
	}
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required")
	}
	if c.Payment.GatewaySecret == "" {
		return fmt.Errorf("payment.gateway_secret required")
	}
	return nil
}
