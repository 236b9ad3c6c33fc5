package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

var stationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Telemetry TelemetryConfig `json:"telemetry"`
	Inventory InventoryConfig `json:"inventory"`
	Ledger    LedgerConfig    `json:"ledger"`
	LogLevel  string          `json:"log_level"`
}

type ServerConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	RequestTimeout Duration `json:"request_timeout"`
}

type DatabaseConfig struct {
	Driver          string   `json:"driver"`
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	User            string   `json:"user"`
	Password        string   `json:"password"`
	DBName          string   `json:"dbname"`
	SSLMode         string   `json:"sslmode"`
	DSN             string   `json:"dsn"`
	MigrationsPath  string   `json:"migrations_path"`
	MaxOpenConns    int      `json:"max_open_conns"`
	MaxIdleConns    int      `json:"max_idle_conns"`
	ConnMaxLifetime Duration `json:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool     `json:"enabled"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Password string   `json:"password"`
	DB       int      `json:"db"`
	LockTTL  Duration `json:"lock_ttl"`
	LockWait Duration `json:"lock_wait"`
}

type KafkaConfig struct {
	Brokers        []string `json:"brokers"`
	SaleTopic      string   `json:"sale_topic"`
	InventoryTopic string   `json:"inventory_topic"`
}

type TelemetryConfig struct {
	OtelEndpoint   string `json:"otel_endpoint"`
	OtelAuthHeader string `json:"otel_auth_header"`
	Insecure       bool   `json:"insecure"`
	ServiceName    string `json:"service_name"`
}

type InventoryConfig struct {
	MaxIntakeQuantity int `json:"max_intake_quantity"`
}

type LedgerConfig struct {
	DefaultStation      string   `json:"default_station"`
	ConfirmAttempts     int      `json:"confirm_attempts"`
	StockReportInterval Duration `json:"stock_report_interval"`
}

// Duration reads "5s"-style strings from JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			RequestTimeout: Duration{30 * time.Second},
		},
		Database: DatabaseConfig{
			Driver:          DriverPgx,
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "backoffice",
			SSLMode:         "disable",
			MaxOpenConns:    50,
			MaxIdleConns:    25,
			ConnMaxLifetime: Duration{time.Hour},
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			LockTTL:  Duration{60 * time.Second},
			LockWait: Duration{3 * time.Second},
		},
		Kafka: KafkaConfig{
			SaleTopic:      "sales.confirmed",
			InventoryTopic: "inventory.procured",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "resale-backoffice",
		},
		Inventory: InventoryConfig{
			MaxIntakeQuantity: 100,
		},
		Ledger: LedgerConfig{
			DefaultStation:      "main",
			ConfirmAttempts:     3,
			StockReportInterval: Duration{time.Minute},
		},
		LogLevel: "info",
	}
}

// LoadConfig layers defaults, the optional JSON file at path, a .env file and
// the process environment, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString("BACKOFFICE_HTTP_HOST", &c.Server.Host)
	setString("BACKOFFICE_DB_DRIVER", &c.Database.Driver)
	setString("BACKOFFICE_DB_DSN", &c.Database.DSN)
	setString("BACKOFFICE_DB_HOST", &c.Database.Host)
	setString("BACKOFFICE_DB_USER", &c.Database.User)
	setString("BACKOFFICE_DB_PASSWORD", &c.Database.Password)
	setString("BACKOFFICE_DB_NAME", &c.Database.DBName)
	setString("BACKOFFICE_LOG_LEVEL", &c.LogLevel)
	setString("BACKOFFICE_DEFAULT_STATION", &c.Ledger.DefaultStation)
	setString("OTEL_ENDPOINT", &c.Telemetry.OtelEndpoint)
	setString("OTEL_AUTH_HEADER", &c.Telemetry.OtelAuthHeader)

	if v := os.Getenv("BACKOFFICE_REDIS_ADDR"); v != "" {
		host, port, found := strings.Cut(v, ":")
		c.Redis.Enabled = true
		c.Redis.Host = host
		if found {
			p, err := strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("BACKOFFICE_REDIS_ADDR: invalid port %q", port)
			}
			c.Redis.Port = p
		}
	}
	if v := os.Getenv("BACKOFFICE_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	for name, dst := range map[string]*int{
		"BACKOFFICE_HTTP_PORT":           &c.Server.Port,
		"BACKOFFICE_DB_PORT":             &c.Database.Port,
		"BACKOFFICE_MAX_INTAKE_QUANTITY": &c.Inventory.MaxIntakeQuantity,
	} {
		if err := setInt(name, dst); err != nil {
			return err
		}
	}
	return nil
}

func setString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPgx, DriverPostgres, DriverSQLite, DriverMySQL:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Server.Port <= 0 {
		errs = append(errs, errors.New("server.port must be positive"))
	}
	if c.Server.RequestTimeout.Duration <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if c.Inventory.MaxIntakeQuantity < 1 {
		errs = append(errs, errors.New("inventory.max_intake_quantity must be at least 1"))
	}
	if c.Ledger.ConfirmAttempts < 1 {
		errs = append(errs, errors.New("ledger.confirm_attempts must be at least 1"))
	}
	if !ValidStationID(c.Ledger.DefaultStation) {
		errs = append(errs, fmt.Errorf("ledger.default_station %q is not a valid station id", c.Ledger.DefaultStation))
	}
	if c.Redis.LockWait.Duration <= 0 {
		errs = append(errs, errors.New("redis.lock_wait must be positive"))
	}
	// A station lock must outlive the slowest request holding it.
	if c.Redis.Enabled && c.Redis.LockTTL.Duration <= c.Server.RequestTimeout.Duration {
		errs = append(errs, fmt.Errorf("redis.lock_ttl %s must exceed server.request_timeout %s",
			c.Redis.LockTTL, c.Server.RequestTimeout))
	}

	return errors.Join(errs...)
}

func ValidStationID(id string) bool {
	return stationIDPattern.MatchString(id)
}

func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c *RedisConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c *DatabaseConfig) IsPostgres() bool {
	return c.Driver == DriverPgx || c.Driver == DriverPostgres
}

// GetDSN returns the explicit DSN when set, otherwise one built for the driver.
func (c *DatabaseConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Driver {
	case DriverSQLite:
		return "file:backoffice.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	case DriverMySQL:
		return c.User + ":" + c.Password +
			"@tcp(" + c.Host + ":" + strconv.Itoa(c.Port) + ")/" + c.DBName +
			"?parseTime=true&loc=UTC&clientFoundRows=true"
	default:
		return "host=" + c.Host +
			" port=" + strconv.Itoa(c.Port) +
			" user=" + c.User +
			" password=" + c.Password +
			" dbname=" + c.DBName +
			" sslmode=" + c.SSLMode
	}
}
