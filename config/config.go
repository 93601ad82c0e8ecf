package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HttpServer    HttpServerConfig    `envconfig:"HTTP_SERVER"`
	Database      DatabaseConfig      `envconfig:"DB"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	HttpClient    HttpClientConfig    `envconfig:"HTTP_CLIENT"`
	MessageStream MessageStreamConfig `envconfig:"MESSAGE_STREAM"`
	UserService   UserServiceConfig   `envconfig:"USER_SERVICE"`
	Stripe        StripeConfig        `envconfig:"STRIPE"`
	Checkout      CheckoutConfig      `envconfig:"CHECKOUT"`
	Lock          LockConfig          `envconfig:"LOCK"`
	Scheduler     SchedulerConfig     `envconfig:"SCHEDULER"`
}

type HttpServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
}

type DatabaseConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            string        `envconfig:"PORT" default:"5432"`
	User            string        `envconfig:"USER" default:"postgres"`
	Password        string        `envconfig:"PASSWORD" default:"postgres"`
	Name            string        `envconfig:"NAME" default:"car_rental"`
	SSLMode         string        `envconfig:"SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"true"`
}

type RedisConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD" default:""`
	DB       int    `envconfig:"DB" default:"0"`
}

// HttpClientConfig configures the circuit breaker placed in front of every
// outbound HTTP call (user service and payment provider).
type HttpClientConfig struct {
	Type       string        `envconfig:"TYPE" default:"consecutive"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"10s"`
	Threshold  int64         `envconfig:"THRESHOLD" default:"5"`
	Rate       float64       `envconfig:"RATE" default:"0.5"`
	MinSamples int64         `envconfig:"MIN_SAMPLES" default:"10"`
}

type MessageStreamConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5672"`
	Username string `envconfig:"USERNAME" default:"guest"`
	Password string `envconfig:"PASSWORD" default:"guest"`
}

type UserServiceConfig struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port string `envconfig:"PORT" default:"8001"`
}

type StripeConfig struct {
	SecretKey     string        `envconfig:"SECRET_KEY"`
	WebhookSecret string        `envconfig:"WEBHOOK_SECRET"`
	Currency      string        `envconfig:"CURRENCY" default:"inr"`
	Timeout       time.Duration `envconfig:"TIMEOUT" default:"10s"`
	// APIURL overrides the provider endpoint, used against stripe-mock in development.
	APIURL string `envconfig:"API_URL"`
}

type CheckoutConfig struct {
	FrontendURL string        `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	SessionTTL  time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SweepGrace  time.Duration `envconfig:"SWEEP_GRACE" default:"5m"`
}

type LockConfig struct {
	Expiry time.Duration `envconfig:"EXPIRY" default:"15s"`
	Tries  int           `envconfig:"TRIES" default:"32"`
}

type SchedulerConfig struct {
	Concurrency   int    `envconfig:"CONCURRENCY" default:"10"`
	MonitoringOn  bool   `envconfig:"MONITORING" default:"false"`
	MonitoringAdr string `envconfig:"MONITORING_ADDR" default:":8080"`
}

func InitConfig() *Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("error load config: %v", err)
	}
	return &cfg
}
