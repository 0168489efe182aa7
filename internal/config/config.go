package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Backend  BackendConfig  `yaml:"backend"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConf      `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Checkout CheckoutConfig `yaml:"checkout"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
	AllowOrigins    []string      `yaml:"allow_origins"`
}

// BackendConfig описывает REST API магазина, к которому проксируются запросы.
type BackendConfig struct {
	BaseURL     string        `yaml:"base_url" env:"API_URL" env-default:"http://localhost:3001/api"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	RefreshPath string        `yaml:"refresh_path" env-default:"/auth/refresh-token"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	CookieName string        `yaml:"cookie_name" env-default:"storefront_session"`
	Secure     bool          `yaml:"secure" env-default:"false"`
	AccessTTL  time.Duration `yaml:"access_ttl" env-default:"24h"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env-default:"168h"`
	LoginPath  string        `yaml:"login_path" env-default:"/login"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redispassword" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
}

type CacheConfig struct {
	CatalogTTL time.Duration `yaml:"catalog_ttl" env-default:"1m"`
	NoticeTTL  time.Duration `yaml:"notice_ttl" env-default:"10m"`
}

type CheckoutConfig struct {
	ShippingFee float64 `yaml:"shipping_fee" env-default:"20000"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

// UseRedis сообщает, настроено ли хранилище учётных данных в redis.
func (c *Config) UseRedis() bool {
	return c.Redis.RedisAddr != ""
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
