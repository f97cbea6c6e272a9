// internal/pkg/config/config.go
package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 聚合了所有服务共享的基础设施与业务配置。
// 配置来源优先级: 环境变量 > yaml 文件 > 内置默认值。
type Config struct {
	Infra struct {
		Mysql struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Zookeeper struct {
			// Addrs 为空时，Reaper 退化为仅进程内互斥。
			Addrs []string `yaml:"addrs"`
		} `yaml:"zookeeper"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
	} `yaml:"infra"`

	Reservation struct {
		// ReaperInterval 过期清扫的触发周期。
		ReaperInterval string `yaml:"reaper_interval"`
		// TTL 预占在未收到支付结果时的最长存活时间。
		TTL string `yaml:"ttl"`
	} `yaml:"reservation"`
}

var (
	once    sync.Once
	current *Config
)

// GetCurrentConfig 返回进程级配置单例，首次调用时加载。
func GetCurrentConfig() *Config {
	once.Do(func() {
		current = load()
	})
	return current
}

func load() *Config {
	cfg := defaults()

	if path := getEnv("CONFIG_PATH", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			panic("config: cannot read " + path + ": " + err.Error())
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic("config: cannot parse " + path + ": " + err.Error())
		}
	}

	// 环境变量覆盖，方便容器化部署时逐项调整。
	if v := getEnv("MYSQL_HOST", ""); v != "" {
		cfg.Infra.Mysql.Host = v
	}
	if v := getEnv("MYSQL_PASSWORD", ""); v != "" {
		cfg.Infra.Mysql.Password = v
	}
	if v := getEnv("KAFKA_BROKERS", ""); v != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getEnv("REDIS_ADDR", ""); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := getEnv("ZOOKEEPER_ADDRS", ""); v != "" {
		cfg.Infra.Zookeeper.Addrs = strings.Split(v, ",")
	}
	if v := getEnv("JAEGER_ENDPOINT", ""); v != "" {
		cfg.Infra.Jaeger.Endpoint = v
	}

	return cfg
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Infra.Mysql.Host = "localhost"
	cfg.Infra.Mysql.Port = 3306
	cfg.Infra.Mysql.User = "root"
	cfg.Infra.Mysql.Password = "root"
	cfg.Infra.Mysql.Database = "eplatform"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Reservation.ReaperInterval = "5m"
	cfg.Reservation.TTL = "30m"
	return cfg
}

// ReaperInterval 解析清扫周期，非法值回落到默认 5 分钟。
func (c *Config) ReaperInterval() time.Duration {
	return parseDuration(c.Reservation.ReaperInterval, 5*time.Minute)
}

// ReservationTTL 解析预占超时，非法值回落到默认 30 分钟。
func (c *Config) ReservationTTL() time.Duration {
	return parseDuration(c.Reservation.TTL, 30*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
