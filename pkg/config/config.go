// Package config 提供 TOML 配置加载、环境变量覆盖与校验
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/wyfcoding/binomialpricing/pkg/logger"
)

// Config 基础配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// 日志配置
	Logger logger.Config `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 定价器配置
	Pricer PricerConfig `mapstructure:"pricer"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// 指标命名空间
	Namespace string `mapstructure:"namespace"`
}

// PricerConfig 二叉树定价器配置
type PricerConfig struct {
	// 单层节点数达到该值时并行逆推，0 表示关闭
	ParallelThreshold int `mapstructure:"parallel_threshold"`
	// 并行 goroutine 上限，0 表示 GOMAXPROCS
	MaxWorkers int `mapstructure:"max_workers"`
	// 公允价值保留的小数位
	Precision int32 `mapstructure:"precision"`
	// 控制台完整打印的最大步数，超出时只打印每层摘要
	DisplaySteps int `mapstructure:"display_steps"`
}

// Load 从 TOML 文件加载配置，支持环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

// LoadWithDefaults 从 TOML 文件加载配置，文件不存在时使用默认值
func LoadWithDefaults(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		// 读取配置文件（如果不存在则忽略）
		_ = v.ReadInConfig()
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	// 环境变量前缀 APP，使用 _ 替代 .
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.Pricer.ParallelThreshold < 0 {
		return fmt.Errorf("invalid pricer.parallel_threshold: %d", c.Pricer.ParallelThreshold)
	}
	if c.Pricer.MaxWorkers < 0 {
		return fmt.Errorf("invalid pricer.max_workers: %d", c.Pricer.MaxWorkers)
	}
	if c.Pricer.Precision < 0 || c.Pricer.Precision > 16 {
		return fmt.Errorf("invalid pricer.precision: %d", c.Pricer.Precision)
	}
	if c.Pricer.DisplaySteps < 0 {
		return fmt.Errorf("invalid pricer.display_steps: %d", c.Pricer.DisplaySteps)
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "lattice")
	v.SetDefault("environment", "dev")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.file_path", "logs/lattice.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "trading")

	v.SetDefault("pricer.parallel_threshold", 512)
	v.SetDefault("pricer.max_workers", 0)
	v.SetDefault("pricer.precision", 4)
	v.SetDefault("pricer.display_steps", 8)
}

// GetEnv 获取环境变量，支持默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
