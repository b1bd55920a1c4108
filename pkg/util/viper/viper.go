package viper

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	spfviper "github.com/spf13/viper"
)

// Config 封装 spf13/viper 实例，对外提供精简的 YAML/JSON 配置加载接口。
type Config struct {
	v *spfviper.Viper
}

// New 创建一个空的 Config。
// 在调用 Unmarshal/UnmarshalKey 之前可以先调用 LoadFile 加载配置文件。
func New() *Config {
	return &Config{
		v: spfviper.New(),
	}
}

// NewWithEnv 创建一个 Config，已注册默认值的 key 可以被 <prefix>_<KEY> 环境变量覆盖。
// key 中的 "." 与 "-" 在环境变量名中写作 "_"，例如 keyset.workers 对应 COLLATE_KEYSET_WORKERS。
func NewWithEnv(prefix string) *Config {
	v := spfviper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// SetDefault 设置 key 的默认值。
func (c *Config) SetDefault(key string, value any) {
	c.viper().SetDefault(key, value)
}

// Set 以最高优先级覆盖 key 的值。
func (c *Config) Set(key string, value any) {
	c.viper().Set(key, value)
}

// LoadFile 将 YAML 或 JSON 配置文件加载到 Config 中。
// 文件类型通过扩展名（.yaml/.yml/.json）推断。
func (c *Config) LoadFile(path string) error {
	v := c.viper()
	v.SetConfigFile(path)

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	default:
		// 让 viper 自行推断类型，或在读取时返回清晰的错误信息。
	}

	return v.ReadInConfig()
}

// LoadOptionalFile 与 LoadFile 相同，但文件不存在时返回 false 而不是错误。
func (c *Config) LoadOptionalFile(path string) (bool, error) {
	err := c.LoadFile(path)
	if err == nil {
		return true, nil
	}
	var notFound spfviper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ConfigFileUsed 返回最近一次加载的配置文件路径。
func (c *Config) ConfigFileUsed() string {
	return c.viper().ConfigFileUsed()
}

func (c *Config) GetString(key string) string { return c.viper().GetString(key) }

func (c *Config) GetInt(key string) int { return c.viper().GetInt(key) }

func (c *Config) GetBool(key string) bool { return c.viper().GetBool(key) }

// IsSet 报告 key 是否在文件、环境变量或默认值中出现。
func (c *Config) IsSet(key string) bool { return c.viper().IsSet(key) }

// Unmarshal 将完整配置反序列化到 dst。
// dst 应为结构体或 map 的指针。
func (c *Config) Unmarshal(dst interface{}) error {
	return c.viper().Unmarshal(dst)
}

// UnmarshalKey 将指定 key 对应的子配置反序列化到 dst。
// dst 应为结构体或 map 的指针。
func (c *Config) UnmarshalKey(key string, dst interface{}) error {
	return c.viper().UnmarshalKey(key, dst)
}

func (c *Config) viper() *spfviper.Viper {
	if c.v == nil {
		c.v = spfviper.New()
	}
	return c.v
}
