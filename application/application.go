package application

import (
	"fmt"
	"os"
	"strings"

	zlog "github.com/lk2023060901/collate-go/pkg/log"
	zviper "github.com/lk2023060901/collate-go/pkg/util/viper"
)

const (
	envPrefix         = "COLLATE"
	envConfigFilePath = "COLLATE_CONFIG_FILE_PATH"
	defaultConfigPath = "./collate.yaml"
)

// Settings 是 collate 命令行工具的全部可配置项。
type Settings struct {
	Keyset  KeysetSettings  `mapstructure:"keyset"`
	Keyfile KeyfileSettings `mapstructure:"keyfile"`
	Metrics MetricsSettings `mapstructure:"metrics"`
}

type KeysetSettings struct {
	// Workers 为并发编码的协程数，0 表示 GOMAXPROCS。
	Workers int `mapstructure:"workers"`
}

type KeyfileSettings struct {
	Compress        bool   `mapstructure:"compress"`
	MinCompressSize int    `mapstructure:"min_compress_size"`
	MaxFrameSize    uint32 `mapstructure:"max_frame_size"`
}

type MetricsSettings struct {
	// Textfile 非空时，进程退出前将指标写入该文件。
	Textfile string `mapstructure:"textfile"`
}

func setDefaults(cfg *zviper.Config) {
	cfg.SetDefault("keyset.workers", 0)
	cfg.SetDefault("keyfile.compress", false)
	cfg.SetDefault("keyfile.min_compress_size", 64)
	cfg.SetDefault("keyfile.max_frame_size", 0)
	cfg.SetDefault("metrics.textfile", "")
}

// Application 是 collate 命令行工具的运行时容器，负责配置与日志。
type Application struct {
	cfg      *zviper.Config
	settings Settings
	loggers  map[string]*zlog.MLogger
}

// New creates a new Application instance.
func New() *Application {
	return &Application{}
}

// Run 解析 os.Args 中的 --config 并加载配置。
func (a *Application) Run() error {
	return a.RunWithArgs(os.Args[1:])
}

// RunWithArgs 加载配置并初始化日志。配置文件路径的优先级：
//  1. 默认：./collate.yaml（不存在时忽略）
//  2. 环境变量：COLLATE_CONFIG_FILE_PATH
//  3. 命令行：--config <path> 或 --config=<path>
//
// 显式指定的配置文件必须存在。所有配置项都可以被 COLLATE_<SECTION>_<KEY> 环境变量覆盖。
func (a *Application) RunWithArgs(args []string) error {
	cfg, err := a.loadConfig(args)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := cfg.Unmarshal(&a.settings); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}

	if err := a.initLogging(); err != nil {
		return err
	}

	return nil
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// Settings 返回解析后的配置项。
func (a *Application) Settings() Settings {
	return a.settings
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return zlog.With(zlog.FieldModule(name))
}

// loadConfig resolves config file path and loads it via viper wrapper.
func (a *Application) loadConfig(args []string) (*zviper.Config, error) {
	configPath := defaultConfigPath
	explicit := false

	if envPath := os.Getenv(envConfigFilePath); envPath != "" {
		configPath = envPath
		explicit = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if arg == "--config" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value after --config")
			}
			configPath = args[i+1]
			explicit = true
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			if val := strings.TrimPrefix(arg, "--config="); val != "" {
				configPath = val
				explicit = true
			}
			continue
		}
	}

	cfg := zviper.NewWithEnv(envPrefix)
	setDefaults(cfg)

	if explicit {
		if err := cfg.LoadFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file %q: %w", configPath, err)
		}
		return cfg, nil
	}
	if _, err := cfg.LoadOptionalFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", configPath, err)
	}
	return cfg, nil
}

// initLogging initializes global and module-level loggers.
func (a *Application) initLogging() error {
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}
	if err := a.initModuleLoggersFromConfig(); err != nil {
		return err
	}
	return nil
}

// initGlobalLoggerFromEnv configures the process-wide logger based on COLLATE_LOG_* env vars.
//
//   - COLLATE_LOG_LEVEL: log level (default "warn").
//   - COLLATE_LOG_FORMAT: "text" or "json" (default "text").
//   - COLLATE_LOG_FILE_DIR / COLLATE_LOG_FILE: optional log file.
//
// stdout 保留给命令输出，日志写到 stderr。
func (a *Application) initGlobalLoggerFromEnv() error {
	cfg := &zlog.Config{
		Level:               getenvDefault("COLLATE_LOG_LEVEL", "warn"),
		Format:              getenvDefault("COLLATE_LOG_FORMAT", "text"),
		Stderr:              true,
		DisableErrorVerbose: true,
		File: zlog.FileLogConfig{
			RootPath: getenvDefault("COLLATE_LOG_FILE_DIR", ""),
			Filename: getenvDefault("COLLATE_LOG_FILE", ""),
		},
	}

	logger, props, err := zlog.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("init global logger from env: %w", err)
	}
	zlog.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggersFromConfig creates named loggers from the "logging" section.
//
// Example:
//
//	logging:
//	  keyset:
//	    level: debug
//	    stderr: true
//	  keyfile:
//	    level: info
//	    file:
//	      rootpath: ./logs
//	      filename: keyfile.log
func (a *Application) initModuleLoggersFromConfig() error {
	if a.cfg == nil {
		return nil
	}

	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey("logging", &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return fmt.Errorf("init module logger %q: %w", name, err)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger.With(zlog.FieldModule(name))}
	}

	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}
