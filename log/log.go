/*
Package log is a global and configurable logger pkg, based on zerolog (https://github.com/rs/zerolog)

The logger reads an optional toml file. Every field is optional.

 # default level for every module: debug/info/warn/error/fatal/panic
 level = "info"

 # console, console_no_color or json
 formatter = "json"

 # stdout, stderr or a file path
 out = "stderr"

 # print source file and line
 caller = false

 # timestamp layout, see time/format.go
 timefieldformat = "2006-01-02T15:04:05Z07:00"

 # per module overrides; level and out are honoured
 [vault]
 level = "debug"

 [db]
 level = "warn"

The file is looked up as ./vaultlog.toml, or at the path held by the
environment variable VAULT_LOGCONFIG.
*/
package log

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	colorable "github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	confFilePathKey     = "LOGCONFIG"
	confEnvPrefix       = "VAULT"
	defaultConfFileName = "vaultlog"
)

var (
	baseLogger  = zerolog.New(os.Stderr)
	baseLevel   = zerolog.InfoLevel
	logInitLock sync.Mutex
	isLogInit   = false
	viperConf   = viper.New()
)

// Logger keeps configrations, and provides a funcs to print logs.
type Logger struct {
	*zerolog.Logger
	name  string
	level zerolog.Level
}

func loadConfigFile() {
	viperConf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperConf.SetEnvPrefix(confEnvPrefix)
	viperConf.AutomaticEnv()

	viperConf.SetConfigType("toml")
	viperConf.SetConfigName(defaultConfFileName)
	viperConf.AddConfigPath(".")

	if confFilePath := viperConf.GetString(confFilePathKey); confFilePath != "" {
		viperConf.SetConfigFile(confFilePath)
		baseLogger.Info().Str("file", confFilePath).Msg("Init Logger using a configuration file")
	}

	if err := viperConf.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			baseLogger.Error().Err(err).Msg("Fail to read a logger's config file")
		}
	}
}

func initLog() {
	if format := viperConf.GetString("timefieldformat"); format != "" {
		zerolog.TimeFieldFormat = format
	}

	var out io.Writer = os.Stderr
	if outputName := viperConf.GetString("out"); outputName != "" {
		if o, err := getOutput(outputName); err == nil {
			out = o
		} else {
			baseLogger.Warn().Err(err).Str("outputName", outputName).Msg("failed to open output writer. set to base out instead")
		}
	}
	baseLogger = baseLogger.Output(formatOutput(out, viperConf.GetString("formatter")))

	if viperConf.GetBool("caller") {
		baseLogger = baseLogger.With().Caller().Logger()
	}

	zLevel := parseLevel(viperConf.GetString("level"), zerolog.InfoLevel)
	baseLogger = baseLogger.With().Timestamp().Logger().Level(zLevel)
	baseLevel = zLevel
}

func formatOutput(out io.Writer, formatter string) io.Writer {
	switch strings.ToLower(formatter) {
	case "", "json":
		return out
	case "console":
		if f, ok := out.(*os.File); ok {
			out = colorable.NewColorable(f)
		}
		return zerolog.ConsoleWriter{Out: out, NoColor: false, TimeFormat: zerolog.TimeFieldFormat}
	case "console_no_color":
		return zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: zerolog.TimeFieldFormat}
	default:
		baseLogger.Warn().Str("formatter", formatter).Msg("Invalid Message Formatter. Only allowed; console/console_no_color/json")
		return out
	}
}

func parseLevel(level string, fallback zerolog.Level) zerolog.Level {
	if level == "" {
		return fallback
	}
	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		baseLogger.Warn().Err(err).Str("level", level).Msg("Fail to parse a log level. use fallback")
		return fallback
	}
	return zLevel
}

func ensureInit() {
	if !isLogInit {
		loadConfigFile()
		initLog()
		isLogInit = true
	}
}

// NewLogger creates and returns new logger using a current setting.
// All entries carry the tag 'module' = moduleName.
func NewLogger(moduleName string) *Logger {
	logInitLock.Lock()
	defer logInitLock.Unlock()
	ensureInit()

	zLogger := baseLogger.With().Str("module", moduleName).Logger()
	zLevel := baseLevel

	if subViperConf := viperConf.Sub(moduleName); subViperConf != nil {
		if outputName := subViperConf.GetString("out"); outputName != "" {
			if out, err := getOutput(outputName); err == nil {
				zLogger = zLogger.Output(out)
			} else {
				baseLogger.Warn().Err(err).Str("outputName", outputName).Str("module", moduleName).Msg("failed to open output writer. set to base out instead")
			}
		}
		if level := subViperConf.GetString("level"); level != "" {
			zLevel = parseLevel(level, zerolog.InfoLevel)
			zLogger = zLogger.Level(zLevel)
		}
	}

	return &Logger{
		Logger: &zLogger,
		name:   moduleName,
		level:  zLevel,
	}
}

// Default returns a default logger. this logger does not have a module name.
func Default() *Logger {
	logInitLock.Lock()
	defer logInitLock.Unlock()
	ensureInit()

	return &Logger{
		Logger: &baseLogger,
		level:  baseLevel,
	}
}

// WithOutput returns a copy of the logger writing to w. Used by tests and the
// CLI to capture audit entries.
func (logger *Logger) WithOutput(w io.Writer) *Logger {
	zLogger := logger.Logger.Output(w)
	return &Logger{Logger: &zLogger, name: logger.name, level: logger.level}
}

var errEmptyName = errors.New("not really error. just placeholder")

// getOutput returns the writer for outName: stdout, stderr or a file path
// opened for append.
func getOutput(outName string) (*os.File, error) {
	switch outName {
	case "":
		return nil, errEmptyName
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(outName, os.O_WRONLY|os.O_CREATE|os.O_APPEND|os.O_SYNC, 0644)
	}
}

// IsDebugEnabled is used to check whether this logger's level is debug or not.
func (logger *Logger) IsDebugEnabled() bool {
	return logger.level == zerolog.DebugLevel
}

// Level returns current logger level
func (logger *Logger) Level() string {
	return logger.level.String()
}

// Name returns the module name of the logger.
func (logger *Logger) Name() string {
	return logger.name
}
