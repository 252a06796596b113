// Package logging wraps tendermint's libs/log the way log/log.go does,
// trimmed to what the reserve engine's demo CLI needs.
package logging

import (
	"io"
	"os"

	"github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/vrsc-reserve/engine/config"
)

const (
	FormatPlain = "plain"
	FormatJSON  = "json"
)

var logger log.Logger = log.NewNopLogger()

// InitLog sets the process-wide logger from cfg, panicking on a bad level
// or an unsupported format the same way log/log.go's InitLog does.
func InitLog(cfg *config.Config) {
	var dest io.Writer = os.Stdout
	if cfg.LogPath != "" && cfg.LogPath != "stdout" {
		file, err := os.OpenFile(cfg.LogPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			panic(err)
		}
		dest = file
	}

	var l log.Logger
	switch cfg.LogFormat {
	case FormatJSON:
		l = log.NewTMJSONLogger(dest)
	case FormatPlain, "":
		l = log.NewTMLogger(dest)
	default:
		panic("unsupported log format: " + cfg.LogFormat)
	}

	l, err := flags.ParseLogLevel(cfg.LogLevel, l, "info")
	if err != nil {
		panic(err)
	}
	logger = l
}

func SetLogger(l log.Logger) { logger = l }

func Info(msg string, ctx ...interface{})  { logger.Info(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { logger.Debug(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { logger.Error(msg, ctx...) }

// With returns a sub-logger carrying the given key/value pairs on every
// subsequent call.
func With(keyvals ...interface{}) log.Logger {
	return logger.With(keyvals...)
}
