package badgerdb

import (
	"fmt"
	"strings"

	"github.com/celer-network/go-vault/log"
)

// extendedLog routes badger's printf-style logging into the module logger.
type extendedLog struct {
	*log.Logger
}

func (l *extendedLog) Errorf(format string, v ...interface{}) {
	l.Error().Msg(trimNewline(fmt.Sprintf(format, v...)))
}

func (l *extendedLog) Warningf(format string, v ...interface{}) {
	l.Warn().Msg(trimNewline(fmt.Sprintf(format, v...)))
}

func (l *extendedLog) Infof(format string, v ...interface{}) {
	l.Info().Msg(trimNewline(fmt.Sprintf(format, v...)))
}

func (l *extendedLog) Debugf(format string, v ...interface{}) {
	l.Debug().Msg(trimNewline(fmt.Sprintf(format, v...)))
}

func trimNewline(s string) string {
	return strings.TrimRight(s, "\n")
}
