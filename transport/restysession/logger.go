package restysession

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/kbukum/vimeonet/logger"
)

// restyLogger routes resty's own diagnostics into the session logger.
type restyLogger struct {
	log *logger.Logger
}

var _ resty.Logger = restyLogger{}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.log.Error(fmt.Sprintf(format, v...)) }
func (l restyLogger) Warnf(format string, v ...interface{}) { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.log.Debug(fmt.Sprintf(format, v...)) }
