package writer

import (
	"github.com/vulncert/vulncert/internal/log"
)

// logAdapter routes gorm log lines into the application logger.
type logAdapter struct {
}

func (l *logAdapter) Print(v ...interface{}) {
	log.Debugf("gorm: %+v", v)
}
