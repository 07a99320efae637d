package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/ziflex/lecho/v3"
)

func Logger(logFilePath string) *lecho.Logger {
	logger := lecho.New(
		os.Stdout, // default to STDOUT
		lecho.WithLevel(log.DEBUG),
		lecho.WithTimestamp(),
	)
	// check if a log file config is set
	if logFilePath != "" {
		file, err := GetLoggingFile(logFilePath)
		if err != nil {
			logger.Errorf("failed to create logging file: %v", err)
		}
		logger.SetOutput(file)
	}

	return logger
}

// GetLoggingFile opens a date-stamped log file for the configured path.
func GetLoggingFile(path string) (*os.File, error) {
	stamp := time.Now().Format("2006-01-02")
	extension := filepath.Ext(path)
	if extension != "" {
		path = strings.Replace(path, extension, "-"+stamp+extension, 1)
	} else {
		path = path + "-" + stamp + ".log"
	}

	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
}
