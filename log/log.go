package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

var (
	WarningLog = log.New(os.Stderr, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	InfoLog    = log.New(io.Discard, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog   = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
)

// DefaultLogFile is used when no log file is configured.
var DefaultLogFile = filepath.Join(os.TempDir(), "labserve.log")

var globalLogFile *os.File

// Initialize should be called once at the beginning of the program to set up logging.
// defer Close() after calling this function. Info and Warning records go to the
// file only; Error records also reach stderr so they are never hidden behind
// the log file.
func Initialize(logFile string) error {
	if logFile == "" {
		logFile = DefaultLogFile
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}

	InfoLog = log.New(f, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarningLog = log.New(f, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(io.MultiWriter(os.Stderr, f), "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	globalLogFile = f
	return nil
}

// Close flushes and closes the log file opened by Initialize.
func Close() {
	if globalLogFile == nil {
		return
	}
	_ = globalLogFile.Close()
	globalLogFile = nil
}

// Path returns the file logs are written to, or "" before Initialize.
func Path() string {
	if globalLogFile == nil {
		return ""
	}
	return globalLogFile.Name()
}
