package logging

import (
	"fmt"
	"io"
	"os"
	"time"
)

// DefaultMaxLogSize is the rotation threshold file loggers start with.
const DefaultMaxLogSize int64 = 10 * 1024 * 1024

// SetMaxSize changes the rotation threshold. Zero disables rotation.
func (l *Logger) SetMaxSize(maxSize int64) {
	l.maxSize = maxSize
}

// RotateIfNeeded rotates the log file if it exceeds maxSize bytes. File
// loggers call this before every write; the old file is renamed with a
// timestamp suffix and the cleanup sweeper prunes those backups later.
func (l *Logger) RotateIfNeeded(maxSize int64) error {
	if l.logFile == nil {
		return nil
	}

	info, err := l.logFile.Stat()
	if err != nil {
		return err
	}
	if info.Size() <= maxSize {
		return nil
	}

	oldPath := l.logFile.Name()
	l.logFile.Close()

	backupPath := oldPath + "." + time.Now().Format("20060102-150405")
	if err := os.Rename(oldPath, backupPath); err != nil {
		return fmt.Errorf("failed to rotate %s: %w", oldPath, err)
	}

	newFile, err := os.OpenFile(oldPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to reopen %s: %w", oldPath, err)
	}

	l.logFile = newFile
	if l.mirror {
		l.output = io.MultiWriter(newFile, os.Stdout)
	} else {
		l.output = newFile
	}
	return nil
}
