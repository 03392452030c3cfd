package logging

import (
	"sync"
)

var (
	instance *Logger
	mu       sync.RWMutex
)

// InitLogger builds the process-wide logger. It replaces any logger created
// earlier and closes it.
func InitLogger(config *Config) error {
	logger, err := NewLogger(config)
	if err != nil {
		return err
	}

	mu.Lock()
	prev := instance
	instance = logger
	mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return nil
}

// GetGlobalLogger returns the process-wide logger. Before InitLogger is called
// it returns a stdout logger at info level so early callers never get nil.
func GetGlobalLogger() *Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance, _ = NewLogger(&Config{Level: LevelInfo})
	}
	return instance
}
