package logging

import (
	"regexp"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry tracks named loggers so pattern configs can adjust their levels after creation.
type Registry struct {
	mu        sync.RWMutex
	loggers   map[string]Logger
	logConfig []LoggerPatternConfig
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loggers: make(map[string]Logger),
	}
}

func (lr *Registry) loggerNamed(name string) (logger Logger, ok bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok = lr.loggers[name]
	return
}

// levelFor returns the level of the last pattern matching `name`. Callers hold the lock.
func (lr *Registry) levelFor(name string) (Level, bool, error) {
	level, matched := INFO, false
	for _, lpc := range lr.logConfig {
		r, err := regexp.Compile(buildRegexFromPattern(lpc.Pattern))
		if err != nil {
			return level, false, err
		}
		if !r.MatchString(name) {
			continue
		}
		if level, err = LevelFromString(lpc.Level); err != nil {
			return level, false, err
		}
		matched = true
	}
	return level, matched, nil
}

// UpdateConfig replaces the pattern configuration and re-levels every registered logger. Loggers
// matching no pattern are reset to INFO. Invalid patterns are skipped with a warning.
func (lr *Registry) UpdateConfig(logConfig []LoggerPatternConfig, warnLogger Logger) error {
	valid := make([]LoggerPatternConfig, 0, len(logConfig))
	for _, lpc := range logConfig {
		if !ValidatePattern(lpc.Pattern) {
			warnLogger.Warnw("failed to validate a pattern", "pattern", lpc.Pattern)
			continue
		}
		if _, err := LevelFromString(lpc.Level); err != nil {
			return errors.Wrapf(err, "pattern %q", lpc.Pattern)
		}
		valid = append(valid, lpc)
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.logConfig = valid
	for name, logger := range lr.loggers {
		level, _, err := lr.levelFor(name)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}
	return nil
}

// GetOrRegister either returns the existing logger for `name` or registers `logger` under it
// and applies the current pattern configuration. Concurrent callers all receive the winner.
func (lr *Registry) GetOrRegister(name string, logger Logger) Logger {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if existingLogger, ok := lr.loggers[name]; ok {
		return existingLogger
	}

	lr.loggers[name] = logger
	if level, matched, err := lr.levelFor(name); err == nil && matched {
		logger.SetLevel(level)
	}
	return logger
}

// RegisteredNames returns the sorted names of all registered loggers.
func (lr *Registry) RegisteredNames() []string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	names := make([]string, 0, len(lr.loggers))
	for name := range lr.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
