package infrastructure

import (
	"io"
	"log"
	"os"
)

// Logger fine surcouche de log.Logger avec niveaux (DEBUG masqué sauf en verbose)
type Logger struct {
	base    *log.Logger
	verbose bool
}

// NewLogger crée un logger au format "date heure NIVEAU message"
func NewLogger(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		base:    log.New(w, "", log.LstdFlags),
		verbose: verbose,
	}
}

// DiscardLogger logger silencieux (tests)
func DiscardLogger() *Logger {
	return &Logger{base: log.New(io.Discard, "", 0)}
}

func (l *Logger) logger() *log.Logger {
	if l == nil || l.base == nil {
		return log.Default()
	}
	return l.base
}

// Debugf log de debug (uniquement en mode verbose)
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || !l.verbose {
		return
	}
	l.logger().Printf("DEBUG "+format, args...)
}

// Infof log d'information
func (l *Logger) Infof(format string, args ...any) {
	l.logger().Printf("INFO "+format, args...)
}

// Warnf log d'avertissement
func (l *Logger) Warnf(format string, args ...any) {
	l.logger().Printf("WARN "+format, args...)
}

// Errorf log d'erreur (n'interrompt pas le programme)
func (l *Logger) Errorf(format string, args ...any) {
	l.logger().Printf("ERROR "+format, args...)
}
