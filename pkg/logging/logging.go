// Package logging wraps go.uber.org/zap with the banner/section
// helpers the teacher's pkg/logger used for startup messages, now
// backed by structured logging instead of raw ANSI codes.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base *zap.Logger

func init() {
	base, _ = zap.NewProduction()
}

// SetLevel adjusts the minimum level the default logger emits.
// Accepted values: "debug", "info", "warn", "error".
func SetLevel(level string) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if l, err := cfg.Build(); err == nil {
		base = l
	}
}

// For returns a child logger named after component (For("server")
// logs under the name "server"); internal/server and cmd/versed use it.
func For(component string) *zap.SugaredLogger {
	return base.Named(component).Sugar()
}

// Banner prints the startup banner, matching the teacher's
// pkg/logger.Banner in spirit (one visually distinct block at process
// start), printed to stdout as plain text lines rather than ANSI art.
func Banner(name, version string) {
	line := strings.Repeat("=", 48)
	fmt.Println(line)
	fmt.Printf("  %s %s\n", name, version)
	fmt.Println(line)
}

// Section prints a section header, the teacher's pkg/logger.Section
// equivalent, used to visually separate startup phases in server logs.
func Section(title string) {
	fmt.Printf("-- %s --\n", title)
}

// Sync flushes buffered log entries; call before process exit.
func Sync() {
	_ = base.Sync()
}
