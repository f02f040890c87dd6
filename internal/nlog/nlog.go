// Package nlog is CupidDB's leveled logger: a small set of level-named
// functions over the standard library's log.Logger, with the active level
// set once at process start from the environment.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cupiddb/cupiddb/internal/xatomic"
)

type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts the CUPID_LOG_LEVEL values named in the spec
// (ERROR/WARN/INFO/DEBUG/TRACE), defaulting to INFO on anything else.
func ParseLevel(s string) Level {
	switch s {
	case "ERROR":
		return LevelError
	case "WARN":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	case "TRACE":
		return LevelTrace
	default:
		return LevelInfo
	}
}

var (
	level  = xatomic.NewInt32(int32(LevelInfo))
	logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

func init() {
	SetLevel(ParseLevel(os.Getenv("CUPID_LOG_LEVEL")))
}

func SetLevel(l Level)      { level.Store(int32(l)) }
func GetLevel() Level       { return Level(level.Load()) }
func SetOutput(w io.Writer) { logger.SetOutput(w) }

func logf(l Level, format string, args ...any) {
	if Level(level.Load()) < l {
		return
	}
	logger.Printf("[%s] %s", l, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) { logf(LevelError, format, args...) }
func Warnf(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Infof(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Debugf(format string, args ...any) { logf(LevelDebug, format, args...) }
func Tracef(format string, args ...any) { logf(LevelTrace, format, args...) }

func Errorln(args ...any) { logln(LevelError, args...) }
func Warnln(args ...any)  { logln(LevelWarn, args...) }
func Infoln(args ...any)  { logln(LevelInfo, args...) }
func Debugln(args ...any) { logln(LevelDebug, args...) }

func logln(l Level, args ...any) {
	if Level(level.Load()) < l {
		return
	}
	logger.Printf("[%s] %s", l, fmt.Sprintln(args...))
}
