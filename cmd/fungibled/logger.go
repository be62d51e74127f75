// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"path"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/fungiblevm/consts"
)

// newLogger builds a console logger and, when [logDir] is set, adds a rotated
// file core next to it.
func newLogger(level logging.Level, logDir string) logging.Logger {
	consoleCore := logging.NewWrappedCore(level, os.Stderr, logging.Colors.ConsoleEncoder())
	if len(logDir) == 0 {
		return logging.NewLogger(consts.Name, consoleCore)
	}
	rw := &lumberjack.Logger{
		Filename:   path.Join(logDir, consts.Name+".log"),
		MaxSize:    8,  // MiB
		MaxAge:     30, // days
		MaxBackups: 16,
		Compress:   true,
	}
	fileCore := logging.NewWrappedCore(level, rw, logging.JSON.FileEncoder())
	return logging.NewLogger(consts.Name, consoleCore, fileCore)
}
