/*
DESCRIPTION
  av1inspect is a command line front end for the AV1 bitstream
  inspector: it probes each input file's container format, drives it
  through the Stream Driver, and reports OBU, frame and reference-frame
  state at the verbosity level requested on the command line. Grounded
  on cmd/rv/main.go's flag/logging/run-loop shape.

AUTHORS
  the av1inspect contributors

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

// Package main is the av1inspect CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/coreos/go-systemd/daemon"
	"github.com/fsnotify/fsnotify"
	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/av1inspect/driver"
)

// Logging configuration, same shape as cmd/rv/main.go.
const (
	logPath      = "av1inspect.log"
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logSuppress  = true
)

const pkg = "av1inspect: "

// verboseFlag implements flag.Value for a repeatable -v.
type verboseFlag int

func (v *verboseFlag) String() string { return fmt.Sprintf("%d", *v) }
func (v *verboseFlag) Set(string) error {
	*v++
	return nil
}
func (v *verboseFlag) IsBoolFlag() bool { return true }

func main() {
	var verbosity verboseFlag
	flag.Var(&verbosity, "v", "increase verbosity (repeatable: -v -v -v)")
	watchDir := flag.String("watch", "", "watch a directory for new stream files instead of inspecting positional args")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	level := logging.Info
	if int(verbosity) > 0 {
		level = logging.Debug
	}
	log := logging.New(level, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	driver.Log = log

	if *watchDir != "" {
		watch(*watchDir, int(verbosity), log)
		return
	}

	exitCode := 0
	for _, path := range flag.Args() {
		if err := inspectFile(path, int(verbosity), os.Stdout, log); err != nil {
			log.Error(pkg+"inspection failed", "file", path, "error", err.Error())
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// watch runs fsnotify on dir, inspecting each file that appears there
// until the process is killed. One Stream Driver runs to completion per
// discovered file before the next fsnotify event is handled, per
// spec.md's single-threaded concurrency model.
func watch(dir string, verbosity int, log logging.Logger) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal(pkg+"could not create watcher", "error", err.Error())
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		log.Fatal(pkg+"could not watch directory", "dir", dir, "error", err.Error())
	}

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warning(pkg+"sd_notify READY failed", "error", err.Error())
	} else if ok {
		log.Debug("sent sd_notify READY")
	}

	log.Info("watching for stream files", "dir", dir)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Info("inspecting new file", "path", ev.Name)
			if err := inspectFile(ev.Name, verbosity, os.Stdout, log); err != nil {
				log.Error(pkg+"inspection failed", "file", ev.Name, "error", err.Error())
			}
			if ok, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				log.Warning(pkg+"sd_notify WATCHDOG failed", "error", err.Error())
			} else if ok {
				log.Debug("sent sd_notify WATCHDOG")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Error(pkg+"watcher error", "error", err.Error())
		}
	}
}

// inspectFile opens path, probes its container format, and drives it to
// completion against a reportSink of the requested verbosity.
func inspectFile(path string, verbosity int, out io.Writer, log logging.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dm, err := probe(f)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "=== %s (%s) ===\n", filepath.Base(path), dm.Codec())

	d := driver.New()
	sink := newReportSink(out, verbosity, d.Seq)
	if err := d.Run(dm, sink); err != nil {
		return err
	}

	sink.summary(out)
	return nil
}
