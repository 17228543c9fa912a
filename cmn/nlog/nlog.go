// Package nlog - exchange logger: buffering, timestamping, severity levels,
// and flushing
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

const (
	maxLineSize = 4 * 1024
	flushEvery  = 10 * time.Second
)

var sevText = [...]string{"I", "W", "E"}

type nlogger struct {
	mw      sync.Mutex
	w       *bufio.Writer
	file    *os.File
	flushed time.Time
}

var (
	toStderr     bool
	alsoToStderr bool
	logDir       string
	title        string

	nlogs [2]*nlogger // [sevInfo], [sevErr]
	once  sync.Once
)

func initOnce() {
	for i := range nlogs {
		nlogs[i] = &nlogger{w: bufio.NewWriterSize(os.Stderr, maxLineSize), flushed: time.Now()}
	}
	if logDir == "" || toStderr {
		return
	}
	for i, suffix := range []string{".INFO", ".ERROR"} {
		fqn := filepath.Join(logDir, sname()+suffix)
		file, err := os.OpenFile(fqn, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "nlog:", err)
			continue
		}
		nlogs[i].file = file
		nlogs[i].w = bufio.NewWriterSize(file, maxLineSize)
	}
}

func sname() string {
	if title != "" {
		return title
	}
	return filepath.Base(os.Args[0])
}

func SetLogDir(dir string) { logDir = dir }
func SetTitle(s string)    { title = s }
func SetToStderr(b bool)   { toStderr = b }
func AlsoToStderr(b bool)  { alsoToStderr = b }
func InfoLogName() string  { return sname() + ".INFO" }
func ErrLogName() string   { return sname() + ".ERROR" }

func log(sev severity, depth int, format string, args ...any) {
	once.Do(initOnce)
	var (
		line string
		now  = time.Now()
	)
	if format == "" {
		line = fmt.Sprintln(args...)
	} else {
		line = fmt.Sprintf(format, args...)
		if len(line) == 0 || line[len(line)-1] != '\n' {
			line += "\n"
		}
	}
	_, fn, ln, ok := runtime.Caller(2 + depth)
	if !ok {
		fn, ln = "???", 0
	}
	hdr := sevText[sev] + " " + now.Format("15:04:05.000000") + " " +
		filepath.Base(fn) + ":" + strconv.Itoa(ln) + " "

	l := nlogs[0] // info and warnings
	if sev == sevErr {
		l = nlogs[1]
	}
	l.mw.Lock()
	l.w.WriteString(hdr)
	l.w.WriteString(line)
	if sev >= sevWarn || time.Since(l.flushed) > flushEvery {
		l.w.Flush()
		l.flushed = now
	}
	l.mw.Unlock()

	if sev >= sevWarn && l.file != nil && alsoToStderr {
		fmt.Fprint(os.Stderr, hdr, line)
	}
}

func InfoDepth(depth int, args ...any)    { log(sevInfo, depth, "", args...) }
func Infoln(args ...any)                  { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 0, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 0, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 0, format, args...) }
func WarningDepth(depth int, args ...any) { log(sevWarn, depth, "", args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 0, format, args...) }

func Flush(exit ...bool) {
	once.Do(initOnce)
	ex := len(exit) > 0 && exit[0]
	for _, l := range nlogs {
		l.mw.Lock()
		l.w.Flush()
		if ex && l.file != nil {
			l.file.Sync()
		}
		l.mw.Unlock()
	}
}

// SetOutput redirects both severities; test-only.
func SetOutput(w io.Writer) {
	once.Do(initOnce)
	for _, l := range nlogs {
		l.mw.Lock()
		l.w.Flush()
		l.w = bufio.NewWriterSize(w, maxLineSize)
		l.mw.Unlock()
	}
}
