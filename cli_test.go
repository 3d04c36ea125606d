package main

import (
	"bytes"
	"testing"
)

func TestParseFlagsHelp(t *testing.T) {
	cli := NewCli(new(bytes.Buffer), new(bytes.Buffer))

	r, err := cli.ParseFlags([]string{"-help"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !r.isHelp {
		t.Fatalf("expected isHelp")
	}
}

func TestParseFlagsVersion(t *testing.T) {
	cli := NewCli(new(bytes.Buffer), new(bytes.Buffer))

	r, err := cli.ParseFlags([]string{"-version"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !r.isVersion {
		t.Fatalf("expected isVersion")
	}
}

func TestParseFlagsRequiresConfigFile(t *testing.T) {
	cli := NewCli(new(bytes.Buffer), new(bytes.Buffer))

	if _, err := cli.ParseFlags([]string{"-logger", "stdout"}); err == nil {
		t.Fatalf("expected an error for missing -config-file")
	}
}

func TestParseFlagsRejectsUnknownLogger(t *testing.T) {
	cli := NewCli(new(bytes.Buffer), new(bytes.Buffer))

	_, err := cli.ParseFlags([]string{"-config-file", "/tmp/x", "-logger", "bogus"})
	if err == nil {
		t.Fatalf("expected an error for invalid -logger")
	}
}

func TestParseFlagsChannelLogLevel(t *testing.T) {
	cli := NewCli(new(bytes.Buffer), new(bytes.Buffer))

	r, err := cli.ParseFlags([]string{
		"-config-file", "/tmp/x",
		"-channel-loglevel", "daemon", "debug",
		"-channel-loglevel", "module", "none",
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := r.channelLevels["daemon"]; got != "debug" {
		t.Fatalf("expected daemon=debug, got %q", got)
	}
	if got := r.channelLevels["module"]; got != "none" {
		t.Fatalf("expected module=none, got %q", got)
	}
}

func TestParseFlagsRejectsUnknownChannel(t *testing.T) {
	cli := NewCli(new(bytes.Buffer), new(bytes.Buffer))

	_, err := cli.ParseFlags([]string{
		"-config-file", "/tmp/x",
		"-channel-loglevel", "bogus", "debug",
	})
	if err == nil {
		t.Fatalf("expected an error for unknown channel")
	}
}

func TestParseFlagsRejectsIncompleteChannelLogLevel(t *testing.T) {
	cli := NewCli(new(bytes.Buffer), new(bytes.Buffer))

	_, err := cli.ParseFlags([]string{"-config-file", "/tmp/x", "-channel-loglevel", "daemon"})
	if err == nil {
		t.Fatalf("expected an error for a dangling -channel-loglevel")
	}
}

func TestParseFlagsAcceptsNumericLogLevel(t *testing.T) {
	cli := NewCli(new(bytes.Buffer), new(bytes.Buffer))

	r, err := cli.ParseFlags([]string{"-config-file", "/tmp/x", "-loglevel", "5"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if r.logLevel != "DEBUG" {
		t.Fatalf("expected DEBUG, got %q", r.logLevel)
	}
}
