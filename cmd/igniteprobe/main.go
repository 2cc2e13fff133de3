// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// igniteprobe dials a single cluster node, negotiates the binary
// protocol and reports the negotiated state. It exists to exercise
// the channel end to end against a live node and to demonstrate the
// lifecycle boundary an owning pool would implement.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
	"github.com/juju/lumberjack/v2"

	"github.com/canonical/ignite-go/channel"
	"github.com/canonical/ignite-go/protocol"
	"github.com/canonical/ignite-go/transport"
	"github.com/canonical/ignite-go/version"
)

var logger = loggo.GetLogger("igniteprobe")

// loggingObserver reports channel lifecycle transitions to the log.
// A real owner would trigger pooling or reconnection here.
type loggingObserver struct{}

func (loggingObserver) Ready(id uint64) {
	logger.Infof("channel %d ready", id)
}

func (loggingObserver) Failed(id uint64, err error) {
	logger.Errorf("channel %d failed: %v", id, err)
}

func (loggingObserver) Closed(id uint64) {
	logger.Infof("channel %d closed", id)
}

func main() {
	os.Exit(Main(os.Args[1:]))
}

// Main runs the probe and returns the process exit code.
func Main(args []string) int {
	var (
		address      string
		user         string
		password     string
		protoVersion string
		logFile      string
		timeout      time.Duration
		useTLS       bool
		insecure     bool
		debug        bool
		showVersion  bool
	)
	f := gnuflag.NewFlagSet("igniteprobe", gnuflag.ContinueOnError)
	f.StringVar(&address, "address", "127.0.0.1:10800", "host:port of the node to probe")
	f.StringVar(&user, "user", "", "username for handshake authentication")
	f.StringVar(&password, "password", "", "password for handshake authentication")
	f.StringVar(&protoVersion, "protocol-version", "", "protocol version to propose (default newest supported)")
	f.StringVar(&logFile, "log-file", "", "also write the log to this file, with rotation")
	f.DurationVar(&timeout, "timeout", 10*time.Second, "dial and handshake timeout")
	f.BoolVar(&useTLS, "tls", false, "connect with TLS")
	f.BoolVar(&insecure, "insecure-skip-verify", false, "skip TLS certificate verification (implies --tls)")
	f.BoolVar(&debug, "debug", false, "log at DEBUG level")
	f.BoolVar(&showVersion, "version", false, "print the client version and exit")

	if err := f.Parse(true, args); err != nil {
		if err == gnuflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if showVersion {
		fmt.Println(version.Current)
		return 0
	}

	if err := setupLogging(debug, logFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := probe(os.Stdout, address, user, password, protoVersion, timeout, useTLS, insecure); err != nil {
		fmt.Fprintf(os.Stderr, "igniteprobe: %v\n", err)
		return 1
	}
	return 0
}

func setupLogging(debug bool, logFile string) error {
	level := "WARNING"
	if debug {
		level = "DEBUG"
	}
	if err := loggo.ConfigureLoggers("<root>=" + level); err != nil {
		return errors.Trace(err)
	}
	if logFile == "" {
		return nil
	}
	writer := loggo.NewSimpleWriter(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 2,
	}, loggo.DefaultFormatter)
	return errors.Trace(loggo.RegisterWriter("probe-file", writer))
}

func probe(out io.Writer, address, user, password, protoVersion string, timeout time.Duration, useTLS, insecure bool) error {
	var ver protocol.Version
	if protoVersion != "" {
		var err error
		if ver, err = protocol.ParseVersion(protoVersion); err != nil {
			return errors.Trace(err)
		}
	}

	var tlsConfig *tls.Config
	if useTLS || insecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: insecure}
	}

	conn, err := transport.Dial(transport.Config{
		Address:     address,
		TLSConfig:   tlsConfig,
		DialTimeout: timeout,
	})
	if err != nil {
		return errors.Trace(err)
	}

	ch, err := channel.New(1, conn, channel.Config{
		Address:          address,
		Version:          ver,
		Username:         user,
		Password:         password,
		RequestTimeout:   timeout,
		HandshakeTimeout: timeout,
	}, loggingObserver{})
	if err != nil {
		_ = conn.Close()
		return errors.Trace(err)
	}
	if err := conn.Start(ch); err != nil {
		_ = conn.Close()
		return errors.Trace(err)
	}
	if err := ch.StartHandshake(context.Background()); err != nil {
		return errors.Trace(err)
	}

	node := ch.Node()
	fmt.Fprintf(out, "connected to %s\n", address)
	fmt.Fprintf(out, "client version:    %s\n", version.Current)
	fmt.Fprintf(out, "protocol version:  %s\n", ch.Version())
	fmt.Fprintf(out, "node id:           %s\n", node.ID)
	fmt.Fprintf(out, "node consistent id: %s\n", node.ConsistentID)
	features := set.NewStrings(ch.Features().Names()...)
	if features.IsEmpty() {
		fmt.Fprintf(out, "features:          none\n")
	} else {
		fmt.Fprintf(out, "features:\n")
		for _, name := range features.SortedValues() {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	return errors.Trace(ch.Close())
}
