// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// juju-wait-for blocks until the named applications in a model are
// ready: enough units, agents idle for long enough, and optionally a
// specific workload status.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"

	"github.com/juju/waitfor/api"
	"github.com/juju/waitfor/status"
	"github.com/juju/waitfor/wait"
)

const loggingConfigEnv = "JUJU_WAITFOR_LOGGING_CONFIG"

func main() {
	os.Exit(Main(os.Args[1:]))
}

// Main runs the command and returns the process exit code.
func Main(args []string) int {
	if spec := os.Getenv(loggingConfigEnv); spec != "" {
		if err := loggo.ConfigureLoggers(spec); err != nil {
			fmt.Fprintf(os.Stderr, "invalid %s: %v\n", loggingConfigEnv, err)
			return 2
		}
	}

	var (
		address           string
		modelUUID         string
		username          string
		password          string
		caCertFile        string
		timeout           time.Duration
		idlePeriod        time.Duration
		waitForUnits      int
		waitForExactUnits int
		targetStatus      string
		raiseOnBlocked    bool
	)

	fs := gnuflag.NewFlagSet("juju-wait-for", gnuflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: juju-wait-for [options] <application> ...\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&address, "address", "localhost:17070", "controller api address")
	fs.StringVar(&modelUUID, "model-uuid", "", "uuid of the model to watch")
	fs.StringVar(&username, "username", "admin", "controller user name")
	fs.StringVar(&password, "password", "", "controller password")
	fs.StringVar(&caCertFile, "cacert", "", "path to the controller CA certificate")
	fs.DurationVar(&timeout, "timeout", 10*time.Minute, "how long to wait before giving up")
	fs.DurationVar(&idlePeriod, "idle-period", 15*time.Second, "how long agents must stay idle")
	fs.IntVar(&waitForUnits, "wait-for-units", 1, "minimum ready units per application")
	fs.IntVar(&waitForExactUnits, "wait-for-exact-units", -1, "exact ready units per application")
	fs.StringVar(&targetStatus, "status", "", "workload status units must report, e.g. active")
	fs.BoolVar(&raiseOnBlocked, "raise-on-blocked", false, "fail when a workload or application is blocked")
	if err := fs.Parse(true, args); err != nil {
		if err == gnuflag.ErrHelp {
			return 0
		}
		return 2
	}

	apps := fs.Args()
	if len(apps) == 0 {
		fmt.Fprintln(os.Stderr, "juju-wait-for: no applications specified")
		fs.Usage()
		return 2
	}

	var exactUnits *int
	if waitForExactUnits >= 0 {
		exactUnits = &waitForExactUnits
	}

	if err := run(runArgs{
		info: api.Info{
			Addrs:     []string{address},
			ModelUUID: modelUUID,
			Username:  username,
			Password:  password,
		},
		caCertFile:        caCertFile,
		apps:              apps,
		waitForUnits:      waitForUnits,
		waitForExactUnits: exactUnits,
		idlePeriod:        idlePeriod,
		timeout:           timeout,
		targetStatus:      status.Status(targetStatus),
		raiseOnBlocked:    raiseOnBlocked,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "juju-wait-for: %v\n", err)
		return 1
	}
	fmt.Printf("applications %v are ready\n", apps)
	return 0
}

type runArgs struct {
	info              api.Info
	caCertFile        string
	apps              []string
	waitForUnits      int
	waitForExactUnits *int
	idlePeriod        time.Duration
	timeout           time.Duration
	targetStatus      status.Status
	raiseOnBlocked    bool
}

func run(args runArgs) error {
	if args.caCertFile != "" {
		pem, err := os.ReadFile(args.caCertFile)
		if err != nil {
			return errors.Annotate(err, "reading CA certificate")
		}
		args.info.CACert = string(pem)
	}

	conn, err := api.Dial(args.info, api.DefaultDialOpts())
	if err != nil {
		return errors.Trace(err)
	}
	defer func() { _ = conn.Close() }()

	return errors.Trace(wait.Wait(context.Background(), wait.WaitConfig{
		Source:            api.NewClient(conn),
		Apps:              args.apps,
		WaitForUnits:      args.waitForUnits,
		WaitForExactUnits: args.waitForExactUnits,
		IdlePeriod:        args.idlePeriod,
		WorkloadStatus:    args.targetStatus,
		RaiseOnError:      true,
		RaiseOnBlocked:    args.raiseOnBlocked,
		Timeout:           args.timeout,
	}))
}
