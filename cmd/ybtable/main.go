// ybtable creates tables and indexes in the catalog and inspects it.
//
// # Commands
//
//	ybtable create -f users.yaml       Create the table described by a file
//	ybtable tables                     List tables (local master)
//	ybtable tservers                   List tablet servers
//	ybtable register-tserver           Record a tablet server heartbeat
//	ybtable mark-running -id <id>      Mark a table ready (DynamoDB master)
//
// Settings are read from ybtable.yaml, searched for from the current
// directory upwards, or from the file given with -config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	// Remove the subcommand from args so flag parsing works
	os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "create":
		err = runCreate(ctx, os.Args[1:])
	case "tables":
		err = runTables(ctx, os.Args[1:])
	case "tservers":
		err = runTServers(ctx, os.Args[1:])
	case "register-tserver":
		err = runRegisterTServer(ctx, os.Args[1:])
	case "mark-running":
		err = runMarkRunning(ctx, os.Args[1:])
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Printf("ybtable version %s\n", version)
		return
	default:
		fmt.Fprintf(os.Stderr, "ybtable: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ybtable %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ybtable - table creation against the catalog

Usage:
  ybtable <command> [flags]

Commands:
  create            Create a table or index from a YAML file
  tables            List tables (local master only)
  tservers          List tablet servers
  register-tserver  Register a tablet server or refresh its heartbeat
  mark-running      Mark a table ready (DynamoDB master only)

Examples:
  # Create a table, waiting until it is ready:
  ybtable create -f users.yaml

  # Create with an explicit tablet count and no wait:
  ybtable create -f users.yaml -tablets 8 -no-wait

Configuration (optional):
  Create ybtable.yaml:

    master:
      kind: local        # or dynamodb
      local:
        dataDir: ./.ybtable
    client:
      defaultAdminOperationTimeout: 60s
    log:
      level: info

Run 'ybtable <command> --help' for more information on a command.`)
}
