package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/fastest963/yugabyte-db/client"
	"github.com/fastest963/yugabyte-db/config"
	"github.com/fastest963/yugabyte-db/master"
)

type env struct {
	cfg     config.Config
	logger  *slog.Logger
	backend *config.Backend
}

func setup(ctx context.Context, configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		return nil, err
	}
	backend, err := config.OpenMaster(ctx, cfg.Master, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s master: %w", cfg.Master.Kind, err)
	}
	return &env{cfg: cfg, logger: logger, backend: backend}, nil
}

func (e *env) Close() {
	if err := e.backend.Close(); err != nil {
		e.logger.Warn("close master", "error", err)
	}
}

func runCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)

	var (
		file       = fs.String("f", "", "YAML file describing the table (required)")
		configPath = fs.String("config", "", "config file (default: search for ybtable.yaml)")
		noWait     = fs.Bool("no-wait", false, "return once the master accepted the request")
		timeout    = fs.Duration("timeout", 0, "overall timeout (default: client.defaultAdminOperationTimeout)")
		tablets    = fs.Int("tablets", 0, "number of tablets (default: from file, schema or cluster size)")
	)

	fs.Usage = func() {
		fmt.Println(`ybtable create - Create a table or index from a YAML file

Usage:
  ybtable create -f <file> [flags]

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("-f is required")
	}

	tf, err := loadTableFile(*file)
	if err != nil {
		return err
	}

	e, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	c := client.New(e.backend, append(e.cfg.ClientOptions(), client.WithLogger(e.logger))...)
	tc := c.NewTableCreator()
	if err := tf.Apply(tc); err != nil {
		return fmt.Errorf("%s: %w", *file, err)
	}
	if *tablets > 0 {
		tc.NumTablets(int32(*tablets))
	}
	if *timeout > 0 {
		tc.Timeout(*timeout)
	}
	if *noWait {
		tc.Wait(false)
	}
	if tf.CreatorRole == "" && e.backend.DynamoDB != nil {
		role, err := callerRole(ctx, e.backend.AWS)
		if err != nil {
			e.logger.Warn("could not resolve creator role", "error", err)
		} else {
			tc.CreatorRoleName(role)
		}
	}

	id, err := tc.Create(ctx)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

// callerRole names the AWS principal running the command.
func callerRole(ctx context.Context, cfg aws.Config) (string, error) {
	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("get caller identity: %w", err)
	}
	return roleFromARN(aws.ToString(out.Arn)), nil
}

// roleFromARN extracts the role or user name from an IAM or STS ARN:
//
//	arn:aws:sts::123456789012:assumed-role/deployer/session -> deployer
//	arn:aws:iam::123456789012:user/alice                    -> alice
func roleFromARN(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 6 {
		return arn
	}
	resource := strings.Split(parts[5], "/")
	switch {
	case len(resource) >= 2 && resource[0] == "assumed-role":
		return resource[1]
	case len(resource) >= 2:
		return resource[len(resource)-1]
	}
	return parts[5]
}

func runTables(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tables", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default: search for ybtable.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()
	if e.backend.Local == nil {
		return fmt.Errorf("listing tables is only supported by the %s master", config.MasterLocal)
	}

	tables, err := e.backend.Local.ListTables(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAMESPACE\tNAME\tTYPE\tTABLETS\tSTATE\tINDEXED TABLE")
	for _, t := range tables {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n", t.ID, t.Namespace, t.Name, t.Type.Name(), t.NumTablets, t.State, t.IndexedID)
	}
	return w.Flush()
}

func runTServers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tservers", flag.ExitOnError)
	var (
		configPath  = fs.String("config", "", "config file (default: search for ybtable.yaml)")
		primaryOnly = fs.Bool("primary", false, "exclude read replicas")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	resp, err := e.backend.ListTabletServers(ctx, &master.ListTabletServersRequest{PrimaryOnly: *primaryOnly})
	if err != nil {
		return err
	}
	return printTServers(os.Stdout, resp.Servers, time.Now())
}

func printTServers(out io.Writer, servers []master.TabletServerPB, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tHOST\tALIVE\tREAD REPLICA\tLAST HEARTBEAT")
	for _, ts := range servers {
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s ago\n", ts.UUID, ts.Host, ts.Alive, ts.ReadReplica, now.Sub(ts.LastHeartbeat).Truncate(time.Second))
	}
	return w.Flush()
}

func runRegisterTServer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register-tserver", flag.ExitOnError)
	var (
		configPath  = fs.String("config", "", "config file (default: search for ybtable.yaml)")
		id          = fs.String("uuid", "", "tablet server uuid (default: generate one)")
		host        = fs.String("host", "", "host:port of the tablet server (required)")
		readReplica = fs.Bool("read-replica", false, "register as a read replica")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *host == "" {
		return errors.New("-host is required")
	}

	e, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	uuid, err := e.backend.Heartbeat(ctx, *id, *host, *readReplica)
	if err != nil {
		return err
	}
	fmt.Println(uuid)
	return nil
}

func runMarkRunning(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mark-running", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "config file (default: search for ybtable.yaml)")
		id         = fs.String("id", "", "table id (required)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	e, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()
	if e.backend.DynamoDB == nil {
		return fmt.Errorf("mark-running is only supported by the %s master", config.MasterDynamoDB)
	}
	return e.backend.DynamoDB.MarkRunning(ctx, *id)
}
