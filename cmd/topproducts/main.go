package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"topproducts/internal/config"
	"topproducts/internal/db"
	"topproducts/internal/identity"
	"topproducts/internal/logger"
	"topproducts/internal/topfive"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.LookupEnv); err != nil {
		logger.NewStderr().Error("topproducts", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, lookup config.LookupFunc) error {
	fs := flag.NewFlagSet("topproducts", flag.ContinueOnError)
	fs.SetOutput(stdout)

	var (
		show     = fs.Bool("show", false, "Print current config summary and exit")
		testConn = fs.Bool("test-connection", false, "Test DB connection using the environment settings")
		once     = fs.Bool("once", false, "Run the TopFiveProducts query once and print the JSON result")
	)

	var (
		apiListen    optionalString
		debug        optionalBool
		logFile      optionalString
		resource     optionalString
		pingTimeout  optionalDuration
		queryTimeout optionalDuration
	)

	fs.Var(&apiListen, "api-listen", "API listen address (host:port)")
	fs.Var(&debug, "debug", "Enable debug logging (true/false)")
	fs.Var(&logFile, "log-file", "Log file path; empty logs to stderr")
	fs.Var(&resource, "resource", "Managed identity token resource URI")
	fs.Var(&pingTimeout, "ping-timeout", "DB connect timeout (e.g. 5s)")
	fs.Var(&queryTimeout, "query-timeout", "Query timeout (e.g. 8s)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return err
	}

	changed := false

	if apiListen.set {
		cfg.APIListen = strings.TrimSpace(apiListen.value)
		changed = true
	}
	if debug.set {
		cfg.Debug = debug.value
		changed = true
	}
	if logFile.set {
		cfg.LogFile = strings.TrimSpace(logFile.value)
		changed = true
	}
	if resource.set {
		cfg.Identity.Resource = strings.TrimSpace(resource.value)
		changed = true
	}
	if pingTimeout.set {
		cfg.DB.PingTimeout = pingTimeout.value
		changed = true
	}
	if queryTimeout.set {
		cfg.DB.QueryTimeout = queryTimeout.value
		changed = true
	}

	if changed {
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Config saved.")
	}

	if *show {
		printConfigSummary(stdout, cfg, lookup)
	}

	tokens := &identity.Lazy{}
	if id, ok := lookup(config.EnvManagedIdentityID); ok {
		tokens.ClientID = id
	}

	if *testConn {
		settings, err := config.ResolveSettings(lookup)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		if err := db.TestConnection(ctx, settings, tokens, db.OptionsFromConfig(cfg)); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Connection OK.")
	}

	if *once {
		svc := topfive.New(topfive.Deps{
			Lookup:       lookup,
			Tokens:       tokens,
			DB:           db.OptionsFromConfig(cfg),
			QueryTimeout: cfg.DB.QueryTimeout,
			Logger:       logger.NewStderr(),
		})
		result, err := svc.Run(context.Background())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	}

	if !*show && !changed && !*testConn && !*once {
		fmt.Fprintln(stdout, "No changes requested. Use --show, --once or set flags. Example:")
		fmt.Fprintln(stdout, "  topproducts --api-listen 127.0.0.1:8080 --query-timeout 10s")
	}

	return nil
}

func printConfigSummary(w io.Writer, cfg config.Config, lookup config.LookupFunc) {
	fmt.Fprintln(w, "Config summary:")
	fmt.Fprintf(w, "  API Listen: %s\n", cfg.ListenAddr(lookup))
	fmt.Fprintf(w, "  Debug: %v\n", cfg.Debug)
	if cfg.LogFile == "" {
		fmt.Fprintln(w, "  Log File: (stderr)")
	} else {
		fmt.Fprintf(w, "  Log File: %s\n", cfg.LogFile)
	}
	fmt.Fprintf(w, "  DB Ping Timeout: %s\n", cfg.DB.PingTimeout)
	fmt.Fprintf(w, "  DB Query Timeout: %s\n", cfg.DB.QueryTimeout)
	fmt.Fprintf(w, "  Token Resource: %s\n", cfg.Identity.Resource)

	connStr, _ := lookup(config.EnvConnectionString)
	if strings.TrimSpace(connStr) == "" {
		fmt.Fprintf(w, "  %s: (not set)\n", config.EnvConnectionString)
	} else {
		fmt.Fprintf(w, "  %s: (set, len=%d)\n", config.EnvConnectionString, len(connStr))
	}
	flagVal, _ := lookup(config.EnvUseManagedIdentity)
	fmt.Fprintf(w, "  Managed Identity: %v\n", flagVal == "true")
}
