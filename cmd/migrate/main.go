package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/angelmondragon/mineralmarket-backend/pkg/config"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
	"github.com/angelmondragon/mineralmarket-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

const usage = `usage: migrate [-dir DIR] [-allow-prod] <command> [arg]

commands:
  up                 apply all pending migrations
  down               roll back the newest migration
  status             print applied and pending migrations
  validate           check the migration set without a database
  create <name>      write a new empty migration
  to <version>       migrate up or down to YYYYMMDDHHMMSS
`

type command struct {
	name    string
	arg     string
	version int64
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, fmt.Errorf("missing command")
	}
	c := command{name: args[0]}
	switch c.name {
	case "up", "down", "status", "validate":
		if len(args) != 1 {
			return command{}, fmt.Errorf("%s takes no arguments", c.name)
		}
	case "create":
		if len(args) != 2 {
			return command{}, fmt.Errorf("create needs exactly one <name>")
		}
		c.arg = args[1]
	case "to":
		if len(args) != 2 {
			return command{}, fmt.Errorf("to needs exactly one <version>")
		}
		v, err := migrate.ParseVersion(args[1])
		if err != nil {
			return command{}, err
		}
		c.arg, c.version = args[1], v
	default:
		return command{}, fmt.Errorf("unknown command %q", c.name)
	}
	return c, nil
}

func (c command) needsDB() bool {
	return c.name != "create" && c.name != "validate"
}

// checkEnv blocks rollbacks against production unless explicitly allowed.
func checkEnv(app config.AppConfig, c command, allowProd bool) error {
	if !app.IsProd() || allowProd {
		return nil
	}
	if c.name == "down" || c.name == "to" {
		return fmt.Errorf("%s against %s requires -allow-prod", c.name, app.Env)
	}
	return nil
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	allowProd := flag.Bool("allow-prod", false, "permit down/to in the prod environment")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": cmd.name,
		"dir": *dir,
	})

	if err := checkEnv(cfg.App, cmd, *allowProd); err != nil {
		fail(ctx, logg, err)
	}

	if !cmd.needsDB() {
		runOffline(ctx, logg, cmd, *dir)
		return
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	if cmd.name == "to" {
		err = migrate.To(ctx, sqlDB, *dir, cmd.version)
	} else {
		err = migrate.Run(ctx, sqlDB, *dir, cmd.name)
	}
	if err != nil {
		dbClient.Close()
		fail(ctx, logg, err)
	}
	logg.Info(ctx, "migrate finished")
}

func runOffline(ctx context.Context, logg *logger.Logger, cmd command, dir string) {
	if cmd.name == "create" {
		path, err := migrate.Create(dir, cmd.arg, time.Now())
		if err != nil {
			fail(ctx, logg, err)
		}
		fmt.Println("created", path)
		return
	}
	if err := migrate.ValidateDir(dir); err != nil {
		fail(ctx, logg, err)
	}
	fmt.Println("migrations ok")
}

func fail(ctx context.Context, logg *logger.Logger, err error) {
	logg.Error(ctx, "migrate failed", err)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
