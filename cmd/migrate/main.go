// Command migrate manages the exchange schema and checks the unique keys
// that keep concurrent chat and rating writes consistent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"interu/internal/config"
	"interu/internal/database"

	"gorm.io/gorm"
)

type command struct {
	help string
	run  func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"up":     {"apply pending SQL migrations", migrateUp},
	"auto":   {"run GORM automigrate for every model", migrateAuto},
	"status": {"show schema mode, pending migrations and unique keys", schemaStatus},
	"down":   {"roll back one migration: down <version>", migrateDown},
	"verify": {"fail when a unique key guarding chats or ratings is missing", verifyGuards},
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		log.Fatal("missing command")
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(flag.Arg(0)))]
	if !ok {
		usage()
		log.Fatalf("unknown command %q", flag.Arg(0))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	if err := cmd.run(context.Background(), db, cfg, flag.Args()[1:]); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("Usage: migrate <command> [args]")
	for _, name := range names {
		fmt.Printf("  %-7s %s\n", name, commands[name].help)
	}
}

func migrateUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	log.Println("sql migrations applied")
	return verifyGuards(ctx, db, nil, nil)
}

func migrateAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	log.Println("automigrate applied")
	return verifyGuards(ctx, db, nil, nil)
}

func schemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	fmt.Printf("mode: %s (env %s)\n", status.Mode, status.Environment)
	fmt.Printf("sql migrations: %t, automigrate: %t\n", status.WillRunSQL, status.WillRunAutoMigrate)
	fmt.Printf("applied versions: %v\n", status.AppliedVersions)
	for _, m := range status.PendingMigrations {
		fmt.Printf("pending: %s\n", m.String())
	}

	missing := make(map[string]bool)
	for _, g := range database.MissingGuards(db) {
		missing[g.Index] = true
	}
	for _, g := range database.UniqueGuards {
		state := "present"
		if missing[g.Index] {
			state = "MISSING"
		}
		fmt.Printf("unique key %-34s %-8s %s\n", g.Columns, state, g.Purpose)
	}
	return nil
}

func migrateDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: migrate down <version>")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	log.Printf("rolled back migration %06d", version)
	return nil
}

func verifyGuards(_ context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	missing := database.MissingGuards(db)
	if len(missing) == 0 {
		log.Printf("all %d unique keys present", len(database.UniqueGuards))
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, g := range missing {
		names = append(names, g.Columns)
	}
	return fmt.Errorf("missing unique keys: %s", strings.Join(names, ", "))
}
