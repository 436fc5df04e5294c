// Command allowlist loads a CSV of allow-listed members into the database.
//
//	allowlist -f members.csv [-d postgres://...]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/boardingpass/internal/flagx"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
	"github.com/dmitrijs2005/boardingpass/internal/server/config"
	"github.com/dmitrijs2005/boardingpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/boardingpass/internal/server/services"
)

func main() {
	cfg := config.LoadConfig()

	var path string
	fs := flag.NewFlagSet("allowlist", flag.ContinueOnError)
	fs.StringVar(&path, "f", "", "CSV file with twitter,discord,project rows")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-f"})); err != nil || path == "" {
		fmt.Fprintln(os.Stderr, "usage: allowlist -f members.csv [-d dsn]")
		os.Exit(2)
	}

	ctx := context.Background()
	logger := logging.NewZerologLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	if err := run(ctx, cfg.DatabaseDSN, path); err != nil {
		logger.Error(ctx, "import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := services.ParseMembersCSV(f)
	if err != nil {
		return err
	}

	m := repomanager.NewPostgresRepositoryManager()
	db, err := repomanager.OpenDatabase(ctx, dsn, m)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := services.ImportMembers(ctx, db, m, rows)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d rows: %d created, %d updated\n", len(rows), stats.Created, stats.Updated)
	return nil
}
