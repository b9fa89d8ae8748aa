package main

import (
	"fmt"

	"github.com/luizguil99/prismium/src/config"
	"github.com/luizguil99/prismium/src/storage"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Run pending migrations"`
	Status MigrateStatusCmd `cmd:"" help:"Show migration status"`
}

// MigrateUpCmd runs pending migrations
type MigrateUpCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate up command
func (c *MigrateUpCmd) Run(cli *CLI) error {
	db, err := openDatabase(cli, c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("Database ready: %s (migrations applied on open)\n", db.Path())
	return nil
}

// MigrateStatusCmd shows migration status
type MigrateStatusCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate status command
func (c *MigrateStatusCmd) Run(cli *CLI) error {
	db, err := openDatabase(cli, c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	versions, err := db.AppliedMigrations()
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Printf("applied: %d\n", v)
	}
	return nil
}

func openDatabase(cli *CLI, override string) (*storage.DB, error) {
	dbPath := override
	if dbPath == "" {
		cfg, err := config.Load(cli.Config)
		if err != nil {
			return nil, err
		}
		dbPath = cfg.Storage.DatabasePath
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
