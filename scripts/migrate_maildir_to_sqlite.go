// +build ignore

package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	courierdb "github.com/example/courier/internal/db"
)

// Imports an existing maildir tree into the sqlite message store so a
// deployment can switch store backends without losing history.
//
// Usage: go run scripts/migrate_maildir_to_sqlite.go -maildir ~/.courier/maildir -db ~/.courier/courier.db

func main() {
	maildirRoot := flag.String("maildir", "", "Maildir root containing queue directories")
	dbPath := flag.String("db", "", "Target sqlite database path")
	dryRun := flag.Bool("dry-run", false, "Preview migration without executing")
	flag.Parse()

	if *maildirRoot == "" || *dbPath == "" {
		fmt.Fprintln(os.Stderr, "Both -maildir and -db are required")
		os.Exit(1)
	}

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.Exec(courierdb.GetSchemaSQL()); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing schema: %v\n", err)
		os.Exit(1)
	}

	queues, err := findQueues(*maildirRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning maildir: %v\n", err)
		os.Exit(1)
	}

	total := 0
	for _, queue := range queues {
		n, err := migrateQueue(db, *maildirRoot, queue, *dryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error migrating %s: %v\n", queue, err)
			os.Exit(1)
		}
		fmt.Printf("%s: %d message(s)\n", queue, n)
		total += n
	}

	if *dryRun {
		fmt.Printf("\nDry run: %d message(s) would be migrated\n", total)
	} else {
		fmt.Printf("\nMigrated %d message(s)\n", total)
	}
}

// findQueues locates every directory under root that has a new/ or cur/
// subdirectory. Panel queues live one level down (panels/<name>).
func findQueues(root string) ([]string, error) {
	var queues []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return err
		}
		base := filepath.Base(path)
		if base != "new" && base != "cur" {
			return nil
		}
		queue, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		for _, q := range queues {
			if q == queue {
				return nil
			}
		}
		queues = append(queues, queue)
		return nil
	})
	return queues, err
}

func migrateQueue(db *sql.DB, root, queue string, dryRun bool) (int, error) {
	count := 0
	for _, sub := range []string{"new", "cur"} {
		dir := filepath.Join(root, queue, sub)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return count, err
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			// Strip maildir flag suffixes so keys stay stable across backends.
			key := entry.Name()
			if i := strings.Index(key, ":"); i >= 0 {
				key = key[:i]
			}

			if dryRun {
				count++
				continue
			}

			raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				return count, err
			}

			tx, err := db.Begin()
			if err != nil {
				return count, err
			}
			if _, err := tx.Exec(`INSERT OR IGNORE INTO queues (queue_id) VALUES (?)`, queue); err != nil {
				tx.Rollback()
				return count, err
			}
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO messages (queue_id, key, raw, created_at) VALUES (?, ?, ?, ?)`,
				queue, key, raw, time.Now().UTC().Format(time.RFC3339),
			); err != nil {
				tx.Rollback()
				return count, err
			}
			if err := tx.Commit(); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
