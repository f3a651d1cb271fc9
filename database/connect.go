package database

import (
	"log"
	"os"
)

// Connect picks a store backend from the environment:
//
//	DATABASE_URL set    -> PostgreSQL
//	STORE=memory        -> in-memory (nothing survives a restart)
//	otherwise           -> sqlite file at SQLITE_PATH (default ./whiteboard.db)
func Connect() (Store, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		log.Println("Using PostgreSQL segment store")
		return ConnectPostgres(url)
	}
	if os.Getenv("STORE") == "memory" {
		log.Println("Using in-memory segment store")
		return NewMemoryStore(), nil
	}
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "./whiteboard.db"
	}
	log.Printf("Using sqlite segment store at %s", path)
	return ConnectSQLite(path)
}
