package main

import (
	"context"
	"os"

	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/logger"
	"github.com/careermate/messenger/store"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const dbDriver = "postgres"

var schema = `
CREATE TABLE IF NOT EXISTS assessment_result (
	id TEXT PRIMARY KEY,
	skill TEXT NOT NULL,
	question_count INTEGER NOT NULL,
	score INTEGER NOT NULL,
	archived_at TIMESTAMP NOT NULL DEFAULT now()
);`

// ARCHIVE_DSN=... go run cmd/archive/main.go
//
// copies submitted assessments out of Firestore into Postgres for reporting
func main() {
	ctx := context.Background()
	lg := logger.FromContext(ctx, "archive")

	st, err := store.NewFirestore(ctx)
	if err != nil {
		lg.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	db, err := sqlx.Connect(dbDriver, os.Getenv("ARCHIVE_DSN"))
	if err != nil {
		lg.Fatalf("connecting to postgres: %v", err)
	}
	defer db.Close()
	db.MustExec(schema)

	docs, err := st.Documents(ctx, store.Query{Collection: contract.AssessmentCollection})
	if err != nil {
		lg.Fatalf("listing assessments: %v", err)
	}

	archived := 0
	for _, doc := range docs {
		var a contract.Assessment
		if err := doc.DataTo(&a); err != nil {
			lg.Printf("skipping %s: %v", doc.ID(), err)
			continue
		}
		if a.Response == nil { // not submitted yet
			continue
		}
		_, err := db.ExecContext(ctx,
			`INSERT INTO assessment_result (id, skill, question_count, score)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET score = EXCLUDED.score`,
			doc.ID(), a.Skill, len(a.Questions), a.Score)
		if err != nil {
			lg.Printf("archiving %s: %v", doc.ID(), err)
			continue
		}
		archived++
	}
	lg.Printf("archived %d assessments", archived)
}
