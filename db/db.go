// Package db stores the proxy's submission history in a SQL database.
package db

import (
	"database/sql"
	"time"
)

// A Submission records one transaction sent to the upstream endpoint through
// trp.submit.
type Submission struct {
	Tx        string
	Encoding  string
	Witnesses int
	Time      int64
}

// DB is a storage adapter (built on top of a SQL database) that stores the
// submission history.
type DB interface {
	// Initialise the database. Init should be called once the database object
	// is created.
	Init() error

	// InsertSubmission inserts a submission into the database.
	InsertSubmission(submission Submission) error

	// Submissions returns submissions with the given pagination options,
	// newest first.
	Submissions(offset, limit int) ([]Submission, error)

	// Prune deletes submissions which have expired.
	Prune(expiry time.Duration) error
}

type database struct {
	db *sql.DB
}

// New creates a new DB instance.
func New(db *sql.DB) DB {
	return database{
		db: db,
	}
}

// Init creates the table for storing submissions if it does not already
// exist. Future calls will not return an error.
func (db database) Init() error {
	script := `CREATE TABLE IF NOT EXISTS submissions (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		tx           VARCHAR NOT NULL,
		encoding     VARCHAR(16),
		witnesses    INT,
		created_time INT
	);`
	_, err := db.db.Exec(script)
	return err
}

// InsertSubmission implements the `DB` interface.
func (db database) InsertSubmission(submission Submission) error {
	script := `INSERT INTO submissions (tx, encoding, witnesses, created_time) VALUES ($1, $2, $3, $4);`
	_, err := db.db.Exec(script, submission.Tx, submission.Encoding, submission.Witnesses, submission.Time)
	return err
}

// Submissions implements the `DB` interface.
func (db database) Submissions(offset, limit int) ([]Submission, error) {
	submissions := make([]Submission, 0, limit)
	rows, err := db.db.Query(`SELECT tx, encoding, witnesses, created_time FROM submissions ORDER BY created_time DESC LIMIT $1 OFFSET $2;`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var submission Submission
		if err := rows.Scan(&submission.Tx, &submission.Encoding, &submission.Witnesses, &submission.Time); err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, rows.Err()
}

// Prune implements the `DB` interface.
func (db database) Prune(expiry time.Duration) error {
	_, err := db.db.Exec(`DELETE FROM submissions WHERE created_time < $1;`, time.Now().Add(-expiry).Unix())
	return err
}
