/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// errNotFound is returned by lookups that miss. Callers branch on it
// with errors.Is to map the miss to a 404 or a silent skip.
var errNotFound = errors.New("not found")

type Player struct {
	ID    int64
	Name  string
	Score int64
}

type Question struct {
	ID      int64
	Section string
	Text    string
}

// AnswerRow is the joined player/question/answer view shown on the
// operator panel.
type AnswerRow struct {
	Player   string
	Question string
	Answer   string
	Time     string
}

// Store is the sqlite-backed ledger for players, questions, and answers.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS players (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    score INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS questions (
    id INTEGER PRIMARY KEY,
    section TEXT NOT NULL,
    text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS answers (
    id INTEGER PRIMARY KEY,
    player_id INTEGER NOT NULL REFERENCES players(id),
    question_id INTEGER NOT NULL REFERENCES questions(id),
    answer_text TEXT NOT NULL,
    answered_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_section ON questions(section);
CREATE INDEX IF NOT EXISTS idx_answers_player_id ON answers(player_id);
`

// OpenStore opens (or creates) the sqlite database at path and ensures
// the schema exists. Safe to call against an existing database.
func OpenStore(path string) (*Store, error) {
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) PlayerByName(ctx context.Context, name string) (Player, error) {
	var p Player
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, score FROM players WHERE name = ?`, name,
	).Scan(&p.ID, &p.Name, &p.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, fmt.Errorf("player %q: %w", name, errNotFound)
	}
	if err != nil {
		return Player{}, fmt.Errorf("lookup player: %w", err)
	}
	return p, nil
}

func (s *Store) CreatePlayer(ctx context.Context, name string) (Player, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO players (name, score) VALUES (?, 0)`, name)
	if err != nil {
		return Player{}, fmt.Errorf("create player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Player{}, fmt.Errorf("create player: %w", err)
	}
	return Player{ID: id, Name: name, Score: 0}, nil
}

// GetOrCreatePlayer resolves name to a player row, creating it with a
// zero score on first connection.
func (s *Store) GetOrCreatePlayer(ctx context.Context, name string) (Player, error) {
	p, err := s.PlayerByName(ctx, name)
	if errors.Is(err, errNotFound) {
		return s.CreatePlayer(ctx, name)
	}
	return p, err
}

func (s *Store) UpdateScore(ctx context.Context, id int64, score int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE players SET score = ? WHERE id = ?`, score, id); err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	return nil
}

// AllPlayers returns every player in insertion order.
func (s *Store) AllPlayers(ctx context.Context) ([]Player, error) {
	return s.queryPlayers(ctx, `SELECT id, name, score FROM players ORDER BY id`)
}

// PlayersByScore returns every player ordered by descending score, ties
// broken by insertion order.
func (s *Store) PlayersByScore(ctx context.Context) ([]Player, error) {
	return s.queryPlayers(ctx, `SELECT id, name, score FROM players ORDER BY score DESC, id`)
}

func (s *Store) queryPlayers(ctx context.Context, query string) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Score); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// AllQuestions returns every question in id order, which preserves the
// order questions were loaded in.
func (s *Store) AllQuestions(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, section, text FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Section, &q.Text); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *Store) QuestionByText(ctx context.Context, text string) (Question, error) {
	var q Question
	err := s.db.QueryRowContext(ctx,
		`SELECT id, section, text FROM questions WHERE text = ? LIMIT 1`, text,
	).Scan(&q.ID, &q.Section, &q.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, fmt.Errorf("question: %w", errNotFound)
	}
	if err != nil {
		return Question{}, fmt.Errorf("lookup question: %w", err)
	}
	return q, nil
}

func (s *Store) CreateQuestions(ctx context.Context, questions []Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create questions: %w", err)
	}

	for _, q := range questions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (section, text) VALUES (?, ?)`, q.Section, q.Text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("create questions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create questions: %w", err)
	}
	return nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("question %d: %w", id, errNotFound)
	}
	return nil
}

func (s *Store) RecordAnswer(ctx context.Context, playerID, questionID int64, text, answeredAt string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (player_id, question_id, answer_text, answered_at) VALUES (?, ?, ?, ?)`,
		playerID, questionID, text, answeredAt); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

// AllAnswersJoined returns the answer history joined against player and
// question, in submission order.
func (s *Store) AllAnswersJoined(ctx context.Context) ([]AnswerRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, q.text, a.answer_text, a.answered_at
		FROM answers a
		JOIN players p ON p.id = a.player_id
		JOIN questions q ON q.id = a.question_id
		ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []AnswerRow
	for rows.Next() {
		var a AnswerRow
		if err := rows.Scan(&a.Player, &a.Question, &a.Answer, &a.Time); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}

// PurgeGameData deletes all answers and players in one transaction.
// Questions are left intact for the next run.
func (s *Store) PurgeGameData(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("purge game data: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM answers`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("purge answers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("purge players: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("purge game data: %w", err)
	}
	return nil
}
