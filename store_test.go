/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenStore(filepath.Join(t.TempDir(), "quizbox.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func seedQuestions(t *testing.T, store *Store, questions []Question) {
	t.Helper()

	if err := store.CreateQuestions(context.Background(), questions); err != nil {
		t.Fatalf("Failed to seed questions: %v", err)
	}
}

func TestQuestionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seedQuestions(t, store, []Question{
		{Section: "History", Text: "q1"},
		{Section: "History", Text: "q2"},
		{Section: "Science", Text: "q3"},
	})

	questions, err := store.AllQuestions(ctx)
	if err != nil {
		t.Fatalf("AllQuestions failed: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if questions[0].Text != "q1" || questions[2].Text != "q3" {
		t.Errorf("questions not in insertion order: %+v", questions)
	}

	q, err := store.QuestionByText(ctx, "q2")
	if err != nil {
		t.Fatalf("QuestionByText failed: %v", err)
	}
	if q.Section != "History" {
		t.Errorf("expected section History, got %q", q.Section)
	}

	if _, err := store.QuestionByText(ctx, "nope"); !errors.Is(err, errNotFound) {
		t.Errorf("expected errNotFound for missing question, got %v", err)
	}

	if err := store.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("DeleteQuestion failed: %v", err)
	}
	if err := store.DeleteQuestion(ctx, q.ID); !errors.Is(err, errNotFound) {
		t.Errorf("expected errNotFound deleting twice, got %v", err)
	}

	questions, err = store.AllQuestions(ctx)
	if err != nil {
		t.Fatalf("AllQuestions failed: %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("expected 2 questions after delete, got %d", len(questions))
	}
}

func TestGetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.GetOrCreatePlayer(ctx, "Alice")
	if err != nil {
		t.Fatalf("GetOrCreatePlayer failed: %v", err)
	}
	if created.Score != 0 {
		t.Errorf("new player should start at 0, got %d", created.Score)
	}

	again, err := store.GetOrCreatePlayer(ctx, "Alice")
	if err != nil {
		t.Fatalf("GetOrCreatePlayer failed on existing player: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("expected same row on reconnect, got %d and %d", created.ID, again.ID)
	}

	if _, err := store.PlayerByName(ctx, "Bob"); !errors.Is(err, errNotFound) {
		t.Errorf("expected errNotFound for unknown player, got %v", err)
	}
}

func TestPlayersByScoreOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if _, err := store.CreatePlayer(ctx, name); err != nil {
			t.Fatalf("CreatePlayer failed: %v", err)
		}
	}

	bob, err := store.PlayerByName(ctx, "Bob")
	if err != nil {
		t.Fatalf("PlayerByName failed: %v", err)
	}
	if err := store.UpdateScore(ctx, bob.ID, 5); err != nil {
		t.Fatalf("UpdateScore failed: %v", err)
	}

	players, err := store.PlayersByScore(ctx)
	if err != nil {
		t.Fatalf("PlayersByScore failed: %v", err)
	}

	want := []string{"Bob", "Alice", "Carol"}
	for i, name := range want {
		if players[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, players[i].Name)
		}
	}
}

func TestRecordAndJoinAnswers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seedQuestions(t, store, []Question{{Section: "History", Text: "q1"}})
	question, err := store.QuestionByText(ctx, "q1")
	if err != nil {
		t.Fatalf("QuestionByText failed: %v", err)
	}

	alice, err := store.CreatePlayer(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}

	if err := store.RecordAnswer(ctx, alice.ID, question.ID, "42", "12:30:45"); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	answers, err := store.AllAnswersJoined(ctx)
	if err != nil {
		t.Fatalf("AllAnswersJoined failed: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("expected 1 answer row, got %d", len(answers))
	}

	row := answers[0]
	if row.Player != "Alice" || row.Question != "q1" || row.Answer != "42" || row.Time != "12:30:45" {
		t.Errorf("unexpected answer row: %+v", row)
	}
}

func TestPurgeGameData(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seedQuestions(t, store, []Question{{Section: "History", Text: "q1"}})
	question, err := store.QuestionByText(ctx, "q1")
	if err != nil {
		t.Fatalf("QuestionByText failed: %v", err)
	}

	alice, err := store.CreatePlayer(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if err := store.RecordAnswer(ctx, alice.ID, question.ID, "42", "12:30:45"); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	if err := store.PurgeGameData(ctx); err != nil {
		t.Fatalf("PurgeGameData failed: %v", err)
	}

	players, err := store.AllPlayers(ctx)
	if err != nil {
		t.Fatalf("AllPlayers failed: %v", err)
	}
	if len(players) != 0 {
		t.Errorf("expected no players after purge, got %d", len(players))
	}

	answers, err := store.AllAnswersJoined(ctx)
	if err != nil {
		t.Fatalf("AllAnswersJoined failed: %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("expected no answers after purge, got %d", len(answers))
	}

	questions, err := store.AllQuestions(ctx)
	if err != nil {
		t.Fatalf("AllQuestions failed: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("purge should leave questions intact, got %d", len(questions))
	}
}
