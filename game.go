/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

type phase int

const (
	gameNotStarted phase = iota
	gameInProgress
	gameFinished
)

// Observer projection modes.
const (
	viewQuestion = "question"
	viewRating   = "rating"
)

// Text frames pushed to player connections. clearStorageSentinel tells
// the player client to forget its cached name and reconnect fresh.
const (
	clearStorageSentinel = "clear_storage"

	startedText      = "The game has started! Waiting for the first question."
	gameOverText     = "The game is over! All sections are complete."
	stoppedText      = "The game was ended by the operator."
	emptySectionText = "No more questions in this section"

	waitingToStartText  = "Waiting for the game to start"
	waitingQuestionText = "Waiting for the next question"
	finishedText        = "The game is over"
)

// observerPlaceholder is shown on the spectator screen while no
// question is active.
const observerPlaceholder = "Waiting for the next question..."

var errGameRunning = errors.New("game already in progress")

// QuestionMessage is the spectator projection while the question view
// is selected.
type QuestionMessage struct {
	Type    string `json:"type"` // "question"
	Content string `json:"content"`
}

// RatingMessage is the spectator projection while the rating view is
// selected, ordered by descending score.
type RatingMessage struct {
	Type    string        `json:"type"` // "rating"
	Players []RatingEntry `json:"players"`
}

type RatingEntry struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// Game owns the shared quiz state: the section cursor, the live
// question, the answered set, and the registries of player and
// spectator connections. Every command runs as a single critical
// section under mu; broadcast payloads and recipients are snapshotted
// under mu and delivered after it is released.
type Game struct {
	cfg   *Config
	store *Store

	mu              sync.Mutex
	phase           phase
	sections        []string
	remaining       map[string][]string
	sectionIndex    int
	currentQuestion string
	answered        map[string]bool
	observerView    string
	players         map[string]*client
	observers       map[string]*client
}

func newGame(cfg *Config, store *Store) *Game {
	return &Game{
		cfg:          cfg,
		store:        store,
		observerView: viewQuestion,
		remaining:    make(map[string][]string),
		answered:     make(map[string]bool),
		players:      make(map[string]*client),
		observers:    make(map[string]*client),
	}
}

// Start loads all questions, groups them by section in first-seen
// order, resets the cursors, and announces the game. Starting while a
// run is already in progress is refused.
func (g *Game) Start(ctx context.Context) error {
	questions, err := g.store.AllQuestions(ctx)
	if err != nil {
		return err
	}

	g.mu.Lock()
	if g.phase == gameInProgress {
		g.mu.Unlock()
		return errGameRunning
	}

	g.sections = g.sections[:0]
	g.remaining = make(map[string][]string)
	for _, q := range questions {
		if _, ok := g.remaining[q.Section]; !ok {
			g.sections = append(g.sections, q.Section)
		}
		g.remaining[q.Section] = append(g.remaining[q.Section], q.Text)
	}

	g.sectionIndex = 0
	g.currentQuestion = ""
	g.answered = make(map[string]bool)
	g.phase = gameInProgress
	g.mu.Unlock()

	g.broadcast(startedText)
	return nil
}

// Advance moves the game forward: draws the next question from the
// current section, or steps into the next section when the pool is
// empty. The returned string is an informational result for the
// operator, never an error.
//
// When advancing lands on a freshly entered section that is also
// empty, players are told so and the cursor stays put; the operator
// has to advance again. Only one empty section is skipped per call.
func (g *Game) Advance() string {
	g.mu.Lock()
	if g.phase != gameInProgress {
		g.mu.Unlock()
		return "Game is not active"
	}

	// Covers a run started with no questions at all.
	if g.sectionIndex >= len(g.sections) {
		g.phase = gameFinished
		g.mu.Unlock()
		g.broadcast(gameOverText)
		return "All questions have been used"
	}

	var notices []string
	section := g.sections[g.sectionIndex]

	if len(g.remaining[section]) == 0 {
		g.sectionIndex++
		if g.sectionIndex >= len(g.sections) {
			g.phase = gameFinished
			g.mu.Unlock()
			g.broadcast(gameOverText)
			return "All questions have been used"
		}

		section = g.sections[g.sectionIndex]
		notices = append(notices, fmt.Sprintf("Moving on to section: %s", section))
	}

	if pool := g.remaining[section]; len(pool) > 0 {
		i := rand.Intn(len(pool))
		question := pool[i]
		g.remaining[section] = append(pool[:i], pool[i+1:]...)
		g.currentQuestion = question
		g.answered = make(map[string]bool)
		notices = append(notices, question)
	} else {
		notices = append(notices, emptySectionText)
	}
	g.mu.Unlock()

	for _, notice := range notices {
		g.broadcast(notice)
	}
	return "OK"
}

// Stop ends the run unconditionally. Players first receive the
// clear-storage sentinel so their clients drop cached identity, then
// the human-readable notice. Idempotent.
func (g *Game) Stop() {
	g.mu.Lock()
	g.phase = gameFinished
	g.answered = make(map[string]bool)
	g.mu.Unlock()

	g.broadcast(clearStorageSentinel)
	g.broadcast(stoppedText)
}

// SubmitAnswer records one answer for the live question. Submissions
// outside an active question, or for a question that cannot be
// resolved in the store, are dropped silently. A connection that has
// already answered the live question is accepted without writing a
// second record.
func (g *Game) SubmitAnswer(ctx context.Context, connID string, playerID int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != gameInProgress || g.currentQuestion == "" {
		return nil
	}
	if g.answered[connID] {
		return nil
	}

	question, err := g.store.QuestionByText(ctx, g.currentQuestion)
	if errors.Is(err, errNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	answeredAt := time.Now().Format("15:04:05")
	if err := g.store.RecordAnswer(ctx, playerID, question.ID, text, answeredAt); err != nil {
		return err
	}

	g.answered[connID] = true
	return nil
}

// SetObserverView switches the spectator projection and pushes it out
// immediately. Player screens are unaffected.
func (g *Game) SetObserverView(view string) {
	g.mu.Lock()
	g.observerView = view
	g.mu.Unlock()

	g.broadcastObservers()
}

// AdjustScore applies delta to the named player's persisted score.
// Decrements floor at zero. The change shows up in the next rating
// broadcast, which always reads fresh from the store.
func (g *Game) AdjustScore(ctx context.Context, name string, delta int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, err := g.store.PlayerByName(ctx, name)
	if err != nil {
		return err
	}

	score := player.Score + delta
	if delta < 0 && score < 0 {
		score = 0
	}

	return g.store.UpdateScore(ctx, player.ID, score)
}

// RegisterPlayer adds a player connection to the registry and pushes
// the phase-appropriate opening message to it.
func (g *Game) RegisterPlayer(c *client) {
	g.mu.Lock()
	g.players[c.id] = c

	var initial string
	switch {
	case g.phase == gameFinished:
		initial = finishedText
	case g.phase == gameNotStarted:
		initial = waitingToStartText
	case g.currentQuestion != "":
		initial = g.currentQuestion
	default:
		initial = waitingQuestionText
	}
	g.mu.Unlock()

	if !c.trySend([]byte(initial)) {
		g.drop(c)
	}
}

// RegisterObserver adds a spectator connection and pushes the current
// projection to all spectators, the new one included.
func (g *Game) RegisterObserver(c *client) {
	g.mu.Lock()
	g.observers[c.id] = c
	g.mu.Unlock()

	g.broadcastObservers()
}

// Unregister removes a connection from whichever registry holds it.
// Idempotent; called on disconnect and on failed sends.
func (g *Game) Unregister(id string) {
	g.mu.Lock()
	c, ok := g.players[id]
	if !ok {
		c = g.observers[id]
	}
	delete(g.players, id)
	delete(g.observers, id)
	g.mu.Unlock()

	if c != nil {
		c.close()
	}
}

func (g *Game) drop(c *client) {
	logf(g.cfg, "GAME: Dropping unresponsive connection %s", c.id)
	g.Unregister(c.id)
}

// broadcast pushes text to every player connection and then refreshes
// the spectator projection. Delivery is best-effort: a connection that
// cannot take the frame is dropped and the sweep continues.
func (g *Game) broadcast(text string) {
	g.mu.Lock()
	targets := make([]*client, 0, len(g.players))
	for _, c := range g.players {
		targets = append(targets, c)
	}
	g.mu.Unlock()

	payload := []byte(text)
	for _, c := range targets {
		if !c.trySend(payload) {
			g.drop(c)
		}
	}

	g.broadcastObservers()
}

// broadcastObservers re-derives the spectator projection from current
// state and pushes it to every spectator connection. Spectators never
// see the raw player text; they always get a typed projection.
func (g *Game) broadcastObservers() {
	g.mu.Lock()
	view := g.observerView
	question := g.currentQuestion
	targets := make([]*client, 0, len(g.observers))
	for _, c := range g.observers {
		targets = append(targets, c)
	}
	g.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	var msg any
	if view == viewRating {
		players, err := g.store.PlayersByScore(context.Background())
		if err != nil {
			logf(g.cfg, "GAME: Rating lookup failed: %v", err)
			return
		}
		entries := make([]RatingEntry, 0, len(players))
		for _, p := range players {
			entries = append(entries, RatingEntry{Name: p.Name, Score: p.Score})
		}
		msg = RatingMessage{Type: viewRating, Players: entries}
	} else {
		content := question
		if content == "" {
			content = observerPlaceholder
		}
		msg = QuestionMessage{Type: viewQuestion, Content: content}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		logf(g.cfg, "GAME: Projection marshal failed: %v", err)
		return
	}

	for _, c := range targets {
		if !c.trySend(payload) {
			g.drop(c)
		}
	}
}
