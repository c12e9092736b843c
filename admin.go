/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func serveStart(cfg *Config, g *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		err := g.Start(r.Context())
		switch {
		case errors.Is(err, errGameRunning):
			respondMessage(w, "Game is already running")
		case err != nil:
			logf(cfg, "ADMIN: Start failed: %v", err)
			respondError(w, http.StatusInternalServerError, "could not load questions")
		default:
			logf(cfg, "ADMIN: Game started")
			respondMessage(w, "Game started")
		}
	}
}

func serveNext(cfg *Config, g *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		result := g.Advance()
		logf(cfg, "ADMIN: Advance: %s", result)
		respondMessage(w, result)
	}
}

func serveStop(cfg *Config, g *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		g.Stop()
		logf(cfg, "ADMIN: Game stopped")
		respondMessage(w, "Game stopped")
	}
}

func serveObserverView(cfg *Config, g *Game, view string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		g.SetObserverView(view)
		logf(cfg, "ADMIN: Spectator view set to %s", view)
		respondMessage(w, "Spectator view set to "+view)
	}
}

func serveAdjustScore(cfg *Config, g *Game, delta int64) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		name := p.ByName("name")

		err := g.AdjustScore(r.Context(), name, delta)
		switch {
		case errors.Is(err, errNotFound):
			respondError(w, http.StatusNotFound, "player not found")
		case err != nil:
			logf(cfg, "ADMIN: Score adjustment for %q failed: %v", name, err)
			respondError(w, http.StatusInternalServerError, "could not update score")
		default:
			respondMessage(w, "OK")
		}
	}
}

func serveListPlayers(cfg *Config, store *Store) httprouter.Handle {
	type playerEntry struct {
		Name  string `json:"name"`
		Score int64  `json:"score"`
	}

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		players, err := store.AllPlayers(r.Context())
		if err != nil {
			logf(cfg, "ADMIN: Player listing failed: %v", err)
			respondError(w, http.StatusInternalServerError, "could not list players")
			return
		}

		entries := make([]playerEntry, 0, len(players))
		for _, p := range players {
			entries = append(entries, playerEntry{Name: p.Name, Score: p.Score})
		}
		respondJSON(w, http.StatusOK, map[string]any{"players": entries})
	}
}

func serveListAnswers(cfg *Config, store *Store) httprouter.Handle {
	type answerEntry struct {
		User     string `json:"user"`
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Time     string `json:"time"`
	}

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		answers, err := store.AllAnswersJoined(r.Context())
		if err != nil {
			logf(cfg, "ADMIN: Answer listing failed: %v", err)
			respondError(w, http.StatusInternalServerError, "could not list answers")
			return
		}

		entries := make([]answerEntry, 0, len(answers))
		for _, a := range answers {
			entries = append(entries, answerEntry{
				User:     a.Player,
				Question: a.Question,
				Answer:   a.Answer,
				Time:     a.Time,
			})
		}
		respondJSON(w, http.StatusOK, map[string]any{"answers": entries})
	}
}

func serveAddQuestions(cfg *Config, store *Store) httprouter.Handle {
	type questionInput struct {
		Section string `json:"section"`
		Text    string `json:"text"`
	}

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var inputs []questionInput
		if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
			respondError(w, http.StatusBadRequest, "invalid question list")
			return
		}

		questions := make([]Question, 0, len(inputs))
		for _, in := range inputs {
			if in.Section == "" || in.Text == "" {
				respondError(w, http.StatusBadRequest, "question section and text must not be empty")
				return
			}
			questions = append(questions, Question{Section: in.Section, Text: in.Text})
		}

		if err := store.CreateQuestions(r.Context(), questions); err != nil {
			logf(cfg, "ADMIN: Question insert failed: %v", err)
			respondError(w, http.StatusInternalServerError, "could not add questions")
			return
		}

		logf(cfg, "ADMIN: Added %d questions", len(questions))
		respondMessage(w, "Questions added")
	}
}

func serveListQuestions(cfg *Config, store *Store) httprouter.Handle {
	type questionEntry struct {
		ID      int64  `json:"id"`
		Section string `json:"section"`
		Text    string `json:"text"`
	}

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		questions, err := store.AllQuestions(r.Context())
		if err != nil {
			logf(cfg, "ADMIN: Question listing failed: %v", err)
			respondError(w, http.StatusInternalServerError, "could not list questions")
			return
		}

		entries := make([]questionEntry, 0, len(questions))
		for _, q := range questions {
			entries = append(entries, questionEntry{ID: q.ID, Section: q.Section, Text: q.Text})
		}
		respondJSON(w, http.StatusOK, map[string]any{"questions": entries})
	}
}

func serveDeleteQuestion(cfg *Config, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id, err := strconv.ParseInt(p.ByName("id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid question id")
			return
		}

		err = store.DeleteQuestion(r.Context(), id)
		switch {
		case errors.Is(err, errNotFound):
			respondError(w, http.StatusNotFound, "question not found")
		case err != nil:
			logf(cfg, "ADMIN: Question delete failed: %v", err)
			respondError(w, http.StatusInternalServerError, "could not delete question")
		default:
			respondMessage(w, "Question deleted")
		}
	}
}

func serveEndGame(cfg *Config, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if err := store.PurgeGameData(r.Context()); err != nil {
			logf(cfg, "ADMIN: Purge failed: %v", err)
			respondError(w, http.StatusInternalServerError, "could not purge game data")
			return
		}

		logf(cfg, "ADMIN: Purged answers and players")
		respondMessage(w, "Game data purged")
	}
}

func registerAdmin(cfg *Config, g *Game, store *Store, mux *httprouter.Router) {
	mux.POST(cfg.prefix+"/admin/start", serveStart(cfg, g))
	mux.POST(cfg.prefix+"/admin/next", serveNext(cfg, g))
	mux.POST(cfg.prefix+"/admin/stop", serveStop(cfg, g))

	mux.POST(cfg.prefix+"/admin/show_rating", serveObserverView(cfg, g, viewRating))
	mux.POST(cfg.prefix+"/admin/show_question", serveObserverView(cfg, g, viewQuestion))

	mux.POST(cfg.prefix+"/admin/add_point/:name", serveAdjustScore(cfg, g, 1))
	mux.POST(cfg.prefix+"/admin/remove_point/:name", serveAdjustScore(cfg, g, -1))

	mux.GET(cfg.prefix+"/admin/players", serveListPlayers(cfg, store))
	mux.GET(cfg.prefix+"/admin/answers", serveListAnswers(cfg, store))

	mux.POST(cfg.prefix+"/admin/questions", serveAddQuestions(cfg, store))
	mux.GET(cfg.prefix+"/admin/questions", serveListQuestions(cfg, store))
	mux.DELETE(cfg.prefix+"/admin/questions/:id", serveDeleteQuestion(cfg, store))

	mux.POST(cfg.prefix+"/admin/end_game", serveEndGame(cfg, store))
}
