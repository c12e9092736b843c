/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Quizbox live quiz
//
// One operator, many players, and a shared spectator screen:
// - Questions live in sqlite, grouped into named sections
// - The operator starts the game and advances it question by question
// - Questions are drawn at random, without replacement, per section
// - Players connect over websockets and submit free-text answers
// - Each connection gets one answer per question; repeats are dropped
// - Spectators see either the live question or the score table,
//   switched from the operator panel
// - Scores are adjusted manually from the operator panel
// - Players can join by scanning a QR code of the join URL, backed by go-qrcode

package main

import (
	_ "embed"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

//go:embed quiz/player.html
var playerHTML []byte

//go:embed quiz/spectator.html
var spectatorHTML []byte

//go:embed quiz/admin.html
var adminHTML []byte

func servePage(cfg *Config, page []byte) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(page)
	}
}

// serveJoinQR generates a PNG QR code pointing at the player join URL,
// respecting TLS and X-Forwarded-Proto.
func serveJoinQR(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at $prefix/qr; strip the trailing "/qr" to get the join URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")
		if path == "" {
			path = "/"
		}

		url := scheme + "://" + r.Host + path

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// registerQuiz sets up routes so that:
//   - $prefix/              → player page
//   - $prefix/spectator     → spectator page
//   - $prefix/admin         → operator panel
//   - $prefix/ws/player     → player websocket
//   - $prefix/ws/spectator  → spectator websocket
//   - $prefix/qr            → PNG QR code for the join URL
//
// plus the operator JSON endpoints under $prefix/admin/.
func registerQuiz(cfg *Config, g *Game, store *Store, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/", servePage(cfg, playerHTML))
	mux.GET(cfg.prefix+"/spectator", servePage(cfg, spectatorHTML))
	mux.GET(cfg.prefix+"/admin", servePage(cfg, adminHTML))

	mux.GET(cfg.prefix+"/ws/player", servePlayerWS(cfg, g))
	mux.GET(cfg.prefix+"/ws/spectator", serveObserverWS(cfg, g))

	mux.GET(cfg.prefix+"/qr", serveJoinQR(cfg))

	registerAdmin(cfg, g, store, mux)
}
