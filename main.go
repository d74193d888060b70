// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/curioswitch/go-curiostack/server"
	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stellarsoil/assistant/internal/config"
	"github.com/stellarsoil/assistant/internal/geo"
	"github.com/stellarsoil/assistant/internal/handler/addtocart"
	"github.com/stellarsoil/assistant/internal/handler/getcart"
	"github.com/stellarsoil/assistant/internal/handler/getmessages"
	"github.com/stellarsoil/assistant/internal/handler/sendmessage"
	"github.com/stellarsoil/assistant/internal/handler/setlocation"
	"github.com/stellarsoil/assistant/internal/handler/startchat"
	"github.com/stellarsoil/assistant/internal/handler/voice"
	"github.com/stellarsoil/assistant/internal/i18n"
	"github.com/stellarsoil/assistant/internal/intent"
	"github.com/stellarsoil/assistant/internal/session"
	"github.com/stellarsoil/assistant/internal/speech"
	"github.com/stellarsoil/assistant/internal/store"
)

//go:embed conf/*.yaml
var confFiles embed.FS

func main() {
	conf, _ := fs.Sub(confFiles, "conf")
	os.Exit(server.Main(&config.Config{}, conf, setupServer))
}

func setupServer(ctx context.Context, conf *config.Config, s *server.Server) error {
	mux := server.Mux(s)

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.Google.Project})
	if err != nil {
		return fmt.Errorf("main: create firebase app: %w", err)
	}

	fbAuth, err := fbApp.Auth(ctx)
	if err != nil {
		return fmt.Errorf("main: create firebase auth client: %w", err)
	}

	db, err := store.Open(ctx, conf.Store.Path)
	if err != nil {
		return fmt.Errorf("main: open cart store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.ErrorContext(ctx, "main: close cart store", "error", err)
		}
	}()

	backend := intent.NewClient(&http.Client{Timeout: 30 * time.Second}, conf.Backend.URL)

	locations := geo.NewPool()
	recognizers := speech.NewPool()
	sessions := session.NewRegistry(backend, db,
		func(userID string) geo.Provider { return locations.Get(userID) },
		func(userID string) speech.Recognizer { return recognizers.Get(userID) },
		conf.Chat.HistoryWindow)

	fbMW := firebaseauth.NewMiddleware(fbAuth)
	mux.Use(middleware.Maybe(fbMW, func(r *http.Request) bool {
		return !strings.HasPrefix(r.URL.Path, "/internal/")
	}))

	mux.Use(i18n.Middleware())

	mux.Post("/api/chat/start", startchat.NewHandler(sessions).StartChat)
	mux.Post("/api/chat/message", sendmessage.NewHandler(sessions).SendMessage)
	mux.Get("/api/chat/messages", getmessages.NewHandler(sessions).GetMessages)
	mux.Post("/api/chat/location", setlocation.NewHandler(sessions, locations).SetLocation)
	mux.Post("/api/cart/items", addtocart.NewHandler(sessions).AddToCart)
	mux.Get("/api/cart", getcart.NewHandler(sessions).GetCart)

	voiceHandler := voice.NewHandler(ctx, sessions, recognizers)
	mux.Post("/api/voice/begin", voiceHandler.Begin)
	mux.Post("/api/voice/end", voiceHandler.End)
	mux.Post("/api/voice/result", voiceHandler.Result)

	if err := server.Start(ctx, s); err != nil {
		return fmt.Errorf("main: starting server: %w", err)
	}
	return nil
}
