// Package main implements the entry point for the task manager API server,
// which handles user accounts, multi-device sessions, avatars, and each
// user's personal task list.
package main

import (
	"context"
	"log"
)

func main() {
	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
