// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"github.com/curioswitch/go-curiostack/config"
)

type Backend struct {
	// URL is the base URL of the marketplace intent service, e.g.
	// https://api.stellarsoil.dev.
	URL string `koanf:"url"`
}

type Chat struct {
	// HistoryWindow is the number of most recent turns sent with each
	// message for conversational context.
	HistoryWindow int `koanf:"historywindow"`
}

type Store struct {
	// Path is the filesystem path of the cart database.
	Path string `koanf:"path"`
}

type Config struct {
	config.Common

	// Backend is the configuration for the marketplace intent service.
	Backend Backend `koanf:"backend"`

	// Chat is the configuration for chat sessions.
	Chat Chat `koanf:"chat"`

	// Store is the configuration for durable cart storage.
	Store Store `koanf:"store"`
}
