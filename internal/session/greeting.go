// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package session

import (
	"time"

	"github.com/stellarsoil/assistant/internal/chatdb"
)

// Greeting returns the contextual welcome text for a newly opened chat.
func Greeting(role chatdb.Role, now time.Time) string {
	var timeGreeting string
	switch hour := now.Hour(); {
	case hour < 12:
		timeGreeting = "Good morning! ☀️"
	case hour < 17:
		timeGreeting = "Good afternoon! 😊"
	default:
		timeGreeting = "Good evening! 🌙"
	}

	if role == chatdb.RoleFarmer {
		return timeGreeting + " I'm Alex, your farming assistant! 🌱 I can help you list products, check market prices, and manage your farm inventory. I can also process orders when customers ask for your products. What would you like to do today?"
	}
	return timeGreeting + " I'm Sage, your shopping assistant! 🛒 I can help you find fresh produce, place orders, get recipes, and connect you with local farmers. Just tell me what you need - like \"I need 2kg tomatoes\" and I'll find the best options near you!"
}
