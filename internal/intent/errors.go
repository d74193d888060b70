// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package intent

import "errors"

// ErrUnavailable marks connectivity failures: the service could not be
// reached or answered with a server error before acting on the request.
var ErrUnavailable = errors.New("intent service unavailable")

// RejectionError is an explicit decline from the service, e.g. an
// out-of-stock product. The request reached the service, so callers must not
// take connectivity fallbacks.
type RejectionError struct {
	// Message is the service's user-facing explanation.
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return "intent: request rejected"
	}
	return "intent: request rejected: " + e.Message
}
