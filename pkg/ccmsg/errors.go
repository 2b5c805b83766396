// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import "errors"

// ErrMalformedMessage is returned when the raw text is not well-formed
// markup. It is the only fatal decode outcome: every condition past the
// markup level (absent identity, absent channels, absent history) surfaces
// as an optional-absent accessor result instead.
var ErrMalformedMessage = errors.New("malformed message")
