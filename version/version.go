// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package version holds the client release number. Wire protocol
// versions are a separate concept and live in the protocol package.
package version

import (
	semversion "github.com/juju/version/v2"
)

// Current is the version of this client library.
var Current = semversion.MustParse("0.9.0")
