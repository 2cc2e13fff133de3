// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package protocol

import "fmt"

// Status is the server-reported outcome code carried by responses.
type Status int32

const (
	StatusSuccess           Status = 0
	StatusFailed            Status = 1
	StatusInvalidOpCode     Status = 2
	StatusSecurityViolation Status = 3
	StatusAuthFailed        Status = 2000
)

// String returns a human-readable rendering of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusInvalidOpCode:
		return "invalid operation code"
	case StatusSecurityViolation:
		return "security violation"
	case StatusAuthFailed:
		return "authentication failed"
	}
	return fmt.Sprintf("status %d", int32(s))
}
