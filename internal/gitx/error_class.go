// SPDX-License-Identifier: MIT
package gitx

import (
	"context"
	"errors"
	"strings"
)

// Error classes attached to failed pulls, pushes, fetches and clones in
// progress output.
const (
	ClassAuth           = "auth"
	ClassNetwork        = "network"
	ClassNonFastForward = "non_fast_forward"
	ClassTimeout        = "timeout"
	ClassCorrupt        = "corrupt"
	ClassMissingRemote  = "missing_remote"
	ClassUnknown        = "unknown"
)

// classRules is evaluated in order; the first rule with a matching needle wins.
var classRules = []struct {
	class   string
	needles []string
}{
	{ClassAuth, []string{"permission denied", "authentication failed", "access denied", "publickey", "could not read username", "credential", "terminal prompts disabled"}},
	{ClassNetwork, []string{"could not resolve host", "network is unreachable", "connection timed out", "connection refused", "failed to connect", "temporary failure in name resolution", "tls handshake timeout"}},
	{ClassNonFastForward, []string{"not possible to fast-forward", "non-fast-forward", "diverging branches", "fetch first", "[rejected]"}},
	{ClassTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{ClassCorrupt, []string{"not a git repository", "bad object", "corrupt", "object file"}},
	{ClassMissingRemote, []string{"repository not found", "couldn't find remote ref", "remote branch", "does not appear to be a git repository", "no such remote"}},
}

// ClassifyError maps a failed git invocation to one of the Class constants.
// A nil error has no class.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if TimedOut(err) || errors.Is(err, context.Canceled) {
		return ClassTimeout
	}
	msg := strings.ToLower(err.Error())
	for _, rule := range classRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return rule.class
			}
		}
	}
	return ClassUnknown
}
