// Package authorizer checks Basic credentials against a static list and renders the decision as an IAM policy.
package authorizer

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

const (
	scheme = "Basic "
	// DeniedPrincipal is reported for every denied token, whoever it claims to be.
	DeniedPrincipal = "user"
)

type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

// Decision is the outcome for one token and resource.
type Decision struct {
	Effect      Effect
	PrincipalID string
	Resource    string
	// Reason is for logs only.
	Reason string
}

func (d Decision) Allowed() bool {
	return d.Effect == Allow
}

// Credentials maps usernames to passwords.
type Credentials map[string]string

// ParseCredentials reads a comma separated list of username=password pairs.
// Each entry is split on its first '='. Entries without '=' or without a username are skipped.
func ParseCredentials(list string) Credentials {
	creds := make(Credentials)
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		user, password, ok := strings.Cut(entry, "=")
		if !ok || user == "" {
			continue
		}
		creds[user] = password
	}
	return creds
}

// Authorizer decides on tokens of the form "Basic base64(username:password)".
type Authorizer struct {
	credentials Credentials
}

func New(credentials Credentials) *Authorizer {
	return &Authorizer{credentials: credentials}
}

// Authorize never fails: every malformed or unknown token resolves to Deny.
func (a *Authorizer) Authorize(token, resource string) Decision {
	deny := func(reason string) Decision {
		return Decision{Effect: Deny, PrincipalID: DeniedPrincipal, Resource: resource, Reason: reason}
	}
	if token == "" {
		return deny("missing token")
	}
	if !strings.HasPrefix(token, scheme) {
		return deny("unsupported scheme")
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token[len(scheme):]))
	if err != nil {
		return deny("malformed token")
	}
	user, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return deny("malformed credentials")
	}
	stored, known := a.credentials[user]
	if !known || stored == "" {
		return deny("unknown user")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return deny("wrong password")
	}
	return Decision{Effect: Allow, PrincipalID: user, Resource: resource}
}
