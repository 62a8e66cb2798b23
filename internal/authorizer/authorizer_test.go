package authorizer

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const methodArn = "arn:aws:execute-api:eu-west-3:123456789012:api/dev/GET/import"

func basic(userPass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(userPass))
}

func TestParseCredentials(t *testing.T) {
	testCases := []struct {
		name     string
		list     string
		expected Credentials
	}{
		{name: "single", list: "alice=secret", expected: Credentials{"alice": "secret"}},
		{name: "several with spaces", list: "alice=secret, bob=pw", expected: Credentials{"alice": "secret", "bob": "pw"}},
		{name: "password containing equals", list: "alice=a=b", expected: Credentials{"alice": "a=b"}},
		{name: "malformed entries skipped", list: "alice,=pw,,bob=pw", expected: Credentials{"bob": "pw"}},
		{name: "empty", list: "", expected: Credentials{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseCredentials(tc.list))
		})
	}
}

func TestAuthorizer_Authorize(t *testing.T) {
	a := New(ParseCredentials("alice=secret,bob=pa:ss,eve="))
	testCases := []struct {
		name      string
		token     string
		effect    Effect
		principal string
	}{
		{name: "valid credentials", token: basic("alice:secret"), effect: Allow, principal: "alice"},
		{name: "password with colon", token: basic("bob:pa:ss"), effect: Allow, principal: "bob"},
		{name: "missing token", token: "", effect: Deny, principal: DeniedPrincipal},
		{name: "wrong scheme", token: "Bearer abc", effect: Deny, principal: DeniedPrincipal},
		{name: "not base64", token: "Basic !!!", effect: Deny, principal: DeniedPrincipal},
		{name: "no colon", token: basic("alice"), effect: Deny, principal: DeniedPrincipal},
		{name: "wrong password", token: basic("alice:nope"), effect: Deny, principal: DeniedPrincipal},
		{name: "unknown user", token: basic("mallory:secret"), effect: Deny, principal: DeniedPrincipal},
		{name: "empty stored password", token: basic("eve:"), effect: Deny, principal: DeniedPrincipal},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			d := a.Authorize(tc.token, methodArn)

			// then
			assert.Equal(t, tc.effect, d.Effect)
			assert.Equal(t, tc.principal, d.PrincipalID)
			assert.Equal(t, methodArn, d.Resource)
		})
	}
}

func TestHandler_Handle(t *testing.T) {
	// given
	h := NewHandler(New(ParseCredentials("alice=secret")), slog.New(slog.NewTextHandler(io.Discard, nil)))

	// when
	allowed, errAllowed := h.Handle(context.Background(), events.APIGatewayCustomAuthorizerRequest{
		Type: "TOKEN", AuthorizationToken: basic("alice:secret"), MethodArn: methodArn,
	})
	denied, errDenied := h.Handle(context.Background(), events.APIGatewayCustomAuthorizerRequest{
		Type: "TOKEN", AuthorizationToken: "garbage", MethodArn: methodArn,
	})

	// then
	require.NoError(t, errAllowed)
	require.NoError(t, errDenied)
	assert.Equal(t, "alice", allowed.PrincipalID)
	assert.Equal(t, "2012-10-17", allowed.PolicyDocument.Version)
	require.Len(t, allowed.PolicyDocument.Statement, 1)
	assert.Equal(t, []string{"execute-api:Invoke"}, allowed.PolicyDocument.Statement[0].Action)
	assert.Equal(t, "Allow", allowed.PolicyDocument.Statement[0].Effect)
	assert.Equal(t, []string{methodArn}, allowed.PolicyDocument.Statement[0].Resource)

	assert.Equal(t, "user", denied.PrincipalID)
	assert.Equal(t, "Deny", denied.PolicyDocument.Statement[0].Effect)
	assert.Equal(t, []string{methodArn}, denied.PolicyDocument.Statement[0].Resource)
}

func TestBasicAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
	h := BasicAuth(New(ParseCredentials("alice=secret")), logger)(next)

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{name: "allowed", header: basic("alice:secret"), status: http.StatusCreated},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong password", header: basic("alice:x"), status: http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodPost, "/products", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			// when
			h.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.status, rr.Code)
			if tc.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"message":"Unauthorized"}`, rr.Body.String())
			}
		})
	}
}
