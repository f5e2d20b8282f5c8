package auth

import (
	"errors"
	"net/http"

	firebase "firebase.google.com/go/v4"
)

var errNoEmail = errors.New("token carries no email claim")

// Identity is the resolved current user. The sync engine treats a missing
// identity as "do not subscribe to anything".
type Identity struct {
	UID   string
	Email string
}

// Authenticate verifies the request's Firebase ID token and resolves the
// caller's identity.
func Authenticate(req *http.Request) (*Identity, error) {
	ctx := req.Context()
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, err
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}

	jwtToken, err := BearerTokenFromRequest(req)
	if err != nil {
		return nil, err
	}
	token, err := client.VerifyIDToken(ctx, jwtToken)
	if err != nil {
		return nil, err
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, errNoEmail
	}
	return &Identity{UID: token.UID, Email: email}, nil
}
