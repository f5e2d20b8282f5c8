package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

// mints a custom token for a uid and exchanges it for an ID token usable
// as a bearer token against the deployed functions
func main() {
	uid := flag.String("uid", "", "user id to mint a token for")
	credFile := flag.String("credentials", "service-account.json", "service account file")
	apiKey := flag.String("api-key", "", "web API key")
	flag.Parse()
	if *uid == "" || *apiKey == "" {
		log.Fatal("-uid and -api-key are required")
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(*credFile))
	if err != nil {
		log.Fatalf("initializing app: %v", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("initializing auth client: %v", err)
	}

	customToken, err := client.CustomToken(ctx, *uid)
	if err != nil {
		log.Fatalf("minting custom token: %v", err)
	}

	payload, err := json.Marshal(map[string]any{
		"token":             customToken,
		"returnSecureToken": true,
	})
	if err != nil {
		log.Fatalf("encoding payload: %v", err)
	}

	resp, err := http.Post(
		"https://identitytoolkit.googleapis.com/v1/accounts:signInWithCustomToken?key="+*apiKey,
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		log.Fatalf("exchanging token: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var signIn signInResponse
	if err := json.Unmarshal(body, &signIn); err != nil {
		log.Fatalf("decoding response: %v", err)
	}
	fmt.Println(signIn.IDToken)
}
