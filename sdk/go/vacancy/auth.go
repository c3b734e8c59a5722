package vacancy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// tokenManager handles session token acquisition. Tokens are minted once by
// the server and never expire, so a token is fetched at most once and cached
// for the client's lifetime. Safe for concurrent use.
type tokenManager struct {
	baseURL  string
	identity string
	secret   string
	client   *http.Client

	mu    sync.Mutex
	token string
}

func newTokenManager(baseURL, identity, secret string, client *http.Client) *tokenManager {
	return &tokenManager{
		baseURL:  baseURL,
		identity: identity,
		secret:   secret,
		client:   client,
	}
}

// getToken returns the cached token, signing in first if needed.
func (tm *tokenManager) getToken(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != "" {
		return tm.token, nil
	}

	token, _, err := tm.signIn(ctx)
	if err != nil {
		return "", err
	}
	tm.token = token
	return token, nil
}

// signIn performs the sign-in call and returns the token and the size of the
// response body. It does not touch the cache; callers that want caching go
// through getToken or store the result with setToken.
func (tm *tokenManager) signIn(ctx context.Context) (string, int64, error) {
	body, err := json.Marshal(signInRequest{Identity: tm.identity, Secret: tm.secret})
	if err != nil {
		return "", 0, fmt.Errorf("vacancy: marshal sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.baseURL+"/auth/signin", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("vacancy: create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tm.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("vacancy: sign-in request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("vacancy: read sign-in response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", 0, parseErrorResponse(resp.StatusCode, respBody)
	}

	var envelope struct {
		Data signInResponse `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return "", 0, fmt.Errorf("vacancy: decode sign-in response: %w", err)
	}
	if envelope.Data.Token == "" {
		return "", 0, fmt.Errorf("vacancy: sign-in response carried no token")
	}

	return envelope.Data.Token, int64(len(respBody)), nil
}

// setToken stores a token obtained through an explicit SignIn call.
func (tm *tokenManager) setToken(token string) {
	tm.mu.Lock()
	tm.token = token
	tm.mu.Unlock()
}
