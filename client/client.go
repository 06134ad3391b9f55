// Package client is the outbound HTTP plumbing the dashboard pages use:
// it attaches the stored bearer credential to every call, busts GET
// caches, and clears the credential slots when the server answers 401.
package client

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/worklens/dashgate/store"
)

// Client calls the dashboard API on behalf of a page.
type Client struct {
	base  string
	http  *http.Client
	store store.IdentityStore
}

// New returns a client rooted at base, reading credentials from st.
func New(base string, st store.IdentityStore) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		http:  &http.Client{Timeout: 30 * time.Second},
		store: st,
	}
}

// Get issues a GET with a cache-busting _t parameter.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("_t", strconv.FormatInt(time.Now().UnixMilli(), 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req)
}

// Do attaches the bearer credential and executes the request. A 401
// response clears the credential slots so the next navigation resolves
// as unset instead of retrying a dead token.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if tok, ok := c.store.Token(); ok {
		if tokenExpired(tok) {
			log.Printf("client: stored token expired, clearing credential slots")
			c.store.ClearToken()
		} else {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		log.Printf("client: unauthorized from %s, clearing credential slots", req.URL.Path)
		c.store.ClearToken()
	}
	return resp, nil
}

// tokenExpired inspects a JWT-shaped token's exp claim without verifying
// the signature (the server owns verification). Opaque tokens never
// expire client-side.
func tokenExpired(tok string) bool {
	if strings.Count(tok, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
