package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIClient handles HTTP communication with the catalog API
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching the API

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"isStaff"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type GameSummary struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Year      *int     `json:"year"`
	Platforms []string `json:"platforms"`
}

type GamePage struct {
	Count    int64         `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []GameSummary `json:"results"`
}

type Library struct {
	Username string        `json:"username"`
	Games    []GameSummary `json:"games"`
}

// statusError carries the plain-text error body returned by the API
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.status, e.body)
}

// Login exchanges credentials for tokens
func (c *APIClient) Login(username, password string) (*AuthResponse, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	var result AuthResponse
	if err := c.do(http.MethodPost, "/auth/login", body, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &result, nil
}

// Installers returns the raw JSON array served for slug
func (c *APIClient) Installers(slug string) ([]byte, error) {
	return c.raw("/installers/" + url.PathEscape(slug))
}

// Installer returns one stored installer as yaml or json
func (c *APIClient) Installer(slug, format string, clean bool) ([]byte, error) {
	path := "/installers/" + url.PathEscape(slug) + "/" + format
	if clean {
		path += "?clean=1"
	}
	return c.raw(path)
}

// ListGames fetches one page of the game list
func (c *APIClient) ListGames(search string, withInstallers bool, page int) (*GamePage, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if withInstallers {
		query.Set("with_installers", "1")
	}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}

	path := "/games"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result GamePage
	if err := c.do(http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return &result, nil
}

// Library fetches a user's library; requires a token
func (c *APIClient) Library(username string) (*Library, error) {
	var result Library
	if err := c.do(http.MethodGet, "/library/"+url.PathEscape(username), nil, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("get library: %w", err)
	}
	return &result, nil
}

func (c *APIClient) raw(path string) ([]byte, error) {
	resp, err := c.request(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{status: resp.StatusCode, body: string(bytes.TrimSpace(data))}
	}
	return data, nil
}

func (c *APIClient) do(method, path string, body interface{}, wantStatus int, out interface{}) error {
	resp, err := c.request(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &statusError{status: resp.StatusCode, body: string(bytes.TrimSpace(bodyBytes))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *APIClient) request(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
