package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/binhbb2204/BookHub/cli/config"
)

// apiResponse mirrors the server envelope.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Detail  interface{}     `json:"detail"`
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned HTTP %d", e.Status)
	}
	return e.Message
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(cfg *config.Config) *apiClient {
	return &apiClient{
		baseURL: cfg.ServerURL(),
		token:   cfg.User.Token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// do sends body as JSON and decodes the envelope. Non-2xx answers become
// an *apiError carrying the server message.
func (c *apiClient) do(method, path string, body interface{}) (*apiResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server connection error: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &apiError{Status: res.StatusCode}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 || !env.Success {
		return &env, &apiError{Status: res.StatusCode, Message: env.Message}
	}
	return &env, nil
}

func (c *apiClient) decode(method, path string, body, out interface{}) (string, error) {
	env, err := c.do(method, path, body)
	if err != nil {
		return "", err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return env.Message, nil
}

func loggedInClient() (*apiClient, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		printError("Configuration not initialized")
		fmt.Println("Run: bookhub init")
		return nil, nil, err
	}
	if cfg.User.Token == "" {
		printError("You are not logged in")
		return nil, nil, fmt.Errorf("please login first: bookhub auth login")
	}
	return newAPIClient(cfg), cfg, nil
}
