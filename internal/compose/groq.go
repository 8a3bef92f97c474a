package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	pathModels      = "/models"
	pathCompletions = "/chat/completions"

	systemPrompt = "You write clear, professional business emails."
)

type Config struct {
	BaseURL     string  `envconfig:"BASE_URL" default:"https://api.groq.com/openai/v1"`
	APIKey      string  `envconfig:"API_KEY"`
	Model       string  `envconfig:"MODEL"`
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.4"`
}

// Client talks to an OpenAI-compatible chat-completions API to draft
// email bodies. When no model is configured it picks the first
// chat-capable one the provider lists, so drafts keep working across
// model deprecations.
type Client struct {
	baseClient  *http.Client
	baseURL     *url.URL
	apiKey      string
	temperature float64

	modelMu sync.Mutex
	model   string
}

func NewClient(baseClient *http.Client, config Config) (*Client, error) {
	if baseClient == nil {
		baseClient = &http.Client{}
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse base URL")
	}

	return &Client{
		baseClient:  baseClient,
		baseURL:     baseURL,
		apiKey:      config.APIKey,
		temperature: config.Temperature,
		model:       config.Model,
	}, nil
}

// CodeError is returned for any non-200 provider response.
type CodeError struct {
	StatusCode int
}

func (e CodeError) Error() string {
	return fmt.Sprintf("API responded with code %v", e.StatusCode)
}

func (c *Client) doRequest(ctx context.Context, method, pth string, body io.Reader) (io.ReadCloser, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, pth)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.baseClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to do request")
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		return nil, CodeError{StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}

func (c *Client) pickModel(ctx context.Context) (string, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, pathModels, nil)
	if err != nil {
		return "", errors.WithMessage(err, "failed to list models")
	}
	defer respBody.Close()

	type response struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}

	var resp response

	err = json.NewDecoder(respBody).Decode(&resp)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode model list")
	}

	if len(resp.Data) == 0 {
		return "", errors.New("provider lists no models")
	}

	for _, m := range resp.Data {
		for _, hint := range []string{"chat", "instant", "versatile"} {
			if containsFold(m.ID, hint) {
				return m.ID, nil
			}
		}
	}

	return resp.Data[0].ID, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func (c *Client) resolveModel(ctx context.Context) (string, error) {
	c.modelMu.Lock()
	defer c.modelMu.Unlock()

	if c.model != "" {
		return c.model, nil
	}

	model, err := c.pickModel(ctx)
	if err != nil {
		return "", err
	}

	c.model = model
	return model, nil
}

// ComposeEmail drafts an email body for the given purpose. An empty
// tone defaults to professional.
func (c *Client) ComposeEmail(ctx context.Context, purpose, tone string) (string, error) {
	model, err := c.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	if tone == "" {
		tone = "professional"
	}

	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	type request struct {
		Model       string    `json:"model"`
		Messages    []message `json:"messages"`
		Temperature float64   `json:"temperature"`
	}

	body, err := json.Marshal(request{
		Model: model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Write a %s email. %s", tone, purpose)},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal body")
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, pathCompletions, bytes.NewBuffer(body))
	if err != nil {
		return "", errors.WithMessage(err, "completion request failed")
	}
	defer respBody.Close()

	type response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	var resp response

	err = json.NewDecoder(respBody).Decode(&resp)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode response")
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
