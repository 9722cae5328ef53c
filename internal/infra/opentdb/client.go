// Package opentdb fetches question batches from the Open Trivia Database.
package opentdb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trivia-quiz-service/internal/domain"
)

const DefaultBaseURL = "https://opentdb.com"

// Response codes documented by the API.
const (
	codeSuccess      = 0
	codeNoResults    = 1
	codeInvalidParam = 2
	codeRateLimit    = 5
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

type apiResponse struct {
	ResponseCode int         `json:"response_code"`
	Results      []apiResult `json:"results"`
}

type apiResult struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Fetch requests amount questions base64-encoded (to sidestep HTML entities) and decodes them.
func (c *Client) Fetch(ctx context.Context, amount int) ([]domain.Question, error) {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(amount))
	q.Set("encode", "base64")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api.php?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch questions: unexpected status %d", resp.StatusCode)
	}
	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	switch body.ResponseCode {
	case codeSuccess:
	case codeNoResults:
		return nil, fmt.Errorf("open trivia db: not enough questions for amount %d", amount)
	case codeInvalidParam:
		return nil, fmt.Errorf("open trivia db: invalid parameter")
	case codeRateLimit:
		return nil, fmt.Errorf("open trivia db: rate limited")
	default:
		return nil, fmt.Errorf("open trivia db: response code %d", body.ResponseCode)
	}

	questions := make([]domain.Question, 0, len(body.Results))
	for i, r := range body.Results {
		q, err := r.decode()
		if err != nil {
			return nil, fmt.Errorf("decode result %d: %w", i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r apiResult) decode() (domain.Question, error) {
	var err error
	dec := func(s string) string {
		if err != nil {
			return ""
		}
		var b []byte
		b, err = base64.StdEncoding.DecodeString(s)
		return string(b)
	}

	q := domain.Question{
		Prompt:        dec(r.Question),
		Category:      dec(r.Category),
		Difficulty:    domain.Difficulty(dec(r.Difficulty)),
		Type:          domain.QuestionType(dec(r.Type)),
		CorrectAnswer: dec(r.CorrectAnswer),
	}
	for _, a := range r.IncorrectAnswers {
		q.IncorrectAnswers = append(q.IncorrectAnswers, dec(a))
	}
	if err != nil {
		return domain.Question{}, err
	}
	return q, nil
}
