package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the aggregation provider's read-only API. Access tokens
// are passed per call: each enrollment carries its own credential and the
// client itself holds no secrets.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ListAccounts returns every account visible under the enrollment's token.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, accessToken, "/accounts", nil, &accounts); err != nil {
		return nil, err
	}

	return accounts, nil
}

// GetBalance fetches the current balances for one account.
func (c *Client) GetBalance(ctx context.Context, accessToken, accountID string) (*Balance, error) {
	var balance Balance

	path := "/accounts/" + url.PathEscape(accountID) + "/balances"
	if err := c.get(ctx, accessToken, path, nil, &balance); err != nil {
		return nil, err
	}

	return &balance, nil
}

// ListTransactions fetches the account's transactions, optionally bounded by
// an inclusive [from, to] date window.
func (c *Client) ListTransactions(ctx context.Context, accessToken, accountID string, from, to *time.Time) ([]Transaction, error) {
	query := url.Values{}
	if from != nil {
		query.Set("from_date", from.Format(time.DateOnly))
	}

	if to != nil {
		query.Set("to_date", to.Format(time.DateOnly))
	}

	var transactions []Transaction

	path := "/accounts/" + url.PathEscape(accountID) + "/transactions"
	if err := c.get(ctx, accessToken, path, query, &transactions); err != nil {
		return nil, err
	}

	return transactions, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding provider response: %w", err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var wrapper struct {
		Error Error `json:"error"`
	}

	if err := json.Unmarshal(body, &wrapper); err != nil || wrapper.Error.Code == "" {
		return &Error{
			Code:       "unknown",
			Message:    string(body),
			StatusCode: resp.StatusCode,
		}
	}

	wrapper.Error.StatusCode = resp.StatusCode

	return &wrapper.Error
}
