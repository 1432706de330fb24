package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	sheetsScope    = "https://www.googleapis.com/auth/spreadsheets"
	// Data lives in columns A..E: ChatID, Student, Done, Total, LastUpdated.
	valueRange = "A:E"
)

// serviceAccount is the subset of a Google service-account credentials file
// needed for the JWT bearer flow.
type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// Client talks to the Google Sheets values API for a single spreadsheet.
// It performs no retries: any HTTP or auth failure is returned to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sheetID    string
	creds      serviceAccount

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient loads the service-account credentials file and returns a client
// for the given spreadsheet.
func NewClient(sheetID, credsPath string) (*Client, error) {
	data, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds serviceAccount
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, fmt.Errorf("credentials file is missing client_email or private_key")
	}
	if creds.TokenURI == "" {
		creds.TokenURI = "https://oauth2.googleapis.com/token"
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		sheetID:    sheetID,
		creds:      creds,
	}, nil
}

// NewClientForTest builds a client against a fake API and token endpoint.
func NewClientForTest(baseURL, tokenURL, sheetID string, creds []byte) (*Client, error) {
	var sa serviceAccount
	if err := json.Unmarshal(creds, &sa); err != nil {
		return nil, err
	}
	sa.TokenURI = tokenURL
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		sheetID:    sheetID,
		creds:      sa,
	}, nil
}

type scopedClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// token returns a cached access token, exchanging a signed service-account
// JWT for a fresh one when the cache is empty or about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(c.creds.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	now := time.Now()
	claims := scopedClaims{
		Scope: sheetsScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.creds.ClientEmail,
			Audience:  jwt.ClaimStrings{c.creds.TokenURI},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token exchange failed: %d - %s", resp.StatusCode, string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned an empty token")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// FetchAll returns every row of the sheet, header included, as cell text.
func (c *Client) FetchAll(ctx context.Context) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s", c.baseURL, c.sheetID, valueRange)

	var result struct {
		Values [][]string `json:"values"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}
	return result.Values, nil
}

// UpdateRow overwrites one row in place. rowIndex is 1-based; row 1 is the
// header, so data rows start at 2.
func (c *Client) UpdateRow(ctx context.Context, rowIndex int, cols ...string) error {
	if rowIndex < 1 {
		return fmt.Errorf("invalid row index %d", rowIndex)
	}
	endpoint := fmt.Sprintf("%s/%s/values/A%d:E%d?valueInputOption=RAW", c.baseURL, c.sheetID, rowIndex, rowIndex)
	return c.do(ctx, http.MethodPut, endpoint, valuesBody(cols), nil)
}

// AppendRow adds a row after the last row of the table.
func (c *Client) AppendRow(ctx context.Context, cols ...string) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=RAW", c.baseURL, c.sheetID, valueRange)
	return c.do(ctx, http.MethodPost, endpoint, valuesBody(cols), nil)
}

func valuesBody(cols []string) map[string]interface{} {
	row := make([]interface{}, len(cols))
	for i, col := range cols {
		row[i] = col
	}
	return map[string]interface{}{"values": []interface{}{row}}
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, result interface{}) error {
	accessToken, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sheets API error: %d - %s", resp.StatusCode, string(data))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode sheets response: %w", err)
		}
	}
	return nil
}
