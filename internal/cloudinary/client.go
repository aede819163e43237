package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Resource types as Cloudinary categorizes stored objects. Video assets
// live under "video", 3D model files under "raw", markers under "image".
const (
	ResourceTypeImage = "image"
	ResourceTypeVideo = "video"
	ResourceTypeRaw   = "raw"
)

const defaultBaseURL = "https://api.cloudinary.com"

type Client struct {
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

type destroyResponse struct {
	Result string `json:"result"`
}

func NewClient(cloudName, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

func (c *Client) APIKey() string {
	return c.apiKey
}

// SignParams computes Cloudinary's request signature: the parameters
// serialized as key=value pairs in key order, joined with '&', with the
// API secret appended, hashed with SHA-1.
func SignParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// SignUpload issues a signature over a fresh timestamp, authorizing one
// direct client upload. The provider recomputes the same signature from
// the timestamp and the shared secret, so the value is single-purpose.
func (c *Client) SignUpload() (signature string, timestamp int64, err error) {
	if c.apiSecret == "" {
		return "", 0, fmt.Errorf("cloudinary api secret is not configured")
	}

	timestamp = time.Now().Unix()
	signature = SignParams(map[string]string{
		"timestamp": strconv.FormatInt(timestamp, 10),
	}, c.apiSecret)
	return signature, timestamp, nil
}

// Destroy deletes a stored object by public id. resourceType must match
// the category the object was uploaded under.
func (c *Client) Destroy(ctx context.Context, publicID, resourceType string) error {
	if c.apiSecret == "" {
		return fmt.Errorf("cloudinary api secret is not configured")
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := SignParams(map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}, c.apiSecret)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/destroy", c.baseURL, c.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("destroy failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result destroyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	// "not found" counts as done: the object is gone either way.
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("destroy failed: %s", result.Result)
	}
	return nil
}

// ResourceTypeFor maps a project asset type to the provider's category.
func ResourceTypeFor(assetType string) string {
	if assetType == "video" {
		return ResourceTypeVideo
	}
	return ResourceTypeRaw
}
