// Package media is the outbound adapter for the Cloudinary media host. It
// implements ports.MediaClient on top of the instrumented httpclient, so
// every call is rate limited, retried, traced and guarded by a breaker.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/config"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/httpclient"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var (
	_ ports.MediaClient   = (*Client)(nil)
	_ ports.HealthChecker = (*Client)(nil)
)

// Client talks to the Cloudinary upload and admin APIs.
type Client struct {
	http      *httpclient.Client
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Client. Missing credentials are not an error here: uploads
// then fail with a configuration error and the health check reports it.
func New(cfg *config.MediaConfig, client *httpclient.Client, logger *slog.Logger) *Client {
	return &Client{
		http:      client,
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		folder:    cfg.Folder,
		logger:    logger,
		now:       time.Now,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Bytes     int64  `json:"bytes"`
	Format    string `json:"format"`
}

type destroyResponse struct {
	Result string `json:"result"`
}

// Upload implements ports.MediaClient with a signed multipart upload.
func (c *Client) Upload(ctx context.Context, data []byte, opts ports.UploadOptions) (*ports.UploadResult, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError("image", "file is empty")
	}

	params := map[string]string{"timestamp": c.timestamp()}
	if opts.Folder != "" {
		params["folder"] = opts.Folder
	}
	if opts.PublicID != "" {
		params["public_id"] = opts.PublicID
	}
	if opts.Transformation != "" {
		params["transformation"] = opts.Transformation
	}
	params["signature"] = sign(params, c.apiSecret)
	params["api_key"] = c.apiKey

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("writing upload field %s: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile("file", "upload")
	if err != nil {
		return nil, fmt.Errorf("creating upload part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing upload part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing upload body: %w", err)
	}

	// Uploads are sent once: a replay would store a second asset.
	var out uploadResponse
	if err := c.do(httpclient.NoRetry(ctx), http.MethodPost, c.apiPath("image/upload"), &body, mw.FormDataContentType(), &out); err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "image uploaded",
		slog.String("public_id", out.PublicID),
		slog.Int64("bytes", out.Bytes),
	)
	return &ports.UploadResult{
		SecureURL: out.SecureURL,
		PublicID:  out.PublicID,
		Bytes:     out.Bytes,
		Format:    out.Format,
	}, nil
}

// Delete implements ports.MediaClient. A missing asset is not an error.
func (c *Client) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if err := c.checkConfigured(); err != nil {
		return err
	}

	params := map[string]string{
		"public_id": publicID,
		"timestamp": c.timestamp(),
	}
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("signature", sign(params, c.apiSecret))
	form.Set("api_key", c.apiKey)

	var out destroyResponse
	err := c.do(ctx, http.MethodPost, c.apiPath("image/destroy"),
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out)
	if err != nil {
		return fmt.Errorf("deleting image %s: %w", publicID, err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "image deleted",
		slog.String("public_id", publicID),
		slog.String("result", out.Result),
	)
	return nil
}

// PublicIDFromURL implements ports.MediaClient.
func (c *Client) PublicIDFromURL(rawURL string) string {
	return PublicIDFromURL(rawURL, c.folder)
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string {
	return "cloudinary"
}

// HealthCheck reports missing credentials or an open breaker without a
// network call, and otherwise pings the admin API.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.checkConfigured(); err != nil {
		return err
	}
	if err := c.http.BreakerHealth(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.http.BaseURL()+c.apiPath("ping"), http.NoBody)
	if err != nil {
		return fmt.Errorf("building ping request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return translateError(resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.http.BaseURL()+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		err := translateError(resp)
		c.logger.LogAttrs(ctx, slog.LevelError, "media host request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", err),
		)
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("decoding media host response: %w", err)
	}
	return nil
}

func (c *Client) checkConfigured() error {
	switch {
	case c.cloudName == "":
		return missing("CLOUDINARY_CLOUD_NAME")
	case c.apiKey == "":
		return missing("CLOUDINARY_API_KEY")
	case c.apiSecret == "":
		return missing("CLOUDINARY_API_SECRET")
	}
	return nil
}

func missing(setting string) error {
	return &domain.ConfigurationError{Setting: setting, Reason: "environment variable is not defined"}
}

func (c *Client) apiPath(action string) string {
	return "/v1_1/" + url.PathEscape(c.cloudName) + "/" + action
}

func (c *Client) timestamp() string {
	return strconv.FormatInt(c.now().Unix(), 10)
}
