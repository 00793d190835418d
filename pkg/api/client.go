// Package api is a thin client for the cloud encoding service's REST API.
// It covers exactly the resource-creation and job-lifecycle endpoints the
// stream mapping workflow needs, unwraps the service's response envelope and
// maps failures to structured errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/errors"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/logger"
)

// DefaultBaseURL is the public endpoint of the encoding service.
const DefaultBaseURL = "https://api.bitmovin.com/v1"

// Options configures a Client.
type Options struct {
	// APIKey authenticates every request (required).
	APIKey string
	// TenantOrgID optionally scopes requests to an organisation of a
	// multi-tenant account.
	TenantOrgID string
	// BaseURL overrides the service endpoint. Defaults to DefaultBaseURL.
	BaseURL string
	// HTTPClient overrides the underlying HTTP client. Defaults to a client
	// with a 30 second timeout.
	HTTPClient *http.Client
	// Logger receives request/response debug logs. Defaults to the standard
	// logger.
	Logger logger.Logger
}

// Client issues requests against the encoding service. Create instances
// using New; the zero value is not usable.
type Client struct {
	apiKey      string
	tenantOrgID string
	baseURL     string
	httpClient  *http.Client
	logger      logger.Logger
}

// New creates a Client from the given options.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New(errors.ValidationError, "API key is required", "", errors.ErrConfigKeyMissing)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger()
	}
	return &Client{
		apiKey:      opts.APIKey,
		tenantOrgID: opts.TenantOrgID,
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
	}, nil
}

// responseEnvelope is the wrapper the service puts around every response.
// Successful responses carry the created resource under data.result; error
// responses carry a code, a message and optionally detail messages.
type responseEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		Result   json.RawMessage `json:"result"`
		Code     int             `json:"code"`
		Message  string          `json:"message"`
		Messages []Message       `json:"messages"`
	} `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.APIError, "Failed to encode request body", errors.ErrAPIRequestFailed)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, errors.APIError, "Failed to create HTTP request", errors.ErrAPIRequestFailed)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.tenantOrgID != "" {
		req.Header.Set("X-Tenant-Org-Id", c.tenantOrgID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Calling encoding service", "api", map[string]interface{}{
		"method": method,
		"path":   path,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.APIError, "Request to the encoding service failed", errors.ErrAPIRequestFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.APIError, "Failed to read response body", errors.ErrAPIResponseInvalid)
	}

	var envelope responseEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return errors.Wrap(err, errors.APIError, "Failed to decode response envelope", errors.ErrAPIResponseInvalid)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details := envelope.Data.Message
		for _, m := range envelope.Data.Messages {
			if m.Type == MessageTypeError {
				details = details + "; " + m.Text
			}
		}
		return errors.New(errors.APIError,
			fmt.Sprintf("The encoding service rejected %s %s (HTTP %d)", method, path, resp.StatusCode),
			details, errors.ErrAPIStatusRejected)
	}

	if out != nil {
		if envelope.Data.Result == nil {
			return errors.New(errors.APIError, "Response did not contain a resource", "", errors.ErrAPIResourceMissing)
		}
		if err := json.Unmarshal(envelope.Data.Result, out); err != nil {
			return errors.Wrap(err, errors.APIError, "Failed to decode resource", errors.ErrAPIResponseInvalid)
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// CreateEncoding creates the root encoding resource.
func (c *Client) CreateEncoding(ctx context.Context, encoding Encoding) (*Encoding, error) {
	out := &Encoding{}
	if err := c.post(ctx, "/encoding/encodings", encoding, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateHTTPInput creates an input resource for an HTTP server hosting the
// source files.
func (c *Client) CreateHTTPInput(ctx context.Context, input HTTPInput) (*HTTPInput, error) {
	out := &HTTPInput{}
	if err := c.post(ctx, "/encoding/inputs/http", input, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateS3Output creates an output resource for an S3 bucket.
func (c *Client) CreateS3Output(ctx context.Context, output S3Output) (*S3Output, error) {
	out := &S3Output{}
	if err := c.post(ctx, "/encoding/outputs/s3", output, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateH264Config creates an H.264 video codec configuration.
func (c *Client) CreateH264Config(ctx context.Context, config H264VideoConfiguration) (*H264VideoConfiguration, error) {
	out := &H264VideoConfiguration{}
	if err := c.post(ctx, "/encoding/configurations/video/h264", config, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAACConfig creates an AAC audio codec configuration.
func (c *Client) CreateAACConfig(ctx context.Context, config AACAudioConfiguration) (*AACAudioConfiguration, error) {
	out := &AACAudioConfiguration{}
	if err := c.post(ctx, "/encoding/configurations/audio/aac", config, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDolbyDigitalConfig creates a Dolby Digital audio codec configuration.
func (c *Client) CreateDolbyDigitalConfig(ctx context.Context, config DolbyDigitalAudioConfiguration) (*DolbyDigitalAudioConfiguration, error) {
	out := &DolbyDigitalAudioConfiguration{}
	if err := c.post(ctx, "/encoding/configurations/audio/dolby-digital", config, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateIngestInputStream adds an ingest input stream to an encoding.
func (c *Client) CreateIngestInputStream(ctx context.Context, encodingID string, stream IngestInputStream) (*IngestInputStream, error) {
	out := &IngestInputStream{}
	path := fmt.Sprintf("/encoding/encodings/%s/input-streams/ingest", encodingID)
	if err := c.post(ctx, path, stream, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAudioMixInputStream adds an audio mix input stream to an encoding.
func (c *Client) CreateAudioMixInputStream(ctx context.Context, encodingID string, stream AudioMixInputStream) (*AudioMixInputStream, error) {
	out := &AudioMixInputStream{}
	path := fmt.Sprintf("/encoding/encodings/%s/input-streams/audio-mix", encodingID)
	if err := c.post(ctx, path, stream, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStream adds a video or audio stream to an encoding.
func (c *Client) CreateStream(ctx context.Context, encodingID string, stream Stream) (*Stream, error) {
	out := &Stream{}
	path := fmt.Sprintf("/encoding/encodings/%s/streams", encodingID)
	if err := c.post(ctx, path, stream, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMP4Muxing adds an MP4 muxing to an encoding.
func (c *Client) CreateMP4Muxing(ctx context.Context, encodingID string, muxing MP4Muxing) (*MP4Muxing, error) {
	out := &MP4Muxing{}
	path := fmt.Sprintf("/encoding/encodings/%s/muxings/mp4", encodingID)
	if err := c.post(ctx, path, muxing, out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartEncoding submits the start request for a fully configured encoding.
func (c *Client) StartEncoding(ctx context.Context, encodingID string) error {
	path := fmt.Sprintf("/encoding/encodings/%s/start", encodingID)
	return c.post(ctx, path, struct{}{}, nil)
}

// EncodingStatus fetches the current status snapshot of a started encoding.
func (c *Client) EncodingStatus(ctx context.Context, encodingID string) (*Task, error) {
	out := &Task{}
	path := fmt.Sprintf("/encoding/encodings/%s/status", encodingID)
	if err := c.get(ctx, path, out); err != nil {
		return nil, err
	}
	return out, nil
}
