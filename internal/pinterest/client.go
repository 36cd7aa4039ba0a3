// Package pinterest talks to the Pinterest v5 API to publish a single pin:
// resolve-or-create the target board, upload the image, create the pin.
package pinterest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.pinterest.com/v5"
	defaultTimeout = 30 * time.Second

	// Pinterest field limits; longer values are truncated, never rejected.
	maxTitleLength       = 100
	maxDescriptionLength = 800

	// DefaultBoardName is the board pins land on unless configured otherwise.
	DefaultBoardName = "Daily Skincare Finds"

	defaultBoardDescription = "Daily curated skincare products with science-backed benefits"
)

var (
	// ErrBoardResolution means the board could neither be found nor created.
	ErrBoardResolution = errors.New("board resolution failed")

	// ErrImageUpload means registering the upload slot or transferring the
	// image bytes failed.
	ErrImageUpload = errors.New("image upload failed")

	// ErrPinCreation means the final pin creation call failed.
	ErrPinCreation = errors.New("pin creation failed")
)

// State names a position in the publish protocol.
type State string

const (
	StateIdle           State = "idle"
	StateBoardResolving State = "board_resolving"
	StateBoardReady     State = "board_ready"
	StateImageUploading State = "image_uploading"
	StateImageReady     State = "image_ready"
	StatePinCreating    State = "pin_creating"
	StatePublished      State = "published"
	StateFailed         State = "failed"
)

// Attempt tracks one pass through the publish protocol. Discarded after the
// run; nothing is persisted here.
type Attempt struct {
	State   State
	BoardID string
	MediaID string
	PinID   string
	PinURL  string
}

func (a *Attempt) transition(next State) {
	slog.Debug("publish state transition", "from", a.State, "to", next)
	a.State = next
}

func (a *Attempt) fail(stage error, err error) (*Attempt, error) {
	a.transition(StateFailed)
	return a, fmt.Errorf("%w: %v", stage, err)
}

// PublishRequest bundles everything needed to publish one pin.
type PublishRequest struct {
	BoardName     string
	Title         string
	Description   string
	Link          string
	ImagePath     string
	DominantColor string
}

// Client is an authenticated Pinterest v5 API client. A client-side rate
// limiter keeps bursts of runs under the platform's per-token budget.
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	uploadClient *http.Client
	limiter      *rate.Limiter
}

func NewClient(token string) *Client {
	return &Client{
		baseURL:      defaultBaseURL,
		token:        token,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		uploadClient: &http.Client{Timeout: defaultTimeout},
		limiter:      rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// Publish runs the full protocol. There are no retries: the first failure
// moves the attempt to StateFailed and surfaces a typed error naming the
// stage. Orphaned remote state (an uploaded image with no pin) is accepted.
func (c *Client) Publish(ctx context.Context, req PublishRequest) (*Attempt, error) {
	attempt := &Attempt{State: StateIdle}

	boardName := req.BoardName
	if boardName == "" {
		boardName = DefaultBoardName
	}

	attempt.transition(StateBoardResolving)
	boardID, err := c.resolveBoard(ctx, boardName)
	if err != nil {
		return attempt.fail(ErrBoardResolution, err)
	}
	attempt.BoardID = boardID
	attempt.transition(StateBoardReady)

	imageData, err := os.ReadFile(req.ImagePath)
	if err != nil {
		return attempt.fail(ErrImageUpload, fmt.Errorf("read image: %w", err))
	}

	attempt.transition(StateImageUploading)
	mediaID, err := c.uploadImage(ctx, imageData)
	if err != nil {
		return attempt.fail(ErrImageUpload, err)
	}
	attempt.MediaID = mediaID
	attempt.transition(StateImageReady)

	attempt.transition(StatePinCreating)
	pinID, err := c.createPin(ctx, attempt.BoardID, mediaID, req)
	if err != nil {
		return attempt.fail(ErrPinCreation, err)
	}
	attempt.PinID = pinID
	attempt.PinURL = fmt.Sprintf("https://www.pinterest.com/pin/%s/", pinID)
	attempt.transition(StatePublished)

	slog.Info("pin published", "pin_id", pinID, "board_id", attempt.BoardID, "url", attempt.PinURL)
	return attempt, nil
}

type board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listBoardsResponse struct {
	Items []board `json:"items"`
}

// resolveBoard finds an existing board by case-insensitive name match, or
// creates it. Reusing the board id across runs is what makes daily posting
// idempotent at the board level.
func (c *Client) resolveBoard(ctx context.Context, name string) (string, error) {
	var listed listBoardsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/boards", nil, &listed); err != nil {
		return "", fmt.Errorf("list boards: %w", err)
	}

	for _, b := range listed.Items {
		if strings.EqualFold(b.Name, name) {
			slog.Info("reusing existing board", "board_id", b.ID, "name", b.Name)
			return b.ID, nil
		}
	}

	slog.Info("creating board", "name", name)
	payload := map[string]string{
		"name":        name,
		"description": defaultBoardDescription,
		"privacy":     "PUBLIC",
	}
	var created board
	if err := c.doJSON(ctx, http.MethodPost, "/boards", payload, &created); err != nil {
		return "", fmt.Errorf("create board: %w", err)
	}
	return created.ID, nil
}

type registerUploadResponse struct {
	MediaID   string `json:"media_id"`
	UploadURL string `json:"upload_url"`
}

// uploadImage registers an upload slot and transfers the raw JPEG bytes to
// the returned upload URL. Both steps must succeed in order.
func (c *Client) uploadImage(ctx context.Context, imageData []byte) (string, error) {
	var slot registerUploadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/media", map[string]string{"media_type": "image"}, &slot); err != nil {
		return "", fmt.Errorf("register upload: %w", err)
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.UploadURL, bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	putReq.Header.Set("Content-Type", "image/jpeg")

	// The upload URL is pre-signed; no auth header, no rate limit slot.
	resp, err := c.uploadClient.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("transfer image bytes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("byte transfer returned status %d: %s", resp.StatusCode, string(body))
	}

	slog.Info("image uploaded", "media_id", slot.MediaID, "bytes", len(imageData))
	return slot.MediaID, nil
}

type createPinResponse struct {
	ID string `json:"id"`
}

func (c *Client) createPin(ctx context.Context, boardID, mediaID string, req PublishRequest) (string, error) {
	payload := map[string]any{
		"board_id":    boardID,
		"title":       Truncate(req.Title, maxTitleLength),
		"description": Truncate(req.Description, maxDescriptionLength),
		"link":        req.Link,
		"media_source": map[string]string{
			"source_type": "image_upload",
			"media_id":    mediaID,
		},
	}
	if req.DominantColor != "" {
		payload["dominant_color"] = req.DominantColor
	}

	var created createPinResponse
	if err := c.doJSON(ctx, http.MethodPost, "/pins", payload, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// doJSON issues one authenticated API call and decodes a 2xx JSON response
// into out. Non-2xx responses are returned as errors carrying the remote
// payload.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// Truncate caps s at max characters (runes, so multi-byte copy survives).
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
