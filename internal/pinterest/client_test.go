package pinterest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a scriptable stand-in for the Pinterest v5 API plus its
// pre-signed upload endpoint.
type fakeAPI struct {
	server *httptest.Server

	boards             []board
	failCreateBoard    bool
	failListBoards     bool
	failRegisterUpload bool
	failByteTransfer   bool
	failCreatePin      bool

	createBoardCalls int
	uploadCalls      int
	createPinCalls   int
	pinPayload       map[string]any
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /boards", func(w http.ResponseWriter, r *http.Request) {
		if api.failListBoards {
			http.Error(w, `{"message": "internal error"}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(listBoardsResponse{Items: api.boards})
	})
	mux.HandleFunc("POST /boards", func(w http.ResponseWriter, r *http.Request) {
		api.createBoardCalls++
		if api.failCreateBoard {
			http.Error(w, `{"message": "board quota exceeded"}`, http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(board{ID: "board-new", Name: "Daily Skincare Finds"})
	})
	mux.HandleFunc("POST /media", func(w http.ResponseWriter, r *http.Request) {
		if api.failRegisterUpload {
			http.Error(w, `{"message": "media unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(registerUploadResponse{
			MediaID:   "media-123",
			UploadURL: api.server.URL + "/uploads/media-123",
		})
	})
	mux.HandleFunc("PUT /uploads/media-123", func(w http.ResponseWriter, r *http.Request) {
		api.uploadCalls++
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		if api.failByteTransfer {
			http.Error(w, "signature mismatch", http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /pins", func(w http.ResponseWriter, r *http.Request) {
		api.createPinCalls++
		if api.failCreatePin {
			http.Error(w, `{"message": "invalid link"}`, http.StatusBadRequest)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&api.pinPayload)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createPinResponse{ID: "pin-789"})
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func (api *fakeAPI) client() *Client {
	c := NewClient("test-token")
	c.baseURL = api.server.URL
	return c
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pin.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0644))
	return path
}

func testRequest(imagePath string) PublishRequest {
	return PublishRequest{
		BoardName:     "Daily Skincare Finds",
		Title:         "The Ordinary Niacinamide Serum",
		Description:   "Glow up! #Skincare",
		Link:          "https://www.amazon.com/dp/B07NCRQL81/?tag=wellnesslabco-20",
		ImagePath:     imagePath,
		DominantColor: "#FFE5E5",
	}
}

func TestPublishReusesExistingBoard(t *testing.T) {
	api := newFakeAPI(t)
	api.boards = []board{
		{ID: "board-1", Name: "Recipes"},
		{ID: "board-2", Name: "Daily Skincare Finds"},
	}

	attempt, err := api.client().Publish(context.Background(), testRequest(writeTestImage(t)))
	require.NoError(t, err)

	assert.Equal(t, StatePublished, attempt.State)
	assert.Equal(t, "board-2", attempt.BoardID)
	assert.Zero(t, api.createBoardCalls, "create-board must not be called when the board exists")
}

func TestPublishBoardMatchIsCaseInsensitive(t *testing.T) {
	api := newFakeAPI(t)
	api.boards = []board{{ID: "board-2", Name: "daily skincare finds"}}

	attempt, err := api.client().Publish(context.Background(), testRequest(writeTestImage(t)))
	require.NoError(t, err)
	assert.Equal(t, "board-2", attempt.BoardID)
	assert.Zero(t, api.createBoardCalls)
}

func TestPublishCreatesBoardWhenMissing(t *testing.T) {
	api := newFakeAPI(t)

	attempt, err := api.client().Publish(context.Background(), testRequest(writeTestImage(t)))
	require.NoError(t, err)

	assert.Equal(t, 1, api.createBoardCalls)
	assert.Equal(t, "board-new", attempt.BoardID)
	assert.Equal(t, "media-123", attempt.MediaID)
	assert.Equal(t, "pin-789", attempt.PinID)
	assert.Equal(t, "https://www.pinterest.com/pin/pin-789/", attempt.PinURL)
}

func TestPublishBoardCreationFailureIsFatal(t *testing.T) {
	api := newFakeAPI(t)
	api.failCreateBoard = true

	attempt, err := api.client().Publish(context.Background(), testRequest(writeTestImage(t)))
	assert.ErrorIs(t, err, ErrBoardResolution)
	assert.Equal(t, StateFailed, attempt.State)
	assert.Zero(t, api.uploadCalls)
	assert.Zero(t, api.createPinCalls)
}

func TestPublishBoardListFailureIsFatal(t *testing.T) {
	api := newFakeAPI(t)
	api.failListBoards = true

	attempt, err := api.client().Publish(context.Background(), testRequest(writeTestImage(t)))
	assert.ErrorIs(t, err, ErrBoardResolution)
	assert.Equal(t, StateFailed, attempt.State)
}

func TestPublishRegisterUploadFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.failRegisterUpload = true

	attempt, err := api.client().Publish(context.Background(), testRequest(writeTestImage(t)))
	assert.ErrorIs(t, err, ErrImageUpload)
	assert.Equal(t, StateFailed, attempt.State)
	assert.Empty(t, attempt.MediaID)
	assert.Zero(t, api.createPinCalls)
}

func TestPublishByteTransferFailureStopsBeforePinCreation(t *testing.T) {
	api := newFakeAPI(t)
	api.failByteTransfer = true

	attempt, err := api.client().Publish(context.Background(), testRequest(writeTestImage(t)))
	assert.ErrorIs(t, err, ErrImageUpload)
	assert.Equal(t, StateFailed, attempt.State)
	assert.Empty(t, attempt.MediaID, "failed upload must leave no media reference")
	assert.Zero(t, api.createPinCalls, "pin creation must not be attempted after a failed upload")
}

func TestPublishPinCreationFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.failCreatePin = true

	attempt, err := api.client().Publish(context.Background(), testRequest(writeTestImage(t)))
	assert.ErrorIs(t, err, ErrPinCreation)
	assert.Equal(t, StateFailed, attempt.State)
	assert.Equal(t, "media-123", attempt.MediaID)
	assert.Empty(t, attempt.PinID)
}

func TestPublishMissingImageFile(t *testing.T) {
	api := newFakeAPI(t)

	req := testRequest(filepath.Join(t.TempDir(), "missing.jpg"))
	attempt, err := api.client().Publish(context.Background(), req)
	assert.ErrorIs(t, err, ErrImageUpload)
	assert.Equal(t, StateFailed, attempt.State)
	assert.Zero(t, api.uploadCalls)
}

func TestPublishTruncatesTitleAndDescription(t *testing.T) {
	api := newFakeAPI(t)

	req := testRequest(writeTestImage(t))
	req.Title = strings.Repeat("t", 150)
	req.Description = strings.Repeat("d", 1000)

	_, err := api.client().Publish(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, api.pinPayload)
	assert.Len(t, api.pinPayload["title"], 100)
	assert.Len(t, api.pinPayload["description"], 800)
	assert.Equal(t, req.Link, api.pinPayload["link"])
	assert.Equal(t, "#FFE5E5", api.pinPayload["dominant_color"])

	media, ok := api.pinPayload["media_source"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "image_upload", media["source_type"])
	assert.Equal(t, "media-123", media["media_id"])
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		max      int
		expected string
	}{
		{name: "short string untouched", in: "hello", max: 10, expected: "hello"},
		{name: "exact length untouched", in: "hello", max: 5, expected: "hello"},
		{name: "long string cut", in: "hello world", max: 5, expected: "hello"},
		{name: "multi-byte safe", in: "✨✨✨✨", max: 2, expected: "✨✨"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.in, tt.max))
		})
	}
}
