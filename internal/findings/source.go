package findings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
)

// DefaultTimeout bounds a remote findings fetch.
const DefaultTimeout = 10 * time.Second

// maxDocumentBytes bounds the findings document size.
const maxDocumentBytes = 8 * 1024 * 1024

// ErrMalformedDocument is returned when the findings JSON cannot be decoded.
var ErrMalformedDocument = errors.New("malformed findings document")

// StatusError is returned when a remote source answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Source loads a findings document from a URL or a local file.
type Source struct {
	Location   string
	HTTPClient *http.Client
}

// NewSource creates a Source with the default HTTP timeout.
func NewSource(location string) *Source {
	return &Source{
		Location:   location,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// IsRemote reports whether the location is an http(s) URL.
func (s *Source) IsRemote() bool {
	lower := strings.ToLower(s.Location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load fetches and decodes the document. Remote sources issue one GET.
func (s *Source) Load(ctx context.Context) (*models.FindingsDocument, error) {
	if strings.TrimSpace(s.Location) == "" {
		return nil, fmt.Errorf("findings source is not configured")
	}

	var data []byte
	var err error
	if s.IsRemote() {
		data, err = s.fetch(ctx)
	} else {
		data, err = os.ReadFile(s.Location)
		if err != nil {
			err = fmt.Errorf("read findings file: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch findings: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: s.Location, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read findings response: %w", err)
	}
	return data, nil
}

// Parse decodes a findings document. Missing sections decode as empty.
func Parse(data []byte) (*models.FindingsDocument, error) {
	var doc models.FindingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	doc.Normalize()
	return &doc, nil
}
