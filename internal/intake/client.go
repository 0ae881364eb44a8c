// Package intake submits negative-path feedback forms to a hosted form
// endpoint as multipart/form-data, the same encoding a browser form uses.
package intake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// MaxAttachmentSize is the largest file accepted as an attachment.
const MaxAttachmentSize int64 = 10 << 20

// Submission is one structured complaint. Rating is carried over from the
// rating step as a hidden field.
type Submission struct {
	Name        string
	Email       string
	Phone       string
	ServiceDate string // YYYY-MM-DD, optional
	Feedback    string
	Rating      int
	Attachment  *Attachment
}

// Attachment is an optional uploaded file.
type Attachment struct {
	Filename string
	Data     []byte
}

// FileAttachment reads path into an Attachment.
func FileAttachment(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attachment %s is a directory", path)
	}
	if info.Size() > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment is %d bytes, limit is %d", info.Size(), MaxAttachmentSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	return &Attachment{Filename: filepath.Base(path), Data: data}, nil
}

// Client posts submissions to a fixed endpoint.
type Client struct {
	http     *http.Client
	endpoint string
}

// NewClient creates a Client for endpoint. A non-positive timeout means 30s.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}, endpoint: endpoint}
}

// Endpoint returns the intake URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Submit sends s. A non-2xx answer is returned as an error; callers on the
// feedback path only log it.
func (c *Client) Submit(ctx context.Context, s Submission) error {
	body, contentType, err := encode(s)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build intake request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("intake request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Bool("attachment", s.Attachment != nil).
		Msg("Feedback form submitted")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("intake endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func encode(s Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", s.Name},
		{"email", s.Email},
		{"phone", s.Phone},
		{"service_date", s.ServiceDate},
		{"feedback", s.Feedback},
		{"rating", strconv.Itoa(s.Rating)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if s.Attachment != nil {
		fw, err := mw.CreateFormFile("upload", s.Attachment.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create upload part: %w", err)
		}
		if _, err := fw.Write(s.Attachment.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write upload part: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
