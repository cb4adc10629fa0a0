// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// Converter extracts plain text from raw document bytes.
// The name carries the file extension used for format dispatch.
type Converter interface {
	Convert(ctx context.Context, raw []byte, name string) (string, error)
}

// TextConverter passes through plain text formats unchanged.
type TextConverter struct{}

// textExtensions are the formats TextConverter accepts. Markdown is
// indexed as-is; its markup survives chunking harmlessly.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
	".log": true,
	"":     true, // extensionless files are assumed to be text
}

// Convert validates the payload is UTF-8 text and returns it.
func (TextConverter) Convert(ctx context.Context, raw []byte, name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !textExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrConversionFailed, name)
	}
	return string(raw), nil
}

// RemoteConverter extracts text by POSTing the document to an external
// conversion service. Used for binary formats like PDF and DOCX.
type RemoteConverter struct {
	serviceURL string
	client     *http.Client
}

// NewRemoteConverter creates a converter that calls the conversion
// service at serviceURL.
func NewRemoteConverter(serviceURL string) *RemoteConverter {
	if serviceURL == "" {
		serviceURL = "http://localhost:8081"
	}
	return &RemoteConverter{
		serviceURL: serviceURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// convertResponse is the conversion service response format.
type convertResponse struct {
	Text  string `json:"text"`
	Pages int    `json:"pages,omitempty"`
	Error string `json:"error,omitempty"`
}

// Convert sends the raw bytes to the conversion service and returns the
// extracted text.
func (c *RemoteConverter) Convert(ctx context.Context, raw []byte, name string) (string, error) {
	reqURL := c.serviceURL + "/convert?name=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: service returned %d", ErrConversionFailed, resp.StatusCode)
	}

	var result convertResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrConversionFailed, result.Error)
	}
	return result.Text, nil
}

// DispatchConverter routes documents to a converter by file extension.
// Text formats are handled inline; everything else goes to the remote
// service when one is configured.
type DispatchConverter struct {
	text   TextConverter
	remote *RemoteConverter
}

// NewDispatchConverter creates the standard format dispatch. remote may
// be nil, in which case binary formats are rejected.
func NewDispatchConverter(remote *RemoteConverter) *DispatchConverter {
	return &DispatchConverter{remote: remote}
}

// Convert extracts text from the document using the converter for its format.
func (d *DispatchConverter) Convert(ctx context.Context, raw []byte, name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if textExtensions[ext] {
		return d.text.Convert(ctx, raw, name)
	}
	if d.remote == nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return d.remote.Convert(ctx, raw, name)
}
