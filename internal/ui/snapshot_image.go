package ui

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder for snapshot images
	_ "image/jpeg" // register JPEG decoder for snapshot images
	_ "image/png"  // register PNG decoder for snapshot images
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	snapshotImageTimeout  = 3 * time.Second
	maxSnapshotImageBytes = 8 << 20
)

var errEmptyImageRef = errors.New("empty image reference")

// snapshotImageLoader turns the engine's image reference into pixels. The
// engine sends either a base64 data URI or a path relative to its base URL.
type snapshotImageLoader struct {
	baseURL string
	client  *http.Client
}

func newSnapshotImageLoader(baseURL string, client *http.Client) *snapshotImageLoader {
	if client == nil {
		client = &http.Client{Timeout: snapshotImageTimeout}
	}

	return &snapshotImageLoader{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"), client: client}
}

func (l *snapshotImageLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errEmptyImageRef
	}

	var (
		content []byte
		err     error
	)
	if strings.HasPrefix(ref, "data:") {
		content, err = decodeDataURI(ref)
	} else {
		content, err = l.fetch(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot image: %w", err)
	}

	return img, nil
}

func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data uri encoding %q", meta)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxSnapshotImageBytes {
		return nil, fmt.Errorf("image too large")
	}
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}

	return content, nil
}

func (l *snapshotImageLoader) fetch(ctx context.Context, ref string) ([]byte, error) {
	target, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request image: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request image: unexpected status %d", resp.StatusCode)
	}

	return readLimitedBytes(resp.Body)
}

func (l *snapshotImageLoader) resolve(ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse image reference: %w", err)
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	if l.baseURL == "" {
		return "", fmt.Errorf("relative image reference %q without engine url", ref)
	}
	base, err := url.Parse(l.baseURL + "/")
	if err != nil {
		return "", fmt.Errorf("parse engine url: %w", err)
	}

	return base.ResolveReference(parsed).String(), nil
}

func readLimitedBytes(reader io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(reader, maxSnapshotImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(content) > maxSnapshotImageBytes {
		return nil, fmt.Errorf("image too large")
	}

	return content, nil
}
