// Package imagestore talks to the Cloudinary upload API used for
// profile pictures. Only the two calls the profile endpoints need are
// implemented: upload and destroy.
package imagestore

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Client uploads and removes hosted images. Handlers depend on this
// interface so tests can stub the image host.
type Client interface {
	Upload(ctx context.Context, folder, filename string, data io.Reader) (secureURL string, err error)
	Destroy(ctx context.Context, publicID string) error
}

// ErrDisabled is returned when the service runs without image host
// credentials.
var ErrDisabled = errors.New("imagestore: no credentials configured")

// Disabled is the Client used when no credentials are configured.
// Uploads fail with ErrDisabled and destroys are no-ops so profile
// endpoints keep working without the image host.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Destroy(context.Context, string) error { return nil }

// Cloudinary implements Client against the Cloudinary REST API with
// signed requests.
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
	HTTP      *http.Client
}

// New returns a Cloudinary client with a sane request timeout.
func New(cloudName, apiKey, apiSecret string) *Cloudinary {
	return &Cloudinary{
		CloudName: cloudName,
		APIKey:    apiKey,
		APISecret: apiSecret,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

// sign builds the SHA-1 request signature: the sorted parameters
// joined as a query string, with the API secret appended.
func (c *Cloudinary) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(c.APISecret)
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Upload sends an image to Cloudinary and returns its secure URL.
func (c *Cloudinary) Upload(ctx context.Context, folder, filename string, data io.Reader) (string, error) {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	params := map[string]string{"folder": folder, "timestamp": ts}
	signature := c.sign(params)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, data); err != nil {
		return "", err
	}
	_ = mw.WriteField("folder", folder)
	_ = mw.WriteField("timestamp", ts)
	_ = mw.WriteField("api_key", c.APIKey)
	_ = mw.WriteField("signature", signature)
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", c.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("cloudinary upload: status %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: empty secure_url")
	}
	return out.SecureURL, nil
}

// Destroy removes a hosted image by its public ID.
func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	params := map[string]string{"public_id": publicID, "timestamp": ts}
	signature := c.sign(params)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", ts)
	form.Set("api_key", c.APIKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", c.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("cloudinary destroy: status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// PublicIDFromURL extracts the public ID from a Cloudinary delivery
// URL so a stored secure_url can be destroyed later. It takes the path
// after the "upload" segment, skips the version segment (v12345) and
// strips the file extension. An empty string means the URL is not a
// recognizable Cloudinary URL.
func PublicIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	upload := -1
	for i, s := range segs {
		if s == "upload" {
			upload = i
			break
		}
	}
	if upload < 0 || upload+1 >= len(segs) {
		return ""
	}
	rest := segs[upload+1:]
	if len(rest) > 1 && len(rest[0]) > 1 && rest[0][0] == 'v' {
		digits := true
		for _, ch := range rest[0][1:] {
			if ch < '0' || ch > '9' {
				digits = false
				break
			}
		}
		if digits {
			rest = rest[1:]
		}
	}
	id := strings.Join(rest, "/")
	if dot := strings.LastIndex(id, "."); dot > 0 {
		id = id[:dot]
	}
	return id
}
