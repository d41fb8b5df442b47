package landcover

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultSpaceURL is the hosted asset-mapping model.
const DefaultSpaceURL = "https://theastrophile-kingk-asset-mapping.hf.space"

// Segmenter produces a land-cover distribution for a satellite tile.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image) (*Distribution, error)
}

// GradioClient calls a Gradio app exposing an image -> land-cover endpoint.
type GradioClient struct {
	baseURL string
	apiName string
	http    *http.Client
}

// NewGradioClient creates a client for the app at baseURL (DefaultSpaceURL when empty).
func NewGradioClient(baseURL, apiName string, timeout time.Duration) *GradioClient {
	if baseURL == "" {
		baseURL = DefaultSpaceURL
	}
	if apiName == "" {
		apiName = "predict_image"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &GradioClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiName: strings.TrimPrefix(apiName, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type fileData struct {
	Path string         `json:"path"`
	URL  string         `json:"url,omitempty"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Segment uploads img, runs the prediction and reads the distribution from the result.
func (g *GradioClient) Segment(ctx context.Context, img image.Image) (*Distribution, error) {
	path, err := g.upload(ctx, img)
	if err != nil {
		return nil, err
	}
	eventID, err := g.call(ctx, path)
	if err != nil {
		return nil, err
	}
	data, err := g.result(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return g.distributionFrom(ctx, data)
}

func (g *GradioClient) upload(ctx context.Context, img image.Image) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "tile.png")
	if err != nil {
		return "", err
	}
	if err := png.Encode(part, img); err != nil {
		return "", fmt.Errorf("encode tile: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/gradio_api/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var paths []string
	if err := g.doJSON(req, &paths); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if len(paths) == 0 {
		return "", errors.New("upload: no file path returned")
	}
	return paths[0], nil
}

func (g *GradioClient) call(ctx context.Context, path string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"data": []any{fileData{Path: path, Meta: map[string]any{"_type": "gradio.FileData"}}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/gradio_api/call/"+g.apiName, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		EventID string `json:"event_id"`
	}
	if err := g.doJSON(req, &resp); err != nil {
		return "", fmt.Errorf("call %s: %w", g.apiName, err)
	}
	if resp.EventID == "" {
		return "", fmt.Errorf("call %s: no event id", g.apiName)
	}
	return resp.EventID, nil
}

// result reads the server-sent event stream until the complete or error event.
func (g *GradioClient) result(ctx context.Context, eventID string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/gradio_api/call/"+g.apiName+"/"+eventID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("result: status %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	event := ""
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				var out []json.RawMessage
				if err := json.Unmarshal([]byte(data), &out); err != nil {
					return nil, fmt.Errorf("result: %w", err)
				}
				return out, nil
			case "error":
				return nil, fmt.Errorf("segmentation failed: %s", data)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("result: stream ended without a complete event")
}

// distributionFrom accepts a text block of percentages, a class -> value object,
// or a mask image file, in that order of preference.
func (g *GradioClient) distributionFrom(ctx context.Context, outputs []json.RawMessage) (*Distribution, error) {
	var mask *fileData
	for _, raw := range outputs {
		var text string
		if json.Unmarshal(raw, &text) == nil {
			if d, err := ParseText(text); err == nil {
				return d, nil
			}
			continue
		}
		var fd fileData
		if json.Unmarshal(raw, &fd) == nil && (fd.Path != "" || fd.URL != "") {
			if mask == nil {
				mask = &fd
			}
			continue
		}
		var shares map[string]float64
		if json.Unmarshal(raw, &shares) == nil && len(shares) > 0 {
			var b strings.Builder
			for name, v := range shares {
				fmt.Fprintf(&b, "%s: %f%%\n", name, v)
			}
			if d, err := ParseText(b.String()); err == nil {
				return d, nil
			}
		}
	}
	if mask == nil {
		return nil, errors.New("no usable land-cover output")
	}

	img, err := g.download(ctx, *mask)
	if err != nil {
		return nil, err
	}
	return FromMask(img), nil
}

func (g *GradioClient) download(ctx context.Context, fd fileData) (image.Image, error) {
	link := fd.URL
	if link == "" {
		link = g.baseURL + "/gradio_api/file=" + fd.Path
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download mask: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download mask: status %d", resp.StatusCode)
	}
	return imaging.Decode(resp.Body)
}

func (g *GradioClient) doJSON(req *http.Request, out any) error {
	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, out)
}
