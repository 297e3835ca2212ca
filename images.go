package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ImageResponseFormat selects how generated images are returned.
type ImageResponseFormat string

const (
	ImageFormatURL    ImageResponseFormat = "url"
	ImageFormatBase64 ImageResponseFormat = "b64_json"
)

// ImageSize is the edge length of generated images.
type ImageSize string

const (
	ImageSize256  ImageSize = "256x256"
	ImageSize512  ImageSize = "512x512"
	ImageSize1024 ImageSize = "1024x1024"
)

// ImageArguments is the request body of POST /images/generations.
type ImageArguments struct {
	Prompt         string               `json:"prompt"`
	N              *int                 `json:"n,omitempty"`
	ResponseFormat *ImageResponseFormat `json:"response_format,omitempty"`
	Size           *ImageSize           `json:"size,omitempty"`
	User           *string              `json:"user,omitempty"`
}

// NewImageArguments generates one image for prompt with server defaults.
func NewImageArguments(prompt string) ImageArguments {
	return ImageArguments{Prompt: prompt}
}

// WithN asks for n images, 1 to 10.
func (a ImageArguments) WithN(n int) ImageArguments {
	a.N = &n
	return a
}

// WithResponseFormat chooses between hosted URLs and inline base64 payloads.
func (a ImageArguments) WithResponseFormat(format ImageResponseFormat) ImageArguments {
	a.ResponseFormat = &format
	return a
}

// WithSize sets the edge length of every generated image.
func (a ImageArguments) WithSize(size ImageSize) ImageArguments {
	a.Size = &size
	return a
}

// WithUser tags the request with an end-user id for abuse monitoring.
func (a ImageArguments) WithUser(user string) ImageArguments {
	a.User = &user
	return a
}

// imageObject holds either a URL or base64 payload.
type imageObject struct {
	url     string
	b64JSON string
}

func (o *imageObject) UnmarshalJSON(data []byte) error {
	var raw struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.URL == "" && raw.B64JSON == "" {
		return fmt.Errorf("image object has neither url nor b64_json")
	}
	o.url, o.b64JSON = raw.URL, raw.B64JSON
	return nil
}

func (o imageObject) value() string {
	if o.url != "" {
		return o.url
	}
	return o.b64JSON
}

type imageResponse struct {
	Created int64         `json:"created"`
	Data    []imageObject `json:"data"`
}

// CreateImage generates images for args.Prompt and returns their URLs or
// base64 payloads, depending on args.ResponseFormat, in response order.
func (c *Client) CreateImage(ctx context.Context, args ImageArguments) ([]string, error) {
	response, err := doJSON[imageResponse](ctx, c, "create_image", http.MethodPost, "/images/generations", "", args)
	if err != nil {
		return nil, err
	}
	images := make([]string, 0, len(response.Data))
	for _, image := range response.Data {
		images = append(images, image.value())
	}
	return images, nil
}
