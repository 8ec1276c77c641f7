package whatsapp

import (
	"context"
	"net/http"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/retry"
	"github.com/Abraxas-365/wacloud/transport"
)

// Upload describes a file to upload to the media endpoint
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}

type UploadResponse struct {
	ID string `json:"id"`
}

// MediaInfo is the metadata of uploaded or received media. URL is short-lived.
type MediaInfo struct {
	MessagingProduct string `json:"messaging_product"`
	ID               string `json:"id"`
	URL              string `json:"url"`
	MimeType         string `json:"mime_type"`
	SHA256           string `json:"sha256"`
	FileSize         int64  `json:"file_size"`
}

// UploadMedia uploads a file and returns its media ID for use in media messages
func (c *Client) UploadMedia(ctx context.Context, up Upload) (string, error) {
	if len(up.Data) == 0 {
		return "", Registry.New(ErrMissingContent, errx.WithField("data"))
	}
	if up.MimeType == "" {
		return "", errx.Validation("mime_type", "media MIME type is required")
	}
	if up.Filename == "" {
		up.Filename = "file"
	}

	form := transport.NewForm().
		AddField("messaging_product", "whatsapp").
		AddField("type", up.MimeType).
		AddFile("file", up.Filename, up.MimeType, up.Data)

	var resp UploadResponse
	err := c.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.cfg.PhoneNumberID + "/media",
		Form:   form,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", Registry.New(ErrEmptyResponse, errx.WithDetail("operation", "upload_media"))
	}
	return resp.ID, nil
}

// GetMedia returns the metadata and download URL of a media object
func (c *Client) GetMedia(ctx context.Context, mediaID string) (*MediaInfo, error) {
	if mediaID == "" {
		return nil, errx.Validation("media_id", "media ID is required")
	}

	var info MediaInfo
	if err := c.do(ctx, transport.Request{Method: http.MethodGet, Path: mediaID}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DownloadMedia resolves mediaID and downloads its content
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, *MediaInfo, error) {
	info, err := c.GetMedia(ctx, mediaID)
	if err != nil {
		return nil, nil, err
	}
	if info.URL == "" {
		return nil, info, Registry.New(ErrEmptyResponse, errx.WithDetail("operation", "get_media"))
	}

	data, err := retry.DoWithResult(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.api.Download(ctx, info.URL)
	})
	if err != nil {
		return nil, info, err
	}
	return data, info, nil
}

// DeleteMedia deletes uploaded media
func (c *Client) DeleteMedia(ctx context.Context, mediaID string) error {
	if mediaID == "" {
		return errx.Validation("media_id", "media ID is required")
	}

	var resp successResponse
	return c.do(ctx, transport.Request{Method: http.MethodDelete, Path: mediaID}, &resp)
}
