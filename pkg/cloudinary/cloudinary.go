package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Uploader stores images and returns their delivery URL.
type Uploader interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, error)
}

// Doctor portraits are delivered square, face-centred.
const (
	PortraitSize  = 400
	portraitEager = "q_auto,f_auto,w_400,h_400,c_fill,g_face"
)

// PortraitURL builds the delivery URL for an uploaded public ID.
func PortraitURL(cloudName, publicID string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,h_%d,c_fill,g_face/%s",
		cloudName, PortraitSize, PortraitSize, publicID)
}

type client struct {
	cloudName string
	uploader  *uploader.API
}

func NewFromParams(cloudName, apiKey, apiSecret string) (Uploader, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &client{cloudName: cloudName, uploader: up}, nil
}

func (c *client) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	overwrite := true
	eagerAsync := false
	res, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Overwrite:  &overwrite,
		Eager:      portraitEager,
		EagerAsync: &eagerAsync,
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", res.Error.Message)
	}
	if len(res.Eager) > 0 && res.Eager[0].SecureURL != "" {
		return res.Eager[0].SecureURL, nil
	}
	return PortraitURL(c.cloudName, res.PublicID), nil
}
