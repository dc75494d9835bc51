package youtube

import (
	"context"
	"fmt"
	"time"

	yt "github.com/kkdai/youtube/v2"
)

// VideoID extracts the 11-character id from a watch, short or embed url.
// A bare id is returned unchanged.
func VideoID(url string) (string, error) {
	id, err := yt.ExtractVideoID(url)
	if err != nil {
		return "", fmt.Errorf("extract video id from %q: %w", url, err)
	}
	return id, nil
}

// MetadataClient resolves a video's length.
type MetadataClient interface {
	Duration(ctx context.Context, videoID string) (time.Duration, error)
}

// Client looks up video metadata on YouTube.
type Client struct {
	yt *yt.Client
}

func NewClient() *Client {
	return &Client{yt: &yt.Client{}}
}

func (c *Client) Duration(ctx context.Context, videoID string) (time.Duration, error) {
	video, err := c.yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return 0, fmt.Errorf("fetch video %s: %w", videoID, err)
	}
	return video.Duration, nil
}
