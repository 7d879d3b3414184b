package streams

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/kkdai/youtube/v2"

	"shuffle/internal/services"
)

// YouTube is a Provider backed by the YouTube player API.
type YouTube struct {
	client *youtube.Client
	videos sync.Map // source id -> *youtube.Video
}

var _ Provider = (*YouTube)(nil)

// NewYouTube creates a YouTube provider. A nil httpClient uses the library default.
func NewYouTube(httpClient *http.Client) *YouTube {
	client := &youtube.Client{}
	if httpClient != nil {
		client.HTTPClient = httpClient
	}
	return &YouTube{client: client}
}

// Descriptors lists every format of the video identified by sourceID.
func (y *YouTube) Descriptors(ctx context.Context, sourceID string) ([]Descriptor, error) {
	video, err := y.client.GetVideoContext(ctx, sourceID)
	if err != nil {
		return nil, classifyYouTubeError("descriptors", err)
	}
	y.videos.Store(sourceID, video)

	descriptors := make([]Descriptor, 0, len(video.Formats))
	for _, format := range video.Formats {
		descriptors = append(descriptors, descriptorFromFormat(sourceID, format))
	}
	return descriptors, nil
}

// Open starts streaming the bytes for d.
func (y *YouTube) Open(ctx context.Context, d Descriptor) (io.ReadCloser, int64, error) {
	video, err := y.video(ctx, d.SourceID)
	if err != nil {
		return nil, 0, err
	}
	format, ok := findFormat(video.Formats, d.Itag)
	if !ok {
		return nil, 0, services.Wrap(services.ErrNotFound, "transfer", "open", fmt.Sprintf("itag %d no longer offered", d.Itag), nil)
	}
	stream, size, err := y.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, 0, classifyYouTubeError("open", err)
	}
	return stream, size, nil
}

func (y *YouTube) video(ctx context.Context, sourceID string) (*youtube.Video, error) {
	if cached, ok := y.videos.Load(sourceID); ok {
		return cached.(*youtube.Video), nil
	}
	video, err := y.client.GetVideoContext(ctx, sourceID)
	if err != nil {
		return nil, classifyYouTubeError("open", err)
	}
	y.videos.Store(sourceID, video)
	return video, nil
}

// findFormat returns the first format carrying itag.
func findFormat(formats youtube.FormatList, itag int) (*youtube.Format, bool) {
	matches := formats.Itag(itag)
	if len(matches) == 0 {
		return nil, false
	}
	return &matches[0], true
}

func descriptorFromFormat(sourceID string, f youtube.Format) Descriptor {
	bitrate := f.Bitrate
	if bitrate <= 0 {
		bitrate = f.AverageBitrate
	}
	return Descriptor{
		SourceID:      sourceID,
		Itag:          f.ItagNo,
		MimeType:      f.MimeType,
		Bitrate:       bitrate,
		ContentLength: f.ContentLength,
		AudioOnly:     strings.HasPrefix(strings.ToLower(f.MimeType), "audio/"),
		URL:           f.URL,
	}
}

func classifyYouTubeError(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch {
	case errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return services.Wrap(services.ErrUnplayable, "fetch", operation, "restricted content", err)
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return services.Wrap(services.ErrNotFound, "fetch", operation, "invalid source id", err)
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return services.Wrap(services.ErrUnplayable, "fetch", operation, "not playable", err)
	}

	var codeErr youtube.ErrUnexpectedStatusCode
	if errors.As(err, &codeErr) {
		code := int(codeErr)
		if code == http.StatusTooManyRequests || code >= 500 {
			return services.Wrap(services.ErrConnectivity, "fetch", operation, fmt.Sprintf("provider returned %d", code), err)
		}
		return services.Wrap(services.ErrTransient, "fetch", operation, fmt.Sprintf("provider returned %d", code), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return services.Wrap(services.ErrConnectivity, "fetch", operation, "provider unreachable", err)
	}
	return services.Wrap(services.ErrTransient, "fetch", operation, "", err)
}
