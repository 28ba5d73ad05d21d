package upload

import (
	"context"
	"mime/multipart"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snapcap/tools/errs"
)

// Kind selects the per-endpoint validation profile.
type Kind string

const (
	KindAvatar Kind = "avatar"
	KindPost   Kind = "post"
	KindStory  Kind = "story"
	KindChat   Kind = "chat"
)

const MB = 1 << 20

type profile struct {
	maxBytes int64
	mimes    map[string]string // content type -> media type tag
}

var profiles = map[Kind]profile{
	KindAvatar: {maxBytes: 5 * MB, mimes: imageMimes()},
	KindPost:   {maxBytes: 50 * MB, mimes: avMimes()},
	KindStory:  {maxBytes: 30 * MB, mimes: avMimes()},
	KindChat:   {maxBytes: 25 * MB, mimes: chatMimes()},
}

func imageMimes() map[string]string {
	return map[string]string{
		"image/jpeg": "image",
		"image/png":  "image",
		"image/webp": "image",
		"image/gif":  "image",
	}
}

func avMimes() map[string]string {
	m := imageMimes()
	m["video/mp4"] = "video"
	m["video/quicktime"] = "video"
	m["video/webm"] = "video"
	return m
}

func chatMimes() map[string]string {
	m := avMimes()
	m["audio/mpeg"] = "audio"
	m["audio/ogg"] = "audio"
	m["audio/wav"] = "audio"
	m["application/pdf"] = "file"
	m["application/zip"] = "file"
	return m
}

// Upload is a validated, stored media object.
type Upload struct {
	Key       string `json:"key"` // object key in storage
	URL       string `json:"url"`
	MediaType string `json:"mediaType"` // image|video|audio|file
	Size      int64  `json:"size"`
	MIME      string `json:"mime"`
}

// Validate checks size and MIME against the endpoint profile before any
// storage write.
func Validate(kind Kind, fh *multipart.FileHeader) (mediaType string, err error) {
	p, ok := profiles[kind]
	if !ok {
		return "", errs.NewValidation("unknown upload kind").Wrap()
	}
	if fh.Size > p.maxBytes {
		return "", errs.NewValidation("File too large").Wrap()
	}
	ct := fh.Header.Get("Content-Type")
	mediaType, ok = p.mimes[ct]
	if !ok {
		return "", errs.NewValidation("Unsupported media type").Wrap()
	}
	return mediaType, nil
}

// Store is the managed object storage behind uploads.
type Store interface {
	Put(ctx context.Context, key, contentType string, body multipart.File, size int64) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// Handle validates and forwards one multipart file to storage.
func Handle(c *gin.Context, store Store, kind Kind, field string) (*Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, errs.NewValidation(field + " file is required").Wrap()
	}
	mediaType, err := Validate(kind, fh)
	if err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer f.Close()

	key := objectKey(kind, fh.Filename)
	url, err := store.Put(c.Request.Context(), key, fh.Header.Get("Content-Type"), f, fh.Size)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &Upload{
		Key:       key,
		URL:       url,
		MediaType: mediaType,
		Size:      fh.Size,
		MIME:      fh.Header.Get("Content-Type"),
	}, nil
}

func objectKey(kind Kind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return string(kind) + "/" + uuid.NewString() + ext
}
