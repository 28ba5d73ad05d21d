package upload

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(name string, size int64, contentType string) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{Filename: name, Size: size, Header: h}
}

func TestValidateAcceptsInProfile(t *testing.T) {
	mt, err := Validate(KindAvatar, header("a.png", 2*MB, "image/png"))
	require.NoError(t, err)
	assert.Equal(t, "image", mt)

	mt, err = Validate(KindPost, header("v.mp4", 40*MB, "video/mp4"))
	require.NoError(t, err)
	assert.Equal(t, "video", mt)

	mt, err = Validate(KindChat, header("m.mp3", 10*MB, "audio/mpeg"))
	require.NoError(t, err)
	assert.Equal(t, "audio", mt)
}

func TestValidateRejectsOversize(t *testing.T) {
	_, err := Validate(KindPost, header("big.mp4", 60*MB, "video/mp4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File too large")

	_, err = Validate(KindAvatar, header("big.png", 6*MB, "image/png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File too large")
}

func TestValidateRejectsMIME(t *testing.T) {
	// avatars are images only
	_, err := Validate(KindAvatar, header("v.mp4", 1*MB, "video/mp4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported media type")

	_, err = Validate(KindPost, header("x.exe", 1*MB, "application/octet-stream"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported media type")
}

func TestValidateUnknownKind(t *testing.T) {
	_, err := Validate(Kind("bogus"), header("a.png", 1*MB, "image/png"))
	assert.Error(t, err)
}

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := objectKey(KindStory, "Holiday.MOV")
	assert.Contains(t, key, "story/")
	assert.Contains(t, key, ".mov")
}
