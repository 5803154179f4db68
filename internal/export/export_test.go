package export

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/snipt/internal/compose"
	"github.com/example/snipt/internal/history"
)

func testPayload(t *testing.T) Payload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	data, err := compose.EncodePNG(img)
	require.NoError(t, err)
	return Payload{Image: img, PNG: data, Filename: "snipt-2025-01-02T03-04-05.png"}
}

func TestGenerateFilename(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 678_000_000, time.UTC)
	assert.Equal(t, "snipt-2025-01-02T03-04-05.png", GenerateFilename("", ts))
	assert.Equal(t, "shot-2025-01-02T03-04-05.png", GenerateFilename("shot", ts))

	local := ts.In(time.FixedZone("X", 2*3600))
	assert.Equal(t, "snipt-2025-01-02T03-04-05.png", GenerateFilename("snipt", local))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Upload ")
	require.NoError(t, err)
	assert.Equal(t, ActionUpload, a)
	_, err = ParseAction("print")
	assert.Error(t, err)
}

func TestClipboardTarget(t *testing.T) {
	var got image.Image
	c := &Clipboard{Write: func(img image.Image) error { got = img; return nil }}
	p := testPayload(t)
	res, err := c.Export(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, ActionCopy, res.Action)
	assert.Same(t, p.Image, got)

	failing := &Clipboard{Write: func(image.Image) error { return errors.New("no display") }}
	_, err = failing.Export(context.Background(), p)
	assert.EqualError(t, err, "no display")
}

func TestFileSaverWritesIntoDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	p := testPayload(t)
	res, err := NewFileSaver(dir).Export(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, p.Filename), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, p.PNG, data)
}

func TestFileSaverCancelled(t *testing.T) {
	dir := t.TempDir()
	for _, choose := range []PathChooser{
		func(context.Context, string) (string, error) { return "", ErrCancelled },
		func(context.Context, string) (string, error) { return "", nil },
	} {
		s := &FileSaver{Dir: dir, Choose: choose}
		_, err := s.Export(context.Background(), testPayload(t))
		assert.ErrorIs(t, err, ErrCancelled)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileSaverUsesChosenPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "custom.png")
	s := &FileSaver{Choose: func(_ context.Context, suggested string) (string, error) {
		assert.True(t, strings.HasPrefix(suggested, "snipt-"))
		return target, nil
	}}
	res, err := s.Export(context.Background(), testPayload(t))
	require.NoError(t, err)
	assert.Equal(t, target, res.Path)
}

func TestPDFSaver(t *testing.T) {
	dir := t.TempDir()
	res, err := NewPDFSaver(dir).Export(context.Background(), testPayload(t))
	require.NoError(t, err)
	assert.Equal(t, ActionPDF, res.Action)
	assert.Equal(t, filepath.Join(dir, "snipt-2025-01-02T03-04-05.pdf"), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	putErr  error
	signErr error
	expires time.Duration
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://storage.example.com/" + *in.Bucket + "/" + *in.Key + "?sig=1"}, nil
}

type memRecorder struct {
	entries []history.Entry
	err     error
}

func (m *memRecorder) Record(_ context.Context, e history.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func TestUploaderPutsUnderUserAndSignsLink(t *testing.T) {
	fake := &fakeS3{}
	rec := &memRecorder{}
	u := newUploader(fake, fake, UploadConfig{Bucket: "screenshots", User: "user-1"})
	u.History = rec

	p := testPayload(t)
	res, err := u.Export(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "user-1/"+p.Filename, *fake.puts[0].Key)
	assert.Equal(t, "image/png", *fake.puts[0].ContentType)
	assert.Equal(t, DefaultLinkTTL, fake.expires)
	assert.Equal(t, ActionUpload, res.Action)
	assert.Contains(t, res.URL, "user-1/"+p.Filename)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, res.URL, rec.entries[0].URL)
	assert.Equal(t, int64(len(p.PNG)), rec.entries[0].Size)
}

func TestUploaderHistoryFailureIsNotFatal(t *testing.T) {
	fake := &fakeS3{}
	u := newUploader(fake, fake, UploadConfig{Bucket: "b", User: "u"})
	u.History = &memRecorder{err: errors.New("disk full")}
	_, err := u.Export(context.Background(), testPayload(t))
	assert.NoError(t, err)
}

func TestUploaderErrors(t *testing.T) {
	p := testPayload(t)

	noUser := newUploader(&fakeS3{}, &fakeS3{}, UploadConfig{Bucket: "b"})
	_, err := noUser.Export(context.Background(), p)
	assert.ErrorIs(t, err, ErrAuthRequired)

	denied := &fakeS3{putErr: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}}
	_, err = newUploader(denied, denied, UploadConfig{Bucket: "b", User: "u"}).Export(context.Background(), p)
	assert.ErrorIs(t, err, ErrAuthRequired)

	offline := &fakeS3{putErr: errors.New("dial tcp: connection refused")}
	_, err = newUploader(offline, offline, UploadConfig{Bucket: "b", User: "u"}).Export(context.Background(), p)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "upload", netErr.Op)

	signFail := &fakeS3{signErr: errors.New("clock skew")}
	_, err = newUploader(signFail, signFail, UploadConfig{Bucket: "b", User: "u"}).Export(context.Background(), p)
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "sign link", netErr.Op)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newUploader(offline, offline, UploadConfig{Bucket: "b", User: "u"}).Export(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}
