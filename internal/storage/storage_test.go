package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "pen.png", want: "pen.png"},
		{in: "My Photo.JPG", want: "My_Photo.jpg"},
		{in: "../../etc/passwd.png", want: "passwd.png"},
		{in: `C:\Users\me\cat.gif`, want: "cat.gif"},
		{in: "été.webp", want: "t.webp"},
		{in: "???.jpeg", want: "image.jpeg"},
		{in: ".hidden.png", want: "hidden.png"},
		{in: "script.php", wantErr: true},
		{in: "noext", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Sanitize(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrBadName, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSanitize_LongName(t *testing.T) {
	t.Parallel()

	got, err := Sanitize(strings.Repeat("a", 300) + ".png")
	require.NoError(t, err)
	assert.Len(t, got, maxStemLen+len(".png"))
}

func TestStoredName_Disambiguates(t *testing.T) {
	t.Parallel()

	a, err := StoredName("pen.png")
	require.NoError(t, err)
	b, err := StoredName("pen.png")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_pen.png"))
}

func TestLocal_SaveDeleteURL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewLocal(filepath.Join(dir, "images"), "/static/images/")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := s.Save(ctx, "pen.png", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "pen.png", strings.NewReader("two"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	data, err := os.ReadFile(filepath.Join(s.Dir, first))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	assert.Equal(t, "/static/images/"+first, s.URL(first))
	assert.Empty(t, s.URL(""))

	require.NoError(t, s.Delete(ctx, first))
	_, err = os.Stat(filepath.Join(s.Dir, first))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Delete(ctx, first), "deleting a missing file is not an error")
	assert.ErrorIs(t, s.Delete(ctx, "../x.png"), ErrBadName)
}

func TestLocal_RejectsBadExtension(t *testing.T) {
	t.Parallel()

	s, err := NewLocal(t.TempDir(), "/static/images")
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "evil.html", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBadName)
}

func TestContentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/png", ContentType("a.PNG"))
	assert.Equal(t, "image/jpeg", ContentType("a.jpg"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}

func TestS3_URL(t *testing.T) {
	t.Parallel()

	s := &S3{prefix: "images/", publicURL: "https://cdn.example.com"}
	assert.Equal(t, "https://cdn.example.com/images/x.png", s.URL("x.png"))
	assert.Empty(t, s.URL(""))
}
