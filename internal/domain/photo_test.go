package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/journeylog/internal/domain"
)

func TestPhotoRef_LastPathSegment(t *testing.T) {
	cases := map[string]string{
		"file:///data/photos/IMG_001.jpg":            "IMG_001.jpg",
		"content://media/external/images/media/1234": "1234",
		"/var/tmp/beach.png":                         "beach.png",
		"relative/dir/":                              "dir",
		"":                                           "photo.jpg",
	}
	for in, want := range cases {
		assert.Equal(t, want, domain.NewPhotoRef(in).LastPathSegment(), "input %q", in)
	}
}

func TestPhotoRef_Path(t *testing.T) {
	assert.Equal(t, "/data/a.jpg", domain.NewPhotoRef("file:///data/a.jpg").Path())
	assert.Equal(t, "/data/a.jpg", domain.NewPhotoRef("/data/a.jpg").Path())
	assert.Equal(t, "", domain.NewPhotoRef("https://example.com/a.jpg").Path())
	assert.Equal(t, "/data/a b.jpg", domain.FilePhotoRef("/data/a b.jpg").Path())
}

// TestPhotoRef_UnmarshalInvalid verifies that an unparseable locator decodes
// to the empty reference instead of failing the whole record.
func TestPhotoRef_UnmarshalInvalid(t *testing.T) {
	var refs []domain.PhotoRef
	require.NoError(t, json.Unmarshal([]byte(`["file:///ok.jpg", "%zz"]`), &refs))

	require.Len(t, refs, 2)
	assert.Equal(t, "file:///ok.jpg", refs[0].String())
	assert.True(t, refs[1].IsZero())
}
