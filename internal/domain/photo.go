package domain

import (
	"net/url"
	"path"
	"strings"
)

// defaultPhotoName names an exported photo whose locator has no path segment.
const defaultPhotoName = "photo.jpg"

// PhotoRef is an opaque locator for a photo (a file:// URL, a content URI,
// or a plain filesystem path). It encodes to and from JSON as a string.
type PhotoRef struct {
	raw string
}

// NewPhotoRef wraps a locator string.
func NewPhotoRef(s string) PhotoRef { return PhotoRef{raw: s} }

// FilePhotoRef returns the file:// locator for an absolute filesystem path.
func FilePhotoRef(p string) PhotoRef {
	u := url.URL{Scheme: "file", Path: p}
	return PhotoRef{raw: u.String()}
}

func (r PhotoRef) String() string { return r.raw }

// IsZero reports whether the reference is empty.
func (r PhotoRef) IsZero() bool { return r.raw == "" }

// Path returns the filesystem path the reference points at. file:// URLs
// yield their path, scheme-less locators are returned unchanged, and other
// schemes yield "" because they cannot be opened locally.
func (r PhotoRef) Path() string {
	u, err := url.Parse(r.raw)
	if err != nil || u.Scheme == "" {
		return r.raw
	}
	if u.Scheme != "file" {
		return ""
	}
	return u.Path
}

// LastPathSegment returns the final segment of the locator's path, or
// "photo.jpg" when there is none.
func (r PhotoRef) LastPathSegment() string {
	p := r.raw
	if u, err := url.Parse(r.raw); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return defaultPhotoName
	}
	return path.Base(p)
}

func (r PhotoRef) MarshalText() ([]byte, error) {
	return []byte(r.raw), nil
}

// UnmarshalText accepts any string. A locator that does not parse as a URL
// decodes to the empty reference rather than failing the whole record.
func (r *PhotoRef) UnmarshalText(b []byte) error {
	s := string(b)
	if _, err := url.Parse(s); err != nil {
		*r = PhotoRef{}
		return nil
	}
	*r = PhotoRef{raw: s}
	return nil
}
