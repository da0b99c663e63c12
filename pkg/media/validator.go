package media

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes is the upload ceiling (5 MiB).
const DefaultMaxBytes int64 = 5 * 1024 * 1024

var ErrRejected = errors.New("media rejected")

// RejectedError explains why an upload was refused before decoding.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

func reject(format string, args ...any) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

// ImageExtensions is the allow-list for avatar and cover uploads.
var ImageExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true}

// PostExtensions is the allow-list handed to the posts service, which owns post
// uploads and calls NewPostValidator. Nothing in this module uploads posts.
var PostExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "mp4": true}

// sniffed content types accepted per extension family
var extensionMIME = map[string][]string{
	"jpg":  {"image/jpeg", "image/png"},
	"jpeg": {"image/jpeg", "image/png"},
	"png":  {"image/png", "image/jpeg"},
	"mp4":  {"video/mp4"},
}

// Validator checks name, extension, size and content family, in that order,
// without decoding anything.
type Validator struct {
	Allowed  map[string]bool
	MaxBytes int64
}

func NewImageValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{Allowed: ImageExtensions, MaxBytes: maxBytes}
}

// NewPostValidator is the post-upload counterpart of NewImageValidator; mp4 passes
// validation only, since the derivation pipeline handles images alone.
func NewPostValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{Allowed: PostExtensions, MaxBytes: maxBytes}
}

// Accepted describes a file that passed validation. The reader is rewound.
type Accepted struct {
	Extension string
	Size      int64
	MIME      string
}

func (v *Validator) Validate(filename string, r io.ReadSeeker) (*Accepted, error) {
	if strings.TrimSpace(filename) == "" || r == nil {
		return nil, reject("No selected file")
	}

	ext := Extension(filename)
	if ext == "" || !v.Allowed[ext] {
		return nil, reject("Invalid file type. Only %s allowed.", v.allowedList())
	}

	// Measure the stream itself; client-declared lengths are not trusted.
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, reject("Unable to read file")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, reject("Unable to read file")
	}
	if size > v.MaxBytes {
		return nil, reject("File too large. Max %dMB.", v.MaxBytes/(1024*1024))
	}
	if size == 0 {
		return nil, reject("File is empty")
	}

	mt, err := mimetype.DetectReader(r)
	if _, seekErr := r.Seek(0, io.SeekStart); seekErr != nil {
		return nil, reject("Unable to read file")
	}
	if err != nil {
		return nil, reject("Unable to read file")
	}
	if !mimeAllowed(ext, mt) {
		return nil, reject("File content does not match its extension")
	}

	return &Accepted{Extension: ext, Size: size, MIME: mt.String()}, nil
}

func (v *Validator) allowedList() string {
	exts := make([]string, 0, len(v.Allowed))
	for ext := range v.Allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

func mimeAllowed(ext string, mt *mimetype.MIME) bool {
	for _, m := range extensionMIME[ext] {
		if mt.Is(m) {
			return true
		}
	}
	return false
}
