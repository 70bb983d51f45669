package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ImageKind identifies which variant of ImageReference is active.
type ImageKind int

const (
	// ImageKindNone is the zero value; no image has been resolved yet.
	ImageKindNone ImageKind = iota

	// ImageKindMedia is an image uploaded into the CMS media library.
	// The CMS owns its lifetime from the upload onward; deleting the page
	// that features it does not delete the media item.
	ImageKindMedia

	// ImageKindExternal is a link to an image hosted by a third party.
	// Its lifetime is controlled by that third party.
	ImageKindExternal
)

// String returns the kind name used in logs, reports and the history database.
func (k ImageKind) String() string {
	switch k {
	case ImageKindMedia:
		return "media"
	case ImageKindExternal:
		return "external"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ImageKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ImageKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "media":
		*k = ImageKindMedia
	case "external":
		*k = ImageKindExternal
	case "none", "":
		*k = ImageKindNone
	default:
		return fmt.Errorf("unknown image kind %q", string(text))
	}
	return nil
}

// Image reference validation errors.
var (
	// ErrImageUnset is returned when no image variant is active.
	ErrImageUnset = errors.New("image reference is unset")

	// ErrImageAmbiguous is returned when both or neither variant fields are set
	// for the declared kind.
	ErrImageAmbiguous = errors.New("image reference must set exactly one of media id or url")
)

// ImageReference points at the featured image of a page.
// Exactly one of MediaID (for ImageKindMedia) or URL (for ImageKindExternal)
// is set; use NewMediaImage or NewExternalImage to build one.
type ImageReference struct {
	// Kind selects the active variant.
	Kind ImageKind `json:"kind"`

	// MediaID is the CMS media id when Kind is ImageKindMedia.
	MediaID int64 `json:"media_id,omitempty"`

	// URL is the external image URL when Kind is ImageKindExternal.
	URL string `json:"url,omitempty"`
}

// NewMediaImage returns a reference to an image owned by the CMS.
func NewMediaImage(id int64) ImageReference {
	return ImageReference{Kind: ImageKindMedia, MediaID: id}
}

// NewExternalImage returns a reference to a third-party hosted image.
func NewExternalImage(url string) ImageReference {
	return ImageReference{Kind: ImageKindExternal, URL: url}
}

// IsMedia reports whether the reference points into the CMS media library.
func (r ImageReference) IsMedia() bool {
	return r.Kind == ImageKindMedia
}

// IsExternal reports whether the reference is an external URL.
func (r ImageReference) IsExternal() bool {
	return r.Kind == ImageKindExternal
}

// Validate checks that exactly one variant is active.
func (r ImageReference) Validate() error {
	switch r.Kind {
	case ImageKindMedia:
		if r.MediaID <= 0 || r.URL != "" {
			return ErrImageAmbiguous
		}
	case ImageKindExternal:
		if r.URL == "" || r.MediaID != 0 {
			return ErrImageAmbiguous
		}
	default:
		return ErrImageUnset
	}
	return nil
}

// String returns a short description such as "media#42" or the external URL.
func (r ImageReference) String() string {
	switch r.Kind {
	case ImageKindMedia:
		return fmt.Sprintf("media#%d", r.MediaID)
	case ImageKindExternal:
		return r.URL
	default:
		return "none"
	}
}

// imageReferenceJSON mirrors ImageReference for decoding so that
// UnmarshalJSON can validate without recursing.
type imageReferenceJSON struct {
	Kind    ImageKind `json:"kind"`
	MediaID int64     `json:"media_id,omitempty"`
	URL     string    `json:"url,omitempty"`
}

// UnmarshalJSON decodes a reference and rejects payloads with both variants set.
func (r *ImageReference) UnmarshalJSON(data []byte) error {
	var raw imageReferenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ref := ImageReference(raw)
	if ref.Kind != ImageKindNone {
		if err := ref.Validate(); err != nil {
			return err
		}
	}
	*r = ref
	return nil
}
