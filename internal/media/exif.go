package media

import (
	exif "github.com/dsoprea/go-exif/v3"
)

// MetadataFinding is a privacy-relevant EXIF tag found in an image.
type MetadataFinding struct {
	// Category is "gps", "serial", "author" or "device".
	Category string

	// Tag is the EXIF tag name.
	Tag string

	// Value is the formatted tag value.
	Value string
}

// InspectMetadata lists the EXIF tags in data that disclose where a photo
// was taken, which device took it, or who took it.
// Images without EXIF yield nil.
func InspectMetadata(data []byte) []MetadataFinding {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	var findings []MetadataFinding
	for _, entry := range entries {
		category := classifyTag(entry.TagName)
		if category == "" {
			continue
		}
		findings = append(findings, MetadataFinding{
			Category: category,
			Tag:      entry.TagName,
			Value:    entry.Formatted,
		})
	}
	return findings
}

// classifyTag returns the finding category of an EXIF tag, or "" when the
// tag is not privacy relevant.
func classifyTag(name string) string {
	switch name {
	case "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef", "GPSAltitude":
		return "gps"
	case "SerialNumber", "CameraSerialNumber", "BodySerialNumber", "LensSerialNumber":
		return "serial"
	case "Artist", "Author", "Copyright", "XPAuthor":
		return "author"
	case "Make", "Model", "HostComputer":
		return "device"
	default:
		return ""
	}
}
