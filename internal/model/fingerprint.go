package model

import (
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// Fingerprint returns a hex SHA3-256 digest of everything a publish writes:
// title, body markup, featured image and tags. The history database compares
// fingerprints to tell an unchanged re-publish from a content update.
//
// imageSource identifies the featured image by the URL it came from. Uploads
// get a new media id on every run, so the source is hashed instead of the id
// when it is known. An empty descriptor body yields "".
func Fingerprint(d PageDescriptor, imageSource string) string {
	if d.BodyHTML == "" {
		return ""
	}
	image := imageSource
	if image == "" {
		image = d.Image.String()
	}

	h := sha3.New256()
	// Length prefixes keep ("ab", "c") and ("a", "bc") apart.
	write := func(s string) {
		_, _ = h.Write([]byte(strconv.Itoa(len(s)) + ":" + s))
	}
	write(d.Title)
	write(d.BodyHTML)
	write(image)
	for _, tag := range d.Tags {
		write(tag)
	}
	return hex.EncodeToString(h.Sum(nil))
}
