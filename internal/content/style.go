package content

import (
	"errors"
	"fmt"
	"strings"
)

// Style validation errors.
var (
	// ErrInvalidStyle is returned when a style field is out of range.
	ErrInvalidStyle = errors.New("invalid content style")

	// ErrUnknownTone is returned by ParseTone for unknown tone names.
	ErrUnknownTone = errors.New("unknown tone: expected conversational or professional")
)

// Tone is the voice the generated copy is written in.
type Tone int

const (
	// ToneConversational addresses the reader directly in a friendly voice.
	ToneConversational Tone = iota

	// ToneProfessional is neutral and precise.
	ToneProfessional
)

// String returns the tone name.
func (t Tone) String() string {
	if t == ToneProfessional {
		return "professional"
	}
	return "conversational"
}

// describe returns the prompt fragment for the tone.
func (t Tone) describe() string {
	if t == ToneProfessional {
		return "clear, professional and precise"
	}
	return "friendly and conversational, speaking to the reader as \"you\""
}

// ParseTone parses a tone name. Matching is case-insensitive.
func ParseTone(s string) (Tone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conversational", "":
		return ToneConversational, nil
	case "professional":
		return ToneProfessional, nil
	default:
		return ToneConversational, fmt.Errorf("%w: %q", ErrUnknownTone, s)
	}
}

// Style controls the shape of generated bodies.
type Style struct {
	// ParagraphCount is the number of paragraphs requested. Must be >= 1.
	ParagraphCount int

	// WordsPerParagraph is the approximate paragraph length. Must be >= 1.
	WordsPerParagraph int

	// Tone is the voice of the copy.
	Tone Tone

	// MaxTokens caps the completion length. Must be >= 1.
	MaxTokens int

	// Temperature is the sampling temperature in [0, 1].
	Temperature float64
}

// DefaultStyle returns the style used for posts.
func DefaultStyle() Style {
	return Style{
		ParagraphCount:    4,
		WordsPerParagraph: 90,
		Tone:              ToneConversational,
		MaxTokens:         900,
		Temperature:       0.7,
	}
}

// PageStyle returns the style used for static pages.
// Pages ask for more, shorter paragraphs so the layout can build cards
// from paragraphs three onward, and a low temperature keeps them stable
// across runs.
func PageStyle() Style {
	return Style{
		ParagraphCount:    6,
		WordsPerParagraph: 50,
		Tone:              ToneProfessional,
		MaxTokens:         700,
		Temperature:       0.18,
	}
}

// Validate checks every field is in range.
func (s Style) Validate() error {
	switch {
	case s.ParagraphCount < 1:
		return fmt.Errorf("%w: paragraph count must be at least 1, got %d", ErrInvalidStyle, s.ParagraphCount)
	case s.WordsPerParagraph < 1:
		return fmt.Errorf("%w: words per paragraph must be at least 1, got %d", ErrInvalidStyle, s.WordsPerParagraph)
	case s.MaxTokens < 1:
		return fmt.Errorf("%w: max tokens must be at least 1, got %d", ErrInvalidStyle, s.MaxTokens)
	case s.Temperature < 0 || s.Temperature > 1:
		return fmt.Errorf("%w: temperature must be within [0, 1], got %g", ErrInvalidStyle, s.Temperature)
	case s.Tone != ToneConversational && s.Tone != ToneProfessional:
		return fmt.Errorf("%w: unknown tone %d", ErrInvalidStyle, s.Tone)
	}
	return nil
}
