package moderation

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"talksy/errors"
)

const maskChar = '*'

// Moderator masks forbidden words in message text before they are stored
// or fanned out. Matching is case-insensitive and ignores punctuation and
// whitespace inside a word, so "b.a.d" still matches "bad".
type Moderator struct {
	matcher *goahocorasick.Machine
}

func NewModerator(words []string) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if p := fold([]rune(word)); len(p) > 0 {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	matcher := new(goahocorasick.Machine)
	if err := matcher.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: matcher}, nil
}

// LoadWords reads one forbidden word per line, skipping blanks and
// #-comments.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

// Censor returns the text with every match masked. Positions are tracked
// through folding so the mask lands on the original characters, noise
// included.
func (m *Moderator) Censor(text string) string {
	original := []rune(text)
	folded := make([]rune, 0, len(original))
	positions := make([]int, 0, len(original))

	for i, r := range original {
		if isNoise(r) {
			continue
		}
		folded = append(folded, unicode.ToLower(r))
		positions = append(positions, i)
	}
	if len(folded) == 0 {
		return text
	}

	matches := m.matcher.MultiPatternSearch(folded, false)
	if len(matches) == 0 {
		return text
	}

	for _, match := range matches {
		end := match.Pos + len(match.Word)
		if match.Pos < 0 || end > len(positions) {
			continue
		}
		for i := positions[match.Pos]; i <= positions[end-1]; i++ {
			original[i] = maskChar
		}
	}
	return string(original)
}

func fold(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if isNoise(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r)
}
