// Package keycodec generates and validates human-readable license key
// strings. It is pure computation; persistence and uniqueness against the
// store are the caller's concern beyond the supplied exclusion set.
package keycodec

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Alphabet is the ambiguity-free character set used for generated keys.
// I, O, 0 and 1 are excluded so keys survive being read aloud or retyped.
// The length of 32 divides 256 evenly, so single-byte indexing is unbiased.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const Separator = "-"

type Format string

const (
	// FormatSegmented is the default XXXXX-XXXXX-XXXXX-XXXXX shape.
	FormatSegmented Format = "segmented"
	// FormatUUID produces an uppercase UUID key.
	FormatUUID Format = "uuid"
	// FormatShort produces a compact 8-character key.
	FormatShort Format = "short"
)

const (
	defaultSegments      = 4
	defaultSegmentLength = 5
	shortKeyLength       = 8
)

// Options controls key shape. The zero value yields the default
// 4x5 segmented format with no prefix or suffix.
type Options struct {
	Format        Format
	Segments      int
	SegmentLength int
	Prefix        string
	Suffix        string
}

func (o Options) normalized() Options {
	if o.Format == "" {
		o.Format = FormatSegmented
	}
	if o.Segments <= 0 {
		o.Segments = defaultSegments
	}
	if o.SegmentLength <= 0 {
		o.SegmentLength = defaultSegmentLength
	}
	return o
}

// Generate produces one key string for the given options.
func Generate(opts Options) (string, error) {
	opts = opts.normalized()

	var body string
	switch opts.Format {
	case FormatSegmented:
		segments := make([]string, opts.Segments)
		for i := range segments {
			segment, err := randomFromAlphabet(opts.SegmentLength)
			if err != nil {
				return "", err
			}
			segments[i] = segment
		}
		body = strings.Join(segments, Separator)
	case FormatUUID:
		body = strings.ToUpper(uuid.NewString())
	case FormatShort:
		short, err := randomFromAlphabet(shortKeyLength)
		if err != nil {
			return "", err
		}
		body = short
	default:
		return "", fmt.Errorf("unknown key format %q", opts.Format)
	}

	if opts.Prefix != "" {
		body = opts.Prefix + Separator + body
	}
	if opts.Suffix != "" {
		body = body + Separator + opts.Suffix
	}
	return body, nil
}

// GenerateBatch returns exactly count keys, each unique within the batch
// and against the supplied exclusion set. It loops until count unique keys
// are produced; the attempt cap guards against a pathologically small key
// space (e.g. short format with a huge exclusion set).
func GenerateBatch(count int, opts Options, existing []string) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("batch count must be positive, got %d", count)
	}

	seen := make(map[string]struct{}, len(existing)+count)
	for _, key := range existing {
		seen[key] = struct{}{}
	}

	keys := make([]string, 0, count)
	maxAttempts := count * 100
	for attempts := 0; len(keys) < count; attempts++ {
		if attempts >= maxAttempts {
			return nil, fmt.Errorf("exhausted %d attempts generating %d unique keys", maxAttempts, count)
		}
		key, err := Generate(opts)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

// Pattern returns the validator regexp for a format. Generated keys always
// match their own format's pattern.
func Pattern(opts Options) *regexp.Regexp {
	opts = opts.normalized()

	var body string
	switch opts.Format {
	case FormatUUID:
		body = `[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}`
	case FormatShort:
		body = fmt.Sprintf(`[%s]{%d}`, Alphabet, shortKeyLength)
	default:
		segment := fmt.Sprintf(`[%s]{%d}`, Alphabet, opts.SegmentLength)
		body = segment + fmt.Sprintf(`(?:%s%s){%d}`, Separator, segment, opts.Segments-1)
	}

	if opts.Prefix != "" {
		body = regexp.QuoteMeta(opts.Prefix+Separator) + body
	}
	if opts.Suffix != "" {
		body = body + regexp.QuoteMeta(Separator+opts.Suffix)
	}
	return regexp.MustCompile(`^` + body + `$`)
}

// randomFromAlphabet draws length characters from Alphabet using crypto/rand.
func randomFromAlphabet(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	out := make([]byte, length)
	for i, b := range raw {
		out[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(out), nil
}
