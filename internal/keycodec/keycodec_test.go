package keycodec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMatchesOwnPattern(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		opts Options
	}{
		{name: "default segmented", opts: Options{}},
		{name: "custom segmented", opts: Options{Format: FormatSegmented, Segments: 6, SegmentLength: 4}},
		{name: "uuid", opts: Options{Format: FormatUUID}},
		{name: "short", opts: Options{Format: FormatShort}},
		{name: "prefixed", opts: Options{Prefix: "DCA"}},
		{name: "suffixed", opts: Options{Suffix: "PRO"}},
		{name: "prefix and suffix", opts: Options{Prefix: "DCA", Suffix: "V2"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			pattern := Pattern(tc.opts)
			for i := 0; i < 50; i++ {
				key, err := Generate(tc.opts)
				require.NoError(t, err)
				assert.Regexp(t, pattern, key)
			}
		})
	}
}

func TestGenerateDefaultShape(t *testing.T) {
	t.Parallel()

	key, err := Generate(Options{})
	require.NoError(t, err)

	segments := strings.Split(key, Separator)
	require.Len(t, segments, 4)
	for _, segment := range segments {
		assert.Len(t, segment, 5)
		for _, r := range segment {
			assert.Contains(t, Alphabet, string(r))
		}
	}
}

func TestGenerateRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := Generate(Options{Format: Format("hex")})
	require.Error(t, err)
}

func TestGenerateBatchUniqueness(t *testing.T) {
	t.Parallel()

	existing, err := GenerateBatch(20, Options{}, nil)
	require.NoError(t, err)
	require.Len(t, existing, 20)

	batch, err := GenerateBatch(50, Options{}, existing)
	require.NoError(t, err)
	require.Len(t, batch, 50)

	seen := make(map[string]struct{}, len(existing))
	for _, key := range existing {
		seen[key] = struct{}{}
	}
	for _, key := range batch {
		_, dup := seen[key]
		assert.False(t, dup, "key %s collides", key)
		seen[key] = struct{}{}
	}
}

func TestGenerateBatchRejectsNonPositiveCount(t *testing.T) {
	t.Parallel()

	_, err := GenerateBatch(0, Options{}, nil)
	require.Error(t, err)
}

func TestChecksumRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := Generate(Options{})
	require.NoError(t, err)

	withChecksum := AddChecksum(key)
	assert.True(t, VerifyChecksum(withChecksum))
	assert.Equal(t, key, StripChecksum(withChecksum))
}

func TestChecksumDetectsTamper(t *testing.T) {
	t.Parallel()

	withChecksum := AddChecksum("ABCDE-FGHJK-LMNPQ-RSTUV")

	tampered := strings.Replace(withChecksum, "ABCDE", "ABCDF", 1)
	assert.False(t, VerifyChecksum(tampered))

	assert.False(t, VerifyChecksum("ABCDE-FGHJK"))
	assert.False(t, VerifyChecksum(""))
	assert.False(t, VerifyChecksum("ABCDE-"))
}

func TestOfflineCodeDeterministic(t *testing.T) {
	t.Parallel()

	codec, err := NewOfflineCodec([]byte("server-side-secret"))
	require.NoError(t, err)

	code := codec.Code("ABCDE-FGHJK-LMNPQ-RSTUV", "HW-01")
	require.Len(t, code, 8)
	assert.Equal(t, code, codec.Code("ABCDE-FGHJK-LMNPQ-RSTUV", "HW-01"))
	assert.True(t, codec.Verify("ABCDE-FGHJK-LMNPQ-RSTUV", "HW-01", code))
}

func TestOfflineCodeSensitiveToInputs(t *testing.T) {
	t.Parallel()

	codec, err := NewOfflineCodec([]byte("server-side-secret"))
	require.NoError(t, err)

	base := codec.Code("ABCDE-FGHJK-LMNPQ-RSTUV", "HW-01")
	assert.NotEqual(t, base, codec.Code("ABCDE-FGHJK-LMNPQ-RSTUW", "HW-01"))
	assert.NotEqual(t, base, codec.Code("ABCDE-FGHJK-LMNPQ-RSTUV", "HW-02"))

	other, err := NewOfflineCodec([]byte("different-secret"))
	require.NoError(t, err)
	assert.NotEqual(t, base, other.Code("ABCDE-FGHJK-LMNPQ-RSTUV", "HW-01"))

	assert.False(t, codec.Verify("ABCDE-FGHJK-LMNPQ-RSTUV", "HW-02", base))
}

func TestNewOfflineCodecRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewOfflineCodec(nil)
	require.Error(t, err)
}
