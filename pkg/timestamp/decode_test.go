package timestamp

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_InclusiveBounds(t *testing.T) {
	t.Parallel()
	for _, r := range Rules() {
		if !r.Bounded() {
			continue
		}
		t.Run(r.Slug, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, r.Encoding, Classify(big.NewInt(r.Low)).Encoding)
			assert.Equal(t, r.Encoding, Classify(big.NewInt(r.High)).Encoding)
			assert.NotEqual(t, r.Encoding, Classify(big.NewInt(r.Low-1)).Encoding)
			assert.NotEqual(t, r.Encoding, Classify(big.NewInt(r.High+1)).Encoding)
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		candidate *big.Int
		want      Encoding
	}{
		{name: "ticks 2020", candidate: big.NewInt(637134336000000000), want: DateTimeTicks},
		{name: "filetime 2020", candidate: big.NewInt(132223104000000000), want: WindowsFileTime},
		{name: "webkit 2020", candidate: big.NewInt(13222310400000000), want: WebKit},
		{name: "epoch microseconds 2020", candidate: big.NewInt(1600000000123456), want: EpochMicroseconds},
		{name: "epoch ten microseconds 2020", candidate: big.NewInt(160000000012345), want: EpochTenMicroseconds},
		{name: "epoch milliseconds 2018", candidate: big.NewInt(1541815603966), want: EpochMilliseconds},
		{name: "epoch seconds 2025", candidate: big.NewInt(1735689600), want: EpochSeconds},
		{name: "zero", candidate: big.NewInt(0), want: EpochSeconds},
		{name: "negative", candidate: big.NewInt(-5), want: EpochSeconds},
		{name: "between ticks and filetime", candidate: big.NewInt(300000000000000000), want: EpochSeconds},
		{name: "beyond int64", candidate: new(big.Int).Lsh(big.NewInt(1), 100), want: EpochSeconds},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Classify(tc.candidate).Encoding)
		})
	}
}

func TestRules_Order(t *testing.T) {
	rules := Rules()
	require.Len(t, rules, 7)

	want := []Encoding{DateTimeTicks, WindowsFileTime, WebKit, EpochMicroseconds, EpochTenMicroseconds, EpochMilliseconds, EpochSeconds}
	for i, r := range rules {
		assert.Equal(t, want[i], r.Encoding)
	}
	assert.False(t, rules[6].Bounded())

	// Callers get a copy
	rules[0].Low = 0
	assert.Equal(t, int64(635556672000000000), Rules()[0].Low)
}

func TestDecode(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		candidate *big.Int
		hint      Encoding
		want      string
		encoding  Encoding
		guessed   bool
	}{
		{
			name:      "datetime ticks lower bound",
			candidate: big.NewInt(635556672000000000),
			want:      "2015-01-01T00:00:00.0000000Z",
			encoding:  DateTimeTicks,
			guessed:   true,
		},
		{
			name:      "windows filetime lower bound",
			candidate: big.NewInt(130645440000000000),
			want:      "2015-01-01T00:00:00.0000000Z",
			encoding:  WindowsFileTime,
			guessed:   true,
		},
		{
			name:      "windows filetime keeps 100ns",
			candidate: big.NewInt(130645440000000001),
			want:      "2015-01-01T00:00:00.0000001Z",
			encoding:  WindowsFileTime,
			guessed:   true,
		},
		{
			name:      "webkit upper bound",
			candidate: big.NewInt(13380163200000000),
			want:      "2025-01-01T00:00:00.000000Z",
			encoding:  WebKit,
			guessed:   true,
		},
		{
			name:      "epoch microseconds",
			candidate: big.NewInt(1600000000123456),
			want:      "2020-09-13T12:26:40.123456Z",
			encoding:  EpochMicroseconds,
			guessed:   true,
		},
		{
			name:      "epoch ten microseconds divides by 1e5",
			candidate: big.NewInt(160000000012345),
			want:      "2020-09-13T12:26:40.12345Z",
			encoding:  EpochTenMicroseconds,
			guessed:   true,
		},
		{
			name:      "epoch milliseconds",
			candidate: big.NewInt(1541815603966),
			want:      "2018-11-10T02:06:43.966Z",
			encoding:  EpochMilliseconds,
			guessed:   true,
		},
		{
			name:      "epoch seconds",
			candidate: big.NewInt(1735689600),
			want:      "2025-01-01T00:00:00Z",
			encoding:  EpochSeconds,
			guessed:   true,
		},
		{
			name:      "hint overrides classification",
			candidate: big.NewInt(1735689600),
			hint:      EpochMilliseconds,
			want:      "1970-01-21T02:08:09.600Z",
			encoding:  EpochMilliseconds,
		},
		{
			name:      "hint by slug",
			candidate: big.NewInt(2830650578623),
			hint:      "epoch-milliseconds",
			want:      "2059-09-13T03:49:38.623Z",
			encoding:  EpochMilliseconds,
		},
		{
			name:      "centiseconds only via hint",
			candidate: big.NewInt(173568960012),
			hint:      EpochCentiseconds,
			want:      "2025-01-01T00:00:00.12Z",
			encoding:  EpochCentiseconds,
		},
		{
			name:      "ticks origin",
			candidate: big.NewInt(0),
			hint:      DateTimeTicks,
			want:      "0001-01-01T00:00:00.0000000Z",
			encoding:  DateTimeTicks,
		},
		{
			name:      "before 1970",
			candidate: big.NewInt(-1500),
			hint:      EpochMilliseconds,
			want:      "1969-12-31T23:59:58.500Z",
			encoding:  EpochMilliseconds,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := Decode(tc.candidate, tc.hint)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Instant.String())
			assert.Equal(t, tc.encoding, res.Encoding)
			assert.Equal(t, tc.guessed, res.Guessed)
		})
	}
}

func TestDecode_Precision(t *testing.T) {
	t.Parallel()
	for ms := int64(1700000000000); ms < 1700000000000+2000; ms += 37 {
		res, err := Decode(big.NewInt(ms), "")
		require.NoError(t, err)
		require.Equal(t, EpochMilliseconds, res.Encoding)

		s := res.Instant.String()
		fraction := s[strings.Index(s, ".")+1 : len(s)-1]
		assert.Len(t, fraction, 3, s)
	}

	for sec := int64(0); sec < 1735689600; sec += 86400 * 97 {
		res, err := Decode(big.NewInt(sec), "")
		require.NoError(t, err)
		assert.NotContains(t, res.Instant.String(), ".")
	}
}

func TestDecode_OutOfRange(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		candidate *big.Int
		hint      Encoding
	}{
		{name: "classified as seconds beyond year 9999", candidate: big.NewInt(2830650578623)},
		{name: "first second of year 10000", candidate: big.NewInt(253402300800)},
		{name: "huge", candidate: new(big.Int).Lsh(big.NewInt(1), 100)},
		{name: "before year 1", candidate: big.NewInt(-1), hint: DateTimeTicks},
		{name: "far past seconds", candidate: big.NewInt(-62135596801), hint: EpochSeconds},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := Decode(tc.candidate, tc.hint)
			assert.ErrorIs(t, err, ErrOutOfRange)
			assert.True(t, res.Instant.Time.IsZero())
		})
	}
}

func TestDecode_LastRepresentableSecond(t *testing.T) {
	res, err := Decode(big.NewInt(253402300799), "")
	require.NoError(t, err)
	assert.Equal(t, "9999-12-31T23:59:59Z", res.Instant.String())
}

func TestParseEncoding(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"webkit", "WebKit", " Epoch milliseconds ", "EPOCH-SECONDS", "epoch-centiseconds", "Windows FileTime"} {
		_, err := ParseEncoding(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseEncoding("unix nanoseconds")
	assert.ErrorIs(t, err, ErrUnknownEncoding)

	_, err = Decode(big.NewInt(1), "fortnights")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}
