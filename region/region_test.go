package region

import (
	"strings"
	"testing"

	"github.com/WSU-CptS-581-2025/black-code-formatter/directive"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	as := require.New(t)

	r, err := Parse("2-9")
	as.NoError(err)
	as.Equal(Region{Start: 2, End: 9}, r)

	r, err = Parse("5-5")
	as.NoError(err)
	as.Equal(Region{Start: 5, End: 5}, r)

	for _, arg := range []string{"9", "a-b", "1-", "-3", "9-2", "0-4"} {
		_, err = Parse(arg)
		as.ErrorIs(err, ErrInvalidRange, "expected %q to be rejected", arg)
	}
}

func TestParseAll(t *testing.T) {
	as := require.New(t)

	regions, err := ParseAll([]string{"1-3", "10-20"})
	as.NoError(err)
	as.Equal([]Region{{Start: 1, End: 3}, {Start: 10, End: 20}}, regions)

	_, err = ParseAll([]string{"1-3", "7-4"})
	as.ErrorIs(err, ErrInvalidRange)
}

func TestIntersectNoRanges(t *testing.T) {
	as := require.New(t)

	scan := directive.Scan("a = 1\n# fmt: off\nb = 2\n# fmt: on\nc = 3\nd = 4\n")

	// with no requested ranges the output is exactly the formattable spans
	regions := Intersect(scan, nil)
	as.Equal([]Region{{Start: 1, End: 1}, {Start: 5, End: 6}}, regions)
}

func TestIntersectInsidePreserved(t *testing.T) {
	as := require.New(t)

	scan := directive.Scan("a = 1\n# fmt: off\nb = 2\nc = 3\n# fmt: on\nd = 4\n")

	// a request wholly inside a preserved span is a silent no-op
	regions := Intersect(scan, []Region{{Start: 3, End: 4}})
	as.Empty(regions)
}

func TestIntersectPauseResumeScenario(t *testing.T) {
	as := require.New(t)

	lines := make([]string, 0, 10)

	for i := 1; i <= 10; i++ {
		switch i {
		case 3:
			lines = append(lines, "# fmt: off")
		case 7:
			lines = append(lines, "# fmt: on")
		default:
			lines = append(lines, "x = 1")
		}
	}

	scan := directive.Scan(strings.Join(lines, "\n") + "\n")

	regions := Intersect(scan, []Region{{Start: 2, End: 9}})
	as.Equal([]Region{{Start: 2, End: 2}, {Start: 8, End: 9}}, regions)
}

func TestIntersectUnionsRequestedRanges(t *testing.T) {
	as := require.New(t)

	scan := directive.Scan("a = 1\nb = 2\nc = 3\nd = 4\ne = 5\n")

	// overlapping and adjacent requests collapse into maximal regions
	regions := Intersect(scan, []Region{{Start: 3, End: 4}, {Start: 1, End: 3}})
	as.Equal([]Region{{Start: 1, End: 4}}, regions)

	regions = Intersect(scan, []Region{{Start: 4, End: 5}, {Start: 1, End: 2}})
	as.Equal([]Region{{Start: 1, End: 2}, {Start: 4, End: 5}}, regions)
}

func TestIntersectEmptyFile(t *testing.T) {
	as := require.New(t)

	scan := directive.Scan("")
	as.Empty(Intersect(scan, nil))
	as.Empty(Intersect(scan, []Region{{Start: 1, End: 10}}))
}

func TestIntersectClampsToFile(t *testing.T) {
	as := require.New(t)

	scan := directive.Scan("a = 1\nb = 2\n")

	regions := Intersect(scan, []Region{{Start: 1, End: 100}})
	as.Equal([]Region{{Start: 1, End: 2}}, regions)
}

func TestRegionString(t *testing.T) {
	require.Equal(t, "3-7", Region{Start: 3, End: 7}.String())
}
