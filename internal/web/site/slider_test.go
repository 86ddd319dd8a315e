package site

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextIndexWrapsBothWays(t *testing.T) {
	t.Parallel()

	cases := []struct {
		active, direction, count, want int
	}{
		{0, 1, 3, 1},
		{2, 1, 3, 0},
		{0, -1, 3, 2},
		{1, -1, 3, 0},
		{0, 1, 1, 0},
		{0, -1, 1, 0},
		{0, 1, 0, 0},
		{0, -1, 0, 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NextIndex(tc.active, tc.direction, tc.count), "%+v", tc)
	}
}

func TestActiveIndex(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, ActiveIndex(nil))
	require.Equal(t, 0, ActiveIndex([]bool{false, false}))
	require.Equal(t, 2, ActiveIndex([]bool{false, false, true}))
}

func TestSliderChange(t *testing.T) {
	t.Parallel()

	s := NewSlider("a", "Quad A", []string{"1.jpg", "2.jpg", "3.jpg"})
	require.True(t, s.HasArrows())
	require.True(t, s.IsActive(0))

	back := s.Change(-1)
	require.Equal(t, 2, back.Active)
	require.Equal(t, 0, s.Active)
	require.Equal(t, 0, back.Change(1).Active)

	empty := NewSlider("e", "Empty", nil)
	require.False(t, empty.HasArrows())
	require.Equal(t, 0, empty.Change(1).Active)
}

func TestSliderFragmentURLs(t *testing.T) {
	t.Parallel()

	s := NewSlider("quad a", "Quad A", []string{"1.jpg", "2.jpg"}).Change(1)
	next, err := url.Parse(s.NextURL())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(s.NextURL(), "/fragments/slider/quad%20a?"))
	require.Equal(t, "1", next.Query().Get("active"))
	require.Equal(t, "1", next.Query().Get("direction"))

	prev, err := url.Parse(s.PrevURL())
	require.NoError(t, err)
	require.Equal(t, "-1", prev.Query().Get("direction"))
}

func TestChangeCyclesBackAfterImageCount(t *testing.T) {
	t.Parallel()

	for count := 1; count <= 5; count++ {
		images := make([]string, count)
		for start := 0; start < count; start++ {
			for _, direction := range []int{1, -1} {
				s := NewSlider("p", "P", images)
				s.Active = start
				for i := 0; i < count; i++ {
					s = s.Change(direction)
				}
				require.Equal(t, start, s.Active, "count=%d start=%d direction=%d", count, start, direction)
			}
		}
	}
}
