package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pad(s string, n int) string {
	return s + strings.Repeat("<!-- filler -->", n)
}

func TestNeedsRenderEmptyBody(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(100)
	require.True(t, h.NeedsRender(nil))
	require.True(t, h.NeedsRender([]byte("")))
}

func TestNeedsRenderSmallBody(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(2048)
	require.True(t, h.NeedsRender([]byte("<html><body>tiny</body></html>")))
}

func TestNeedsRenderSPAMarkers(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(10)
	body := pad(`<html><body><div id="root"></div></body></html>`, 50)
	require.True(t, h.NeedsRender([]byte(body)))
}

func TestNeedsRenderNoCards(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(10)
	body := pad(`<html><body><p>server rendered but empty</p></body></html>`, 50)
	require.True(t, h.NeedsRender([]byte(body)))
}

func TestNeedsRenderFalseWhenCardsPresent(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(10)
	body := pad(`<html><body><div data-testid="listing-card">Section 104 $145 9.7</div></body></html>`, 50)
	require.False(t, h.NeedsRender([]byte(body)))
}
