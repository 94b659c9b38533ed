package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// go test -v --run TestVisibleText
func TestVisibleText(t *testing.T) {
	html := `<html><head><title>MALEE - SET</title><style>.x{color:red}</style></head>
<body>
  <div>MALEE</div>
  <script>var price = 99;</script>
  <noscript>enable js</noscript>
  <p>36.50   <span>+0.25</span> <span>(+0.69%)</span></p>
  <!-- hidden note -->
  <table><tr><th>Open</th><td>36.25</td></tr><tr><th>High</th><td>36.75</td></tr></table>
  <ul><li>Vol</li><li>1,234,500</li></ul>
</body></html>`

	got, err := VisibleText(html)
	require.NoError(t, err)
	require.Equal(t, "MALEE\n36.50 +0.25 (+0.69%)\nOpen 36.25\nHigh 36.75\nVol\n1,234,500", got)
}

// go test -v --run TestVisibleTextEmpty
func TestVisibleTextEmpty(t *testing.T) {
	got, err := VisibleText("")
	require.NoError(t, err)
	require.Empty(t, got)
}

// go test -v --run TestNewChromeDefaults
func TestNewChromeDefaults(t *testing.T) {
	c := NewChrome(Options{}, nil)
	require.Equal(t, 1600, c.opts.WindowWidth)
	require.Equal(t, 1200, c.opts.WindowHeight)
	require.Equal(t, "30s", c.opts.PageReadyTimeout.String())
	require.Equal(t, "20s", c.opts.ElementTimeout.String())

	c = NewChrome(Options{ChromePath: "/opt/chrome"}, nil)
	require.Len(t, c.allocatorOptions(), len(NewChrome(Options{}, nil).allocatorOptions())+1)
}
