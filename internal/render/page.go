package render

import "errors"

// ErrRenderFailure wraps navigation, timeout and capture errors.
var ErrRenderFailure = errors.New("render failure")

// Page is what a renderer hands back for one URL.
type Page struct {
	URL        string
	Text       string // visible text of <body>
	HTML       string // rendered document markup
	Screenshot []byte // PNG of the viewport
}
