// Package render serializes vdom trees to HTML.
//
// The render package converts VNode trees into HTML strings or streams,
// covering:
//
//   - Element, text, and comment node rendering
//   - Text and attribute escaping (XSS prevention)
//   - Void element handling (input, br, img, etc.)
//   - Boolean attribute handling (disabled, checked, etc.)
//   - Mounted component placeholders, rendered as the tree behind them
//   - Full page rendering with DOCTYPE, head, body
//   - Session handoff and live client script injection
//
// # Basic Usage
//
// To render a VNode tree to a string:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// To stream HTML to a writer:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	err := renderer.RenderToWriter(w, node)
//
// # Full Page Rendering
//
// To render a complete HTML document:
//
//	page := render.PageData{
//	    Body:      bodyNode,
//	    Title:     "My Page",
//	    SessionID: session.ID,
//	}
//	err := renderer.RenderPage(w, page)
//
// # Streaming
//
// For large pages, use StreamingRenderer to flush content incrementally:
//
//	sr := render.NewStreamingRenderer(w, config)
//	err := sr.RenderPage(page)
//
// # Security
//
// All text content and attribute values are escaped. Comment text is
// written verbatim, matching the in-memory DOM's serialization.
package render
