package render

import (
	"fmt"
	"io"
	"net/http"
)

// StreamingRenderer wraps Renderer with chunked output support.
// It flushes content incrementally for faster time-to-first-byte.
type StreamingRenderer struct {
	*Renderer
	flusher http.Flusher
	w       io.Writer
}

// NewStreamingRenderer creates a streaming renderer that writes to
// an http.ResponseWriter. If the writer implements http.Flusher,
// content is flushed after each section for faster TTFB.
func NewStreamingRenderer(w http.ResponseWriter, config RendererConfig) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		Renderer: NewRenderer(config),
		flusher:  flusher,
		w:        w,
	}
}

// RenderPage renders a complete HTML document with incremental flushing.
// The head section is flushed before the body renders, so the browser
// can start fetching stylesheets while the tree serializes.
func (s *StreamingRenderer) RenderPage(page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := s.w.Write([]byte("<!DOCTYPE html>\n")); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}

	if err := s.renderHead(s.w, page); err != nil {
		return err
	}

	s.flush()

	if _, err := s.w.Write([]byte("<body>\n")); err != nil {
		return err
	}

	// Main content
	if err := s.RenderToWriter(s.w, page.Body); err != nil {
		return err
	}

	s.flush()

	if err := s.renderBodyEnd(s.w, page); err != nil {
		return err
	}

	if _, err := s.w.Write([]byte("</body>\n</html>\n")); err != nil {
		return err
	}

	s.flush()

	return nil
}

// flush flushes the writer if it supports flushing.
func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// FlushableWriter wraps an io.Writer with optional flushing capability.
// Useful for testing streaming behavior without an http.ResponseWriter.
type FlushableWriter struct {
	io.Writer
	FlushCount int
}

// Flush implements http.Flusher.
func (w *FlushableWriter) Flush() {
	w.FlushCount++
}
