// Package export writes static HTML snapshots of components.
//
// A snapshot is the component's server-rendered page with the live
// client script left out: what a session would serve, frozen. Snapshots
// go through a Store, so the same export run can target the local
// filesystem or a remote bucket.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/vireo-ui/vireo/pkg/component"
	"github.com/vireo-ui/vireo/pkg/dom"
	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/render"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// ErrNoStore is returned when an Exporter is built without a store.
var ErrNoStore = errors.New("export: no store configured")

// Store is the destination for exported files.
// Implement this interface to target S3, GCS, or other storage.
type Store interface {
	// Put writes one file at the given slash-separated relative path.
	Put(path, contentType string, r io.Reader) error
}

// Config holds page-level settings shared by every snapshot.
type Config struct {
	// Title is the page title. Per-page titles override it.
	Title string

	// Lang is the html element language attribute.
	Lang string

	// StyleSheets are stylesheet paths linked from every page.
	StyleSheets []string

	// Pretty enables indented HTML output.
	Pretty bool
}

// Exporter renders components to static pages and writes them through
// a store.
type Exporter struct {
	store    Store
	renderer *render.Renderer
	cfg      Config
}

// New creates an Exporter writing through store.
func New(store Store, cfg Config) *Exporter {
	return &Exporter{
		store:    store,
		renderer: render.NewRenderer(render.RendererConfig{Pretty: cfg.Pretty}),
		cfg:      cfg,
	}
}

// Page is one exported route.
type Page struct {
	// Path is the output path. A trailing slash or empty final element
	// gets index.html appended, so "/about/" lands at about/index.html.
	Path string

	// Root is the component mounted for the page.
	Root *component.Options

	// Title overrides the exporter-level title when non-empty.
	Title string
}

// Snapshot renders root and writes the page at the given path.
func (e *Exporter) Snapshot(p string, root *component.Options) error {
	return e.Export([]Page{{Path: p, Root: root}})
}

// Export renders every page and writes it through the store. The first
// failure stops the run.
func (e *Exporter) Export(pages []Page) error {
	if e.store == nil {
		return ErrNoStore
	}
	for _, page := range pages {
		if err := e.exportPage(page); err != nil {
			return fmt.Errorf("export %s: %w", page.Path, err)
		}
	}
	return nil
}

func (e *Exporter) exportPage(page Page) error {
	body, err := renderBody(page.Root)
	if err != nil {
		return err
	}

	title := page.Title
	if title == "" {
		title = e.cfg.Title
	}

	var buf bytes.Buffer
	err = e.renderer.RenderPage(&buf, render.PageData{
		Title:       title,
		Lang:        e.cfg.Lang,
		StyleSheets: e.cfg.StyleSheets,
		BodyHTML:    body,
		Static:      true,
	})
	if err != nil {
		return err
	}

	return e.store.Put(outputPath(page.Path), "text/html; charset=utf-8", &buf)
}

// renderBody mounts root on an in-memory document, waits for the
// mount's reactive work to settle, and serializes the result. The
// instance lives on the runtime task loop like any other mount.
func renderBody(root *component.Options) (string, error) {
	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	reactive.PostTask(func() {
		doc := dom.NewDocument()
		inst := component.Mount(root, vdom.NewPatcher(dom.NewBackend()))
		if inst == nil {
			done <- result{err: errors.New("mount produced no instance")}
			return
		}
		if elm, ok := inst.Elm().(dom.Node); ok {
			doc.Body.Append(elm)
		}
		// Mount-time watchers may schedule a follow-up flush; read the
		// tree only after it runs.
		reactive.NextTick(func() {
			html := doc.Body.InnerHTML()
			inst.Destroy()
			done <- result{html: html}
		})
	})

	r := <-done
	return r.html, r.err
}

// outputPath maps a route path to the file the store receives.
func outputPath(p string) string {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return "index.html"
	}
	if path.Ext(p) == "" {
		return path.Join(p, "index.html")
	}
	return p
}
