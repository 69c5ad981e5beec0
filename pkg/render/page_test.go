package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vireo-ui/vireo/pkg/vdom"
)

func TestRenderPage(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:  vdom.Div(vdom.Text("Hello, World!")),
		Title: "Test Page",
	}

	var buf bytes.Buffer
	err := renderer.RenderPage(&buf, page)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Errorf("should start with DOCTYPE, got %q", html[:50])
	}
	if !strings.Contains(html, `<html lang="en">`) {
		t.Errorf("should contain html tag with lang, got %q", html)
	}
	if !strings.Contains(html, "<head>") {
		t.Errorf("should contain head tag, got %q", html)
	}
	if !strings.Contains(html, `<meta charset="utf-8">`) {
		t.Errorf("should contain charset meta, got %q", html)
	}
	if !strings.Contains(html, `<meta name="viewport"`) {
		t.Errorf("should contain viewport meta, got %q", html)
	}
	if !strings.Contains(html, "<title>Test Page</title>") {
		t.Errorf("should contain title, got %q", html)
	}
	if !strings.Contains(html, "<body>") {
		t.Errorf("should contain body tag, got %q", html)
	}
	if !strings.Contains(html, "<div>Hello, World!</div>") {
		t.Errorf("should contain body content, got %q", html)
	}
	if !strings.Contains(html, `<script src="/_vireo/client.js" defer></script>`) {
		t.Errorf("should contain client script, got %q", html)
	}
}

func TestRenderPageWithSession(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:      vdom.Div(vdom.Text("Content")),
		Title:     "Live Page",
		SessionID: "sess_123abc",
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, `window.__VIREO_SESSION__="sess_123abc"`) {
		t.Errorf("should contain session ID, got %q", html)
	}

	// The session handoff must land before the client script loads.
	session := strings.Index(html, "__VIREO_SESSION__")
	client := strings.Index(html, "/_vireo/client.js")
	if session == -1 || client == -1 || session > client {
		t.Errorf("session handoff should precede client script, got %q", html)
	}
}

func TestRenderPageWithoutSessionOmitsHandoff(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{Body: vdom.Div(), Title: "Static"}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(buf.String(), "__VIREO_SESSION__") {
		t.Errorf("no session handoff expected, got %q", buf.String())
	}
}

func TestRenderPageStaticOmitsClientScript(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{Body: vdom.Div(), Title: "Exported", Static: true}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(buf.String(), "/_vireo/client.js") {
		t.Errorf("static page must not load the client, got %q", buf.String())
	}
}

func TestRenderPageWithMeta(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:  vdom.Div(),
		Title: "Meta Test",
		Meta: []MetaTag{
			{Name: "description", Content: "Test description"},
			{Property: "og:title", Content: "OG Title"},
			{HTTPEquiv: "X-UA-Compatible", Content: "IE=edge"},
		},
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if !strings.Contains(html, `<meta name="description" content="Test description">`) {
		t.Errorf("should contain description meta, got %q", html)
	}
	if !strings.Contains(html, `<meta property="og:title" content="OG Title">`) {
		t.Errorf("should contain og:title meta, got %q", html)
	}
	if !strings.Contains(html, `<meta http-equiv="X-UA-Compatible" content="IE=edge">`) {
		t.Errorf("should contain http-equiv meta, got %q", html)
	}
}

func TestRenderPageWithLinks(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:  vdom.Div(),
		Title: "Links Test",
		Links: []LinkTag{
			{Rel: "icon", Href: "/favicon.ico"},
			{Rel: "preconnect", Href: "https://fonts.googleapis.com", CrossOrigin: "anonymous"},
		},
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if !strings.Contains(html, `<link rel="icon" href="/favicon.ico">`) {
		t.Errorf("should contain favicon link, got %q", html)
	}
	if !strings.Contains(html, `<link rel="preconnect" href="https://fonts.googleapis.com" crossorigin="anonymous">`) {
		t.Errorf("should contain preconnect link, got %q", html)
	}
}

func TestRenderPageWithStyleSheets(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:  vdom.Div(),
		Title: "Styles Test",
		StyleSheets: []string{
			"/css/main.css",
			"/css/theme.css",
		},
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if !strings.Contains(html, `<link rel="stylesheet" href="/css/main.css">`) {
		t.Errorf("should contain main.css stylesheet, got %q", html)
	}
	if !strings.Contains(html, `<link rel="stylesheet" href="/css/theme.css">`) {
		t.Errorf("should contain theme.css stylesheet, got %q", html)
	}
}

func TestRenderPageWithInlineStyles(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:   vdom.Div(),
		Title:  "Inline Styles Test",
		Styles: []string{"body { margin: 0; }", ".header { color: red; }"},
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if !strings.Contains(html, "<style>body { margin: 0; }</style>") {
		t.Errorf("should contain first inline style, got %q", html)
	}
	if !strings.Contains(html, "<style>.header { color: red; }</style>") {
		t.Errorf("should contain second inline style, got %q", html)
	}
}

func TestRenderPageWithScripts(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:  vdom.Div(),
		Title: "Scripts Test",
		Scripts: []ScriptTag{
			{Src: "/js/analytics.js", Async: true},
			{Src: "/js/app.js", Defer: true, Module: true},
		},
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if !strings.Contains(html, `<script src="/js/analytics.js" async></script>`) {
		t.Errorf("should contain async script, got %q", html)
	}
	if !strings.Contains(html, `<script src="/js/app.js" type="module" defer></script>`) {
		t.Errorf("should contain deferred module script, got %q", html)
	}

	// Both load from the head.
	head := strings.Index(html, "</head>")
	for _, src := range []string{"/js/analytics.js", "/js/app.js"} {
		if idx := strings.Index(html, src); idx == -1 || idx > head {
			t.Errorf("script %s should render in head, got %q", src, html)
		}
	}
}

func TestRenderPageSyncScriptsRenderInBody(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:  vdom.Div(vdom.Text("Content")),
		Title: "Scripts",
		Scripts: []ScriptTag{
			{Src: "/js/legacy.js"},
			{Inline: "window.__BOOT__=1;"},
		},
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()
	head := strings.Index(html, "</head>")
	content := strings.Index(html, "<div>Content</div>")
	legacy := strings.Index(html, "/js/legacy.js")
	boot := strings.Index(html, "window.__BOOT__=1;")
	client := strings.Index(html, "/_vireo/client.js")

	if legacy == -1 || boot == -1 {
		t.Fatalf("sync scripts should render, got %q", html)
	}
	if legacy < head || boot < head {
		t.Errorf("sync scripts belong in the body, got %q", html)
	}
	if legacy < content || boot < legacy || client < boot {
		t.Errorf("body order should be content, sync scripts, client, got %q", html)
	}
}

func TestRenderPageWithCustomClientScript(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:         vdom.Div(),
		Title:        "Custom Client Test",
		ClientScript: "/assets/vireo-client.min.js",
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if !strings.Contains(html, `<script src="/assets/vireo-client.min.js" defer></script>`) {
		t.Errorf("should contain custom client script path, got %q", html)
	}
	if strings.Contains(html, "/_vireo/client.js") {
		t.Errorf("default client path should be replaced, got %q", html)
	}
}

func TestRenderPageWithCustomLang(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:  vdom.Div(),
		Title: "French Page",
		Lang:  "fr",
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), `<html lang="fr">`) {
		t.Errorf("should contain custom lang, got %q", buf.String())
	}
}

func TestRenderPageEscaping(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Body:  vdom.Div(),
		Title: `<script>alert("xss")</script>`,
		Meta: []MetaTag{
			{Name: "description", Content: `Test "with" <special> & chars`},
		},
		SessionID: `sess"with'quotes`,
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if strings.Contains(html, "<script>alert") {
		t.Errorf("title should be escaped, got %q", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("title should contain escaped script, got %q", html)
	}
	if !strings.Contains(html, "&quot;") || !strings.Contains(html, "&amp;") {
		t.Errorf("meta content should be escaped, got %q", html)
	}
	if strings.Contains(html, `__VIREO_SESSION__="sess"with`) {
		t.Errorf("session ID should be escaped, got %q", html)
	}
	if !strings.Contains(html, `window.__VIREO_SESSION__="sess&quot;with&#39;quotes"`) {
		t.Errorf("session handoff should use escaped value, got %q", html)
	}
}

func TestRenderMetaTagAllFields(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	var buf bytes.Buffer
	err := renderer.renderMetaTag(&buf, MetaTag{
		Charset:   "utf-8",
		Name:      "description",
		Property:  "og:title",
		HTTPEquiv: "Content-Security-Policy",
		Content:   `text "with" <chars> & stuff`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		`<meta`,
		`charset="utf-8"`,
		`name="description"`,
		`property="og:title"`,
		`http-equiv="Content-Security-Policy"`,
		`content="text &quot;with&quot; &lt;chars&gt; &amp; stuff"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %q in %q", want, html)
		}
	}
}

func TestRenderLinkTagAllFields(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	var buf bytes.Buffer
	err := renderer.renderLinkTag(&buf, LinkTag{
		Rel:         "icon",
		Href:        "/favicon.ico",
		Type:        "image/x-icon",
		Sizes:       "32x32",
		CrossOrigin: "anonymous",
		Media:       "(prefers-color-scheme: dark)",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		`<link`,
		`rel="icon"`,
		`href="/favicon.ico"`,
		`type="image/x-icon"`,
		`sizes="32x32"`,
		`crossorigin="anonymous"`,
		`media="(prefers-color-scheme: dark)"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %q in %q", want, html)
		}
	}
}

func TestRenderScriptTagTypeAndInline(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	var buf bytes.Buffer
	err := renderer.renderScriptTag(&buf, ScriptTag{
		Type:   "text/javascript",
		Inline: "window.__TEST__=true;",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, `type="text/javascript"`) {
		t.Fatalf("should include type attribute, got %q", html)
	}
	if !strings.Contains(html, "window.__TEST__=true;") {
		t.Fatalf("should include inline script content, got %q", html)
	}

	buf.Reset()
	err = renderer.renderScriptTag(&buf, ScriptTag{
		Src:   "/js/app.js",
		Defer: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html = buf.String()
	if !strings.Contains(html, `src="/js/app.js"`) || !strings.Contains(html, " defer") {
		t.Fatalf("should include src and defer, got %q", html)
	}
	if got := extractAttrValue(t, html, "src"); got != "/js/app.js" {
		t.Fatalf("src = %q, want %q", got, "/js/app.js")
	}
}
