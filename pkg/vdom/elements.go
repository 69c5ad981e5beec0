package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, EventHandler, *VNode, []*VNode,
// []any, or scalars (which become text children).
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind: KindElement,
		Tag:  tag,
	}

	var children []any
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes and children)
			continue

		case Attr:
			applyAttr(node, v)

		case []Attr:
			for _, a := range v {
				applyAttr(node, a)
			}

		case EventHandler:
			if v.Event != "" && v.Handler != nil {
				data := ensureData(node)
				if data.On == nil {
					data.On = make(map[string]any)
				}
				data.On[v.Event] = v.Handler
			}

		default:
			children = append(children, arg)
		}
	}

	if len(children) > 0 {
		node.Children = Normalize(children...)
	}
	if node.NS == "" && namespacedTags[tag] {
		applyNS(node, tag)
	}
	return node
}

var namespacedTags = map[string]bool{
	"svg":  true,
	"math": true,
}

// applyNS stamps the namespace onto node and its element descendants.
// foreignObject subtrees re-enter HTML and are left alone.
func applyNS(node *VNode, ns string) {
	node.NS = ns
	if node.Tag == "foreignObject" {
		return
	}
	for _, c := range node.Children {
		if c != nil && c.Kind == KindElement && c.NS == "" {
			applyNS(c, ns)
		}
	}
}

func ensureData(node *VNode) *NodeData {
	if node.Data == nil {
		node.Data = &NodeData{}
	}
	return node.Data
}

func applyAttr(node *VNode, a Attr) {
	if a.Key == "" {
		return
	}
	switch a.Key {
	case "key":
		if s, ok := a.Value.(string); ok {
			node.Key = s
		}
	case "ref":
		if fn, ok := a.Value.(func(n Node, removed bool)); ok {
			ensureData(node).OnRef = fn
		}
	case "directive":
		if d, ok := a.Value.(Directive); ok {
			data := ensureData(node)
			data.Directives = append(data.Directives, d)
		}
	default:
		data := ensureData(node)
		if data.Attrs == nil {
			data.Attrs = make(map[string]any)
		}
		data.Attrs[a.Key] = a.Value
	}
}

// Document structure elements

func Html(args ...any) *VNode  { return createElement("html", args) }
func Head(args ...any) *VNode  { return createElement("head", args) }
func Body(args ...any) *VNode  { return createElement("body", args) }
func Title(args ...any) *VNode { return createElement("title", args) }
func Meta(args ...any) *VNode  { return createElement("meta", args) }
func Link(args ...any) *VNode  { return createElement("link", args) }
func Base(args ...any) *VNode  { return createElement("base", args) }

// Content sectioning elements

func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Article(args ...any) *VNode { return createElement("article", args) }
func Aside(args ...any) *VNode   { return createElement("aside", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func H3(args ...any) *VNode      { return createElement("h3", args) }
func H4(args ...any) *VNode      { return createElement("h4", args) }
func H5(args ...any) *VNode      { return createElement("h5", args) }
func H6(args ...any) *VNode      { return createElement("h6", args) }

// Text content elements

func Div(args ...any) *VNode        { return createElement("div", args) }
func P(args ...any) *VNode          { return createElement("p", args) }
func Span(args ...any) *VNode       { return createElement("span", args) }
func Pre(args ...any) *VNode        { return createElement("pre", args) }
func Blockquote(args ...any) *VNode { return createElement("blockquote", args) }
func Ul(args ...any) *VNode         { return createElement("ul", args) }
func Ol(args ...any) *VNode         { return createElement("ol", args) }
func Li(args ...any) *VNode         { return createElement("li", args) }
func Dl(args ...any) *VNode         { return createElement("dl", args) }
func Dt(args ...any) *VNode         { return createElement("dt", args) }
func Dd(args ...any) *VNode         { return createElement("dd", args) }
func Hr(args ...any) *VNode         { return createElement("hr", args) }
func Figure(args ...any) *VNode     { return createElement("figure", args) }
func Figcaption(args ...any) *VNode { return createElement("figcaption", args) }

// Inline text semantics

func A(args ...any) *VNode      { return createElement("a", args) }
func Strong(args ...any) *VNode { return createElement("strong", args) }
func Em(args ...any) *VNode     { return createElement("em", args) }
func B(args ...any) *VNode      { return createElement("b", args) }
func I(args ...any) *VNode      { return createElement("i", args) }
func U(args ...any) *VNode      { return createElement("u", args) }
func Small(args ...any) *VNode  { return createElement("small", args) }
func Mark(args ...any) *VNode   { return createElement("mark", args) }
func Code(args ...any) *VNode   { return createElement("code", args) }
func Kbd(args ...any) *VNode    { return createElement("kbd", args) }
func Abbr(args ...any) *VNode   { return createElement("abbr", args) }
func Time_(args ...any) *VNode  { return createElement("time", args) }
func Cite(args ...any) *VNode   { return createElement("cite", args) }
func Q(args ...any) *VNode      { return createElement("q", args) }
func Br(args ...any) *VNode     { return createElement("br", args) }

// Form elements

func Form(args ...any) *VNode     { return createElement("form", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Textarea(args ...any) *VNode { return createElement("textarea", args) }
func Select(args ...any) *VNode   { return createElement("select", args) }
func Option(args ...any) *VNode   { return createElement("option", args) }
func Optgroup(args ...any) *VNode { return createElement("optgroup", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }
func Fieldset(args ...any) *VNode { return createElement("fieldset", args) }
func Legend(args ...any) *VNode   { return createElement("legend", args) }
func Datalist(args ...any) *VNode { return createElement("datalist", args) }
func Output(args ...any) *VNode   { return createElement("output", args) }
func Progress(args ...any) *VNode { return createElement("progress", args) }
func Meter(args ...any) *VNode    { return createElement("meter", args) }

// Table elements

func Table(args ...any) *VNode    { return createElement("table", args) }
func Thead(args ...any) *VNode    { return createElement("thead", args) }
func Tbody(args ...any) *VNode    { return createElement("tbody", args) }
func Tfoot(args ...any) *VNode    { return createElement("tfoot", args) }
func Tr(args ...any) *VNode       { return createElement("tr", args) }
func Th(args ...any) *VNode       { return createElement("th", args) }
func Td(args ...any) *VNode       { return createElement("td", args) }
func Caption(args ...any) *VNode  { return createElement("caption", args) }
func Colgroup(args ...any) *VNode { return createElement("colgroup", args) }
func Col(args ...any) *VNode      { return createElement("col", args) }

// Media elements

func Img(args ...any) *VNode    { return createElement("img", args) }
func Source(args ...any) *VNode { return createElement("source", args) }
func Video(args ...any) *VNode  { return createElement("video", args) }
func Audio(args ...any) *VNode  { return createElement("audio", args) }
func Track(args ...any) *VNode  { return createElement("track", args) }
func Iframe(args ...any) *VNode { return createElement("iframe", args) }
func Canvas(args ...any) *VNode { return createElement("canvas", args) }
func Svg(args ...any) *VNode    { return createElement("svg", args) }
func Area(args ...any) *VNode   { return createElement("area", args) }

// Interactive elements

func Details(args ...any) *VNode { return createElement("details", args) }
func Summary(args ...any) *VNode { return createElement("summary", args) }
func Dialog(args ...any) *VNode  { return createElement("dialog", args) }
func Menu(args ...any) *VNode    { return createElement("menu", args) }

// Scripting elements

func Script(args ...any) *VNode   { return createElement("script", args) }
func Noscript(args ...any) *VNode { return createElement("noscript", args) }
func Template(args ...any) *VNode { return createElement("template", args) }
func Style(args ...any) *VNode    { return createElement("style", args) }

// CustomElement creates an element with a custom tag name.
func CustomElement(tag string, args ...any) *VNode {
	return createElement(tag, args)
}
