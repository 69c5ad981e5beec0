package vdom

import (
	"fmt"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// ClassIf joins the classes whose condition is true.
func ClassIf(pairs ...ClassPair) Attr {
	var on []string
	for _, p := range pairs {
		if p.When {
			on = append(on, p.Name)
		}
	}
	return attr("class", strings.Join(on, " "))
}

// ClassPair is a class name with a condition, for ClassIf.
type ClassPair struct {
	Name string
	When bool
}

// StyleAttr sets the style attribute (named to avoid conflict with the
// Style element).
func StyleAttr(style string) Attr { return attr("style", style) }

// Key sets the reconciliation key. Keys make list reorders cheap: the
// patcher matches children by key instead of position.
func Key(key any) Attr {
	return attr("key", fmt.Sprintf("%v", key))
}

// Ref registers a callback that receives the backend node once mounted
// and again on removal. Component instances build these via their ref
// helpers.
func Ref(fn func(n Node, removed bool)) Attr {
	return attr("ref", fn)
}

// WithDirective attaches a directive binding to the element.
func WithDirective(d Directive) Attr {
	return attr("directive", d)
}

// Data attributes

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", hidden) }

// AriaExpanded sets the aria-expanded attribute.
func AriaExpanded(expanded bool) Attr { return attr("aria-expanded", expanded) }

// AriaLive sets the aria-live attribute.
func AriaLive(mode string) Attr { return attr("aria-live", mode) }

// Form attributes

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Checked sets the checked attribute.
func Checked(checked bool) Attr { return attr("checked", checked) }

// Selected sets the selected attribute.
func Selected(selected bool) Attr { return attr("selected", selected) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Required sets the required attribute.
func Required(required bool) Attr { return attr("required", required) }

// ReadOnly sets the readonly attribute.
func ReadOnly(readonly bool) Attr { return attr("readonly", readonly) }

// Min sets the min attribute.
func Min(v string) Attr { return attr("min", v) }

// Max sets the max attribute.
func Max(v string) Attr { return attr("max", v) }

// Step sets the step attribute.
func Step(v string) Attr { return attr("step", v) }

// For sets the for attribute (label targets).
func For(id string) Attr { return attr("for", id) }

// Link attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Target sets the target attribute.
func Target(target string) Attr { return attr("target", target) }

// Rel sets the rel attribute.
func Rel(rel string) Attr { return attr("rel", rel) }

// Media attributes

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Width sets the width attribute.
func Width(w int) Attr { return attr("width", w) }

// Height sets the height attribute.
func Height(h int) Attr { return attr("height", h) }

// Misc attributes

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", index) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", lang) }

// AttrIf returns the attribute when the condition holds, otherwise an
// empty Attr that createElement ignores.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}
