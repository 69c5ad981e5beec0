package main

import (
	"strings"

	"github.com/vireo-ui/vireo/pkg/component"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// demoRoot is the built-in demo application served by `vireo serve`
// without arguments and exported by `vireo export`. It exercises the
// paths an application hits: reactive state, computed values, event
// listeners, and a keyed list.
func demoRoot() *component.Options {
	return &component.Options{
		Name: "demo",
		Data: func(i *component.Instance) map[string]any {
			return map[string]any{
				"count": 0,
				"draft": "",
				"items": []any{"Render on the server", "Patch over the wire"},
			}
		},
		Computed: map[string]func(i *component.Instance) any{
			"remaining": func(i *component.Instance) any {
				items, _ := i.Get("items").([]any)
				return len(items)
			},
		},
		Methods: map[string]func(i *component.Instance, args ...any) any{
			"add": func(i *component.Instance, args ...any) any {
				draft := strings.TrimSpace(i.GetString("draft"))
				if draft == "" {
					return nil
				}
				items, _ := i.Get("items").([]any)
				i.Set("items", append(items, draft))
				i.Set("draft", "")
				return nil
			},
			"remove": func(i *component.Instance, args ...any) any {
				if len(args) == 0 {
					return nil
				}
				target, _ := args[0].(string)
				items, _ := i.Get("items").([]any)
				next := make([]any, 0, len(items))
				for _, it := range items {
					if it != target {
						next = append(next, it)
					}
				}
				i.Set("items", next)
				return nil
			},
		},
		Render: func(i *component.Instance) *vdom.VNode {
			items, _ := i.Get("items").([]any)
			list := make([]*vdom.VNode, 0, len(items))
			for _, it := range items {
				item, _ := it.(string)
				list = append(list, vdom.Li(
					vdom.Key(item),
					vdom.Span(vdom.Text(item)),
					vdom.Button(
						vdom.Class("remove"),
						vdom.OnClick(func() { i.Call("remove", item) }),
						vdom.Text("×"),
					),
				))
			}

			return vdom.Div(
				vdom.Class("demo"),
				vdom.H1(vdom.Text("Vireo")),
				vdom.P(vdom.Textf("Clicked %d times, %d items.",
					i.GetInt("count"), i.Computed("remaining"))),
				vdom.Button(
					vdom.Class("bump"),
					vdom.OnClick(func() { i.Set("count", i.GetInt("count")+1) }),
					vdom.Text("Click me"),
				),
				vdom.Div(
					vdom.Class("entry"),
					vdom.Input(
						vdom.Type("text"),
						vdom.Placeholder("Add an item"),
						vdom.Value(i.GetString("draft")),
						vdom.OnInput(func(v any) {
							s, _ := v.(string)
							i.Set("draft", s)
						}),
					),
					vdom.Button(
						vdom.OnClick(func() { i.Call("add") }),
						vdom.Text("Add"),
					),
				),
				vdom.Ul(list),
			)
		},
	}
}
