package vdom

import (
	"fmt"
	"sort"
	"strconv"
)

// Data modules. Each takes the old and new vnode for an element and
// pushes whatever changed through the backend. A nil old means the
// element was just created.

// Attributes whose presence is the value. A false removes the attribute
// entirely instead of writing "false".
var booleanAttrs = map[string]bool{
	"checked":   true,
	"selected":  true,
	"disabled":  true,
	"readonly":  true,
	"required":  true,
	"multiple":  true,
	"autofocus": true,
	"hidden":    true,
	"open":      true,
	"loop":      true,
	"muted":     true,
	"controls":  true,
}

func (p *Patcher) updateAttrs(old, vnode *VNode) {
	var oldAttrs, newAttrs map[string]any
	if old != nil && old.Data != nil {
		oldAttrs = old.Data.Attrs
	}
	if vnode.Data != nil {
		newAttrs = vnode.Data.Attrs
	}
	if len(oldAttrs) == 0 && len(newAttrs) == 0 {
		return
	}

	// Sorted keys keep backend call order, and therefore recorded
	// patches and serialized output, deterministic.
	keys := make([]string, 0, len(newAttrs))
	for key := range newAttrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	elm := vnode.Elm
	for _, key := range keys {
		val := newAttrs[key]
		oldVal, had := oldAttrs[key]
		if had && attrValuesEqual(oldVal, val) {
			continue
		}
		p.setAttr(elm, key, val)
	}
	for key := range oldAttrs {
		if _, keep := newAttrs[key]; !keep {
			p.backend.RemoveAttribute(elm, key)
		}
	}
}

func (p *Patcher) setAttr(elm Node, key string, val any) {
	if b, ok := val.(bool); ok && booleanAttrs[key] {
		if b {
			p.backend.SetAttribute(elm, key, key)
		} else {
			p.backend.RemoveAttribute(elm, key)
		}
		return
	}
	p.backend.SetAttribute(elm, key, attrString(val))
}

// attrString renders an attribute value for the backend. Enumerated
// attributes like aria-hidden pass bools through here and serialize as
// "true"/"false".
func attrString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// attrValuesEqual compares attribute values. Uncomparable values never
// compare equal and are rewritten each patch.
func attrValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	default:
		return false
	}
}

func (p *Patcher) updateListeners(old, vnode *VNode) {
	var oldOn, newOn map[string]any
	if old != nil && old.Data != nil {
		oldOn = old.Data.On
	}
	if vnode.Data != nil {
		newOn = vnode.Data.On
	}
	if len(oldOn) == 0 && len(newOn) == 0 {
		return
	}

	names := make([]string, 0, len(newOn))
	for name := range newOn {
		names = append(names, name)
	}
	sort.Strings(names)

	elm := vnode.Elm
	// Handlers are closures rebuilt every render, so identity tells us
	// nothing. Re-register each one; backends make that cheap.
	for _, name := range names {
		p.backend.SetListener(elm, name, newOn[name])
	}
	for name := range oldOn {
		if _, keep := newOn[name]; !keep {
			p.backend.RemoveListener(elm, name)
		}
	}
}

func (p *Patcher) updateDirectives(old, vnode *VNode) {
	var oldDirs, newDirs []Directive
	if old != nil && old.Data != nil {
		oldDirs = old.Data.Directives
	}
	if vnode.Data != nil {
		newDirs = vnode.Data.Directives
	}
	if len(oldDirs) == 0 && len(newDirs) == 0 {
		return
	}

	prev := make(map[string]Directive, len(oldDirs))
	for _, d := range oldDirs {
		prev[d.Name] = d
	}

	elm := vnode.Elm
	for _, d := range newDirs {
		def, ok := p.directives[d.Name]
		if !ok {
			p.warnf("unknown directive %q", d.Name)
			continue
		}
		if od, existed := prev[d.Name]; existed {
			delete(prev, d.Name)
			if def.Update != nil {
				def.Update(elm, od, d)
			}
		} else if def.Bind != nil {
			def.Bind(elm, d)
		}
	}
	for _, od := range prev {
		if def, ok := p.directives[od.Name]; ok && def.Unbind != nil {
			def.Unbind(elm, od)
		}
	}
}

// unbindDirectives releases every directive on a vnode being destroyed.
func (p *Patcher) unbindDirectives(vnode *VNode) {
	if vnode.Data == nil || len(vnode.Data.Directives) == 0 {
		return
	}
	for _, d := range vnode.Data.Directives {
		if def, ok := p.directives[d.Name]; ok && def.Unbind != nil {
			def.Unbind(vnode.Elm, d)
		}
	}
}

func (p *Patcher) applyRef(vnode *VNode, removed bool) {
	if vnode.Data == nil || vnode.Data.OnRef == nil {
		return
	}
	vnode.Data.OnRef(vnode.Elm, removed)
}
