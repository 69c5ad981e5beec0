package dom

import "testing"

func TestInsertBeforeMovesNodes(t *testing.T) {
	parent := NewElement("ul")
	a, b, c := NewElement("li"), NewElement("li"), NewElement("li")
	parent.Append(a)
	parent.Append(b)
	parent.Append(c)

	// Moving an attached node detaches it first.
	parent.insertBefore(c, a)

	if parent.ChildCount() != 3 {
		t.Fatalf("child count = %d", parent.ChildCount())
	}
	if parent.Child(0) != c || parent.Child(1) != a || parent.Child(2) != b {
		t.Error("order after move wrong")
	}
	if c.Parent() != parent {
		t.Error("moved node lost its parent")
	}
}

func TestAppendReparents(t *testing.T) {
	p1 := NewElement("div")
	p2 := NewElement("div")
	child := NewElement("span")

	p1.Append(child)
	p2.Append(child)

	if p1.ChildCount() != 0 {
		t.Error("child still under old parent")
	}
	if child.Parent() != p2 {
		t.Error("child not under new parent")
	}
}

func TestSiblingNavigation(t *testing.T) {
	parent := NewElement("div")
	a, b := NewElement("span"), NewElement("span")
	parent.Append(a)
	parent.Append(b)

	if a.nextSibling() != Node(b) {
		t.Error("a's next sibling should be b")
	}
	if b.nextSibling() != nil {
		t.Error("b has no next sibling")
	}
}

func TestAttrOrderStable(t *testing.T) {
	e := NewElement("div")
	e.setAttr("b", "2")
	e.setAttr("a", "1")
	e.setAttr("b", "3")

	names := e.AttrNames()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("attr order = %v", names)
	}
	if got := e.OuterHTML(); got != `<div b="3" a="1"></div>` {
		t.Errorf("html = %s", got)
	}

	e.removeAttr("b")
	if got := e.OuterHTML(); got != `<div a="1"></div>` {
		t.Errorf("after remove = %s", got)
	}
}

func TestQueryHelpers(t *testing.T) {
	root := NewElement("div")
	inner := NewElement("section")
	inner.setAttr("id", "target")
	btn := NewElement("button")
	root.Append(inner)
	inner.Append(btn)

	if root.ByID("target") != inner {
		t.Error("ByID failed")
	}
	if root.ByTag("button") != btn {
		t.Error("ByTag failed")
	}
	all := root.QueryAll(func(e *Element) bool { return true })
	if len(all) != 3 {
		t.Errorf("QueryAll found %d elements", len(all))
	}
}

func TestSetTextReplacesChildren(t *testing.T) {
	e := NewElement("p")
	e.Append(NewElement("span"))
	e.Append(&Text{text: "old"})

	e.setText("new")
	if e.ChildCount() != 1 {
		t.Fatalf("child count = %d", e.ChildCount())
	}
	if e.TextContent() != "new" {
		t.Errorf("text = %q", e.TextContent())
	}

	e.setText("")
	if e.ChildCount() != 0 {
		t.Error("empty text should clear children")
	}
}

func TestSerializationEscaping(t *testing.T) {
	e := NewElement("div")
	e.setAttr("title", `say "hi" & bye`)
	e.Append(&Text{text: "<script>"})

	want := `<div title="say &quot;hi&quot; &amp; bye">&lt;script&gt;</div>`
	if got := e.OuterHTML(); got != want {
		t.Errorf("html = %s, want %s", got, want)
	}
}

func TestVoidElementSerialization(t *testing.T) {
	e := NewElement("input")
	e.setAttr("type", "text")
	if got := e.OuterHTML(); got != `<input type="text">` {
		t.Errorf("html = %s", got)
	}
}

func TestCommentSerialization(t *testing.T) {
	parent := NewElement("div")
	parent.Append(&Comment{text: "marker"})
	if got := parent.OuterHTML(); got != "<div><!--marker--></div>" {
		t.Errorf("html = %s", got)
	}
}
