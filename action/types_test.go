package action

import "testing"

func TestDefineActionNameIsStable(t *testing.T) {
	widgetCreated := DefineAction[string]("widget/created")
	if widgetCreated.Name != "widget/created" {
		t.Fatalf("expected name widget/created, got %q", widgetCreated.Name)
	}
	if widgetCreated != DefineAction[string]("widget/created") {
		t.Fatal("expected two DefineAction calls with the same name to compare equal")
	}
}

// An ActionType's Name is what actually drives delivery: OnAction
// subscribes by that name, not by the generic parameter.
func TestActionTypeNameDrivesOnActionDelivery(t *testing.T) {
	bus := New()
	widgetCreated := DefineAction[string]("widget/created")

	var got string
	OnAction(bus, widgetCreated, func(ctx Context, payload string) {
		got = payload
	})

	bus.Dispatch(Action[any]{Type: widgetCreated.Name, Payload: "w1"})
	if got != "w1" {
		t.Fatalf("expected OnAction to deliver payload w1, got %q", got)
	}
}

func TestContextMetaWithCopiesRatherThanMutates(t *testing.T) {
	ctx := Context{Scope: "root", Meta: map[string]any{"existing": "value"}}

	withNew := ctx.MetaWith("added", "value2")

	if _, ok := ctx.MetaValue("added"); ok {
		t.Fatal("expected MetaWith to leave the original context unchanged")
	}
	if v, ok := withNew.MetaValue("existing"); !ok || v != "value" {
		t.Fatalf("expected the copy to retain existing metadata, got %v, %v", v, ok)
	}
	if v, ok := withNew.MetaValue("added"); !ok || v != "value2" {
		t.Fatalf("expected the copy to carry the added key, got %v, %v", v, ok)
	}
	if _, ok := withNew.MetaValue("missing"); ok {
		t.Fatal("expected MetaValue to report false for an absent key")
	}
}
