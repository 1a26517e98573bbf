package agents

import (
	"testing"

	"github.com/room4-2/converselink/widgets"
)

func TestLookup(t *testing.T) {
	p, ok := Lookup("shopify")
	if !ok {
		t.Fatal("expected shopify preset")
	}
	if !p.Recognizes(WidgetProductList) {
		t.Error("shopify preset must render product lists")
	}
	if p.Recognizes(WidgetPatientInfo) {
		t.Error("shopify preset must not render patient information")
	}

	if _, ok := Lookup("nonexistent"); ok {
		t.Error("unknown preset must not resolve")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 4 {
		t.Fatalf("expected 4 presets, got %d", len(names))
	}
	for _, want := range []string{"pizza-store", "patient-information", "shopify", "simple"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing preset %q", want)
		}
	}
}

func TestCartSummaryDetails(t *testing.T) {
	p := widgets.Payload{
		Type:    WidgetCartSummary,
		Details: `{"items":[{"name":"Margherita","quantity":2,"price":12.5,"variant_id":42}]}`,
	}
	var cart CartSummary
	if err := widgets.DecodeDetails(p, &cart); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 || cart.Items[0].VariantID != 42 {
		t.Fatalf("unexpected cart %+v", cart)
	}
}
