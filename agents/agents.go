// Package agents holds the branded front-end presets. A preset names the
// conversational agent the orchestrator should run, the greeting it opens
// with and the widget types the client knows how to render for that brand.
package agents

// Widget type identifiers the orchestrator sends.
const (
	WidgetProductList       = "shopify-product-list"
	WidgetProductDetails    = "shopify-product-details"
	WidgetCartSummary       = "shopify-cart-summary"
	WidgetOrderConfirmation = "shopify-order-confirmation"
	WidgetOrderStatus       = "shopify-order-status"
	WidgetPatientInfo       = "patient-information"
	WidgetPreInteraction    = "pre-interaction"
)

// Preset describes one branded agent.
type Preset struct {
	Name        string
	Title       string
	Greeting    string
	WidgetTypes []string
}

// Recognizes reports whether the preset renders the given widget type.
func (p Preset) Recognizes(widgetType string) bool {
	for _, t := range p.WidgetTypes {
		if t == widgetType {
			return true
		}
	}
	return false
}

var presets = []Preset{
	{
		Name:     "pizza-store",
		Title:    "Pizza Store",
		Greeting: "pizza_greeting.wav",
		WidgetTypes: []string{
			WidgetCartSummary,
			WidgetOrderConfirmation,
			WidgetOrderStatus,
		},
	},
	{
		Name:     "patient-information",
		Title:    "Patient Intake",
		Greeting: "intake_greeting.wav",
		WidgetTypes: []string{
			WidgetPatientInfo,
			WidgetPreInteraction,
		},
	},
	{
		Name:     "shopify",
		Title:    "Shopify Storefront",
		Greeting: "shop_greeting.wav",
		WidgetTypes: []string{
			WidgetProductList,
			WidgetProductDetails,
			WidgetCartSummary,
			WidgetOrderConfirmation,
		},
	},
	{
		Name:     "simple",
		Title:    "Assistant",
		Greeting: "greeting.wav",
	},
}

// Lookup returns the preset with the given name.
func Lookup(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Names lists the available preset names.
func Names() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}
