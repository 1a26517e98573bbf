package agents

// Detail payloads carried inside widget envelopes. Field names follow the
// orchestrator's wire format.

// CartItem is one line of a cart-summary widget.
type CartItem struct {
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	VariantID       int64   `json:"variant_id"`
	ProductImageSrc string  `json:"product_image_src,omitempty"`
}

// CartSummary is the details payload of a shopify-cart-summary widget.
type CartSummary struct {
	Items []CartItem `json:"items"`
}

// Product is one entry of a product-list widget, or the subject of a
// product-details widget.
type Product struct {
	ProductID         int64  `json:"product_id"`
	ProductTitle      string `json:"product_title"`
	ProductImageSrc   string `json:"product_image_src,omitempty"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// ProductList is the details payload of a shopify-product-list widget.
type ProductList struct {
	Products []Product `json:"products"`
}

// OrderConfirmation is the details payload of a shopify-order-confirmation
// widget.
type OrderConfirmation struct {
	Message            string `json:"message"`
	ConfirmationNumber string `json:"confirmation_number"`
	ConfirmationLink   string `json:"confirmation_link,omitempty"`
}
