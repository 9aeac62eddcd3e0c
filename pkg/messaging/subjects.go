package messaging

const (
	// ProductsCreatedSubject carries events about products added to the catalog.
	ProductsCreatedSubject = "storefront.products.created"
)
