package catalog

// Product is the read model this service needs from the catalog: current
// price and stock. Catalog writes (admin product CRUD, image upload) belong
// to another service.
type Product struct {
	ProductID string `dynamodbav:"product_id"` // PK
	Name      string `dynamodbav:"name"`
	Price     int64  `dynamodbav:"price"` // minor units per unit
	Stock     int    `dynamodbav:"stock"`
	ImageURL  string `dynamodbav:"image_url,omitempty"`
}
