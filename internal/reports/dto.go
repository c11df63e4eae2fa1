package reports

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductID       int64  `json:"product_id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	TotalQuantity   int64  `json:"total_quantity"`
	TotalSalesCents int64  `json:"total_sales_cents"`
}
