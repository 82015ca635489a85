package store

import (
	"github.com/stockpos/stockpos/internal/domain"
)

// buildOrderView assembles the external order shape from its parts. Product
// fields are copied through an explicit allow-list (descriptive fields only);
// price and amount come from the line item, never from the live product.
func buildOrderView(order *domain.SalesOrder, items []domain.OrderItem, products map[int64]domain.Product) *domain.OrderView {
	view := &domain.OrderView{
		ID:          order.ID,
		Description: order.Description,
		CreatedAt:   order.CreatedAt,
		Products:    make([]domain.OrderItemView, 0, len(items)),
	}
	for _, item := range items {
		product := products[item.ProductID]
		view.Products = append(view.Products, domain.OrderItemView{
			Barcode:     product.Barcode,
			Name:        product.Name,
			Description: product.Description,
			Image:       product.Image,
			Unit:        product.Unit,
			Price:       item.Price,
			Amount:      item.Amount,
		})
	}
	return view
}
