package service

import "github.com/Beliver-cell/Fantasy-luxe-store/internal/models"

// allowedTransitions используется только в строгом режиме.
var allowedTransitions = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderStatusPlaced: {
		models.OrderStatusShipped:   true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusShipped: {
		models.OrderStatusDelivered: true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

func canTransition(from, to models.OrderStatus) bool {
	next, ok := allowedTransitions[from]
	return ok && next[to]
}
