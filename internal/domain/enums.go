package domain

// OrderStatus represents the status of a marketplace order upstream
type OrderStatus string

const (
	OrderStatusInProgress         OrderStatus = "IN_PROGRESS"
	OrderStatusShipped            OrderStatus = "SHIPPED"
	OrderStatusInBackorder        OrderStatus = "IN_BACKORDER"
	OrderStatusManco              OrderStatus = "MANCO"
	OrderStatusCanceled           OrderStatus = "CANCELED"
	OrderStatusInCombi            OrderStatus = "IN_COMBI"
	OrderStatusClosed             OrderStatus = "CLOSED"
	OrderStatusNew                OrderStatus = "NEW"
	OrderStatusReturned           OrderStatus = "RETURNED"
	OrderStatusRequiresCorrection OrderStatus = "REQUIRES_CORRECTION"
	OrderStatusAwaitingPayment    OrderStatus = "AWAITING_PAYMENT"
)

// IsValid checks if the order status is one the upstream knows about
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusInProgress,
		OrderStatusShipped,
		OrderStatusInBackorder,
		OrderStatusManco,
		OrderStatusCanceled,
		OrderStatusInCombi,
		OrderStatusClosed,
		OrderStatusNew,
		OrderStatusReturned,
		OrderStatusRequiresCorrection,
		OrderStatusAwaitingPayment:
		return true
	default:
		return false
	}
}

func (s OrderStatus) String() string { return string(s) }
