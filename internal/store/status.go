package store

type OrderStatus string

const (
	OrderPlaced    OrderStatus = "PLACED"
	OrderFulfilled OrderStatus = "FULFILLED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentCaptured PaymentStatus = "CAPTURED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

var validNextOrder = map[OrderStatus]map[OrderStatus]bool{
	OrderPlaced:    {OrderFulfilled: true, OrderCancelled: true},
	OrderFulfilled: {},
	OrderCancelled: {},
}

var validNextPayment = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentCaptured: {PaymentRefunded: true},
	PaymentRefunded: {},
}

func CanTransitionOrder(from, to OrderStatus) bool {
	return validNextOrder[from][to]
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	return validNextPayment[from][to]
}
