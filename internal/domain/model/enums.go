package model

// OrderStatus is the order state as reported by the POS backend. Values are
// the backend's wire strings.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "Pendiente"
	OrderStatusInPreparation OrderStatus = "En preparacion"
	OrderStatusReady         OrderStatus = "Listo"
	OrderStatusDelivered     OrderStatus = "Entregado"
	OrderStatusPaid          OrderStatus = "Pagado"
	OrderStatusTakingOrder   OrderStatus = "Tomando pedido"
)

// IsActive reports whether the kitchen still owes work on an order in this state.
func (s OrderStatus) IsActive() bool {
	return s == OrderStatusPending || s == OrderStatusInPreparation
}

// AlertFamily distinguishes the two kinds of operational alerts.
type AlertFamily string

const (
	AlertFamilyStock AlertFamily = "stock"
	AlertFamilyDelay AlertFamily = "delay"
)

// AlertAction is a lifecycle transition of a single alert.
type AlertAction string

const (
	AlertActionRaised  AlertAction = "raised"
	AlertActionCleared AlertAction = "cleared"
)
