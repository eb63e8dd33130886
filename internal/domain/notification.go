package domain

import "time"

type NotificationType string

const (
	NotifyOrderStatus NotificationType = "ORDER_STATUS"
	NotifyDelivery    NotificationType = "DELIVERY"
	NotifySystem      NotificationType = "SYSTEM"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifyOrderStatus, NotifyDelivery, NotifySystem:
		return true
	}
	return false
}

type Notification struct {
	ID        string           `json:"_id"`
	UserID    string           `json:"userId"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	OrderID   string           `json:"orderId,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
