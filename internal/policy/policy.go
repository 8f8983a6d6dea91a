package policy

import "cancellation-service/internal/models"

// Policy describes what a cancellation request is allowed to do for a given
// order lifecycle stage. Computed, never persisted: the order status may
// change between requests, so every request looks the table up again.
type Policy struct {
	CanCancel         bool
	CancelType        models.CancelType
	RefundRatePercent int
	RefundDeliveryFee bool
	CanRefundCoupon   bool
	CanRefundPoints   bool
	Message           string
}

// RefundBreakdown is the amount split produced by CalculateRefundAmount.
type RefundBreakdown struct {
	MenuRefundAmount     int64
	DeliveryRefundAmount int64
	RefundAmount         int64
}

var policyTable = map[models.OrderStatus]Policy{
	models.OrderStatusCreated: {
		CanCancel: true, CancelType: models.CancelTypeInstant,
		RefundRatePercent: 100, RefundDeliveryFee: true,
		CanRefundCoupon: true, CanRefundPoints: true,
	},
	models.OrderStatusConfirmed: {
		CanCancel: true, CancelType: models.CancelTypeInstant,
		RefundRatePercent: 100, RefundDeliveryFee: true,
		CanRefundCoupon: true, CanRefundPoints: true,
	},
	models.OrderStatusPreparing: {
		CanCancel: true, CancelType: models.CancelTypeApprovalRequired,
		RefundRatePercent: 50, RefundDeliveryFee: true,
		CanRefundCoupon: true, CanRefundPoints: true,
	},
	models.OrderStatusReady: {
		CanCancel: true, CancelType: models.CancelTypeApprovalRequired,
		RefundRatePercent: 30, RefundDeliveryFee: true,
		CanRefundCoupon: true, CanRefundPoints: true,
	},
	models.OrderStatusPickedUp: {
		CanCancel: true, CancelType: models.CancelTypeApprovalRequired,
		RefundRatePercent: 0, RefundDeliveryFee: false,
		CanRefundCoupon: true, CanRefundPoints: true,
	},
	models.OrderStatusDelivering: {
		CanCancel: true, CancelType: models.CancelTypeApprovalRequired,
		RefundRatePercent: 0, RefundDeliveryFee: false,
		CanRefundCoupon: true, CanRefundPoints: true,
	},
	models.OrderStatusDelivered: {
		CanCancel: false,
		Message:   "delivered orders cannot be cancelled",
	},
	models.OrderStatusCancelled: {
		CanCancel: false,
		Message:   "order is already cancelled",
	},
}

// GetPolicy maps an order lifecycle stage onto a cancellation policy.
func GetPolicy(status models.OrderStatus) Policy {
	if p, ok := policyTable[status]; ok {
		return p
	}
	return Policy{CanCancel: false, Message: "unknown order status"}
}

// CalculateRefundAmount applies the policy rate to the order amounts.
// Rounding is floor per component, never on the sum: integer division
// truncates the menu share, the delivery fee is all-or-nothing.
func CalculateRefundAmount(totalAmount, deliveryFee int64, ratePercent int, refundDeliveryFee bool) RefundBreakdown {
	menu := totalAmount * int64(ratePercent) / 100

	var delivery int64
	if refundDeliveryFee {
		delivery = deliveryFee
	}

	return RefundBreakdown{
		MenuRefundAmount:     menu,
		DeliveryRefundAmount: delivery,
		RefundAmount:         menu + delivery,
	}
}
