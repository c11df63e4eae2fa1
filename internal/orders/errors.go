package orders

import (
	"github.com/angelmondragon/oms-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/oms-backend/pkg/errors"
)

const (
	ReasonOrderNotFound           pkgerrors.Reason = "ORDER_NOT_FOUND"
	ReasonOrderNotPending         pkgerrors.Reason = "ORDER_NOT_PENDING"
	ReasonInvalidStatus           pkgerrors.Reason = "INVALID_STATUS"
	ReasonInvalidStatusTransition pkgerrors.Reason = "INVALID_STATUS_TRANSITION"
	ReasonInvalidItems            pkgerrors.Reason = "INVALID_ITEMS"
	ReasonLockTimeout             pkgerrors.Reason = "LOCK_TIMEOUT"
)

type OrderDetails struct {
	OrderID int64 `json:"order_id"`
}

type NotPendingDetails struct {
	OrderID int64             `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
}

type InvalidStatusDetails struct {
	Status string `json:"status"`
}

type TransitionDetails struct {
	From enums.OrderStatus `json:"from"`
	To   enums.OrderStatus `json:"to"`
}

func orderNotFound(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithReason(ReasonOrderNotFound).
		WithDetails(OrderDetails{OrderID: id})
}

func orderNotPending(id int64, status enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order must be PENDING").
		WithReason(ReasonOrderNotPending).
		WithDetails(NotPendingDetails{OrderID: id, Status: status})
}

func invalidStatus(raw string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
		WithReason(ReasonInvalidStatus).
		WithDetails(InvalidStatusDetails{Status: raw})
}

func invalidTransition(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition").
		WithReason(ReasonInvalidStatusTransition).
		WithDetails(TransitionDetails{From: from, To: to})
}

func invalidItems(details map[string]string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid order items").
		WithReason(ReasonInvalidItems).
		WithDetails(details)
}
