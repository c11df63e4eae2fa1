package customers

import pkgerrors "github.com/angelmondragon/oms-backend/pkg/errors"

const (
	ReasonCustomerNotFound  pkgerrors.Reason = "CUSTOMER_NOT_FOUND"
	ReasonEmailTaken        pkgerrors.Reason = "EMAIL_TAKEN"
	ReasonCustomerHasOrders pkgerrors.Reason = "CUSTOMER_HAS_ORDERS"
)

// NotFoundDetails identifies the missing customer.
type NotFoundDetails struct {
	CustomerID int64 `json:"customer_id"`
}

// NotFoundError is returned whenever a referenced customer does not exist.
func NotFoundError(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
		WithReason(ReasonCustomerNotFound).
		WithDetails(NotFoundDetails{CustomerID: id})
}

func emailTakenError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already exists").
		WithReason(ReasonEmailTaken)
}

func hasOrdersError(id int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "customer has existing orders").
		WithReason(ReasonCustomerHasOrders).
		WithDetails(NotFoundDetails{CustomerID: id})
}
