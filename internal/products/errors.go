package products

import pkgerrors "github.com/angelmondragon/oms-backend/pkg/errors"

const (
	ReasonProductNotFound   pkgerrors.Reason = "PRODUCT_NOT_FOUND"
	ReasonProductInactive   pkgerrors.Reason = "PRODUCT_INACTIVE"
	ReasonOutOfStock        pkgerrors.Reason = "OUT_OF_STOCK"
	ReasonSKUTaken          pkgerrors.Reason = "SKU_TAKEN"
	ReasonProductReferenced pkgerrors.Reason = "PRODUCT_REFERENCED"
)

// ProductDetails identifies the product an error refers to.
type ProductDetails struct {
	ProductID int64 `json:"product_id"`
}

// OutOfStockDetails reports what was asked for against what the locked row had.
type OutOfStockDetails struct {
	ProductID int64 `json:"product_id"`
	Available int64 `json:"available"`
	Requested int64 `json:"requested"`
}

func NotFoundError(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
		WithReason(ReasonProductNotFound).
		WithDetails(ProductDetails{ProductID: id})
}

func InactiveError(id int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "product is inactive").
		WithReason(ReasonProductInactive).
		WithDetails(ProductDetails{ProductID: id})
}

func OutOfStockError(id, available, requested int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
		WithReason(ReasonOutOfStock).
		WithDetails(OutOfStockDetails{ProductID: id, Available: available, Requested: requested})
}

func skuTakenError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists").
		WithReason(ReasonSKUTaken)
}

func referencedError(id int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "product is referenced by orders").
		WithReason(ReasonProductReferenced).
		WithDetails(ProductDetails{ProductID: id})
}
