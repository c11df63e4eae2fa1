package controllers

import (
	"net/http"

	"github.com/angelmondragon/oms-backend/api/responses"
	"github.com/angelmondragon/oms-backend/api/validators"
	"github.com/angelmondragon/oms-backend/internal/reports"
	"github.com/angelmondragon/oms-backend/pkg/logger"
)

// TopProducts serves the best-sellers report for ?start=&end=&limit=.
func TopProducts(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := validators.ParseQueryTime(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryTime(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", reports.DefaultTopProductsLimit, 1, reports.MaxTopProductsLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.TopSellingProducts(r.Context(), start, end, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
