package httpadapter

import (
	"net/http"

	"github.com/suniel12/insightpic/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrPhotoNotFound), domain.IsKind(err, domain.ErrAssetNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrDecode):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
