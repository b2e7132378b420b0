package restapi

import (
	"errors"
	"net/http"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

const userIDHeader = "X-User-ID"

// APIError is the body of every failed request.
type APIError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type apiErrorResponse struct {
	Error APIError `json:"error"`
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrUnsupportedMarket):
		return http.StatusBadRequest, entity.KindUnsupportedMarket
	case errors.Is(err, entity.ErrInvalidAccount):
		return http.StatusBadRequest, entity.KindInvalidAccount
	case errors.Is(err, entity.ErrInvalidSettings):
		return http.StatusBadRequest, "InvalidSettings"
	case errors.Is(err, entity.ErrAccountExists):
		return http.StatusConflict, "AccountExists"
	case errors.Is(err, entity.ErrAccountNotFound):
		return http.StatusNotFound, "AccountNotFound"
	case errors.Is(err, entity.ErrRPCUnavailable):
		return http.StatusServiceUnavailable, entity.KindRPCUnavailable
	case errors.Is(err, entity.ErrContractCallFailed):
		return http.StatusBadGateway, entity.KindContractCallFailed
	default:
		return http.StatusInternalServerError, entity.KindInternal
	}
}

func writeError(c *gin.Context, err error) {
	status, kind := statusFor(err)
	c.AbortWithStatusJSON(status, apiErrorResponse{Error: APIError{Kind: kind, Message: err.Error()}})
}

// resolveUserID takes the user from the request header, falling back to the
// local app session.
func resolveUserID(c *gin.Context, session port.UserSession) (string, bool) {
	if id := c.GetHeader(userIDHeader); id != "" {
		return id, true
	}
	if session == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apiErrorResponse{Error: APIError{
			Kind: "Unauthorized", Message: "missing " + userIDHeader + " header",
		}})
		return "", false
	}
	id, err := session.Wait(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, apiErrorResponse{Error: APIError{
			Kind: "SessionUnavailable", Message: err.Error(),
		}})
		return "", false
	}
	return id, true
}
