package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payrecon/internal/domain"
	"payrecon/pkg/logger"
	"payrecon/pkg/response"
)

// writeError maps a domain.ErrorKind (§7) onto an HTTP status and the
// unified error envelope. Every handler funnels failures through here
// so the kind-to-status mapping lives in exactly one place.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	if status >= http.StatusInternalServerError {
		logger.GetLogger().WithError(err).WithField("kind", kind).Error("request failed")
	}

	response.Error(c, status, err.Error())
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindBadRequest, domain.KindInvalidState, domain.KindParseError:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindTransientStore, domain.KindTransientQueue, domain.KindMirrorError, domain.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
