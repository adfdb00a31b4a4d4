package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/internal/app/service"
	apperrors "github.com/ikkim/memolite-backend/internal/errors"
	"github.com/ikkim/memolite-backend/pkg/logger"
)

// parseIDParam reads a positive numeric path parameter. On failure the
// 400 response has already been written.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 ID 형식입니다")
		return 0, false
	}
	return uint(id), true
}

// respondBindingError 바인딩 실패 응답 (필드별 오류가 있으면 포함)
func respondBindingError(c *gin.Context, err error) {
	if fields := apperrors.ParseBindingError(err); len(fields) > 0 {
		apperrors.RespondWithValidationError(c, fields)
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
}

// respondServiceError maps the errors every service can return.
func respondServiceError(c *gin.Context, log *logger.Logger, err error, context string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Warn("Validation failed", map[string]interface{}{
			"field":  verr.Field,
			"reason": verr.Reason,
		})
		apperrors.RespondWithValidationError(c, map[string]string{verr.Field: verr.Reason})
	case errors.Is(err, service.ErrStoreUnavailable):
		log.Error("Store unavailable", err, map[string]interface{}{
			"context": context,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalDatabaseError,
			"데이터베이스에 연결할 수 없습니다. 잠시 후 다시 시도해주세요")
	default:
		log.Error("Request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// respondMemoReadError 조회 경로: 없는 메모와 볼 수 없는 메모를 구분하지 않는다
func respondMemoReadError(c *gin.Context, log *logger.Logger, err error, memoID uint) {
	if errors.Is(err, service.ErrMemoNotFound) || errors.Is(err, service.ErrMemoAccessDenied) {
		log.Debug("Memo not visible", map[string]interface{}{
			"memo_id": memoID,
		})
		apperrors.MemoNotFoundResponse(c)
		return
	}
	respondServiceError(c, log, err, "memo")
}

// respondMemoWriteError 수정/삭제 경로: 보이지만 소유하지 않은 메모는 403
func respondMemoWriteError(c *gin.Context, log *logger.Logger, err error, memoID uint) {
	switch {
	case errors.Is(err, service.ErrMemoNotFound):
		apperrors.MemoNotFoundResponse(c)
	case errors.Is(err, service.ErrMemoAccessDenied):
		log.Warn("Memo write denied", map[string]interface{}{
			"memo_id": memoID,
		})
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "본인의 메모만 수정할 수 있습니다")
	default:
		respondServiceError(c, log, err, "memo")
	}
}
