package errors

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// ParseError 에러를 파싱하여 사용자 친화적인 메시지와 코드로 변환
// 보안상 민감한 정보는 숨기되, 사용자가 문제를 해결할 수 있는 정보 제공
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "서버 오류가 발생했습니다",
		}
	}

	errStrLower := strings.ToLower(err.Error())

	// 1. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return getNotFoundInfo(context)
	}

	// 2. 제약 조건 위반 (PostgreSQL 23xxx / SQLite)

	// 2-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// 2-2. Foreign key constraint violation (23503)
	if IsForeignKeyViolation(err) {
		return parseForeignKeyError(errStrLower, context)
	}

	// 2-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "violates not-null constraint") || strings.Contains(errStrLower, "not null constraint failed") {
		return parseNotNullError(errStrLower)
	}

	// 3. 네트워크/연결 에러
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "외부 서비스 연결에 실패했습니다. 잠시 후 다시 시도해주세요",
		}
	}

	if strings.Contains(errStrLower, "database is closed") || strings.Contains(errStrLower, "bad connection") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "데이터베이스에 연결할 수 없습니다. 잠시 후 다시 시도해주세요",
		}
	}

	// 4. 기본 내부 서버 오류
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseDuplicateKeyError Unique constraint 위반 에러 파싱
func parseDuplicateKeyError(errLower string) ErrorInfo {
	// 아이디 중복
	if strings.Contains(errLower, "username") || strings.Contains(errLower, "idx_users_username") {
		return ErrorInfo{
			Code:    AuthUsernameExists,
			Message: "이미 사용 중인 아이디입니다",
		}
	}

	// 태그 이름 (upsert로 흡수되지만 직접 insert 경로 대비)
	if strings.Contains(errLower, "tags.name") || strings.Contains(errLower, "idx_tags_name") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "이미 존재하는 태그입니다",
		}
	}

	if strings.Contains(errLower, "object_key") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "업로드 키가 충돌했습니다. 다시 시도해주세요",
		}
	}

	// Primary key 중복
	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "이미 존재하는 데이터입니다. 다시 시도해주세요",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "이미 존재하는 데이터입니다",
	}
}

// IsForeignKeyViolation reports a PostgreSQL 23503 or SQLite FOREIGN KEY failure.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// parseForeignKeyError Foreign key constraint 위반 에러 파싱
func parseForeignKeyError(errLower string, context string) ErrorInfo {
	// 삭제 시 참조 중인 데이터가 있는 경우
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "연결된 데이터가 있어 삭제할 수 없습니다",
		}
	}

	if strings.Contains(errLower, "memo_id") || strings.Contains(errLower, "fk_memos") {
		return ErrorInfo{
			Code:    MemoNotFound,
			Message: "존재하지 않는 메모입니다",
		}
	}
	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") ||
		strings.Contains(strings.ToLower(context), "user") {
		return ErrorInfo{
			Code:    UserNotFound,
			Message: "존재하지 않는 사용자입니다",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "참조하는 데이터를 찾을 수 없습니다",
	}
}

// parseNotNullError Not null constraint 위반 에러 파싱
func parseNotNullError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "username"):
		return ErrorInfo{Code: ValidationRequired, Message: "아이디는 필수 항목입니다"}
	case strings.Contains(errLower, "password"):
		return ErrorInfo{Code: ValidationRequired, Message: "비밀번호는 필수 항목입니다"}
	case strings.Contains(errLower, "content"):
		return ErrorInfo{Code: ValidationRequired, Message: "내용은 필수 항목입니다"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "필수 항목이 누락되었습니다",
	}
}

// getNotFoundInfo context에 따른 Not Found 코드/메시지
func getNotFoundInfo(context string) ErrorInfo {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "memo") || strings.Contains(contextLower, "메모"):
		return ErrorInfo{Code: MemoNotFound, Message: "메모를 찾을 수 없습니다"}
	case strings.Contains(contextLower, "comment") || strings.Contains(contextLower, "댓글"):
		return ErrorInfo{Code: CommentNotFound, Message: "댓글을 찾을 수 없습니다"}
	case strings.Contains(contextLower, "user") || strings.Contains(contextLower, "사용자"):
		return ErrorInfo{Code: UserNotFound, Message: "사용자를 찾을 수 없습니다"}
	case strings.Contains(contextLower, "resource") || strings.Contains(contextLower, "파일"):
		return ErrorInfo{Code: ResourceNotFound, Message: "파일을 찾을 수 없습니다"}
	}

	return ErrorInfo{Code: ResourceNotFound, Message: "요청한 데이터를 찾을 수 없습니다"}
}

// getDefaultErrorMessage context에 따른 기본 에러 메시지
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "생성") || strings.Contains(contextLower, "등록") {
		return "등록 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	if strings.Contains(contextLower, "update") || strings.Contains(contextLower, "수정") {
		return "수정 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	if strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "삭제") {
		return "삭제 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}

	return "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
}

// ParseBindingError gin 바인딩 에러를 필드별 메시지로 변환
// validator 에러가 아니면 nil
func ParseBindingError(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := toSnakeCase(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "필수 항목입니다"
		case "min":
			fields[name] = "최소 " + fe.Param() + " 이상이어야 합니다"
		case "max":
			fields[name] = "최대 " + fe.Param() + " 이하여야 합니다"
		case "memo_visibility":
			fields[name] = "PUBLIC, PRIVATE 또는 ALL 이어야 합니다"
		case "memo_state":
			fields[name] = "NORMAL, ARCHIVED 또는 ALL 이어야 합니다"
		default:
			fields[name] = "올바르지 않은 값입니다"
		}
	}
	return fields
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseAndRespond 에러를 파싱하여 응답 반환 (헬퍼 함수)
// controller에서 간편하게 사용할 수 있도록
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
