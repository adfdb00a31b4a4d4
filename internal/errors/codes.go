package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 클라이언트에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized         = "AUTH_UNAUTHORIZED"          // 로그인 필요
	AuthInvalidCredentials   = "AUTH_INVALID_CREDENTIALS"   // 잘못된 아이디/비밀번호
	AuthTokenExpired         = "AUTH_TOKEN_EXPIRED"         // 토큰 만료
	AuthTokenInvalid         = "AUTH_TOKEN_INVALID"         // 잘못된 토큰
	AuthTokenRevoked         = "AUTH_TOKEN_REVOKED"         // 로그아웃된 토큰
	AuthUsernameExists       = "AUTH_USERNAME_EXISTS"       // 아이디 중복
	AuthRegistrationDisabled = "AUTH_REGISTRATION_DISABLED" // 가입 중지됨

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // 접근 권한 없음
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // 관리자만 가능
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // 작성자만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 메모 (MEMO_) ====================
	MemoNotFound = "MEMO_NOT_FOUND" // 메모 없음 (또는 볼 수 없음)

	// ==================== 댓글 (COMMENT_) ====================
	CommentNotFound = "COMMENT_NOT_FOUND" // 댓글 없음

	// ==================== 사용자 (USER_) ====================
	UserNotFound = "USER_NOT_FOUND" // 사용자 없음

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // 파일 너무 큼
	UploadFailed          = "UPLOAD_FAILED"            // 업로드 실패
	UploadDisabled        = "UPLOAD_DISABLED"          // 스토리지 미설정

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
)
