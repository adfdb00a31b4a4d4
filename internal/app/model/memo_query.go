package model

import (
	"errors"
	"strconv"
	"strings"
)

const (
	DefaultMemoLimit = 50
	MaxMemoLimit     = 100
)

// Filter values accepted on list requests. ALL widens to every admissible value.
const (
	FilterAll = "ALL"
)

// MemoQuery 메모 목록 조회 쿼리 파라미터
type MemoQuery struct {
	Visibility string   `form:"visibility" binding:"omitempty,memo_visibility"` // PUBLIC, PRIVATE, ALL
	Tags       []string `form:"tag"`                                            // 반복 가능 (교집합)
	Search     string   `form:"search"`                                         // 본문 부분 일치 (대소문자 구분)
	State      string   `form:"state" binding:"omitempty,memo_state"`           // NORMAL, ARCHIVED, ALL
	CreatorID  *uint    `form:"creator_id"`                                     // 작성자 필터
	Limit      string   `form:"limit"`                                          // 범위 밖 값은 조용히 보정
	Offset     string   `form:"offset"`
}

// MemoFilter is a MemoQuery after enum parsing and clamping.
// An empty Visibility or State means ALL.
type MemoFilter struct {
	Visibility Visibility
	State      MemoState
	Tags       []string
	Search     string
	CreatorID  *uint
	Limit      int
	Offset     int
}

// ParseVisibilityFilter maps "", ALL, PUBLIC and PRIVATE; ok is false for anything else.
func ParseVisibilityFilter(s string) (v Visibility, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", FilterAll:
		return "", true
	case string(VisibilityPublic):
		return VisibilityPublic, true
	case string(VisibilityPrivate):
		return VisibilityPrivate, true
	}
	return "", false
}

// ParseStateFilter defaults to NORMAL when s is empty; ALL maps to "".
func ParseStateFilter(s string) (MemoState, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(MemoStateNormal):
		return MemoStateNormal, true
	case string(MemoStateArchived):
		return MemoStateArchived, true
	case FilterAll:
		return "", true
	}
	return "", false
}

// ParseLimit returns DefaultMemoLimit for an empty value, otherwise the limit bounded
// to [1, MaxMemoLimit]. Integers beyond the int range saturate. ok is false for non-integers.
func ParseLimit(raw string) (int, bool) {
	if strings.TrimSpace(raw) == "" {
		return DefaultMemoLimit, true
	}
	n, ok := parsePageInt(raw)
	if !ok {
		return 0, false
	}
	switch {
	case n < 1:
		return 1, true
	case n > MaxMemoLimit:
		return MaxMemoLimit, true
	}
	return int(n), true
}

// ParseOffset returns 0 for empty or negative values.
func ParseOffset(raw string) (int, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, true
	}
	n, ok := parsePageInt(raw)
	if !ok {
		return 0, false
	}
	if n < 0 {
		return 0, true
	}
	if n > int64(maxInt) {
		return maxInt, true
	}
	return int(n), true
}

const maxInt = int(^uint(0) >> 1)

func parsePageInt(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		return n, true
	}
	// ParseInt은 범위 초과 시 부호에 맞는 최대/최소값을 돌려준다
	if errors.Is(err, strconv.ErrRange) {
		return n, true
	}
	return 0, false
}

// NormalizeTags trims names, drops a leading '#', removes empties and duplicates.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}
	return result
}
