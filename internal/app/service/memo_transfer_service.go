package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const memoSheetName = "memos"

var exportHeaders = []string{"id", "content", "visibility", "pinned", "state", "tags", "created_at"}

// ImportResult 엑셀 가져오기 결과
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// MemoTransferService moves a user's memos in and out of XLSX workbooks.
type MemoTransferService interface {
	Export(ctx context.Context, owner model.Viewer, w io.Writer) (int, error)
	Import(ctx context.Context, owner model.Viewer, r io.Reader) (*ImportResult, error)
}

type memoTransferService struct {
	memoRepo    repository.MemoRepository
	memoService MemoService
}

func NewMemoTransferService(memoRepo repository.MemoRepository, memoService MemoService) MemoTransferService {
	return &memoTransferService{
		memoRepo:    memoRepo,
		memoService: memoService,
	}
}

// Export writes every memo owned by owner, in any state, to w as one sheet.
func (s *memoTransferService) Export(ctx context.Context, owner model.Viewer, w io.Writer) (int, error) {
	if !owner.Authenticated {
		return 0, ErrMemoAccessDenied
	}

	filter := model.MemoFilter{CreatorID: &owner.UserID}
	memos, err := s.memoRepo.ListAll(ctx, owner, filter)
	if err != nil {
		return 0, storeError(err)
	}
	if err := s.memoRepo.LoadDetails(ctx, memos); err != nil {
		return 0, storeError(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), memoSheetName); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(memoSheetName, "A1", &exportHeaders); err != nil {
		return 0, err
	}

	for i, memo := range memos {
		tagNames := make([]string, len(memo.Tags))
		for j, tag := range memo.Tags {
			tagNames[j] = tag.Name
		}
		row := []interface{}{
			memo.ID,
			memo.Content,
			string(memo.Visibility),
			memo.Pinned,
			string(memo.State),
			strings.Join(tagNames, ","),
			memo.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(memoSheetName, cell, &row); err != nil {
			return 0, err
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("Memos exported", map[string]interface{}{
		"user_id": owner.UserID,
		"count":   len(memos),
	})
	return len(memos), nil
}

// Import reads rows of (content, visibility, pinned) from the first sheet, skipping
// the header row, and creates each memo through the memo service so tags get synced.
// Invalid rows are skipped and reported; store failures abort the import.
func (s *memoTransferService) Import(ctx context.Context, owner model.Viewer, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, newValidationError("file", "not a readable XLSX workbook")
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, newValidationError("file", "no sheets found")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		req, ok := parseMemoRow(row)
		if !ok {
			result.Skipped++
			continue
		}

		if _, err := s.memoService.CreateMemo(ctx, owner, req); err != nil {
			if errors.Is(err, ErrValidation) {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			return result, err
		}
		result.Imported++
	}

	logger.Info("Memos imported", map[string]interface{}{
		"user_id":  owner.UserID,
		"sheet":    sheetName,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})
	return result, nil
}

func parseMemoRow(row []string) (model.CreateMemoRequest, bool) {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return model.CreateMemoRequest{}, false
	}

	req := model.CreateMemoRequest{Content: row[0]}
	if len(row) > 1 {
		req.Visibility = strings.ToUpper(strings.TrimSpace(row[1]))
	}
	if len(row) > 2 {
		pinned, err := strconv.ParseBool(strings.TrimSpace(row[2]))
		req.Pinned = err == nil && pinned
	}
	return req, true
}
