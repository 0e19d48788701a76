package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type SizeGuideUsecase struct {
	guideRepo repo.SizeGuideRepository
}

// DI
func NewSizeGuideUsecase(guideRepo repo.SizeGuideRepository) *SizeGuideUsecase {
	return &SizeGuideUsecase{guideRepo: guideRepo}
}

type SaveSizeGuideInput struct {
	Name string
	Rows string
}

func (u *SizeGuideUsecase) List(ctx context.Context) ([]model.SizeGuide, error) {
	items, err := u.guideRepo.List(ctx)
	if err != nil {
		return []model.SizeGuide{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *SizeGuideUsecase) AdminCreate(ctx context.Context, adminUserID int64, in SaveSizeGuideInput) (model.SizeGuide, error) {
	if adminUserID <= 0 {
		return model.SizeGuide{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateSizeGuideInput(in); err != nil {
		return model.SizeGuide{}, err
	}

	now := time.Now()
	g, err := u.guideRepo.Create(ctx, model.SizeGuide{
		Name:      strings.TrimSpace(in.Name),
		Rows:      in.Rows,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.SizeGuide{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return g, nil
}

func (u *SizeGuideUsecase) AdminUpdate(ctx context.Context, adminUserID int64, guideID int64, in SaveSizeGuideInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if guideID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateSizeGuideInput(in); err != nil {
		return err
	}

	err := u.guideRepo.Update(ctx, model.SizeGuide{
		ID:   guideID,
		Name: strings.TrimSpace(in.Name),
		Rows: in.Rows,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *SizeGuideUsecase) AdminDelete(ctx context.Context, adminUserID int64, guideID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if guideID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.guideRepo.Delete(ctx, guideID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func validateSizeGuideInput(in SaveSizeGuideInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}

	//rowsはJSON配列であること
	var rows []map[string]interface{}
	if err := json.Unmarshal([]byte(in.Rows), &rows); err != nil {
		return NewHTTPError(http.StatusBadRequest, "rows must be a JSON array")
	}
	return nil
}
