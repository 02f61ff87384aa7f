package handlers

import (
	"context"

	"github.com/maahtami/study-planner-ece1778/dto"
	"github.com/maahtami/study-planner-ece1778/model"
)

type PlannerServiceInterface interface {
	List(ctx context.Context, ownerID string) *dto.SessionListResponse
	Get(id string) (*model.StudySession, error)
	Create(ctx context.Context, ownerID string, req dto.CreateSessionRequest) (*model.StudySession, error)
	Edit(ctx context.Context, ownerID, id string, req dto.UpdateSessionRequest) (*model.StudySession, error)
	Complete(ctx context.Context, ownerID, id string) (*dto.CompleteSessionResponse, error)
	Restart(ctx context.Context, ownerID, id string) (*dto.CompleteSessionResponse, error)
	Rate(ctx context.Context, ownerID, id string, rating int) (*model.StudySession, error)
	Delete(ctx context.Context, ownerID, id string) error
	Gamification(ownerID string) (*model.GamificationState, error)
	ResetGamification(ownerID string) error
	Stats(ctx context.Context, ownerID string) (*dto.StatsResponse, error)
	OnSignIn(ctx context.Context, ownerID string) error
	OnSignOut(ctx context.Context, ownerID string) error
	GetSettings() (*model.AppSettings, error)
	UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*model.AppSettings, error)
}

type BackupServiceInterface interface {
	Export(ctx context.Context, ownerID string) (string, string, error)
}
