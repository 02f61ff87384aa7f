package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"github.com/maahtami/study-planner-ece1778/model"
)

// BackupService exports a user's full planner (sessions plus gamification
// snapshot) as a JSON object into object storage and hands back a presigned
// download URL.
type BackupService struct {
	appcontext.DefaultService
	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool

	sessionSvc      *SessionService
	gamificationSvc *GamificationService
}

const BACKUP_SVC = "backup_svc"

const exportURLExpiry = 24 * time.Hour

type plannerExport struct {
	ExportedAt   time.Time                `json:"exported_at"`
	OwnerID      string                   `json:"owner_id,omitempty"`
	Sessions     []model.StudySession     `json:"sessions"`
	Gamification *model.GamificationState `json:"gamification,omitempty"`
}

func (svc BackupService) Id() string {
	return BACKUP_SVC
}

func (svc *BackupService) Configure(ctx *appcontext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	if svc.endpoint == "" {
		svc.endpoint = "localhost:9000"
	}

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	if svc.accessKey == "" {
		svc.accessKey = "admin"
	}

	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	if svc.secretKey == "" {
		svc.secretKey = "password123"
	}

	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "study-planner-exports"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *BackupService) Start() error {
	svc.sessionSvc = svc.Service(SESSION_SVC).(*SessionService)
	svc.gamificationSvc = svc.Service(GAMIFICATION_SVC).(*GamificationService)

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	log.Printf("Backup service started successfully with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *BackupService) ensureBucket() error {
	ctx := context.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created MinIO bucket: %s", svc.bucketName)
	}

	return nil
}

// Export snapshots the current planner state into the bucket and returns the
// object name with a presigned URL valid for 24 hours.
func (svc *BackupService) Export(ctx context.Context, ownerID string) (string, string, error) {
	state, err := svc.gamificationSvc.Load(ownerID)
	if err != nil {
		return "", "", fmt.Errorf("failed to load gamification state: %v", err)
	}

	export := plannerExport{
		ExportedAt:   time.Now(),
		OwnerID:      ownerID,
		Sessions:     svc.sessionSvc.List(ctx, ownerID),
		Gamification: state,
	}

	payload, err := sonic.Marshal(export)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal export: %v", err)
	}

	owner := ownerID
	if owner == "" {
		owner = "anonymous"
	}
	objectName := fmt.Sprintf("exports/%s/%s.json", owner, export.ExportedAt.UTC().Format("20060102T150405Z"))

	_, err = svc.client.PutObject(ctx, svc.bucketName, objectName, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload export to MinIO: %v", err)
	}

	presignedURL, err := svc.client.PresignedGetObject(ctx, svc.bucketName, objectName, exportURLExpiry, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned URL: %v", err)
	}

	return objectName, presignedURL.String(), nil
}

func (svc *BackupService) GetBucketName() string {
	return svc.bucketName
}
