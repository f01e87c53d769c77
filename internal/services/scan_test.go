package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/config"
	"yourresumescanner/resume-scanner/internal/models"
	"yourresumescanner/resume-scanner/internal/repositories"
	"yourresumescanner/resume-scanner/internal/testutil"
)

func newTestScanService(t *testing.T, ai AIClient, store ResultStore) ScanService {
	t.Helper()
	log := zap.NewNop()
	return NewScanService(
		NewPDFInspector(4*1024*1024),
		NewRasterizer(config.DefaultRasterizerConfig(), config.UploadConfig{MaxFileSize: 4 * 1024 * 1024}, log),
		NewAnalyzer(ai, testAIConfig(), log),
		store,
		log,
	)
}

func TestScanPDF_EndToEnd(t *testing.T) {
	ctx := context.Background()
	stub := &stubAIClient{reply: "```json\n" + encodeReply(t, validReply(82)) + "\n```"}
	store := NewMemoryStore(0)
	svc := newTestScanService(t, stub, store)

	data, err := svc.ScanPDF(ctx, Session{UserID: "user-1"}, models.JobContext{JobTitle: "Backend Engineer"}, testutil.MinimalPDF(1), "3f1b7c2e-8a4d-4c6b-9e2f-000000000e2e")
	require.NoError(t, err)

	require.Len(t, data.Images, 1)
	assert.Equal(t, 1, data.Images[0].PageNumber)
	assert.Equal(t, 1, stub.calls)
	assert.Len(t, stub.last.Images, 1)

	stored, err := store.Get(ctx, "3f1b7c2e-8a4d-4c6b-9e2f-000000000e2e")
	require.NoError(t, err)
	assert.Equal(t, 82, stored.Analysis.OverallScore)
	assert.Equal(t, "3f1b7c2e-8a4d-4c6b-9e2f-000000000e2e", stored.ID)
	assert.False(t, stored.Timestamp.IsZero())
}

func TestScan_NoImagesSkipsAI(t *testing.T) {
	stub := &stubAIClient{reply: "{}"}
	store := NewMemoryStore(0)
	svc := newTestScanService(t, stub, store)

	_, err := svc.Scan(context.Background(), Session{UserID: "u"}, models.JobContext{}, []models.PageImage{}, "3f1b7c2e-8a4d-4c6b-9e2f-000000000001")

	assert.ErrorIs(t, err, ErrNoImages)
	assert.Zero(t, stub.calls)
	assert.Zero(t, store.Len())
}

func TestScan_ContractViolationStoresNothing(t *testing.T) {
	reply := validReply(70)
	delete(reply["categoryScores"].(map[string]any), "impact")
	stub := &stubAIClient{reply: encodeReply(t, reply)}
	store := NewMemoryStore(0)
	svc := newTestScanService(t, stub, store)

	_, err := svc.Scan(context.Background(), Session{UserID: "u"}, models.JobContext{}, onePage, "3f1b7c2e-8a4d-4c6b-9e2f-000000000001")

	var contract *ContractError
	require.ErrorAs(t, err, &contract)
	var missing *MissingCategoryError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "impact", missing.Category)
	assert.NotEmpty(t, contract.Excerpt)
	assert.Zero(t, store.Len())
}

func TestScan_DuplicateScanID(t *testing.T) {
	stub := &stubAIClient{reply: encodeReply(t, validReply(70))}
	svc := newTestScanService(t, stub, NewMemoryStore(0))
	sess := Session{UserID: "u"}

	_, err := svc.Scan(context.Background(), sess, models.JobContext{}, onePage, "3f1b7c2e-8a4d-4c6b-9e2f-000000000001")
	require.NoError(t, err)

	_, err = svc.Scan(context.Background(), sess, models.JobContext{}, onePage, "3f1b7c2e-8a4d-4c6b-9e2f-000000000001")
	assert.ErrorIs(t, err, ErrScanExists)
}

func TestScan_RecordsMetadataInDatabase(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewScanRepository(newServiceTestDB(t))
	store := NewDatabaseStore(repo, nil, zap.NewNop())
	svc := newTestScanService(t, &stubAIClient{reply: encodeReply(t, validReply(66))}, store)

	job := models.JobContext{JobTitle: "Backend Engineer", Company: "Acme"}
	_, err := svc.Scan(ctx, Session{UserID: "user-7"}, job, onePage, "3f1b7c2e-8a4d-4c6b-9e2f-0000000000db")
	require.NoError(t, err)

	scan, err := repo.FindByID("3f1b7c2e-8a4d-4c6b-9e2f-0000000000db")
	require.NoError(t, err)
	assert.Equal(t, "user-7", scan.UserID)
	assert.Equal(t, "Acme", scan.Company)
	assert.Equal(t, 66, scan.OverallScore)
}

func TestScanPDF_RejectsBeforeRasterizing(t *testing.T) {
	stub := &stubAIClient{reply: "{}"}
	svc := newTestScanService(t, stub, NewMemoryStore(0))
	ctx := context.Background()

	_, err := svc.ScanPDF(ctx, Session{UserID: "u"}, models.JobContext{}, []byte("hello"), "3f1b7c2e-8a4d-4c6b-9e2f-000000000001")
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = svc.ScanPDF(ctx, Session{}, models.JobContext{}, testutil.MinimalPDF(1), "3f1b7c2e-8a4d-4c6b-9e2f-000000000001")
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.ScanURL(ctx, Session{UserID: "u"}, models.JobContext{}, "http://127.0.0.1:1/x.pdf", "")
	assert.ErrorIs(t, err, ErrMissingScanID)

	assert.Zero(t, stub.calls)
}
