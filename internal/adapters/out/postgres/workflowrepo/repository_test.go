package workflowrepo_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/postgres/workflowrepo"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const listQuery = `SELECT * FROM "merchant_workflows" ORDER BY merchant_id`

func newRepository(t *testing.T) (*workflowrepo.GormWorkflowRulesRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return workflowrepo.NewGormWorkflowRulesRepository(db), mock
}

func TestListMerchantWorkflows(t *testing.T) {
	repo, mock := newRepository(t)

	restaurant := "5b0f1f4c-6a55-4c4e-9a43-8bd2b0e0d7a1"
	pharmacy := "9e3c8f02-1d4b-4f0e-8a9a-2c1f7b6d5e40"
	override := `{
		"cancellableFrom": ["PENDING", "PAYMENT_PROCESSING"],
		"autoAccept": true,
		"timeouts": {"PREPARING": {"limit": "40m", "action": "CANCEL", "reason": "SYSTEM_ERROR", "details": "Kitchen too slow"}}
	}`

	rows := sqlmock.NewRows([]string{"merchant_id", "vertical", "override", "updated_at"}).
		AddRow(restaurant, "RESTAURANT", []byte(override), time.Now()).
		AddRow(pharmacy, "PHARMACY", []byte(`{}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(listQuery)).WillReturnRows(rows)

	workflows, err := repo.ListMerchantWorkflows(t.Context())

	require.NoError(t, err)
	require.Len(t, workflows, 2)

	first := workflows[0]
	assert.Equal(t, restaurant, first.MerchantID.String())
	assert.Equal(t, workflow.Restaurant, first.Vertical)
	assert.Equal(t, []order.Status{order.Pending, order.PaymentProcessing}, first.Override.CancellableFrom)
	require.NotNil(t, first.Override.AutoAccept)
	assert.True(t, *first.Override.AutoAccept)
	assert.Nil(t, first.Override.RefundableFrom)
	assert.Equal(t,
		workflow.CancelAfter(40*time.Minute, order.SystemError, "Kitchen too slow"),
		first.Override.Timeouts[order.Preparing])

	second := workflows[1]
	assert.Equal(t, workflow.Pharmacy, second.Vertical)
	assert.True(t, second.Override.IsEmpty())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMerchantWorkflows_MalformedRow(t *testing.T) {
	tests := []struct {
		name     string
		vertical string
		override string
	}{
		{name: "unknown_vertical", vertical: "BAKERY", override: `{}`},
		{name: "unknown_status", vertical: "GROCERY", override: `{"manualStatuses": ["COOKING"]}`},
		{name: "bad_limit", vertical: "GROCERY", override: `{"timeouts": {"PREPARING": {"limit": "soon", "action": "CANCEL"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepository(t)
			rows := sqlmock.NewRows([]string{"merchant_id", "vertical", "override", "updated_at"}).
				AddRow("5b0f1f4c-6a55-4c4e-9a43-8bd2b0e0d7a1", tt.vertical, []byte(tt.override), time.Now())
			mock.ExpectQuery(regexp.QuoteMeta(listQuery)).WillReturnRows(rows)

			_, err := repo.ListMerchantWorkflows(t.Context())
			require.Error(t, err)
		})
	}
}

func TestListMerchantWorkflows_Empty(t *testing.T) {
	repo, mock := newRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta(listQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"merchant_id", "vertical", "override", "updated_at"}))

	workflows, err := repo.ListMerchantWorkflows(t.Context())

	require.NoError(t, err)
	assert.Empty(t, workflows)
}
