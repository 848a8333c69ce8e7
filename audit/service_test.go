package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shillien-project/portal/model"
	"github.com/shillien-project/portal/testutil"
)

func TestLog_WritesBatchOnStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	acct := int64(7)
	svc.Log(Entry{
		TraceID:   "trace-1",
		AccountID: &acct,
		Action:    "market_buy",
		Request:   map[string]interface{}{"name": "Red Potion", "quantity": 3},
		Response:  map[string]interface{}{"balance": 850},
		IP:        "127.0.0.1",
	})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "market_buy", logs[0].Action)
	assert.Equal(t, "trace-1", logs[0].TraceID)
	require.NotNil(t, logs[0].AccountID)
	assert.Equal(t, int64(7), *logs[0].AccountID)
	assert.JSONEq(t, `{"name":"Red Potion","quantity":3}`, string(logs[0].Request))
}

func TestLog_FlushesOnInterval(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	defer svc.Stop(context.Background())

	svc.Log(Entry{TraceID: "trace-2", Action: "market_sell"})

	require.Eventually(t, func() bool {
		var count int64
		db.Model(&model.AuditLog{}).Count(&count)
		return count == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}
