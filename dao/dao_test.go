package dao_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"barberbot/dao"
	"barberbot/model"
	"barberbot/realtime"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	model.InstallDB(db)
	return db
}

func newDAOs(t *testing.T) (*gorm.DB, *dao.ConversationDAO, *dao.MessageDAO, *realtime.Hub) {
	t.Helper()
	db := testDB(t)
	hub := realtime.NewHub()
	convos := dao.NewConversationDAO(db, hub)
	messages := dao.NewMessageDAO(db, convos, hub)
	return db, convos, messages, hub
}
