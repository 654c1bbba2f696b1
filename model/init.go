package model

import "gorm.io/gorm"

func InstallDB(db *gorm.DB) {
	if err := db.AutoMigrate(
		&User{},
		&Conversation{},
		&Message{}); err != nil {
		panic(err)
	}
}
