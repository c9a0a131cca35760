package db

import (
	"fmt"
	"log"
	"os"

	"github.com/chenhan1218/BestBite/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return conn
}

func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.FoodItem{}); err != nil {
		return err
	}

	// 列表默认按到期日升序，给查询路径建复合索引
	return conn.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_user_expiry
	  ON %s (user_id, expiry_date ASC);
	`, models.FoodItemTable, models.FoodItemTable)).Error
}
