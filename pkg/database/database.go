package database

import (
	"fmt"
	"log"

	"edu_assessment_backend/internal/config"
	"edu_assessment_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate 建表并写入默认知识点，测试库复用同一套迁移
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Topic{},
		&model.QuestionBankItem{},
		&model.AssessmentDefinition{},
		&model.AssessmentSection{},
		&model.SectionQuestion{},
		&model.Attempt{},
		&model.AttemptAnswer{},
		&model.TopicMastery{},
	)
	if err != nil {
		return err
	}

	// 默认知识点（如果为空则插入一些常用知识点）
	var count int64
	db.Model(&model.Topic{}).Count(&count)
	if count == 0 {
		defaultTopics := []model.Topic{
			{Code: "array", Name: "数组", Description: "数组与索引", Order: 1, Enabled: true},
			{Code: "loop", Name: "循环", Description: "for/while 循环", Order: 2, Enabled: true},
			{Code: "pointer", Name: "指针", Description: "指针与地址访问", Order: 3, Enabled: true},
			{Code: "recursion", Name: "递归", Description: "递归与分治", Order: 4, Enabled: true},
			{Code: "sort", Name: "排序", Description: "常见排序算法", Order: 5, Enabled: true},
			{Code: "search", Name: "查找", Description: "线性/二分查找", Order: 6, Enabled: true},
		}
		for _, t := range defaultTopics {
			db.Create(&t)
		}
	}

	return nil
}
