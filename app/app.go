package app

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/chenhan1218/BestBite/cache"
	"github.com/chenhan1218/BestBite/db"
	"github.com/chenhan1218/BestBite/inventory"
	"github.com/chenhan1218/BestBite/recognize"
	"github.com/chenhan1218/BestBite/storage"
	"github.com/chenhan1218/BestBite/syncer"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router     *gin.Engine
	DB         *gorm.DB
	Cache      *cache.Store
	RDB        *redis.Client
	Images     *storage.ImageStore
	Inventory  *inventory.Service
	Recognizer recognize.Recognizer // 可选，外部注入
	Config     Config
}

// Config 从环境变量读取
type Config struct {
	CachePath   string
	RedisAddr   string
	RedisPwd    string
	MinioHost   string
	MinioAccess string
	MinioSecret string
	MinioBucket string
	MinioSSL    bool
	WebOrigins  []string
}

func MustNew() *App {
	cfg := loadConfig()

	// --- DB: Postgres（远端事实来源）---
	dbConn := db.ConnectDB()
	repo := db.NewRepo(dbConn)

	// --- 本地缓存: sqlite 单文件，离线可用 ---
	cacheStore, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}

	// --- MinIO 图片库 ---
	images, err := storage.NewImageStore(cfg.MinioHost, cfg.MinioAccess, cfg.MinioSecret, cfg.MinioBucket, cfg.MinioSSL)
	if err != nil {
		log.Fatalf("minio: %v", err)
	}

	// --- Redis：只用来限流，连不上就降级放行 ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: redis unreachable, rate limiting disabled: %v", err)
		rdb = nil
	}

	// --- 引擎与门面：显式注入三个存储 ---
	engine := syncer.New(repo, cacheStore, images)
	inv := inventory.NewService(engine)

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigins)

	return &App{
		Router:    r,
		DB:        dbConn,
		Cache:     cacheStore,
		RDB:       rdb,
		Images:    images,
		Inventory: inv,
		Config:    cfg,
	}
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
}

func loadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	originsCSV := get("WEB_ORIGIN", "http://localhost:3000")
	var origins []string
	for _, o := range strings.Split(originsCSV, ",") {
		if s := strings.TrimSpace(o); s != "" {
			origins = append(origins, s)
		}
	}

	return Config{
		CachePath:   get("CACHE_PATH", "bestbite_cache.db"),
		RedisAddr:   get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:    os.Getenv("REDIS_PASSWORD"),
		MinioHost:   get("MINIO_HOST", "localhost:9000"),
		MinioAccess: get("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecret: get("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket: get("MINIO_BUCKET", "food-images"),
		MinioSSL:    get("MINIO_SSL", "false") == "true",
		WebOrigins:  origins,
	}
}
