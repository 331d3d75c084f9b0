package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("IS_PROD", "")
	t.Setenv("IMAGE_PROVIDER", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := LoadConfig()
	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "local", cfg.ImageProvider)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadConfigProductionUsesCloudinary(t *testing.T) {
	t.Setenv("IS_PROD", "true")
	t.Setenv("IMAGE_PROVIDER", "")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg := LoadConfig()
	assert.True(t, cfg.IsProd)
	assert.Equal(t, "cloudinary", cfg.ImageProvider)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "db", DBName: "social"}
	assert.Equal(t, "u:p@tcp(db:3306)/social?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DSN())

	cfg.DBDriver = "postgres"
	cfg.DBPort = "6543"
	assert.Equal(t, "host=db port=6543 user=u password=p dbname=social sslmode=disable TimeZone=UTC", cfg.DSN())
}
