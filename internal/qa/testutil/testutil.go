package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deul428/QA-checklist/internal/middleware"
	"github.com/deul428/QA-checklist/internal/qa/entity"
)

const (
	TestSchema = "test_qa"
	JWTSecret  = "qa-checklist-test-jwt-secret"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "qa")
	password := getEnv("DB_PASSWORD", "qa123")
	dbname := getEnv("DB_NAME", "qa_checklist")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.System{},
		&entity.CheckItem{},
		&entity.ChecklistRecord{},
		&entity.ChecklistRecordLog{},
		&entity.Assignment{},
		&entity.SubstituteAssignment{},
		&entity.SubstituteChangeLog{},
		&entity.AdminLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// ConsoleGroup creates an API group that also requires the console role
func ConsoleGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret), middleware.RequireConsole())
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, email string, consoleRole bool) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":          userID,
		"uid":          userID,
		"name":         name,
		"email":        email,
		"console_role": consoleRole,
		"iss":          "qa-checklist",
		"iat":          now.Unix(),
		"exp":          now.Add(24 * time.Hour).Unix(),
		"jti":          fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default console-role test user
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "테스트관리자", "admin@test.com", true)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedTestUser creates a test user in the database
func SeedTestUser(t *testing.T, db *gorm.DB, id, name, email string, consoleRole bool) *entity.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &entity.User{
		ID:          id,
		EmployeeID:  "emp_" + id,
		Password:    string(hash),
		Name:        name,
		Email:       email,
		Division:    "DX본부",
		Position:    "매니저",
		Role:        "user",
		ConsoleRole: consoleRole,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedTestSystem creates a test system in the database
func SeedTestSystem(t *testing.T, db *gorm.DB, id, name string, hasDev, hasStg, hasPrd bool) *entity.System {
	t.Helper()
	system := &entity.System{
		ID:        id,
		Name:      name,
		HasDev:    hasDev,
		HasStg:    hasStg,
		HasPrd:    hasPrd,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(system).Error; err != nil {
		t.Fatalf("Failed to seed test system: %v", err)
	}
	return system
}

// SeedTestCheckItem creates an active check item in the database
func SeedTestCheckItem(t *testing.T, db *gorm.DB, id, systemID, name string, orderIndex int) *entity.CheckItem {
	t.Helper()
	item := &entity.CheckItem{
		ID:         id,
		SystemID:   systemID,
		Name:       name,
		Status:     entity.CheckItemActive,
		OrderIndex: orderIndex,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to seed test check item: %v", err)
	}
	return item
}

// SeedTestAssignment assigns a user to a check item for an environment
func SeedTestAssignment(t *testing.T, db *gorm.DB, id, userID, systemID, checkItemID, environment string) *entity.Assignment {
	t.Helper()
	assignment := &entity.Assignment{
		ID:          id,
		UserID:      userID,
		SystemID:    systemID,
		CheckItemID: checkItemID,
		Environment: environment,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(assignment).Error; err != nil {
		t.Fatalf("Failed to seed test assignment: %v", err)
	}
	return assignment
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
