package testutil

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/database"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a connection to the test PostgreSQL database.
// It uses environment variables or falls back to docker-compose defaults.
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "quotation_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "quotation_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "quotation")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	require.NoError(t, database.AutoMigrate(db))

	return db
}

// CleanupTestData cleans up test data from all tables.
// This should be called after tests to ensure a clean state.
func CleanupTestData(t *testing.T, db *gorm.DB) {
	// Delete in order to respect foreign key constraints
	tables := []string{
		"quotation_items",
		"quotations",
		"document_sequences",
		"representation_requests",
		"representations",
		"products",
		"clients",
		"sellers",
		"companies",
		"app_settings",
	}

	for _, table := range tables {
		var err error
		if table == "app_settings" {
			err = db.Exec("DELETE FROM app_settings WHERE key IS NOT NULL").Error
		} else {
			err = db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error
		}
		if err != nil {
			// Table might not exist, that's ok
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

var uniqueCounter atomic.Int64

// UniqueSuffix returns a process-unique string for test data that must not
// collide with rows left over from other tests.
func UniqueSuffix() string {
	return fmt.Sprintf("%d%04d", time.Now().UnixNano()%1_000_000_000, uniqueCounter.Add(1)%10_000)
}

// CreateTestCompany creates an active company with a unique tax id
func CreateTestCompany(t *testing.T, db *gorm.DB, legalName string) *domain.Company {
	company := &domain.Company{
		LegalName:    legalName,
		TradeName:    legalName,
		TaxID:        UniqueSuffix(),
		Email:        "company@example.com",
		Country:      "Brazil",
		BrandColor:   "#0A84FF",
		BaseCurrency: "BRL",
		IsActive:     true,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateTestSeller creates an active seller with a unique email
func CreateTestSeller(t *testing.T, db *gorm.DB, name string) *domain.Seller {
	seller := &domain.Seller{
		Name:                     name,
		Email:                    fmt.Sprintf("seller-%s@example.com", UniqueSuffix()),
		Phone:                    "11999990000",
		DefaultCommissionPercent: 5,
		IsActive:                 true,
	}
	require.NoError(t, db.Create(seller).Error)
	return seller
}

// CreateTestClient creates an active client with a unique tax id
func CreateTestClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	client := &domain.Client{
		Name:     name,
		TaxID:    UniqueSuffix(),
		Email:    "client@example.com",
		Country:  "Brazil",
		IsActive: true,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateTestProduct creates an active product for the given company
func CreateTestProduct(t *testing.T, db *gorm.DB, companyID uuid.UUID, name string, unitPrice float64) *domain.Product {
	product := &domain.Product{
		CompanyID: companyID,
		SKU:       fmt.Sprintf("SKU-%s", UniqueSuffix()),
		Name:      name,
		Unit:      "un",
		UnitPrice: unitPrice,
		IsActive:  true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// CreateTestRepresentation creates an active representation for the pair
func CreateTestRepresentation(t *testing.T, db *gorm.DB, sellerID, companyID uuid.UUID) *domain.Representation {
	rep := &domain.Representation{
		SellerID:  sellerID,
		CompanyID: companyID,
		Active:    true,
	}
	require.NoError(t, db.Create(rep).Error)
	return rep
}

// AdminPrincipal returns an admin principal for service calls
func AdminPrincipal() *auth.Principal {
	return &auth.Principal{
		UserID:      uuid.New(),
		DisplayName: "Test Admin",
		Email:       "admin@example.com",
		Role:        domain.RoleAdmin,
	}
}

// SellerPrincipal returns a seller principal bound to the given seller profile
func SellerPrincipal(sellerID uuid.UUID) *auth.Principal {
	return &auth.Principal{
		UserID:      uuid.New(),
		DisplayName: "Test Seller",
		Email:       "seller@example.com",
		Role:        domain.RoleSeller,
		SellerID:    &sellerID,
	}
}

// ClientPrincipal returns a client principal bound to the given client profile
func ClientPrincipal(clientID uuid.UUID) *auth.Principal {
	return &auth.Principal{
		UserID:      uuid.New(),
		DisplayName: "Test Client",
		Email:       "buyer@example.com",
		Role:        domain.RoleClient,
		ClientID:    &clientID,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
