package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mystore/product-catalog/internal/auth"
	accountModel "github.com/mystore/product-catalog/internal/core/datamodel/account"
	productModel "github.com/mystore/product-catalog/internal/core/datamodel/product"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with an admin account and sample products for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			log.Println("clearing existing data")
			if err := db.Exec("DELETE FROM products").Error; err != nil {
				log.Fatalf("failed to clear products: %v", err)
			}
			if err := db.Exec("DELETE FROM users").Error; err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
		}

		admin := seedAdmin(db)
		seedProducts(db, admin.ID)

		log.Println("seeding complete")
	},
}

func seedAdmin(db *gorm.DB) *accountModel.Account {
	email := "admin@mystore.example"

	var existing accountModel.Account
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Println("admin account already exists")
		return &existing
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	now := time.Now()
	admin := &accountModel.Account{
		Name:         "Store Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
		IsVerified:   true,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	log.Printf("seeded admin account: %s", email)
	return admin
}

func seedProducts(db *gorm.DB, adminID int64) {
	var count int64
	db.Model(&productModel.Product{}).Count(&count)
	if count > 0 {
		log.Println("products already present, skipping product seed")
		return
	}

	now := time.Now()
	products := []productModel.Product{
		{
			Name:        "Oak Dining Chair",
			Description: "Solid oak chair with a woven seat.",
			Price:       89.00,
			Category:    "home",
			InStock:     true,
			CreatedBy:   &adminID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Name:        "Stoneware Mug",
			Description: "350ml hand-glazed stoneware mug.",
			Price:       14.50,
			Category:    "home",
			InStock:     true,
			CreatedBy:   &adminID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			// Imported from the legacy catalog without an owner; the first
			// staff member to touch it adopts it.
			Name:        "Linen Cushion Cover",
			Description: "45x45cm washed linen cushion cover.",
			Price:       22.00,
			Category:    "home",
			InStock:     false,
			CreatedBy:   nil,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			log.Fatalf("failed to seed product %q: %v", products[i].Name, err)
		}
	}
	log.Printf("seeded %d products", len(products))
}
