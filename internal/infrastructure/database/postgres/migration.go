// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	"github.com/blackbox-gh/storefront-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	models := []interface{}{
		&user.User{},
		&product.Product{},
		&product.VariantGroup{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database migrations completed")
	return nil
}

// SeedInitialData seeds the catalog and demo accounts when empty
func (m *Migration) SeedInitialData() error {
	if err := m.seedCatalog(); err != nil {
		return err
	}
	return m.seedUsers()
}

// seedCatalog loads the Black Box catalog if no products exist
func (m *Migration) seedCatalog() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("🌱 Seeding product catalog...")

	for _, p := range catalogSeed() {
		if err := m.db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}

	log.Println("✅ Catalog seeded")
	return nil
}

// seedUsers creates demo accounts in development
func (m *Migration) seedUsers() error {
	var count int64
	if err := m.db.Model(&user.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("🌱 Seeding demo users...")

	hash, err := bcrypt.GenerateFromPassword([]byte("blackbox123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	users := []user.User{
		{
			ID:           "U-ADMIN-01",
			Name:         "Stanley Sam",
			Email:        "admin@blackbox.gh",
			PasswordHash: string(hash),
			Role:         user.RoleAdmin,
		},
		{
			ID:           "U-01",
			Name:         "Kwame",
			Email:        "kwame@gh.com",
			PasswordHash: string(hash),
			Role:         user.RoleUser,
		},
	}

	for _, u := range users {
		if err := m.db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}

	log.Println("✅ Demo users seeded")
	return nil
}

// catalogSeed returns the initial Black Box product catalog
func catalogSeed() []product.Product {
	return []product.Product{
		{
			ID:          "BB-001",
			Name:        "iPhone 15 Pro Max",
			Category:    product.CategoryPhones,
			Price:       1850000,
			Description: "Forged in titanium and featuring the groundbreaking A17 Pro chip. The ultimate iPhone experience.",
			Image:       "https://images.unsplash.com/photo-1696446701796-da61225697cc?auto=format&fit=crop&q=80&w=800",
			Stock:       8,
			IsFeatured:  true,
			Specs:       "256GB Storage,A17 Pro Chip,48MP Main Camera,USB-C Charging",
			Variants: []product.VariantGroup{
				{Name: "Color", Options: "Natural Titanium,Blue Titanium,White Titanium,Black Titanium", SortOrder: 0},
				{Name: "Storage", Options: "256GB,512GB,1TB", SortOrder: 1},
			},
		},
		{
			ID:          "BB-002",
			Name:        "MacBook Pro 14-inch",
			Category:    product.CategoryLaptops,
			Price:       2450000,
			Description: "The world's best laptop display. A pro laptop like no other, now with the M3 family of chips.",
			Image:       "https://images.unsplash.com/photo-1517336714467-d13a2323485d?auto=format&fit=crop&q=80&w=800",
			Stock:       4,
			IsFeatured:  true,
			Specs:       "Apple M3 Pro,18GB RAM,512GB SSD,Liquid Retina XDR",
			Variants: []product.VariantGroup{
				{Name: "Color", Options: "Space Black,Silver", SortOrder: 0},
				{Name: "Chip", Options: "M3,M3 Pro,M3 Max", SortOrder: 1},
			},
		},
		{
			ID:          "BB-003",
			Name:        "AirPods Max",
			Category:    product.CategoryAudio,
			Price:       680000,
			Description: "The ultimate personal listening experience is here. High-fidelity audio meets industry-leading Active Noise Cancellation.",
			Image:       "https://images.unsplash.com/photo-1613040809024-b4ef7ba99bc3?auto=format&fit=crop&q=80&w=800",
			Stock:       12,
			Specs:       "Active Noise Cancellation,Spatial Audio,20 Hours Battery",
			Variants: []product.VariantGroup{
				{Name: "Color", Options: "Silver,Space Gray,Sky Blue,Pink,Green", SortOrder: 0},
			},
		},
		{
			ID:          "BB-004",
			Name:        "PlayStation 5 Slim",
			Category:    product.CategoryConsoles,
			Price:       820000,
			Description: "Experience lightning-fast loading and deeper immersion with haptic feedback and 3D Audio.",
			Image:       "https://images.unsplash.com/photo-1606144042614-b2417e99c4e3?auto=format&fit=crop&q=80&w=800",
			Stock:       6,
			Specs:       "1TB SSD,4K Gaming,DualSense Controller,High Speed HDMI",
			Variants: []product.VariantGroup{
				{Name: "Version", Options: "Disc Version,Digital Version", SortOrder: 0},
			},
		},
		{
			ID:          "BB-005",
			Name:        "iPad Pro 12.9 M2",
			Category:    product.CategoryLaptops,
			Price:       1650000,
			Description: "Astonishing performance. Incredibly advanced displays. Superfast wireless connectivity.",
			Image:       "https://images.unsplash.com/photo-1544244015-0df4b3ffc6b0?auto=format&fit=crop&q=80&w=800",
			Stock:       5,
			Specs:       "M2 Chip,Liquid Retina XDR,Thunderbolt 4,Face ID",
			Variants: []product.VariantGroup{
				{Name: "Color", Options: "Space Gray,Silver", SortOrder: 0},
				{Name: "Connectivity", Options: "Wi-Fi,Wi-Fi + Cellular", SortOrder: 1},
			},
		},
		{
			ID:          "BB-006",
			Name:        "iPhone 13",
			Category:    product.CategoryPhones,
			Price:       920000,
			Description: "Your new superpower. Advanced dual-camera system. Lightning-fast A15 Bionic chip.",
			Image:       "https://images.unsplash.com/photo-1633114127188-99b4dd741180?auto=format&fit=crop&q=80&w=800",
			Stock:       15,
			Specs:       "128GB Storage,A15 Bionic,Ceramic Shield,IP68 Water Resistance",
			Variants: []product.VariantGroup{
				{Name: "Color", Options: "Midnight,Starlight,Blue,Pink,Green", SortOrder: 0},
			},
		},
	}
}
