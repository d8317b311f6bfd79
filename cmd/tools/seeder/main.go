package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/alexedwards/argon2id"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedAdmin(db)
	seedSettings(db)
	seedMenu(db)

	log.Println("Seeding completed successfully!")
}

func seedAdmin(db *sql.DB) {
	fmt.Println("Seeding admin account...")

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "change-me-now"
		log.Println("SEED_ADMIN_PASSWORD not set, using the default; change it after first login")
	}
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO admins (username, password_hash, superadmin)
		VALUES ('admin', $1, TRUE)
		ON CONFLICT (username) DO NOTHING;
	`, hash)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
}

func seedSettings(db *sql.DB) {
	fmt.Println("Seeding restaurant settings...")

	_, err := db.Exec(`
		INSERT INTO general_settings (id, restaurant_name, address, phone, email, currency, time_zone)
		VALUES (1, 'Chicken Shack', '12 Long Street, Cape Town', '+27 21 555 0101', 'orders@chickenshack.example', 'ZAR', 'Africa/Johannesburg')
		ON CONFLICT (id) DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}
}

func seedMenu(db *sql.DB) {
	fmt.Println("Seeding categories...")
	categories := []struct {
		Name  string
		Order int
	}{
		{"Chicken", 1},
		{"Burgers", 2},
		{"Sides", 3},
		{"Drinks", 4},
		{"Desserts", 5},
	}
	for _, c := range categories {
		if _, err := db.Exec(`
			INSERT INTO categories (name, display_order)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM categories WHERE name = $1);
		`, c.Name, c.Order); err != nil {
			log.Fatalf("Failed to seed category %s: %v", c.Name, err)
		}
	}

	fmt.Println("Seeding menu items...")
	items := []struct {
		Name        string
		Description string
		Price       int64
		Category    string
	}{
		{"Fried Chicken Bucket", "Crispy fried chicken pieces", 8900, "Chicken"},
		{"Grilled Quarter Chicken", "Flame grilled with basting", 5500, "Chicken"},
		{"Classic Beef Burger", "Flame grilled beef patty with house sauce", 6500, "Burgers"},
		{"Crispy Chicken Burger", "Buttermilk fried fillet", 6200, "Burgers"},
		{"Chips", "Salted hand cut chips", 2500, "Sides"},
		{"Coleslaw", "Fresh creamy coleslaw", 1800, "Sides"},
		{"Soft Drink", "Assorted 440ml cans", 1800, "Drinks"},
		{"Milkshake", "Vanilla, chocolate or strawberry", 3200, "Desserts"},
	}
	for _, it := range items {
		var id int64
		err := db.QueryRow(`SELECT id FROM menu_items WHERE name = $1`, it.Name).Scan(&id)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			log.Fatalf("Failed to check item %s: %v", it.Name, err)
		}
		err = db.QueryRow(`
			INSERT INTO menu_items (name, description, price, category)
			VALUES ($1, $2, $3, $4)
			RETURNING id;
		`, it.Name, it.Description, it.Price, it.Category).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to seed item %s: %v", it.Name, err)
		}

		switch it.Name {
		case "Fried Chicken Bucket":
			seedPieceOptions(db, id)
		case "Soft Drink", "Milkshake":
			seedSizes(db, id)
		case "Classic Beef Burger", "Crispy Chicken Burger":
			seedExtras(db, id)
		}
	}
}

func seedPieceOptions(db *sql.DB, itemID int64) {
	options := []struct {
		Quantity  int
		Price     int64
		IsDefault bool
	}{
		{4, 8900, true},
		{8, 15900, false},
		{12, 21900, false},
	}
	for _, opt := range options {
		if _, err := db.Exec(`
			INSERT INTO piece_options (item_id, quantity, price, is_default)
			VALUES ($1, $2, $3, $4);
		`, itemID, opt.Quantity, opt.Price, opt.IsDefault); err != nil {
			log.Fatalf("Failed to seed piece option: %v", err)
		}
	}
}

func seedSizes(db *sql.DB, itemID int64) {
	sizes := []struct {
		Name  string
		Price int64
	}{
		{"Small", 0},
		{"Medium", 500},
		{"Large", 900},
	}
	for _, s := range sizes {
		if _, err := db.Exec(`
			INSERT INTO sizes (item_id, name, price)
			VALUES ($1, $2, $3);
		`, itemID, s.Name, s.Price); err != nil {
			log.Fatalf("Failed to seed size: %v", err)
		}
	}
}

func seedExtras(db *sql.DB, itemID int64) {
	extras := []struct {
		Name  string
		Price int64
	}{
		{"Extra Cheese", 800},
		{"Bacon", 1200},
		{"Extra Patty", 2500},
	}
	for _, e := range extras {
		if _, err := db.Exec(`
			INSERT INTO extras (item_id, name, price)
			VALUES ($1, $2, $3);
		`, itemID, e.Name, e.Price); err != nil {
			log.Fatalf("Failed to seed extra: %v", err)
		}
	}
}
