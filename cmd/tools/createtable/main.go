package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS checkout_requests (
	  id CHAR(36) NOT NULL,
	  deposit_id VARCHAR(128) NULL,
	  guest_name VARCHAR(255) NULL,
	  guest_email VARCHAR(255) NULL,
	  guest_phone VARCHAR(32) NULL,
	  total_cents BIGINT NOT NULL,
	  currency CHAR(3) NOT NULL,
	  payment_status VARCHAR(32) NOT NULL,
	  metadata JSON NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_checkout_requests_deposit_id (deposit_id),
	  KEY ix_checkout_requests_status (payment_status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS bookings (
	  id CHAR(36) NOT NULL,
	  order_id CHAR(36) NULL,
	  booking_type VARCHAR(16) NOT NULL,
	  property_id CHAR(36) NULL,
	  tour_id CHAR(36) NULL,
	  transport_id CHAR(36) NULL,
	  guest_name VARCHAR(255) NULL,
	  guest_email VARCHAR(255) NULL,
	  guest_phone VARCHAR(32) NULL,
	  check_in DATETIME(3) NOT NULL,
	  check_out DATETIME(3) NOT NULL,
	  total_cents BIGINT NOT NULL,
	  currency CHAR(3) NOT NULL,
	  status VARCHAR(32) NOT NULL,
	  payment_status VARCHAR(32) NOT NULL,
	  review_token CHAR(32) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_bookings_order_id (order_id),
	  UNIQUE KEY ux_bookings_order_property (order_id, property_id),
	  UNIQUE KEY ux_bookings_order_tour (order_id, tour_id),
	  UNIQUE KEY ux_bookings_order_transport (order_id, transport_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS host_accounts (
	  id CHAR(36) NOT NULL,
	  name VARCHAR(255) NOT NULL,
	  email VARCHAR(255) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS properties (
	  id CHAR(36) NOT NULL,
	  host_id CHAR(36) NOT NULL,
	  title VARCHAR(255) NOT NULL,
	  city VARCHAR(128) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_properties_host_id (host_id),
	  CONSTRAINT fk_properties_host FOREIGN KEY (host_id) REFERENCES host_accounts(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS tours (
	  id CHAR(36) NOT NULL,
	  host_id CHAR(36) NOT NULL,
	  title VARCHAR(255) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_tours_host_id (host_id),
	  CONSTRAINT fk_tours_host FOREIGN KEY (host_id) REFERENCES host_accounts(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS transports (
	  id CHAR(36) NOT NULL,
	  host_id CHAR(36) NOT NULL,
	  title VARCHAR(255) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_transports_host_id (host_id),
	  CONSTRAINT fk_transports_host FOREIGN KEY (host_id) REFERENCES host_accounts(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("Tables created.")
}
