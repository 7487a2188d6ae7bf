package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// schema lists the DDL statements applied by Migrate, in order.  Every
// statement is idempotent so Migrate can run on every deploy.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    CHAR(36)        NOT NULL,
		token_hash CHAR(64)        NOT NULL UNIQUE,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS properties (
		id            CHAR(36)      NOT NULL PRIMARY KEY,
		address       VARCHAR(255)  NOT NULL,
		property_type VARCHAR(32)   NOT NULL,
		bedrooms      INT           NOT NULL,
		bathrooms     INT           NOT NULL,
		sqft          INT           NULL,
		price         DECIMAL(14,2) NOT NULL,
		status        VARCHAR(32)   NOT NULL DEFAULT 'available',
		created_at    DATETIME(6)   NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_properties_status (status),
		KEY idx_properties_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS clients (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		full_name   VARCHAR(255) NOT NULL,
		email       VARCHAR(255) NOT NULL,
		phone       VARCHAR(64)  NULL,
		preferences TEXT         NULL,
		created_at  DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_clients_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS leases (
		id           CHAR(36)      NOT NULL PRIMARY KEY,
		property_id  CHAR(36)      NOT NULL,
		client_id    CHAR(36)      NOT NULL,
		start_date   DATE          NOT NULL,
		end_date     DATE          NOT NULL,
		total_amount DECIMAL(14,2) NULL,
		status       VARCHAR(32)   NOT NULL DEFAULT 'pending',
		created_at   DATETIME(6)   NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_leases_created (created_at),
		CONSTRAINT fk_leases_property FOREIGN KEY (property_id) REFERENCES properties (id),
		CONSTRAINT fk_leases_client FOREIGN KEY (client_id) REFERENCES clients (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.  It stops at the first failing statement.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	log.Printf("database: schema up to date (%d statements)", len(schema))
	return nil
}
