package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the DDL for every table, in dependency order.  Foreign keys
// cascade on delete; the repositories still delete dependents explicitly
// inside a transaction.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(150)    NOT NULL,
		email         VARCHAR(254)    NOT NULL,
		first_name    VARCHAR(150)    NOT NULL DEFAULT '',
		last_name     VARCHAR(150)    NOT NULL DEFAULT '',
		password_hash VARCHAR(255)    NOT NULL,
		is_superuser  TINYINT(1)      NOT NULL DEFAULT 0,
		created_at    DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (id),
		UNIQUE KEY uq_accounts_username (username),
		UNIQUE KEY uq_accounts_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		account_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_account FOREIGN KEY (account_id)
			REFERENCES accounts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS listings (
		listing_id      CHAR(36)        NOT NULL,
		host_id         BIGINT UNSIGNED NOT NULL,
		title           VARCHAR(255)    NOT NULL,
		description     TEXT            NOT NULL,
		location        VARCHAR(255)    NOT NULL,
		price_per_night DECIMAL(10,2)   NOT NULL,
		created_at      DATETIME(6)     NOT NULL,
		updated_at      DATETIME(6)     NOT NULL,
		PRIMARY KEY (listing_id),
		KEY idx_listings_location (location),
		KEY idx_listings_created_at (created_at),
		CONSTRAINT fk_listings_host FOREIGN KEY (host_id)
			REFERENCES accounts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		booking_id  CHAR(36)        NOT NULL,
		listing_id  CHAR(36)        NOT NULL,
		user_id     BIGINT UNSIGNED NOT NULL,
		start_date  DATE            NOT NULL,
		end_date    DATE            NOT NULL,
		total_price DECIMAL(10,2)   NOT NULL,
		status      ENUM('pending','confirmed','canceled') NOT NULL DEFAULT 'pending',
		created_at  DATETIME(6)     NOT NULL,
		PRIMARY KEY (booking_id),
		KEY idx_bookings_status (status),
		KEY idx_bookings_start_date (start_date),
		CONSTRAINT fk_bookings_listing FOREIGN KEY (listing_id)
			REFERENCES listings (listing_id) ON DELETE CASCADE,
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id)
			REFERENCES accounts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reviews (
		review_id  CHAR(36)         NOT NULL,
		listing_id CHAR(36)         NOT NULL,
		user_id    BIGINT UNSIGNED  NOT NULL,
		rating     TINYINT UNSIGNED NOT NULL,
		comment    TEXT             NOT NULL,
		created_at DATETIME(6)      NOT NULL,
		PRIMARY KEY (review_id),
		KEY idx_reviews_listing_created (listing_id, created_at),
		CONSTRAINT chk_reviews_rating CHECK (rating BETWEEN 1 AND 5),
		CONSTRAINT fk_reviews_listing FOREIGN KEY (listing_id)
			REFERENCES listings (listing_id) ON DELETE CASCADE,
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id)
			REFERENCES accounts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
