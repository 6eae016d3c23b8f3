package database

import "database/sql"

// Migrate creates the tables a service needs if they do not exist yet.
// Each service calls it with its own table set at startup.
func Migrate(db *sql.DB, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// UsersSchema holds the DDL for the user service.
var UsersSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		username VARCHAR(64) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT NOT NULL AUTO_INCREMENT,
		user_id BIGINT NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id)
	) ENGINE=InnoDB`,
}

// ResourcesSchema holds the DDL for the resource service.
var ResourcesSchema = []string{
	`CREATE TABLE IF NOT EXISTS resources (
		id CHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		resource_type VARCHAR(32) NOT NULL,
		description TEXT NULL,
		location VARCHAR(255) NOT NULL,
		building VARCHAR(255) NULL,
		floor INT NULL,
		capacity INT NOT NULL DEFAULT 1,
		amenities TEXT NULL,
		available_days TEXT NULL,
		open_time CHAR(5) NOT NULL DEFAULT '08:00',
		close_time CHAR(5) NOT NULL DEFAULT '22:00',
		slot_duration_minutes INT NOT NULL DEFAULT 60,
		max_booking_hours INT NOT NULL DEFAULT 4,
		requires_approval TINYINT(1) NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'available',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NULL,
		PRIMARY KEY (id),
		KEY idx_resources_type (resource_type),
		KEY idx_resources_status (status)
	) ENGINE=InnoDB`,
}

// ReservationsSchema holds the DDL for the reservation service.  The
// (resource_id, date) index is what the conflict check's FOR UPDATE scan
// locks against, so concurrent bookings on the same resource and day
// serialize on it.
var ReservationsSchema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		id CHAR(36) NOT NULL,
		user_id BIGINT NOT NULL,
		username VARCHAR(64) NOT NULL,
		resource_id CHAR(36) NOT NULL,
		resource_name VARCHAR(255) NULL,
		` + "`date`" + ` CHAR(10) NOT NULL,
		start_time CHAR(5) NOT NULL,
		end_time CHAR(5) NOT NULL,
		purpose VARCHAR(500) NULL,
		notes VARCHAR(1000) NULL,
		status VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NULL,
		cancelled_at DATETIME NULL,
		cancellation_reason VARCHAR(500) NULL,
		PRIMARY KEY (id),
		KEY idx_resource_date (resource_id, ` + "`date`" + `),
		KEY idx_reservations_user (user_id),
		KEY idx_reservations_status (status)
	) ENGINE=InnoDB`,
}
