package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the idempotent DDL applied at every boot. The unique keys
// on members are named so the repository can tell from a duplicate-entry
// error which constraint fired. The unique pair key on attendance is the
// enforcement point for "at most one record per member per screening".
var schema = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_admins_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS members (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name      VARCHAR(100) NOT NULL,
		last_name       VARCHAR(100) NOT NULL,
		birth_date      DATE         NOT NULL,
		tax_code        VARCHAR(32)  NOT NULL,
		email           VARCHAR(255) NOT NULL,
		username        VARCHAR(64)  NOT NULL,
		password_hash   VARCHAR(100) NOT NULL,
		membership_code CHAR(8)      NOT NULL,
		qr_code         MEDIUMTEXT   NOT NULL,
		expiry_date     DATE         NOT NULL,
		is_active       TINYINT(1)   NOT NULL DEFAULT 1,
		created_at      TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_members_username (username),
		UNIQUE KEY uq_members_tax_code (tax_code),
		UNIQUE KEY uq_members_membership_code (membership_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS films (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title          VARCHAR(255) NOT NULL,
		director       VARCHAR(255) NOT NULL,
		` + "`cast`" + `         TEXT         NOT NULL,
		plot           TEXT         NOT NULL,
		cover_image    VARCHAR(255) NULL,
		scheduled_date DATETIME     NOT NULL,
		created_at     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS film_proposals (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		member_id  BIGINT UNSIGNED NOT NULL,
		title      VARCHAR(255) NOT NULL,
		director   VARCHAR(255) NOT NULL,
		reason     TEXT         NOT NULL,
		status     VARCHAR(16)  NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_proposals_member FOREIGN KEY (member_id)
			REFERENCES members (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS attendance (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		member_id   BIGINT UNSIGNED NOT NULL,
		film_id     BIGINT UNSIGNED NOT NULL,
		attended_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_attendance_member_film (member_id, film_id),
		CONSTRAINT fk_attendance_member FOREIGN KEY (member_id)
			REFERENCES members (id) ON DELETE CASCADE,
		CONSTRAINT fk_attendance_film FOREIGN KEY (film_id)
			REFERENCES films (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// ApplySchema creates any missing tables. Safe to run on every start.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
