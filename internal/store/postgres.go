package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rusneurosoft/neuro-connector/internal/flow"
)

// Postgres persists bot users, qualified leads and roulette spins. All
// profile writes are idempotent per telegram id: re-running a chain
// overwrites the previous profile instead of duplicating it.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// InitSchema creates the tables on startup when they do not exist yet.
func (p *Postgres) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			telegram_id BIGINT UNIQUE NOT NULL,
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			username VARCHAR(255),
			language_code VARCHAR(10),
			is_blocked BOOLEAN DEFAULT FALSE,
			last_interaction TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id SERIAL PRIMARY KEY,
			telegram_id BIGINT UNIQUE NOT NULL,
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			username VARCHAR(255),
			phone_number VARCHAR(50),
			email VARCHAR(255),
			role VARCHAR(50),
			company VARCHAR(500),
			position VARCHAR(500),
			website VARCHAR(500),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS business_profiles (
			id SERIAL PRIMARY KEY,
			contact_id INTEGER UNIQUE NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			process_pain TEXT NOT NULL,
			time_lost VARCHAR(255) NOT NULL,
			department_affected TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS startup_ideas (
			id SERIAL PRIMARY KEY,
			contact_id INTEGER UNIQUE NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			problem_solved TEXT NOT NULL,
			current_stage VARCHAR(255) NOT NULL,
			main_barrier TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS specialist_profiles (
			id SERIAL PRIMARY KEY,
			contact_id INTEGER UNIQUE NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			main_skill TEXT NOT NULL,
			project_interests TEXT NOT NULL,
			work_format VARCHAR(255) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS roulette_spins (
			id SERIAL PRIMARY KEY,
			telegram_id BIGINT NOT NULL UNIQUE,
			prize_amount INTEGER NOT NULL,
			spun_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// SaveUser upserts the bot-user record touched on every /start.
func (p *Postgres) SaveUser(ctx context.Context, telegramID int64, firstName, lastName, username, languageCode string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, first_name, last_name, username, language_code, last_interaction)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (telegram_id) DO UPDATE
		SET first_name = $2, last_name = $3, username = $4, language_code = $5, last_interaction = NOW()
	`, telegramID, firstName, lastName, username, languageCode)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// SaveProfile implements flow.ProfileStore: upserts the contact and the
// role-specific profile row in one transaction.
func (p *Postgres) SaveProfile(ctx context.Context, userID int64, role flow.Role, answers map[string]string, phone string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var contactID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO contacts (telegram_id, role, phone_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE
		SET role = $2, phone_number = $3
		RETURNING id
	`, userID, string(role), phone).Scan(&contactID)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}

	switch role {
	case flow.RoleEntrepreneur:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO business_profiles (contact_id, process_pain, time_lost, department_affected)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (contact_id) DO UPDATE
			SET process_pain = $2, time_lost = $3, department_affected = $4
		`, contactID, answers["process_pain"], answers["time_lost"], answers["department_affected"])
	case flow.RoleStartupper:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO startup_ideas (contact_id, problem_solved, current_stage, main_barrier)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (contact_id) DO UPDATE
			SET problem_solved = $2, current_stage = $3, main_barrier = $4
		`, contactID, answers["problem_solved"], answers["current_stage"], answers["main_barrier"])
	case flow.RoleSpecialist:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO specialist_profiles (contact_id, main_skill, project_interests, work_format)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (contact_id) DO UPDATE
			SET main_skill = $2, project_interests = $3, work_format = $4
		`, contactID, answers["main_skill"], answers["project_interests"], answers["work_format"])
	default:
		err = fmt.Errorf("role %q has no profile table", role)
	}
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ContactInfo implements flow.ProfileStore; returns (nil, nil) when the user
// has never completed a chain.
func (p *Postgres) ContactInfo(ctx context.Context, userID int64) (*flow.ContactInfo, error) {
	var info flow.ContactInfo
	var firstName, lastName, username, phone, email, company, position, website sql.NullString
	err := p.db.QueryRowContext(ctx, `
		SELECT first_name, last_name, username, phone_number, email, company, position, website
		FROM contacts
		WHERE telegram_id = $1
	`, userID).Scan(&firstName, &lastName, &username, &phone, &email, &company, &position, &website)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select contact: %w", err)
	}

	info.FirstName = firstName.String
	info.LastName = lastName.String
	info.Username = username.String
	info.Phone = phone.String
	info.Email = email.String
	info.Company = company.String
	info.Position = position.String
	info.Website = website.String
	return &info, nil
}

// ----- roulette -----

// CanSpin reports whether the user has not spun yet: one prize per user.
func (p *Postgres) CanSpin(ctx context.Context, telegramID int64) (bool, error) {
	var count int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM roulette_spins WHERE telegram_id = $1`, telegramID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check spin: %w", err)
	}
	return count == 0, nil
}

// SaveSpin records the prize; a repeated spin is silently ignored.
func (p *Postgres) SaveSpin(ctx context.Context, telegramID int64, prize int) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO roulette_spins (telegram_id, prize_amount)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO NOTHING
	`, telegramID, prize)
	if err != nil {
		return fmt.Errorf("save spin: %w", err)
	}
	return nil
}

// Prize returns the won amount, 0 when the user has not spun.
func (p *Postgres) Prize(ctx context.Context, telegramID int64) (int, error) {
	var prize int
	err := p.db.QueryRowContext(ctx,
		`SELECT prize_amount FROM roulette_spins WHERE telegram_id = $1`, telegramID,
	).Scan(&prize)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get prize: %w", err)
	}
	return prize, nil
}
