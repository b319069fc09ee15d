package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contactkeeper/contacts_backend/internal/apperrors"
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	portsrepo "github.com/contactkeeper/contacts_backend/internal/core/ports/repositories"
	"github.com/contactkeeper/contacts_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxContactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) portsrepo.ContactRepository {
	return &PgxContactRepository{db: db}
}

var _ portsrepo.ContactRepository = (*PgxContactRepository)(nil)

func toModelContact(d domain.Contact) models.Contact {
	m := models.Contact{
		ContactID:   d.ContactID,
		UserID:      d.UserID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		PhoneNumber: d.PhoneNumber,
		Birthday:    d.Birthday,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.AdditionalData != nil {
		m.AdditionalData.String = *d.AdditionalData
		m.AdditionalData.Valid = true
	}
	return m
}

func toDomainContact(m models.Contact) domain.Contact {
	d := domain.Contact{
		ContactID:   m.ContactID,
		UserID:      m.UserID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		Birthday:    m.Birthday,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.AdditionalData.Valid {
		data := m.AdditionalData.String
		d.AdditionalData = &data
	}
	return d
}

func toDomainContactSlice(ms []models.Contact) []domain.Contact {
	ds := make([]domain.Contact, len(ms))
	for i, m := range ms {
		ds[i] = toDomainContact(m)
	}
	return ds
}

const contactColumns = `contact_id, user_id, first_name, last_name, email, phone_number, birthday, additional_data, created_at, updated_at`

func scanContact(row pgx.Row) (models.Contact, error) {
	var m models.Contact
	err := row.Scan(
		&m.ContactID,
		&m.UserID,
		&m.FirstName,
		&m.LastName,
		&m.Email,
		&m.PhoneNumber,
		&m.Birthday,
		&m.AdditionalData,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func (r *PgxContactRepository) SaveContact(ctx context.Context, contact domain.Contact) error {
	m := toModelContact(contact)
	query := `
        INSERT INTO contacts (` + contactColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `
	_, err := r.db.Exec(ctx, query,
		m.ContactID, m.UserID, m.FirstName, m.LastName, m.Email,
		m.PhoneNumber, m.Birthday, m.AdditionalData, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

func (r *PgxContactRepository) FindContactByID(ctx context.Context, userID string, contactID string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE contact_id = $1 AND user_id = $2;`
	m, err := scanContact(r.db.QueryRow(ctx, query, contactID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find contact by ID %s: %w", contactID, err)
	}
	d := toDomainContact(m)
	return &d, nil
}

func (r *PgxContactRepository) FindContacts(ctx context.Context, userID string, limit int, offset int) ([]domain.Contact, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT ` + contactColumns + `
        FROM contacts
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3;
    `
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	modelContacts := []models.Contact{}
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		modelContacts = append(modelContacts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact rows: %w", err)
	}

	return toDomainContactSlice(modelContacts), nil
}

func (r *PgxContactRepository) UpdateContact(ctx context.Context, contact domain.Contact) (*domain.Contact, error) {
	m := toModelContact(contact)
	query := `
		UPDATE contacts
		SET first_name = $3, last_name = $4, email = $5, phone_number = $6,
		    birthday = $7, additional_data = $8, updated_at = $9
		WHERE contact_id = $1 AND user_id = $2
		RETURNING ` + contactColumns + `;
	`
	updated, err := scanContact(r.db.QueryRow(ctx, query,
		m.ContactID, m.UserID, m.FirstName, m.LastName, m.Email,
		m.PhoneNumber, m.Birthday, m.AdditionalData, time.Now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	d := toDomainContact(updated)
	return &d, nil
}

func (r *PgxContactRepository) DeleteContact(ctx context.Context, userID string, contactID string) error {
	query := `DELETE FROM contacts WHERE contact_id = $1 AND user_id = $2;`
	tag, err := r.db.Exec(ctx, query, contactID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindUpcomingBirthdays matches on month/day so year-of-birth is irrelevant.
// A window that wraps a month boundary needs two arms, one per month.
func (r *PgxContactRepository) FindUpcomingBirthdays(ctx context.Context, userID string, from time.Time, days int) ([]domain.Contact, error) {
	until := from.AddDate(0, 0, days)

	var condition string
	var args []any
	if from.Month() == until.Month() {
		condition = `EXTRACT(MONTH FROM birthday) = $2 AND EXTRACT(DAY FROM birthday) BETWEEN $3 AND $4`
		args = []any{userID, int(from.Month()), from.Day(), until.Day()}
	} else {
		condition = `
            (EXTRACT(MONTH FROM birthday) = $2 AND EXTRACT(DAY FROM birthday) >= $3)
            OR
            (EXTRACT(MONTH FROM birthday) = $4 AND EXTRACT(DAY FROM birthday) <= $5)`
		args = []any{userID, int(from.Month()), from.Day(), int(until.Month()), until.Day()}
	}

	query := `
        SELECT ` + contactColumns + `
        FROM contacts
        WHERE user_id = $1 AND (` + condition + `)
        ORDER BY EXTRACT(MONTH FROM birthday), EXTRACT(DAY FROM birthday);
    `
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming birthdays: %w", err)
	}
	defer rows.Close()

	modelContacts := []models.Contact{}
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		modelContacts = append(modelContacts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact rows: %w", err)
	}

	return toDomainContactSlice(modelContacts), nil
}
