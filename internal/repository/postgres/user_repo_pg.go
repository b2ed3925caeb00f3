package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/db"
	"github.com/techind/novalink-admin/internal/domain"
)

// Parameter codes in the tenant parametros table.
const paramPasswordValidityDays = 80

type UserRepository struct {
	facade *db.Facade
}

// NewUserRepo reads credentials from tenant databases; the target database is
// named per call.
func NewUserRepo(facade *db.Facade) *UserRepository {
	return &UserRepository{facade: facade}
}

func (r *UserRepository) FindByName(ctx context.Context, databaseID, name string) (*domain.User, error) {
	const query = `
        SELECT id, nombre, descripcion, pwd, activo, fechacambiopwd
        FROM public.usuarios
        WHERE nombre = $1
    `
	var user domain.User
	if err := r.facade.Get(ctx, databaseID, &user, query, name); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, databaseID string, id int64) (*domain.User, error) {
	const query = `
        SELECT id, nombre, descripcion, pwd, activo, fechacambiopwd
        FROM public.usuarios
        WHERE id = $1
    `
	var user domain.User
	if err := r.facade.Get(ctx, databaseID, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// PasswordPolicy loads the tenant's validity-days parameter. Any failure
// (absent parameter, unreadable value, unreachable database) falls back to
// the default so login never breaks on a missing setting.
func (r *UserRepository) PasswordPolicy(ctx context.Context, databaseID string) domain.PasswordPolicy {
	const query = `SELECT valor FROM public.parametros WHERE codigo = $1`

	var value string
	err := r.facade.Get(ctx, databaseID, &value, query, paramPasswordValidityDays)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.DefaultPasswordPolicy()
	case err != nil:
		log.Warn().Err(err).Str("database", databaseID).Msg("could not load password validity parameter")
		return domain.DefaultPasswordPolicy()
	}

	days, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || days <= 0 {
		log.Warn().Str("database", databaseID).Str("value", value).Msg("invalid password validity parameter")
		return domain.DefaultPasswordPolicy()
	}
	return domain.PasswordPolicy{ValidityDays: days}
}

func (r *UserRepository) UpdatePassword(ctx context.Context, databaseID string, userID int64, passwordHash string) error {
	const query = `
        UPDATE public.usuarios
        SET pwd = $2, fechacambiopwd = NOW()
        WHERE id = $1
    `
	return r.facade.Exec(ctx, databaseID, query, userID, passwordHash)
}
