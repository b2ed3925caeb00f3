package postgres

import (
	"context"
	"time"

	"github.com/techind/novalink-admin/internal/db"
	"github.com/techind/novalink-admin/internal/domain"
)

const sessionColumns = `id, token, usuario_id, database_name, fecha_inicio, fecha_ultimo_acceso, fecha_expiracion, ip_address, user_agent, activa`

type SessionRepository struct {
	facade    *db.Facade
	controlDB string
}

// NewSessionRepo persists sessions in the control database controlDB.
func NewSessionRepo(facade *db.Facade, controlDB string) *SessionRepository {
	return &SessionRepository{facade: facade, controlDB: controlDB}
}

func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	const createTable = `
        CREATE TABLE IF NOT EXISTS public.sesiones (
            id SERIAL PRIMARY KEY,
            token VARCHAR(255) UNIQUE NOT NULL,
            usuario_id INTEGER NOT NULL,
            database_name VARCHAR(50) NOT NULL,
            fecha_inicio TIMESTAMP DEFAULT NOW(),
            fecha_ultimo_acceso TIMESTAMP DEFAULT NOW(),
            fecha_expiracion TIMESTAMP,
            ip_address VARCHAR(50),
            user_agent TEXT,
            activa BOOLEAN DEFAULT true
        )
    `
	const createIndex = `CREATE INDEX IF NOT EXISTS idx_sesiones_token ON public.sesiones(token)`

	if err := r.facade.Exec(ctx, r.controlDB, createTable); err != nil {
		return err
	}
	return r.facade.Exec(ctx, r.controlDB, createIndex)
}

func (r *SessionRepository) Insert(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO public.sesiones (
            token, usuario_id, database_name,
            fecha_inicio, fecha_ultimo_acceso, fecha_expiracion,
            ip_address, user_agent, activa
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
    `
	return r.facade.Exec(ctx, r.controlDB, query,
		session.Token, session.UserID, session.DatabaseID,
		session.CreatedAt, session.LastAccessAt, session.ExpiresAt,
		session.IP, session.UserAgent,
	)
}

func (r *SessionRepository) SweepExpired(ctx context.Context, now time.Time) error {
	const query = `
        UPDATE public.sesiones
        SET activa = false
        WHERE fecha_expiracion < $1 AND activa = true
    `
	return r.facade.Exec(ctx, r.controlDB, query, now)
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	const query = `
        SELECT ` + sessionColumns + `
        FROM public.sesiones
        WHERE token = $1
    `
	var session domain.Session
	if err := r.facade.Get(ctx, r.controlDB, &session, query, token); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Extend(ctx context.Context, token string, lastAccess, expiresAt time.Time) error {
	const query = `
        UPDATE public.sesiones
        SET fecha_ultimo_acceso = $2, fecha_expiracion = $3
        WHERE token = $1 AND activa = true
    `
	return r.facade.Exec(ctx, r.controlDB, query, token, lastAccess, expiresAt)
}

func (r *SessionRepository) Deactivate(ctx context.Context, token string) error {
	const query = `
        UPDATE public.sesiones
        SET activa = false
        WHERE token = $1
    `
	return r.facade.Exec(ctx, r.controlDB, query, token)
}
