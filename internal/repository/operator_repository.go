package repository

import (
	"context"
	"database/sql"
	"errors"

	"pos-service/internal/entity"
)

type OperatorRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewOperatorRepository(db *sql.DB, dialect Dialect) *OperatorRepository {
	return &OperatorRepository{db: db, dialect: dialect}
}

// GetOperatorByUsername returns (nil, nil) when no operator has that username.
func (r *OperatorRepository) GetOperatorByUsername(ctx context.Context, username string) (*entity.Operator, error) {
	query := `SELECT id, username, password_hash, operator_name, role, is_active FROM operators WHERE username = ?`

	op := &entity.Operator{}
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), username).
		Scan(&op.ID, &op.Username, &op.PasswordHash, &op.Name, &op.Role, &op.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return op, nil
}
