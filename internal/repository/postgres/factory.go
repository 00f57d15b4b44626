package postgres

import (
	repo "github.com/baharkarakas/catalog-backend/internal/repository"
)

type Repositories struct {
	Credentials repo.Credentials
}

func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Credentials: NewCredentials(db),
	}
}
