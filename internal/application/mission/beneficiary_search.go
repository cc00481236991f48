package mission

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
)

const (
	minSearchLength    = 2
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// BeneficiarySearch búsqueda de empleados activos en RRHH para elegir beneficiario.
type BeneficiarySearch struct {
	directory repository.EmployeeDirectory
	log       zerolog.Logger
}

// NewBeneficiarySearch construye la búsqueda.
func NewBeneficiarySearch(directory repository.EmployeeDirectory, log zerolog.Logger) *BeneficiarySearch {
	return &BeneficiarySearch{directory: directory, log: log}
}

// Search nunca falla: ante un error de RRHH registra el fallo y devuelve una lista vacía.
func (s *BeneficiarySearch) Search(ctx context.Context, query string, limit int) []entity.PersonnelRecord {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchLength {
		return []entity.PersonnelRecord{}
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	recs, err := s.directory.SearchEmployees(ctx, query, limit)
	if err != nil {
		s.log.Warn().Err(err).Str("q", query).Msg("búsqueda en RRHH fallida; se devuelve lista vacía")
		return []entity.PersonnelRecord{}
	}
	out := recs[:0]
	for _, r := range recs {
		if r.IsActive() {
			out = append(out, r)
		}
	}
	return out
}
