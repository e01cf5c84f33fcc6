package postgres

import (
	"database/sql"
	"leadintake/pkg/domain"
	"time"

	"github.com/google/uuid"
)

// PgLead is the row representation of a lead in the leads table.
type PgLead struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	Name               string         `db:"name"`
	Email              string         `db:"email"`
	PhoneNumber        string         `db:"phone_number"`
	InterestedTraining sql.NullString `db:"interested_training"`
	Source             string         `db:"source"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
	UpdatedAt time.Time `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgLead) ToDomain() *domain.Lead {
	var training *domain.Training
	if p.InterestedTraining.Valid {
		t := domain.Training(p.InterestedTraining.String)
		training = &t
	}

	return &domain.Lead{
		ID:                 domain.LeadID(p.ID),
		Name:               p.Name,
		Email:              p.Email,
		PhoneNumber:        p.PhoneNumber,
		InterestedTraining: training,
		Source:             p.Source,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func (p *PgLead) FromNewLead(lead domain.NewLead) {
	*p = PgLead{
		Name:               lead.Name,
		Email:              lead.Email,
		PhoneNumber:        lead.PhoneNumber,
		InterestedTraining: nullTraining(lead.InterestedTraining),
		Source:             lead.SourceOrDefault(),
	}
}

func nullTraining(t *domain.Training) sql.NullString {
	if t == nil || *t == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: string(*t), Valid: true}
}

func pgLeadsToDomain(rows []PgLead) []domain.Lead {
	out := make([]domain.Lead, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out
}
