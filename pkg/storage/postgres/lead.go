package postgres

import (
	"context"
	"fmt"
	"leadintake/pkg/domain"
	"leadintake/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
)

const (
	leadsTable = "leads"
)

func (p *PgSQL) StoreLead(ctx context.Context, lead domain.NewLead) (*domain.Lead, error) {
	var row PgLead
	row.FromNewLead(lead)

	var stored PgLead
	if _, err := p.Builder.Insert(leadsTable).
		Rows(row).
		Returning(&PgLead{}).
		Executor().ScanStructContext(ctx, &stored); err != nil {
		return nil, fmt.Errorf("could not store lead into pg: %w", err)
	}

	return stored.ToDomain(), nil
}

// LeadByID returns a lead by its ID, or nil when no visible row matches.
func (p *PgSQL) LeadByID(ctx context.Context, id domain.LeadID) (*domain.Lead, error) {
	var row PgLead
	found, err := p.Builder.From(leadsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch lead by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// LatestLeadByEmail returns the newest lead submitted with email. Emails are
// not unique, so older submissions are ignored.
func (p *PgSQL) LatestLeadByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	var row PgLead
	found, err := p.Builder.From(leadsTable).
		Where(goqu.I("email").Eq(email)).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(1).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch lead by email: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func leadFilterWhere(filter storage.LeadFilter) []goqu.Expression {
	var w []goqu.Expression
	if filter.Source != "" {
		w = append(w, goqu.I("source").Eq(filter.Source))
	}
	if !filter.CreatedFrom.IsZero() {
		w = append(w, goqu.I("created_at").Gte(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		w = append(w, goqu.I("created_at").Lte(filter.CreatedTo))
	}

	return w
}

func leadOrder(filter storage.LeadFilter) []exp.OrderedExpression {
	col := goqu.I(string(filter.OrderBy))
	if filter.Direction == storage.OrderAsc {
		return []exp.OrderedExpression{col.Asc(), goqu.I("id").Asc()}
	}

	return []exp.OrderedExpression{col.Desc(), goqu.I("id").Desc()}
}

// Leads returns the page of leads selected by filter along with the total
// number of matching rows.
func (p *PgSQL) Leads(ctx context.Context, filter storage.LeadFilter) (storage.LeadPage, error) {
	if !filter.OrderBy.Valid() {
		return storage.LeadPage{}, fmt.Errorf("invalid order field %q", filter.OrderBy)
	}

	ds := p.Builder.From(leadsTable).Where(leadFilterWhere(filter)...)

	total, err := ds.CountContext(ctx)
	if err != nil {
		return storage.LeadPage{}, fmt.Errorf("could not count leads in pg: %w", err)
	}

	page := ds.Order(leadOrder(filter)...)
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}

	var rows []PgLead
	if err := page.ScanStructsContext(ctx, &rows); err != nil {
		return storage.LeadPage{}, fmt.Errorf("could not fetch leads from pg: %w", err)
	}

	return storage.LeadPage{
		Leads: pgLeadsToDomain(rows),
		Total: total,
	}, nil
}

// UpdateLead sets the provided fields and refreshes updated_at. An empty
// update still touches updated_at.
func (p *PgSQL) UpdateLead(ctx context.Context,
	id domain.LeadID,
	updates storage.LeadUpdates) (*domain.Lead, error) {
	// clock_timestamp so that two updates in the same transaction differ
	rec := goqu.Record{
		"updated_at": goqu.L("clock_timestamp()"),
	}
	if updates.Name != nil {
		rec["name"] = *updates.Name
	}
	if updates.Email != nil {
		rec["email"] = *updates.Email
	}
	if updates.PhoneNumber != nil {
		rec["phone_number"] = *updates.PhoneNumber
	}
	if updates.InterestedTraining != nil {
		if *updates.InterestedTraining == "" {
			rec["interested_training"] = goqu.L("NULL")
		} else {
			rec["interested_training"] = string(*updates.InterestedTraining)
		}
	}
	if updates.Source != nil {
		rec["source"] = *updates.Source
	}

	var row PgLead
	found, err := p.Builder.Update(leadsTable).
		Set(rec).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Returning(&PgLead{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update lead in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// DeleteLead hard deletes a lead and returns the removed row.
func (p *PgSQL) DeleteLead(ctx context.Context, id domain.LeadID) (*domain.Lead, error) {
	var row PgLead
	found, err := p.Builder.Delete(leadsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Returning(&PgLead{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete lead in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) LeadCount(ctx context.Context, since time.Time) (int64, error) {
	ds := p.Builder.From(leadsTable)
	if !since.IsZero() {
		ds = ds.Where(goqu.I("created_at").Gte(since))
	}

	count, err := ds.CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not count leads in pg: %w", err)
	}

	return count, nil
}

func (p *PgSQL) LeadCountBySource(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Source string `db:"source"`
		Count  int64  `db:"count"`
	}
	if err := p.Builder.From(leadsTable).
		Select(goqu.I("source"), goqu.COUNT(goqu.Star()).As("count")).
		GroupBy(goqu.I("source")).
		ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not count leads by source in pg: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Source] = r.Count
	}

	return out, nil
}
