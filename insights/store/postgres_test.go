package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/insightbot/insights/domain"
)

// closedStore returns a store whose pool is already closed, so every query fails
// without touching the network.
func closedStore(t *testing.T) *Postgres {
	t.Helper()
	db, err := sqlx.Open("postgres", "postgres://insights@127.0.0.1:1/insights?sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	return NewPostgres(db)
}

func TestReadFailuresDegradeToEmpty(t *testing.T) {
	ctx := context.Background()
	s := closedStore(t)

	require.Zero(t, s.CountByField(ctx, FieldRegion, "МСК"))
	require.Zero(t, s.CountByTwoFields(ctx, FieldRegion, "МСК", FieldIndustry, "Банки"))
	require.Zero(t, s.Total(ctx))
	require.Empty(t, s.ListAll(ctx))
	require.Empty(t, s.ListFiltered(ctx, domain.Filter{MacroRegion: "МСК"}))
	require.Empty(t, s.ListByOwner(ctx, 7))
	_, ok := s.GetByID(ctx, 1)
	require.False(t, ok)
	require.False(t, s.DeleteOwned(ctx, 1, 7))

	regions := s.CountByRegion(ctx)
	require.Len(t, regions, len(domain.Regions))
	for _, r := range domain.Regions {
		require.Zero(t, regions[r])
	}
	require.Len(t, s.CountByIndustry(ctx, "МСК"), len(domain.Industries))
}

func TestSaveSurfacesFailures(t *testing.T) {
	ctx := context.Background()
	s := closedStore(t)

	_, err := s.Save(ctx, domain.Draft{
		MacroRegion: "МСК", Industry: "Банки", Theme: "Q1 margin shift", Description: "...",
	}, 7)
	var serr *domain.StoreError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, "save", serr.Op)

	_, err = s.Save(ctx, domain.Draft{MacroRegion: "МСК"}, 7)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
}
