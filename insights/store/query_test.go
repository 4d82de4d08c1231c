package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/insightbot/insights/domain"
)

func TestCountQuery(t *testing.T) {
	q, args, err := countQuery()
	require.NoError(t, err)
	require.Equal(t, "SELECT COUNT(*) FROM insights", q)
	require.Empty(t, args)

	q, args, err = countQuery(cond{FieldRegion, "МСК"}, cond{FieldIndustry, "Банки"})
	require.NoError(t, err)
	require.Equal(t, "SELECT COUNT(*) FROM insights WHERE macro_region = $1 AND industry = $2", q)
	require.Equal(t, []any{"МСК", "Банки"}, args)
}

func TestUnknownFieldRejected(t *testing.T) {
	_, _, err := countQuery(cond{Field("theme; DROP TABLE insights"), "x"})
	require.Error(t, err)
	_, _, err = groupCountQuery(Field("description"))
	require.Error(t, err)
}

func TestSelectQueryOrdersNewestFirst(t *testing.T) {
	q, args, err := selectQuery(filterConds(domain.Filter{MacroRegion: "СНГ", Industry: "Энергетика"})...)
	require.NoError(t, err)
	require.Equal(t, "SELECT "+insightColumns+" FROM insights WHERE macro_region = $1 AND industry = $2 ORDER BY created_at DESC, id DESC", q)
	require.Equal(t, []any{"СНГ", "Энергетика"}, args)

	q, args, err = selectQuery(filterConds(domain.Filter{Industry: "Банки"})...)
	require.NoError(t, err)
	require.Contains(t, q, "WHERE industry = $1 ORDER BY")
	require.Equal(t, []any{"Банки"}, args)

	q, _, err = selectQuery(filterConds(domain.Filter{})...)
	require.NoError(t, err)
	require.NotContains(t, q, "WHERE")
}

func TestGroupCountQuery(t *testing.T) {
	q, args, err := groupCountQuery(FieldIndustry, cond{FieldRegion, "ЦФО"})
	require.NoError(t, err)
	require.Equal(t, "SELECT industry AS value, COUNT(*) AS count FROM insights WHERE macro_region = $1 GROUP BY industry", q)
	require.Equal(t, []any{"ЦФО"}, args)
}

func TestDeleteQueryIsOwnerScoped(t *testing.T) {
	q, args, err := deleteQuery(cond{fieldID, int64(5)}, cond{FieldOwner, int64(7)})
	require.NoError(t, err)
	require.Equal(t, "DELETE FROM insights WHERE id = $1 AND user_id = $2", q)
	require.Equal(t, []any{int64(5), int64(7)}, args)

	_, _, err = deleteQuery()
	require.Error(t, err)
}
