package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/insightbot/insights/domain"
)

// Field names a column that equality counts may filter on.
type Field string

const (
	FieldRegion   Field = "macro_region"
	FieldIndustry Field = "industry"
	FieldOwner    Field = "user_id"

	fieldID Field = "id"
)

func (f Field) valid() bool {
	switch f {
	case FieldRegion, FieldIndustry, FieldOwner, fieldID:
		return true
	}
	return false
}

const insightColumns = "id, created_at, theme, description, macro_region, industry, file_id, filename, user_id"

const insertQuery = `INSERT INTO insights (theme, description, macro_region, industry, file_id, filename, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + insightColumns

// cond is one equality predicate.
type cond struct {
	field Field
	value any
}

// whereClause renders conds as "WHERE a = $1 AND b = $2" with matching args.
func whereClause(conds []cond) (string, []any, error) {
	if len(conds) == 0 {
		return "", nil, nil
	}
	parts := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	for i, c := range conds {
		if !c.field.valid() {
			return "", nil, fmt.Errorf("unsupported field %q", c.field)
		}
		parts = append(parts, string(c.field)+" = $"+strconv.Itoa(i+1))
		args = append(args, c.value)
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func countQuery(conds ...cond) (string, []any, error) {
	where, args, err := whereClause(conds)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM insights" + where, args, nil
}

func selectQuery(conds ...cond) (string, []any, error) {
	where, args, err := whereClause(conds)
	if err != nil {
		return "", nil, err
	}
	return "SELECT " + insightColumns + " FROM insights" + where + " ORDER BY created_at DESC, id DESC", args, nil
}

func deleteQuery(conds ...cond) (string, []any, error) {
	if len(conds) == 0 {
		return "", nil, fmt.Errorf("refusing unconditional delete")
	}
	where, args, err := whereClause(conds)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM insights" + where, args, nil
}

func filterConds(f domain.Filter) []cond {
	var conds []cond
	if f.MacroRegion != "" {
		conds = append(conds, cond{FieldRegion, f.MacroRegion})
	}
	if f.Industry != "" {
		conds = append(conds, cond{FieldIndustry, f.Industry})
	}
	return conds
}

// groupCountQuery counts rows per distinct value of field.
func groupCountQuery(field Field, conds ...cond) (string, []any, error) {
	if !field.valid() {
		return "", nil, fmt.Errorf("unsupported field %q", field)
	}
	where, args, err := whereClause(conds)
	if err != nil {
		return "", nil, err
	}
	col := string(field)
	return "SELECT " + col + " AS value, COUNT(*) AS count FROM insights" + where + " GROUP BY " + col, args, nil
}
