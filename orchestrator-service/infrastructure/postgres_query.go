package infrastructure

import (
	"fmt"
	"strings"

	"github.com/draftea/saga-orchestrator/shared/models"
)

// whereClause builds a WHERE clause with positional parameters
type whereClause struct {
	conditions []string
	args       []interface{}
}

func newWhereClause() *whereClause {
	return &whereClause{}
}

// add appends a condition, "?" is replaced by the next positional parameter
func (w *whereClause) add(condition string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conditions = append(w.conditions, strings.Replace(condition, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

func (w *whereClause) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// paged returns the ORDER BY and LIMIT/OFFSET clause with the full argument list
func (w *whereClause) paged(order string, page models.Page) (string, []interface{}) {
	n := len(w.args)
	clause := fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", order, n+1, n+2)
	args := make([]interface{}, 0, n+2)
	args = append(args, w.args...)
	return clause, append(args, page.Size, page.Offset())
}
