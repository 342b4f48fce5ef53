package postgres

import (
	"strconv"
	"strings"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// whereBuilder は $n プレースホルダーを採番しながら WHERE 句を組み立てます。
type whereBuilder struct {
	conditions []string
	args       []any
}

func (b *whereBuilder) next(arg any) string {
	b.args = append(b.args, arg)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *whereBuilder) add(condition string) {
	b.conditions = append(b.conditions, condition)
}

func (b *whereBuilder) clause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

// page は LIMIT / OFFSET 句を追加し、その SQL 断片を返します。
func (b *whereBuilder) page(q search.Query) string {
	limit := b.next(q.Size)
	offset := b.next(q.Offset())
	return " LIMIT " + limit + " OFFSET " + offset
}

// orderBy は許可済みの列のみを使って ORDER BY 句を組み立てます。tieBreaker で順序を全順序にします。
func orderBy(columns map[string]string, q search.Query, tieBreaker string) string {
	column, ok := columns[q.SortField]
	if !ok {
		column = tieBreaker
	}
	direction := "DESC"
	if q.Direction == search.Asc {
		direction = "ASC"
	}
	return " ORDER BY " + column + " " + direction + ", " + tieBreaker + " ASC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern は部分一致用の ILIKE パターンを返します。
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
