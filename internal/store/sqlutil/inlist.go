// Package sqlutil holds tiny SQL helpers shared by the postgres repositories.
package sqlutil

import (
	"strconv"
	"strings"
)

// InInt64 renders a placeholder list for an IN clause, numbering placeholders
// from start, and returns the matching args slice.
//
//	ph, args := sqlutil.InInt64([]int64{7, 8}, 1) // "$1,$2", [7 8]
func InInt64(ids []int64, start int) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
		args = append(args, id)
	}
	return b.String(), args
}
