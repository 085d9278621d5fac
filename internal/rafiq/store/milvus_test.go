package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/rafiq/internal/rafiq/tagger"
)

func TestJoinSplitDepartments(t *testing.T) {
	joined := joinDepartments([]string{tagger.Finance, tagger.ITFinance})
	assert.Equal(t, ","+tagger.Finance+","+tagger.ITFinance+",", joined)
	assert.Equal(t, []string{tagger.Finance, tagger.ITFinance}, splitDepartments(joined))

	assert.Equal(t, "", joinDepartments(nil))
	assert.Nil(t, splitDepartments(""))
}

func TestDepartmentFilterExpr(t *testing.T) {
	assert.Equal(t, "", departmentFilterExpr(nil))

	expr := departmentFilterExpr([]string{tagger.Finance})
	assert.Equal(t, `departments like "%,Finance,%"`, expr)

	// A delimiter-bounded pattern for Finance cannot match the stored value
	// of a chunk tagged only "IT / Finance".
	joined := joinDepartments([]string{tagger.ITFinance})
	assert.NotContains(t, joined, ",Finance,")

	expr = departmentFilterExpr([]string{tagger.Finance, tagger.GeneralDepartment})
	assert.Equal(t, 2, strings.Count(expr, "like"))
	assert.Contains(t, expr, " or ")
}

func TestDepartmentFilterExprStripsMetacharacters(t *testing.T) {
	expr := departmentFilterExpr([]string{`Fin"ance,%`})
	assert.Equal(t, `departments like "%,Finance,%"`, expr)
}
