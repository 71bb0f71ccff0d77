package rules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/utcban/pkg/rules"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	sym, ok := rules.Lookup("utcnow")
	require.True(t, ok)
	assert.Equal(t, rules.CodeUTCNow, sym.Code)
	assert.Equal(t,
		"UTC001 don't use datetime.datetime.utcnow(), use datetime.datetime.now(datetime.timezone.utc) "+
			"instead or datetime.now(datetime.UTC) on >= 3.11.",
		sym.Message)

	sym, ok = rules.Lookup("utcfromtimestamp")
	require.True(t, ok)
	assert.Equal(t, rules.CodeUTCFromTimestamp, sym.Code)
	assert.True(t, strings.HasPrefix(sym.Message, "UTC002 don't use datetime.datetime.utcfromtimestamp(), "))
}

func TestLookupIsExact(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"UTCNOW", "Utcnow", "utcnow_", "utc", "", "now", "datetime"} {
		_, ok := rules.Lookup(name)
		assert.False(t, ok, name)
	}
}

func TestAllOrderedByCode(t *testing.T) {
	t.Parallel()

	all := rules.All()
	require.Len(t, all, 2)
	assert.Equal(t, "utcnow", all[0].Name)
	assert.Equal(t, "utcfromtimestamp", all[1].Name)

	for _, sym := range all {
		assert.True(t, strings.HasPrefix(sym.Message, sym.Code+" "), sym.Name)
	}

	assert.Equal(t, []string{"UTC001", "UTC002"}, rules.Codes())
}

func TestKnownCode(t *testing.T) {
	t.Parallel()

	assert.True(t, rules.KnownCode("UTC001"))
	assert.True(t, rules.KnownCode("UTC"))
	assert.False(t, rules.KnownCode("E501"))
	assert.False(t, rules.KnownCode(""))
}
