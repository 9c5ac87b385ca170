package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = StringList{"https://i.redd.it/a.png", "https://i.redd.it/b,c.png"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"https://i.redd.it/a.png","https://i.redd.it/b,c.png"}`, v)
}

func TestStringListScan(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`{"https://i.redd.it/a.png","https://i.redd.it/b,c.png"}`))
	assert.Equal(t, StringList{"https://i.redd.it/a.png", "https://i.redd.it/b,c.png"}, l)

	require.NoError(t, l.Scan([]byte(`{}`)))
	assert.Empty(t, l)
	assert.NotNil(t, l)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(42))
}
