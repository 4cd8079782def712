package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMulti(t *testing.T) {
	assert.Nil(t, Multi())
	assert.Nil(t, Multi(nil, nil))

	var got []string
	a := ObserverFunc(func(c OperationContext) { got = append(got, "a:"+c.Operation) })
	b := ObserverFunc(func(c OperationContext) { got = append(got, "b:"+c.Operation) })

	single := Multi(nil, a)
	single.ObserveOperation(OperationContext{Operation: "find"})
	assert.Equal(t, []string{"a:find"}, got)

	got = nil
	Multi(a, nil, b).ObserveOperation(OperationContext{Operation: "insert"})
	assert.Equal(t, []string{"a:insert", "b:insert"}, got)
}

func TestSince(t *testing.T) {
	boom := errors.New("boom")
	c := Since("memorydb", "flush", "articles", time.Now().Add(-time.Second), boom)

	assert.Equal(t, "memorydb", c.Component)
	assert.Equal(t, "flush", c.Operation)
	assert.Equal(t, "articles", c.Resource)
	assert.GreaterOrEqual(t, c.Duration, time.Second)
	assert.ErrorIs(t, c.Error, boom)
}
