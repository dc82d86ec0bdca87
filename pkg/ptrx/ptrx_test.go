package ptrx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointers(t *testing.T) {
	r := require.New(t)

	v := 3
	p := Of(v)
	v = 4
	r.Equal(3, *p)

	r.Equal(0, Value[int](nil))
	r.Equal(3, Value(p))
	r.Equal(7, ValueOr(nil, 7))
	r.Equal(3, ValueOr(p, 7))

	r.True(*Bool(true))
	r.Equal(int64(-5), *Int64(-5))
}
