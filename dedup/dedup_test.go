package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_Key(t *testing.T) {
	r := NewRedis("localhost:6379", "food-ordering-api")
	defer r.Close()
	assert.Equal(t, "dedup:food-ordering-api:evt_1", r.Key("evt_1"))
}

func TestRedis_ClaimSurfacesConnectionErrors(t *testing.T) {
	r := NewRedis("127.0.0.1:1", "svc")
	defer r.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ok, err := r.Claim(ctx, "evt_1")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestNop(t *testing.T) {
	ok, err := Nop{}.Claim(context.Background(), "evt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, Nop{}.Release(context.Background(), "evt"))
}
