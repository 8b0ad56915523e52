package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithContext(context.Background(), Context{UserID: "u1", OrgID: "o1"})
	s, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", s.UserID)
	assert.False(t, s.DemoMode)
}

func TestDemo(t *testing.T) {
	s := Demo()
	assert.True(t, s.DemoMode)
	assert.NotEmpty(t, s.UserID)
}
