package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, User("u-1").Validate())
	require.NoError(t, Session("s-1").Validate())
	require.ErrorIs(t, Identity{}.Validate(), ErrMissing)
	require.ErrorIs(t, Identity{UserID: "u", SessionID: "s"}.Validate(), ErrAmbiguous)
}

func TestKeyAndActor(t *testing.T) {
	require.Equal(t, "user:u-1", User("u-1").Key())
	require.Equal(t, "session:s-1", Session("s-1").Key())
	require.Equal(t, "u-1", User("u-1").Actor())
	require.Equal(t, "session:s-1", Session("s-1").Actor())
	require.Equal(t, "system", Identity{}.Actor())
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), User(" u-9 "))
	got := FromContext(ctx)
	require.True(t, got.IsUser())
	require.Equal(t, "u-9", got.UserID)
	require.True(t, FromContext(context.Background()).IsZero())
}
