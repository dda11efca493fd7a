package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

func TestNewCart_RequiresOwner(t *testing.T) {
	_, err := NewCart("c1", identity.Identity{}, time.Now())
	require.ErrorIs(t, err, identity.ErrMissing)

	_, err = NewCart("c1", identity.Identity{UserID: "u1", SessionID: "s1"}, time.Now())
	require.ErrorIs(t, err, identity.ErrAmbiguous)
}

func TestCartAdd_IncrementsExistingLineAndRefreshesPrice(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cart, err := NewCart("c1", identity.Session("s1"), now)
	require.NoError(t, err)

	require.NoError(t, cart.Add("i1", 1, decimal.RequireFromString("50.00"), now))
	require.NoError(t, cart.Add("i1", 2, decimal.RequireFromString("45.00"), now.Add(time.Minute)))

	require.Len(t, cart.Lines, 1)
	require.Equal(t, 3, cart.Lines[0].Quantity)
	require.True(t, cart.Lines[0].Price.Equal(decimal.RequireFromString("45.00")))
	require.Equal(t, now, cart.Lines[0].AddedAt)
	require.True(t, cart.Subtotal().Equal(decimal.RequireFromString("135.00")))
	require.Equal(t, 3, cart.ItemCount())
}

func TestCartAdd_AppendsInOrder(t *testing.T) {
	cart, err := NewCart("c1", identity.User("u1"), time.Now())
	require.NoError(t, err)

	require.NoError(t, cart.Add("b", 1, decimal.NewFromInt(10), time.Now()))
	require.NoError(t, cart.Add("a", 2, decimal.NewFromInt(5), time.Now()))

	require.Equal(t, "b", cart.Lines[0].ItemID)
	require.Equal(t, "a", cart.Lines[1].ItemID)
	require.True(t, cart.Subtotal().Equal(decimal.NewFromInt(20)))
}

func TestCartAdd_RejectsInvalidLines(t *testing.T) {
	cart, err := NewCart("c1", identity.User("u1"), time.Now())
	require.NoError(t, err)

	require.ErrorIs(t, cart.Add("", 1, decimal.NewFromInt(1), time.Now()), ErrEmptyItemID)
	require.ErrorIs(t, cart.Add("i1", 0, decimal.NewFromInt(1), time.Now()), ErrInvalidQuantity)
	require.ErrorIs(t, cart.Add("i1", 1, decimal.NewFromInt(-1), time.Now()), ErrInvalidPrice)
	require.Empty(t, cart.Lines)
}

func TestCartClone_IsIndependent(t *testing.T) {
	cart, err := NewCart("c1", identity.User("u1"), time.Now())
	require.NoError(t, err)
	require.NoError(t, cart.Add("i1", 1, decimal.NewFromInt(3), time.Now()))

	clone := cart.Clone()
	clone.Lines[0].Quantity = 9
	clone.Clear(time.Now())

	require.Equal(t, 1, cart.Lines[0].Quantity)
	require.Len(t, cart.Lines, 1)
}

func TestNilCart_Aggregates(t *testing.T) {
	var cart *Cart
	require.True(t, cart.Subtotal().IsZero())
	require.Zero(t, cart.ItemCount())
}
