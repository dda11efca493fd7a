package domain

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleItem() *Item {
	return &Item{
		ID:          "i1",
		Slug:        "desk-lamp",
		Title:       "Brass Desk Lamp",
		Description: "Warm light for late reading",
		Price:       decimal.RequireFromString("49.90"),
		Stock:       3,
		Status:      StatusAvailable,
		Published:   true,
		CategoryID:  "c1",
		Tags:        []string{"Lighting", "office"},
	}
}

func TestPredicateMatches(t *testing.T) {
	item := sampleItem()

	cases := []struct {
		name   string
		clause Clause
		want   bool
	}{
		{"title substring any case", TextMatch{Term: "DESK"}, true},
		{"description substring", TextMatch{Term: "reading"}, true},
		{"text miss", TextMatch{Term: "sofa"}, false},
		{"category by id", CategoryIs{Ref: "c1"}, true},
		{"category by slug", CategoryIs{Ref: "lighting"}, true},
		{"category miss", CategoryIs{Ref: "chairs"}, false},
		{"tag any case", TagIs{Name: "lighting"}, true},
		{"tag miss", TagIs{Name: "garden"}, false},
		{"min inclusive", PriceAtLeast{Amount: decimal.RequireFromString("49.90")}, true},
		{"min above", PriceAtLeast{Amount: decimal.RequireFromString("50")}, false},
		{"max inclusive", PriceAtMost{Amount: decimal.RequireFromString("49.90")}, true},
		{"max below", PriceAtMost{Amount: decimal.RequireFromString("49")}, false},
		{"in stock", InStock{}, true},
		{"purchasable", Purchasable{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Predicate{tc.clause}.Matches(item, "lighting"))
		})
	}
}

func TestPredicateMatches_Conjunction(t *testing.T) {
	item := sampleItem()
	item.Stock = 0

	require.True(t, Predicate{}.Matches(item, ""))
	require.True(t, Predicate{TextMatch{Term: "lamp"}, Purchasable{}}.Matches(item, ""))
	require.False(t, Predicate{TextMatch{Term: "lamp"}, InStock{}}.Matches(item, ""))

	item.Published = false
	require.False(t, Predicate{Purchasable{}}.Matches(item, ""))
}

func TestSortLess_TieBreaksOnIDAscending(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Item{ID: "a", Price: decimal.NewFromInt(10), CreatedAt: created}
	b := &Item{ID: "b", Price: decimal.NewFromInt(10), CreatedAt: created}

	for _, order := range []SortOrder{SortAsc, SortDesc} {
		s := Sort{Field: SortPrice, Order: order}
		require.True(t, s.Less(a, b))
		require.False(t, s.Less(b, a))
	}
}

func TestSortLess_Fields(t *testing.T) {
	older := &Item{ID: "z", Title: "apple", Price: decimal.NewFromInt(5), Stock: 1, CreatedAt: time.Unix(100, 0)}
	newer := &Item{ID: "a", Title: "Banana", Price: decimal.NewFromInt(9), Stock: 7, CreatedAt: time.Unix(200, 0)}

	require.True(t, Sort{Field: SortCreatedAt, Order: SortDesc}.Less(newer, older))
	require.True(t, Sort{Field: SortPrice, Order: SortAsc}.Less(older, newer))
	require.True(t, Sort{Field: SortTitle, Order: SortAsc}.Less(older, newer))
	require.True(t, Sort{Field: SortStock, Order: SortDesc}.Less(newer, older))
}

func TestPageOffset(t *testing.T) {
	require.Equal(t, 0, Page{Number: 1, Size: 12}.Offset())
	require.Equal(t, 24, Page{Number: 3, Size: 12}.Offset())
	require.Equal(t, math.MaxInt, Page{Number: math.MaxInt, Size: 100}.Offset())
	require.Zero(t, Page{Number: 0, Size: 12}.Offset())
}

func TestAverageRating(t *testing.T) {
	require.Zero(t, AverageRating(nil))
	require.Equal(t, 4.3, AverageRating([]int{5, 4, 4}))
	require.Equal(t, 4.5, AverageRating([]int{5, 4}))
}
