package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog backed by the shared memdb tables.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Search(_ context.Context, query domain.Query) (*domain.SearchResult, error) {
	result := &domain.SearchResult{}
	err := r.db.Read(func(t *memdb.Tables) error {
		matched := make([]*domain.Item, 0, len(t.Items))
		for _, item := range t.Items {
			slug := t.Categories[item.CategoryID].Slug
			if query.Predicate.Matches(item, slug) {
				matched = append(matched, item)
			}
		}
		sort.SliceStable(matched, func(i, j int) bool {
			return query.Sort.Less(matched[i], matched[j])
		})
		result.Total = int64(len(matched))

		start := query.Page.Offset()
		if start > len(matched) {
			start = len(matched)
		}
		end := start + query.Page.Size
		if end > len(matched) {
			end = len(matched)
		}
		result.Listings = make([]domain.Listing, 0, end-start)
		for _, item := range matched[start:end] {
			result.Listings = append(result.Listings, domain.Listing{
				Item:          memdb.CloneItem(item),
				AverageRating: averageRating(t.Reviews, item.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Item, error) {
	var found *domain.Item
	err := r.db.Read(func(t *memdb.Tables) error {
		item, ok := t.Items[id]
		if !ok {
			return &domain.NotFoundError{ItemID: id}
		}
		found = memdb.CloneItem(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *Repository) GetByIDs(_ context.Context, ids []string) (map[string]*domain.Item, error) {
	found := make(map[string]*domain.Item, len(ids))
	err := r.db.Read(func(t *memdb.Tables) error {
		for _, id := range ids {
			if item, ok := t.Items[id]; ok {
				found[id] = memdb.CloneItem(item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *Repository) SaveItem(_ context.Context, item *domain.Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}
	return r.db.Write(func(t *memdb.Tables) error {
		now := r.db.Now()
		clone := memdb.CloneItem(item)
		if existing, ok := t.Items[item.ID]; ok {
			clone.CreatedAt = existing.CreatedAt
		} else if clone.CreatedAt.IsZero() {
			clone.CreatedAt = now
		}
		clone.UpdatedAt = now
		for id, other := range t.Items {
			if id != clone.ID && other.Slug == clone.Slug {
				return errors.New("item slug already in use")
			}
		}
		t.Items[clone.ID] = clone
		return nil
	})
}

func (r *Repository) SaveCategory(_ context.Context, category domain.Category) error {
	if category.ID == "" || category.Slug == "" {
		return errors.New("category id and slug are required")
	}
	return r.db.Write(func(t *memdb.Tables) error {
		t.Categories[category.ID] = category
		return nil
	})
}

func (r *Repository) AddReview(_ context.Context, review domain.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return errors.New("review rating must be between 1 and 5")
	}
	return r.db.Write(func(t *memdb.Tables) error {
		if _, ok := t.Items[review.ItemID]; !ok {
			return &domain.NotFoundError{ItemID: review.ItemID}
		}
		t.Reviews = append(t.Reviews, review)
		return nil
	})
}

func averageRating(reviews []domain.Review, itemID string) float64 {
	var ratings []int
	for _, review := range reviews {
		if review.ItemID == itemID && review.Approved {
			ratings = append(ratings, review.Rating)
		}
	}
	return domain.AverageRating(ratings)
}
