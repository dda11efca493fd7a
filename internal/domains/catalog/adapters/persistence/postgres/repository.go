package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists the catalog in PostgreSQL using GORM. Schema is owned by platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed catalog. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type itemRecord struct {
	ID            string           `gorm:"primaryKey;column:id"`
	Slug          string           `gorm:"column:slug"`
	Title         string           `gorm:"column:title"`
	Description   string           `gorm:"column:description"`
	Price         decimal.Decimal  `gorm:"column:price"`
	DiscountPrice *decimal.Decimal `gorm:"column:discount_price"`
	Stock         int              `gorm:"column:stock"`
	Status        string           `gorm:"column:status"`
	Published     bool             `gorm:"column:published"`
	CategoryID    string           `gorm:"column:category_id"`
	Tags          pq.StringArray   `gorm:"column:tags;type:text[]"`
	SellerID      string           `gorm:"column:seller_id"`
	CreatedAt     time.Time        `gorm:"column:created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at"`
}

func (itemRecord) TableName() string { return "items" }

type listingRow struct {
	Item          itemRecord `gorm:"embedded"`
	AverageRating float64    `gorm:"column:average_rating"`
}

type categoryRecord struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Slug      string    `gorm:"column:slug"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (categoryRecord) TableName() string { return "categories" }

type reviewRecord struct {
	ID        string    `gorm:"primaryKey;column:id"`
	ItemID    string    `gorm:"column:item_id"`
	Rating    int       `gorm:"column:rating"`
	Approved  bool      `gorm:"column:approved"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (reviewRecord) TableName() string { return "reviews" }

const averageRatingColumn = `COALESCE((SELECT ROUND(AVG(reviews.rating)::numeric, 1) FROM reviews ` +
	`WHERE reviews.item_id = items.id AND reviews.approved), 0) AS average_rating`

var sortColumns = map[domain.SortField]string{
	domain.SortCreatedAt: "items.created_at",
	domain.SortPrice:     "items.price",
	domain.SortTitle:     "LOWER(items.title)",
	domain.SortStock:     "items.stock",
}

// Search translates the typed predicate into SQL and returns one page plus the total.
func (r *Repository) Search(ctx context.Context, query domain.Query) (*domain.SearchResult, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var total int64
	if err := r.filtered(ctx, query.Predicate).Count(&total).Error; err != nil {
		return nil, err
	}
	var rows []listingRow
	if err := r.filtered(ctx, query.Predicate).
		Select("items.*, " + averageRatingColumn).
		Order(orderBy(query.Sort)).
		Offset(query.Page.Offset()).
		Limit(query.Page.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := &domain.SearchResult{Total: total, Listings: make([]domain.Listing, 0, len(rows))}
	for i := range rows {
		result.Listings = append(result.Listings, domain.Listing{
			Item:          rows[i].Item.toDomain(),
			AverageRating: domain.RoundRating(rows[i].AverageRating),
		})
	}
	return result, nil
}

func (r *Repository) filtered(ctx context.Context, predicate domain.Predicate) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&itemRecord{})
	for _, c := range predicate {
		switch c := c.(type) {
		case domain.TextMatch:
			pattern := "%" + escapeLike(c.Term) + "%"
			tx = tx.Where("(items.title ILIKE ? OR items.description ILIKE ?)", pattern, pattern)
		case domain.CategoryIs:
			tx = tx.Where("(items.category_id = ? OR items.category_id IN (SELECT id FROM categories WHERE slug = ?))", c.Ref, c.Ref)
		case domain.TagIs:
			tx = tx.Where("EXISTS (SELECT 1 FROM unnest(items.tags) AS tag WHERE LOWER(tag) = LOWER(?))", c.Name)
		case domain.PriceAtLeast:
			tx = tx.Where("items.price >= ?", c.Amount)
		case domain.PriceAtMost:
			tx = tx.Where("items.price <= ?", c.Amount)
		case domain.InStock:
			tx = tx.Where("items.stock > 0")
		case domain.Purchasable:
			tx = tx.Where("items.status = ? AND items.published", string(domain.StatusAvailable))
		}
	}
	return tx
}

func orderBy(sort domain.Sort) string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = sortColumns[domain.SortCreatedAt]
	}
	direction := "DESC"
	if sort.Order == domain.SortAsc {
		direction = "ASC"
	}
	return column + " " + direction + ", items.id ASC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// GetByID fetches a single item.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record itemRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{ItemID: id}
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByIDs loads every referenced item in a single query.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	found := make(map[string]*domain.Item, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var records []itemRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		found[records[i].ID] = records[i].toDomain()
	}
	return found, nil
}

// SaveItem inserts or updates an item.
func (r *Repository) SaveItem(ctx context.Context, item *domain.Item) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if item == nil {
		return errors.New("item is nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}
	record := toRecord(item)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"slug":           record.Slug,
				"title":          record.Title,
				"description":    record.Description,
				"price":          record.Price,
				"discount_price": record.DiscountPrice,
				"stock":          record.Stock,
				"status":         record.Status,
				"published":      record.Published,
				"category_id":    record.CategoryID,
				"tags":           record.Tags,
				"seller_id":      record.SellerID,
				"updated_at":     gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}

// SaveCategory inserts or renames a category.
func (r *Repository) SaveCategory(ctx context.Context, category domain.Category) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := categoryRecord{ID: category.ID, Slug: category.Slug, Name: category.Name}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"slug", "name"}),
		}).Create(&record).Error
}

// AddReview appends a review for an existing item.
func (r *Repository) AddReview(ctx context.Context, review domain.Review) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if review.Rating < 1 || review.Rating > 5 {
		return errors.New("review rating must be between 1 and 5")
	}
	if _, err := r.GetByID(ctx, review.ItemID); err != nil {
		return err
	}
	record := reviewRecord{
		ID:       uuid.NewString(),
		ItemID:   review.ItemID,
		Rating:   review.Rating,
		Approved: review.Approved,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres catalog repository not configured")
	}
	return nil
}

func toRecord(item *domain.Item) itemRecord {
	record := itemRecord{
		ID:          item.ID,
		Slug:        item.Slug,
		Title:       item.Title,
		Description: item.Description,
		Price:       item.Price.Round(2),
		Stock:       item.Stock,
		Status:      string(item.Status),
		Published:   item.Published,
		CategoryID:  item.CategoryID,
		Tags:        pq.StringArray(append([]string{}, item.Tags...)),
		SellerID:    item.SellerID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.DiscountPrice != nil {
		discount := item.DiscountPrice.Round(2)
		record.DiscountPrice = &discount
	}
	return record
}

func (r itemRecord) toDomain() *domain.Item {
	item := &domain.Item{
		ID:          r.ID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Status:      domain.Status(r.Status),
		Published:   r.Published,
		CategoryID:  r.CategoryID,
		Tags:        append([]string(nil), r.Tags...),
		SellerID:    r.SellerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DiscountPrice != nil {
		discount := *r.DiscountPrice
		item.DiscountPrice = &discount
	}
	return item
}
