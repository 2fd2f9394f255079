package shortlink

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

var linkColumns = []string{"id", "campaign_id", "product_id", "original_url", "short_url", "provider", "click_count", "created_at"}

func TestStoreFindHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM short_links").
		WithArgs("https://shop.example.com/p/7", int64(5)).
		WillReturnRows(sqlmock.NewRows(linkColumns).
			AddRow(int64(1), int64(5), int64(7), "https://shop.example.com/p/7", "https://bit.ly/abc", models.LinkProviderExternal, int64(3), time.Now()))

	store := NewStore(db)
	link, err := store.Find(context.Background(), "https://shop.example.com/p/7", 5)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if link == nil || link.ShortURL != "https://bit.ly/abc" {
		t.Fatalf("unexpected link: %+v", link)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreFindMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM short_links").
		WithArgs("https://shop.example.com/p/7", int64(5)).
		WillReturnError(sql.ErrNoRows)

	store := NewStore(db)
	link, err := store.Find(context.Background(), "https://shop.example.com/p/7", 5)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if link != nil {
		t.Fatalf("expected nil link on miss, got %+v", link)
	}
}

func TestStoreCreateUniqueViolationRereads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO short_links").
		WithArgs(int64(5), int64(7), "https://shop.example.com/p/7", "https://bit.ly/mine", models.LinkProviderExternal).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery("FROM short_links").
		WithArgs("https://shop.example.com/p/7", int64(5)).
		WillReturnRows(sqlmock.NewRows(linkColumns).
			AddRow(int64(9), int64(5), int64(7), "https://shop.example.com/p/7", "https://bit.ly/theirs", models.LinkProviderExternal, int64(0), time.Now()))

	store := NewStore(db)
	link, err := store.Create(context.Background(), &models.ShortLink{
		CampaignID:  5,
		ProductID:   7,
		OriginalURL: "https://shop.example.com/p/7",
		ShortURL:    "https://bit.ly/mine",
		Provider:    models.LinkProviderExternal,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if link.ShortURL != "https://bit.ly/theirs" {
		t.Fatalf("expected the winning record, got %+v", link)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreCreateShortURLCollisionErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	// The provider handed out a short URL already stored for another
	// campaign, so the re-read for this pair finds nothing.
	mock.ExpectQuery("INSERT INTO short_links").
		WithArgs(int64(9), int64(7), "https://shop.example.com/p/7", "https://bit.ly/shared", models.LinkProviderExternal).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "short_links_short_url_key"})
	mock.ExpectQuery("FROM short_links").
		WithArgs("https://shop.example.com/p/7", int64(9)).
		WillReturnRows(sqlmock.NewRows(linkColumns))

	store := NewStore(db)
	link, err := store.Create(context.Background(), &models.ShortLink{
		CampaignID:  9,
		ProductID:   7,
		OriginalURL: "https://shop.example.com/p/7",
		ShortURL:    "https://bit.ly/shared",
		Provider:    models.LinkProviderExternal,
	})
	if err == nil {
		t.Fatal("expected error for a short URL collision")
	}
	if link != nil {
		t.Fatalf("expected nil link with an error, got %+v", link)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreIncrementClicksNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE short_links").
		WithArgs("https://bit.ly/gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewStore(db)
	if err := store.IncrementClicks(context.Background(), "https://bit.ly/gone"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown short URL, got %v", err)
	}
}

func TestStoreListByCampaign(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM short_links").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(linkColumns).
			AddRow(int64(1), int64(5), int64(7), "https://a", "https://s/a", models.LinkProviderExternal, int64(1), time.Now()).
			AddRow(int64(2), int64(5), int64(7), "https://b", "https://s/b", models.LinkProviderFallback, int64(0), time.Now()))

	store := NewStore(db)
	links, err := store.ListByCampaign(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListByCampaign returned error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
}
