package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/healthid/registry/internal/core/domain"
)

func sampleUser() *domain.User {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:              "5f0c1d8e-8f4e-4d0b-9a33-7d0f2b9a6c10",
		Firstname:       "Alice",
		Lastname:        "Liddell",
		Email:           "alice@example.com",
		PasswordHash:    "$2a$10$hash",
		HealthAuthority: "NHS Lothian",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := repo.Create(context.Background(), sampleUser())
		if err != nil {
			mt.Fatalf("Create error: %v", err)
		}
		if got.ID != sampleUser().ID || !got.CreatedAt.Equal(sampleUser().CreatedAt) {
			mt.Fatalf("unexpected user: %+v", got)
		}
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: users_email_key",
		}))

		_, err := repo.Create(context.Background(), sampleUser())
		if !errors.Is(err, domain.ErrEmailInUse) {
			mt.Fatalf("want domain.ErrEmailInUse, got %v", err)
		}
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		u := sampleUser()
		doc := toDocument(u)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: doc.ID},
			{Key: "firstname", Value: doc.Firstname},
			{Key: "lastname", Value: doc.Lastname},
			{Key: "email", Value: doc.Email},
			{Key: "password", Value: doc.PasswordHash},
			{Key: "health_authority", Value: doc.HealthAuthority},
			{Key: "created_at", Value: doc.CreatedAt},
			{Key: "updated_at", Value: doc.UpdatedAt},
		}))

		got, err := repo.FindByEmail(context.Background(), u.Email)
		if err != nil {
			mt.Fatalf("FindByEmail error: %v", err)
		}
		if *got != *u {
			mt.Fatalf("unexpected user: got %+v want %+v", got, u)
		}
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("want domain.ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.EnsureIndexes(context.Background()); err != nil {
			mt.Fatalf("EnsureIndexes error: %v", err)
		}
	})
}

