package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/repository"
	"hiawto/pkg/errors"
)

type firestoreFraudReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreFraudReviewRepository(client *firestore.Client) repository.FraudReviewRepository {
	return &firestoreFraudReviewRepository{
		client: client,
	}
}

func (r *firestoreFraudReviewRepository) Create(ctx context.Context, review *entity.FraudReview) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.client.Collection("fraud_reviews").Doc(review.ID).Set(ctx, review)
	if err != nil {
		return errors.Internal("Failed to create fraud review", err)
	}

	return nil
}

func (r *firestoreFraudReviewRepository) GetByID(ctx context.Context, id string) (*entity.FraudReview, error) {
	doc, err := r.client.Collection("fraud_reviews").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Fraud review", err)
		}
		return nil, errors.Internal("Failed to get fraud review", err)
	}

	var review entity.FraudReview
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse fraud review data", err)
	}

	return &review, nil
}

func (r *firestoreFraudReviewRepository) ListByStatus(ctx context.Context, reviewStatus string, limit, offset int) ([]*entity.FraudReview, int64, error) {
	query := r.client.Collection("fraud_reviews").Query
	if reviewStatus != "" {
		query = query.Where("status", "==", reviewStatus)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to query fraud reviews", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var reviews []*entity.FraudReview
	for i := start; i < end; i++ {
		var review entity.FraudReview
		if err := allDocs[i].DataTo(&review); err != nil {
			continue
		}
		reviews = append(reviews, &review)
	}

	return reviews, total, nil
}

func (r *firestoreFraudReviewRepository) Update(ctx context.Context, review *entity.FraudReview) error {
	review.UpdatedAt = time.Now()

	_, err := r.client.Collection("fraud_reviews").Doc(review.ID).Set(ctx, review)
	if err != nil {
		return errors.Internal("Failed to update fraud review", err)
	}

	return nil
}

func (r *firestoreFraudReviewRepository) CountByStatus(ctx context.Context, reviewStatus string) (int64, error) {
	docs, err := r.client.Collection("fraud_reviews").Where("status", "==", reviewStatus).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count fraud reviews", err)
	}
	return int64(len(docs)), nil
}
