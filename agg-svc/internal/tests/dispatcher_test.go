package tests

import (
	"context"
	"errors"
	"testing"

	"friendlyeats/agg-svc/internal/mocks"
	"friendlyeats/agg-svc/internal/service"
	"friendlyeats/internal/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDispatcher_Routes(t *testing.T) {
	before := map[string]interface{}{"name": "A"}
	after := map[string]interface{}{"name": "B"}

	tests := []struct {
		name      string
		change    docstore.Change
		setup     func(*mocks.RatingHandler, *mocks.RenameHandler, *mocks.YumHandler)
		wantError bool
	}{
		{
			name:   "review create",
			change: docstore.Change{Collection: "reviews", ID: "v1", After: after},
			setup: func(ratings *mocks.RatingHandler, _ *mocks.RenameHandler, _ *mocks.YumHandler) {
				ratings.On("HandleReviewWrite", mock.Anything, "v1", map[string]interface{}(nil), after).Return(nil)
			},
		},
		{
			name:   "review delete",
			change: docstore.Change{Collection: "reviews", ID: "v1", Before: before},
			setup: func(ratings *mocks.RatingHandler, _ *mocks.RenameHandler, _ *mocks.YumHandler) {
				ratings.On("HandleReviewWrite", mock.Anything, "v1", before, map[string]interface{}(nil)).Return(nil)
			},
		},
		{
			name:   "review handler error",
			change: docstore.Change{Collection: "reviews", ID: "v1", Before: before, After: after},
			setup: func(ratings *mocks.RatingHandler, _ *mocks.RenameHandler, _ *mocks.YumHandler) {
				ratings.On("HandleReviewWrite", mock.Anything, "v1", before, after).Return(service.ErrRestaurantMissing)
			},
			wantError: true,
		},
		{
			name:   "restaurant update",
			change: docstore.Change{Collection: "restaurants", ID: "r1", Before: before, After: after},
			setup: func(_ *mocks.RatingHandler, renames *mocks.RenameHandler, _ *mocks.YumHandler) {
				renames.On("HandleRestaurantUpdate", mock.Anything, "r1", before, after).Return(2, nil)
			},
		},
		{
			name:   "restaurant create ignored",
			change: docstore.Change{Collection: "restaurants", ID: "r1", After: after},
			setup:  func(*mocks.RatingHandler, *mocks.RenameHandler, *mocks.YumHandler) {},
		},
		{
			name:   "pending yum create",
			change: docstore.Change{Collection: "pendingYums", ID: "p1", After: after},
			setup: func(_ *mocks.RatingHandler, _ *mocks.RenameHandler, yums *mocks.YumHandler) {
				yums.On("HandlePendingYum", mock.Anything, "p1", after).Return(service.YumApplied, nil)
			},
		},
		{
			name:   "pending yum rejected",
			change: docstore.Change{Collection: "pendingYums", ID: "p1", After: after},
			setup: func(_ *mocks.RatingHandler, _ *mocks.RenameHandler, yums *mocks.YumHandler) {
				yums.On("HandlePendingYum", mock.Anything, "p1", after).Return(service.YumRejected, service.ErrReviewMissing)
			},
			wantError: true,
		},
		{
			name:   "pending yum delete ignored",
			change: docstore.Change{Collection: "pendingYums", ID: "p1", Before: after},
			setup:  func(*mocks.RatingHandler, *mocks.RenameHandler, *mocks.YumHandler) {},
		},
		{
			name:   "yum marker ignored",
			change: docstore.Change{Collection: "reviews/v1/yums", ID: "u1", After: after},
			setup:  func(*mocks.RatingHandler, *mocks.RenameHandler, *mocks.YumHandler) {},
		},
		{
			name:   "unknown collection ignored",
			change: docstore.Change{Collection: "users", ID: "u1", After: after},
			setup:  func(*mocks.RatingHandler, *mocks.RenameHandler, *mocks.YumHandler) {},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			ratings := mocks.NewRatingHandler(t)
			renames := mocks.NewRenameHandler(t)
			yums := mocks.NewYumHandler(t)
			testCase.setup(ratings, renames, yums)

			err := service.NewDispatcher(ratings, renames, yums).Dispatch(context.Background(), testCase.change)
			if testCase.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDispatcher_RenameError(t *testing.T) {
	renames := mocks.NewRenameHandler(t)
	renames.On("HandleRestaurantUpdate", mock.Anything, "r1", mock.Anything, mock.Anything).
		Return(0, errors.New("batch failed"))

	dispatcher := service.NewDispatcher(mocks.NewRatingHandler(t), renames, mocks.NewYumHandler(t))
	err := dispatcher.Dispatch(context.Background(), docstore.Change{
		Collection: "restaurants", ID: "r1",
		Before: map[string]interface{}{"name": "A"}, After: map[string]interface{}{"name": "B"},
	})
	assert.EqualError(t, err, "batch failed")
}
