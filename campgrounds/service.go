package campgrounds

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/auth"
	"github.com/user/yelpcamp-go/docstore"
)

// MsgCampgroundNotFound is shown when a campground id does not resolve.
const MsgCampgroundNotFound = "Cannot find that Campground"

// Service holds the campground and review collections.
type Service struct {
	campgrounds docstore.Collection[Campground]
	reviews     docstore.Collection[Review]
	users       auth.UserRepository
}

// NewService wires the collections together. Deleting a campground through
// the collection removes its reviews.
func NewService(campgrounds docstore.Collection[Campground], reviews docstore.Collection[Review], users auth.UserRepository) *Service {
	campgrounds.OnDelete(func(ctx context.Context, deleted *Campground) error {
		_, err := reviews.DeleteMany(ctx, docstore.Where("campground_id", deleted.ID))
		return err
	})
	return &Service{campgrounds: campgrounds, reviews: reviews, users: users}
}

// List returns every campground.
func (s *Service) List(ctx context.Context) ([]*Campground, error) {
	camps, err := s.campgrounds.Find(ctx, docstore.All())
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list campgrounds", err)
	}
	return camps, nil
}

// Get returns one campground without resolving references.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Campground, error) {
	camp, err := s.campgrounds.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, MsgCampgroundNotFound, "failed to load campground")
	}
	return camp, nil
}

// GetDetail returns a campground with its author, its reviews and their authors.
func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (*CampgroundDetail, error) {
	camp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.Find(ctx, docstore.Where("campground_id", camp.ID))
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to load reviews", err)
	}

	authors := map[uuid.UUID]*Author{}
	resolve := func(id uuid.UUID) (*Author, error) {
		if a, ok := authors[id]; ok {
			return a, nil
		}
		u, err := s.users.GetByID(ctx, id)
		if errors.Is(err, auth.ErrUserNotFound) {
			authors[id] = nil
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		authors[id] = authorOf(u)
		return authors[id], nil
	}

	detail := &CampgroundDetail{Campground: camp, Reviews: make([]ReviewDetail, 0, len(reviews))}
	if detail.Author, err = resolve(camp.AuthorID); err != nil {
		return nil, err
	}
	for _, r := range reviews {
		a, err := resolve(r.AuthorID)
		if err != nil {
			return nil, err
		}
		detail.Reviews = append(detail.Reviews, ReviewDetail{Review: r, Author: a})
	}
	return detail, nil
}

// Create lists a new campground owned by author.
func (s *Service) Create(ctx context.Context, author uuid.UUID, in *CampgroundInput) (*Campground, error) {
	camp := &Campground{
		Title:       in.Title,
		Price:       *in.Price,
		Image:       in.Image,
		Description: in.Description,
		Location:    in.Location,
		AuthorID:    author,
	}
	if err := s.campgrounds.Save(ctx, camp); err != nil {
		return nil, apperror.NewDatabaseError("failed to save campground", err)
	}
	return camp, nil
}

// Update replaces the editable fields and returns the stored result.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *CampgroundInput) (*Campground, error) {
	camp, err := s.campgrounds.FindByIDAndUpdate(ctx, id, in.patch())
	if err != nil {
		return nil, notFound(err, MsgCampgroundNotFound, "failed to update campground")
	}
	return camp, nil
}

// Delete removes the campground and, through the delete hook, its reviews.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.campgrounds.FindByIDAndDelete(ctx, id); err != nil {
		return notFound(err, MsgCampgroundNotFound, "failed to delete campground")
	}
	return nil
}

// AddReview posts a review on an existing campground.
func (s *Service) AddReview(ctx context.Context, campgroundID, author uuid.UUID, in *ReviewInput) (*Review, error) {
	if _, err := s.Get(ctx, campgroundID); err != nil {
		return nil, err
	}
	review := &Review{
		Body:         in.Body,
		Rating:       *in.Rating,
		AuthorID:     author,
		CampgroundID: campgroundID,
	}
	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, apperror.NewDatabaseError("failed to save review", err)
	}
	return review, nil
}

// GetReview returns a review if it belongs to the campground.
func (s *Service) GetReview(ctx context.Context, campgroundID, reviewID uuid.UUID) (*Review, error) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "Cannot find that Review", "failed to load review")
	}
	if review.CampgroundID != campgroundID {
		return nil, apperror.NewNotFoundError("Cannot find that Review", nil)
	}
	return review, nil
}

// DeleteReview removes one review.
func (s *Service) DeleteReview(ctx context.Context, reviewID uuid.UUID) error {
	if _, err := s.reviews.FindByIDAndDelete(ctx, reviewID); err != nil {
		return notFound(err, "Cannot find that Review", "failed to delete review")
	}
	return nil
}

// notFound maps docstore.ErrNotFound to a NotFound error and anything else to
// a DatabaseError.
func notFound(err error, notFoundMsg, failMsg string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperror.NewNotFoundError(notFoundMsg, err)
	}
	return apperror.NewDatabaseError(failMsg, err)
}
