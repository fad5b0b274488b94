package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repository"
)

var (
	subscriberLog = logrus.WithField("area", "subscriber")
	validate      = validator.New()
)

type SubscriberService struct {
	subscribers repository.SubscriberRepository
}

func NewSubscriberService(subscribers repository.SubscriberRepository) *SubscriberService {
	return &SubscriberService{subscribers: subscribers}
}

func (s *SubscriberService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.InvalidInput("Email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, apperr.InvalidInput("Email is invalid")
	}

	subscriber := &models.Subscriber{Email: email}
	if err := s.subscribers.Insert(ctx, subscriber); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Wrap(apperr.KindInvalidInput, "Email already subscribed", err)
		}
		return nil, translate(err, "Subscriber not found")
	}

	subscriberLog.WithField("email", email).Info("new subscriber added")
	return subscriber, nil
}

func (s *SubscriberService) List(ctx context.Context) ([]models.Subscriber, error) {
	subscribers, err := s.subscribers.List(ctx)
	if err != nil {
		return nil, translate(err, "Subscriber not found")
	}
	return subscribers, nil
}
