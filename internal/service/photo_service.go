package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
	"github.com/Ydzz18/photo-web-sub000/internal/repository"
)

const (
	maxCaptionLength = 500
	maxCommentLength = 1000
	listLimit        = 50
)

// PhotoService cubre fotos, likes, comentarios, seguimientos y
// notificaciones. La carga del archivo en sí no pasa por acá: las fotos
// referencian un objeto ya almacenado.
type PhotoService struct {
	logger        *zap.Logger
	photos        repository.PhotoRepository
	follows       repository.FollowRepository
	notifications repository.NotificationRepository
	accounts      repository.AccountRepository
}

func NewPhotoService(
	logger *zap.Logger,
	photos repository.PhotoRepository,
	follows repository.FollowRepository,
	notifications repository.NotificationRepository,
	accounts repository.AccountRepository,
) *PhotoService {
	return &PhotoService{
		logger:        logger,
		photos:        photos,
		follows:       follows,
		notifications: notifications,
		accounts:      accounts,
	}
}

func (s *PhotoService) CreatePhoto(ctx context.Context, ownerID, objectKey, caption string) (domain.Photo, error) {
	objectKey = strings.TrimSpace(objectKey)
	caption = strings.TrimSpace(caption)
	if objectKey == "" || len(caption) > maxCaptionLength {
		return domain.Photo{}, ErrInvalidInput
	}
	photo := domain.Photo{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ObjectKey: objectKey,
		Caption:   caption,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		s.logger.Error("create photo failed", zap.Error(err))
		return domain.Photo{}, ErrStorage
	}
	return photo, nil
}

func (s *PhotoService) GetPhoto(ctx context.Context, id string) (domain.Photo, error) {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Photo{}, ErrNotFound
		}
		s.logger.Error("photo lookup failed", zap.Error(err))
		return domain.Photo{}, ErrStorage
	}
	return photo, nil
}

func (s *PhotoService) DeletePhoto(ctx context.Context, id, requesterID string) error {
	deleted, err := s.photos.DeleteOwned(ctx, id, requesterID)
	if err != nil {
		s.logger.Error("delete photo failed", zap.Error(err))
		return ErrStorage
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ListUserPhotos devuelve las fotos recientes del perfil indicado.
func (s *PhotoService) ListUserPhotos(ctx context.Context, username string) ([]domain.Photo, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error("account lookup failed", zap.Error(err))
		return nil, ErrStorage
	}
	photos, err := s.photos.ListByOwner(ctx, account.ID, listLimit)
	if err != nil {
		s.logger.Error("list photos failed", zap.Error(err))
		return nil, ErrStorage
	}
	return photos, nil
}

// Like es idempotente: repetir el like de una foto ya likeada no es error.
func (s *PhotoService) Like(ctx context.Context, photoID, accountID string) error {
	_, err := s.photos.Like(ctx, photoID, accountID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		s.logger.Error("like failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func (s *PhotoService) Unlike(ctx context.Context, photoID, accountID string) error {
	_, err := s.photos.Unlike(ctx, photoID, accountID)
	if err != nil {
		s.logger.Error("unlike failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func (s *PhotoService) AddComment(ctx context.Context, photoID, authorID, body string) (domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxCommentLength {
		return domain.Comment{}, ErrInvalidInput
	}
	comment := domain.Comment{
		ID:        uuid.NewString(),
		PhotoID:   photoID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.photos.AddComment(ctx, comment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, ErrNotFound
		}
		s.logger.Error("add comment failed", zap.Error(err))
		return domain.Comment{}, ErrStorage
	}
	return comment, nil
}

func (s *PhotoService) DeleteComment(ctx context.Context, commentID, requesterID string) error {
	deleted, err := s.photos.DeleteComment(ctx, commentID, requesterID)
	if err != nil {
		s.logger.Error("delete comment failed", zap.Error(err))
		return ErrStorage
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *PhotoService) Follow(ctx context.Context, followerID, username string) error {
	followee, err := s.resolveAccount(ctx, username)
	if err != nil {
		return err
	}
	if followee.ID == followerID {
		return ErrSelfAction
	}
	if _, err := s.follows.Follow(ctx, followerID, followee.ID, time.Now().UTC()); err != nil {
		s.logger.Error("follow failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func (s *PhotoService) Unfollow(ctx context.Context, followerID, username string) error {
	followee, err := s.resolveAccount(ctx, username)
	if err != nil {
		return err
	}
	if followee.ID == followerID {
		return ErrSelfAction
	}
	if _, err := s.follows.Unfollow(ctx, followerID, followee.ID); err != nil {
		s.logger.Error("unfollow failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func (s *PhotoService) Notifications(ctx context.Context, accountID string) ([]domain.Notification, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, accountID, listLimit)
	if err != nil {
		s.logger.Error("list notifications failed", zap.Error(err))
		return nil, ErrStorage
	}
	return notifications, nil
}

func (s *PhotoService) MarkNotificationsRead(ctx context.Context, accountID string) error {
	if err := s.notifications.MarkAllRead(ctx, accountID, time.Now().UTC()); err != nil {
		s.logger.Error("mark notifications read failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func (s *PhotoService) resolveAccount(ctx context.Context, username string) (domain.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrNotFound
		}
		s.logger.Error("account lookup failed", zap.Error(err))
		return domain.Account{}, ErrStorage
	}
	return account, nil
}
